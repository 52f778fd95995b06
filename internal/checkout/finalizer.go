// Package checkout transforme un panier en reçu : réservation du stock,
// émission du reçu puis remise à zéro du panier.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"reviere_back_end/internal/apperr"
	"reviere_back_end/internal/models"
	"reviere_back_end/internal/store"
)

// MissingProductName remplace le nom d'un produit introuvable dans le détail du reçu.
const (
	MissingProductName = "Producto no encontrado"
	MissingUserName    = "Usuario no encontrado"
)

var (
	ErrUserRequired    = apperr.Validation("El id_usuario es obligatorio")
	ErrEmptyOrder      = apperr.Validation("No hay productos para comprar")
	ErrInvalidQuantity = apperr.Validation("La cantidad debe ser mayor a 0")
	ErrInvalidCoupon   = apperr.Validation("Cupón no válido")
	ErrReceiptNotFound = apperr.NotFound("Recibo no encontrado")
)

// CouponRedeemer valide le code transmis quand le panier n'a pas de coupon.
type CouponRedeemer interface {
	Redeemable(ctx context.Context, code string) (*models.Coupon, error)
}

// UserDirectory résout le nom affiché d'un acheteur.
type UserDirectory interface {
	UserName(ctx context.Context, userID int64) (string, error)
}

// Notifier est prévenu après l'émission d'un reçu.
type Notifier interface {
	ReceiptIssued(ctx context.Context, receipt models.Receipt)
}

type FinalizeRequest struct {
	UserID        int64                `json:"id_usuario"`
	Lines         []models.ReceiptLine `json:"productos"`
	AppliedCoupon *models.Coupon       `json:"cupon_aplicado"`
	Total         *float64             `json:"total"`
}

func (r FinalizeRequest) Validate() error {
	if r.UserID <= 0 {
		return ErrUserRequired
	}
	if len(r.Lines) == 0 {
		return ErrEmptyOrder
	}
	for _, l := range r.Lines {
		if l.Quantity <= 0 {
			return ErrInvalidQuantity
		}
	}
	return nil
}

type Option func(*Finalizer)

func WithNotifier(n Notifier) Option        { return func(f *Finalizer) { f.notifier = n } }
func WithUsers(u UserDirectory) Option      { return func(f *Finalizer) { f.users = u } }
func WithClock(now func() time.Time) Option { return func(f *Finalizer) { f.now = now } }

type Finalizer struct {
	products store.ProductStore
	receipts store.ReceiptStore
	carts    store.CartStore
	counter  store.Counter
	coupons  CouponRedeemer
	notifier Notifier
	users    UserDirectory
	now      func() time.Time
}

func NewFinalizer(products store.ProductStore, receipts store.ReceiptStore, carts store.CartStore, counter store.Counter, coupons CouponRedeemer, opts ...Option) *Finalizer {
	f := &Finalizer{
		products: products,
		receipts: receipts,
		carts:    carts,
		counter:  counter,
		coupons:  coupons,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Quote calcule le total serveur d'une liste de lignes pour un utilisateur.
func (f *Finalizer) Quote(ctx context.Context, userID int64, lines []models.ReceiptLine, requested *models.Coupon) (*Quote, error) {
	priced, err := f.resolve(ctx, mergeLines(lines))
	if err != nil {
		return nil, err
	}
	coupon, err := f.resolveCoupon(ctx, userID, requested)
	if err != nil {
		return nil, err
	}
	q := Price(priced, coupon)
	return &q, nil
}

// QuoteCart calcule le total du panier courant de l'utilisateur.
func (f *Finalizer) QuoteCart(ctx context.Context, userID int64) (*Quote, []models.ReceiptLine, error) {
	c, err := f.carts.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, nil, ErrEmptyOrder
		}
		return nil, nil, apperr.Upstream("get cart", err)
	}
	if len(c.Items) == 0 {
		return nil, nil, ErrEmptyOrder
	}
	lines := make([]models.ReceiptLine, 0, len(c.Items))
	for _, item := range c.Items {
		lines = append(lines, models.ReceiptLine{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	q, err := f.Quote(ctx, userID, lines, nil)
	if err != nil {
		return nil, nil, err
	}
	return q, lines, nil
}

// Finalize réserve le stock, émet le reçu et vide le panier. Le stock est rendu
// si la réservation ou l'écriture du reçu échoue ; un échec du vidage du panier
// est seulement loggé.
func (f *Finalizer) Finalize(ctx context.Context, req FinalizeRequest) (*models.Receipt, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	entry := log.WithField("user_id", req.UserID)

	q, err := f.Quote(ctx, req.UserID, req.Lines, req.AppliedCoupon)
	if err != nil {
		return nil, err
	}
	if req.Total != nil {
		client := decimal.NewFromFloat(*req.Total).Round(2)
		if !client.Equal(q.Total) {
			entry.WithFields(log.Fields{
				"client_total": client.String(),
				"server_total": q.Total.String(),
			}).Warn("⚠️ Total client différent du total serveur")
		}
	}

	reserved, err := f.reserve(ctx, q.Lines)
	if err != nil {
		return nil, err
	}

	id, err := f.counter.NextID(ctx, store.NSReceipts)
	if err != nil {
		f.compensate(ctx, reserved)
		return nil, apperr.Upstream("allocate receipt id", err)
	}

	receipt := &models.Receipt{
		ID:         id,
		UserID:     req.UserID,
		EmittedAt:  f.now(),
		Detail:     Detail(q.Lines),
		TotalPrice: q.TotalFloat(),
	}
	if err := f.receipts.Create(ctx, receipt); err != nil {
		f.compensate(ctx, reserved)
		return nil, apperr.Upstream("create receipt", err)
	}

	if _, err := f.carts.Mutate(ctx, req.UserID, true, func(c *models.Cart) error {
		c.Clear()
		return nil
	}); err != nil {
		entry.WithError(err).WithField("receipt_id", receipt.ID).Error("❌ Vidage du panier après achat échoué")
	}

	entry.WithFields(log.Fields{"receipt_id": receipt.ID, "total": receipt.TotalPrice}).Info("✅ Reçu émis")
	if f.notifier != nil {
		f.notifier.ReceiptIssued(ctx, *receipt)
	}
	return receipt, nil
}

func (f *Finalizer) Get(ctx context.Context, id int64) (*models.Receipt, error) {
	r, err := f.receipts.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrReceiptNotFound
		}
		return nil, apperr.Upstream("get receipt", err)
	}
	return r, nil
}

func (f *Finalizer) List(ctx context.Context) ([]models.Receipt, error) {
	receipts, err := f.receipts.List(ctx)
	if err != nil {
		return nil, apperr.Upstream("list receipts", err)
	}
	return receipts, nil
}

// ListViews retourne les reçus avec le nom de l'acheteur.
func (f *Finalizer) ListViews(ctx context.Context) ([]models.ReceiptView, error) {
	receipts, err := f.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string)
	out := make([]models.ReceiptView, 0, len(receipts))
	for _, r := range receipts {
		name, ok := names[r.UserID]
		if !ok {
			name = f.userName(ctx, r.UserID)
			names[r.UserID] = name
		}
		out = append(out, models.ReceiptView{Receipt: r, UserName: name})
	}
	return out, nil
}

func (f *Finalizer) GetView(ctx context.Context, id int64) (*models.ReceiptView, error) {
	r, err := f.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.ReceiptView{Receipt: *r, UserName: f.userName(ctx, r.UserID)}, nil
}

func (f *Finalizer) userName(ctx context.Context, userID int64) string {
	if f.users == nil {
		return MissingUserName
	}
	name, err := f.users.UserName(ctx, userID)
	if err != nil || name == "" {
		return MissingUserName
	}
	return name
}

func (f *Finalizer) Delete(ctx context.Context, id int64) error {
	if _, err := f.Get(ctx, id); err != nil {
		return err
	}
	if err := f.receipts.Delete(ctx, id); err != nil {
		return apperr.Upstream("delete receipt", err)
	}
	log.WithField("receipt_id", id).Info("🗑️ Reçu supprimé")
	return nil
}

// Detail construit la description lisible "2 Cuaderno, 1 Lápiz".
func Detail(lines []PricedLine) string {
	parts := make([]string, 0, len(lines))
	for _, l := range lines {
		name := l.Name
		if !l.Found {
			name = MissingProductName
		}
		parts = append(parts, fmt.Sprintf("%d %s", l.Quantity, name))
	}
	return strings.Join(parts, ", ")
}

// resolve lit le nom et le prix courants de chaque produit ; un produit absent
// est conservé avec Found=false.
func (f *Finalizer) resolve(ctx context.Context, lines []models.ReceiptLine) ([]PricedLine, error) {
	out := make([]PricedLine, 0, len(lines))
	for _, l := range lines {
		pl := PricedLine{ProductID: l.ProductID, Quantity: l.Quantity, UnitPrice: decimal.Zero}
		p, err := f.products.Get(ctx, l.ProductID)
		switch {
		case err == nil:
			pl.Name = p.Name
			pl.UnitPrice = decimal.NewFromFloat(p.Price)
			pl.Found = true
		case errors.Is(err, store.ErrNotFound):
			log.WithField("product_id", l.ProductID).Warn("⚠️ Produit introuvable, ligne ignorée")
		default:
			return nil, apperr.Upstream("get product", err)
		}
		out = append(out, pl)
	}
	return out, nil
}

// resolveCoupon privilégie l'instantané du panier, puis le code transmis.
func (f *Finalizer) resolveCoupon(ctx context.Context, userID int64, requested *models.Coupon) (*models.Coupon, error) {
	c, err := f.carts.Get(ctx, userID)
	switch {
	case err == nil && c.AppliedCoupon != nil:
		return c.AppliedCoupon, nil
	case err != nil && !errors.Is(err, store.ErrNotFound):
		return nil, apperr.Upstream("get cart", err)
	}

	if requested == nil || requested.Code == "" || f.coupons == nil {
		return nil, nil
	}
	coupon, err := f.coupons.Redeemable(ctx, requested.Code)
	if err != nil {
		if kind := apperr.KindOf(err); kind == apperr.KindNotFound || kind == apperr.KindValidation {
			return nil, ErrInvalidCoupon
		}
		return nil, err
	}
	return coupon, nil
}

type reservation struct {
	productID int64
	quantity  int
}

func (f *Finalizer) reserve(ctx context.Context, lines []PricedLine) ([]reservation, error) {
	reserved := make([]reservation, 0, len(lines))
	for _, l := range lines {
		if !l.Found {
			continue
		}
		_, err := f.products.AdjustStock(ctx, l.ProductID, -l.Quantity)
		switch {
		case err == nil:
			reserved = append(reserved, reservation{productID: l.ProductID, quantity: l.Quantity})
		case errors.Is(err, store.ErrNotFound):
			log.WithField("product_id", l.ProductID).Warn("⚠️ Produit supprimé pendant l'achat, stock ignoré")
		case errors.Is(err, store.ErrInsufficientStock):
			f.compensate(ctx, reserved)
			return nil, apperr.Conflict(fmt.Sprintf("Stock insuficiente para %s", l.Name))
		default:
			f.compensate(ctx, reserved)
			return nil, apperr.Upstream("reserve stock", err)
		}
	}
	return reserved, nil
}

func (f *Finalizer) compensate(ctx context.Context, reserved []reservation) {
	for _, r := range reserved {
		if _, err := f.products.AdjustStock(ctx, r.productID, r.quantity); err != nil {
			log.WithError(err).WithFields(log.Fields{
				"product_id": r.productID,
				"quantity":   r.quantity,
			}).Error("❌ Restitution du stock échouée")
		}
	}
}

func mergeLines(lines []models.ReceiptLine) []models.ReceiptLine {
	out := make([]models.ReceiptLine, 0, len(lines))
	index := make(map[int64]int, len(lines))
	for _, l := range lines {
		if i, ok := index[l.ProductID]; ok {
			out[i].Quantity += l.Quantity
			continue
		}
		index[l.ProductID] = len(out)
		out = append(out, l)
	}
	return out
}
