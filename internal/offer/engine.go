// Package offer applique les offres au catalogue : une offre active remplace le
// prix du produit et mémorise l'ancien prix jusqu'à sa désactivation.
package offer

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	"reviere_back_end/internal/apperr"
	"reviere_back_end/internal/models"
	"reviere_back_end/internal/store"
)

var (
	ErrOfferNotFound    = apperr.NotFound("Oferta no encontrada")
	ErrProductNotFound  = apperr.NotFound("Producto no encontrado")
	ErrAlreadyOnOffer   = apperr.Conflict("El producto ya tiene una oferta activa")
	ErrProductRequired  = apperr.Validation("El id_producto es obligatorio")
	ErrInvalidDiscount  = apperr.Validation("El descuento debe ser mayor o igual a 0")
	ErrInvalidPrice     = apperr.Validation("El precio_oferta debe ser mayor o igual a 0")
	ErrDatesRequired    = apperr.Validation("Las fechas de inicio y fin son obligatorias")
	ErrInvalidDateRange = apperr.Validation("La fecha_fin debe ser posterior a la fecha_inicio")
	ErrAlreadyEnded     = apperr.Validation("No se puede activar una oferta cuya fecha_fin ya pasó")
)

// Reindexer est notifié quand le prix affiché d'un produit change.
type Reindexer interface {
	Reindex(ctx context.Context, productID int64)
}

type CreateOfferRequest struct {
	ProductID  int64      `json:"id_producto"`
	Discount   float64    `json:"descuento"`
	OfferPrice float64    `json:"precio_oferta"`
	StartDate  *time.Time `json:"fecha_inicio"`
	EndDate    *time.Time `json:"fecha_fin"`
}

func (r CreateOfferRequest) Validate() error {
	if r.ProductID <= 0 {
		return ErrProductRequired
	}
	if r.Discount < 0 {
		return ErrInvalidDiscount
	}
	if r.OfferPrice < 0 {
		return ErrInvalidPrice
	}
	if r.StartDate == nil || r.EndDate == nil {
		return ErrDatesRequired
	}
	if !r.EndDate.After(*r.StartDate) {
		return ErrInvalidDateRange
	}
	return nil
}

// UpdateOfferRequest ne contient que les champs à modifier ; id_producto est immuable.
type UpdateOfferRequest struct {
	Discount   *float64   `json:"descuento"`
	OfferPrice *float64   `json:"precio_oferta"`
	StartDate  *time.Time `json:"fecha_inicio"`
	EndDate    *time.Time `json:"fecha_fin"`
	Active     *bool      `json:"estado"`
}

type Option func(*Engine)

func WithReindexer(r Reindexer) Option      { return func(e *Engine) { e.reindexer = r } }
func WithClock(now func() time.Time) Option { return func(e *Engine) { e.now = now } }

// Engine est le seul composant autorisé à écrire original_price et on_offer.
type Engine struct {
	products  store.ProductStore
	offers    store.OfferStore
	counter   store.Counter
	reindexer Reindexer
	now       func() time.Time
}

func NewEngine(products store.ProductStore, offers store.OfferStore, counter store.Counter, opts ...Option) *Engine {
	e := &Engine{products: products, offers: offers, counter: counter, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Create vérifie le produit avant d'allouer l'id, puis active l'offre.
func (e *Engine) Create(ctx context.Context, req CreateOfferRequest) (*models.Offer, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	product, err := e.products.Get(ctx, req.ProductID)
	if err != nil {
		return nil, productErr("get product", err)
	}
	if product.OnOffer {
		return nil, ErrAlreadyOnOffer
	}

	id, err := e.counter.NextID(ctx, store.NSOffers)
	if err != nil {
		return nil, apperr.Upstream("allocate offer id", err)
	}

	now := e.now()
	o := &models.Offer{
		ID:         id,
		ProductID:  req.ProductID,
		Discount:   req.Discount,
		OfferPrice: req.OfferPrice,
		StartDate:  *req.StartDate,
		EndDate:    *req.EndDate,
		Active:     true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := e.claim(ctx, o); err != nil {
		return nil, err
	}
	if err := e.offers.Create(ctx, o); err != nil {
		e.release(ctx, o)
		return nil, apperr.Upstream("create offer", err)
	}
	if err := e.applyToProduct(ctx, o); err != nil {
		if delErr := e.offers.Delete(ctx, o.ID); delErr != nil {
			log.WithError(delErr).WithField("offer_id", o.ID).Error("❌ Annulation de l'offre impossible")
		}
		e.release(ctx, o)
		return nil, err
	}

	log.WithFields(log.Fields{
		"offer_id":    o.ID,
		"product_id":  o.ProductID,
		"offer_price": o.OfferPrice,
	}).Info("✅ Offre créée et appliquée")
	return o, nil
}

func (e *Engine) Get(ctx context.Context, id int64) (*models.Offer, error) {
	o, err := e.offers.Get(ctx, id)
	if err != nil {
		return nil, offerErr("get offer", err)
	}
	return o, nil
}

// List retourne les offres avec le nom du produit associé.
func (e *Engine) List(ctx context.Context) ([]models.OfferView, error) {
	offers, err := e.offers.List(ctx)
	if err != nil {
		return nil, apperr.Upstream("list offers", err)
	}

	names := make(map[int64]string)
	out := make([]models.OfferView, 0, len(offers))
	for _, o := range offers {
		name, ok := names[o.ProductID]
		if !ok {
			p, err := e.products.Get(ctx, o.ProductID)
			switch {
			case err == nil:
				name = p.Name
			case errors.Is(err, store.ErrNotFound):
				name = "Producto no encontrado"
			default:
				return nil, apperr.Upstream("get offer product", err)
			}
			names[o.ProductID] = name
		}
		out = append(out, models.OfferView{Offer: o, ProductName: name})
	}
	return out, nil
}

// Update réécrit les champs fournis puis réaligne le produit sur le nouvel état actif.
func (e *Engine) Update(ctx context.Context, id int64, req UpdateOfferRequest) (*models.Offer, error) {
	current, err := e.offers.Get(ctx, id)
	if err != nil {
		return nil, offerErr("get offer", err)
	}

	next := *current
	if req.Discount != nil {
		if *req.Discount < 0 {
			return nil, ErrInvalidDiscount
		}
		next.Discount = *req.Discount
	}
	if req.OfferPrice != nil {
		if *req.OfferPrice < 0 {
			return nil, ErrInvalidPrice
		}
		next.OfferPrice = *req.OfferPrice
	}
	if req.StartDate != nil {
		next.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		next.EndDate = *req.EndDate
	}
	if req.Active != nil {
		next.Active = *req.Active
	}
	if !next.EndDate.After(next.StartDate) {
		return nil, ErrInvalidDateRange
	}
	next.UpdatedAt = e.now()

	switch {
	case current.Active && next.Active:
		if err := e.offers.Update(ctx, &next); err != nil {
			return nil, offerErr("update offer", err)
		}
		if next.OfferPrice != current.OfferPrice {
			if err := e.repriceProduct(ctx, &next); err != nil {
				return nil, err
			}
		}

	case current.Active && !next.Active:
		// Le prix est restauré avant la désactivation : en cas d'échec l'offre
		// reste active et une nouvelle tentative reprend au même point.
		if err := e.restoreProduct(ctx, next.ProductID); err != nil {
			return nil, err
		}
		if err := e.offers.Update(ctx, &next); err != nil {
			return nil, offerErr("update offer", err)
		}
		e.release(ctx, &next)

	case !current.Active && next.Active:
		if next.EndDate.Before(e.now()) {
			return nil, ErrAlreadyEnded
		}
		if _, err := e.products.Get(ctx, next.ProductID); err != nil {
			return nil, productErr("get product", err)
		}
		if err := e.claim(ctx, &next); err != nil {
			return nil, err
		}
		if err := e.offers.Update(ctx, &next); err != nil {
			e.release(ctx, &next)
			return nil, offerErr("update offer", err)
		}
		if err := e.applyToProduct(ctx, &next); err != nil {
			next.Active = false
			if rbErr := e.offers.Update(ctx, &next); rbErr != nil {
				log.WithError(rbErr).WithField("offer_id", id).Error("❌ Annulation de la réactivation impossible")
			}
			e.release(ctx, &next)
			return nil, err
		}

	default:
		if err := e.offers.Update(ctx, &next); err != nil {
			return nil, offerErr("update offer", err)
		}
	}

	log.WithFields(log.Fields{"offer_id": id, "active": next.Active}).Info("✅ Offre mise à jour")
	return &next, nil
}

// Delete restaure le prix du produit si l'offre était active, puis la supprime.
// Un id inconnu ne restaure rien ; seule la suppression est tentée.
func (e *Engine) Delete(ctx context.Context, id int64) error {
	o, err := e.offers.Get(ctx, id)
	switch {
	case err == nil:
		if o.Active {
			if err := e.restoreProduct(ctx, o.ProductID); err != nil {
				return err
			}
			e.release(ctx, o)
		}
	case errors.Is(err, store.ErrNotFound):
		log.WithField("offer_id", id).Warn("⚠️ Offre introuvable, suppression sans restauration")
	default:
		return apperr.Upstream("get offer", err)
	}

	if err := e.offers.Delete(ctx, id); err != nil {
		return apperr.Upstream("delete offer", err)
	}
	log.WithField("offer_id", id).Info("🗑️ Offre supprimée")
	return nil
}

// DetachProduct supprime toutes les offres d'un produit sur le point d'être supprimé.
func (e *Engine) DetachProduct(ctx context.Context, productID int64) error {
	offers, err := e.offers.ListByProduct(ctx, productID)
	if err != nil {
		return apperr.Upstream("list product offers", err)
	}
	for i := range offers {
		o := &offers[i]
		if o.Active {
			e.release(ctx, o)
		}
		if err := e.offers.Delete(ctx, o.ID); err != nil {
			return apperr.Upstream("delete product offer", err)
		}
	}
	if len(offers) > 0 {
		log.WithFields(log.Fields{"product_id": productID, "count": len(offers)}).Info("🗑️ Offres du produit supprimées")
	}
	return nil
}

// SweepResult résume un passage du balayeur.
type SweepResult struct {
	Expired int
	Failed  int
}

// Sweep désactive les offres actives dont la date de fin est passée. Le prix est
// restauré avant la désactivation : une offre en échec reste active et sera
// reprise au passage suivant. Un échec n'interrompt pas le passage.
func (e *Engine) Sweep(ctx context.Context) (SweepResult, error) {
	var res SweepResult

	expired, err := e.offers.ListExpired(ctx, e.now())
	if err != nil {
		return res, apperr.Upstream("list expired offers", err)
	}

	for i := range expired {
		o := &expired[i]
		entry := log.WithFields(log.Fields{"offer_id": o.ID, "product_id": o.ProductID})

		if err := e.restoreProduct(ctx, o.ProductID); err != nil {
			res.Failed++
			entry.WithError(err).Error("❌ Restauration du prix échouée")
			continue
		}

		applied, err := e.offers.Deactivate(ctx, o.ID, o.EndDate)
		if err != nil {
			res.Failed++
			entry.WithError(err).Error("❌ Désactivation de l'offre expirée échouée")
			continue
		}
		if !applied {
			e.reapplyIfStillActive(ctx, o.ID, entry)
			continue
		}
		e.release(ctx, o)
		res.Expired++
		entry.Info("⏰ Offre expirée, prix restauré")
	}
	return res, nil
}

// reapplyIfStillActive remet le prix d'offre quand la désactivation n'a pas eu
// lieu parce que l'offre a été prolongée pendant le passage.
func (e *Engine) reapplyIfStillActive(ctx context.Context, id int64, entry *log.Entry) {
	current, err := e.offers.Get(ctx, id)
	if err != nil || !current.Active {
		return
	}
	if err := e.applyToProduct(ctx, current); err != nil {
		entry.WithError(err).Error("❌ Réapplication du prix d'offre échouée")
		return
	}
	entry.Info("🔁 Offre prolongée pendant le balayage, prix d'offre conservé")
}

// applyToProduct capture le prix courant dans original_price et applique le prix de l'offre.
func (e *Engine) applyToProduct(ctx context.Context, o *models.Offer) error {
	p, err := e.products.Get(ctx, o.ProductID)
	if err != nil {
		return productErr("get product", err)
	}
	original := p.Price
	if p.OriginalPrice != nil {
		original = *p.OriginalPrice
	}
	if err := e.products.SetPricing(ctx, o.ProductID, o.OfferPrice, &original, true); err != nil {
		return productErr("apply offer price", err)
	}
	e.reindex(ctx, o.ProductID)
	return nil
}

// repriceProduct déplace le prix d'un produit déjà en offre ; original_price est conservé.
func (e *Engine) repriceProduct(ctx context.Context, o *models.Offer) error {
	p, err := e.products.Get(ctx, o.ProductID)
	if errors.Is(err, store.ErrNotFound) {
		log.WithField("product_id", o.ProductID).Warn("⚠️ Produit introuvable, prix d'offre non appliqué")
		return nil
	}
	if err != nil {
		return apperr.Upstream("get product", err)
	}
	original := p.Price
	if p.OriginalPrice != nil {
		original = *p.OriginalPrice
	}
	if err := e.products.SetPricing(ctx, o.ProductID, o.OfferPrice, &original, true); err != nil {
		return apperr.Upstream("reprice product", err)
	}
	e.reindex(ctx, o.ProductID)
	return nil
}

// restoreProduct remet le prix d'origine. Un produit absent ou déjà restauré n'est pas une erreur.
func (e *Engine) restoreProduct(ctx context.Context, productID int64) error {
	p, err := e.products.Get(ctx, productID)
	if errors.Is(err, store.ErrNotFound) {
		log.WithField("product_id", productID).Warn("⚠️ Produit introuvable, rien à restaurer")
		return nil
	}
	if err != nil {
		return apperr.Upstream("get product", err)
	}
	if p.OriginalPrice == nil {
		return nil
	}
	err = e.products.SetPricing(ctx, productID, *p.OriginalPrice, nil, false)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return apperr.Upstream("restore product price", err)
	}
	e.reindex(ctx, productID)
	return nil
}

func (e *Engine) claim(ctx context.Context, o *models.Offer) error {
	err := e.offers.ClaimProduct(ctx, o.ProductID, o.ID)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrAlreadyExists):
		return ErrAlreadyOnOffer
	default:
		return apperr.Upstream("claim product", err)
	}
}

func (e *Engine) release(ctx context.Context, o *models.Offer) {
	if err := e.offers.ReleaseProduct(ctx, o.ProductID, o.ID); err != nil {
		log.WithError(err).WithFields(log.Fields{"offer_id": o.ID, "product_id": o.ProductID}).
			Error("❌ Libération du produit échouée")
	}
}

func (e *Engine) reindex(ctx context.Context, productID int64) {
	if e.reindexer != nil {
		e.reindexer.Reindex(ctx, productID)
	}
}

func offerErr(op string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrOfferNotFound
	}
	return apperr.Upstream(op, err)
}

func productErr(op string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return ErrProductNotFound
	}
	return apperr.Upstream(op, err)
}
