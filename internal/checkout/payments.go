package checkout

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"reviere_back_end/internal/apperr"
	"reviere_back_end/internal/models"
)

const (
	EventPaymentSucceeded = "payment_intent.succeeded"
	EventPaymentFailed    = "payment_intent.payment_failed"

	metaUser   = "id_usuario"
	metaLines  = "productos"
	metaCoupon = "cupon"

	webhookClaimTTL = 72 * time.Hour
)

var ErrInvalidSignature = apperr.Validation("Firma inválida")

// Intent est l'intention de paiement créée chez le prestataire.
type Intent struct {
	ID           string
	ClientSecret string
	Amount       int64
	Metadata     map[string]string
}

// Event est un événement de webhook vérifié.
type Event struct {
	ID     string
	Type   string
	Intent *Intent
}

type Gateway interface {
	CreateIntent(ctx context.Context, amountCents int64, metadata map[string]string) (*Intent, error)
	ParseEvent(payload []byte, signature string) (*Event, error)
}

// Claimer garantit qu'un événement n'est traité qu'une fois.
type Claimer interface {
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Forget(ctx context.Context, key string) error
}

// Payments relie le paiement en ligne au Finalizer : le montant facturé est
// toujours le total serveur du panier, et le reçu est émis à la confirmation.
type Payments struct {
	finalizer *Finalizer
	gateway   Gateway
	once      Claimer
}

func NewPayments(finalizer *Finalizer, gateway Gateway, once Claimer) *Payments {
	return &Payments{finalizer: finalizer, gateway: gateway, once: once}
}

func (p *Payments) CreateIntent(ctx context.Context, userID int64) (*Intent, *Quote, error) {
	if userID <= 0 {
		return nil, nil, ErrUserRequired
	}
	q, lines, err := p.finalizer.QuoteCart(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	if q.Cents() <= 0 {
		return nil, nil, ErrEmptyOrder
	}

	meta := map[string]string{
		metaUser:  strconv.FormatInt(userID, 10),
		metaLines: EncodeLines(lines),
	}
	if q.Coupon != nil {
		meta[metaCoupon] = q.Coupon.Code
	}

	intent, err := p.gateway.CreateIntent(ctx, q.Cents(), meta)
	if err != nil {
		return nil, nil, apperr.Upstream("create payment intent", err)
	}
	log.WithFields(log.Fields{"user_id": userID, "intent_id": intent.ID, "amount": q.Cents()}).Info("💳 Intention de paiement créée")
	return intent, q, nil
}

// HandleWebhook vérifie l'événement et émet le reçu d'un paiement réussi.
// Un événement déjà traité ou sans intérêt retourne (nil, nil).
func (p *Payments) HandleWebhook(ctx context.Context, payload []byte, signature string) (*models.Receipt, error) {
	ev, err := p.gateway.ParseEvent(payload, signature)
	if err != nil {
		log.WithError(err).Warn("⚠️ Webhook Stripe rejeté")
		return nil, ErrInvalidSignature
	}

	switch ev.Type {
	case EventPaymentSucceeded:
	case EventPaymentFailed:
		log.WithField("intent_id", intentID(ev)).Warn("⚠️ Paiement échoué")
		return nil, nil
	default:
		return nil, nil
	}
	if ev.Intent == nil {
		return nil, apperr.Validation("Evento sin intención de pago")
	}

	key := "stripe:" + ev.ID
	claimed, err := p.once.Claim(ctx, key, webhookClaimTTL)
	if err != nil {
		return nil, apperr.Upstream("claim webhook", err)
	}
	if !claimed {
		log.WithField("event_id", ev.ID).Info("ℹ️ Webhook déjà traité")
		return nil, nil
	}

	req, err := requestFromIntent(ev.Intent)
	if err != nil {
		return nil, err
	}
	receipt, err := p.finalizer.Finalize(ctx, req)
	if err != nil {
		if ferr := p.once.Forget(ctx, key); ferr != nil {
			log.WithError(ferr).Warn("⚠️ Libération du webhook échouée")
		}
		return nil, err
	}
	log.WithFields(log.Fields{"intent_id": ev.Intent.ID, "receipt_id": receipt.ID}).Info("✅ Paiement confirmé")
	return receipt, nil
}

func intentID(ev *Event) string {
	if ev.Intent == nil {
		return ""
	}
	return ev.Intent.ID
}

func requestFromIntent(in *Intent) (FinalizeRequest, error) {
	userID, err := strconv.ParseInt(in.Metadata[metaUser], 10, 64)
	if err != nil {
		return FinalizeRequest{}, apperr.Validation("Metadatos de pago incompletos")
	}
	lines, err := DecodeLines(in.Metadata[metaLines])
	if err != nil {
		return FinalizeRequest{}, apperr.Validation("Metadatos de pago incompletos")
	}
	total := float64(in.Amount) / 100
	req := FinalizeRequest{UserID: userID, Lines: lines, Total: &total}
	if code := in.Metadata[metaCoupon]; code != "" {
		req.AppliedCoupon = &models.Coupon{Code: code}
	}
	return req, nil
}

// EncodeLines sérialise les lignes en "id:qte,id:qte" pour les métadonnées
// du prestataire, limitées en taille.
func EncodeLines(lines []models.ReceiptLine) string {
	parts := make([]string, 0, len(lines))
	for _, l := range lines {
		parts = append(parts, fmt.Sprintf("%d:%d", l.ProductID, l.Quantity))
	}
	return strings.Join(parts, ",")
}

func DecodeLines(s string) ([]models.ReceiptLine, error) {
	if s == "" {
		return nil, fmt.Errorf("lignes vides")
	}
	var out []models.ReceiptLine
	for _, part := range strings.Split(s, ",") {
		id, qty, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("ligne invalide %q", part)
		}
		pid, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			return nil, err
		}
		n, err := strconv.Atoi(qty)
		if err != nil {
			return nil, err
		}
		out = append(out, models.ReceiptLine{ProductID: pid, Quantity: n})
	}
	return out, nil
}
