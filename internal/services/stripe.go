package services

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/paymentintent"
	"github.com/stripe/stripe-go/v83/webhook"

	"reviere_back_end/internal/checkout"
)

// StripeGateway crée les PaymentIntent et vérifie les webhooks.
// stripe.Key doit être initialisée au démarrage.
type StripeGateway struct {
	currency      string
	webhookSecret string
}

func NewStripeGateway(currency, webhookSecret string) *StripeGateway {
	return &StripeGateway{currency: currency, webhookSecret: webhookSecret}
}

func (g *StripeGateway) CreateIntent(ctx context.Context, amountCents int64, metadata map[string]string) (*checkout.Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String(g.currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, errors.Wrap(err, "stripe payment intent")
	}
	return &checkout.Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Amount:       pi.Amount,
		Metadata:     pi.Metadata,
	}, nil
}

func (g *StripeGateway) ParseEvent(payload []byte, signature string) (*checkout.Event, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, err
	}

	out := &checkout.Event{ID: event.ID, Type: string(event.Type)}
	if event.Data == nil {
		return out, nil
	}
	switch out.Type {
	case checkout.EventPaymentSucceeded, checkout.EventPaymentFailed:
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return nil, errors.Wrap(err, "décodage payment intent")
		}
		out.Intent = &checkout.Intent{ID: pi.ID, Amount: pi.Amount, Metadata: pi.Metadata}
	}
	return out, nil
}
