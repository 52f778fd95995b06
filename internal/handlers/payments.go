package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"reviere_back_end/internal/middleware"
)

const maxWebhookBody = 65536

func (h *Handler) CreatePaymentIntent(c *gin.Context) {
	if h.Payments == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "Pagos no disponibles"})
		return
	}
	var body struct {
		UserID int64 `json:"id_usuario"`
	}
	_ = c.ShouldBindJSON(&body)
	if claims, ok := middleware.Claims(c); ok {
		body.UserID = claims.AccountID
	}

	intent, quote, err := h.Payments.CreateIntent(c.Request.Context(), body.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"client_secret": intent.ClientSecret,
		"id_intent":     intent.ID,
		"subtotal":      quote.Subtotal.StringFixed(2),
		"descuento":     quote.Discount.StringFixed(2),
		"total":         quote.Total.StringFixed(2),
	})
}

// StripeWebhook finalise le checkout d'un paiement confirmé.
func (h *Handler) StripeWebhook(c *gin.Context) {
	if h.Payments == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "Pagos no disponibles"})
		return
	}
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		badRequest(c, "Cuerpo ilegible")
		return
	}
	receipt, err := h.Payments.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		respondError(c, err)
		return
	}
	resp := gin.H{"received": true}
	if receipt != nil {
		resp["id_recibo"] = receipt.ID
	}
	c.JSON(http.StatusOK, resp)
}
