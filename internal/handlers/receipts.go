package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"reviere_back_end/internal/checkout"
)

func (h *Handler) CreateReceipt(c *gin.Context) {
	var req checkout.FinalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Datos inválidos")
		return
	}
	r, err := h.Checkout.Finalize(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Recibo agregado exitosamente", "recibo": r})
}

func (h *Handler) ListReceipts(c *gin.Context) {
	views, err := h.Checkout.ListViews(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

func (h *Handler) GetReceipt(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	v, err := h.Checkout.GetView(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *Handler) DeleteReceipt(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.Checkout.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Recibo eliminado exitosamente"})
}
