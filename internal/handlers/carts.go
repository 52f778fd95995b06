package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"reviere_back_end/internal/cart"
)

func (h *Handler) GetCart(c *gin.Context) {
	userID, ok := idParam(c, "id_usuario")
	if !ok {
		return
	}
	ct, err := h.Carts.Get(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ct)
}

func (h *Handler) ReplaceCart(c *gin.Context) {
	userID, ok := idParam(c, "id_usuario")
	if !ok {
		return
	}
	var req cart.ReplaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Datos inválidos")
		return
	}
	ct, err := h.Carts.Replace(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ct)
}

func (h *Handler) AddCartItem(c *gin.Context) {
	userID, ok := idParam(c, "id_usuario")
	if !ok {
		return
	}
	var req cart.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Datos inválidos")
		return
	}
	ct, err := h.Carts.AddItem(c.Request.Context(), userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ct)
}

func (h *Handler) RemoveCartItem(c *gin.Context) {
	userID, ok := idParam(c, "id_usuario")
	if !ok {
		return
	}
	productID, ok := idParam(c, "id_producto")
	if !ok {
		return
	}
	ct, err := h.Carts.RemoveItem(c.Request.Context(), userID, productID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ct)
}

func (h *Handler) SetCartItemQuantity(c *gin.Context) {
	userID, ok := idParam(c, "id_usuario")
	if !ok {
		return
	}
	productID, ok := idParam(c, "id_producto")
	if !ok {
		return
	}
	var body struct {
		Quantity *int `json:"cantidad"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Quantity == nil {
		badRequest(c, "La cantidad es obligatoria")
		return
	}
	ct, err := h.Carts.SetItemQuantity(c.Request.Context(), userID, productID, *body.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ct)
}

func (h *Handler) ClearCart(c *gin.Context) {
	userID, ok := idParam(c, "id_usuario")
	if !ok {
		return
	}
	ct, err := h.Carts.Clear(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ct)
}

func (h *Handler) ApplyCoupon(c *gin.Context) {
	userID, ok := idParam(c, "id_usuario")
	if !ok {
		return
	}
	var body struct {
		Code string `json:"codigo"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Code == "" {
		badRequest(c, "El código del cupón es obligatorio")
		return
	}
	ct, cp, err := h.Carts.ApplyCoupon(c.Request.Context(), userID, body.Code)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"carrito": ct, "cupon": cp})
}
