package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reviere_back_end/internal/apperr"
	"reviere_back_end/internal/cart"
	"reviere_back_end/internal/catalog"
	"reviere_back_end/internal/coupon"
	"reviere_back_end/internal/models"
	"reviere_back_end/internal/store/memory"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakePhotos struct{ uploaded []string }

func (p *fakePhotos) Upload(_ context.Context, file *multipart.FileHeader) (string, error) {
	p.uploaded = append(p.uploaded, file.Filename)
	return "http://minio/productos/" + file.Filename, nil
}

func (p *fakePhotos) SignedURL(_ context.Context, objectURL string, _ time.Duration) (string, error) {
	return objectURL + "?X-Amz-Signature=abc", nil
}

func TestRespondError(t *testing.T) {
	cases := []struct {
		err     error
		status  int
		message string
	}{
		{apperr.NotFound("Producto no encontrado"), http.StatusNotFound, "Producto no encontrado"},
		{apperr.Validation("Datos"), http.StatusBadRequest, "Datos"},
		{apperr.Conflict("Stock insuficiente"), http.StatusConflict, "Stock insuficiente"},
		{apperr.Forbidden("No"), http.StatusForbidden, "No"},
		{apperr.Unauthorized("Credenciales inválidas"), http.StatusUnauthorized, "Credenciales inválidas"},
		{apperr.Upstream("get product", errors.New("scylla timeout")), http.StatusInternalServerError, "Error en el servidor"},
		{errors.New("boom"), http.StatusInternalServerError, "Error en el servidor"},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		respondError(c, tc.err)

		assert.Equal(t, tc.status, w.Code)
		var body map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, tc.message, body["message"])
	}
}

func productHandler(photos PhotoStore) *Handler {
	return &Handler{Catalog: catalog.NewService(memory.NewProducts(), memory.NewCounter()), Photos: photos}
}

func TestCreateProductMultipart(t *testing.T) {
	photos := &fakePhotos{}
	h := productHandler(photos)
	r := gin.New()
	r.POST("/productos", h.CreateProduct)
	r.GET("/productos/:id/foto", h.ProductPhoto)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("id_empresa", "3"))
	require.NoError(t, mw.WriteField("nombre", "Cuaderno"))
	require.NoError(t, mw.WriteField("precio", "45.5"))
	require.NoError(t, mw.WriteField("stock", "10"))
	fw, err := mw.CreateFormFile("foto", "cuaderno.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte("\x89PNG"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/productos", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var body struct {
		Producto models.Product `json:"producto"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, int64(3), body.Producto.CompanyID)
	assert.Equal(t, 45.5, body.Producto.Price)
	assert.Equal(t, "http://minio/productos/cuaderno.png", body.Producto.Photo)
	assert.Equal(t, []string{"cuaderno.png"}, photos.uploaded)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/productos/1/foto", nil))
	assert.Equal(t, http.StatusTemporaryRedirect, w.Code)
	assert.Equal(t, "http://minio/productos/cuaderno.png?X-Amz-Signature=abc", w.Header().Get("Location"))
}

func TestCreateProductJSONWithoutCompany(t *testing.T) {
	h := productHandler(nil)
	r := gin.New()
	r.POST("/productos", h.CreateProduct)

	req := httptest.NewRequest(http.MethodPost, "/productos", strings.NewReader(`{"nombre":"X","precio":1}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPaymentsDisabled(t *testing.T) {
	h := &Handler{}
	r := gin.New()
	r.POST("/pagos/webhook", h.StripeWebhook)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/pagos/webhook", strings.NewReader("{}")))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestCartWebSocketPushesUpdates(t *testing.T) {
	products := memory.NewProducts()
	require.NoError(t, products.Create(context.Background(), &models.Product{ID: 1, Name: "Lápiz", Price: 8, Stock: 50}))
	carts := memory.NewCarts()
	svc := cart.NewService(carts, products, coupon.NewService(memory.NewCoupons(), memory.NewCounter()))
	h := &Handler{Carts: svc, CartFeed: carts}

	r := gin.New()
	r.GET("/carrito/:id_usuario/ws", h.CartWebSocket)
	srv := httptest.NewServer(r)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/carrito/5/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	var first cartMessage
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, "connected", first.Type)

	_, err = svc.AddItem(context.Background(), 5, cart.AddItemRequest{ProductID: 1, Quantity: 3})
	require.NoError(t, err)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		var msg cartMessage
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Count == 3 {
			assert.Equal(t, "cart_updated", msg.Type)
			assert.Equal(t, 24.0, msg.Total)
			break
		}
	}
}
