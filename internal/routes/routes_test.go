package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reviere_back_end/internal/account"
	"reviere_back_end/internal/auth"
	"reviere_back_end/internal/cache"
	"reviere_back_end/internal/cart"
	"reviere_back_end/internal/catalog"
	"reviere_back_end/internal/checkout"
	"reviere_back_end/internal/coupon"
	"reviere_back_end/internal/handlers"
	"reviere_back_end/internal/middleware"
	"reviere_back_end/internal/offer"
	"reviere_back_end/internal/review"
	"reviere_back_end/internal/store/memory"
)

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := memory.New()
	c := cache.NewMemory()
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	accounts := account.NewService(s.Accounts, s.Counter, tokens)
	coupons := coupon.NewService(s.Coupons, s.Counter)

	products := catalog.NewService(s.Products, s.Counter)
	offers := offer.NewEngine(s.Products, s.Offers, s.Counter, offer.WithReindexer(products))
	finalizer := checkout.NewFinalizer(s.Products, s.Receipts, s.Carts, s.Counter, coupons, checkout.WithUsers(accounts))

	h := &handlers.Handler{
		Catalog:     products,
		Collections: catalog.NewCollections(s.Catalogs, s.Products, s.Counter),
		Offers:      offers,
		Coupons:     coupons,
		Carts:       cart.NewService(s.Carts, s.Products, coupons),
		CartFeed:    s.CartFeed,
		Checkout:    finalizer,
		Reviews:     review.NewService(s.Reviews, s.Products, s.Counter),
		Accounts:    accounts,
		Auth:        middleware.NewAuthenticator(tokens, c, false),
	}

	r := gin.New()
	RegisterRoutes(r, h, c, Options{})
	return r
}

type response struct {
	Code int
	Body map[string]any
	List []map[string]any
}

func do(t *testing.T, r http.Handler, method, path, token string, body any) response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	res := response{Code: w.Code}
	raw := w.Body.Bytes()
	if len(raw) > 0 && raw[0] == '[' {
		require.NoError(t, json.Unmarshal(raw, &res.List))
	} else if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &res.Body))
	}
	return res
}

func login(t *testing.T, r http.Handler, path, email, password string) string {
	t.Helper()
	res := do(t, r, http.MethodPost, path, "", gin.H{"email": email, "password": password})
	require.Equal(t, http.StatusOK, res.Code, res.Body)
	token, _ := res.Body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestStorefrontFlow(t *testing.T) {
	r := newRouter(t)

	res := do(t, r, http.MethodPost, "/registro/empresa", "", gin.H{
		"nombre": "Papelería Sol", "email": "sol@mail.com", "password": "clave", "logo_url": "https://cdn/logo.png",
	})
	require.Equal(t, http.StatusCreated, res.Code, res.Body)
	assert.EqualValues(t, 1, res.Body["id_empresa"])
	company := login(t, r, "/login/empresa", "sol@mail.com", "clave")

	product := gin.H{"id_empresa": 1, "nombre": "Cuaderno", "precio": 100, "stock": 5}
	res = do(t, r, http.MethodPost, "/productos", "", product)
	assert.Equal(t, http.StatusUnauthorized, res.Code)

	res = do(t, r, http.MethodPost, "/productos", company, gin.H{"nombre": "Sin empresa", "precio": 1})
	assert.Equal(t, http.StatusBadRequest, res.Code)

	res = do(t, r, http.MethodPost, "/productos", company, product)
	require.Equal(t, http.StatusCreated, res.Code, res.Body)

	now := time.Now().UTC()
	offerBody := gin.H{
		"id_producto": 1, "descuento": 20, "precio_oferta": 80,
		"fecha_inicio": now.Add(-time.Hour).Format(time.RFC3339),
		"fecha_fin":    now.Add(24 * time.Hour).Format(time.RFC3339),
	}
	res = do(t, r, http.MethodPost, "/ofertas", company, offerBody)
	require.Equal(t, http.StatusCreated, res.Code, res.Body)
	res = do(t, r, http.MethodPost, "/ofertas", company, offerBody)
	assert.Equal(t, http.StatusConflict, res.Code)

	res = do(t, r, http.MethodGet, "/productos/1", "", nil)
	require.Equal(t, http.StatusOK, res.Code)
	assert.EqualValues(t, 80, res.Body["precio"])
	assert.EqualValues(t, 100, res.Body["precio_original"])
	assert.Equal(t, true, res.Body["en_oferta"])

	res = do(t, r, http.MethodGet, "/ofertas", "", nil)
	require.Len(t, res.List, 1)
	assert.Equal(t, "Cuaderno", res.List[0]["nombre_producto"])

	res = do(t, r, http.MethodPost, "/registro", "", gin.H{"nombre": "Ana", "email": "ana@mail.com", "password": "clave"})
	require.Equal(t, http.StatusCreated, res.Code, res.Body)
	user := login(t, r, "/login", "ana@mail.com", "clave")

	res = do(t, r, http.MethodPost, "/carrito/1", user, gin.H{"id_producto": 1, "cantidad": 2})
	require.Equal(t, http.StatusOK, res.Code, res.Body)
	assert.Len(t, res.Body["productos"], 1)

	res = do(t, r, http.MethodPost, "/recibos", user, gin.H{
		"id_usuario": 1,
		"productos":  []gin.H{{"id_producto": 1, "cantidad": 2}},
	})
	require.Equal(t, http.StatusCreated, res.Code, res.Body)
	recibo := res.Body["recibo"].(map[string]any)
	assert.EqualValues(t, 160, recibo["precio_total"])
	assert.Equal(t, "2 Cuaderno", recibo["detalle"])

	res = do(t, r, http.MethodGet, "/productos/1", "", nil)
	assert.EqualValues(t, 3, res.Body["stock"])
	res = do(t, r, http.MethodGet, "/carrito/1", user, nil)
	assert.Empty(t, res.Body["productos"])

	res = do(t, r, http.MethodGet, "/recibos", user, nil)
	require.Len(t, res.List, 1)
	assert.Equal(t, "Ana", res.List[0]["nombre_usuario"])

	res = do(t, r, http.MethodDelete, "/ofertas/1", company, nil)
	require.Equal(t, http.StatusOK, res.Code)
	res = do(t, r, http.MethodGet, "/productos/1", "", nil)
	assert.EqualValues(t, 100, res.Body["precio"])
	assert.Nil(t, res.Body["precio_original"])
}

func TestUserCannotWriteCatalog(t *testing.T) {
	r := newRouter(t)
	res := do(t, r, http.MethodPost, "/registro", "", gin.H{"nombre": "Ana", "email": "ana@mail.com", "password": "clave"})
	require.Equal(t, http.StatusCreated, res.Code)
	user := login(t, r, "/login", "ana@mail.com", "clave")

	res = do(t, r, http.MethodPost, "/cupones", user, gin.H{"codigo": "X", "descuento": 10})
	assert.Equal(t, http.StatusForbidden, res.Code)
	assert.Equal(t, "Acceso no permitido", res.Body["message"])
}

func TestLogoutRevokesToken(t *testing.T) {
	r := newRouter(t)
	res := do(t, r, http.MethodPost, "/registro", "", gin.H{"nombre": "Ana", "email": "ana@mail.com", "password": "clave"})
	require.Equal(t, http.StatusCreated, res.Code)
	token := login(t, r, "/login", "ana@mail.com", "clave")

	assert.Equal(t, http.StatusOK, do(t, r, http.MethodGet, "/carrito/1", token, nil).Code)
	assert.Equal(t, http.StatusOK, do(t, r, http.MethodPost, "/logout", token, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, do(t, r, http.MethodGet, "/carrito/1", token, nil).Code)
}

func TestEmployeeRegisteredByCompany(t *testing.T) {
	r := newRouter(t)
	res := do(t, r, http.MethodPost, "/registro/empresa", "", gin.H{
		"nombre": "Sol", "email": "sol@mail.com", "password": "clave", "logo_url": "logo.png",
	})
	require.Equal(t, http.StatusCreated, res.Code)
	company := login(t, r, "/login/empresa", "sol@mail.com", "clave")

	res = do(t, r, http.MethodPost, "/registro/empleado", company, gin.H{"nombre": "Luis", "email": "luis@mail.com", "password": "clave"})
	require.Equal(t, http.StatusCreated, res.Code, res.Body)

	res = do(t, r, http.MethodPost, "/login/empleado", "", gin.H{"email": "luis@mail.com", "password": "clave"})
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, "¡Bienvenido Luis de Sol!", res.Body["message"])
}

func TestLoginRateLimit(t *testing.T) {
	r := newRouter(t)
	for i := 0; i < middleware.LoginMaxAttempts; i++ {
		res := do(t, r, http.MethodPost, "/login", "", gin.H{"email": "nadie@mail.com", "password": "x"})
		require.Equal(t, http.StatusUnauthorized, res.Code)
	}
	res := do(t, r, http.MethodPost, "/login", "", gin.H{"email": "nadie@mail.com", "password": "x"})
	assert.Equal(t, http.StatusTooManyRequests, res.Code)
}

func TestNotFoundAndValidationPayloads(t *testing.T) {
	r := newRouter(t)

	res := do(t, r, http.MethodGet, "/productos/999", "", nil)
	assert.Equal(t, http.StatusNotFound, res.Code)
	assert.NotEmpty(t, res.Body["message"])

	res = do(t, r, http.MethodGet, "/productos/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, res.Code)

	res = do(t, r, http.MethodGet, "/productos?id_empresa=7", "", nil)
	assert.Equal(t, http.StatusOK, res.Code)
	assert.Empty(t, res.List)
}
