// Package handlers expose les services métier sur HTTP avec gin.
package handlers

import (
	"context"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"reviere_back_end/internal/account"
	"reviere_back_end/internal/apperr"
	"reviere_back_end/internal/auth"
	"reviere_back_end/internal/cart"
	"reviere_back_end/internal/catalog"
	"reviere_back_end/internal/checkout"
	"reviere_back_end/internal/coupon"
	"reviere_back_end/internal/middleware"
	"reviere_back_end/internal/offer"
	"reviere_back_end/internal/review"
	"reviere_back_end/internal/store"
)

// PhotoStore stocke les photos des produits (MinIO en production).
type PhotoStore interface {
	Upload(ctx context.Context, file *multipart.FileHeader) (string, error)
	SignedURL(ctx context.Context, objectURL string, duration time.Duration) (string, error)
}

type Handler struct {
	Catalog     *catalog.Service
	Collections *catalog.Collections
	Offers      *offer.Engine
	Coupons     *coupon.Service
	Carts       *cart.Service
	CartFeed    store.CartFeed
	Checkout    *checkout.Finalizer
	Payments    *checkout.Payments
	Reviews     *review.Service
	Accounts    *account.Service
	OAuth       *auth.OAuthRegistry
	Auth        *middleware.Authenticator
	Photos      PhotoStore
	FrontendURL string
}

func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// respondError traduit une erreur métier ; le détail d'une panne reste dans les logs.
func respondError(c *gin.Context, err error) {
	status := statusFor(apperr.KindOf(err))
	if status == http.StatusInternalServerError {
		log.WithError(err).WithFields(log.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		}).Error("❌ Erreur serveur")
	}
	c.JSON(status, gin.H{"message": apperr.Message(err)})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"message": msg})
}

// idParam lit un identifiant numérique de l'URL.
func idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "Identificador no válido")
		return 0, false
	}
	return id, true
}

func optionalInt64Query(c *gin.Context, name string) (*int64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		badRequest(c, "Parámetro "+name+" no válido")
		return nil, false
	}
	return &v, true
}
