package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"reviere_back_end/internal/cache"
)

const (
	LoginMaxAttempts = 5
	LoginWindow      = 15 * time.Minute
	APIWindow        = time.Minute
)

// RateLimit limite les requêtes par IP sur une fenêtre d'une minute.
// Une panne du cache laisse passer la requête.
func RateLimit(c cache.Cache, perMinute int) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if c == nil || perMinute <= 0 {
			ctx.Next()
			return
		}
		n, err := c.IncrementRateLimit(ctx.Request.Context(), "api:"+ctx.ClientIP(), APIWindow)
		if err != nil {
			log.WithError(err).Warn("⚠️ Limiteur indisponible")
			ctx.Next()
			return
		}
		ctx.Header("X-RateLimit-Limit", fmt.Sprintf("%d", perMinute))
		if n > int64(perMinute) {
			ctx.Header("Retry-After", fmt.Sprintf("%d", int(APIWindow.Seconds())))
			abort(ctx, http.StatusTooManyRequests, "Demasiadas solicitudes. Intenta de nuevo en un minuto")
			return
		}
		ctx.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", int64(perMinute)-n))
		ctx.Next()
	}
}

// LoginRateLimit limite les tentatives de connexion par email.
func LoginRateLimit(c cache.Cache) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if c == nil {
			ctx.Next()
			return
		}
		body, err := io.ReadAll(ctx.Request.Body)
		if err != nil {
			ctx.Next()
			return
		}
		// remettre le body pour le handler
		ctx.Request.Body = io.NopCloser(bytes.NewBuffer(body))

		var input struct {
			Email string `json:"email"`
		}
		if err := json.Unmarshal(body, &input); err != nil || input.Email == "" {
			ctx.Next()
			return
		}

		key := "login:" + ctx.FullPath() + ":" + strings.ToLower(input.Email)
		n, err := c.IncrementRateLimit(ctx.Request.Context(), key, LoginWindow)
		if err != nil {
			log.WithError(err).Warn("⚠️ Limiteur indisponible")
			ctx.Next()
			return
		}
		if n > LoginMaxAttempts {
			log.WithField("email", input.Email).Warn("🚫 Trop de tentatives de connexion")
			ctx.Header("Retry-After", fmt.Sprintf("%d", int(LoginWindow.Seconds())))
			abort(ctx, http.StatusTooManyRequests,
				fmt.Sprintf("Demasiados intentos. Intenta de nuevo en %d minutos", int(LoginWindow.Minutes())))
			return
		}
		ctx.Next()
	}
}
