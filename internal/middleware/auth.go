package middleware

import (
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"reviere_back_end/internal/auth"
	"reviere_back_end/internal/cache"
)

const claimsKey = "claims"

type Authenticator struct {
	tokens   *auth.TokenManager
	cache    cache.Cache
	disabled bool
}

// NewAuthenticator ; disabled laisse passer toutes les requêtes (développement local).
func NewAuthenticator(tokens *auth.TokenManager, c cache.Cache, disabled bool) *Authenticator {
	return &Authenticator{tokens: tokens, cache: c, disabled: disabled}
}

// Required exige un Bearer valide et non révoqué.
func (a *Authenticator) Required() gin.HandlerFunc {
	return func(c *gin.Context) {
		if a.disabled {
			c.Next()
			return
		}

		raw, ok := bearer(c.GetHeader("Authorization"))
		if !ok && websocket.IsWebSocketUpgrade(c.Request) {
			// un navigateur ne peut pas poser d'en-tête sur un WebSocket
			raw = c.Query("token")
			ok = raw != ""
		}
		if !ok {
			log.WithField("path", c.FullPath()).Debug("❌ Pas de header Authorization")
			abort(c, http.StatusUnauthorized, "Token faltante")
			return
		}

		claims, err := a.tokens.Parse(raw)
		if err != nil {
			log.WithError(err).Debug("❌ Erreur parsing JWT")
			abort(c, http.StatusUnauthorized, "Token inválido")
			return
		}
		if a.cache != nil && a.cache.IsTokenBlacklisted(c.Request.Context(), claims.ID) {
			log.WithField("account_id", claims.AccountID).Info("🚫 Jeton révoqué présenté")
			abort(c, http.StatusUnauthorized, "Token revocado")
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// RequireRole refuse les comptes dont le type n'est pas listé.
func (a *Authenticator) RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if a.disabled {
			c.Next()
			return
		}
		claims, ok := Claims(c)
		if !ok {
			abort(c, http.StatusUnauthorized, "Token faltante")
			return
		}
		if !slices.Contains(roles, claims.Role) {
			abort(c, http.StatusForbidden, "Acceso no permitido")
			return
		}
		c.Next()
	}
}

// Revoke met le jeton courant en liste noire jusqu'à son expiration.
func (a *Authenticator) Revoke(c *gin.Context) error {
	claims, ok := Claims(c)
	if !ok || a.cache == nil || claims.ExpiresAt == nil {
		return nil
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	return a.cache.BlacklistToken(c.Request.Context(), claims.ID, ttl)
}

func Claims(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}

func bearer(header string) (string, bool) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"message": msg})
}
