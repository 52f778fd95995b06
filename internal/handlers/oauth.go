package handlers

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	log "github.com/sirupsen/logrus"

	"reviere_back_end/internal/account"
)

func oauthResponse(s *account.Session) gin.H {
	return gin.H{
		"token": s.Token,
		"usuario": gin.H{
			"id_usuario": s.Account.ID,
			"nombre":     s.Account.Name,
			"email":      s.Account.Email,
			"proveedor":  s.Account.Provider,
		},
	}
}

func (h *Handler) oauthLogin(c *gin.Context, user goth.User) (*account.Session, error) {
	name := user.Name
	if name == "" {
		name = user.NickName
	}
	return h.Accounts.OAuthLogin(c.Request.Context(), account.OAuthProfile{
		Provider: user.Provider,
		Email:    user.Email,
		Name:     name,
	})
}

// OAuthExchange reçoit le code obtenu par le front (SPA) et ouvre une session.
func (h *Handler) OAuthExchange(c *gin.Context) {
	provider := c.Param("provider")
	if h.OAuth == nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Proveedor no configurado"})
		return
	}
	if _, ok := h.OAuth.Get(provider); !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "Proveedor no configurado"})
		return
	}
	var body struct {
		Code string `json:"code"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Code == "" {
		badRequest(c, "El código de autorización es obligatorio")
		return
	}

	user, err := h.OAuth.Profile(c.Request.Context(), provider, body.Code)
	if err != nil {
		log.WithError(err).WithField("provider", provider).Warn("❌ Échange OAuth échoué")
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Error con " + provider})
		return
	}
	user.Provider = provider

	session, err := h.oauthLogin(c, user)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, oauthResponse(session))
}

// withProvider place le provider dans la query, où gothic.GetProviderName le lit.
func withProvider(c *gin.Context) {
	q := c.Request.URL.Query()
	q.Set("provider", c.Param("provider"))
	c.Request.URL.RawQuery = q.Encode()
}

func (h *Handler) BeginAuth(c *gin.Context) {
	if _, err := goth.GetProvider(c.Param("provider")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Proveedor no configurado"})
		return
	}
	withProvider(c)
	gothic.BeginAuthHandler(c.Writer, c.Request)
}

// CallbackAuth termine le flux de redirection et renvoie le jeton au front.
func (h *Handler) CallbackAuth(c *gin.Context) {
	withProvider(c)
	user, err := gothic.CompleteUserAuth(c.Writer, c.Request)
	if err != nil {
		log.WithError(err).WithField("provider", c.Param("provider")).Warn("❌ Callback OAuth échoué")
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Error con " + c.Param("provider")})
		return
	}
	session, err := h.oauthLogin(c, user)
	if err != nil {
		respondError(c, err)
		return
	}
	if h.FrontendURL == "" {
		c.JSON(http.StatusOK, oauthResponse(session))
		return
	}
	target := h.FrontendURL + "/oauth/success?token=" + url.QueryEscape(session.Token)
	c.Redirect(http.StatusTemporaryRedirect, target)
}

func (h *Handler) ListProviders(c *gin.Context) {
	names := []string{}
	if h.OAuth != nil {
		names = h.OAuth.Names()
	}
	c.JSON(http.StatusOK, gin.H{"proveedores": names})
}
