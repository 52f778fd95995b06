package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"reviere_back_end/internal/account"
	"reviere_back_end/internal/middleware"
	"reviere_back_end/internal/models"
)

func (h *Handler) register(c *gin.Context, kind string) (*models.Account, bool) {
	var req account.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Faltan campos obligatorios")
		return nil, false
	}
	// un employé est rattaché à l'entreprise connectée
	if kind == models.AccountEmployee {
		if claims, ok := middleware.Claims(c); ok && claims.Role == models.AccountCompany {
			req.CompanyID = &claims.AccountID
		}
	}
	a, err := h.Accounts.Register(c.Request.Context(), kind, req)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return a, true
}

func (h *Handler) RegisterUser(c *gin.Context) {
	if a, ok := h.register(c, models.AccountUser); ok {
		c.JSON(http.StatusCreated, gin.H{"message": "Usuario registrado exitosamente", "id_usuario": a.ID})
	}
}

func (h *Handler) RegisterCompany(c *gin.Context) {
	if a, ok := h.register(c, models.AccountCompany); ok {
		c.JSON(http.StatusCreated, gin.H{"message": "Empresa registrada exitosamente", "id_empresa": a.ID})
	}
}

func (h *Handler) RegisterEmployee(c *gin.Context) {
	if a, ok := h.register(c, models.AccountEmployee); ok {
		c.JSON(http.StatusCreated, gin.H{"message": "Empleado registrado exitosamente", "id_empleado": a.ID})
	}
}

func (h *Handler) login(c *gin.Context, kind string) (*account.Session, bool) {
	var req account.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, account.ErrInvalidCredentials)
		return nil, false
	}
	session, err := h.Accounts.Login(c.Request.Context(), kind, req)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return session, true
}

func (h *Handler) LoginUser(c *gin.Context) {
	s, ok := h.login(c, models.AccountUser)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id_usuario": s.Account.ID,
		"nombre":     s.Account.Name,
		"token":      s.Token,
		"message":    fmt.Sprintf("¡Bienvenido %s!", s.Account.Name),
	})
}

func (h *Handler) LoginCompany(c *gin.Context) {
	s, ok := h.login(c, models.AccountCompany)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id_empresa": s.Account.ID,
		"nombre":     s.Account.Name,
		"logo_url":   s.Account.LogoURL,
		"token":      s.Token,
		"message":    fmt.Sprintf("¡Bienvenido %s!", s.Account.Name),
	})
}

func (h *Handler) LoginEmployee(c *gin.Context) {
	s, ok := h.login(c, models.AccountEmployee)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id_empleado": s.Account.ID,
		"nombre":      s.Account.Name,
		"id_empresa":  s.Company.ID,
		"token":       s.Token,
		"message":     fmt.Sprintf("¡Bienvenido %s de %s!", s.Account.Name, s.Company.Name),
	})
}

// Logout révoque le jeton présenté.
func (h *Handler) Logout(c *gin.Context) {
	if err := h.Auth.Revoke(c); err != nil {
		log.WithError(err).Error("❌ Révocation du jeton échouée")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Error en el servidor"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Sesión cerrada"})
}

func (h *Handler) ListUsers(c *gin.Context) {
	h.listAccounts(c, models.AccountUser)
}

func (h *Handler) ListCompanies(c *gin.Context) {
	h.listAccounts(c, models.AccountCompany)
}

func (h *Handler) listAccounts(c *gin.Context, kind string) {
	accounts, err := h.Accounts.List(c.Request.Context(), kind)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, accounts)
}

func (h *Handler) UpdateUser(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req account.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Datos inválidos")
		return
	}
	a, err := h.Accounts.Update(c.Request.Context(), models.AccountUser, id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *Handler) DeleteUser(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := h.Accounts.Delete(c.Request.Context(), models.AccountUser, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Usuario eliminado exitosamente"})
}
