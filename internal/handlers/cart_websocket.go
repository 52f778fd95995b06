package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"reviere_back_end/internal/models"
)

const (
	wsPingInterval = 30 * time.Second
	wsWriteTimeout = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	// l'origine est déjà filtrée par CORS et le jeton
	CheckOrigin: func(r *http.Request) bool { return true },
}

type cartMessage struct {
	Type    string       `json:"type"`
	Carrito *models.Cart `json:"carrito,omitempty"`
	Total   float64      `json:"total"`
	Count   int          `json:"count"`
}

func cartSnapshot(kind string, ct *models.Cart) cartMessage {
	msg := cartMessage{Type: kind, Carrito: ct}
	for _, item := range ct.Items {
		msg.Total += item.Price * float64(item.Quantity)
		msg.Count += item.Quantity
	}
	return msg
}

// CartWebSocket pousse le panier au client à chaque modification.
func (h *Handler) CartWebSocket(c *gin.Context) {
	userID, ok := idParam(c, "id_usuario")
	if !ok {
		return
	}
	if h.CartFeed == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "Sincronización no disponible"})
		return
	}

	ctx := c.Request.Context()
	updates, cancel, err := h.CartFeed.Subscribe(ctx, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	defer cancel()

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.WithError(err).Warn("❌ Erreur upgrade WebSocket")
		return
	}
	defer conn.Close()

	// lecture en tâche de fond pour détecter la fermeture côté client
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	send := func(kind string) bool {
		ct, err := h.Carts.Get(ctx, userID)
		if err != nil {
			log.WithError(err).WithField("user_id", userID).Warn("⚠️ Panier illisible pour le WebSocket")
			return true
		}
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := conn.WriteJSON(cartSnapshot(kind, ct)); err != nil {
			log.WithError(err).Debug("❌ Erreur envoi WebSocket")
			return false
		}
		return true
	}

	if !send("connected") {
		return
	}
	log.WithField("user_id", userID).Info("🔌 Synchronisation panier activée")

	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-closed:
			return
		case <-ctx.Done():
			return
		case _, ok := <-updates:
			if !ok || !send("cart_updated") {
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteTimeout)); err != nil {
				return
			}
		}
	}
}
