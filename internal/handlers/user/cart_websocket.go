package user

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"dkstore_back_end/internal/handlers"
	"dkstore_back_end/internal/middleware"
	"dkstore_back_end/internal/models"
)

const (
	wsPingInterval = 30 * time.Second
	wsWriteTimeout = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	// Browsers authenticate with ?token=, so the origin adds nothing here.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type cartMessage struct {
	Type    string       `json:"type"`
	Event   string       `json:"event,omitempty"`
	Message string       `json:"message,omitempty"`
	Cart    *models.Cart `json:"cart,omitempty"`
}

// GET /api/orders/cart/ws
// Streams the refreshed cart after every cart event of the authenticated user.
func (h *CartHandler) CartWebSocket(c *gin.Context) {
	if h.events == nil {
		handlers.Abort(c, http.StatusServiceUnavailable, "live cart sync unavailable")
		return
	}
	userID := middleware.CurrentUserID(c)

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	events, closeSub, err := h.events.SubscribeCart(ctx, userID)
	if err != nil {
		handlers.Fail(c, err)
		return
	}
	defer closeSub()

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.WarnContext(ctx, "websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	// Reader loop: detects the client going away.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	write := func(msg cartMessage) error {
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		return conn.WriteJSON(msg)
	}
	if err := h.sendCart(ctx, userID, "connected", "", write); err != nil {
		return
	}

	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := h.sendCart(ctx, userID, "cart_updated", event, write); err != nil {
				slog.DebugContext(ctx, "websocket closed", "user_id", userID, "error", err)
				return
			}
		case <-ticker.C:
			deadline := time.Now().Add(wsWriteTimeout)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}
		}
	}
}

func (h *CartHandler) sendCart(ctx context.Context, userID uint, kind, event string, write func(cartMessage) error) error {
	cart, err := h.cart.GetCart(ctx, userID)
	if err != nil {
		return write(cartMessage{Type: "error", Message: "failed to load cart"})
	}
	return write(cartMessage{Type: kind, Event: event, Cart: &cart})
}
