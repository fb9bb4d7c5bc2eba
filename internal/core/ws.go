package core

import (
	"net/http"
	"time"

	"tagarena/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin:     func(r *http.Request) bool { return true },
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type WSHandler struct {
	hub      *Hub
	verifier *auth.Verifier
	log      *zap.SugaredLogger
}

func NewWSHandler(hub *Hub, verifier *auth.Verifier, log *zap.SugaredLogger) *WSHandler {
	return &WSHandler{hub: hub, verifier: verifier, log: log}
}

// HandleWebSocket upgrades the request and runs the channel's read loop until
// it closes. An optional ?token= selects the progression key.
func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	id := uuid.NewString()
	profileKey := id

	if token := c.Query("token"); token != "" {
		key, err := h.verifier.ProfileKey(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		profileKey = key
	}

	// hydrate before upgrading so slow storage never touches the hub goroutine
	prog := h.hub.Hydrate(c.Request.Context(), profileKey)

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warnw("upgrade failed", "error", err)
		return
	}
	h.log.Infow("player connected", "id", id, "remote", c.ClientIP())

	conn := NewWebSocketConn(ws)
	client := &Client{ID: id, ProfileKey: profileKey, Conn: conn}
	h.hub.Join(client, prog)
	defer func() {
		h.hub.Leave(client)
		h.log.Infow("player disconnected", "id", id)
	}()

	ws.SetReadLimit(wsMaxFrame)
	ws.SetReadDeadline(time.Now().Add(wsReadDeadline))
	ws.SetPongHandler(func(string) error {
		ws.SetReadDeadline(time.Now().Add(wsReadDeadline))
		return nil
	})

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.log.Debugw("read error", "id", id, "error", err)
			}
			return
		}
		ws.SetReadDeadline(time.Now().Add(wsReadDeadline))
		h.hub.HandleFrame(id, data)
	}
}
