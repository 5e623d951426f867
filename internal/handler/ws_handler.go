package handler

import (
	"net/http"
	"strings"

	"github.com/damoang/angple-wiki/internal/common"
	"github.com/damoang/angple-wiki/internal/middleware"
	"github.com/damoang/angple-wiki/internal/ws"
	"github.com/damoang/angple-wiki/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// WSHandler upgrades review event subscriptions to websockets
type WSHandler struct {
	hub            *ws.Hub
	allowedOrigins []string
	upgrader       websocket.Upgrader
}

// NewWSHandler creates a new WSHandler. allowedOrigins is comma separated; empty allows any origin.
func NewWSHandler(hub *ws.Hub, allowedOrigins string) *WSHandler {
	h := &WSHandler{
		hub:            hub,
		allowedOrigins: parseOrigins(allowedOrigins),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func parseOrigins(origins string) []string {
	var result []string
	for _, p := range strings.Split(origins, ",") {
		if trimmed := strings.TrimSpace(p); trimmed != "" && trimmed != "*" {
			result = append(result, trimmed)
		}
	}
	return result
}

func (h *WSHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(h.allowedOrigins) == 0 {
		return true
	}
	for _, allowed := range h.allowedOrigins {
		if origin == allowed {
			return true
		}
	}
	return false
}

// Connect godoc
// @Summary      Review event stream
// @Description  Admins receive every review event; editors receive events about their own pages and edits.
// @Description  Browsers may pass the access token as the token query parameter.
// @Tags         review
// @Param        token  query  string  false  "access token"
// @Security     BearerAuth
// @Router       /ws/reviews [get]
func (h *WSHandler) Connect(c *gin.Context) {
	req := middleware.GetRequester(c)
	if !req.Authenticated {
		common.ErrorResponse(c, http.StatusUnauthorized, "Authentication required", nil)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.GetLogger().Debug().Err(err).Str("user_id", req.IDString()).Msg("websocket upgrade failed")
		return
	}

	client := ws.NewClient(h.hub, conn, req.UserID, req.IsAdmin())
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
