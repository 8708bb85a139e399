package crm

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/internal/realtime"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/pkg/logger"
)

type WSHandler struct {
	hub      *realtime.Hub
	upgrader websocket.Upgrader
}

func NewWSHandler(hub *realtime.Hub) *WSHandler {
	return &WSHandler{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// 前端可能跑在其他域名下，跨域控制交给网关层
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Subscribe 升级为WebSocket连接，订阅本组织的看板事件
// @Summary 订阅看板实时事件
// @Tags board
// @Param token query string true "JWT token"
// @Router /ws [get]
func (h *WSHandler) Subscribe(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warnf("WebSocket upgrade failed: %v", err)
		return
	}

	h.hub.NewClient(conn, c.GetString("organization_id"), c.GetString("user_id"))
}
