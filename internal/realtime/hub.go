// Package realtime 基于WebSocket的看板实时推送。
// 工单移动、审批决定等事件按组织广播给在线客户端，
// 前端据此刷新看板，避免两个窗口各自为政。
package realtime

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/pkg/logger"
	"github.com/guesttobuy-code/rendizy2testesbackup-sub005/pkg/metrics"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 64
)

// Event 推送给客户端的事件
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// Client 一个WebSocket连接
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	orgID  string
	userID string
}

// Hub 管理全部在线连接，按组织分组广播
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]bool // orgID -> clients

	register   chan *Client
	unregister chan *Client
	done       chan struct{}
}

// NewHub 创建连接管理器
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run 主循环，处理连接注册与注销
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.orgID] == nil {
				h.clients[client.orgID] = make(map[*Client]bool)
			}
			h.clients[client.orgID][client] = true
			h.mu.Unlock()
			metrics.WebsocketClients.Inc()
		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.orgID]; ok {
				if _, ok := clients[client]; ok {
					delete(clients, client)
					close(client.send)
					metrics.WebsocketClients.Dec()
					if len(clients) == 0 {
						delete(h.clients, client.orgID)
					}
				}
			}
			h.mu.Unlock()
		case <-h.done:
			return
		}
	}
}

// Stop 停止主循环
func (h *Hub) Stop() {
	close(h.done)
}

// Broadcast 向组织内全部在线客户端推送事件
// 发送缓冲满的慢客户端直接丢弃该条消息，不阻塞广播
func (h *Hub) Broadcast(orgID string, event Event) {
	raw, err := json.Marshal(event)
	if err != nil {
		logger.Warnf("[Realtime] Failed to marshal event %s: %v", event.Type, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients[orgID] {
		select {
		case client.send <- raw:
		default:
		}
	}
}

// OnlineCount 组织内在线连接数
func (h *Hub) OnlineCount(orgID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[orgID])
}

// NewClient 把一条已升级的WebSocket连接挂进Hub
func (h *Hub) NewClient(conn *websocket.Conn, orgID, userID string) *Client {
	client := &Client{
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		orgID:  orgID,
		userID: userID,
	}
	h.register <- client
	go client.writePump()
	go client.readPump()
	return client
}

// readPump 只消费心跳，客户端不向服务端发业务消息
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debugf("[Realtime] Connection closed unexpectedly: %v", err)
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
