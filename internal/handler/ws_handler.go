// internal/handler/ws_handler.go
package handler

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"print-service/internal/model"
	"print-service/internal/utils"
)

// WSHandler streams print job outcomes to connected dashboards. It
// implements service.JobPublisher so the dispatch service can push jobs
// without knowing about websockets.
type WSHandler struct {
	upgrader websocket.Upgrader
	logger   *utils.ServiceLogger

	mutex   sync.RWMutex
	clients map[string]*wsClient
}

// wsClient is one connected websocket consumer
type wsClient struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// wsMessage is the frame sent to clients
type wsMessage struct {
	Type      string          `json:"type"`
	Job       *model.PrintJob `json:"job,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewWSHandler creates a new websocket handler
func NewWSHandler(logger *zap.Logger) *WSHandler {
	return &WSHandler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		logger:  utils.NewServiceLogger(logger, "ws-handler"),
		clients: make(map[string]*wsClient),
	}
}

// RegisterRoutes registers websocket routes
func (h *WSHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/jobs", h.HandleJobStream)
}

// HandleJobStream upgrades the connection and streams job events
func (h *WSHandler) HandleJobStream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade WebSocket connection", zap.Error(err))
		return
	}

	client := &wsClient{
		id:   uuid.New().String(),
		conn: conn,
		send: make(chan []byte, 64),
	}

	h.mutex.Lock()
	h.clients[client.id] = client
	h.mutex.Unlock()

	h.logger.Info("Job stream client connected",
		zap.String("client_id", client.id),
		zap.String("remote_addr", c.Request.RemoteAddr),
	)

	go h.readLoop(client)
	go h.writeLoop(client)
}

// PublishJob broadcasts a finished job to all connected clients
func (h *WSHandler) PublishJob(job *model.PrintJob) {
	frame, err := json.Marshal(wsMessage{
		Type:      "print_job",
		Job:       job,
		Timestamp: time.Now(),
	})
	if err != nil {
		h.logger.Error("Failed to marshal job event", zap.Error(err))
		return
	}

	h.mutex.RLock()
	defer h.mutex.RUnlock()

	for _, client := range h.clients {
		select {
		case client.send <- frame:
		default:
			h.logger.Warn("Client send channel full, dropping job event",
				zap.String("client_id", client.id),
			)
		}
	}
}

// readLoop drains client messages and detects disconnects
func (h *WSHandler) readLoop(client *wsClient) {
	defer h.disconnect(client)

	client.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	client.conn.SetPongHandler(func(string) error {
		client.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Error("WebSocket read error",
					zap.Error(err),
					zap.String("client_id", client.id),
				)
			}
			return
		}
	}
}

// writeLoop pushes frames and keepalive pings to the client
func (h *WSHandler) writeLoop(client *wsClient) {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		client.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-client.send:
			client.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				client.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				h.logger.Error("WebSocket write error",
					zap.Error(err),
					zap.String("client_id", client.id),
				)
				return
			}

		case <-ticker.C:
			client.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *WSHandler) disconnect(client *wsClient) {
	h.mutex.Lock()
	if _, ok := h.clients[client.id]; ok {
		delete(h.clients, client.id)
		close(client.send)
	}
	h.mutex.Unlock()

	client.conn.Close()
	h.logger.Info("Job stream client disconnected", zap.String("client_id", client.id))
}
