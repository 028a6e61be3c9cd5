// Package realtime pushes incident events to connected dashboards over WebSocket.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/imcoderdev/emergency-backend/internal/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

const (
	sendBufferSize = 16
	writeWait      = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type client struct {
	id   uuid.UUID
	conn *websocket.Conn
	send chan []byte
}

// Hub хранит подключенных подписчиков. Счетчик подключений - внедренный gauge.
type Hub struct {
	mu      sync.RWMutex
	clients map[uuid.UUID]*client
	gauge   prometheus.Gauge
	logger  *logrus.Logger
}

func NewHub(gauge prometheus.Gauge, logger *logrus.Logger) *Hub {
	return &Hub{
		clients: make(map[uuid.UUID]*client),
		gauge:   gauge,
		logger:  logger,
	}
}

// ServeWS переводит соединение в WebSocket и регистрирует подписчика
func (h *Hub) ServeWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.WithError(err).Warn("Failed to upgrade websocket connection")
		return
	}

	cl := &client{
		id:   uuid.New(),
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}

	h.mu.Lock()
	h.clients[cl.id] = cl
	h.mu.Unlock()
	h.gauge.Inc()
	h.logger.WithField("client_id", cl.id).Info("Realtime client connected")

	go h.writePump(cl)
	go h.readPump(cl)
}

// Broadcast отправляет событие всем подписчикам, не блокируясь.
// Подписчик с заполненным буфером отключается.
func (h *Hub) Broadcast(_ context.Context, event models.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal realtime event: %w", err)
	}

	var slow []*client
	h.mu.RLock()
	for _, cl := range h.clients {
		select {
		case cl.send <- payload:
		default:
			slow = append(slow, cl)
		}
	}
	h.mu.RUnlock()

	for _, cl := range slow {
		h.logger.WithField("client_id", cl.id).Warn("Dropping slow realtime client")
		h.remove(cl)
	}
	return nil
}

// Clients возвращает число подключенных подписчиков
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close отключает всех подписчиков
func (h *Hub) Close() {
	h.mu.RLock()
	all := make([]*client, 0, len(h.clients))
	for _, cl := range h.clients {
		all = append(all, cl)
	}
	h.mu.RUnlock()

	for _, cl := range all {
		h.remove(cl)
	}
}

// remove закрывает канал отправки ровно один раз: только тот, кто удалил клиента из карты
func (h *Hub) remove(cl *client) {
	h.mu.Lock()
	if _, ok := h.clients[cl.id]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, cl.id)
	close(cl.send)
	h.mu.Unlock()

	h.gauge.Dec()
	h.logger.WithField("client_id", cl.id).Info("Realtime client disconnected")
}

func (h *Hub) readPump(cl *client) {
	defer func() {
		h.remove(cl)
		cl.conn.Close()
	}()

	for {
		// Входящие сообщения не используются, чтение нужно для обработки close/ping
		if _, _, err := cl.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(cl *client) {
	defer cl.conn.Close()

	for message := range cl.send {
		cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := cl.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			h.remove(cl)
			return
		}
	}

	cl.conn.SetWriteDeadline(time.Now().Add(writeWait))
	cl.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
