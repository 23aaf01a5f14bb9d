// Package network provides the WebSocket spectator feed. Spectators receive
// every emitted round record as JSON; the feed is broadcast-only.
package network

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/cafegames/elimination-arena/internal/engine"
	"github.com/cafegames/elimination-arena/internal/platform/logger"
	"github.com/cafegames/elimination-arena/internal/platform/metrics"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// RoundMessage is the wire frame pushed to spectators.
type RoundMessage struct {
	GameID string              `json:"game_id"`
	Record *engine.RoundRecord `json:"record"`
}

// Hub maintains the set of active spectator connections and broadcasts round
// records to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	mu         sync.Mutex
	logger     *logger.Logger
}

// NewHub initializes a new spectator hub.
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		broadcast:  make(chan []byte, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		logger:     log,
	}
}

// Run starts the hub's main loop to handle connections and broadcasts.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.logger.Info("spectator hub shutting down")
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			metrics.Get().RecordWSConnection(1)
			h.logger.Info("spectator connected")
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				metrics.Get().RecordWSConnection(-1)
				h.logger.Info("spectator disconnected")
			}
			h.mu.Unlock()
		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- message:
					metrics.Get().RecordWSMessage()
				default:
					// Slow consumer, drop it rather than stall the round loop.
					close(client.send)
					delete(h.clients, client)
					metrics.Get().RecordWSConnection(-1)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Record broadcasts an emitted round record to all spectators. Implements the
// engine's round sink.
func (h *Hub) Record(_ context.Context, gameID string, record *engine.RoundRecord) error {
	payload, err := json.Marshal(RoundMessage{GameID: gameID, Record: record})
	if err != nil {
		metrics.Get().RecordWSError()
		return fmt.Errorf("failed to serialize round record: %w", err)
	}
	h.broadcast <- payload
	return nil
}

// ServeWS upgrades an HTTP request to a spectator connection.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		metrics.Get().RecordWSError()
		h.logger.Error("websocket upgrade failed: " + err.Error())
		return
	}

	client := NewClient(h, conn)
	client.Register()
	go client.WritePump()
	go client.ReadPump()
}
