package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// FeedEvent is pushed to every connected client when the feed changes.
type FeedEvent struct {
	Type    string      `json:"type"` // post_created, post_deleted, post_liked, post_commented, post_reacted
	PostID  uuid.UUID   `json:"postId"`
	Payload interface{} `json:"payload,omitempty"`
}

// Hub maintains the set of active clients and broadcasts feed events.
type Hub struct {
	// Registered clients. Maps user ID to a set of active client connections.
	Clients map[uuid.UUID]map[*Client]bool

	// Outbound feed events to fan out to every client.
	Broadcast chan []byte

	// Register requests from the clients.
	Register chan *Client

	// Unregister requests from clients.
	Unregister chan *Client

	// Mutex to protect concurrent access to the clients map.
	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		Broadcast:  make(chan []byte, 64),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Clients:    make(map[uuid.UUID]map[*Client]bool),
	}
}

// Run starts the hub's processing loop.
func (h *Hub) Run() {
	slog.Info("websocket hub started")
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			if _, ok := h.Clients[client.UserID]; !ok {
				h.Clients[client.UserID] = make(map[*Client]bool)
			}
			h.Clients[client.UserID][client] = true
			h.mu.Unlock()
			slog.Debug("websocket client registered", "user", client.UserID)

		case client := <-h.Unregister:
			h.mu.Lock()
			if userClients, ok := h.Clients[client.UserID]; ok {
				if _, clientOk := userClients[client]; clientOk {
					delete(userClients, client)
					if len(userClients) == 0 {
						delete(h.Clients, client.UserID)
					}
				}
			}
			h.mu.Unlock()
			slog.Debug("websocket client unregistered", "user", client.UserID)

		case message := <-h.Broadcast:
			h.mu.RLock()
			for _, userClients := range h.Clients {
				for client := range userClients {
					select {
					case client.Send <- message:
					default:
						slog.Warn("broadcast send buffer full, dropping event", "user", client.UserID)
					}
				}
			}
			h.mu.RUnlock()
		}
	}
}

// BroadcastEvent serializes a feed event and queues it for every
// connected client. Events that cannot be queued are dropped; the feed
// stream is advisory, never load-bearing.
func (h *Hub) BroadcastEvent(event FeedEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		slog.Error("failed to encode feed event", "type", event.Type, "error", err)
		return
	}

	select {
	case h.Broadcast <- payload:
	default:
		slog.Warn("hub broadcast channel full, dropping event", "type", event.Type)
	}
}
