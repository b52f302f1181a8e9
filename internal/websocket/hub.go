package websocket

import (
	"encoding/json"
	"sync"

	"github.com/nimoapp/nimo-backend/pkg/logger"
)

// Client is one live connection of a user. A user may hold several (multiple
// tabs or devices); the hub fans messages out to all of them.
type Client struct {
	Hub    *Hub
	Conn   *Conn
	UserID uint
	Send   chan []byte
}

// userMessage is a payload addressed to every live connection of one user.
type userMessage struct {
	UserID uint
	Data   []byte
}

// Hub tracks live connections per user and pushes server events to them:
// session_refresh nudges after role changes and order status updates.
type Hub struct {
	clients map[uint][]*Client

	register   chan *Client
	unregister chan *Client
	send       chan *userMessage

	mu sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uint][]*Client),
		register:   make(chan *Client, 256),
		unregister: make(chan *Client, 256),
		send:       make(chan *userMessage, 1024),
	}
}

// Run owns the client registry. Deliveries and channel closes both happen on
// this goroutine, so a send can never race a close. Call in its own goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = append(h.clients[client.UserID], client)
			h.mu.Unlock()
			logger.Info("WebSocket client registered", map[string]interface{}{
				"user_id": client.UserID,
			})

		case client := <-h.unregister:
			h.mu.Lock()
			// A client can be unregistered twice: its read pump tears down
			// while a full-buffer drop is already queued. Only the pass that
			// actually removes it may close the channel.
			found := false
			if clientList, ok := h.clients[client.UserID]; ok {
				newList := make([]*Client, 0, len(clientList))
				for _, c := range clientList {
					if c != client {
						newList = append(newList, c)
					} else {
						found = true
					}
				}
				if found {
					if len(newList) == 0 {
						delete(h.clients, client.UserID)
					} else {
						h.clients[client.UserID] = newList
					}
					close(client.Send)
				}
			}
			h.mu.Unlock()
			if found {
				logger.Debug("WebSocket client unregistered", map[string]interface{}{
					"user_id": client.UserID,
				})
			}

		case message := <-h.send:
			h.mu.RLock()
			clientList := h.clients[message.UserID]
			h.mu.RUnlock()

			for _, client := range clientList {
				select {
				case client.Send <- message.Data:
				default:
					go h.Unregister(client)
					logger.Warn("Client send buffer full, disconnecting", map[string]interface{}{
						"user_id": message.UserID,
					})
				}
			}
		}
	}
}

// Register enqueues a client for registration
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister enqueues a client for removal
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// SendToUser pushes a message to every live connection of the user. Delivery
// runs on the Run goroutine; a full hub queue drops the message rather than
// blocking the caller.
func (h *Hub) SendToUser(userID uint, message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		logger.Error("Failed to marshal websocket message", err, nil)
		return
	}

	select {
	case h.send <- &userMessage{UserID: userID, Data: data}:
	default:
		logger.Warn("Hub send queue full, message dropped", map[string]interface{}{
			"user_id": userID,
		})
	}
}

// NotifySessionRefresh tells the user's clients their session claims are
// stale and they should call the refresh endpoint.
func (h *Hub) NotifySessionRefresh(userID uint) {
	h.SendToUser(userID, map[string]interface{}{
		"type": "session_refresh",
	})
}

// NotifyOrderUpdate pushes an order status change to the buyer.
func (h *Hub) NotifyOrderUpdate(userID, orderID uint, status string) {
	h.SendToUser(userID, map[string]interface{}{
		"type":     "order_update",
		"order_id": orderID,
		"status":   status,
	})
}

// IsUserOnline reports whether the user has at least one live connection
func (h *Hub) IsUserOnline(userID uint) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[userID]
	return ok
}
