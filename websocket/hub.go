package websocket

import (
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Event types delivered over WebSocket
const (
	EventTypeBookingRequest  = "booking_request"
	EventTypeBookingResponse = "booking_response"
	EventTypePayoutRecorded  = "payout_recorded"
	EventTypeCreditGranted   = "credit_granted"
	EventTypeChatMessage     = "chat_message"
	EventTypeTyping          = "typing"
)

// Notification represents a message sent over WebSocket
type Notification struct {
	Type         string      `json:"type"`
	Message      string      `json:"message"`
	Data         interface{} `json:"data,omitempty"`
	UserID       string      `json:"userID,omitempty"`
	RequiresAuth bool        `json:"requiresAuth,omitempty"`
}

// Client represents a connected WebSocket client
type Client struct {
	UserID        primitive.ObjectID
	Conn          *websocket.Conn
	Authenticated bool

	writeMu sync.Mutex
}

// Send writes one frame to the client. gorilla/websocket allows at most one
// concurrent writer per connection, and hub deliveries race with the read
// loop's own replies, so every write goes through this lock.
func (c *Client) Send(v interface{}) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.Conn.WriteJSON(v)
}

// Hub maintains the set of active clients and routes per-user events
type Hub struct {
	clients                map[primitive.ObjectID]*Client
	unauthenticatedClients map[*Client]bool
	register               chan *Client
	unregister             chan *Client
	mu                     sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		clients:                make(map[primitive.ObjectID]*Client),
		unauthenticatedClients: make(map[*Client]bool),
		register:               make(chan *Client),
		unregister:             make(chan *Client),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if client.Authenticated && client.UserID != primitive.NilObjectID {
				h.clients[client.UserID] = client
			} else {
				h.unauthenticatedClients[client] = true
			}
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			if client.Authenticated && client.UserID != primitive.NilObjectID {
				if _, ok := h.clients[client.UserID]; ok {
					delete(h.clients, client.UserID)
				}
			} else {
				delete(h.unauthenticatedClients, client)
			}
			client.Conn.Close()
			h.mu.Unlock()
		}
	}
}

// SendToUser sends a message to a specific user
func (h *Hub) SendToUser(userID primitive.ObjectID, notification Notification) error {
	h.mu.RLock()
	client, ok := h.clients[userID]
	h.mu.RUnlock()

	if !ok {
		return fmt.Errorf("user not connected")
	}

	return client.Send(notification)
}

// AuthenticateClient moves a client from unauthenticated to authenticated state
func (h *Hub) AuthenticateClient(client *Client, userID primitive.ObjectID) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.unauthenticatedClients[client]; ok {
		delete(h.unauthenticatedClients, client)
	}

	client.Authenticated = true
	client.UserID = userID
	h.clients[userID] = client

	return nil
}

// NotifyBookingRequest tells a host about a new booking request
func (h *Hub) NotifyBookingRequest(hostID primitive.ObjectID, bookingData interface{}) error {
	return h.SendToUser(hostID, Notification{
		Type:    EventTypeBookingRequest,
		Message: "New booking request received",
		Data:    bookingData,
	})
}

// NotifyBookingResponse tells a guest the host responded to their booking
func (h *Hub) NotifyBookingResponse(guestID primitive.ObjectID, bookingData interface{}) error {
	return h.SendToUser(guestID, Notification{
		Type:    EventTypeBookingResponse,
		Message: "Your booking status has been updated",
		Data:    bookingData,
	})
}

// NotifyPayoutRecorded tells a host their cashout was recorded
func (h *Hub) NotifyPayoutRecorded(hostID primitive.ObjectID, payoutData interface{}) error {
	return h.SendToUser(hostID, Notification{
		Type:    EventTypePayoutRecorded,
		Message: "Your cashout has been submitted",
		Data:    payoutData,
	})
}

// DeliverChatMessage pushes a persisted chat message to its recipient.
// An offline recipient is not an error; they will see the message on the
// next history fetch.
func (h *Hub) DeliverChatMessage(recipientID primitive.ObjectID, messageData interface{}) {
	h.SendToUser(recipientID, Notification{
		Type: EventTypeChatMessage,
		Data: messageData,
	})
}

// DeliverTyping forwards a typing indicator to the peer. Fire and forget.
func (h *Hub) DeliverTyping(recipientID primitive.ObjectID, senderID primitive.ObjectID) {
	h.SendToUser(recipientID, Notification{
		Type:   EventTypeTyping,
		UserID: senderID.Hex(),
	})
}
