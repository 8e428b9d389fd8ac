package websocket

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// MessageHandler persists an inbound chat message and returns the stored
// document for delivery to the recipient.
type MessageHandler func(senderID, recipientID primitive.ObjectID, body string) (interface{}, error)

// inboundFrame is a client-to-server WebSocket frame.
type inboundFrame struct {
	Type        string `json:"type"` // "chat_message" or "typing"
	RecipientID string `json:"recipientId"`
	Body        string `json:"body,omitempty"`
}

// HandleWebSocket upgrades the connection and runs the per-client read loop:
// chat messages are persisted through onMessage and pushed to the recipient;
// typing indicators are forwarded without persistence.
func HandleWebSocket(c echo.Context, hub *Hub, userID primitive.ObjectID, onMessage MessageHandler) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	client := &Client{Conn: conn}
	hub.register <- client

	// The JWT was already verified at the route layer; promote the client
	// so hub deliveries can find it by user id.
	if userID != primitive.NilObjectID {
		if err := hub.AuthenticateClient(client, userID); err != nil {
			hub.unregister <- client
			return err
		}
	}

	client.Send(Notification{
		Type:    "connected",
		Message: "WebSocket connection established",
		UserID:  userID.Hex(),
	})

	go func() {
		defer func() {
			hub.unregister <- client
		}()

		for {
			messageType, raw, err := conn.ReadMessage()
			if err != nil {
				break
			}
			if messageType != websocket.TextMessage {
				continue
			}

			var frame inboundFrame
			if err := json.Unmarshal(raw, &frame); err != nil {
				continue
			}

			recipientID, err := primitive.ObjectIDFromHex(frame.RecipientID)
			if err != nil {
				continue
			}

			switch frame.Type {
			case EventTypeTyping:
				hub.DeliverTyping(recipientID, client.UserID)
			case EventTypeChatMessage:
				if frame.Body == "" || onMessage == nil {
					continue
				}
				stored, err := onMessage(client.UserID, recipientID, frame.Body)
				if err != nil {
					log.Printf("Failed to persist chat message from %s: %v", client.UserID.Hex(), err)
					client.Send(Notification{
						Type:    "error",
						Message: "Message could not be delivered",
					})
					continue
				}
				hub.DeliverChatMessage(recipientID, stored)
				// Echo back so the sender's other devices stay in sync
				client.Send(Notification{
					Type: EventTypeChatMessage,
					Data: stored,
				})
			}
		}
	}()

	return nil
}
