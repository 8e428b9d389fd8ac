package controllers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/nestay/nestay_backend/config"
	"github.com/nestay/nestay_backend/models"
	"github.com/nestay/nestay_backend/utils"
	"github.com/nestay/nestay_backend/websocket"
)

// MessageController handles host/guest chat
type MessageController struct {
	db  *mongo.Client
	hub *websocket.Hub
}

// NewMessageController creates a new message controller
func NewMessageController(db *mongo.Client, hub *websocket.Hub) *MessageController {
	return &MessageController{db: db, hub: hub}
}

// ConversationID builds the canonical conversation key for two users
func ConversationID(a, b primitive.ObjectID) string {
	ids := []string{a.Hex(), b.Hex()}
	if strings.Compare(ids[0], ids[1]) > 0 {
		ids[0], ids[1] = ids[1], ids[0]
	}
	return ids[0] + ":" + ids[1]
}

// PersistMessage stores one chat message and returns the stored document.
// It is also wired as the websocket message handler.
func (mc *MessageController) PersistMessage(senderID, recipientID primitive.ObjectID, body string) (interface{}, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	message := models.Message{
		ID:             primitive.NewObjectID(),
		ConversationID: ConversationID(senderID, recipientID),
		SenderID:       senderID,
		RecipientID:    recipientID,
		Body:           body,
		CreatedAt:      time.Now(),
	}

	if _, err := config.GetCollection(mc.db, "messages").InsertOne(ctx, message); err != nil {
		return nil, err
	}

	go func() {
		var sender models.User
		if err := config.GetCollection(mc.db, "users").FindOne(context.Background(),
			bson.M{"_id": senderID}).Decode(&sender); err != nil {
			return
		}
		if err := utils.SendPushNotification(mc.db, recipientID, utils.DisplayName(sender), body, map[string]string{
			"type":     "message",
			"senderId": senderID.Hex(),
		}); err != nil {
			log.Printf("Failed to send message push notification: %v", err)
		}
	}()

	return message, nil
}

// SendMessage sends a chat message over REST. The websocket path delivers
// in realtime; this endpoint exists for clients without an open socket.
func (mc *MessageController) SendMessage(c echo.Context) error {
	sender, err := utils.GetUserFromToken(c, mc.db)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid or expired token",
		})
	}

	var req models.SendMessageRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Validation failed: " + err.Error(),
		})
	}

	recipientID, err := primitive.ObjectIDFromHex(req.RecipientID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid recipient ID",
		})
	}

	stored, err := mc.PersistMessage(sender.ID, recipientID, req.Body)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to send message",
		})
	}

	mc.hub.DeliverChatMessage(recipientID, stored)

	return c.JSON(http.StatusCreated, models.Response{
		Status:  http.StatusCreated,
		Message: "Message sent",
		Data:    stored,
	})
}

// GetConversation returns the message history with another user, oldest first
func (mc *MessageController) GetConversation(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	user, err := utils.GetUserFromToken(c, mc.db)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid or expired token",
		})
	}

	otherID, err := primitive.ObjectIDFromHex(c.Param("userId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.Response{
			Status:  http.StatusBadRequest,
			Message: "Invalid user ID",
		})
	}

	messagesCollection := config.GetCollection(mc.db, "messages")
	conversationID := ConversationID(user.ID, otherID)

	cursor, err := messagesCollection.Find(ctx,
		bson.M{"conversationId": conversationID},
		options.Find().SetSort(bson.M{"createdAt": 1}).SetLimit(500),
	)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch messages",
		})
	}
	defer cursor.Close(ctx)

	messages := []models.Message{}
	if err := cursor.All(ctx, &messages); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode messages",
		})
	}

	// Mark incoming messages as read
	_, err = messagesCollection.UpdateMany(ctx,
		bson.M{"conversationId": conversationID, "recipientId": user.ID, "read": false},
		bson.M{"$set": bson.M{"read": true}},
	)
	if err != nil {
		log.Printf("Failed to mark messages read: %v", err)
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Conversation retrieved successfully",
		Data:    messages,
	})
}

// GetConversations returns the latest message of each conversation the user
// participates in
func (mc *MessageController) GetConversations(c echo.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	user, err := utils.GetUserFromToken(c, mc.db)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid or expired token",
		})
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"$or": []bson.M{
			{"senderId": user.ID},
			{"recipientId": user.ID},
		}}}},
		{{Key: "$sort", Value: bson.M{"createdAt": -1}}},
		{{Key: "$group", Value: bson.M{
			"_id":         "$conversationId",
			"lastMessage": bson.M{"$first": "$$ROOT"},
		}}},
		{{Key: "$sort", Value: bson.M{"lastMessage.createdAt": -1}}},
	}

	cursor, err := config.GetCollection(mc.db, "messages").Aggregate(ctx, pipeline)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to fetch conversations",
		})
	}
	defer cursor.Close(ctx)

	var conversations []struct {
		ConversationID string         `bson:"_id" json:"conversationId"`
		LastMessage    models.Message `bson:"lastMessage" json:"lastMessage"`
	}
	if err := cursor.All(ctx, &conversations); err != nil {
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Failed to decode conversations",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Conversations retrieved successfully",
		Data:    conversations,
	})
}

// HandleWebSocket upgrades the connection and joins the user to the hub
func (mc *MessageController) HandleWebSocket(c echo.Context) error {
	user, err := utils.GetUserFromToken(c, mc.db)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid or expired token",
		})
	}

	return websocket.HandleWebSocket(c, mc.hub, user.ID, mc.PersistMessage)
}
