// models/message.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message is one chat message between a host and a guest. ConversationID is
// the sorted pair of participant ids joined with ":" so both sides resolve
// the same conversation.
type Message struct {
	ID             primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	ConversationID string             `json:"conversationId" bson:"conversationId"`
	SenderID       primitive.ObjectID `json:"senderId" bson:"senderId"`
	RecipientID    primitive.ObjectID `json:"recipientId" bson:"recipientId"`
	Body           string             `json:"body" bson:"body"`
	Read           bool               `json:"read" bson:"read"`
	CreatedAt      time.Time          `json:"createdAt" bson:"createdAt"`
}

// SendMessageRequest model
type SendMessageRequest struct {
	RecipientID string `json:"recipientId" validate:"required"`
	Body        string `json:"body" validate:"required,max=4000"`
}
