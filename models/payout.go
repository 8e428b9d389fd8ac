// models/payout.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Payout statuses. Only processing and completed payouts reduce the host's
// available balance; failed payouts do not.
const (
	PayoutStatusProcessing = "processing"
	PayoutStatusCompleted  = "completed"
	PayoutStatusFailed     = "failed"
)

// Payout is one entry in the payout ledger, written when the provider
// accepts a cashout.
type Payout struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	HostID        primitive.ObjectID `bson:"hostId" json:"hostId"`
	Amount        float64            `bson:"amount" json:"amount"`
	Currency      string             `bson:"currency" json:"currency"`
	Email         string             `bson:"email" json:"email"`
	BatchID       string             `bson:"batchId" json:"batchId"`
	TransactionID string             `bson:"transactionId,omitempty" json:"transactionId,omitempty"`
	Status        string             `bson:"status" json:"status"`
	Note          string             `bson:"note,omitempty" json:"note,omitempty"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	ProcessedAt   *time.Time         `bson:"processedAt,omitempty" json:"processedAt,omitempty"`
}

// Cashout is the legacy cashout record kept alongside Payout for the old
// dashboard. It references the same batchId.
type Cashout struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	HostID    primitive.ObjectID `bson:"hostId" json:"hostId"`
	Amount    float64            `bson:"amount" json:"amount"`
	Email     string             `bson:"email" json:"email"`
	BatchID   string             `bson:"batchId" json:"batchId"`
	Status    string             `bson:"status" json:"status"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// CashoutRequest model
type CashoutRequest struct {
	Email  string  `json:"email" validate:"required,email"`
	Amount float64 `json:"amount" validate:"required,gt=0"`
	Note   string  `json:"note,omitempty"`
}

// CashoutResult is returned to the host after a recorded cashout.
type CashoutResult struct {
	Payout  *Payout          `json:"payout"`
	Summary *EarningsSummary `json:"summary"`
}
