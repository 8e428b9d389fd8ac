// models/credit.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Credit code statuses
const (
	CreditCodeStatusActive   = "active"
	CreditCodeStatusDisabled = "disabled"
)

// DefaultCreditValue is granted when a code document carries no creditValue.
const DefaultCreditValue = 200.0

// CreditCode is a fixed-value grant redeemable exactly once. The redeemed
// flag is flipped false to true with a conditional update at the store,
// never checked client-side.
type CreditCode struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Code        string              `bson:"code" json:"code"`
	CreditValue float64             `bson:"creditValue,omitempty" json:"creditValue,omitempty"`
	Status      string              `bson:"status" json:"status"`
	Redeemed    bool                `bson:"redeemed" json:"redeemed"`
	RedeemedBy  *primitive.ObjectID `bson:"redeemedBy,omitempty" json:"redeemedBy,omitempty"`
	RedeemedAt  *time.Time          `bson:"redeemedAt,omitempty" json:"redeemedAt,omitempty"`
	CreatedAt   time.Time           `bson:"createdAt" json:"createdAt"`
}

// Value returns the grant amount for the code.
func (c CreditCode) Value() float64 {
	if c.CreditValue > 0 {
		return c.CreditValue
	}
	return DefaultCreditValue
}

// Credit is one granted credit in the host's ledger.
type Credit struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	HostID    primitive.ObjectID `bson:"hostId" json:"hostId"`
	Amount    float64            `bson:"amount" json:"amount"`
	Code      string             `bson:"code" json:"code"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// RedeemRequest model
type RedeemRequest struct {
	Code string `json:"code" validate:"required"`
}

// RedeemResult model
type RedeemResult struct {
	Granted bool    `json:"granted"`
	Amount  float64 `json:"amount"`
	Code    string  `json:"code"`
}
