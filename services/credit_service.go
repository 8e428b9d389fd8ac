// services/credit_service.go
package services

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/nestay/nestay_backend/models"
)

// CreditService redeems credit codes. Redemption is at-most-once: the
// redeemed flag is flipped false to true by a conditional update at the
// store, so two concurrent redemptions of the same code cannot both win.
type CreditService struct {
	db *mongo.Database
}

// NewCreditService creates a new credit service
func NewCreditService(db *mongo.Database) *CreditService {
	return &CreditService{db: db}
}

// ClassifyRedeemFailure decides why a conditional redeem found no document,
// given the code's current state.
func ClassifyRedeemFailure(code models.CreditCode) error {
	if code.Redeemed {
		return ErrCreditAlreadyRedeemed
	}
	if code.Status != models.CreditCodeStatusActive {
		return ErrCreditInactive
	}
	// The code was redeemable on the follow-up read: we lost a race with a
	// concurrent redeem that has since rolled back, or the document changed
	// between the two reads. Treat as already redeemed.
	return ErrCreditAlreadyRedeemed
}

// Redeem grants the code's fixed value to the host. The flag flip, the
// credit record, and the history entry commit or abort together.
func (s *CreditService) Redeem(ctx context.Context, code string, hostID primitive.ObjectID) (*models.RedeemResult, error) {
	session, err := s.db.Client().StartSession()
	if err != nil {
		return nil, fmt.Errorf("failed to start ledger session: %w", err)
	}
	defer session.EndSession(ctx)

	result, err := session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		now := time.Now()

		var redeemed models.CreditCode
		err := s.db.Collection("creditCodes").FindOneAndUpdate(sc,
			bson.M{"code": code, "status": models.CreditCodeStatusActive, "redeemed": false},
			bson.M{"$set": bson.M{"redeemed": true, "redeemedBy": hostID, "redeemedAt": now}},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&redeemed)
		if err == mongo.ErrNoDocuments {
			// Look the code up once more to say why it was not redeemable.
			var current models.CreditCode
			lookupErr := s.db.Collection("creditCodes").FindOne(sc, bson.M{"code": code}).Decode(&current)
			if lookupErr == mongo.ErrNoDocuments {
				return nil, ErrCreditNotFound
			}
			if lookupErr != nil {
				return nil, lookupErr
			}
			return nil, ClassifyRedeemFailure(current)
		}
		if err != nil {
			return nil, err
		}

		credit := models.Credit{
			HostID:    hostID,
			Amount:    redeemed.Value(),
			Code:      redeemed.Code,
			CreatedAt: now,
		}
		if _, err := s.db.Collection("credits").InsertOne(sc, credit); err != nil {
			return nil, err
		}

		record := models.TransactionRecord{
			HostID:      hostID,
			Type:        models.TransactionTypeCredit,
			Amount:      redeemed.Value(),
			Description: "Credit code " + redeemed.Code,
			Code:        redeemed.Code,
			Date:        now,
		}
		if _, err := s.db.Collection("transactions").InsertOne(sc, record); err != nil {
			return nil, err
		}

		return &models.RedeemResult{Granted: true, Amount: redeemed.Value(), Code: redeemed.Code}, nil
	})
	if err != nil {
		return nil, err
	}

	return result.(*models.RedeemResult), nil
}
