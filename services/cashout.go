// services/cashout.go
package services

import (
	"context"
	"fmt"
	"log"
	"net/mail"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/nestay/nestay_backend/models"
)

// MinimumCashout is the smallest amount a host may withdraw.
const MinimumCashout = 100.0

// PayoutIssuer executes an actual money transfer at the payment provider.
// batchID is the sender-supplied idempotency key for the transfer.
type PayoutIssuer interface {
	SendPayout(ctx context.Context, email string, amount float64, currency, batchID string) (*models.PayoutResult, error)
}

// CashoutService runs the cashout workflow: validate the request, issue the
// payout at the provider, then record the three linked ledger entries
// (payout, legacy cashout, transaction history) in a single multi-document
// transaction so a partial ledger state is impossible.
type CashoutService struct {
	db       *mongo.Database
	issuer   PayoutIssuer
	currency string

	mu       sync.Mutex
	inFlight map[primitive.ObjectID]bool
}

// NewCashoutService creates a new cashout service
func NewCashoutService(db *mongo.Database, issuer PayoutIssuer, currency string) *CashoutService {
	if currency == "" {
		currency = "USD"
	}
	return &CashoutService{
		db:       db,
		issuer:   issuer,
		currency: currency,
		inFlight: make(map[primitive.ObjectID]bool),
	}
}

// beginCashout marks a host as having a cashout in flight. The caller passed
// a balance computed before Submit ran, so two overlapping submissions for
// the same host could each clear the balance guard and overdraw; only one
// may proceed at a time.
func (s *CashoutService) beginCashout(hostID primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight[hostID] {
		return ErrCashoutInFlight
	}
	s.inFlight[hostID] = true
	return nil
}

func (s *CashoutService) endCashout(hostID primitive.ObjectID) {
	s.mu.Lock()
	delete(s.inFlight, hostID)
	s.mu.Unlock()
}

// ValidateCashout applies the submission guards: a well-formed email, an
// amount at or above the minimum, and an amount within the available
// balance. It runs before any provider call.
func ValidateCashout(req models.CashoutRequest, availableBalance float64) error {
	if req.Email == "" {
		return &ValidationError{Field: "email", Message: "email is required"}
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return &ValidationError{Field: "email", Message: "email is not well-formed"}
	}
	if req.Amount < MinimumCashout {
		return &ValidationError{Field: "amount", Message: fmt.Sprintf("minimum cashout is %.0f", MinimumCashout)}
	}
	if req.Amount > availableBalance {
		return ErrInsufficientBalance
	}
	return nil
}

// payoutStatusFromBatch maps the provider's provisional batch status onto
// the ledger's payout status.
func payoutStatusFromBatch(batchStatus string) string {
	switch batchStatus {
	case "SUCCESS":
		return models.PayoutStatusCompleted
	case "DENIED", "CANCELED":
		return models.PayoutStatusFailed
	default:
		// PENDING, PROCESSING and anything unrecognized stay provisional
		return models.PayoutStatusProcessing
	}
}

// Submit executes one cashout for a host. On a provider failure nothing is
// written to the ledger and the error is surfaced; there is no automatic
// retry. On success the three ledger entries all reference the same batch
// id and commit or abort together.
func (s *CashoutService) Submit(ctx context.Context, host models.User, req models.CashoutRequest, availableBalance float64) (*models.Payout, error) {
	if err := s.beginCashout(host.ID); err != nil {
		return nil, err
	}
	defer s.endCashout(host.ID)

	if err := ValidateCashout(req, availableBalance); err != nil {
		return nil, err
	}

	batchID := uuid.New().String()

	result, err := s.issuer.SendPayout(ctx, req.Email, req.Amount, s.currency, batchID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	payout := &models.Payout{
		HostID:        host.ID,
		Amount:        req.Amount,
		Currency:      s.currency,
		Email:         req.Email,
		BatchID:       result.BatchID,
		TransactionID: result.TransactionID,
		Status:        payoutStatusFromBatch(result.Status),
		Note:          req.Note,
		CreatedAt:     now,
	}

	if err := s.record(ctx, payout); err != nil {
		// The provider already accepted the transfer; log the batch id for
		// manual reconciliation before surfacing the failure.
		log.Printf("CASHOUT LEDGER WRITE FAILED after provider success: host=%s batch=%s amount=%.2f: %v",
			host.ID.Hex(), result.BatchID, req.Amount, err)
		return nil, fmt.Errorf("payout %s accepted by provider but ledger write failed: %w", result.BatchID, err)
	}

	return payout, nil
}

// RefreshStatus re-queries the provider for a provisional payout when the
// issuer supports status lookups. Returns the ledger status the payout
// should now carry.
func (s *CashoutService) RefreshStatus(ctx context.Context, payout *models.Payout) (string, error) {
	checker, ok := s.issuer.(interface {
		GetPayoutStatus(ctx context.Context, payoutBatchID string) (string, error)
	})
	if !ok {
		return payout.Status, nil
	}

	batchStatus, err := checker.GetPayoutStatus(ctx, payout.BatchID)
	if err != nil {
		return "", err
	}
	return payoutStatusFromBatch(batchStatus), nil
}

// record writes the payout, the legacy cashout record, and the transaction
// history entry atomically.
func (s *CashoutService) record(ctx context.Context, payout *models.Payout) error {
	session, err := s.db.Client().StartSession()
	if err != nil {
		return fmt.Errorf("failed to start ledger session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if _, err := s.db.Collection("payouts").InsertOne(sc, payout); err != nil {
			return nil, err
		}

		cashout := models.Cashout{
			HostID:    payout.HostID,
			Amount:    payout.Amount,
			Email:     payout.Email,
			BatchID:   payout.BatchID,
			Status:    payout.Status,
			CreatedAt: payout.CreatedAt,
		}
		if _, err := s.db.Collection("cashouts").InsertOne(sc, cashout); err != nil {
			return nil, err
		}

		record := models.TransactionRecord{
			HostID:      payout.HostID,
			Type:        models.TransactionTypePayout,
			Amount:      -payout.Amount,
			Description: "Cashout to " + payout.Email,
			BatchID:     payout.BatchID,
			Date:        payout.CreatedAt,
		}
		if _, err := s.db.Collection("transactions").InsertOne(sc, record); err != nil {
			return nil, err
		}

		return nil, nil
	})

	return err
}
