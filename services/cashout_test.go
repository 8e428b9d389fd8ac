package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/nestay/nestay_backend/models"
)

// fakeIssuer records calls and returns a scripted result.
type fakeIssuer struct {
	calls  int
	err    error
	status string
}

func (f *fakeIssuer) SendPayout(ctx context.Context, email string, amount float64, currency, batchID string) (*models.PayoutResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	status := f.status
	if status == "" {
		status = "PENDING"
	}
	return &models.PayoutResult{BatchID: batchID, Status: status}, nil
}

func TestValidateCashout(t *testing.T) {
	cases := []struct {
		name      string
		req       models.CashoutRequest
		available float64
		wantErr   bool
	}{
		{"valid request", models.CashoutRequest{Email: "host@example.com", Amount: 150}, 500, false},
		{"exactly the minimum", models.CashoutRequest{Email: "host@example.com", Amount: 100}, 500, false},
		{"exactly the available balance", models.CashoutRequest{Email: "host@example.com", Amount: 500}, 500, false},
		{"missing email", models.CashoutRequest{Amount: 150}, 500, true},
		{"malformed email", models.CashoutRequest{Email: "not-an-email", Amount: 150}, 500, true},
		{"below the minimum", models.CashoutRequest{Email: "host@example.com", Amount: 50}, 500, true},
		{"exceeds available balance", models.CashoutRequest{Email: "host@example.com", Amount: 600}, 500, true},
	}

	for _, tc := range cases {
		err := ValidateCashout(tc.req, tc.available)
		if (err != nil) != tc.wantErr {
			t.Errorf("%s: got err %v, wantErr %v", tc.name, err, tc.wantErr)
		}
	}
}

func TestValidateCashoutErrorKinds(t *testing.T) {
	err := ValidateCashout(models.CashoutRequest{Email: "host@example.com", Amount: 50}, 500)
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("sub-minimum amount: got %T, want *ValidationError", err)
	}
	if vErr.Field != "amount" {
		t.Errorf("field: got %q, want amount", vErr.Field)
	}

	err = ValidateCashout(models.CashoutRequest{Email: "host@example.com", Amount: 600}, 500)
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Errorf("over balance: got %v, want ErrInsufficientBalance", err)
	}
}

// A request that fails validation must never reach the payment provider.
func TestSubmitValidationBlocksProvider(t *testing.T) {
	issuer := &fakeIssuer{}
	svc := NewCashoutService(nil, issuer, "USD")
	host := models.User{ID: primitive.NewObjectID()}

	_, err := svc.Submit(context.Background(), host,
		models.CashoutRequest{Email: "host@example.com", Amount: 50}, 500)
	if err == nil {
		t.Fatal("sub-minimum cashout accepted")
	}
	if issuer.calls != 0 {
		t.Errorf("issuer called %d times for an invalid request, want 0", issuer.calls)
	}
}

// On a provider failure nothing is written; the error surfaces as-is.
func TestSubmitProviderFailure(t *testing.T) {
	issuer := &fakeIssuer{err: ErrProviderPayout}
	svc := NewCashoutService(nil, issuer, "USD")
	host := models.User{ID: primitive.NewObjectID()}

	_, err := svc.Submit(context.Background(), host,
		models.CashoutRequest{Email: "host@example.com", Amount: 200}, 500)
	if !errors.Is(err, ErrProviderPayout) {
		t.Fatalf("got %v, want ErrProviderPayout", err)
	}
	if issuer.calls != 1 {
		t.Errorf("issuer calls: got %d, want 1", issuer.calls)
	}
}

// blockingIssuer parks the first SendPayout call until release is closed.
type blockingIssuer struct {
	entered chan struct{}
	release chan struct{}

	mu    sync.Mutex
	calls int
}

func (b *blockingIssuer) SendPayout(ctx context.Context, email string, amount float64, currency, batchID string) (*models.PayoutResult, error) {
	b.mu.Lock()
	b.calls++
	first := b.calls == 1
	b.mu.Unlock()
	if first {
		close(b.entered)
		<-b.release
	}
	return nil, ErrProviderPayout
}

func (b *blockingIssuer) callCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls
}

// Both submissions here were validated against the same stale balance. The
// second must be rejected while the first is still at the provider, and the
// host must be free to submit again once the first completes.
func TestSubmitSerializesPerHost(t *testing.T) {
	issuer := &blockingIssuer{entered: make(chan struct{}), release: make(chan struct{})}
	svc := NewCashoutService(nil, issuer, "USD")
	host := models.User{ID: primitive.NewObjectID()}
	req := models.CashoutRequest{Email: "host@example.com", Amount: 400}

	firstDone := make(chan error, 1)
	go func() {
		_, err := svc.Submit(context.Background(), host, req, 500)
		firstDone <- err
	}()
	<-issuer.entered

	_, err := svc.Submit(context.Background(), host, req, 500)
	if !errors.Is(err, ErrCashoutInFlight) {
		t.Fatalf("overlapping submit: got %v, want ErrCashoutInFlight", err)
	}
	if got := issuer.callCount(); got != 1 {
		t.Errorf("issuer calls during overlap: got %d, want 1", got)
	}

	close(issuer.release)
	if err := <-firstDone; !errors.Is(err, ErrProviderPayout) {
		t.Fatalf("first submit: got %v, want ErrProviderPayout", err)
	}

	// The guard is released once the first submission finishes
	_, err = svc.Submit(context.Background(), host, req, 500)
	if !errors.Is(err, ErrProviderPayout) {
		t.Fatalf("follow-up submit: got %v, want ErrProviderPayout", err)
	}
	if got := issuer.callCount(); got != 2 {
		t.Errorf("issuer calls after release: got %d, want 2", got)
	}
}

// A second host is not blocked by another host's in-flight cashout.
func TestSubmitGuardIsPerHost(t *testing.T) {
	issuer := &blockingIssuer{entered: make(chan struct{}), release: make(chan struct{})}
	svc := NewCashoutService(nil, issuer, "USD")
	req := models.CashoutRequest{Email: "host@example.com", Amount: 400}

	firstDone := make(chan error, 1)
	go func() {
		_, err := svc.Submit(context.Background(), models.User{ID: primitive.NewObjectID()}, req, 500)
		firstDone <- err
	}()
	<-issuer.entered

	_, err := svc.Submit(context.Background(), models.User{ID: primitive.NewObjectID()}, req, 500)
	if !errors.Is(err, ErrProviderPayout) {
		t.Fatalf("other host's submit: got %v, want ErrProviderPayout", err)
	}

	close(issuer.release)
	<-firstDone
}

func TestPayoutStatusFromBatch(t *testing.T) {
	cases := []struct {
		batch string
		want  string
	}{
		{"SUCCESS", models.PayoutStatusCompleted},
		{"DENIED", models.PayoutStatusFailed},
		{"CANCELED", models.PayoutStatusFailed},
		{"PENDING", models.PayoutStatusProcessing},
		{"PROCESSING", models.PayoutStatusProcessing},
		{"", models.PayoutStatusProcessing},
		{"SOMETHING_NEW", models.PayoutStatusProcessing},
	}
	for _, tc := range cases {
		if got := payoutStatusFromBatch(tc.batch); got != tc.want {
			t.Errorf("payoutStatusFromBatch(%q): got %s, want %s", tc.batch, got, tc.want)
		}
	}
}

// An issuer without status lookups leaves the ledger status untouched.
func TestRefreshStatusWithoutChecker(t *testing.T) {
	svc := NewCashoutService(nil, &fakeIssuer{}, "USD")
	payout := &models.Payout{BatchID: "batch-1", Status: models.PayoutStatusProcessing}

	status, err := svc.RefreshStatus(context.Background(), payout)
	if err != nil {
		t.Fatalf("RefreshStatus: %v", err)
	}
	if status != models.PayoutStatusProcessing {
		t.Errorf("status: got %s, want processing", status)
	}
}

type checkingIssuer struct {
	fakeIssuer
	batchStatus string
}

func (c *checkingIssuer) GetPayoutStatus(ctx context.Context, payoutBatchID string) (string, error) {
	return c.batchStatus, nil
}

func TestRefreshStatusWithChecker(t *testing.T) {
	svc := NewCashoutService(nil, &checkingIssuer{batchStatus: "SUCCESS"}, "USD")
	payout := &models.Payout{BatchID: "batch-1", Status: models.PayoutStatusProcessing}

	status, err := svc.RefreshStatus(context.Background(), payout)
	if err != nil {
		t.Fatalf("RefreshStatus: %v", err)
	}
	if status != models.PayoutStatusCompleted {
		t.Errorf("status: got %s, want completed", status)
	}
}
