package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nestay/nestay_backend/models"
)

// newTestPayPalService points a service at a local fake provider.
func newTestPayPalService(baseURL string) *PayPalService {
	return &PayPalService{
		baseURL:    baseURL,
		clientID:   "test-client",
		secret:     "test-secret",
		isSandbox:  true,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

func TestSendPayout(t *testing.T) {
	var tokenRequests int
	var gotPayout models.PayPalPayoutRequest
	var gotAuth string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/oauth2/token":
			tokenRequests++
			user, pass, ok := r.BasicAuth()
			if !ok || user != "test-client" || pass != "test-secret" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			json.NewEncoder(w).Encode(models.PayPalTokenResponse{
				AccessToken: "token-abc",
				TokenType:   "Bearer",
				ExpiresIn:   3600,
			})
		case "/v1/payments/payouts":
			gotAuth = r.Header.Get("Authorization")
			if err := json.NewDecoder(r.Body).Decode(&gotPayout); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(models.PayPalPayoutResponse{
				BatchHeader: models.PayPalBatchHeader{
					PayoutBatchID:     "PROVIDER-BATCH-1",
					BatchStatus:       "PENDING",
					SenderBatchHeader: gotPayout.SenderBatchHeader,
				},
				Items: []models.PayPalPayoutItemDetail{
					{TransactionID: "TXN-1", TransactionStatus: "PENDING"},
				},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	svc := newTestPayPalService(server.URL)

	result, err := svc.SendPayout(context.Background(), "host@example.com", 150.5, "USD", "my-batch-id")
	if err != nil {
		t.Fatalf("SendPayout: %v", err)
	}

	if tokenRequests != 1 {
		t.Errorf("token requests: got %d, want 1", tokenRequests)
	}
	if gotAuth != "Bearer token-abc" {
		t.Errorf("payout Authorization: got %q, want Bearer token-abc", gotAuth)
	}
	if gotPayout.SenderBatchHeader.SenderBatchID != "my-batch-id" {
		t.Errorf("sender_batch_id: got %q, want my-batch-id", gotPayout.SenderBatchHeader.SenderBatchID)
	}
	if len(gotPayout.Items) != 1 {
		t.Fatalf("payout items: got %d, want 1", len(gotPayout.Items))
	}
	if gotPayout.Items[0].Receiver != "host@example.com" {
		t.Errorf("receiver: got %q", gotPayout.Items[0].Receiver)
	}
	if gotPayout.Items[0].Amount.Value != "150.50" {
		t.Errorf("amount: got %q, want 150.50", gotPayout.Items[0].Amount.Value)
	}
	if gotPayout.Items[0].Amount.Currency != "USD" {
		t.Errorf("currency: got %q, want USD", gotPayout.Items[0].Amount.Currency)
	}

	if result.BatchID != "PROVIDER-BATCH-1" {
		t.Errorf("result batch id: got %q, want PROVIDER-BATCH-1", result.BatchID)
	}
	if result.Status != "PENDING" {
		t.Errorf("result status: got %q, want PENDING", result.Status)
	}
	if result.TransactionID != "TXN-1" {
		t.Errorf("result transaction id: got %q, want TXN-1", result.TransactionID)
	}
}

func TestSendPayoutAuthFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	svc := newTestPayPalService(server.URL)

	_, err := svc.SendPayout(context.Background(), "host@example.com", 150, "USD", "batch")
	if !errors.Is(err, ErrProviderAuth) {
		t.Fatalf("got %v, want ErrProviderAuth", err)
	}
}

func TestSendPayoutProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/oauth2/token":
			json.NewEncoder(w).Encode(models.PayPalTokenResponse{AccessToken: "token-abc", ExpiresIn: 3600})
		case "/v1/payments/payouts":
			w.WriteHeader(http.StatusUnprocessableEntity)
			json.NewEncoder(w).Encode(models.PayPalErrorResponse{
				Name:    "INSUFFICIENT_FUNDS",
				Message: "Sender does not have sufficient funds",
			})
		}
	}))
	defer server.Close()

	svc := newTestPayPalService(server.URL)

	_, err := svc.SendPayout(context.Background(), "host@example.com", 150, "USD", "batch")
	if !errors.Is(err, ErrProviderPayout) {
		t.Fatalf("got %v, want ErrProviderPayout", err)
	}
}

func TestSendPayoutMissingCredentials(t *testing.T) {
	svc := &PayPalService{
		baseURL:    "http://localhost:1",
		httpClient: &http.Client{Timeout: time.Second},
	}

	_, err := svc.SendPayout(context.Background(), "host@example.com", 150, "USD", "batch")
	if !errors.Is(err, ErrProviderAuth) {
		t.Fatalf("got %v, want ErrProviderAuth", err)
	}
}

func TestGetPayoutStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/oauth2/token":
			json.NewEncoder(w).Encode(models.PayPalTokenResponse{AccessToken: "token-abc", ExpiresIn: 3600})
		case "/v1/payments/payouts/PROVIDER-BATCH-1":
			json.NewEncoder(w).Encode(models.PayPalPayoutResponse{
				BatchHeader: models.PayPalBatchHeader{
					PayoutBatchID: "PROVIDER-BATCH-1",
					BatchStatus:   "SUCCESS",
				},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	svc := newTestPayPalService(server.URL)

	status, err := svc.GetPayoutStatus(context.Background(), "PROVIDER-BATCH-1")
	if err != nil {
		t.Fatalf("GetPayoutStatus: %v", err)
	}
	if status != "SUCCESS" {
		t.Errorf("status: got %q, want SUCCESS", status)
	}
}
