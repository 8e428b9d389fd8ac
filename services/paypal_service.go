// services/paypal_service.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/nestay/nestay_backend/models"
)

const payPalTokenCacheKey = "paypal:access_token"

// PayPalService handles interactions with the PayPal REST API: the OAuth
// client-credentials exchange and payout-batch submission. The access token
// is cached in Redis until shortly before expiry; a payout call always
// acquires the token first (strict sequential dependency).
type PayPalService struct {
	baseURL    string
	clientID   string
	secret     string
	isSandbox  bool
	redis      *redis.Client
	httpClient *http.Client
}

// NewPayPalService creates a new PayPal service instance
func NewPayPalService(redisClient *redis.Client) *PayPalService {
	// Default to sandbox unless PAYPAL_ENV is set to "live"
	payPalEnv := os.Getenv("PAYPAL_ENV")
	isSandbox := payPalEnv != "live"

	baseURL := "https://api-m.sandbox.paypal.com"
	if !isSandbox {
		baseURL = "https://api-m.paypal.com"
	}

	clientID := os.Getenv("PAYPAL_CLIENT_ID")
	secret := os.Getenv("PAYPAL_SECRET")

	if clientID == "" || secret == "" {
		log.Printf("WARNING: PayPal credentials not fully configured:")
		if clientID == "" {
			log.Printf("  - PAYPAL_CLIENT_ID is missing")
		}
		if secret == "" {
			log.Printf("  - PAYPAL_SECRET is missing")
		}
		log.Printf("Please set these environment variables for cashouts to work")
		log.Printf("Set PAYPAL_ENV=live for production, or leave unset for sandbox")
	} else {
		log.Printf("PayPal Service Configuration:")
		log.Printf("  Environment: %s", map[bool]string{true: "sandbox", false: "live"}[isSandbox])
		log.Printf("  Base URL: %s", baseURL)
		log.Printf("  Client ID: %s", clientID)
		log.Printf("  Secret: [CONFIGURED]")
	}

	return &PayPalService{
		baseURL:   baseURL,
		clientID:  clientID,
		secret:    secret,
		isSandbox: isSandbox,
		redis:     redisClient,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// getAccessToken returns a bearer token, reusing the Redis-cached one when
// still valid.
func (s *PayPalService) getAccessToken(ctx context.Context) (string, error) {
	if s.clientID == "" || s.secret == "" {
		return "", fmt.Errorf("%w: missing PayPal credentials, set PAYPAL_CLIENT_ID and PAYPAL_SECRET", ErrProviderAuth)
	}

	if s.redis != nil {
		if token, err := s.redis.Get(ctx, payPalTokenCacheKey).Result(); err == nil && token != "" {
			return token, nil
		}
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.SetBasicAuth(s.clientID, s.secret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrProviderAuth, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read token response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Printf("PayPal token error: status=%d body=%s", resp.StatusCode, string(body))
		return "", fmt.Errorf("%w: status %d", ErrProviderAuth, resp.StatusCode)
	}

	var tokenResp models.PayPalTokenResponse
	if err := json.Unmarshal(body, &tokenResp); err != nil {
		return "", fmt.Errorf("failed to parse token response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access token", ErrProviderAuth)
	}

	if s.redis != nil && tokenResp.ExpiresIn > 60 {
		// Expire the cached token a minute early so we never send a stale one
		ttl := time.Duration(tokenResp.ExpiresIn-60) * time.Second
		if err := s.redis.Set(ctx, payPalTokenCacheKey, tokenResp.AccessToken, ttl).Err(); err != nil {
			log.Printf("Failed to cache PayPal token: %v", err)
		}
	}

	return tokenResp.AccessToken, nil
}

// SendPayout submits a single-item payout batch. batchID is the
// sender-supplied idempotency key; resubmitting the same id does not create
// a second transfer at the provider.
func (s *PayPalService) SendPayout(ctx context.Context, email string, amount float64, currency, batchID string) (*models.PayoutResult, error) {
	token, err := s.getAccessToken(ctx)
	if err != nil {
		return nil, err
	}

	payload := models.PayPalPayoutRequest{
		SenderBatchHeader: models.PayPalSenderBatchHeader{
			SenderBatchID: batchID,
			EmailSubject:  "You have a payout from Nestay",
		},
		Items: []models.PayPalPayoutItem{
			{
				RecipientType: "EMAIL",
				Amount: models.PayPalAmount{
					Value:    strconv.FormatFloat(amount, 'f', 2, 64),
					Currency: currency,
				},
				Receiver:     email,
				Note:         "Nestay host earnings cashout",
				SenderItemID: batchID + "-1",
			},
		},
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payout request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+"/v1/payments/payouts", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create payout request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	if s.isSandbox || os.Getenv("PAYPAL_DEBUG") == "true" {
		log.Printf("PayPal payout request: batch=%s amount=%s %s receiver=%s", batchID, payload.Items[0].Amount.Value, currency, email)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderPayout, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read payout response: %w", err)
	}

	if s.isSandbox || os.Getenv("PAYPAL_DEBUG") == "true" {
		log.Printf("PayPal payout response: %s", string(body))
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		var provErr models.PayPalErrorResponse
		if err := json.Unmarshal(body, &provErr); err == nil && provErr.Name != "" {
			return nil, fmt.Errorf("%w: %s - %s", ErrProviderPayout, provErr.Name, provErr.Message)
		}
		return nil, fmt.Errorf("%w: status %d", ErrProviderPayout, resp.StatusCode)
	}

	var payoutResp models.PayPalPayoutResponse
	if err := json.Unmarshal(body, &payoutResp); err != nil {
		return nil, fmt.Errorf("failed to parse payout response: %w", err)
	}
	if payoutResp.BatchHeader.PayoutBatchID == "" {
		return nil, fmt.Errorf("%w: missing batch id in response", ErrProviderPayout)
	}

	result := &models.PayoutResult{
		BatchID: payoutResp.BatchHeader.PayoutBatchID,
		Status:  payoutResp.BatchHeader.BatchStatus,
	}
	if len(payoutResp.Items) > 0 {
		result.TransactionID = payoutResp.Items[0].TransactionID
	}

	return result, nil
}

// GetPayoutStatus returns the provider's current status for a batch.
func (s *PayPalService) GetPayoutStatus(ctx context.Context, payoutBatchID string) (string, error) {
	token, err := s.getAccessToken(ctx)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "GET", s.baseURL+"/v1/payments/payouts/"+payoutBatchID, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create status request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrProviderPayout, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read status response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrProviderPayout, resp.StatusCode)
	}

	var payoutResp models.PayPalPayoutResponse
	if err := json.Unmarshal(body, &payoutResp); err != nil {
		return "", fmt.Errorf("failed to parse status response: %w", err)
	}

	return payoutResp.BatchHeader.BatchStatus, nil
}
