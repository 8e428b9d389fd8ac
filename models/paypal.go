// models/paypal.go
package models

// PayPalTokenResponse is the OAuth client-credentials token exchange response.
type PayPalTokenResponse struct {
	Scope       string `json:"scope"`
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	AppID       string `json:"app_id"`
	ExpiresIn   int    `json:"expires_in"`
}

// PayPalAmount is a currency amount in the provider's wire format.
type PayPalAmount struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

// PayPalSenderBatchHeader carries the sender-supplied idempotency batch id.
type PayPalSenderBatchHeader struct {
	SenderBatchID string `json:"sender_batch_id"`
	EmailSubject  string `json:"email_subject,omitempty"`
	EmailMessage  string `json:"email_message,omitempty"`
}

// PayPalPayoutItem is a single transfer inside a payout batch.
type PayPalPayoutItem struct {
	RecipientType string       `json:"recipient_type"`
	Amount        PayPalAmount `json:"amount"`
	Receiver      string       `json:"receiver"`
	Note          string       `json:"note,omitempty"`
	SenderItemID  string       `json:"sender_item_id,omitempty"`
}

// PayPalPayoutRequest is the payout-batch submission body.
type PayPalPayoutRequest struct {
	SenderBatchHeader PayPalSenderBatchHeader `json:"sender_batch_header"`
	Items             []PayPalPayoutItem      `json:"items"`
}

// PayPalBatchHeader is the provider's view of a submitted batch.
type PayPalBatchHeader struct {
	PayoutBatchID     string                  `json:"payout_batch_id"`
	BatchStatus       string                  `json:"batch_status"`
	SenderBatchHeader PayPalSenderBatchHeader `json:"sender_batch_header"`
}

// PayPalPayoutItemDetail is one item of a batch status response.
type PayPalPayoutItemDetail struct {
	PayoutItemID      string `json:"payout_item_id"`
	TransactionID     string `json:"transaction_id"`
	TransactionStatus string `json:"transaction_status"`
}

// PayPalPayoutResponse is the payout-batch submission response.
type PayPalPayoutResponse struct {
	BatchHeader PayPalBatchHeader        `json:"batch_header"`
	Items       []PayPalPayoutItemDetail `json:"items,omitempty"`
}

// PayPalErrorResponse is the provider's error body.
type PayPalErrorResponse struct {
	Name    string `json:"name"`
	Message string `json:"message"`
	DebugID string `json:"debug_id,omitempty"`
}

// PayoutResult is the normalized outcome handed back to the cashout flow.
type PayoutResult struct {
	BatchID       string `json:"batchId"`
	TransactionID string `json:"transactionId,omitempty"`
	Status        string `json:"status"` // provider-provisional: "PENDING", "SUCCESS", ...
}
