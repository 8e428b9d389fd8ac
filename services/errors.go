// services/errors.go
package services

import "errors"

// Sentinel errors for the cashout and credit flows. Controllers map these
// onto HTTP responses; nothing here is fatal to the process.
var (
	ErrInsufficientBalance   = errors.New("amount exceeds available balance")
	ErrCashoutInFlight       = errors.New("a cashout for this host is already in progress")
	ErrProviderAuth          = errors.New("payment provider authentication failed")
	ErrProviderPayout        = errors.New("payment provider rejected the payout")
	ErrCreditNotFound        = errors.New("credit code not found")
	ErrCreditAlreadyRedeemed = errors.New("credit code already redeemed")
	ErrCreditInactive        = errors.New("credit code is not active")
)

// ValidationError reports a rejected cashout or redemption input. The form
// stays open; the message is shown to the user.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
