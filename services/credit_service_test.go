package services

import (
	"errors"
	"testing"

	"github.com/nestay/nestay_backend/models"
)

func TestClassifyRedeemFailure(t *testing.T) {
	cases := []struct {
		name string
		code models.CreditCode
		want error
	}{
		{"already redeemed",
			models.CreditCode{Status: models.CreditCodeStatusActive, Redeemed: true},
			ErrCreditAlreadyRedeemed},
		{"redeemed and disabled still reports redeemed",
			models.CreditCode{Status: models.CreditCodeStatusDisabled, Redeemed: true},
			ErrCreditAlreadyRedeemed},
		{"disabled but never redeemed",
			models.CreditCode{Status: models.CreditCodeStatusDisabled, Redeemed: false},
			ErrCreditInactive},
		{"lost a redeem race",
			models.CreditCode{Status: models.CreditCodeStatusActive, Redeemed: false},
			ErrCreditAlreadyRedeemed},
	}

	for _, tc := range cases {
		if got := ClassifyRedeemFailure(tc.code); !errors.Is(got, tc.want) {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestCreditCodeValue(t *testing.T) {
	if got := (models.CreditCode{CreditValue: 500}).Value(); got != 500 {
		t.Errorf("explicit value: got %v, want 500", got)
	}
	if got := (models.CreditCode{}).Value(); got != models.DefaultCreditValue {
		t.Errorf("default value: got %v, want %v", got, models.DefaultCreditValue)
	}
}
