package controllers

import (
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/nestay/nestay_backend/models"
)

func TestNightsBetween(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2026, 3, d, 14, 0, 0, 0, time.UTC)
	}

	cases := []struct {
		checkIn, checkOut time.Time
		want              int
	}{
		{day(1), day(5), 4},
		{day(1), day(2), 1},
		// Sub-day stays count as one night
		{day(1), day(1).Add(2 * time.Hour), 1},
	}

	for _, tc := range cases {
		if got := nightsBetween(tc.checkIn, tc.checkOut); got != tc.want {
			t.Errorf("nightsBetween(%v, %v): got %d, want %d", tc.checkIn, tc.checkOut, got, tc.want)
		}
	}
}

func TestValidStatusTransition(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{models.BookingStatusPendingApproval, models.BookingStatusConfirmed, true},
		{models.BookingStatusPendingApproval, models.BookingStatusCancelled, true},
		{models.BookingStatusPendingApproval, models.BookingStatusCompleted, false},
		{models.BookingStatusConfirmed, models.BookingStatusActive, true},
		{models.BookingStatusConfirmed, models.BookingStatusCompleted, true},
		{models.BookingStatusActive, models.BookingStatusCompleted, true},
		{models.BookingStatusCompleted, models.BookingStatusCancelled, false},
		{models.BookingStatusCancelled, models.BookingStatusConfirmed, false},
	}

	for _, tc := range cases {
		if got := validStatusTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("validStatusTransition(%s, %s): got %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

// Both participants must resolve the same conversation key.
func TestConversationID(t *testing.T) {
	a := primitive.NewObjectID()
	b := primitive.NewObjectID()

	ab := ConversationID(a, b)
	ba := ConversationID(b, a)
	if ab != ba {
		t.Errorf("conversation key not symmetric: %q vs %q", ab, ba)
	}
	if !strings.Contains(ab, ":") {
		t.Errorf("conversation key missing separator: %q", ab)
	}
}

func TestGenerateCreditCode(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		code, err := generateCreditCode()
		if err != nil {
			t.Fatalf("generateCreditCode: %v", err)
		}
		if len(code) != creditCodeLength {
			t.Fatalf("code length: got %d, want %d", len(code), creditCodeLength)
		}
		for _, ch := range code {
			if !strings.ContainsRune(creditCodeCharset, ch) {
				t.Fatalf("code %q contains character outside the charset", code)
			}
		}
		seen[code] = true
	}
	if len(seen) < 45 {
		t.Errorf("generated codes collide far too often: %d unique of 50", len(seen))
	}
}
