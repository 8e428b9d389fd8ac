package services

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/nestay/nestay_backend/models"
)

// Fixed reference time for all classifier tests: mid-day, mid-month.
var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func datePtr(year int, month time.Month, dayOfMonth int) *time.Time {
	t := time.Date(year, month, dayOfMonth, 14, 0, 0, 0, time.UTC)
	return &t
}

func booking(status string, checkIn, checkOut *time.Time, total float64) models.Booking {
	return models.Booking{
		ID:       primitive.NewObjectID(),
		Status:   status,
		CheckIn:  checkIn,
		CheckOut: checkOut,
		Total:    total,
	}
}

func TestIsCompleted(t *testing.T) {
	cases := []struct {
		name string
		b    models.Booking
		want bool
	}{
		{"completed status counts regardless of dates",
			booking(models.BookingStatusCompleted, datePtr(2026, 4, 1), datePtr(2026, 4, 5), 100), true},
		{"confirmed with past checkout",
			booking(models.BookingStatusConfirmed, datePtr(2026, 3, 10), datePtr(2026, 3, 14), 100), true},
		{"confirmed checking out today is not yet completed",
			booking(models.BookingStatusConfirmed, datePtr(2026, 3, 12), datePtr(2026, 3, 15), 100), false},
		{"confirmed with future checkout",
			booking(models.BookingStatusConfirmed, datePtr(2026, 3, 20), datePtr(2026, 3, 25), 100), false},
		{"confirmed with only a past check-in",
			booking(models.BookingStatusConfirmed, datePtr(2026, 3, 10), nil, 100), true},
		{"confirmed with only today's check-in",
			booking(models.BookingStatusConfirmed, datePtr(2026, 3, 15), nil, 100), false},
		{"confirmed with no dates is immediately completed",
			booking(models.BookingStatusConfirmed, nil, nil, 100), true},
		{"pending approval never counts",
			booking(models.BookingStatusPendingApproval, datePtr(2026, 3, 1), datePtr(2026, 3, 5), 100), false},
		{"cancelled never counts",
			booking(models.BookingStatusCancelled, datePtr(2026, 3, 1), datePtr(2026, 3, 5), 100), false},
	}

	for _, tc := range cases {
		if got := IsCompleted(tc.b, testNow); got != tc.want {
			t.Errorf("%s: IsCompleted got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestIsUpcoming(t *testing.T) {
	cases := []struct {
		name string
		b    models.Booking
		want bool
	}{
		{"confirmed with future checkout",
			booking(models.BookingStatusConfirmed, datePtr(2026, 3, 20), datePtr(2026, 3, 25), 100), true},
		{"checkout day itself is still upcoming",
			booking(models.BookingStatusConfirmed, datePtr(2026, 3, 12), datePtr(2026, 3, 15), 100), true},
		{"confirmed with past checkout",
			booking(models.BookingStatusConfirmed, datePtr(2026, 3, 1), datePtr(2026, 3, 10), 100), false},
		{"confirmed with only a future check-in",
			booking(models.BookingStatusConfirmed, datePtr(2026, 3, 20), nil, 100), true},
		{"confirmed with only today's check-in is not upcoming",
			booking(models.BookingStatusConfirmed, datePtr(2026, 3, 15), nil, 100), false},
		{"confirmed with no dates",
			booking(models.BookingStatusConfirmed, nil, nil, 100), true},
		{"completed status is never upcoming",
			booking(models.BookingStatusCompleted, datePtr(2026, 3, 20), datePtr(2026, 3, 25), 100), false},
		{"pending approval is never upcoming",
			booking(models.BookingStatusPendingApproval, datePtr(2026, 3, 20), datePtr(2026, 3, 25), 100), false},
	}

	for _, tc := range cases {
		if got := IsUpcoming(tc.b, testNow); got != tc.want {
			t.Errorf("%s: IsUpcoming got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestSplitFee(t *testing.T) {
	fee, net := SplitFee(1000, DefaultFeeRate)
	if fee != 50 {
		t.Errorf("fee: got %v, want 50", fee)
	}
	if net != 950 {
		t.Errorf("net: got %v, want 950", net)
	}

	fee, net = SplitFee(0, DefaultFeeRate)
	if fee != 0 || net != 0 {
		t.Errorf("zero total: got fee %v net %v, want 0 0", fee, net)
	}
}

// TestSummarize runs the core scenario: two completed bookings worth 10000
// total, one upcoming worth 5000, no payouts or credits.
func TestSummarize(t *testing.T) {
	bookings := []models.Booking{
		booking(models.BookingStatusCompleted, datePtr(2026, 3, 1), datePtr(2026, 3, 5), 6000),
		booking(models.BookingStatusConfirmed, datePtr(2026, 3, 8), datePtr(2026, 3, 12), 4000),
		booking(models.BookingStatusConfirmed, datePtr(2026, 3, 20), datePtr(2026, 3, 25), 5000),
	}

	summary, anomalies := Summarize(bookings, nil, nil, testNow, DefaultFeeRate)

	if len(anomalies) != 0 {
		t.Fatalf("anomalies: got %d, want 0", len(anomalies))
	}
	if summary.TotalEarnings != 9500 {
		t.Errorf("TotalEarnings: got %v, want 9500", summary.TotalEarnings)
	}
	if summary.AdminFeesTotal != 500 {
		t.Errorf("AdminFeesTotal: got %v, want 500", summary.AdminFeesTotal)
	}
	if summary.EstimatedEarnings != 5000 {
		t.Errorf("EstimatedEarnings: got %v, want 5000", summary.EstimatedEarnings)
	}
	if summary.AvailableBalance != 9500 {
		t.Errorf("AvailableBalance: got %v, want 9500", summary.AvailableBalance)
	}
	if summary.CompletedCount != 2 {
		t.Errorf("CompletedCount: got %d, want 2", summary.CompletedCount)
	}
	if summary.UpcomingCount != 1 {
		t.Errorf("UpcomingCount: got %d, want 1", summary.UpcomingCount)
	}
	// All completion dates fall in the current month
	if summary.ThisMonthEarnings != 9500 {
		t.Errorf("ThisMonthEarnings: got %v, want 9500", summary.ThisMonthEarnings)
	}
	if summary.ThisMonthEstimated != 5000 {
		t.Errorf("ThisMonthEstimated: got %v, want 5000", summary.ThisMonthEstimated)
	}
}

func TestSummarizeThisMonthSplit(t *testing.T) {
	bookings := []models.Booking{
		booking(models.BookingStatusCompleted, datePtr(2026, 2, 1), datePtr(2026, 2, 5), 1000),
		booking(models.BookingStatusCompleted, datePtr(2026, 3, 1), datePtr(2026, 3, 5), 2000),
		// Upcoming booking checking in next month never counts this month
		booking(models.BookingStatusConfirmed, datePtr(2026, 4, 2), datePtr(2026, 4, 6), 3000),
	}

	summary, _ := Summarize(bookings, nil, nil, testNow, DefaultFeeRate)

	if summary.TotalEarnings != 2850 {
		t.Errorf("TotalEarnings: got %v, want 2850", summary.TotalEarnings)
	}
	if summary.ThisMonthEarnings != 1900 {
		t.Errorf("ThisMonthEarnings: got %v, want 1900", summary.ThisMonthEarnings)
	}
	if summary.ThisMonthEstimated != 0 {
		t.Errorf("ThisMonthEstimated: got %v, want 0", summary.ThisMonthEstimated)
	}
}

func TestSummarizePayoutsAndCredits(t *testing.T) {
	bookings := []models.Booking{
		booking(models.BookingStatusCompleted, datePtr(2026, 3, 1), datePtr(2026, 3, 5), 1000),
	}
	payouts := []models.Payout{
		{Amount: 500, Status: models.PayoutStatusProcessing},
		{Amount: 200, Status: models.PayoutStatusCompleted},
		// Failed payouts never reduce the balance
		{Amount: 9999, Status: models.PayoutStatusFailed},
	}
	credits := []models.Credit{
		{Amount: 200},
	}

	summary, _ := Summarize(bookings, payouts, credits, testNow, DefaultFeeRate)

	if summary.TotalCashedOut != 700 {
		t.Errorf("TotalCashedOut: got %v, want 700", summary.TotalCashedOut)
	}
	if summary.TotalCredits != 200 {
		t.Errorf("TotalCredits: got %v, want 200", summary.TotalCredits)
	}
	// 950 net + 200 credit - 700 cashed out
	if summary.AvailableBalance != 450 {
		t.Errorf("AvailableBalance: got %v, want 450", summary.AvailableBalance)
	}
}

func TestSummarizeBalanceClampsAtZero(t *testing.T) {
	bookings := []models.Booking{
		booking(models.BookingStatusCompleted, datePtr(2026, 3, 1), datePtr(2026, 3, 5), 1000),
	}
	payouts := []models.Payout{
		{Amount: 2000, Status: models.PayoutStatusCompleted},
	}

	summary, _ := Summarize(bookings, payouts, nil, testNow, DefaultFeeRate)

	if summary.AvailableBalance != 0 {
		t.Errorf("AvailableBalance: got %v, want 0", summary.AvailableBalance)
	}
	if summary.TotalCashedOut != 2000 {
		t.Errorf("TotalCashedOut: got %v, want 2000", summary.TotalCashedOut)
	}
}

func TestSummarizeFullBalanceCashout(t *testing.T) {
	bookings := []models.Booking{
		booking(models.BookingStatusCompleted, datePtr(2026, 3, 1), datePtr(2026, 3, 5), 10000),
	}

	before, _ := Summarize(bookings, nil, nil, testNow, DefaultFeeRate)
	if before.AvailableBalance != 9500 {
		t.Fatalf("AvailableBalance before cashout: got %v, want 9500", before.AvailableBalance)
	}

	payouts := []models.Payout{
		{Amount: before.AvailableBalance, Status: models.PayoutStatusProcessing},
	}
	after, _ := Summarize(bookings, payouts, nil, testNow, DefaultFeeRate)
	if after.AvailableBalance != 0 {
		t.Errorf("AvailableBalance after cashout: got %v, want 0", after.AvailableBalance)
	}
}

// A confirmed booking with no dates satisfies both classifiers. It must be
// counted exactly once, as completed, and flagged.
func TestSummarizeDatelessConfirmed(t *testing.T) {
	bookings := []models.Booking{
		booking(models.BookingStatusConfirmed, nil, nil, 1000),
	}

	summary, anomalies := Summarize(bookings, nil, nil, testNow, DefaultFeeRate)

	if summary.CompletedCount != 1 {
		t.Errorf("CompletedCount: got %d, want 1", summary.CompletedCount)
	}
	if summary.UpcomingCount != 0 {
		t.Errorf("UpcomingCount: got %d, want 0", summary.UpcomingCount)
	}
	if summary.TotalEarnings != 950 {
		t.Errorf("TotalEarnings: got %v, want 950", summary.TotalEarnings)
	}
	if summary.EstimatedEarnings != 0 {
		t.Errorf("EstimatedEarnings: got %v, want 0 (no double count)", summary.EstimatedEarnings)
	}
	if len(anomalies) != 1 {
		t.Fatalf("anomalies: got %d, want 1", len(anomalies))
	}
	// BookingID is the booking's hex id, ready for log lines as-is
	if anomalies[0].BookingID != bookings[0].ID.Hex() {
		t.Errorf("anomaly BookingID: got %q, want %q", anomalies[0].BookingID, bookings[0].ID.Hex())
	}
}

// A confirmed booking whose only date is today's check-in fires neither
// classifier. It is flagged but the summary still completes.
func TestSummarizeNeitherClassifier(t *testing.T) {
	bookings := []models.Booking{
		booking(models.BookingStatusConfirmed, datePtr(2026, 3, 15), nil, 1000),
	}

	summary, anomalies := Summarize(bookings, nil, nil, testNow, DefaultFeeRate)

	if summary.CompletedCount != 0 || summary.UpcomingCount != 0 {
		t.Errorf("counts: got completed %d upcoming %d, want 0 0",
			summary.CompletedCount, summary.UpcomingCount)
	}
	if len(anomalies) != 1 {
		t.Fatalf("anomalies: got %d, want 1", len(anomalies))
	}
}

// The checkout-day boundary is deliberate, not an anomaly.
func TestSummarizeCheckoutDayNotFlagged(t *testing.T) {
	bookings := []models.Booking{
		booking(models.BookingStatusConfirmed, datePtr(2026, 3, 12), datePtr(2026, 3, 15), 1000),
	}

	summary, anomalies := Summarize(bookings, nil, nil, testNow, DefaultFeeRate)

	if len(anomalies) != 0 {
		t.Fatalf("anomalies: got %d, want 0", len(anomalies))
	}
	if summary.UpcomingCount != 1 {
		t.Errorf("UpcomingCount: got %d, want 1", summary.UpcomingCount)
	}
}

func TestSummarizeLegacyTotalField(t *testing.T) {
	b := booking(models.BookingStatusCompleted, datePtr(2026, 3, 1), datePtr(2026, 3, 5), 0)
	b.LegacyTotal = 2000

	summary, _ := Summarize([]models.Booking{b}, nil, nil, testNow, DefaultFeeRate)

	if summary.TotalEarnings != 1900 {
		t.Errorf("TotalEarnings from legacy field: got %v, want 1900", summary.TotalEarnings)
	}
}

// The history and the summary share one completion classifier, so the sum
// of booking earnings in the history always equals TotalEarnings.
func TestHistoryAgreesWithSummary(t *testing.T) {
	bookings := []models.Booking{
		booking(models.BookingStatusCompleted, datePtr(2026, 3, 1), datePtr(2026, 3, 5), 1200),
		booking(models.BookingStatusConfirmed, datePtr(2026, 3, 8), datePtr(2026, 3, 12), 800),
		booking(models.BookingStatusConfirmed, datePtr(2026, 3, 20), datePtr(2026, 3, 25), 5000),
		booking(models.BookingStatusConfirmed, nil, nil, 400),
		booking(models.BookingStatusCancelled, datePtr(2026, 3, 1), datePtr(2026, 3, 5), 9999),
	}

	summary, _ := Summarize(bookings, nil, nil, testNow, DefaultFeeRate)
	history := BuildTransactionHistory(bookings, nil, nil, testNow, DefaultFeeRate)

	var earned float64
	var count int
	for _, h := range history {
		if h.Type == models.TransactionTypeBookingEarning {
			earned += h.Amount
			count++
		}
	}

	if earned != summary.TotalEarnings {
		t.Errorf("history earnings %v disagree with summary TotalEarnings %v", earned, summary.TotalEarnings)
	}
	if count != summary.CompletedCount {
		t.Errorf("history earning rows %d disagree with CompletedCount %d", count, summary.CompletedCount)
	}
}

func TestBuildTransactionHistory(t *testing.T) {
	hostID := primitive.NewObjectID()

	completed := booking(models.BookingStatusCompleted, datePtr(2026, 3, 1), datePtr(2026, 3, 5), 1000)
	completed.HostID = hostID
	upcoming := booking(models.BookingStatusConfirmed, datePtr(2026, 3, 20), datePtr(2026, 3, 25), 4000)
	upcoming.HostID = hostID

	payouts := []models.Payout{
		{HostID: hostID, Amount: 300, Email: "host@example.com", BatchID: "batch-1",
			Status: models.PayoutStatusProcessing, CreatedAt: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)},
		{HostID: hostID, Amount: 999, Email: "host@example.com", BatchID: "batch-2",
			Status: models.PayoutStatusFailed, CreatedAt: time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC)},
	}
	credits := []models.Credit{
		{HostID: hostID, Amount: 200, Code: "WELCOME1", CreatedAt: time.Date(2026, 3, 12, 9, 0, 0, 0, time.UTC)},
	}

	history := BuildTransactionHistory([]models.Booking{completed, upcoming}, payouts, credits, testNow, DefaultFeeRate)

	// Upcoming booking and failed payout are excluded
	if len(history) != 3 {
		t.Fatalf("history length: got %d, want 3", len(history))
	}

	// Newest first: credit (Mar 12), payout (Mar 10), earning (Mar 5)
	if history[0].Type != models.TransactionTypeCredit || history[0].Amount != 200 {
		t.Errorf("history[0]: got %s %v, want credit 200", history[0].Type, history[0].Amount)
	}
	if history[1].Type != models.TransactionTypePayout || history[1].Amount != -300 {
		t.Errorf("history[1]: got %s %v, want payout -300", history[1].Type, history[1].Amount)
	}
	if history[2].Type != models.TransactionTypeBookingEarning || history[2].Amount != 950 {
		t.Errorf("history[2]: got %s %v, want booking_earning 950", history[2].Type, history[2].Amount)
	}
	if history[2].BookingID == nil || *history[2].BookingID != completed.ID {
		t.Errorf("history[2].BookingID not linked to the completed booking")
	}
}
