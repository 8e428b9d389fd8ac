// services/earnings.go
package services

import (
	"fmt"
	"sort"
	"time"

	"github.com/nestay/nestay_backend/models"
)

// DefaultFeeRate is the platform's cut on completed bookings. It is a
// configuration constant, never derived per-booking.
const DefaultFeeRate = 0.05

// Anomaly flags a booking the classifiers disagree on. Anomalies are
// reported to the caller for logging; they never abort a summary.
type Anomaly struct {
	BookingID string
	Reason    string
}

// day truncates t to midnight in its own location.
func day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// completionDate picks the date a booking counts as completed on:
// checkOut, else checkIn, else the record's last update.
func completionDate(b models.Booking) time.Time {
	if b.CheckOut != nil {
		return *b.CheckOut
	}
	if b.CheckIn != nil {
		return *b.CheckIn
	}
	return b.UpdatedAt
}

// IsCompleted reports whether a booking counts toward final earnings.
// A completed status always counts. A confirmed booking counts once its
// checkOut (else checkIn) is strictly before today; on the checkout day
// itself the booking is still upcoming. A confirmed booking with no dates
// at all is treated as immediately completed.
func IsCompleted(b models.Booking, now time.Time) bool {
	if b.Status == models.BookingStatusCompleted {
		return true
	}
	if b.Status != models.BookingStatusConfirmed {
		return false
	}
	end := b.CheckOut
	if end == nil {
		end = b.CheckIn
	}
	if end == nil {
		return true
	}
	return day(now).After(day(*end))
}

// IsUpcoming reports whether a confirmed booking is still a future
// projection. The checkout day itself is upcoming, not completed.
func IsUpcoming(b models.Booking, now time.Time) bool {
	if b.Status != models.BookingStatusConfirmed {
		return false
	}
	if b.CheckOut != nil {
		return !day(now).After(day(*b.CheckOut))
	}
	if b.CheckIn != nil {
		return day(now).Before(day(*b.CheckIn))
	}
	return true
}

// SplitFee splits a booking total into the platform fee and the host net.
// No rounding happens here; formatting is display-time concern.
func SplitFee(total, feeRate float64) (fee, net float64) {
	fee = total * feeRate
	net = total - fee
	return fee, net
}

// Summarize folds a host's bookings, payouts and credits into an
// EarningsSummary. Bookings are partitioned into completed / upcoming /
// neither; completed wins when both classifiers fire, so a booking is never
// double-counted. Confirmed bookings where both or neither classifier fires
// (outside the checkout-day boundary) are returned as anomalies.
func Summarize(bookings []models.Booking, payouts []models.Payout, credits []models.Credit, now time.Time, feeRate float64) (models.EarningsSummary, []Anomaly) {
	var summary models.EarningsSummary
	var anomalies []Anomaly

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	for _, b := range bookings {
		completed := IsCompleted(b, now)
		upcoming := IsUpcoming(b, now)

		if b.Status == models.BookingStatusConfirmed {
			checkoutToday := b.CheckOut != nil && day(now).Equal(day(*b.CheckOut))
			if completed && upcoming {
				anomalies = append(anomalies, Anomaly{
					BookingID: b.ID.Hex(),
					Reason:    "classified both completed and upcoming",
				})
			} else if !completed && !upcoming && !checkoutToday {
				anomalies = append(anomalies, Anomaly{
					BookingID: b.ID.Hex(),
					Reason:    "classified neither completed nor upcoming",
				})
			}
		}

		switch {
		case completed:
			fee, net := SplitFee(b.Amount(), feeRate)
			summary.TotalEarnings += net
			summary.AdminFeesTotal += fee
			summary.CompletedCount++
			if !day(completionDate(b)).Before(monthStart) {
				summary.ThisMonthEarnings += net
			}
		case upcoming:
			summary.EstimatedEarnings += b.Amount()
			summary.UpcomingCount++
			if b.CheckIn != nil && b.CheckIn.Year() == now.Year() && b.CheckIn.Month() == now.Month() {
				summary.ThisMonthEstimated += b.Amount()
			}
		}
	}

	for _, c := range credits {
		summary.TotalCredits += c.Amount
	}

	for _, p := range payouts {
		if p.Status == models.PayoutStatusProcessing || p.Status == models.PayoutStatusCompleted {
			summary.TotalCashedOut += p.Amount
		}
	}

	summary.AvailableBalance = summary.TotalEarnings + summary.TotalCredits - summary.TotalCashedOut
	if summary.AvailableBalance < 0 {
		summary.AvailableBalance = 0
	}

	return summary, anomalies
}

// BuildTransactionHistory produces the unified signed history for a host:
// net earnings per completed booking, negative entries for non-failed
// payouts, positive entries for credits. It shares the completion
// classifier with Summarize so the two views never disagree. Newest first.
func BuildTransactionHistory(bookings []models.Booking, payouts []models.Payout, credits []models.Credit, now time.Time, feeRate float64) []models.TransactionRecord {
	var history []models.TransactionRecord

	for _, b := range bookings {
		if !IsCompleted(b, now) {
			continue
		}
		_, net := SplitFee(b.Amount(), feeRate)
		id := b.ID
		history = append(history, models.TransactionRecord{
			HostID:      b.HostID,
			Type:        models.TransactionTypeBookingEarning,
			Amount:      net,
			Description: fmt.Sprintf("Booking earnings (%.2f less platform fee)", b.Amount()),
			BookingID:   &id,
			Date:        completionDate(b),
		})
	}

	for _, p := range payouts {
		if p.Status == models.PayoutStatusFailed {
			continue
		}
		history = append(history, models.TransactionRecord{
			HostID:      p.HostID,
			Type:        models.TransactionTypePayout,
			Amount:      -p.Amount,
			Description: "Cashout to " + p.Email,
			BatchID:     p.BatchID,
			Date:        p.CreatedAt,
		})
	}

	for _, c := range credits {
		history = append(history, models.TransactionRecord{
			HostID:      c.HostID,
			Type:        models.TransactionTypeCredit,
			Amount:      c.Amount,
			Description: "Credit code " + c.Code,
			Code:        c.Code,
			Date:        c.CreatedAt,
		})
	}

	sort.Slice(history, func(i, j int) bool {
		return history[i].Date.After(history[j].Date)
	})

	return history
}
