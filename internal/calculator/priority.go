// Package calculator holds the pure arithmetic behind payout priority and ledger totals.
package calculator

import (
	"math"
	"time"

	"github.com/mmynk/osusu/internal/models"
)

// daysPerMonth is the month length used to turn elapsed days into elapsed months.
const daysPerMonth = 30

// PeriodsPerMonth returns how many contribution periods fit in a month for the frequency.
// Unknown frequencies count as monthly.
func PeriodsPerMonth(f models.Frequency) float64 {
	switch f {
	case models.FrequencyDaily:
		return 30
	case models.FrequencyWeekly:
		return 4
	default:
		return 1
	}
}

// MonthsElapsed returns max(1, floor(days since start / 30)).
func MonthsElapsed(start, now time.Time) int {
	days := int(math.Floor(now.Sub(start).Hours() / 24))
	months := int(math.Floor(float64(days) / daysPerMonth))
	if months < 1 {
		return 1
	}
	return months
}

// ExpectedContribution is the cumulative amount a member should have paid by now.
func ExpectedContribution(g *models.Group, now time.Time) float64 {
	return float64(MonthsElapsed(g.StartDate, now)) * PeriodsPerMonth(g.Frequency) * g.ContributionAmount
}

// Contributions sums the amounts paid by memberID across the whole ledger.
func Contributions(ledger []models.PaymentRecord, memberID string) float64 {
	var total float64
	for _, p := range ledger {
		if p.PayerID == memberID {
			total += p.Amount
		}
	}
	return total
}

// Timeliness is contributions / expected, capped at 1, and 0 when nothing is expected.
func Timeliness(g *models.Group, memberID string, now time.Time) float64 {
	expected := ExpectedContribution(g, now)
	if expected <= 0 {
		return 0
	}
	ratio := Contributions(g.PaymentsLedger, memberID) / expected
	if ratio > 1 {
		return 1
	}
	if ratio < 0 {
		return 0
	}
	return ratio
}

// PriorityScore computes timeliness × 10 + trust for a member.
//
// The timeliness component is capped so over-paying cannot dominate; trust is the slower
// external signal that separates equally timely members. Negative trust counts as 0.
func PriorityScore(g *models.Group, memberID string, trust float64, now time.Time) float64 {
	if trust < 0 {
		trust = 0
	}
	return Timeliness(g, memberID, now)*10 + trust
}

// PriorityScores scores every member of the group. Members absent from trust get 0.
func PriorityScores(g *models.Group, trust map[string]float64, now time.Time) map[string]float64 {
	scores := make(map[string]float64, len(g.MembersList))
	for _, m := range g.MembersList {
		scores[m.ID] = PriorityScore(g, m.ID, trust[m.ID], now)
	}
	return scores
}
