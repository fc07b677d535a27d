package calculator

import (
	"math"
	"testing"
	"time"

	"github.com/mmynk/osusu/internal/models"
)

var start = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func testGroup(freq models.Frequency, amount float64, ledger ...models.PaymentRecord) *models.Group {
	return &models.Group{
		ContributionAmount: amount,
		Frequency:          freq,
		StartDate:          start,
		MembersList: []models.Member{
			{ID: "a", Name: "Ama", Role: models.RoleAdmin},
			{ID: "b", Name: "Bola", Role: models.RoleMember},
		},
		PaymentsLedger: ledger,
	}
}

func TestMonthsElapsed(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want int
	}{
		{"same day", start, 1},
		{"start in the future", start.AddDate(0, 0, -10), 1},
		{"29 days", start.AddDate(0, 0, 29), 1},
		{"60 days", start.AddDate(0, 0, 60), 2},
		{"95 days", start.AddDate(0, 0, 95), 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MonthsElapsed(start, tt.now); got != tt.want {
				t.Errorf("MonthsElapsed() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPriorityScore(t *testing.T) {
	now := start.AddDate(0, 0, 60) // two months elapsed

	tests := []struct {
		name  string
		group *models.Group
		trust float64
		want  float64
	}{
		{
			name:  "no payments, no trust",
			group: testGroup(models.FrequencyMonthly, 100),
			want:  0,
		},
		{
			name: "half of expected monthly",
			group: testGroup(models.FrequencyMonthly, 100,
				models.PaymentRecord{PayerID: "a", Amount: 100}),
			want: 5,
		},
		{
			name: "over-paying is capped",
			group: testGroup(models.FrequencyMonthly, 100,
				models.PaymentRecord{PayerID: "a", Amount: 1000}),
			trust: 2,
			want:  12,
		},
		{
			name: "weekly expects four periods per month",
			group: testGroup(models.FrequencyWeekly, 10,
				models.PaymentRecord{PayerID: "a", Amount: 40}),
			want: 5,
		},
		{
			name: "daily expects thirty periods per month",
			group: testGroup(models.FrequencyDaily, 1,
				models.PaymentRecord{PayerID: "a", Amount: 15}),
			want: 2.5,
		},
		{
			name: "other payers do not count",
			group: testGroup(models.FrequencyMonthly, 100,
				models.PaymentRecord{PayerID: "b", Amount: 200}),
			trust: 1,
			want:  1,
		},
		{
			name:  "zero contribution amount expects nothing",
			group: testGroup(models.FrequencyMonthly, 0, models.PaymentRecord{PayerID: "a", Amount: 5}),
			want:  0,
		},
		{
			name:  "negative trust counts as zero",
			group: testGroup(models.FrequencyMonthly, 100),
			trust: -3,
			want:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PriorityScore(tt.group, "a", tt.trust, now)
			if math.Abs(got-tt.want) > 0.0001 {
				t.Errorf("PriorityScore() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPriorityScoreBounds(t *testing.T) {
	const maxTrust = 3.0
	amounts := []float64{0, 1, 50, 99, 100, 250, 10000}
	for _, paid := range amounts {
		for _, trust := range []float64{0, 1.5, maxTrust} {
			g := testGroup(models.FrequencyMonthly, 100, models.PaymentRecord{PayerID: "a", Amount: paid})
			score := PriorityScore(g, "a", trust, start.AddDate(0, 3, 0))
			if score < 0 || score > 10+maxTrust {
				t.Errorf("score %v out of bounds for paid=%v trust=%v", score, paid, trust)
			}
		}
	}
}

func TestTotalsByRecipient(t *testing.T) {
	ledger := []models.PaymentRecord{
		{PayerID: "a", ForMemberID: "b", Amount: 10},
		{PayerID: "a", ForMemberID: "b", Amount: 5},
		{PayerID: "c", ForMemberID: "b", Amount: 7},
		{PayerID: "b", ForMemberID: "a", Amount: 20},
	}

	totals := TotalsByRecipient(ledger)

	if got := totals["b"]["a"]; got != 15 {
		t.Errorf("totals[b][a] = %v, want 15", got)
	}
	if got := totals["b"]["c"]; got != 7 {
		t.Errorf("totals[b][c] = %v, want 7", got)
	}
	if got := totals.Received("b"); got != 22 {
		t.Errorf("Received(b) = %v, want 22", got)
	}
	if got := totals["a"]["b"]; got != 20 {
		t.Errorf("totals[a][b] = %v, want 20", got)
	}
	if len(totals) != 2 {
		t.Errorf("expected 2 recipients, got %d", len(totals))
	}
	if !HasPaid(ledger, "c", "b") || HasPaid(ledger, "c", "a") {
		t.Error("HasPaid mismatch")
	}
}
