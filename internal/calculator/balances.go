package calculator

import (
	"math"
	"time"

	"github.com/mmynk/osusu/internal/models"
)

// arrearsEpsilon absorbs floating point noise when comparing paid and expected amounts.
const arrearsEpsilon = 0.01

// MemberBalance is one member's standing in the group.
type MemberBalance struct {
	MemberID string  `json:"memberId"`
	Paid     float64 `json:"paid"`     // Total contributed across the ledger
	Expected float64 `json:"expected"` // What should have been contributed by now
	Arrears  float64 `json:"arrears"`  // Expected - Paid, never negative
	Received float64 `json:"received"` // Contributions recorded toward this member's payout
	// NetBalance is Paid - Received. Positive means the member has put in more than they got.
	NetBalance float64 `json:"netBalance"`
}

// CalculateGroupBalances computes each member's standing, in membership order.
//
// Algorithm:
// - Paid sums the ledger entries the member paid
// - Received sums the ledger entries recorded toward the member
// - Expected is the cumulative contribution owed by now, the same for every member
func CalculateGroupBalances(g *models.Group, now time.Time) []MemberBalance {
	expected := ExpectedContribution(g, now)
	totals := TotalsByRecipient(g.PaymentsLedger)

	balances := make([]MemberBalance, 0, len(g.MembersList))
	for _, m := range g.MembersList {
		bal := MemberBalance{
			MemberID: m.ID,
			Paid:     Contributions(g.PaymentsLedger, m.ID),
			Expected: expected,
			Received: totals.Received(m.ID),
		}
		if arrears := bal.Expected - bal.Paid; arrears > arrearsEpsilon {
			bal.Arrears = math.Round(arrears*100) / 100
		}
		bal.NetBalance = bal.Paid - bal.Received
		balances = append(balances, bal)
	}
	return balances
}

// InArrears returns the IDs of members who have paid less than expected.
func InArrears(balances []MemberBalance) []string {
	var ids []string
	for _, b := range balances {
		if b.Arrears > 0 {
			ids = append(ids, b.MemberID)
		}
	}
	return ids
}
