package calculator

import "github.com/mmynk/osusu/internal/models"

// RecipientTotals maps a payout recipient to what each payer contributed toward them.
type RecipientTotals map[string]map[string]float64

// TotalsByRecipient groups ledger entries by ForMemberID then PayerID, summing amounts.
func TotalsByRecipient(ledger []models.PaymentRecord) RecipientTotals {
	totals := make(RecipientTotals)
	for _, p := range ledger {
		if _, exists := totals[p.ForMemberID]; !exists {
			totals[p.ForMemberID] = make(map[string]float64)
		}
		totals[p.ForMemberID][p.PayerID] += p.Amount
	}
	return totals
}

// Received returns the total contributed toward recipient across all payers.
func (t RecipientTotals) Received(recipient string) float64 {
	var sum float64
	for _, amount := range t[recipient] {
		sum += amount
	}
	return sum
}

// HasPaid reports whether payer has any contribution recorded toward recipient.
func HasPaid(ledger []models.PaymentRecord, payerID, recipientID string) bool {
	for _, p := range ledger {
		if p.PayerID == payerID && p.ForMemberID == recipientID {
			return true
		}
	}
	return false
}
