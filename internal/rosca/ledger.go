package rosca

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/osusu/internal/calculator"
	apperrors "github.com/mmynk/osusu/internal/errors"
	"github.com/mmynk/osusu/internal/models"
)

// RecordPayment validates and appends a contribution. Manual collections are only
// accepted from the active collector for that recipient.
func RecordPayment(g models.Group, rec models.PaymentRecord, now time.Time) (models.Group, error) {
	if math.IsNaN(rec.Amount) || math.IsInf(rec.Amount, 0) || rec.Amount <= 0 {
		return g, apperrors.NewValidationError("amount", "must be positive")
	}
	if rec.PayerID == "" {
		return g, apperrors.NewValidationError("payerId", "payer is required")
	}
	if !g.IsMember(rec.ForMemberID) {
		return g, apperrors.NewValidationError("forMemberId", "recipient is not a member of this group")
	}
	if rec.Provider == models.ProviderManualCollection && !AuthorizeManualCollection(&g, rec.PayerID, rec.ForMemberID) {
		return g, apperrors.ErrUnauthorized
	}

	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.Date.IsZero() {
		rec.Date = now
	}

	g = Clone(g)
	g.PaymentsLedger = append(g.PaymentsLedger, rec)
	return g, nil
}

// TotalsByRecipient sums the ledger per recipient and payer.
func TotalsByRecipient(g *models.Group) calculator.RecipientTotals {
	return calculator.TotalsByRecipient(g.PaymentsLedger)
}

// RecentActivity returns ledger entries newest first. A non-positive limit returns all entries.
func RecentActivity(g *models.Group, limit int) []models.PaymentRecord {
	entries := make([]models.PaymentRecord, len(g.PaymentsLedger))
	copy(entries, g.PaymentsLedger)
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Date.After(entries[j].Date)
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}
