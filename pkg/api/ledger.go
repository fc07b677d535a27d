package api

import (
	"time"

	"github.com/mmynk/osusu/internal/calculator"
	"github.com/mmynk/osusu/internal/models"
)

type RecordPaymentRequest struct {
	GroupID string  `json:"groupId" validate:"required"`
	Amount  float64 `json:"amount"`
	// PayerID defaults to the caller. Only the admin may record on behalf of someone else.
	PayerID     string     `json:"payerId,omitempty"`
	ForMemberID string     `json:"forMemberId" validate:"required"`
	Provider    string     `json:"provider" validate:"required"`
	Date        *time.Time `json:"date,omitempty"`
}

type RecordPaymentResponse struct {
	Payment models.PaymentRecord `json:"payment"`
}

type GetTotalsRequest struct {
	GroupID string `json:"groupId" validate:"required"`
}

type GetTotalsResponse struct {
	// ByRecipient maps recipient to payer to amount.
	ByRecipient map[string]map[string]float64 `json:"byRecipient"`
	Received    map[string]float64            `json:"received"`
	// Balances is each member's standing, in membership order.
	Balances []calculator.MemberBalance `json:"balances"`
}

type GetRecentActivityRequest struct {
	GroupID string `json:"groupId" validate:"required"`
	Limit   int    `json:"limit,omitempty" validate:"min=0"`
}

type GetRecentActivityResponse struct {
	Payments []models.PaymentRecord `json:"payments"`
}
