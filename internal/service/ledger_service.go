package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/osusu/internal/calculator"
	apperrors "github.com/mmynk/osusu/internal/errors"
	"github.com/mmynk/osusu/internal/models"
	"github.com/mmynk/osusu/internal/rosca"
	"github.com/mmynk/osusu/pkg/api"
	"github.com/mmynk/osusu/pkg/api/apiconnect"
)

// LedgerService implements the Connect LedgerService
type LedgerService struct {
	apiconnect.UnimplementedLedgerServiceHandler
	groups *GroupStore
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(groups *GroupStore) *LedgerService {
	return &LedgerService{groups: groups}
}

// RecordPayment appends a contribution to the group ledger. Members record their own
// payments; the admin may record on behalf of any member.
func (s *LedgerService) RecordPayment(ctx context.Context, req *connect.Request[api.RecordPaymentRequest]) (*connect.Response[api.RecordPaymentResponse], error) {
	caller, err := requireCaller(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("RecordPayment request received",
		"group_id", req.Msg.GroupID,
		"amount", req.Msg.Amount,
		"for_member_id", req.Msg.ForMemberID,
		"provider", req.Msg.Provider,
	)
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	var rec models.PaymentRecord
	_, err = s.groups.Mutate(ctx, req.Msg.GroupID, func(g models.Group, env rosca.Env) (models.Group, error) {
		payer, err := memberFor(&g, caller)
		if err != nil {
			return g, err
		}
		payerID := req.Msg.PayerID
		if payerID == "" {
			payerID = payer.ID
		}
		if payerID != payer.ID && payer.Role != models.RoleAdmin {
			return g, apperrors.ErrNotAdmin
		}

		rec = models.PaymentRecord{
			Amount:      req.Msg.Amount,
			PayerID:     payerID,
			ForMemberID: req.Msg.ForMemberID,
			Provider:    req.Msg.Provider,
		}
		if req.Msg.Date != nil {
			rec.Date = *req.Msg.Date
		}

		out, err := rosca.RecordPayment(g, rec, env.Now)
		if err != nil {
			return g, err
		}
		rec = out.PaymentsLedger[len(out.PaymentsLedger)-1]
		return out, nil
	})
	if err != nil {
		slog.Warn("RecordPayment rejected", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Payment recorded", "group_id", req.Msg.GroupID, "payment_id", rec.ID, "payer_id", rec.PayerID)
	return connect.NewResponse(&api.RecordPaymentResponse{Payment: rec}), nil
}

// GetTotals returns contributions grouped by recipient and payer, and each member's standing.
func (s *LedgerService) GetTotals(ctx context.Context, req *connect.Request[api.GetTotalsRequest]) (*connect.Response[api.GetTotalsResponse], error) {
	caller, err := requireCaller(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	g, env, err := s.groups.Get(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if _, err := memberFor(&g, caller); err != nil {
		return nil, toConnectError(err)
	}

	totals := rosca.TotalsByRecipient(&g)
	received := make(map[string]float64, len(totals))
	for recipient := range totals {
		received[recipient] = totals.Received(recipient)
	}

	return connect.NewResponse(&api.GetTotalsResponse{
		ByRecipient: totals,
		Received:    received,
		Balances:    calculator.CalculateGroupBalances(&g, env.Now),
	}), nil
}

// GetRecentActivity returns ledger entries newest first.
func (s *LedgerService) GetRecentActivity(ctx context.Context, req *connect.Request[api.GetRecentActivityRequest]) (*connect.Response[api.GetRecentActivityResponse], error) {
	caller, err := requireCaller(ctx)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	g, _, err := s.groups.Get(ctx, req.Msg.GroupID)
	if err != nil {
		return nil, toConnectError(err)
	}
	if _, err := memberFor(&g, caller); err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.GetRecentActivityResponse{
		Payments: rosca.RecentActivity(&g, req.Msg.Limit),
	}), nil
}
