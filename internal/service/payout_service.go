package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/osusu/internal/calculator"
	"github.com/mmynk/osusu/internal/models"
	"github.com/mmynk/osusu/internal/rosca"
	"github.com/mmynk/osusu/pkg/api"
	"github.com/mmynk/osusu/pkg/api/apiconnect"
)

// PayoutService implements the Connect PayoutService: voting rounds, payout marking and
// collector delegation.
type PayoutService struct {
	apiconnect.UnimplementedPayoutServiceHandler
	groups   *GroupStore
	markMode rosca.MarkMode
}

// NewPayoutService creates a PayoutService. markMode controls whether payouts may be marked
// out of rotation order.
func NewPayoutService(groups *GroupStore, markMode rosca.MarkMode) *PayoutService {
	if markMode == "" {
		markMode = rosca.MarkPermissive
	}
	return &PayoutService{groups: groups, markMode: markMode}
}

// GetPayoutStatus reports the rotation state, the open round and every member's priority score.
func (s *PayoutService) GetPayoutStatus(ctx context.Context, req *connect.Request[api.GetPayoutStatusRequest]) (*connect.Response[api.GetPayoutStatusResponse], error) {
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

	resp := &api.GetPayoutStatusResponse{
		PayoutOrder: string(g.PayoutOrder),
		State:       string(rosca.State(&g)),
		Schedule:    g.PayoutSchedule,
		Received:    g.PayoutReceived,
		Scores:      calculator.PriorityScores(&g, env.Trust, env.Now),
	}
	if id, ok := rosca.CurrentRecipient(&g); ok {
		resp.CurrentRecipient = id
	}
	if g.PayoutOrder == models.PayoutVoting {
		if r := findRound(&g, g.Voting.CurrentRound); r != nil {
			resp.CurrentRound = r
			resp.Tally = rosca.Tally(r)
		}
	}

	return connect.NewResponse(resp), nil
}

// CastVote records the caller's ballot. Invalid choices are dropped rather than rejected.
func (s *PayoutService) CastVote(ctx context.Context, req *connect.Request[api.CastVoteRequest]) (*connect.Response[api.CastVoteResponse], error) {
	caller, err := requireCaller(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CastVote request received", "group_id", req.Msg.GroupID, "round_id", req.Msg.RoundID, "user_id", caller.ID)
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	g, err := s.groups.Mutate(ctx, req.Msg.GroupID, func(g models.Group, _ rosca.Env) (models.Group, error) {
		voter, err := memberFor(&g, caller)
		if err != nil {
			return g, err
		}
		return rosca.CastVote(g, req.Msg.RoundID, voter.ID, req.Msg.CandidateIDs), nil
	})
	if err != nil {
		return nil, toConnectError(err)
	}

	resp := &api.CastVoteResponse{}
	if r := findRound(&g, req.Msg.RoundID); r != nil {
		resp.Round = *r
	}
	return connect.NewResponse(resp), nil
}

// FinalizeRound closes a round and schedules its winners. Admin only.
func (s *PayoutService) FinalizeRound(ctx context.Context, req *connect.Request[api.FinalizeRoundRequest]) (*connect.Response[api.FinalizeRoundResponse], error) {
	caller, err := requireCaller(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("FinalizeRound request received", "group_id", req.Msg.GroupID, "round_id", req.Msg.RoundID)
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	g, err := s.groups.Mutate(ctx, req.Msg.GroupID, func(g models.Group, env rosca.Env) (models.Group, error) {
		if _, err := adminFor(&g, caller); err != nil {
			return g, err
		}
		return rosca.FinalizeRound(g, req.Msg.RoundID, env), nil
	})
	if err != nil {
		return nil, toConnectError(err)
	}

	slog.Info("Round finalized", "group_id", g.ID, "round_id", req.Msg.RoundID, "schedule", g.PayoutSchedule)
	return connect.NewResponse(&api.FinalizeRoundResponse{Group: rosca.RedactFor(g, viewerID(&g, caller))}), nil
}

// MarkReceived records that a member got their payout. Admin only.
func (s *PayoutService) MarkReceived(ctx context.Context, req *connect.Request[api.MarkReceivedRequest]) (*connect.Response[api.MarkReceivedResponse], error) {
	caller, err := requireCaller(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("MarkReceived request received", "group_id", req.Msg.GroupID, "member_id", req.Msg.MemberID, "mode", s.markMode)
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	g, err := s.groups.Mutate(ctx, req.Msg.GroupID, func(g models.Group, env rosca.Env) (models.Group, error) {
		if _, err := adminFor(&g, caller); err != nil {
			return g, err
		}
		return rosca.MarkReceived(g, req.Msg.MemberID, s.markMode, env.Now)
	})
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.MarkReceivedResponse{Group: rosca.RedactFor(g, viewerID(&g, caller))}), nil
}

// AssignCollector delegates manual collection for some members to a collector. Admin only.
func (s *PayoutService) AssignCollector(ctx context.Context, req *connect.Request[api.AssignCollectorRequest]) (*connect.Response[api.AssignCollectorResponse], error) {
	caller, err := requireCaller(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("AssignCollector request received",
		"group_id", req.Msg.GroupID,
		"collector_id", req.Msg.CollectorID,
		"members_count", len(req.Msg.AssignedMemberIDs),
	)
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	var admin models.Member
	g, err := s.groups.Mutate(ctx, req.Msg.GroupID, func(g models.Group, env rosca.Env) (models.Group, error) {
		if admin, err = adminFor(&g, caller); err != nil {
			return g, err
		}
		return rosca.AssignCollector(g, req.Msg.CollectorID, req.Msg.AssignedMemberIDs, req.Msg.IDImage, env.Now)
	})
	if err != nil {
		return nil, toConnectError(err)
	}

	resp := &api.AssignCollectorResponse{}
	for _, a := range rosca.VisibleAssignments(&g, admin.ID) {
		if a.Active {
			resp.Assignment = a
		}
	}
	return connect.NewResponse(resp), nil
}

// GetCollector returns the collector assignments as visible to the caller.
func (s *PayoutService) GetCollector(ctx context.Context, req *connect.Request[api.GetCollectorRequest]) (*connect.Response[api.GetCollectorResponse], error) {
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
	viewer, err := memberFor(&g, caller)
	if err != nil {
		return nil, toConnectError(err)
	}

	resp := &api.GetCollectorResponse{Assignments: rosca.VisibleAssignments(&g, viewer.ID)}
	for i := range resp.Assignments {
		if resp.Assignments[i].Active {
			active := resp.Assignments[i]
			resp.Active = &active
		}
	}
	return connect.NewResponse(resp), nil
}

func findRound(g *models.Group, id int) *models.VotingRound {
	if id < 1 || id > len(g.Voting.Rounds) {
		return nil
	}
	r := g.Voting.Rounds[id-1]
	return &r
}
