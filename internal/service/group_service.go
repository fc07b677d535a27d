package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/osusu/internal/models"
	"github.com/mmynk/osusu/internal/rosca"
	"github.com/mmynk/osusu/pkg/api"
	"github.com/mmynk/osusu/pkg/api/apiconnect"
)

// GroupService implements the Connect GroupService
type GroupService struct {
	apiconnect.UnimplementedGroupServiceHandler
	groups *GroupStore
}

// NewGroupService creates a new GroupService on the given group store.
func NewGroupService(groups *GroupStore) *GroupService {
	return &GroupService{groups: groups}
}

// CreateGroup creates a group with the caller as its admin.
func (s *GroupService) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	caller, err := requireCaller(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("CreateGroup request received",
		"name", req.Msg.Name,
		"payout_order", req.Msg.PayoutOrder,
		"max_members", req.Msg.MaxMembers,
	)
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	env, err := s.groups.Env(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}
	g, err := rosca.NewGroup(rosca.GroupTerms{
		Name:               req.Msg.Name,
		Logo:               req.Msg.Logo,
		ContributionAmount: req.Msg.ContributionAmount,
		Frequency:          models.Frequency(req.Msg.Frequency),
		StartDate:          req.Msg.StartDate,
		PayoutOrder:        models.PayoutOrder(req.Msg.PayoutOrder),
		MaxMembers:         req.Msg.MaxMembers,
	}, caller, env)
	if err != nil {
		return nil, toConnectError(err)
	}

	g, err = s.groups.Create(ctx, g)
	if err != nil {
		slog.Error("CreateGroup failed", "error", err)
		return nil, toConnectError(err)
	}

	slog.Info("Group created", "group_id", g.ID, "created_by", caller.ID)
	return connect.NewResponse(&api.CreateGroupResponse{
		Group:   rosca.RedactFor(g, caller.ID),
		Version: g.Version,
	}), nil
}

// GetGroup retrieves a group by ID, redacted for the caller. Only members may read it.
func (s *GroupService) GetGroup(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
	caller, err := requireCaller(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("GetGroup request received", "group_id", req.Msg.GroupID)
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	g, _, err := s.groups.Get(ctx, req.Msg.GroupID)
	if err != nil {
		slog.Error("GetGroup failed", "group_id", req.Msg.GroupID, "error", err)
		return nil, toConnectError(err)
	}
	member, err := memberFor(&g, caller)
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.GetGroupResponse{
		Group:   rosca.RedactFor(g, member.ID),
		Version: g.Version,
	}), nil
}

// ListGroups returns the caller's groups. With All set, every other group is listed as a
// summary so it can be found and joined.
func (s *GroupService) ListGroups(ctx context.Context, req *connect.Request[api.ListGroupsRequest]) (*connect.Response[api.ListGroupsResponse], error) {
	caller, err := requireCaller(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("ListGroups request received", "all", req.Msg.All)

	groups, err := s.groups.LoadGroups(ctx)
	if err != nil {
		slog.Error("ListGroups failed", "error", err)
		return nil, toConnectError(err)
	}

	resp := &api.ListGroupsResponse{Groups: make([]models.Group, 0, len(groups))}
	for i := range groups {
		g := &groups[i]
		m, ok := rosca.FindMember(g, caller)
		switch {
		case ok:
			resp.Groups = append(resp.Groups, rosca.RedactFor(*g, m.ID))
		case req.Msg.All:
			resp.Discoverable = append(resp.Discoverable, api.SummarizeGroup(g))
		}
	}

	slog.Info("ListGroups successful", "count", len(resp.Groups), "discoverable", len(resp.Discoverable))
	return connect.NewResponse(resp), nil
}

// SubmitJoinRequest asks the group admin to admit the caller.
func (s *GroupService) SubmitJoinRequest(ctx context.Context, req *connect.Request[api.SubmitJoinRequestRequest]) (*connect.Response[api.SubmitJoinRequestResponse], error) {
	caller, err := requireCaller(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("SubmitJoinRequest request received", "group_id", req.Msg.GroupID, "user_id", caller.ID)
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	g, err := s.groups.Mutate(ctx, req.Msg.GroupID, func(g models.Group, env rosca.Env) (models.Group, error) {
		return rosca.SubmitJoinRequest(g, caller, env.Now)
	})
	if err != nil {
		slog.Warn("SubmitJoinRequest rejected", "group_id", req.Msg.GroupID, "user_id", caller.ID, "error", err)
		return nil, toConnectError(err)
	}

	var joinReq models.JoinRequest
	for _, r := range g.JoinRequests {
		if r.User.ID == caller.ID && r.Status == models.JoinPending {
			joinReq = r
		}
	}
	return connect.NewResponse(&api.SubmitJoinRequestResponse{Request: joinReq}), nil
}

// ApproveJoinRequest admits a pending requester. Admin only.
func (s *GroupService) ApproveJoinRequest(ctx context.Context, req *connect.Request[api.ApproveJoinRequestRequest]) (*connect.Response[api.ApproveJoinRequestResponse], error) {
	caller, err := requireCaller(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("ApproveJoinRequest request received", "group_id", req.Msg.GroupID, "request_id", req.Msg.RequestID)
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	g, err := s.groups.Mutate(ctx, req.Msg.GroupID, func(g models.Group, env rosca.Env) (models.Group, error) {
		if _, err := adminFor(&g, caller); err != nil {
			return g, err
		}
		return rosca.Approve(g, req.Msg.RequestID, env), nil
	})
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.ApproveJoinRequestResponse{Group: rosca.RedactFor(g, viewerID(&g, caller))}), nil
}

// RejectJoinRequest declines a pending requester. Admin only.
func (s *GroupService) RejectJoinRequest(ctx context.Context, req *connect.Request[api.RejectJoinRequestRequest]) (*connect.Response[api.RejectJoinRequestResponse], error) {
	caller, err := requireCaller(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("RejectJoinRequest request received", "group_id", req.Msg.GroupID, "request_id", req.Msg.RequestID)
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	g, err := s.groups.Mutate(ctx, req.Msg.GroupID, func(g models.Group, env rosca.Env) (models.Group, error) {
		if _, err := adminFor(&g, caller); err != nil {
			return g, err
		}
		return rosca.Reject(g, req.Msg.RequestID, env.Now), nil
	})
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.RejectJoinRequestResponse{Group: rosca.RedactFor(g, viewerID(&g, caller))}), nil
}

// AddMember adds a person directly without a join request. Admin only.
func (s *GroupService) AddMember(ctx context.Context, req *connect.Request[api.AddMemberRequest]) (*connect.Response[api.AddMemberResponse], error) {
	caller, err := requireCaller(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("AddMember request received", "group_id", req.Msg.GroupID, "name", req.Msg.Name)
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	var added bool
	g, err := s.groups.Mutate(ctx, req.Msg.GroupID, func(g models.Group, env rosca.Env) (models.Group, error) {
		if _, err := adminFor(&g, caller); err != nil {
			return g, err
		}
		var out models.Group
		out, added = rosca.AddMemberDirect(g, rosca.MemberInfo{
			ID:    req.Msg.MemberID,
			Name:  req.Msg.Name,
			Phone: req.Msg.Phone,
		}, env)
		return out, nil
	})
	if err != nil {
		return nil, toConnectError(err)
	}

	if !added {
		slog.Info("AddMember skipped duplicate", "group_id", g.ID, "phone", req.Msg.Phone)
	}
	return connect.NewResponse(&api.AddMemberResponse{
		Group: rosca.RedactFor(g, viewerID(&g, caller)),
		Added: added,
	}), nil
}

// viewerID is the member ID the caller sees the group as, or their user ID if not a member.
func viewerID(g *models.Group, caller models.UserRef) string {
	if m, ok := rosca.FindMember(g, caller); ok {
		return m.ID
	}
	return caller.ID
}
