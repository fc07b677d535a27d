package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"

	"github.com/mmynk/osusu/internal/models"
	"github.com/mmynk/osusu/internal/rosca"
	"github.com/mmynk/osusu/pkg/api"
)

func TestCreateGroup(t *testing.T) {
	c := setupTestServer(t, rosca.MarkPermissive)
	ama := c.register(t, "Ama", "ama@example.com", "+233200000001")

	g := c.createGroup(t, ama, models.PayoutAutomatic, 4)

	if g.ID == "" {
		t.Fatal("expected group ID")
	}
	if len(g.MembersList) != 1 || g.MembersList[0].ID != ama.ID || g.MembersList[0].Role != models.RoleAdmin {
		t.Errorf("expected creator as only admin member, got %+v", g.MembersList)
	}
	if len(g.PayoutSchedule) != 1 || g.PayoutSchedule[0] != ama.ID {
		t.Errorf("expected automatic schedule [%s], got %v", ama.ID, g.PayoutSchedule)
	}
	if g.Status != models.StatusOpen {
		t.Errorf("expected status %s, got %s", models.StatusOpen, g.Status)
	}
}

func TestCreateGroup_Validation(t *testing.T) {
	c := setupTestServer(t, rosca.MarkPermissive)
	ama := c.register(t, "Ama", "ama@example.com", "")

	_, err := c.groups.CreateGroup(context.Background(), as(ama, &api.CreateGroupRequest{
		Name:               "Bad",
		ContributionAmount: 0,
		Frequency:          "Monthly",
		PayoutOrder:        "Automatic",
		MaxMembers:         4,
	}))
	assertCode(t, err, connect.CodeInvalidArgument, "")
}

func TestCreateGroup_Unauthenticated(t *testing.T) {
	c := setupTestServer(t, rosca.MarkPermissive)

	_, err := c.groups.CreateGroup(context.Background(), connect.NewRequest(&api.CreateGroupRequest{Name: "No token"}))
	assertCode(t, err, connect.CodeUnauthenticated, "")
}

func TestGetGroup(t *testing.T) {
	c := setupTestServer(t, rosca.MarkPermissive)
	ama := c.register(t, "Ama", "ama@example.com", "")
	created := c.createGroup(t, ama, models.PayoutVoting, 4)

	resp, err := c.groups.GetGroup(context.Background(), as(ama, &api.GetGroupRequest{GroupID: created.ID}))
	if err != nil {
		t.Fatalf("GetGroup failed: %v", err)
	}

	if resp.Msg.Group.Name != "Market Women" {
		t.Errorf("expected name 'Market Women', got %s", resp.Msg.Group.Name)
	}
	if resp.Msg.Version != 1 {
		t.Errorf("expected version 1, got %d", resp.Msg.Version)
	}
	if len(resp.Msg.Group.Voting.Rounds) != 1 {
		t.Errorf("expected an open voting round, got %d rounds", len(resp.Msg.Group.Voting.Rounds))
	}
}

func TestGetGroup_NotFound(t *testing.T) {
	c := setupTestServer(t, rosca.MarkPermissive)
	ama := c.register(t, "Ama", "ama@example.com", "")

	_, err := c.groups.GetGroup(context.Background(), as(ama, &api.GetGroupRequest{GroupID: "missing"}))
	assertCode(t, err, connect.CodeNotFound, "NotFound")
}

func TestListGroups(t *testing.T) {
	c := setupTestServer(t, rosca.MarkPermissive)
	ama := c.register(t, "Ama", "ama@example.com", "")
	kofi := c.register(t, "Kofi", "kofi@example.com", "")
	c.createGroup(t, ama, models.PayoutAutomatic, 4)
	c.createGroup(t, ama, models.PayoutVoting, 4)
	c.createGroup(t, kofi, models.PayoutAutomatic, 4)

	ctx := context.Background()
	mine, err := c.groups.ListGroups(ctx, as(ama, &api.ListGroupsRequest{}))
	if err != nil {
		t.Fatalf("ListGroups failed: %v", err)
	}
	if len(mine.Msg.Groups) != 2 {
		t.Errorf("expected 2 groups for Ama, got %d", len(mine.Msg.Groups))
	}

	all, err := c.groups.ListGroups(ctx, as(ama, &api.ListGroupsRequest{All: true}))
	if err != nil {
		t.Fatalf("ListGroups failed: %v", err)
	}
	if len(all.Msg.Groups) != 2 {
		t.Errorf("expected Ama's 2 groups in full, got %d", len(all.Msg.Groups))
	}
	if len(all.Msg.Discoverable) != 1 {
		t.Fatalf("expected Kofi's group as the only summary, got %+v", all.Msg.Discoverable)
	}
	summary := all.Msg.Discoverable[0]
	if summary.MemberCount != 1 || summary.MaxMembers != 4 || summary.Status != models.StatusOpen || summary.ContributionAmount != 50 {
		t.Errorf("unexpected summary %+v", summary)
	}
}

func TestGetGroup_NotMember(t *testing.T) {
	c := setupTestServer(t, rosca.MarkPermissive)
	ama := c.register(t, "Ama", "ama@example.com", "+233555111111")
	eve := c.register(t, "Eve", "eve@example.com", "")
	g := c.createGroup(t, ama, models.PayoutAutomatic, 4)
	ctx := context.Background()

	_, err := c.groups.GetGroup(ctx, as(eve, &api.GetGroupRequest{GroupID: g.ID}))
	assertCode(t, err, connect.CodePermissionDenied, "NotMember")

	// A pending request does not grant read access either.
	if _, err := c.groups.SubmitJoinRequest(ctx, as(eve, &api.SubmitJoinRequestRequest{GroupID: g.ID})); err != nil {
		t.Fatalf("SubmitJoinRequest failed: %v", err)
	}
	_, err = c.groups.GetGroup(ctx, as(eve, &api.GetGroupRequest{GroupID: g.ID}))
	assertCode(t, err, connect.CodePermissionDenied, "NotMember")

	c.join(t, g.ID, ama, c.register(t, "Kofi", "kofi@example.com", ""))
	listed, err := c.groups.ListGroups(ctx, as(eve, &api.ListGroupsRequest{All: true}))
	if err != nil {
		t.Fatalf("ListGroups failed: %v", err)
	}
	if len(listed.Msg.Groups) != 0 || len(listed.Msg.Discoverable) != 1 {
		t.Fatalf("expected one summary and no full groups, got %+v", listed.Msg)
	}
	if listed.Msg.Discoverable[0].MemberCount != 2 {
		t.Errorf("expected member count 2, got %d", listed.Msg.Discoverable[0].MemberCount)
	}
}

func TestJoinRequest_ApproveFlow(t *testing.T) {
	c := setupTestServer(t, rosca.MarkPermissive)
	ama := c.register(t, "Ama", "ama@example.com", "")
	kofi := c.register(t, "Kofi", "kofi@example.com", "")
	g := c.createGroup(t, ama, models.PayoutVoting, 2)

	g = c.join(t, g.ID, ama, kofi)

	if !g.IsMember(kofi.ID) {
		t.Fatalf("expected Kofi to be a member, got %+v", g.MembersList)
	}
	if g.Status != models.StatusFull {
		t.Errorf("expected group to be full, got %s", g.Status)
	}
	if g.JoinRequests[0].Status != models.JoinApproved || g.JoinRequests[0].ResolvedAt == nil {
		t.Errorf("expected approved request with resolution time, got %+v", g.JoinRequests[0])
	}
}

func TestSubmitJoinRequest_Errors(t *testing.T) {
	c := setupTestServer(t, rosca.MarkPermissive)
	ama := c.register(t, "Ama", "ama@example.com", "")
	kofi := c.register(t, "Kofi", "kofi@example.com", "")
	esi := c.register(t, "Esi", "esi@example.com", "")
	g := c.createGroup(t, ama, models.PayoutAutomatic, 2)
	ctx := context.Background()

	_, err := c.groups.SubmitJoinRequest(ctx, as(ama, &api.SubmitJoinRequestRequest{GroupID: g.ID}))
	assertCode(t, err, connect.CodeAlreadyExists, "AlreadyMember")

	if _, err := c.groups.SubmitJoinRequest(ctx, as(kofi, &api.SubmitJoinRequestRequest{GroupID: g.ID})); err != nil {
		t.Fatalf("SubmitJoinRequest failed: %v", err)
	}
	_, err = c.groups.SubmitJoinRequest(ctx, as(kofi, &api.SubmitJoinRequestRequest{GroupID: g.ID}))
	assertCode(t, err, connect.CodeAlreadyExists, "DuplicatePending")

	c.join(t, g.ID, ama, esi)
	_, err = c.groups.SubmitJoinRequest(ctx, as(c.register(t, "Yaw", "yaw@example.com", ""), &api.SubmitJoinRequestRequest{GroupID: g.ID}))
	assertCode(t, err, connect.CodeResourceExhausted, "GroupFull")
}

func TestRejectJoinRequest(t *testing.T) {
	c := setupTestServer(t, rosca.MarkPermissive)
	ama := c.register(t, "Ama", "ama@example.com", "")
	kofi := c.register(t, "Kofi", "kofi@example.com", "")
	g := c.createGroup(t, ama, models.PayoutAutomatic, 4)
	ctx := context.Background()

	sub, err := c.groups.SubmitJoinRequest(ctx, as(kofi, &api.SubmitJoinRequestRequest{GroupID: g.ID}))
	if err != nil {
		t.Fatalf("SubmitJoinRequest failed: %v", err)
	}

	// Only the admin may resolve requests.
	_, err = c.groups.RejectJoinRequest(ctx, as(kofi, &api.RejectJoinRequestRequest{GroupID: g.ID, RequestID: sub.Msg.Request.ID}))
	assertCode(t, err, connect.CodePermissionDenied, "NotAdmin")

	resp, err := c.groups.RejectJoinRequest(ctx, as(ama, &api.RejectJoinRequestRequest{GroupID: g.ID, RequestID: sub.Msg.Request.ID}))
	if err != nil {
		t.Fatalf("RejectJoinRequest failed: %v", err)
	}
	if resp.Msg.Group.IsMember(kofi.ID) {
		t.Error("rejected user should not be a member")
	}
	if resp.Msg.Group.JoinRequests[0].Status != models.JoinRejected {
		t.Errorf("expected rejected request, got %s", resp.Msg.Group.JoinRequests[0].Status)
	}

	// Resolving twice leaves the group as it is.
	again, err := c.groups.ApproveJoinRequest(ctx, as(ama, &api.ApproveJoinRequestRequest{GroupID: g.ID, RequestID: sub.Msg.Request.ID}))
	if err != nil {
		t.Fatalf("ApproveJoinRequest failed: %v", err)
	}
	if again.Msg.Group.IsMember(kofi.ID) {
		t.Error("approving a rejected request should be a no-op")
	}
}

func TestAddMember_ContactMatchedByPhone(t *testing.T) {
	c := setupTestServer(t, rosca.MarkPermissive)
	ama := c.register(t, "Ama", "ama@example.com", "")
	g := c.createGroup(t, ama, models.PayoutAutomatic, 4)
	ctx := context.Background()

	resp, err := c.groups.AddMember(ctx, as(ama, &api.AddMemberRequest{GroupID: g.ID, Name: "Efua", Phone: "+233 20 555 0101"}))
	if err != nil {
		t.Fatalf("AddMember failed: %v", err)
	}
	if !resp.Msg.Added || len(resp.Msg.Group.MembersList) != 2 {
		t.Fatalf("expected Efua to be added, got %+v", resp.Msg)
	}

	dup, err := c.groups.AddMember(ctx, as(ama, &api.AddMemberRequest{GroupID: g.ID, Name: "Efua M.", Phone: "+233205550101"}))
	if err != nil {
		t.Fatalf("AddMember failed: %v", err)
	}
	if dup.Msg.Added {
		t.Error("expected duplicate phone to be skipped")
	}

	// Efua signs up later with the same number and is recognised as the member.
	efua := c.register(t, "Efua", "efua@example.com", "+233205550101")
	got, err := c.groups.GetGroup(ctx, as(efua, &api.GetGroupRequest{GroupID: g.ID}))
	if err != nil {
		t.Fatalf("GetGroup failed: %v", err)
	}
	if got.Msg.Group.Name != "Market Women" {
		t.Errorf("expected group to be visible to Efua, got %q", got.Msg.Group.Name)
	}
	_, err = c.groups.SubmitJoinRequest(ctx, as(efua, &api.SubmitJoinRequestRequest{GroupID: g.ID}))
	assertCode(t, err, connect.CodeAlreadyExists, "AlreadyMember")
}
