package api

import (
	"time"

	"github.com/mmynk/osusu/internal/models"
)

type CreateGroupRequest struct {
	Name               string    `json:"name" validate:"required,max=120"`
	Logo               string    `json:"logo,omitempty"`
	ContributionAmount float64   `json:"contributionAmount" validate:"gt=0"`
	Frequency          string    `json:"frequency" validate:"required,oneof=Daily Weekly Monthly"`
	StartDate          time.Time `json:"startDate" validate:"required"`
	PayoutOrder        string    `json:"payoutOrder" validate:"required,oneof=Automatic Voting"`
	MaxMembers         int       `json:"maxMembers" validate:"min=2"`
}

type CreateGroupResponse struct {
	Group   models.Group `json:"group"`
	Version int64        `json:"version"`
}

type GetGroupRequest struct {
	GroupID string `json:"groupId" validate:"required"`
}

type GetGroupResponse struct {
	Group   models.Group `json:"group"`
	Version int64        `json:"version"`
}

// ListGroupsRequest selects the caller's groups, or with All every group so open ones can be
// discovered and joined.
type ListGroupsRequest struct {
	All bool `json:"all,omitempty"`
}

// ListGroupsResponse carries the caller's groups in full. With All set, the groups the caller
// does not belong to are listed as summaries in Discoverable.
type ListGroupsResponse struct {
	Groups       []models.Group `json:"groups"`
	Discoverable []GroupSummary `json:"discoverable,omitempty"`
}

// GroupSummary is what a non-member may see of a group: its terms and how full it is.
type GroupSummary struct {
	ID                 string             `json:"id"`
	Name               string             `json:"name"`
	Logo               string             `json:"logo,omitempty"`
	ContributionAmount float64            `json:"contributionAmount"`
	Frequency          models.Frequency   `json:"frequency"`
	StartDate          time.Time          `json:"startDate"`
	PayoutOrder        models.PayoutOrder `json:"payoutOrder"`
	MaxMembers         int                `json:"maxMembers"`
	MemberCount        int                `json:"memberCount"`
	Status             models.GroupStatus `json:"status"`
}

// SummarizeGroup returns the non-member view of g.
func SummarizeGroup(g *models.Group) GroupSummary {
	return GroupSummary{
		ID:                 g.ID,
		Name:               g.Name,
		Logo:               g.Logo,
		ContributionAmount: g.ContributionAmount,
		Frequency:          g.Frequency,
		StartDate:          g.StartDate,
		PayoutOrder:        g.PayoutOrder,
		MaxMembers:         g.MaxMembers,
		MemberCount:        len(g.MembersList),
		Status:             g.Status,
	}
}

type SubmitJoinRequestRequest struct {
	GroupID string `json:"groupId" validate:"required"`
}

type SubmitJoinRequestResponse struct {
	Request models.JoinRequest `json:"request"`
}

type ApproveJoinRequestRequest struct {
	GroupID   string `json:"groupId" validate:"required"`
	RequestID string `json:"requestId" validate:"required"`
}

type ApproveJoinRequestResponse struct {
	Group models.Group `json:"group"`
}

type RejectJoinRequestRequest struct {
	GroupID   string `json:"groupId" validate:"required"`
	RequestID string `json:"requestId" validate:"required"`
}

type RejectJoinRequestResponse struct {
	Group models.Group `json:"group"`
}

// AddMemberRequest adds a person directly, e.g. picked from the admin's contacts.
type AddMemberRequest struct {
	GroupID  string `json:"groupId" validate:"required"`
	MemberID string `json:"memberId,omitempty"`
	Name     string `json:"name" validate:"required_without=Phone"`
	Phone    string `json:"phone,omitempty"`
}

type AddMemberResponse struct {
	Group models.Group `json:"group"`
	// Added is false when a member with the same phone or ID already exists.
	Added bool `json:"added"`
}
