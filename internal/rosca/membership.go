package rosca

import (
	"time"

	"github.com/google/uuid"

	apperrors "github.com/mmynk/osusu/internal/errors"
	"github.com/mmynk/osusu/internal/models"
)

// MemberInfo describes a person added directly by the admin, e.g. from a contact list.
type MemberInfo struct {
	// ID is optional; a new one is generated when empty.
	ID    string
	Name  string
	Phone string
}

// FindMember returns the member matching the user by ID or, when both sides have one, by phone.
func FindMember(g *models.Group, user models.UserRef) (models.Member, bool) {
	phone := normalizePhone(user.Phone)
	for _, m := range g.MembersList {
		if m.ID == user.ID {
			return m, true
		}
		if phone != "" && normalizePhone(m.Phone) == phone {
			return m, true
		}
	}
	return models.Member{}, false
}

func findRequest(g *models.Group, requestID string) int {
	for i, r := range g.JoinRequests {
		if r.ID == requestID {
			return i
		}
	}
	return -1
}

// HasPendingRequest reports whether the user already waits for admission.
func HasPendingRequest(g *models.Group, userID string) bool {
	for _, r := range g.JoinRequests {
		if r.User.ID == userID && r.Status == models.JoinPending {
			return true
		}
	}
	return false
}

// SubmitJoinRequest appends a pending join request for user.
// It fails with ErrGroupFull, ErrAlreadyMember or ErrDuplicatePending, in that order.
func SubmitJoinRequest(g models.Group, user models.UserRef, now time.Time) (models.Group, error) {
	if user.ID == "" {
		return g, apperrors.NewValidationError("user", "user identity is required")
	}
	if len(g.MembersList) >= g.MaxMembers {
		return g, apperrors.ErrGroupFull
	}
	if _, ok := FindMember(&g, user); ok {
		return g, apperrors.ErrAlreadyMember
	}
	if HasPendingRequest(&g, user.ID) {
		return g, apperrors.ErrDuplicatePending
	}

	g = Clone(g)
	g.JoinRequests = append(g.JoinRequests, models.JoinRequest{
		ID:          uuid.New().String(),
		User:        user,
		RequestedAt: now,
		Status:      models.JoinPending,
	})
	notify(&g, now, "%s asked to join %s", user.Name, g.Name)
	return g, nil
}

// Approve admits the requester of a pending request as a regular member.
// Capacity is not re-checked: admission is the admin's call. Missing or already
// resolved requests leave the group unchanged.
func Approve(g models.Group, requestID string, env Env) models.Group {
	i := findRequest(&g, requestID)
	if i < 0 || g.JoinRequests[i].Status != models.JoinPending {
		return g
	}

	g = Clone(g)
	req := &g.JoinRequests[i]
	if _, ok := FindMember(&g, req.User); !ok {
		g.MembersList = append(g.MembersList, models.Member{
			ID:    req.User.ID,
			Name:  req.User.Name,
			Phone: req.User.Phone,
			Role:  models.RoleMember,
		})
	}
	resolved := env.Now
	req.Status = models.JoinApproved
	req.ResolvedAt = &resolved
	notify(&g, env.Now, "%s joined %s", req.User.Name, g.Name)

	normalize(&g, env)
	return g
}

// Reject declines a pending request without touching membership.
func Reject(g models.Group, requestID string, now time.Time) models.Group {
	i := findRequest(&g, requestID)
	if i < 0 || g.JoinRequests[i].Status != models.JoinPending {
		return g
	}

	g = Clone(g)
	req := &g.JoinRequests[i]
	resolved := now
	req.Status = models.JoinRejected
	req.ResolvedAt = &resolved
	notify(&g, now, "The request from %s to join %s was declined", req.User.Name, g.Name)
	return g
}

// AddMemberDirect appends a member unless one already shares the phone number.
// The boolean reports whether a member was added.
func AddMemberDirect(g models.Group, info MemberInfo, env Env) (models.Group, bool) {
	if info.Name == "" && info.Phone == "" {
		return g, false
	}
	phone := normalizePhone(info.Phone)
	for _, m := range g.MembersList {
		if phone != "" && normalizePhone(m.Phone) == phone {
			return g, false
		}
		if info.ID != "" && m.ID == info.ID {
			return g, false
		}
	}

	g = Clone(g)
	id := info.ID
	if id == "" {
		id = uuid.New().String()
	}
	g.MembersList = append(g.MembersList, models.Member{
		ID:    id,
		Name:  info.Name,
		Phone: info.Phone,
		Role:  models.RoleMember,
	})
	notify(&g, env.Now, "%s was added to %s", info.Name, g.Name)

	normalize(&g, env)
	return g, true
}
