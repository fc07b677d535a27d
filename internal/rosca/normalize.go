package rosca

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/mmynk/osusu/internal/errors"
	"github.com/mmynk/osusu/internal/models"
)

// LegacyGroup is the lenient shape of a stored group. Older documents carry a head count in
// "members" instead of a members list, store numbers as strings, dates as calendar dates
// and createdAt as a date or Unix milliseconds, and may omit any collection.
type LegacyGroup struct {
	models.Group
	ContributionAmount looseNumber `json:"contributionAmount"`
	MaxMembers         looseNumber `json:"maxMembers"`
	StartDate          looseTime   `json:"startDate"`
	CreatedAt          looseTime   `json:"createdAt"`
	Members            headCount   `json:"members,omitempty"`
}

// ParseLegacy decodes a stored document of unknown completeness into a canonical group.
// Values of an unrecognizable shape are rejected.
func ParseLegacy(data []byte, env Env) (models.Group, error) {
	var legacy LegacyGroup
	if err := json.Unmarshal(data, &legacy); err != nil {
		return models.Group{}, fmt.Errorf("failed to decode group document: %w", err)
	}
	return Upgrade(legacy, env), nil
}

// Upgrade maps the lenient fields onto the canonical group, synthesizes placeholder members
// from a legacy head count and normalizes the result.
func Upgrade(legacy LegacyGroup, env Env) models.Group {
	g := Clone(legacy.Group)
	if legacy.ContributionAmount.set {
		g.ContributionAmount = legacy.ContributionAmount.value
	}
	if legacy.MaxMembers.set {
		g.MaxMembers = int(legacy.MaxMembers.value)
	}
	if legacy.StartDate.set {
		y, m, d := legacy.StartDate.value.Date()
		g.StartDate = time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}
	if legacy.CreatedAt.set {
		g.CreatedAt = legacy.CreatedAt.value.Unix()
	}

	if len(g.MembersList) == 0 && legacy.Members > 0 {
		for i := 0; i < int(legacy.Members); i++ {
			g.MembersList = append(g.MembersList, models.Member{
				ID:   fmt.Sprintf("%s-member-%d", g.ID, i+1),
				Name: fmt.Sprintf("Member %d", i+1),
				Role: models.RoleMember,
			})
		}
	}
	return Normalize(g, env)
}

// Normalize fills in every required substructure and restores the group invariants:
// exactly one admin, a duplicate-free schedule of current members, winners only on
// finalized rounds, at most one active collector and a derived status. Voting groups
// also get an open round when members remain unscheduled. Normalizing twice is a no-op.
func Normalize(g models.Group, env Env) models.Group {
	g = Clone(g)
	normalize(&g, env)
	return g
}

func normalize(g *models.Group, env Env) {
	if g.Frequency == "" {
		g.Frequency = models.FrequencyMonthly
	}
	if g.PayoutOrder == "" {
		g.PayoutOrder = models.PayoutAutomatic
	}
	if g.JoinRequests == nil {
		g.JoinRequests = []models.JoinRequest{}
	}
	if g.PaymentsLedger == nil {
		g.PaymentsLedger = []models.PaymentRecord{}
	}
	if g.CollectorAssignments == nil {
		g.CollectorAssignments = []models.CollectorAssignment{}
	}
	if g.Notifications == nil {
		g.Notifications = []models.Notification{}
	}

	normalizeMembers(g)
	if g.MaxMembers < 2 {
		g.MaxMembers = max(2, len(g.MembersList))
	}

	g.PayoutSchedule = dedupe(g.PayoutSchedule, g.IsMember)
	g.PayoutReceived = dedupe(g.PayoutReceived, nil)

	normalizeVoting(g)
	normalizeAssignments(g)

	g.Status = models.StatusOpen
	if len(g.MembersList) >= g.MaxMembers {
		g.Status = models.StatusFull
	}

	ensureOpenRound(g, env)
}

func normalizeMembers(g *models.Group) {
	seenID := make(map[string]bool, len(g.MembersList))
	seenPhone := make(map[string]bool, len(g.MembersList))
	members := make([]models.Member, 0, len(g.MembersList))
	for _, m := range g.MembersList {
		if m.ID == "" {
			m.ID = uuid.New().String()
		}
		phone := normalizePhone(m.Phone)
		if seenID[m.ID] || (phone != "" && seenPhone[phone]) {
			continue
		}
		seenID[m.ID] = true
		if phone != "" {
			seenPhone[phone] = true
		}
		members = append(members, m)
	}

	admin := -1
	for i := range members {
		if members[i].Role == models.RoleAdmin && admin < 0 {
			admin = i
			continue
		}
		members[i].Role = models.RoleMember
	}
	if admin < 0 && len(members) > 0 {
		members[0].Role = models.RoleAdmin
	}
	g.MembersList = members
}

func normalizeVoting(g *models.Group) {
	if g.Voting.Rounds == nil {
		g.Voting.Rounds = []models.VotingRound{}
	}
	for i := range g.Voting.Rounds {
		r := &g.Voting.Rounds[i]
		r.ID = i + 1
		if r.Candidates == nil {
			r.Candidates = []string{}
		}
		if r.Votes == nil {
			r.Votes = map[string][]string{}
		}
		if !r.Finalized || r.Winners == nil {
			r.Winners = []string{}
		}
	}
	// Rounds are played in sequence, so the current round is always the last one.
	g.Voting.CurrentRound = max(1, len(g.Voting.Rounds))
}

func normalizeAssignments(g *models.Group) {
	active := -1
	for i := range g.CollectorAssignments {
		if g.CollectorAssignments[i].AssignedMemberIDs == nil {
			g.CollectorAssignments[i].AssignedMemberIDs = []string{}
		}
		if g.CollectorAssignments[i].Active {
			active = i
		}
	}
	for i := range g.CollectorAssignments {
		if i != active {
			g.CollectorAssignments[i].Active = false
		}
	}
}

func normalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if (r >= '0' && r <= '9') || (r == '+' && b.Len() == 0) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// GroupTerms are the founding terms of a new group.
type GroupTerms struct {
	Name               string
	Logo               string
	ContributionAmount float64
	Frequency          models.Frequency
	StartDate          time.Time
	PayoutOrder        models.PayoutOrder
	MaxMembers         int
}

// NewGroup creates a group with the creator as its only member and admin. Automatic groups
// fix their payout schedule to the initial membership order.
func NewGroup(terms GroupTerms, creator models.UserRef, env Env) (models.Group, error) {
	if strings.TrimSpace(terms.Name) == "" {
		return models.Group{}, apperrors.NewValidationError("name", "group name is required")
	}
	if !(terms.ContributionAmount > 0) {
		return models.Group{}, apperrors.NewValidationError("contributionAmount", "must be positive")
	}
	if terms.MaxMembers < 2 {
		return models.Group{}, apperrors.NewValidationError("maxMembers", "must be at least 2")
	}
	switch terms.Frequency {
	case models.FrequencyDaily, models.FrequencyWeekly, models.FrequencyMonthly:
	default:
		return models.Group{}, apperrors.NewValidationError("frequency", "must be Daily, Weekly or Monthly")
	}
	switch terms.PayoutOrder {
	case models.PayoutAutomatic, models.PayoutVoting:
	default:
		return models.Group{}, apperrors.NewValidationError("payoutOrder", "must be Automatic or Voting")
	}
	if creator.ID == "" {
		return models.Group{}, apperrors.NewValidationError("creator", "creator identity is required")
	}

	y, m, d := terms.StartDate.Date()
	g := models.Group{
		ID:                 uuid.New().String(),
		Name:               strings.TrimSpace(terms.Name),
		Logo:               terms.Logo,
		ContributionAmount: terms.ContributionAmount,
		Frequency:          terms.Frequency,
		StartDate:          time.Date(y, m, d, 0, 0, 0, 0, time.UTC),
		PayoutOrder:        terms.PayoutOrder,
		MaxMembers:         terms.MaxMembers,
		MembersList: []models.Member{
			{ID: creator.ID, Name: creator.Name, Phone: creator.Phone, Role: models.RoleAdmin},
		},
		Voting:    models.Voting{CurrentRound: 1},
		CreatedBy: creator.ID,
		CreatedAt: env.Now.Unix(),
	}
	if g.PayoutOrder == models.PayoutAutomatic {
		for _, member := range g.MembersList {
			g.PayoutSchedule = append(g.PayoutSchedule, member.ID)
		}
	}
	notify(&g, env.Now, "%s created the group %s", memberName(&g, creator.ID), g.Name)
	return Normalize(g, env), nil
}
