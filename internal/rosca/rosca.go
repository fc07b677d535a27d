// Package rosca implements the governance engine of a rotating savings group: normalization,
// admission, the payout-voting state machine, collector delegation, the contribution ledger and
// reminder evaluation.
//
// Every exported operation takes a models.Group by value and returns the updated value. Inputs are
// never mutated, so callers can discard a result on error and keep the group they loaded.
// Operations that reference a missing round or request return the group unchanged.
package rosca

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/osusu/internal/calculator"
	"github.com/mmynk/osusu/internal/models"
)

// Env carries the inputs that are not part of the group document.
type Env struct {
	// Now is the evaluation time for scores, timestamps and reminders.
	Now time.Time

	// Trust is the external per-member trust signal. Missing members score 0.
	Trust map[string]float64
}

func (e Env) score(g *models.Group, memberID string) float64 {
	return calculator.PriorityScore(g, memberID, e.Trust[memberID], e.Now)
}

// Clone returns a deep copy of g.
func Clone(g models.Group) models.Group {
	c := g
	c.MembersList = cloneSlice(g.MembersList)
	c.JoinRequests = cloneSlice(g.JoinRequests)
	for i, r := range c.JoinRequests {
		if r.ResolvedAt != nil {
			at := *r.ResolvedAt
			c.JoinRequests[i].ResolvedAt = &at
		}
	}
	c.PaymentsLedger = cloneSlice(g.PaymentsLedger)
	c.PayoutSchedule = cloneSlice(g.PayoutSchedule)
	c.PayoutReceived = cloneSlice(g.PayoutReceived)
	c.Voting.Rounds = cloneSlice(g.Voting.Rounds)
	for i, r := range c.Voting.Rounds {
		c.Voting.Rounds[i].Candidates = cloneSlice(r.Candidates)
		c.Voting.Rounds[i].Winners = cloneSlice(r.Winners)
		if r.Votes != nil {
			votes := make(map[string][]string, len(r.Votes))
			for voter, ballot := range r.Votes {
				votes[voter] = cloneSlice(ballot)
			}
			c.Voting.Rounds[i].Votes = votes
		}
	}
	c.CollectorAssignments = cloneSlice(g.CollectorAssignments)
	for i, a := range c.CollectorAssignments {
		c.CollectorAssignments[i].AssignedMemberIDs = cloneSlice(a.AssignedMemberIDs)
	}
	c.Notifications = cloneSlice(g.Notifications)
	return c
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	out := make([]T, len(s))
	copy(out, s)
	return out
}

func notify(g *models.Group, now time.Time, format string, args ...any) {
	g.Notifications = append(g.Notifications, models.Notification{
		ID:        uuid.New().String(),
		Message:   fmt.Sprintf(format, args...),
		CreatedAt: now,
	})
}

func memberName(g *models.Group, id string) string {
	if m, _, ok := g.Member(id); ok && m.Name != "" {
		return m.Name
	}
	return id
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// dedupe keeps the first occurrence of every id, optionally filtered by keep.
func dedupe(ids []string, keep func(string) bool) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		if keep != nil && !keep(id) {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
