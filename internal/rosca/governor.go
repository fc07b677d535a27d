package rosca

import (
	"sort"
	"strings"
	"time"

	apperrors "github.com/mmynk/osusu/internal/errors"
	"github.com/mmynk/osusu/internal/models"
)

const (
	// MaxCandidates bounds the candidate list of a voting round.
	MaxCandidates = 5
	// MaxBallotChoices bounds how many candidates one voter may pick.
	MaxBallotChoices = 2
	// MaxWinners is how many recipients one round schedules.
	MaxWinners = 2
)

// MarkMode controls whether MarkReceived enforces the rotation order.
type MarkMode string

const (
	// MarkPermissive lets the admin mark any member, which allows manual corrections.
	MarkPermissive MarkMode = "permissive"
	// MarkStrict only accepts the current recipient.
	MarkStrict MarkMode = "strict"
)

// RoundState is the position of a voting group in the payout state machine.
type RoundState string

const (
	StateNoActiveRound  RoundState = "NoActiveRound"
	StateRoundOpen      RoundState = "RoundOpen"
	StateRoundFinalized RoundState = "RoundFinalized"
	StateAllScheduled   RoundState = "AllScheduled"
	// StateNotVoting is reported for groups with an automatic payout order.
	StateNotVoting RoundState = "NotVoting"
)

// Unscheduled returns the members not yet in the payout schedule, in membership order.
func Unscheduled(g *models.Group) []models.Member {
	remaining := make([]models.Member, 0, len(g.MembersList))
	for _, m := range g.MembersList {
		if !contains(g.PayoutSchedule, m.ID) {
			remaining = append(remaining, m)
		}
	}
	return remaining
}

// State reports the state machine position of g.
func State(g *models.Group) RoundState {
	if g.PayoutOrder != models.PayoutVoting {
		return StateNotVoting
	}
	if len(Unscheduled(g)) == 0 {
		return StateAllScheduled
	}
	r, ok := round(g, g.Voting.CurrentRound)
	switch {
	case !ok:
		return StateNoActiveRound
	case r.Finalized:
		return StateRoundFinalized
	default:
		return StateRoundOpen
	}
}

func round(g *models.Group, id int) (*models.VotingRound, bool) {
	if id < 1 || id > len(g.Voting.Rounds) {
		return nil, false
	}
	return &g.Voting.Rounds[id-1], true
}

// EnsureOpenRound opens a new voting round when members remain unscheduled and the
// current round is missing or finalized. An open round nobody has voted in yet is re-ranked,
// so members admitted after it opened can still stand. It is a no-op for automatic groups.
func EnsureOpenRound(g models.Group, env Env) models.Group {
	g = Clone(g)
	ensureOpenRound(&g, env)
	return g
}

func ensureOpenRound(g *models.Group, env Env) {
	if g.PayoutOrder != models.PayoutVoting {
		return
	}
	remaining := Unscheduled(g)
	if len(remaining) == 0 {
		return
	}
	if r, ok := round(g, g.Voting.CurrentRound); ok && !r.Finalized {
		if len(r.Votes) == 0 {
			r.Candidates = topCandidates(g, remaining, env)
		}
		return
	}

	id := len(g.Voting.Rounds) + 1
	g.Voting.Rounds = append(g.Voting.Rounds, models.VotingRound{
		ID:         id,
		Candidates: topCandidates(g, remaining, env),
		Votes:      map[string][]string{},
		Finalized:  false,
		Winners:    []string{},
	})
	g.Voting.CurrentRound = id
}

func topCandidates(g *models.Group, remaining []models.Member, env Env) []string {
	ranked := rankByPriority(g, remaining, env)
	candidates := make([]string, min(MaxCandidates, len(ranked)))
	for i := range candidates {
		candidates[i] = ranked[i].ID
	}
	return candidates
}

// rankByPriority orders members by score desc, then membership order.
func rankByPriority(g *models.Group, members []models.Member, env Env) []models.Member {
	type scored struct {
		member models.Member
		score  float64
		index  int
	}
	list := make([]scored, len(members))
	for i, m := range members {
		_, idx, _ := g.Member(m.ID)
		list[i] = scored{member: m, score: env.score(g, m.ID), index: idx}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].score != list[j].score {
			return list[i].score > list[j].score
		}
		return list[i].index < list[j].index
	})
	out := make([]models.Member, len(list))
	for i, s := range list {
		out[i] = s.member
	}
	return out
}

// CastVote records the voter's ballot for a round. Choices outside the candidate list are
// dropped, duplicates collapse and at most two are kept; a new ballot replaces the old one.
// Unknown or finalized rounds, non-members and automatic groups leave the group unchanged.
func CastVote(g models.Group, roundID int, voterID string, candidateIDs []string) models.Group {
	if g.PayoutOrder != models.PayoutVoting || !g.IsMember(voterID) {
		return g
	}
	if r, ok := round(&g, roundID); !ok || r.Finalized {
		return g
	}

	g = Clone(g)
	r, _ := round(&g, roundID)
	ballot := dedupe(candidateIDs, func(id string) bool { return contains(r.Candidates, id) })
	if len(ballot) > MaxBallotChoices {
		ballot = ballot[:MaxBallotChoices]
	}
	if r.Votes == nil {
		r.Votes = map[string][]string{}
	}
	r.Votes[voterID] = ballot
	return g
}

// Tally counts the votes each candidate received in a round.
func Tally(r *models.VotingRound) map[string]int {
	counts := make(map[string]int, len(r.Candidates))
	for _, c := range r.Candidates {
		counts[c] = 0
	}
	for _, ballot := range r.Votes {
		for _, choice := range ballot {
			if _, ok := counts[choice]; ok {
				counts[choice]++
			}
		}
	}
	return counts
}

// RankCandidates orders a round's candidates by (votes desc, score desc, membership index asc).
func RankCandidates(g *models.Group, r *models.VotingRound, env Env) []string {
	counts := Tally(r)
	type entry struct {
		id    string
		votes int
		score float64
		index int
	}
	entries := make([]entry, len(r.Candidates))
	for i, id := range r.Candidates {
		_, idx, ok := g.Member(id)
		if !ok {
			idx = len(g.MembersList) + i
		}
		entries[i] = entry{id: id, votes: counts[id], score: env.score(g, id), index: idx}
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.votes != b.votes {
			return a.votes > b.votes
		}
		if a.score != b.score {
			return a.score > b.score
		}
		return a.index < b.index
	})
	ranked := make([]string, len(entries))
	for i, e := range entries {
		ranked[i] = e.id
	}
	return ranked
}

// FinalizeRound closes a round, appends its winners to the payout schedule and opens the
// next round if members remain. Finalizing twice applies the winners once.
func FinalizeRound(g models.Group, roundID int, env Env) models.Group {
	if g.PayoutOrder != models.PayoutVoting {
		return g
	}
	if r, ok := round(&g, roundID); !ok || r.Finalized {
		return g
	}

	g = Clone(g)
	r, _ := round(&g, roundID)
	ranked := RankCandidates(&g, r, env)
	// Candidates that left the group cannot be scheduled.
	ranked = dedupe(ranked, g.IsMember)
	winners := ranked[:min(MaxWinners, len(ranked))]

	for _, id := range winners {
		if !contains(g.PayoutSchedule, id) {
			g.PayoutSchedule = append(g.PayoutSchedule, id)
		}
	}
	r.Winners = append([]string{}, winners...)
	r.Finalized = true

	if len(winners) > 0 {
		names := make([]string, len(winners))
		for i, id := range winners {
			names[i] = memberName(&g, id)
		}
		notify(&g, env.Now, "Round %d closed: %s will receive the next payouts", r.ID, strings.Join(names, " and "))
	}

	ensureOpenRound(&g, env)
	return g
}

// CurrentRecipient is the first scheduled member who has not received a payout yet.
// With an empty schedule it falls back to the first member. It reports false when
// everyone scheduled has been paid or the group has no members.
func CurrentRecipient(g *models.Group) (string, bool) {
	if len(g.PayoutSchedule) == 0 {
		if len(g.MembersList) == 0 {
			return "", false
		}
		return g.MembersList[0].ID, true
	}
	for _, id := range g.PayoutSchedule {
		if !contains(g.PayoutReceived, id) {
			return id, true
		}
	}
	return "", false
}

// MarkReceived records that memberID got a payout. In permissive mode any scheduled member
// may be marked, in any order; strict mode only accepts the current recipient and returns
// ErrOutOfTurn otherwise. Members outside the schedule, unknown IDs and repeated marks leave
// the group unchanged. Before anyone is scheduled only the fallback recipient can be marked.
func MarkReceived(g models.Group, memberID string, mode MarkMode, now time.Time) (models.Group, error) {
	if !g.IsMember(memberID) || contains(g.PayoutReceived, memberID) || !payable(&g, memberID) {
		return g, nil
	}
	if mode == MarkStrict {
		if current, ok := CurrentRecipient(&g); !ok || current != memberID {
			return g, apperrors.ErrOutOfTurn
		}
	}

	g = Clone(g)
	g.PayoutReceived = append(g.PayoutReceived, memberID)
	notify(&g, now, "%s received the payout", memberName(&g, memberID))
	return g, nil
}

func payable(g *models.Group, memberID string) bool {
	if len(g.PayoutSchedule) > 0 {
		return contains(g.PayoutSchedule, memberID)
	}
	current, ok := CurrentRecipient(g)
	return ok && current == memberID
}
