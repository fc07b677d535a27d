package rosca

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/osusu/internal/models"
)

func TestParseLegacy_SynthesizesMembers(t *testing.T) {
	doc := []byte(`{"id":"old","name":"Legacy circle","members":3,"maxMembers":5,"contributionAmount":50}`)

	g, err := ParseLegacy(doc, testEnv())
	require.NoError(t, err)

	require.Len(t, g.MembersList, 3)
	assert.Equal(t, models.RoleAdmin, g.MembersList[0].Role)
	assert.Equal(t, models.RoleMember, g.MembersList[1].Role)
	assert.Equal(t, "old-member-1", g.MembersList[0].ID)
	assert.Equal(t, models.StatusOpen, g.Status)
	assert.Equal(t, models.FrequencyMonthly, g.Frequency)
	assert.Equal(t, models.PayoutAutomatic, g.PayoutOrder)
	assert.NotNil(t, g.JoinRequests)
	assert.NotNil(t, g.PaymentsLedger)
	assert.NotNil(t, g.PayoutSchedule)
	assert.NotNil(t, g.PayoutReceived)
	assert.NotNil(t, g.Voting.Rounds)
	assert.NotNil(t, g.CollectorAssignments)
	assert.NotNil(t, g.Notifications)
	assert.Equal(t, 1, g.Voting.CurrentRound)
}

func TestParseLegacy_LooseFields(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		check func(t *testing.T, g models.Group)
	}{
		{
			name: "calendar start date",
			doc:  `{"id":"old","startDate":"2026-01-15","members":3,"contributionAmount":50}`,
			check: func(t *testing.T, g models.Group) {
				assert.Equal(t, time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), g.StartDate)
				assert.Len(t, g.MembersList, 3)
			},
		},
		{
			name: "start date with time of day keeps only the date",
			doc:  `{"id":"old","startDate":"2026-01-15T18:30:00Z","members":2}`,
			check: func(t *testing.T, g models.Group) {
				assert.Equal(t, time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC), g.StartDate)
			},
		},
		{
			name: "numbers as strings",
			doc:  `{"id":"old","contributionAmount":"50","maxMembers":" 6 ","members":"2"}`,
			check: func(t *testing.T, g models.Group) {
				assert.Equal(t, 50.0, g.ContributionAmount)
				assert.Equal(t, 6, g.MaxMembers)
				assert.Len(t, g.MembersList, 2)
			},
		},
		{
			name: "members as a list of names",
			doc:  `{"id":"old","members":["Ama","Kofi","Esi"],"maxMembers":4}`,
			check: func(t *testing.T, g models.Group) {
				assert.Len(t, g.MembersList, 3)
			},
		},
		{
			name: "createdAt as ISO string",
			doc:  `{"id":"old","members":2,"createdAt":"2026-01-01T10:00:00Z"}`,
			check: func(t *testing.T, g models.Group) {
				assert.Equal(t, time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC).Unix(), g.CreatedAt)
			},
		},
		{
			name: "createdAt in milliseconds",
			doc:  `{"id":"old","members":2,"createdAt":1767261600000}`,
			check: func(t *testing.T, g models.Group) {
				assert.Equal(t, int64(1767261600), g.CreatedAt)
			},
		},
		{
			name: "createdAt as numeric string",
			doc:  `{"id":"old","members":2,"createdAt":"1767261600"}`,
			check: func(t *testing.T, g models.Group) {
				assert.Equal(t, int64(1767261600), g.CreatedAt)
			},
		},
		{
			name: "nulls and blanks fall back to defaults",
			doc:  `{"id":"old","members":2,"contributionAmount":null,"startDate":"","maxMembers":""}`,
			check: func(t *testing.T, g models.Group) {
				assert.Zero(t, g.ContributionAmount)
				assert.True(t, g.StartDate.IsZero())
				assert.Equal(t, 2, g.MaxMembers)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := ParseLegacy([]byte(tt.doc), testEnv())
			require.NoError(t, err)
			tt.check(t, g)
		})
	}
}

func TestParseLegacy_CanonicalRoundTrip(t *testing.T) {
	want := Normalize(circle(models.PayoutVoting), testEnv())
	want.CreatedAt = testNow.Unix()

	body, err := json.Marshal(want)
	require.NoError(t, err)
	got, err := ParseLegacy(body, testEnv())
	require.NoError(t, err)

	assert.Equal(t, want.StartDate, got.StartDate)
	assert.Equal(t, want.CreatedAt, got.CreatedAt)
	assert.Equal(t, want.ContributionAmount, got.ContributionAmount)
	assert.Equal(t, want.MaxMembers, got.MaxMembers)
	assert.Equal(t, want.Voting.Rounds[0].Candidates, got.Voting.Rounds[0].Candidates)
}

func TestParseLegacy_RejectsGarbage(t *testing.T) {
	docs := []string{
		`{"id": 12`,
		`{"id":"old","contributionAmount":"fifty"}`,
		`{"id":"old","startDate":"next tuesday"}`,
		`{"id":"old","createdAt":true}`,
		`{"id":"old","maxMembers":{"n":4}}`,
	}
	for _, doc := range docs {
		_, err := ParseLegacy([]byte(doc), testEnv())
		assert.Error(t, err, doc)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	for _, order := range []models.PayoutOrder{models.PayoutAutomatic, models.PayoutVoting} {
		t.Run(string(order), func(t *testing.T) {
			g := circle(order)
			g.MembersList = append(g.MembersList, models.Member{Name: "No ID"})
			g.MaxMembers = 6

			once := Normalize(g, testEnv())
			twice := Normalize(once, testEnv())
			assert.Equal(t, once, twice)
		})
	}
}

func TestNormalize_DoesNotMutateInput(t *testing.T) {
	g := circle(models.PayoutVoting)
	g.PayoutSchedule = []string{"c", "c"}

	_ = Normalize(g, testEnv())

	assert.Equal(t, []string{"c", "c"}, g.PayoutSchedule)
	assert.Empty(t, g.Voting.Rounds)
}

func TestNormalize_SingleAdmin(t *testing.T) {
	t.Run("promotes first member when no admin", func(t *testing.T) {
		g := circle(models.PayoutAutomatic)
		for i := range g.MembersList {
			g.MembersList[i].Role = models.RoleMember
		}
		n := Normalize(g, testEnv())
		assert.Equal(t, models.RoleAdmin, n.MembersList[0].Role)
		assert.Equal(t, 1, countAdmins(n))
	})

	t.Run("keeps the earliest of several admins", func(t *testing.T) {
		g := circle(models.PayoutAutomatic)
		g.MembersList[2].Role = models.RoleAdmin
		n := Normalize(g, testEnv())
		assert.True(t, n.IsAdmin("a"))
		assert.False(t, n.IsAdmin("c"))
		assert.Equal(t, 1, countAdmins(n))
	})
}

func countAdmins(g models.Group) int {
	n := 0
	for _, m := range g.MembersList {
		if m.Role == models.RoleAdmin {
			n++
		}
	}
	return n
}

func TestNormalize_RepairsInvariants(t *testing.T) {
	g := circle(models.PayoutAutomatic)
	g.MembersList = append(g.MembersList,
		models.Member{ID: "b", Name: "Duplicate id"},
		models.Member{ID: "z", Name: "Duplicate phone", Phone: "+233 555 000 002"},
	)
	g.PayoutSchedule = []string{"c", "ghost", "a", "c"}
	g.Voting.Rounds = []models.VotingRound{{ID: 7, Candidates: []string{"a"}, Winners: []string{"a"}}}
	g.CollectorAssignments = []models.CollectorAssignment{
		{ID: "x1", CollectorID: "a", Active: true},
		{ID: "x2", CollectorID: "b", Active: true},
	}

	n := Normalize(g, testEnv())

	assert.Len(t, n.MembersList, 4)
	assert.Equal(t, []string{"c", "a"}, n.PayoutSchedule)
	assert.Equal(t, 1, n.Voting.Rounds[0].ID)
	assert.Empty(t, n.Voting.Rounds[0].Winners)
	assert.False(t, n.CollectorAssignments[0].Active)
	assert.True(t, n.CollectorAssignments[1].Active)
	assert.Equal(t, models.StatusFull, n.Status)
}

func TestNormalize_VotingOpensFirstRound(t *testing.T) {
	n := Normalize(circle(models.PayoutVoting), testEnv())

	require.Len(t, n.Voting.Rounds, 1)
	assert.Equal(t, 1, n.Voting.CurrentRound)
	assert.Equal(t, StateRoundOpen, State(&n))
	// b paid on time and ranks first; the rest keep membership order.
	assert.Equal(t, []string{"b", "a", "c", "d"}, n.Voting.Rounds[0].Candidates)
}

func TestNewGroup(t *testing.T) {
	creator := models.UserRef{ID: "u1", Name: "Efua", Phone: "+233200000001"}
	terms := GroupTerms{
		Name:               "  Sunday Susu ",
		ContributionAmount: 20,
		Frequency:          models.FrequencyWeekly,
		StartDate:          time.Date(2026, 11, 1, 15, 30, 0, 0, time.UTC),
		PayoutOrder:        models.PayoutAutomatic,
		MaxMembers:         6,
	}

	g, err := NewGroup(terms, creator, testEnv())
	require.NoError(t, err)

	assert.NotEmpty(t, g.ID)
	assert.Equal(t, "Sunday Susu", g.Name)
	assert.True(t, g.IsAdmin("u1"))
	assert.Equal(t, []string{"u1"}, g.PayoutSchedule)
	assert.Equal(t, time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC), g.StartDate)
	assert.Len(t, g.Notifications, 1)

	bad := terms
	bad.MaxMembers = 1
	_, err = NewGroup(bad, creator, testEnv())
	assert.Error(t, err)

	bad = terms
	bad.ContributionAmount = 0
	_, err = NewGroup(bad, creator, testEnv())
	assert.Error(t, err)

	bad = terms
	bad.Frequency = "Yearly"
	_, err = NewGroup(bad, creator, testEnv())
	assert.Error(t, err)
}
