package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/osusu/internal/metrics"
	"github.com/mmynk/osusu/internal/models"
	"github.com/mmynk/osusu/internal/rosca"
)

type staticGroups struct {
	groups []models.Group
	err    error
}

func (s staticGroups) LoadGroups(context.Context) ([]models.Group, error) {
	return s.groups, s.err
}

type recordingSink struct {
	mu     sync.Mutex
	events []rosca.ReminderEvent
}

func (r *recordingSink) Deliver(_ context.Context, ev rosca.ReminderEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

var today = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

func dueGroup() models.Group {
	g := models.Group{
		ID:                 "g1",
		Name:               "Makola Traders",
		ContributionAmount: 100,
		StartDate:          today.AddDate(0, 0, 1),
		MaxMembers:         4,
		MembersList: []models.Member{
			{ID: "a", Name: "Abena", Role: models.RoleAdmin},
			{ID: "b", Name: "Bisi", Role: models.RoleMember},
			{ID: "c", Name: "Chidi", Role: models.RoleMember},
		},
		PaymentsLedger: []models.PaymentRecord{
			{ID: "p1", Amount: 100, PayerID: "b", ForMemberID: "a"},
		},
	}
	return rosca.Normalize(g, rosca.Env{Now: today})
}

func TestTick_EvaluatesEveryMember(t *testing.T) {
	sink := &recordingSink{}
	m := metrics.New()
	s := New(staticGroups{groups: []models.Group{dueGroup()}}, sink, WithLocation(time.UTC), WithMetrics(m))

	events, err := s.Tick(context.Background(), today.Add(7*time.Hour+2*time.Minute))
	require.NoError(t, err)

	// a is the current recipient and has not paid themself; b already paid a.
	var users []string
	for _, ev := range events {
		users = append(users, ev.UserID)
	}
	assert.Equal(t, []string{"a", "c"}, users)
	assert.Len(t, sink.events, 2)
	assert.Equal(t, "Contribution due soon for: Makola Traders", sink.events[0].Message)

	events, err = s.Tick(context.Background(), today.Add(7*time.Hour+3*time.Minute))
	require.NoError(t, err)
	assert.Empty(t, events)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReminderTicks.WithLabelValues("fired")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ReminderTicks.WithLabelValues("idle")))
}

func TestTick_ForUser(t *testing.T) {
	sink := &recordingSink{}
	s := New(staticGroups{groups: []models.Group{dueGroup()}}, sink, WithLocation(time.UTC), ForUser("c"))

	events, err := s.Tick(context.Background(), today.Add(14*time.Hour))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "c", events[0].UserID)
	assert.Equal(t, "14:00", events[0].Checkpoint.String())
}

func TestTick_CustomCheckpoints(t *testing.T) {
	s := New(staticGroups{groups: []models.Group{dueGroup()}}, &recordingSink{},
		WithLocation(time.UTC),
		WithCheckpoints([]rosca.Checkpoint{{Hour: 9, Minute: 30}}),
		WithWindow(time.Minute),
	)

	events, err := s.Tick(context.Background(), today.Add(7*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, events)

	events, err = s.Tick(context.Background(), today.Add(9*time.Hour+30*time.Minute+30*time.Second))
	require.NoError(t, err)
	assert.NotEmpty(t, events)

	events, err = s.Tick(context.Background(), today.Add(9*time.Hour+31*time.Minute))
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestTick_LoadErrorKeepsCheckpoint(t *testing.T) {
	src := &staticGroups{err: errors.New("disk on fire")}
	sink := &recordingSink{}
	s := New(src, sink, WithLocation(time.UTC))

	_, err := s.Tick(context.Background(), today.Add(7*time.Hour))
	assert.Error(t, err)

	src.err = nil
	src.groups = []models.Group{dueGroup()}
	events, err := s.Tick(context.Background(), today.Add(7*time.Hour+time.Minute))
	require.NoError(t, err)
	assert.NotEmpty(t, events)
}

func TestStartStop(t *testing.T) {
	s := New(staticGroups{}, LogSink{}, WithLocation(time.UTC))
	require.NoError(t, s.Start())
	s.Stop()
}
