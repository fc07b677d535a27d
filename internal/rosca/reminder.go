package rosca

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mmynk/osusu/internal/calculator"
	"github.com/mmynk/osusu/internal/models"
)

const (
	// DefaultReminderWindow is how long after a checkpoint a tick may still fire it.
	DefaultReminderWindow = 5 * time.Minute
	// ReminderLeadDays is how many days ahead of a group's start date reminders begin.
	ReminderLeadDays = 2
)

// Checkpoint is a time of day at which reminders are evaluated.
type Checkpoint struct {
	Hour   int
	Minute int
}

// DefaultCheckpoints are the morning, afternoon and evening reminder slots.
var DefaultCheckpoints = []Checkpoint{{Hour: 7}, {Hour: 14}, {Hour: 19}}

func (c Checkpoint) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// ParseCheckpoint parses an "HH:MM" time of day.
func ParseCheckpoint(s string) (Checkpoint, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return Checkpoint{}, fmt.Errorf("invalid checkpoint %q: %w", s, err)
	}
	return Checkpoint{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// ParseCheckpoints parses a comma separated list of "HH:MM" values.
func ParseCheckpoints(s string) ([]Checkpoint, error) {
	var out []Checkpoint
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		cp, err := ParseCheckpoint(part)
		if err != nil {
			return nil, err
		}
		out = append(out, cp)
	}
	return out, nil
}

func (c Checkpoint) on(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, c.Hour, c.Minute, 0, 0, day.Location())
}

// ReminderEvent is one aggregated reminder for a user.
type ReminderEvent struct {
	UserID     string
	Checkpoint Checkpoint
	GroupIDs   []string
	GroupNames []string
	Message    string
	FiredAt    time.Time
}

// ReminderTracker remembers which checkpoints already fired today in this process.
type ReminderTracker struct {
	checkpoints []Checkpoint
	window      time.Duration

	mu    sync.Mutex
	fired map[string]bool
}

// NewReminderTracker creates a tracker. Empty checkpoints or a non-positive window fall back
// to the defaults.
func NewReminderTracker(checkpoints []Checkpoint, window time.Duration) *ReminderTracker {
	if len(checkpoints) == 0 {
		checkpoints = DefaultCheckpoints
	}
	if window <= 0 {
		window = DefaultReminderWindow
	}
	return &ReminderTracker{
		checkpoints: append([]Checkpoint(nil), checkpoints...),
		window:      window,
		fired:       make(map[string]bool),
	}
}

func firedKey(now time.Time, cp Checkpoint) string {
	return now.Format("2006-01-02") + "@" + cp.String()
}

// Due returns the checkpoint whose window contains now and that has not fired today.
func (t *ReminderTracker) Due(now time.Time) (Checkpoint, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, cp := range t.checkpoints {
		at := cp.on(now)
		if now.Before(at) || !now.Before(at.Add(t.window)) {
			continue
		}
		if !t.fired[firedKey(now, cp)] {
			return cp, true
		}
	}
	return Checkpoint{}, false
}

// MarkFired records cp as fired for the day of now and forgets earlier days.
func (t *ReminderTracker) MarkFired(now time.Time, cp Checkpoint) {
	t.mu.Lock()
	defer t.mu.Unlock()
	today := now.Format("2006-01-02")
	for key := range t.fired {
		if !strings.HasPrefix(key, today) {
			delete(t.fired, key)
		}
	}
	t.fired[firedKey(now, cp)] = true
}

// Tick evaluates reminders for a single user. It returns an event only when a checkpoint is
// due and at least one group qualifies; a due checkpoint is consumed either way.
func (t *ReminderTracker) Tick(now time.Time, groups []models.Group, user models.UserRef) (ReminderEvent, bool) {
	cp, ok := t.Due(now)
	if !ok {
		return ReminderEvent{}, false
	}
	t.MarkFired(now, cp)

	due := DueGroups(groups, user, now)
	if len(due) == 0 {
		return ReminderEvent{}, false
	}
	return NewReminderEvent(user, cp, due, now), true
}

// daysUntil counts calendar days from the day of now to the calendar date of start.
func daysUntil(start, now time.Time) int {
	sy, sm, sd := start.Date()
	ny, nm, nd := now.Date()
	s := time.Date(sy, sm, sd, 0, 0, 0, 0, time.UTC)
	n := time.Date(ny, nm, nd, 0, 0, 0, 0, time.UTC)
	return int(s.Sub(n).Hours() / 24)
}

// DueGroups returns the groups where user is a member, the start date is at most
// ReminderLeadDays ahead, and user has not yet paid toward the current recipient.
func DueGroups(groups []models.Group, user models.UserRef, now time.Time) []models.Group {
	var due []models.Group
	for i := range groups {
		g := &groups[i]
		if !g.IsMember(user.ID) {
			continue
		}
		days := daysUntil(g.StartDate, now)
		if days < 0 || days > ReminderLeadDays {
			continue
		}
		recipient, ok := CurrentRecipient(g)
		if !ok || calculator.HasPaid(g.PaymentsLedger, user.ID, recipient) {
			continue
		}
		due = append(due, *g)
	}
	return due
}

// NewReminderEvent aggregates the due groups into one event.
func NewReminderEvent(user models.UserRef, cp Checkpoint, groups []models.Group, now time.Time) ReminderEvent {
	ev := ReminderEvent{UserID: user.ID, Checkpoint: cp, FiredAt: now}
	for _, g := range groups {
		ev.GroupIDs = append(ev.GroupIDs, g.ID)
		ev.GroupNames = append(ev.GroupNames, g.Name)
	}
	ev.Message = fmt.Sprintf("Contribution due soon for: %s", strings.Join(ev.GroupNames, ", "))
	return ev
}
