// Package scheduler runs the periodic contribution reminder job.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mmynk/osusu/internal/metrics"
	"github.com/mmynk/osusu/internal/models"
	"github.com/mmynk/osusu/internal/rosca"
)

// tickSpec is how often checkpoints are evaluated; it must be shorter than the reminder window.
const tickSpec = "@every 1m"

// GroupSource provides the current, normalized group collection.
type GroupSource interface {
	LoadGroups(ctx context.Context) ([]models.Group, error)
}

// Sink receives reminder events.
type Sink interface {
	Deliver(ctx context.Context, ev rosca.ReminderEvent) error
}

// LogSink logs every event and counts it.
type LogSink struct {
	Metrics *metrics.Metrics
}

// Deliver implements Sink.
func (s LogSink) Deliver(_ context.Context, ev rosca.ReminderEvent) error {
	slog.Info("Contribution reminder",
		"user_id", ev.UserID,
		"checkpoint", ev.Checkpoint.String(),
		"group_ids", ev.GroupIDs,
		"message", ev.Message,
	)
	if s.Metrics != nil {
		s.Metrics.RemindersSent.Inc()
	}
	return nil
}

// Scheduler evaluates reminder checkpoints on a cron tick.
type Scheduler struct {
	cron    *cron.Cron
	groups  GroupSource
	sink    Sink
	tracker *rosca.ReminderTracker
	loc     *time.Location
	userID  string
	metrics *metrics.Metrics
}

// Option configures a Scheduler.
type Option func(*options)

type options struct {
	checkpoints []rosca.Checkpoint
	window      time.Duration
	loc         *time.Location
	userID      string
	metrics     *metrics.Metrics
}

// WithCheckpoints overrides the default checkpoints.
func WithCheckpoints(cps []rosca.Checkpoint) Option {
	return func(o *options) { o.checkpoints = cps }
}

// WithWindow overrides the default firing window.
func WithWindow(d time.Duration) Option {
	return func(o *options) { o.window = d }
}

// WithLocation sets the timezone checkpoints are read in.
func WithLocation(loc *time.Location) Option {
	return func(o *options) { o.loc = loc }
}

// ForUser restricts reminders to one user, as on a single-user device.
func ForUser(userID string) Option {
	return func(o *options) { o.userID = userID }
}

// WithMetrics records tick outcomes.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// New creates a scheduler. Without ForUser every member of every group is evaluated.
func New(groups GroupSource, sink Sink, opts ...Option) *Scheduler {
	o := options{loc: time.Local}
	for _, opt := range opts {
		opt(&o)
	}
	return &Scheduler{
		cron:    cron.New(cron.WithLocation(o.loc)),
		groups:  groups,
		sink:    sink,
		tracker: rosca.NewReminderTracker(o.checkpoints, o.window),
		loc:     o.loc,
		userID:  o.userID,
		metrics: o.metrics,
	}
}

// Start registers the reminder job and starts the cron runner.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(tickSpec, s.run); err != nil {
		return fmt.Errorf("failed to register reminder job: %w", err)
	}
	s.cron.Start()
	slog.Info("Reminder scheduler started", "spec", tickSpec, "location", s.loc.String(), "user_id", s.userID)
	return nil
}

// Stop stops the cron runner and waits for a running tick to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	slog.Info("Reminder scheduler stopped")
}

func (s *Scheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := s.Tick(ctx, time.Now()); err != nil {
		slog.Error("Reminder tick failed", "error", err)
	}
}

// Tick evaluates the checkpoint due at now, if any, and delivers one event per user with
// due groups. A due checkpoint is consumed even when nobody has anything due.
func (s *Scheduler) Tick(ctx context.Context, now time.Time) ([]rosca.ReminderEvent, error) {
	now = now.In(s.loc)
	cp, ok := s.tracker.Due(now)
	if !ok {
		s.count("idle")
		return nil, nil
	}

	groups, err := s.groups.LoadGroups(ctx)
	if err != nil {
		s.count("error")
		return nil, fmt.Errorf("failed to load groups: %w", err)
	}
	s.tracker.MarkFired(now, cp)

	var events []rosca.ReminderEvent
	for _, user := range s.users(groups) {
		due := rosca.DueGroups(groups, user, now)
		if len(due) == 0 {
			continue
		}
		ev := rosca.NewReminderEvent(user, cp, due, now)
		if err := s.sink.Deliver(ctx, ev); err != nil {
			slog.Error("Failed to deliver reminder", "user_id", user.ID, "error", err)
			continue
		}
		events = append(events, ev)
	}

	s.count("fired")
	slog.Debug("Reminder checkpoint evaluated", "checkpoint", cp.String(), "events", len(events))
	return events, nil
}

// users collects the member identities to evaluate, ordered by ID.
func (s *Scheduler) users(groups []models.Group) []models.UserRef {
	seen := make(map[string]models.UserRef)
	for _, g := range groups {
		for _, m := range g.MembersList {
			if s.userID != "" && m.ID != s.userID {
				continue
			}
			if _, ok := seen[m.ID]; !ok {
				seen[m.ID] = models.UserRef{ID: m.ID, Name: m.Name, Phone: m.Phone}
			}
		}
	}
	users := make([]models.UserRef, 0, len(seen))
	for _, u := range seen {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users
}

func (s *Scheduler) count(outcome string) {
	if s.metrics != nil {
		s.metrics.ReminderTicks.WithLabelValues(outcome).Inc()
	}
}
