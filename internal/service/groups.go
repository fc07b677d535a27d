package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	apperrors "github.com/mmynk/osusu/internal/errors"
	"github.com/mmynk/osusu/internal/models"
	"github.com/mmynk/osusu/internal/rosca"
	"github.com/mmynk/osusu/internal/storage"
)

// GroupStore loads and saves groups on top of a repository. Stored documents are decoded
// leniently and normalized on every load, so older schemas are upgraded on their next write.
type GroupStore struct {
	repo  storage.GroupRepository
	trust storage.TrustStore
	now   func() time.Time

	// mu serializes read-modify-write cycles within this process; other processes are
	// caught by the repository's version check.
	mu sync.Mutex
}

// NewGroupStore creates a GroupStore. trust may be nil, in which case every score is 0.
func NewGroupStore(repo storage.GroupRepository, trust storage.TrustStore) *GroupStore {
	return &GroupStore{repo: repo, trust: trust, now: time.Now}
}

// WithClock replaces the time source, for tests.
func (s *GroupStore) WithClock(now func() time.Time) *GroupStore {
	s.now = now
	return s
}

// Env returns the evaluation environment for the current moment.
func (s *GroupStore) Env(ctx context.Context) (rosca.Env, error) {
	env := rosca.Env{Now: s.now()}
	if s.trust == nil {
		return env, nil
	}
	scores, err := s.trust.TrustScores(ctx)
	if err != nil {
		return rosca.Env{}, fmt.Errorf("failed to load trust scores: %w", err)
	}
	env.Trust = scores
	return env, nil
}

func (s *GroupStore) load(ctx context.Context, env rosca.Env) ([]models.Group, error) {
	docs, err := s.repo.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	groups := make([]models.Group, 0, len(docs))
	for _, doc := range docs {
		g, err := rosca.ParseLegacy(doc.Body, env)
		if err != nil {
			slog.Warn("Skipping unreadable group document", "group_id", doc.ID, "error", err)
			continue
		}
		g.ID = doc.ID
		g.Version = doc.Version
		groups = append(groups, g)
	}
	return groups, nil
}

// LoadGroups returns every group, normalized.
func (s *GroupStore) LoadGroups(ctx context.Context) ([]models.Group, error) {
	env, err := s.Env(ctx)
	if err != nil {
		return nil, err
	}
	return s.load(ctx, env)
}

// Get returns one normalized group together with the environment it was evaluated in.
func (s *GroupStore) Get(ctx context.Context, groupID string) (models.Group, rosca.Env, error) {
	env, err := s.Env(ctx)
	if err != nil {
		return models.Group{}, rosca.Env{}, err
	}
	groups, err := s.load(ctx, env)
	if err != nil {
		return models.Group{}, rosca.Env{}, err
	}
	for _, g := range groups {
		if g.ID == groupID {
			return g, env, nil
		}
	}
	return models.Group{}, rosca.Env{}, apperrors.ErrGroupNotFound
}

// Create stores a new group.
func (s *GroupStore) Create(ctx context.Context, g models.Group) (models.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	body, err := encodeGroup(g)
	if err != nil {
		return models.Group{}, err
	}
	if err := s.save(ctx, g, body); err != nil {
		return models.Group{}, err
	}
	g.Version++
	return g, nil
}

// Mutate applies fn to the named group and saves the result if it changed. A group that
// fn returns unchanged is not rewritten and keeps its version; otherwise the returned
// group carries the version the repository stored.
func (s *GroupStore) Mutate(ctx context.Context, groupID string, fn func(models.Group, rosca.Env) (models.Group, error)) (models.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, env, err := s.Get(ctx, groupID)
	if err != nil {
		return models.Group{}, err
	}
	before, err := encodeGroup(g)
	if err != nil {
		return models.Group{}, err
	}

	updated, err := fn(g, env)
	if err != nil {
		return models.Group{}, err
	}
	updated.ID = g.ID
	updated.Version = g.Version

	after, err := encodeGroup(updated)
	if err != nil {
		return models.Group{}, err
	}
	if bytes.Equal(before, after) {
		return updated, nil
	}
	if err := s.save(ctx, updated, after); err != nil {
		return models.Group{}, err
	}
	updated.Version++
	return updated, nil
}

func encodeGroup(g models.Group) ([]byte, error) {
	body, err := json.Marshal(g)
	if err != nil {
		return nil, fmt.Errorf("failed to encode group %s: %w", g.ID, err)
	}
	return body, nil
}

func (s *GroupStore) save(ctx context.Context, g models.Group, body []byte) error {
	return s.repo.SaveAll(ctx, []storage.GroupDocument{{ID: g.ID, Version: g.Version, Body: body}})
}
