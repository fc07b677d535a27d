package service

import (
	"context"
	"testing"
	"time"

	"github.com/mmynk/osusu/internal/models"
	"github.com/mmynk/osusu/internal/rosca"
)

func TestGroupStore_MutateReportsStoredVersion(t *testing.T) {
	c := setupTestServer(t, rosca.MarkPermissive)
	store := NewGroupStore(c.store, c.store)
	ctx := context.Background()

	env, err := store.Env(ctx)
	if err != nil {
		t.Fatalf("Env failed: %v", err)
	}
	g, err := rosca.NewGroup(rosca.GroupTerms{
		Name:               "Kejetia Traders",
		ContributionAmount: 20,
		Frequency:          models.FrequencyWeekly,
		StartDate:          time.Now(),
		PayoutOrder:        models.PayoutAutomatic,
		MaxMembers:         5,
	}, models.UserRef{ID: "u-abena", Name: "Abena"}, env)
	if err != nil {
		t.Fatalf("NewGroup failed: %v", err)
	}
	g, err = store.Create(ctx, g)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if g.Version != 1 {
		t.Fatalf("expected version 1 after create, got %d", g.Version)
	}

	addMember := func(name, phone string) func(models.Group, rosca.Env) (models.Group, error) {
		return func(g models.Group, env rosca.Env) (models.Group, error) {
			out, _ := rosca.AddMemberDirect(g, rosca.MemberInfo{Name: name, Phone: phone}, env)
			return out, nil
		}
	}
	steps := []struct {
		name string
		fn   func(models.Group, rosca.Env) (models.Group, error)
		want int64
	}{
		{name: "first write", fn: addMember("Kwesi", "+233240000001"), want: 2},
		{name: "second write", fn: addMember("Akosua", "+233240000002"), want: 3},
		{name: "duplicate phone leaves the group unchanged", fn: addMember("Kwesi again", "+233240000001"), want: 3},
		{name: "identity", fn: func(g models.Group, _ rosca.Env) (models.Group, error) { return g, nil }, want: 3},
	}

	for _, step := range steps {
		updated, err := store.Mutate(ctx, g.ID, step.fn)
		if err != nil {
			t.Fatalf("%s: Mutate failed: %v", step.name, err)
		}
		stored, _, err := store.Get(ctx, g.ID)
		if err != nil {
			t.Fatalf("%s: Get failed: %v", step.name, err)
		}
		if updated.Version != step.want || stored.Version != step.want {
			t.Errorf("%s: expected version %d, Mutate returned %d and the store holds %d",
				step.name, step.want, updated.Version, stored.Version)
		}
	}
}
