package mongo

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/mmynk/osusu/internal/errors"
	"github.com/mmynk/osusu/internal/models"
	"github.com/mmynk/osusu/internal/storage"
)

// newTestStore connects to MONGO_URI with a throwaway database, or skips.
func newTestStore(t *testing.T) *MongoStore {
	t.Helper()
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		t.Skip("MONGO_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := New(ctx, uri, "osusu_test_"+uuid.New().String()[:8])
	require.NoError(t, err)
	t.Cleanup(func() {
		store.db.Drop(context.Background())
		store.Close()
	})
	return store
}

func TestMongoStore_GroupDocuments(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveAll(ctx, []storage.GroupDocument{
		{ID: "g1", Body: []byte(`{"id":"g1"}`)},
	}))

	docs, err := store.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, int64(1), docs[0].Version)

	// identical body is skipped even with a stale version
	require.NoError(t, store.SaveAll(ctx, []storage.GroupDocument{{ID: "g1", Version: 0, Body: []byte(`{"id":"g1"}`)}}))

	require.NoError(t, store.SaveAll(ctx, []storage.GroupDocument{{ID: "g1", Version: 1, Body: []byte(`{"id":"g1","name":"x"}`)}}))

	err = store.SaveAll(ctx, []storage.GroupDocument{{ID: "g1", Version: 1, Body: []byte(`{"id":"g1","name":"y"}`)}})
	assert.ErrorIs(t, err, apperrors.ErrVersionConflict)

	docs, err = store.LoadAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), docs[0].Version)
	assert.Equal(t, `{"id":"g1","name":"x"}`, string(docs[0].Body))
}

func TestMongoStore_UsersAndTrust(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := models.NewUser("kofi@example.com", "Kofi", "+233555000010", "hash")
	require.NoError(t, store.CreateUser(ctx, user))

	got, err := store.GetUserByEmail(ctx, "kofi@example.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, user.ID, got.ID)

	missing, err := store.GetUserByID(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, store.SetTrustScore(ctx, user.ID, 3))
	scores, err := store.TrustScores(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{user.ID: 3}, scores)
}
