// Package mongo provides a MongoDB-backed implementation of the storage.Store interface.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	apperrors "github.com/mmynk/osusu/internal/errors"
	"github.com/mmynk/osusu/internal/models"
	"github.com/mmynk/osusu/internal/storage"
)

const (
	groupsCollection = "groups"
	usersCollection  = "users"
	trustCollection  = "trust_scores"
)

// Ensure MongoStore implements storage.Store
var _ storage.Store = (*MongoStore)(nil)

// MongoStore implements storage.Store on a MongoDB database.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

type groupDocument struct {
	ID        string `bson:"_id"`
	Version   int64  `bson:"version"`
	Body      string `bson:"body"`
	UpdatedAt int64  `bson:"updatedAt"`
}

type userDocument struct {
	ID           string `bson:"_id"`
	Email        string `bson:"email"`
	DisplayName  string `bson:"displayName"`
	Phone        string `bson:"phone"`
	PasswordHash string `bson:"passwordHash"`
	CreatedAt    int64  `bson:"createdAt"`
	UpdatedAt    int64  `bson:"updatedAt"`
}

type trustDocument struct {
	UserID string  `bson:"_id"`
	Score  float64 `bson:"score"`
}

// New connects to uri and uses the named database. It creates the unique email index.
func New(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	db := client.Database(database)
	_, err = db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to create user index: %w", err)
	}

	return &MongoStore{client: client, db: db}, nil
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// LoadAll returns every group document ordered by ID.
func (s *MongoStore) LoadAll(ctx context.Context) ([]storage.GroupDocument, error) {
	cursor, err := s.db.Collection(groupsCollection).Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to load groups: %w", err)
	}
	var stored []groupDocument
	if err := cursor.All(ctx, &stored); err != nil {
		return nil, fmt.Errorf("failed to decode groups: %w", err)
	}

	docs := make([]storage.GroupDocument, len(stored))
	for i, d := range stored {
		docs[i] = storage.GroupDocument{ID: d.ID, Version: d.Version, Body: []byte(d.Body)}
	}
	return docs, nil
}

// SaveAll checks every changed document against its stored version before writing any of
// them. Each write is still conditional on the version, so a racing writer that slips in
// between the check and the write gets a conflict instead of a lost update.
func (s *MongoStore) SaveAll(ctx context.Context, docs []storage.GroupDocument) error {
	coll := s.db.Collection(groupsCollection)

	ids := make([]string, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	cursor, err := coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return fmt.Errorf("failed to read groups: %w", err)
	}
	var stored []groupDocument
	if err := cursor.All(ctx, &stored); err != nil {
		return fmt.Errorf("failed to decode groups: %w", err)
	}
	existing := make(map[string]groupDocument, len(stored))
	for _, d := range stored {
		existing[d.ID] = d
	}

	var pending []storage.GroupDocument
	for _, doc := range docs {
		cur, ok := existing[doc.ID]
		if ok && cur.Body == string(doc.Body) {
			continue
		}
		if ok && cur.Version != doc.Version {
			return fmt.Errorf("group %s: stored version %d, written %d: %w", doc.ID, cur.Version, doc.Version, apperrors.ErrVersionConflict)
		}
		pending = append(pending, doc)
	}

	now := time.Now().Unix()
	for _, doc := range pending {
		next := groupDocument{ID: doc.ID, Version: doc.Version + 1, Body: string(doc.Body), UpdatedAt: now}
		if _, ok := existing[doc.ID]; !ok {
			if _, err := coll.InsertOne(ctx, next); err != nil {
				if mongo.IsDuplicateKeyError(err) {
					return fmt.Errorf("group %s: %w", doc.ID, apperrors.ErrVersionConflict)
				}
				return fmt.Errorf("failed to insert group %s: %w", doc.ID, err)
			}
			continue
		}
		res, err := coll.ReplaceOne(ctx, bson.M{"_id": doc.ID, "version": doc.Version}, next)
		if err != nil {
			return fmt.Errorf("failed to update group %s: %w", doc.ID, err)
		}
		if res.MatchedCount == 0 {
			return fmt.Errorf("group %s: %w", doc.ID, apperrors.ErrVersionConflict)
		}
	}
	return nil
}

// TrustScores returns every stored trust score.
func (s *MongoStore) TrustScores(ctx context.Context) (map[string]float64, error) {
	cursor, err := s.db.Collection(trustCollection).Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("failed to get trust scores: %w", err)
	}
	var stored []trustDocument
	if err := cursor.All(ctx, &stored); err != nil {
		return nil, fmt.Errorf("failed to decode trust scores: %w", err)
	}
	scores := make(map[string]float64, len(stored))
	for _, d := range stored {
		scores[d.UserID] = d.Score
	}
	return scores, nil
}

// SetTrustScore stores the trust score for a user, replacing any previous value.
func (s *MongoStore) SetTrustScore(ctx context.Context, userID string, score float64) error {
	_, err := s.db.Collection(trustCollection).ReplaceOne(ctx,
		bson.M{"_id": userID},
		trustDocument{UserID: userID, Score: score},
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to set trust score: %w", err)
	}
	return nil
}

// CreateUser inserts a new user.
func (s *MongoStore) CreateUser(ctx context.Context, user *models.User) error {
	_, err := s.db.Collection(usersCollection).InsertOne(ctx, userDocument{
		ID:           user.ID,
		Email:        user.Email,
		DisplayName:  user.DisplayName,
		Phone:        user.Phone,
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetUserByEmail retrieves a user by their email address.
func (s *MongoStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.findUser(ctx, bson.M{"email": email})
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

// GetUserByID retrieves a user by their ID.
func (s *MongoStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.findUser(ctx, bson.M{"_id": id})
	if err != nil {
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}
	return user, nil
}

func (s *MongoStore) findUser(ctx context.Context, filter bson.M) (*models.User, error) {
	var d userDocument
	err := s.db.Collection(usersCollection).FindOne(ctx, filter).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil // User not found
	}
	if err != nil {
		return nil, err
	}
	return &models.User{
		ID:           d.ID,
		Email:        d.Email,
		DisplayName:  d.DisplayName,
		Phone:        d.Phone,
		PasswordHash: d.PasswordHash,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}, nil
}
