package services

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"social-search-platform/internal/results"
	"social-search-platform/models"
)

// ErrResultNotFound is returned when a result set does not exist or is not
// owned by the requesting user. The two cases are deliberately not
// distinguishable to callers.
var ErrResultNotFound = errors.New("result set not found")

// ResultStore persists search result sets so they can be re-filtered,
// re-sorted, exported and polled (for bulk batches) after the scrape.
type ResultStore struct {
	resultsCollection *mongo.Collection
}

func NewResultStore(db *mongo.Database) *ResultStore {
	return &ResultStore{
		resultsCollection: db.Collection("search_results"),
	}
}

// SaveCompleted stores a finished single-search result set and returns its id.
func (s *ResultStore) SaveCompleted(ctx context.Context, userID, username, platform string, posts []results.Post) (string, error) {
	now := time.Now().UTC()
	set := models.SearchResultSet{
		UserID:    userID,
		Username:  username,
		Platform:  platform,
		Status:    models.ResultStatusCompleted,
		Posts:     posts,
		CreatedAt: now,
		UpdatedAt: now,
	}

	res, err := s.resultsCollection.InsertOne(ctx, set)
	if err != nil {
		return "", err
	}
	return res.InsertedID.(primitive.ObjectID).Hex(), nil
}

// CreatePending stores a placeholder row for one username of a bulk batch.
// The worker fills it in when the scrape finishes.
func (s *ResultStore) CreatePending(ctx context.Context, userID, bulkID, username, platform string) (string, error) {
	now := time.Now().UTC()
	set := models.SearchResultSet{
		UserID:    userID,
		BulkID:    bulkID,
		Username:  username,
		Platform:  platform,
		Status:    models.ResultStatusPending,
		Posts:     []results.Post{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	res, err := s.resultsCollection.InsertOne(ctx, set)
	if err != nil {
		return "", err
	}
	return res.InsertedID.(primitive.ObjectID).Hex(), nil
}

// Complete marks a pending row completed and attaches its posts.
func (s *ResultStore) Complete(ctx context.Context, id string, posts []results.Post) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrResultNotFound
	}

	_, err = s.resultsCollection.UpdateByID(ctx, oid, bson.M{
		"$set": bson.M{
			"status":     models.ResultStatusCompleted,
			"posts":      posts,
			"updated_at": time.Now().UTC(),
		},
	})
	return err
}

// Fail marks a pending row failed with a display message.
func (s *ResultStore) Fail(ctx context.Context, id, message string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrResultNotFound
	}

	_, err = s.resultsCollection.UpdateByID(ctx, oid, bson.M{
		"$set": bson.M{
			"status":     models.ResultStatusFailed,
			"error":      message,
			"updated_at": time.Now().UTC(),
		},
	})
	return err
}

// Get returns one result set owned by the user.
func (s *ResultStore) Get(ctx context.Context, userID, id string) (*models.SearchResultSet, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrResultNotFound
	}

	var set models.SearchResultSet
	err = s.resultsCollection.FindOne(ctx, bson.M{"_id": oid, "user_id": userID}).Decode(&set)
	if err == mongo.ErrNoDocuments {
		return nil, ErrResultNotFound
	}
	if err != nil {
		return nil, err
	}
	return &set, nil
}

// ListBulk returns all rows of a bulk batch owned by the user, in creation
// order so the response matches the submitted username order.
func (s *ResultStore) ListBulk(ctx context.Context, userID, bulkID string) ([]models.SearchResultSet, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := s.resultsCollection.Find(ctx, bson.M{"user_id": userID, "bulk_id": bulkID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	sets := []models.SearchResultSet{}
	if err := cursor.All(ctx, &sets); err != nil {
		return nil, err
	}
	return sets, nil
}

// PruneOlderThan deletes result sets older than the cutoff.
func (s *ResultStore) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.resultsCollection.DeleteMany(ctx, bson.M{
		"created_at": bson.M{"$lt": cutoff},
	})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
