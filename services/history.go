package services

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"social-search-platform/models"
)

// ErrHistoryNotFound is returned when a history entry does not exist or is
// owned by another user.
var ErrHistoryNotFound = errors.New("history entry not found")

// HistoryService maintains the append-only search history shown on the
// history page. Failures to record are logged by callers and never block a
// search.
type HistoryService struct {
	historyCollection *mongo.Collection
}

func NewHistoryService(db *mongo.Database) *HistoryService {
	return &HistoryService{
		historyCollection: db.Collection("search_history"),
	}
}

// Record appends one history entry.
func (s *HistoryService) Record(ctx context.Context, userID, query, searchType string) error {
	entry := models.SearchHistory{
		UserID:      userID,
		SearchQuery: query,
		SearchType:  searchType,
		CreatedAt:   time.Now().UTC(),
	}
	_, err := s.historyCollection.InsertOne(ctx, entry)
	return err
}

// Delete removes a single history entry. The filter is scoped to the owner
// so a valid id belonging to another user is treated as not found.
func (s *HistoryService) Delete(ctx context.Context, userID, entryID string) error {
	oid, err := primitive.ObjectIDFromHex(entryID)
	if err != nil {
		return ErrHistoryNotFound
	}
	res, err := s.historyCollection.DeleteOne(ctx, bson.M{"_id": oid, "user_id": userID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrHistoryNotFound
	}
	return nil
}

// List returns the user's history, newest first, capped at limit.
func (s *HistoryService) List(ctx context.Context, userID string, limit int) ([]models.SearchHistory, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := s.historyCollection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	entries := []models.SearchHistory{}
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// PruneOlderThan deletes history entries older than the cutoff.
func (s *HistoryService) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.historyCollection.DeleteMany(ctx, bson.M{
		"created_at": bson.M{"$lt": cutoff},
	})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
