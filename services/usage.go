package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"social-search-platform/models"
)

// UsageService maintains the append-only usage event log that plan limits
// are enforced against. Enforcement counts the current day; the stats
// endpoint also reports the calendar month.
type UsageService struct {
	usageCollection *mongo.Collection
}

func NewUsageService(db *mongo.Database) *UsageService {
	return &UsageService{
		usageCollection: db.Collection("user_requests"),
	}
}

// DayWindow returns the UTC day containing t as a half-open interval.
func DayWindow(t time.Time) (time.Time, time.Time) {
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}

// MonthWindow returns the UTC calendar month containing t as a half-open
// interval.
func MonthWindow(t time.Time) (time.Time, time.Time) {
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// Record appends one usage event for a billable search. The enforcement
// window is stamped on the event so historical rows stay interpretable
// after window rules change.
func (s *UsageService) Record(ctx context.Context, userID, requestType string) error {
	now := time.Now().UTC()
	periodStart, periodEnd := DayWindow(now)

	event := models.UsageEvent{
		UserID:      userID,
		RequestType: requestType,
		CreatedAt:   now,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
	}

	_, err := s.usageCollection.InsertOne(ctx, event)
	return err
}

// CountToday returns the number of billable searches the user has made in
// the current UTC day. This is the number plan limits compare against.
func (s *UsageService) CountToday(ctx context.Context, userID string) (int, error) {
	start, end := DayWindow(time.Now())
	return s.countWindow(ctx, userID, start, end)
}

// CountMonth returns the number of billable searches the user has made in
// the current UTC calendar month, for the usage stats display.
func (s *UsageService) CountMonth(ctx context.Context, userID string) (int, error) {
	start, end := MonthWindow(time.Now())
	return s.countWindow(ctx, userID, start, end)
}

func (s *UsageService) countWindow(ctx context.Context, userID string, start, end time.Time) (int, error) {
	filter := bson.M{
		"user_id": userID,
		"request_type": bson.M{"$in": []string{
			models.RequestTypeInstagramSearch,
			models.RequestTypeTikTokSearch,
		}},
		"created_at": bson.M{"$gte": start, "$lt": end},
	}

	count, err := s.usageCollection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, err
	}
	return int(count), nil
}

// CountPlatformToday returns today's billable searches across all users,
// broken down by request type, for the admin overview.
func (s *UsageService) CountPlatformToday(ctx context.Context) (map[string]int, error) {
	start, end := DayWindow(time.Now())

	counts := map[string]int{}
	for _, requestType := range []string{models.RequestTypeInstagramSearch, models.RequestTypeTikTokSearch} {
		n, err := s.usageCollection.CountDocuments(ctx, bson.M{
			"request_type": requestType,
			"created_at":   bson.M{"$gte": start, "$lt": end},
		})
		if err != nil {
			return nil, err
		}
		counts[requestType] = int(n)
	}
	return counts, nil
}

// PruneOlderThan deletes usage events older than the cutoff. Called by the
// retention job; enforcement never looks further back than a day.
func (s *UsageService) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.usageCollection.DeleteMany(ctx, bson.M{
		"created_at": bson.M{"$lt": cutoff},
	})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
