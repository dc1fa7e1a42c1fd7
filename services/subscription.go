package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"social-search-platform/internal/billing"
	"social-search-platform/internal/logger"
	"social-search-platform/models"
)

// SubscriptionService reads the billing provider's webhook log and exposes
// the current subscription state per user. The newest log row wins; this
// service never writes subscription state.
type SubscriptionService struct {
	subsCollection *mongo.Collection
	redisClient    *redis.Client
	cacheTTL       time.Duration
}

func NewSubscriptionService(db *mongo.Database, redisClient *redis.Client, cacheTTL time.Duration) *SubscriptionService {
	return &SubscriptionService{
		subsCollection: db.Collection("subscription_logs"),
		redisClient:    redisClient,
		cacheTTL:       cacheTTL,
	}
}

// SnapshotFor returns the user's current subscription snapshot, or nil when
// the user has no subscription rows. Snapshots are cached briefly in Redis
// because every gated request resolves one; a stale snapshot is bounded by
// the TTL and only ever lags a webhook, never invents entitlements.
func (s *SubscriptionService) SnapshotFor(ctx context.Context, userID string) (*billing.Snapshot, error) {
	cacheKey := "subscription:" + userID

	if s.redisClient != nil {
		if cached, err := s.redisClient.Get(ctx, cacheKey).Result(); err == nil {
			var snap billing.Snapshot
			if json.Unmarshal([]byte(cached), &snap) == nil {
				return &snap, nil
			}
		}
	}

	var row models.SubscriptionLog
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})
	err := s.subsCollection.FindOne(ctx, bson.M{"user_id": userID}, opts).Decode(&row)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	snap := snapshotFromLog(row)

	if s.redisClient != nil {
		if payload, err := json.Marshal(snap); err == nil {
			if err := s.redisClient.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				logger.Warn("Failed to cache subscription snapshot", "user_id", userID, "error", err)
			}
		}
	}

	return snap, nil
}

// Invalidate drops the cached snapshot so the next check re-reads the log.
func (s *SubscriptionService) Invalidate(ctx context.Context, userID string) {
	if s.redisClient == nil {
		return
	}
	if err := s.redisClient.Del(ctx, "subscription:"+userID).Err(); err != nil {
		logger.Warn("Failed to invalidate subscription cache", "user_id", userID, "error", err)
	}
}

// snapshotFromLog maps one webhook log row to a snapshot. Status values
// come from the billing provider: "active" and "trialing" grant the paid
// tier, "canceled" keeps access flagged as canceled until the period ends,
// anything else is treated as not subscribed.
func snapshotFromLog(row models.SubscriptionLog) *billing.Snapshot {
	snap := &billing.Snapshot{
		PriceID: row.Details.PriceID,
	}
	switch row.Status {
	case "active", "trialing":
		snap.Subscribed = true
	case "canceled":
		snap.Subscribed = true
		snap.Canceled = true
	}
	limits := billing.LimitsFor(billing.TierForPrice(snap.PriceID))
	if snap.Subscribed {
		snap.MaxClicks = limits.MaxSearchesPerDay
	} else {
		snap.MaxClicks = billing.LimitsFor(billing.TierFree).MaxSearchesPerDay
	}
	return snap
}
