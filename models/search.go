package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"social-search-platform/internal/results"
)

// Request types recorded in the usage event log. Each billable search
// writes exactly one event of its type.
const (
	RequestTypeInstagramSearch = "instagram_search"
	RequestTypeTikTokSearch    = "tiktok_search"
)

// Search platforms.
const (
	PlatformInstagram = "instagram"
	PlatformTikTok    = "tiktok"
)

// UsageEvent is one row in the append-only usage log. The current-period
// usage count is computed by counting events whose created_at falls inside
// the period window.
type UsageEvent struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      string             `bson:"user_id" json:"user_id"`
	RequestType string             `bson:"request_type" json:"request_type"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	PeriodStart time.Time          `bson:"period_start" json:"period_start"`
	PeriodEnd   time.Time          `bson:"period_end" json:"period_end"`
}

// SubscriptionLog is one row of the billing provider's webhook log. The
// newest row per user is the authoritative subscription state; this
// service only ever reads it.
type SubscriptionLog struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID    string              `bson:"user_id" json:"user_id"`
	Status    string              `bson:"status" json:"status"`
	Details   SubscriptionDetails `bson:"details" json:"details"`
	CreatedAt time.Time           `bson:"created_at" json:"created_at"`
}

type SubscriptionDetails struct {
	PriceID string `bson:"price_id" json:"price_id"`
}

// SearchHistory is one entry in the append-only search history log, kept
// purely for display on the history page.
type SearchHistory struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      string             `bson:"user_id" json:"user_id"`
	SearchQuery string             `bson:"search_query" json:"search_query"`
	SearchType  string             `bson:"search_type" json:"search_type"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}

// Result set lifecycle states. Single searches are stored completed; bulk
// searches start pending and are filled in by the worker.
const (
	ResultStatusPending   = "pending"
	ResultStatusCompleted = "completed"
	ResultStatusFailed    = "failed"
)

// SearchResultSet is a stored batch of normalized posts from one search,
// addressable for later filtering, sorting, export and bulk retrieval.
type SearchResultSet struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    string             `bson:"user_id" json:"user_id"`
	BulkID    string             `bson:"bulk_id,omitempty" json:"bulk_id,omitempty"`
	Username  string             `bson:"username" json:"username"`
	Platform  string             `bson:"platform" json:"platform"`
	Status    string             `bson:"status" json:"status"`
	Error     string             `bson:"error,omitempty" json:"error,omitempty"`
	Posts     []results.Post     `bson:"posts" json:"posts"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

// SearchRequest is the payload of a single scrape request.
type SearchRequest struct {
	Username       string `json:"username" binding:"required"`
	NumberOfVideos int    `json:"number_of_videos" binding:"omitempty,min=1,max=50"`
	SelectedDate   string `json:"selected_date" binding:"omitempty,oneof=THIS_WEEK THIS_MONTH LAST_SIX_MONTHS"`
	Location       string `json:"location"`
}

// BulkSearchRequest is the payload of a bulk scrape request. Each username
// consumes one search from the caller's quota.
type BulkSearchRequest struct {
	Usernames      []string `json:"usernames" binding:"required,min=1,max=20,dive,required"`
	Platform       string   `json:"platform" binding:"required,oneof=instagram tiktok"`
	NumberOfVideos int      `json:"number_of_videos" binding:"omitempty,min=1,max=50"`
	SelectedDate   string   `json:"selected_date" binding:"omitempty,oneof=THIS_WEEK THIS_MONTH LAST_SIX_MONTHS"`
	Location       string   `json:"location"`
}

// SearchResponse is the wire shape of a completed search.
type SearchResponse struct {
	Status string         `json:"status"`
	Data   []results.Post `json:"data"`
}
