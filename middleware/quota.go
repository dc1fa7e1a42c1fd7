package middleware

import (
	"context"
	"net/http"

	"social-search-platform/internal/billing"
	"social-search-platform/internal/logger"
	"social-search-platform/internal/telemetry"
	"social-search-platform/utils"

	"github.com/gin-gonic/gin"
)

// UsageCounter is the slice of the usage service the quota gate needs.
type UsageCounter interface {
	Record(ctx context.Context, userID, requestType string) error
	CountToday(ctx context.Context, userID string) (int, error)
}

// SnapshotSource resolves the caller's latest subscription snapshot.
type SnapshotSource interface {
	SnapshotFor(ctx context.Context, userID string) (*billing.Snapshot, error)
}

// QuotaMiddleware gates billable search actions on the caller's plan
// limits. It resolves the entitlement from the subscription snapshot and
// the current-period usage count before the handler runs, and records one
// usage event after the handler succeeds.
//
// The check and the consume are two steps with no lock between them:
// concurrent searches from the same user can both pass the check before
// either usage event lands. Quota enforcement here is eventual, not
// strict, which is acceptable for a per-day search allowance.
type QuotaMiddleware struct {
	usage         UsageCounter
	subscriptions SnapshotSource
	metrics       *telemetry.Metrics
}

func NewQuotaMiddleware(usage UsageCounter, subscriptions SnapshotSource, metrics *telemetry.Metrics) *QuotaMiddleware {
	return &QuotaMiddleware{
		usage:         usage,
		subscriptions: subscriptions,
		metrics:       metrics,
	}
}

// RequireSearchQuota denies the request with 429 when the caller has
// exhausted today's searches, and consumes one search otherwise.
func (q *QuotaMiddleware) RequireSearchQuota(requestType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := GetUserID(c)
		if userID == "" {
			utils.RespondWithUnauthorized(c, "Authentication required for search")
			c.Abort()
			return
		}

		ent := q.resolve(c, userID)
		if ent.HasReachedLimit {
			if q.metrics != nil {
				q.metrics.RecordQuotaDenial(ent.PlanName)
			}
			utils.RespondWithError(c, http.StatusTooManyRequests,
				"search_limit_reached",
				"You have reached your search limit for the current period.",
				gin.H{
					"used":      ent.UsedSearches,
					"max":       ent.MaxSearches,
					"plan_name": ent.PlanName,
				})
			c.Abort()
			return
		}

		c.Set("entitlement", ent)
		c.Next()

		// Consume only when the search actually ran. A failed scrape
		// must not burn quota.
		if c.Writer.Status() < http.StatusBadRequest {
			if err := q.usage.Record(c.Request.Context(), userID, requestType); err != nil {
				logger.Error("failed to record usage event", "user_id", userID, "error", err)
			}
		}
	}
}

// RequireBulkSearch rejects callers whose plan does not include bulk
// search.
func (q *QuotaMiddleware) RequireBulkSearch() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := GetUserID(c)
		if userID == "" {
			utils.RespondWithUnauthorized(c, "Authentication required for search")
			c.Abort()
			return
		}

		ent := q.resolve(c, userID)
		if !ent.BulkSearch {
			utils.RespondWithForbidden(c, "Bulk search is not included in your plan. Please upgrade to use it.")
			c.Abort()
			return
		}

		c.Set("entitlement", ent)
		c.Next()
	}
}

// resolve computes the caller's entitlement. Subscription lookup failures
// degrade to the free tier instead of failing the request.
func (q *QuotaMiddleware) resolve(c *gin.Context, userID string) billing.Entitlement {
	snapshot, err := q.subscriptions.SnapshotFor(c.Request.Context(), userID)
	if err != nil {
		logger.Warn("subscription lookup failed, assuming free tier", "user_id", userID, "error", err)
		snapshot = nil
	}

	used, err := q.usage.CountToday(c.Request.Context(), userID)
	if err != nil {
		logger.Error("usage count failed", "user_id", userID, "error", err)
		used = 0
	}

	return billing.Resolve(snapshot, used)
}

// GetEntitlement returns the entitlement resolved by the quota middleware
// for this request, or a free-tier default when none was set.
func GetEntitlement(c *gin.Context) billing.Entitlement {
	if v, exists := c.Get("entitlement"); exists {
		if ent, ok := v.(billing.Entitlement); ok {
			return ent
		}
	}
	return billing.Resolve(nil, 0)
}
