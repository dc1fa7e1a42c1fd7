package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"social-search-platform/internal/billing"
	"social-search-platform/internal/logger"
	"social-search-platform/middleware"
	"social-search-platform/services"
)

// SetupUsageRoutes exposes the subscription and usage views the dashboard
// renders its plan badge and usage meter from, plus an admin-only platform
// overview.
func SetupUsageRoutes(router *gin.Engine, authMW *middleware.AuthMiddleware, roleMW *middleware.RoleMiddleware, subscriptions *services.SubscriptionService, usage *services.UsageService) {
	api := router.Group("/api")
	api.Use(authMW.RequireAuth())

	admin := api.Group("/admin")
	admin.Use(roleMW.AdminGuard())
	admin.GET("/usage", func(c *gin.Context) {
		counts, err := usage.CountPlatformToday(c.Request.Context())
		if err != nil {
			logger.Error("platform usage count failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error_code": "internal_error",
				"message":    "Failed to load platform usage",
			})
			return
		}

		total := 0
		for _, n := range counts {
			total += n
		}
		c.JSON(http.StatusOK, gin.H{
			"total_today": total,
			"by_type":     counts,
		})
	})

	api.GET("/subscription", func(c *gin.Context) {
		userID := middleware.GetUserID(c)

		snapshot, err := subscriptions.SnapshotFor(c.Request.Context(), userID)
		if err != nil {
			logger.Warn("subscription lookup failed, assuming free tier", "user_id", userID, "error", err)
			snapshot = nil
		}

		used, err := usage.CountToday(c.Request.Context(), userID)
		if err != nil {
			logger.Error("usage count failed", "user_id", userID, "error", err)
			used = 0
		}

		ent := billing.Resolve(snapshot, used)
		c.JSON(http.StatusOK, ent)
	})

	api.GET("/usage", func(c *gin.Context) {
		userID := middleware.GetUserID(c)

		snapshot, err := subscriptions.SnapshotFor(c.Request.Context(), userID)
		if err != nil {
			logger.Warn("subscription lookup failed, assuming free tier", "user_id", userID, "error", err)
			snapshot = nil
		}

		usedToday, err := usage.CountToday(c.Request.Context(), userID)
		if err != nil {
			logger.Error("usage count failed", "user_id", userID, "error", err)
			usedToday = 0
		}

		usedMonth, err := usage.CountMonth(c.Request.Context(), userID)
		if err != nil {
			logger.Error("monthly usage count failed", "user_id", userID, "error", err)
			usedMonth = 0
		}

		ent := billing.Resolve(snapshot, usedToday)
		c.JSON(http.StatusOK, gin.H{
			"plan_name":         ent.PlanName,
			"tier":              ent.Tier,
			"used_today":        usedToday,
			"used_this_month":   usedMonth,
			"max_per_day":       ent.MaxSearches,
			"remaining_today":   ent.RemainingSearches(),
			"usage_percentage":  ent.UsagePercentage(),
			"has_reached_limit": ent.HasReachedLimit,
			"bulk_search":       ent.BulkSearch,
		})
	})
}
