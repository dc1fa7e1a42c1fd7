package routes

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"social-search-platform/internal/billing"
	"social-search-platform/internal/config"
	"social-search-platform/internal/logger"
	"social-search-platform/internal/queue"
	"social-search-platform/internal/results"
	"social-search-platform/internal/telemetry"
	"social-search-platform/middleware"
	"social-search-platform/models"
	"social-search-platform/services"
	"social-search-platform/utils"
)

// SearchDeps bundles what the search endpoints need. Bulk searches are
// enqueued for the worker; single searches scrape inline.
type SearchDeps struct {
	Scraper     *services.ScraperService
	Store       *services.ResultStore
	History     *services.HistoryService
	Usage       *services.UsageService
	AsynqClient *asynq.Client
	Metrics     *telemetry.Metrics
}

func SetupSearchRoutes(router *gin.Engine, cfg *config.Config, authMW *middleware.AuthMiddleware, quotaMW *middleware.QuotaMiddleware, deps SearchDeps) {
	api := router.Group("/api")
	api.Use(authMW.RequireAuth())

	search := api.Group("/search")
	search.POST("/instagram",
		quotaMW.RequireSearchQuota(models.RequestTypeInstagramSearch),
		singleSearchHandler(cfg, deps, models.PlatformInstagram))
	search.POST("/tiktok",
		quotaMW.RequireSearchQuota(models.RequestTypeTikTokSearch),
		singleSearchHandler(cfg, deps, models.PlatformTikTok))
	search.POST("/bulk", quotaMW.RequireBulkSearch(), bulkSearchHandler(cfg, deps))
	search.GET("/bulk/:id", bulkStatusHandler(deps))

	api.GET("/results/:id", resultsHandler(deps))
}

// singleSearchHandler runs one inline scrape. The quota middleware has
// already verified the caller may search; the handler caps the result
// count at the plan's per-search maximum.
func singleSearchHandler(cfg *config.Config, deps SearchDeps, platform string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.SearchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid search request", gin.H{"error": err.Error()})
			return
		}

		userID := middleware.GetUserID(c)
		ent := middleware.GetEntitlement(c)

		maxItems := req.NumberOfVideos
		if maxItems <= 0 {
			maxItems = cfg.DefaultVideoCount
		}
		if maxItems > ent.MaxResults {
			maxItems = ent.MaxResults
		}

		posts, err := deps.Scraper.ScrapeProfile(c.Request.Context(), platform, services.SearchOptions{
			Username:     req.Username,
			MaxItems:     maxItems,
			SelectedDate: req.SelectedDate,
			Location:     req.Location,
		})
		if err != nil {
			if errors.Is(err, services.ErrScraperUnavailable) {
				utils.RespondWithError(c, http.StatusServiceUnavailable,
					"scraper_unavailable", "Search is temporarily unavailable. Please try again shortly.", nil)
				return
			}
			utils.RespondWithError(c, http.StatusBadGateway,
				"scrape_failed", "Failed to fetch posts for this profile.", gin.H{"error": err.Error()})
			return
		}

		if len(posts) > ent.MaxResults {
			posts = posts[:ent.MaxResults]
		}

		if deps.Metrics != nil {
			deps.Metrics.RecordSearch(platform, ent.PlanName)
		}

		// History and result storage are best effort; the scrape result
		// is returned either way.
		if err := deps.History.Record(c.Request.Context(), userID, req.Username, platform); err != nil {
			logger.Warn("Failed to record search history", "user_id", userID, "error", err)
		}

		resultID, err := deps.Store.SaveCompleted(c.Request.Context(), userID, req.Username, platform, posts)
		if err != nil {
			logger.Warn("Failed to store result set", "user_id", userID, "error", err)
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "success",
			"result_id": resultID,
			"data":      posts,
		})
	}
}

// bulkSearchHandler enqueues one scrape task per username. Every username
// consumes one search from the day's allowance, and the whole batch is
// rejected up front when the allowance cannot cover it.
func bulkSearchHandler(cfg *config.Config, deps SearchDeps) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.BulkSearchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid bulk search request", gin.H{"error": err.Error()})
			return
		}

		userID := middleware.GetUserID(c)
		ent := middleware.GetEntitlement(c)

		if ent.MaxSearches != billing.Unlimited && len(req.Usernames) > ent.RemainingSearches() {
			utils.RespondWithError(c, http.StatusTooManyRequests,
				"search_limit_reached",
				"This batch exceeds your remaining searches for the current period.",
				gin.H{
					"requested": len(req.Usernames),
					"remaining": ent.RemainingSearches(),
					"plan_name": ent.PlanName,
				})
			return
		}

		maxItems := req.NumberOfVideos
		if maxItems <= 0 {
			maxItems = cfg.DefaultVideoCount
		}
		if maxItems > ent.MaxResults {
			maxItems = ent.MaxResults
		}

		requestType := models.RequestTypeInstagramSearch
		if req.Platform == models.PlatformTikTok {
			requestType = models.RequestTypeTikTokSearch
		}

		bulkID := uuid.NewString()
		enqueued := make([]gin.H, 0, len(req.Usernames))

		for _, username := range req.Usernames {
			resultID, err := deps.Store.CreatePending(c.Request.Context(), userID, bulkID, username, req.Platform)
			if err != nil {
				utils.RespondWithInternalError(c, "Failed to create bulk search batch", nil)
				return
			}

			task, err := queue.NewBulkSearchTask(queue.BulkSearchPayload{
				UserID:       userID,
				BulkID:       bulkID,
				ResultID:     resultID,
				Username:     username,
				Platform:     req.Platform,
				MaxItems:     maxItems,
				SelectedDate: req.SelectedDate,
				Location:     req.Location,
			})
			if err != nil {
				utils.RespondWithInternalError(c, "Failed to create bulk search batch", nil)
				return
			}

			if _, err := deps.AsynqClient.Enqueue(task); err != nil {
				if failErr := deps.Store.Fail(c.Request.Context(), resultID, "failed to enqueue"); failErr != nil {
					logger.Error("Failed to mark unenqueued result failed", "result_id", resultID, "error", failErr)
				}
				utils.RespondWithError(c, http.StatusServiceUnavailable,
					"queue_unavailable", "Bulk search is temporarily unavailable.", nil)
				return
			}

			// Each queued username is a billable search
			if err := deps.Usage.Record(c.Request.Context(), userID, requestType); err != nil {
				logger.Error("Failed to record bulk usage event", "user_id", userID, "error", err)
			}
			if err := deps.History.Record(c.Request.Context(), userID, username, req.Platform); err != nil {
				logger.Warn("Failed to record search history", "user_id", userID, "error", err)
			}

			enqueued = append(enqueued, gin.H{"username": username, "result_id": resultID})
			if deps.Metrics != nil {
				deps.Metrics.RecordSearch(req.Platform, ent.PlanName)
			}
		}

		c.JSON(http.StatusAccepted, gin.H{
			"status":   "queued",
			"bulk_id":  bulkID,
			"platform": req.Platform,
			"searches": enqueued,
		})
	}
}

// bulkStatusHandler reports the state of every row in a bulk batch.
// Posts are included only for completed rows.
func bulkStatusHandler(deps SearchDeps) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.GetUserID(c)
		bulkID := c.Param("id")

		sets, err := deps.Store.ListBulk(c.Request.Context(), userID, bulkID)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to load bulk search batch", nil)
			return
		}
		if len(sets) == 0 {
			utils.RespondWithNotFound(c, "Bulk search batch not found")
			return
		}

		pending := 0
		entries := make([]gin.H, 0, len(sets))
		for _, set := range sets {
			entry := gin.H{
				"result_id": set.ID.Hex(),
				"username":  set.Username,
				"status":    set.Status,
			}
			switch set.Status {
			case models.ResultStatusPending:
				pending++
			case models.ResultStatusCompleted:
				entry["data"] = set.Posts
			case models.ResultStatusFailed:
				entry["error"] = set.Error
			}
			entries = append(entries, entry)
		}

		status := "completed"
		if pending > 0 {
			status = "pending"
		}

		c.JSON(http.StatusOK, gin.H{
			"bulk_id":  bulkID,
			"status":   status,
			"platform": sets[0].Platform,
			"searches": entries,
		})
	}
}

// resultsHandler re-serves a stored result set through the filter, sort
// and pagination engine. Filtering and sorting run over the stored posts
// on every request; nothing is mutated.
func resultsHandler(deps SearchDeps) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.GetUserID(c)

		set, err := deps.Store.Get(c.Request.Context(), userID, c.Param("id"))
		if err != nil {
			if errors.Is(err, services.ErrResultNotFound) {
				utils.RespondWithNotFound(c, "Result set not found")
				return
			}
			utils.RespondWithInternalError(c, "Failed to load result set", nil)
			return
		}

		if set.Status != models.ResultStatusCompleted {
			c.JSON(http.StatusOK, gin.H{
				"status": set.Status,
				"error":  set.Error,
			})
			return
		}

		var criteria results.Criteria
		if err := c.ShouldBindQuery(&criteria); err != nil {
			utils.RespondWithBadRequest(c, "Invalid filter parameters", gin.H{"error": err.Error()})
			return
		}

		var sortCfg results.SortConfig
		if err := c.ShouldBindQuery(&sortCfg); err != nil {
			utils.RespondWithBadRequest(c, "Invalid sort parameters", gin.H{"error": err.Error()})
			return
		}

		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(results.DefaultPageSize)))
		if pageSize <= 0 {
			pageSize = results.DefaultPageSize
		}

		filtered := results.Filter(set.Posts, criteria)
		sorted := results.Sort(filtered, sortCfg)
		pageItems := results.Paginate(sorted, page, pageSize)
		totalPages := (len(sorted) + pageSize - 1) / pageSize

		c.JSON(http.StatusOK, gin.H{
			"status":      "success",
			"username":    set.Username,
			"platform":    set.Platform,
			"total":       len(sorted),
			"page":        page,
			"page_size":   pageSize,
			"total_pages": totalPages,
			"data":        pageItems,
		})
	}
}
