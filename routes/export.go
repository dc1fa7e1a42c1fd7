package routes

import (
	"errors"

	"github.com/gin-gonic/gin"

	"social-search-platform/internal/logger"
	"social-search-platform/internal/results"
	"social-search-platform/middleware"
	"social-search-platform/models"
	"social-search-platform/services"
	"social-search-platform/utils"
)

// SetupExportRoutes serves stored result sets as downloadable files. The
// same filter and sort query parameters as the results endpoint apply, so
// the download matches the current dashboard view.
func SetupExportRoutes(router *gin.Engine, authMW *middleware.AuthMiddleware, store *services.ResultStore, export *services.ExportService) {
	api := router.Group("/api")
	api.Use(authMW.RequireAuth())

	api.GET("/export/:id", func(c *gin.Context) {
		userID := middleware.GetUserID(c)

		set, err := store.Get(c.Request.Context(), userID, c.Param("id"))
		if err != nil {
			if errors.Is(err, services.ErrResultNotFound) {
				utils.RespondWithNotFound(c, "Result set not found")
				return
			}
			utils.RespondWithInternalError(c, "Failed to load result set", nil)
			return
		}

		if set.Status != models.ResultStatusCompleted {
			utils.RespondWithError(c, 409, "result_not_ready", "This result set is not completed yet.", nil)
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

		posts := results.Sort(results.Filter(set.Posts, criteria), sortCfg)

		format := c.DefaultQuery("format", "excel")
		if err := export.StreamExport(c, set, posts, format); err != nil {
			logger.Error("Export failed", "user_id", userID, "format", format, "error", err)
			utils.RespondWithBadRequest(c, "Export failed", gin.H{"error": err.Error()})
		}
	})
}
