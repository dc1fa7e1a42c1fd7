package routes

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"social-search-platform/middleware"
	"social-search-platform/services"
	"social-search-platform/utils"
)

// SetupHistoryRoutes exposes the search history page's data.
func SetupHistoryRoutes(router *gin.Engine, authMW *middleware.AuthMiddleware, history *services.HistoryService) {
	api := router.Group("/api")
	api.Use(authMW.RequireAuth())

	api.GET("/history", func(c *gin.Context) {
		userID := middleware.GetUserID(c)
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

		entries, err := history.List(c.Request.Context(), userID, limit)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to load search history", nil)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"history": entries,
			"count":   len(entries),
		})
	})

	api.DELETE("/history/:id", func(c *gin.Context) {
		userID := middleware.GetUserID(c)

		err := history.Delete(c.Request.Context(), userID, c.Param("id"))
		if errors.Is(err, services.ErrHistoryNotFound) {
			utils.RespondWithError(c, http.StatusNotFound, "history_not_found", "History entry not found", nil)
			return
		}
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to delete history entry", nil)
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "deleted"})
	})
}
