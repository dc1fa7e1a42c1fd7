package routes

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"social-search-platform/middleware"
	"social-search-platform/services"
	"social-search-platform/utils"
)

// SetupMediaRoutes resolves preview media for post URLs on demand. Kept
// separate from search because media resolution does not consume quota.
func SetupMediaRoutes(router *gin.Engine, authMW *middleware.AuthMiddleware, media *services.MediaService) {
	api := router.Group("/api")
	api.Use(authMW.RequireAuth())

	api.GET("/media/resolve", func(c *gin.Context) {
		postURL := c.Query("url")
		if postURL == "" {
			utils.RespondWithBadRequest(c, "url query parameter is required", nil)
			return
		}

		info, err := media.Resolve(c.Request.Context(), postURL)
		if err != nil {
			if errors.Is(err, services.ErrNoMedia) {
				utils.RespondWithNotFound(c, "No media found for this post")
				return
			}
			utils.RespondWithError(c, http.StatusBadGateway,
				"media_resolve_failed", "Failed to resolve media for this post.", gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, info)
	})
}
