package api

import (
	"net/http"

	dispatchDelivery "mailroute-backend/internal/dispatch/delivery"
	emailDelivery "mailroute-backend/internal/email/delivery"
	threadDelivery "mailroute-backend/internal/thread/delivery"

	"github.com/gin-gonic/gin"
)

// AccountMiddleware requires an explicit account id on every call; the
// core never derives account scope from ambient state.
func AccountMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		accountID := c.GetHeader("X-Account-ID")
		if accountID == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "X-Account-ID header is required"})
			return
		}
		c.Set("accountID", accountID)
		c.Next()
	}
}

func SetupRoutes(r *gin.Engine, emailHandler *emailDelivery.EmailHandler, dispatchHandler *dispatchDelivery.DispatchHandler, threadHandler *threadDelivery.ThreadHandler) {
	api := r.Group("/api")
	{
		// Health check (no account scope required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Ingestion
		inbound := api.Group("/inbound")
		inbound.Use(AccountMiddleware())
		{
			inbound.POST("", emailHandler.IngestEmail)
		}

		// Email routes
		emails := api.Group("/emails")
		emails.Use(AccountMiddleware())
		{
			emails.GET("/:id", emailHandler.GetEmailByID)
			emails.PATCH("/:id/read", emailHandler.MarkAsRead)
			emails.PATCH("/:id/unread", emailHandler.MarkAsUnread)
			emails.POST("/:id/archive", emailHandler.ArchiveEmail)
			emails.GET("/:id/outcomes", emailHandler.GetOutcomes)
			emails.POST("/:id/route", dispatchHandler.RouteEmail)
			emails.GET("/:id/thread", threadHandler.GetThread)
		}
	}
}
