// Package rest provides the REST API endpoints for webhook ingestion
// and operational visibility into stored webhook events.
package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/helioshq/helios-webhooks/internal/api/middleware"
	"github.com/helioshq/helios-webhooks/internal/ratelimit"
)

// SetupRoutes configures all REST API routes.
//
// The ingestion endpoint is public: the provider authenticates each delivery
// with its signature headers, not with our operator credentials. Everything
// under /api/v1 is operator tooling and sits behind auth.
func SetupRoutes(router *gin.Engine, handler Handler, authCfg middleware.AuthConfig, guard ratelimit.Guard) {
	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// Provider-facing ingestion endpoint
	router.POST("/webhooks/clerk", middleware.RateLimit(guard), handler.IngestClerkWebhook)

	// Operator API routes
	v1 := router.Group("/api/v1")
	webhooks := v1.Group("/webhooks", middleware.Auth(authCfg))
	{
		webhooks.GET("/events/:webhook_id", handler.GetWebhookEvent)
		webhooks.POST("/events/:webhook_id/retry", handler.RetryWebhookEvent)
		webhooks.GET("/failures", handler.ListFailedWebhookEvents)
		webhooks.GET("/stats", handler.GetWebhookStats)
	}
}
