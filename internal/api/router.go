package api

import (
	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"freight-ops-backend/config"
	"freight-ops-backend/internal/dashboard"
	"freight-ops-backend/internal/mw"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(cfg config.ServerConfig, svc *dashboard.Service, db *gorm.DB, webpushOptions *webpush.Options) *gin.Engine {
	r := gin.Default()

	handler := NewHandler(svc, db, webpushOptions)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)

	// The view only changes on a tick or a mutation, so the cache is flushed
	// then. A GET still rendering the old view when the flush lands is not stored.
	responses := mw.NewResponseCache(cache.New(cfg.CacheTTL, 2*cfg.CacheTTL))
	caching := mw.Cache(responses, cfg.CacheTTL)
	svc.OnTick(responses.Flush)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.GET("/loads", caching, handler.GetLoads)
		api.GET("/attention", caching, handler.GetAttention)

		api.GET("/actions", caching, handler.GetActions)
		api.POST("/actions/:id/done", handler.PostActionDone)
		api.POST("/actions/:id/snooze", handler.PostActionSnooze)
		api.POST("/actions/:id/reopen", handler.PostActionReopen)

		api.GET("/notifications", caching, handler.GetNotifications)
		api.POST("/notifications/ack", handler.PostAckAllNotifications)
		api.POST("/notifications/:id/ack", handler.PostAckNotification)

		api.GET("/contacts", handler.GetContacts)
		api.POST("/contacts", handler.PostContact)
		api.GET("/contacts/latest", handler.GetLatestContact)

		api.POST("/refresh", handler.PostRefresh)

		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
