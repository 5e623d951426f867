package routes

import (
	"github.com/damoang/angple-wiki/internal/config"
	"github.com/damoang/angple-wiki/internal/handler"
	"github.com/damoang/angple-wiki/internal/middleware"
	"github.com/damoang/angple-wiki/pkg/jwt"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Handlers groups the API handlers mounted under /api
type Handlers struct {
	Auth        *handler.AuthHandler
	Page        *handler.PageHandler
	PendingEdit *handler.PendingEditHandler
	Invitation  *handler.InvitationHandler
	Settings    *handler.SettingsHandler
	User        *handler.UserHandler
	Search      *handler.SearchHandler
	WS          *handler.WSHandler
}

// Setup configures all API routes. redisClient may be nil.
func Setup(router *gin.Engine, h Handlers, jwtManager *jwt.Manager, redisClient *redis.Client, cfg *config.Config) {
	api := router.Group("/api")
	if cfg.RateLimit.Enabled {
		limit := middleware.DefaultRateLimitConfig()
		if cfg.RateLimit.RequestsPerMinute > 0 {
			limit.RequestsPerMinute = cfg.RateLimit.RequestsPerMinute
		}
		api.Use(middleware.RateLimit(redisClient, limit))
	}

	authed := middleware.JWTAuth(jwtManager)
	optional := middleware.OptionalJWTAuth(jwtManager)
	editor := middleware.RequireEditor()
	admin := middleware.RequireAdmin()

	var strict gin.HandlerFunc = func(c *gin.Context) { c.Next() }
	if cfg.RateLimit.Enabled {
		strict = middleware.RateLimit(redisClient, middleware.AuthRateLimitConfig())
	}

	// Authentication
	auth := api.Group("/auth")
	auth.POST("/login", strict, h.Auth.Login)
	auth.POST("/register", strict, h.Auth.Register)
	auth.GET("/me", authed, h.Auth.Me)

	// Pages. Static segments are registered alongside :slug; pkg/slug reserves them.
	pages := api.Group("/pages")
	pages.GET("", optional, h.Page.List)
	pages.GET("/rejections", authed, admin, h.Page.Rejections)
	pages.GET("/unpublished/list", authed, admin, h.Page.ListUnpublished)
	pages.PUT("/order/:slug", authed, admin, h.Page.Reorder)
	pages.GET("/:slug", optional, h.Page.Get)
	pages.GET("/:slug/revisions", optional, h.Page.Revisions)
	pages.POST("", authed, editor, h.Page.Create)
	pages.PUT("/:slug", authed, editor, h.Page.Update)
	pages.DELETE("/:slug", authed, admin, h.Page.Delete)
	pages.POST("/:slug/publish", authed, admin, h.Page.Publish)
	pages.POST("/:slug/reject", authed, admin, h.Page.Reject)

	// Pending edits
	edits := api.Group("/pending-edits", authed, editor)
	edits.GET("", h.PendingEdit.List)
	edits.GET("/:id", h.PendingEdit.Get)
	edits.POST("", h.PendingEdit.Submit)
	edits.DELETE("/:id", h.PendingEdit.Delete)
	edits.POST("/:id/approve", admin, h.PendingEdit.Approve)
	edits.POST("/:id/reject", admin, h.PendingEdit.Reject)

	// Invitations
	invitations := api.Group("/invitations")
	invitations.GET("/validate/:token", strict, h.Invitation.Validate)
	invitations.GET("", authed, admin, h.Invitation.List)
	invitations.POST("", authed, admin, h.Invitation.Create)
	invitations.DELETE("/:id", authed, admin, h.Invitation.Revoke)

	// Settings
	settings := api.Group("/settings")
	settings.GET("/public/:key", h.Settings.Public)
	settings.GET("", authed, admin, h.Settings.List)
	settings.POST("/test-smtp", authed, admin, h.Settings.TestSMTP)
	settings.POST("/test-webhook", authed, admin, h.Settings.TestWebhook)
	settings.GET("/:key", authed, admin, h.Settings.Get)
	settings.PUT("/:key", authed, admin, h.Settings.Upsert)
	settings.DELETE("/:key", authed, admin, h.Settings.Delete)

	// Users
	users := api.Group("/users", authed, admin)
	users.GET("", h.User.List)
	users.POST("", h.User.Create)
	users.PUT("/:id/role", h.User.ChangeRole)
	users.DELETE("/:id", h.User.Delete)

	api.GET("/search", optional, h.Search.Search)

	// Review events
	api.GET("/ws/reviews", authed, editor, h.WS.Connect)
}
