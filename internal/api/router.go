package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/editorial-lifecycle-api/internal/auth"
	"github.com/editorial-lifecycle-api/internal/backup"
	"github.com/editorial-lifecycle-api/internal/config"
	"github.com/editorial-lifecycle-api/internal/lifecycle"
	"github.com/editorial-lifecycle-api/internal/models"
	"github.com/editorial-lifecycle-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Authenticator issues admin tokens and verifies them.
type Authenticator interface {
	auth.Gate
	Login(user, password string) (string, error)
}

// Deps are the collaborators the HTTP layer drives.
type Deps struct {
	Store    *lifecycle.Store
	Services *service.Services
	Backups  *backup.Tracker
	Auth     Authenticator
}

// NewRouter creates and configures the Gin router
func NewRouter(deps Deps, cfg *config.Config, log zerolog.Logger) *gin.Engine {
	// Set Gin mode
	if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(recoveryMiddleware(log))
	router.Use(loggingMiddleware(log))
	router.Use(corsMiddleware())

	// Handlers
	articleHandler := NewArticleHandler(deps.Store, log)
	adminHandler := NewAdminHandler(deps.Store, deps.Services, log)
	exportHandler := NewExportHandler(deps.Services, deps.Backups, log)
	importHandler := NewImportHandler(deps.Services, cfg, log)
	eventsHandler := NewEventsHandler(deps.Store, log)
	authHandler := NewAuthHandler(deps.Auth, log)

	// Health check
	router.GET("/health", healthCheck)
	router.GET("/metrics", metricsHandler(deps))

	// API v1
	v1 := router.Group("/v1")
	{
		// Public site
		articles := v1.Group("/articles")
		{
			articles.GET("", articleHandler.ListArticles)
			articles.GET("/:slug", articleHandler.GetArticle)
			articles.POST("/:slug/comments", articleHandler.AddComment)
		}

		v1.POST("/auth/login", authHandler.Login)

		// Admin
		admin := v1.Group("/admin")
		admin.Use(authMiddleware(deps.Auth))
		{
			admin.GET("/articles", adminHandler.ListAll)
			admin.GET("/articles/:id", adminHandler.GetArticle)
			admin.DELETE("/articles/:id", adminHandler.DeleteArticle)
			admin.POST("/drafts", adminHandler.SaveDraft)
			admin.POST("/drafts/:id/publish", adminHandler.PublishDraft)
			admin.POST("/published", adminHandler.PublishDirectly)
			admin.POST("/scheduled", adminHandler.Schedule)
			admin.POST("/sweep", adminHandler.Sweep)

			admin.GET("/backup", exportHandler.BackupStatus)
			admin.GET("/export", exportHandler.Export)
			admin.GET("/export/:collection", exportHandler.ExportCollection)
			admin.POST("/import", importHandler.Import)

			admin.GET("/events", eventsHandler.Stream)
		}
	}

	return router
}

// healthCheck returns the health status
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"service":   "editorial-lifecycle-api",
	})
}

// metricsHandler returns collection sizes and reminder state
func metricsHandler(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		bundle := deps.Store.Snapshot(ctx)
		response := gin.H{
			"collections": gin.H{
				"published": len(bundle.Published),
				"drafts":    len(bundle.Drafts),
				"scheduled": len(bundle.Scheduled),
			},
			"timestamp": time.Now().Format(time.RFC3339),
		}
		if deps.Backups != nil {
			response["backup_due"] = deps.Backups.IsBackupDue(ctx)
		}
		if deps.Services != nil && deps.Services.Sweeper != nil {
			response["sweeper_running"] = deps.Services.Sweeper.Running()
		}
		c.JSON(http.StatusOK, response)
	}
}

// recoveryMiddleware handles panics
func recoveryMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().Interface("error", err).Msg("Panic recovered")
				c.JSON(http.StatusInternalServerError, gin.H{
					"ok":      false,
					"message": "Internal server error",
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}

// loggingMiddleware logs requests
func loggingMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		event := log.Info()
		if statusCode >= 400 {
			event = log.Warn()
		}
		if statusCode >= 500 {
			event = log.Error()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", statusCode).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Msg("Request completed")
	}
}

// corsMiddleware handles CORS
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// authMiddleware requires a valid bearer token. Browsers cannot set headers
// on an EventSource, so the token may also arrive as ?access_token=.
func authMiddleware(gate auth.Gate) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("Authorization")
		if token == "" {
			token = c.Query("access_token")
		}
		if gate == nil || strings.TrimSpace(token) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"ok": false, "message": "Unauthorized"})
			return
		}

		subject, err := gate.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"ok": false, "message": "Unauthorized"})
			return
		}

		c.Set("subject", subject)
		c.Next()
	}
}

// respondError maps store errors onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	var failure *lifecycle.ValidationFailure
	switch {
	case errors.As(err, &failure):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"ok":      false,
			"message": "Validation failed",
			"errors":  failure.Errors,
		})
	case errors.Is(err, lifecycle.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "message": "Article not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": "Internal server error"})
	}
}

// parseCollection accepts the singular or plural name of a collection.
func parseCollection(name string) (models.Status, bool) {
	switch strings.ToLower(name) {
	case "published":
		return models.StatusPublished, true
	case "draft", "drafts":
		return models.StatusDraft, true
	case "scheduled":
		return models.StatusScheduled, true
	}
	return "", false
}

// contextWithTimeout creates a context with timeout for handlers
func contextWithTimeout(c *gin.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), timeout)
}
