package api

import (
	"net/http"
	"time"

	"github.com/editorial-lifecycle-api/internal/lifecycle"
	"github.com/editorial-lifecycle-api/internal/models"
	"github.com/editorial-lifecycle-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// AdminHandler exposes the lifecycle operations to editors
type AdminHandler struct {
	store    *lifecycle.Store
	services *service.Services
	log      zerolog.Logger
}

// NewAdminHandler creates a new AdminHandler
func NewAdminHandler(store *lifecycle.Store, services *service.Services, log zerolog.Logger) *AdminHandler {
	return &AdminHandler{
		store:    store,
		services: services,
		log:      log.With().Str("handler", "admin").Logger(),
	}
}

// scheduleRequest is an article plus the time it should go live.
type scheduleRequest struct {
	models.Article
	PublishAt string `json:"publish_at"`
}

// ListAll handles GET /v1/admin/articles
func (h *AdminHandler) ListAll(c *gin.Context) {
	bundle := h.store.Snapshot(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"published": bundle.Published,
		"drafts":    bundle.Drafts,
		"scheduled": bundle.Scheduled,
	})
}

// GetArticle handles GET /v1/admin/articles/:id
func (h *AdminHandler) GetArticle(c *gin.Context) {
	article, err := h.store.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, article)
}

// SaveDraft handles POST /v1/admin/drafts
func (h *AdminHandler) SaveDraft(c *gin.Context) {
	var req models.Article
	if !bindArticle(c, &req) {
		return
	}

	article, err := h.store.CreateDraft(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "message": "Draft saved", "article": article})
}

// PublishDraft handles POST /v1/admin/drafts/:id/publish
func (h *AdminHandler) PublishDraft(c *gin.Context) {
	article, err := h.store.PublishDraft(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "message": "Draft published", "article": article})
}

// PublishDirectly handles POST /v1/admin/published
func (h *AdminHandler) PublishDirectly(c *gin.Context) {
	var req models.Article
	if !bindArticle(c, &req) {
		return
	}

	article, err := h.store.PublishDirectly(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "message": "Article published", "article": article})
}

// Schedule handles POST /v1/admin/scheduled
func (h *AdminHandler) Schedule(c *gin.Context) {
	var req scheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "invalid request body"})
		return
	}

	article, err := h.store.Schedule(c.Request.Context(), req.Article, req.PublishAt)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ok": true, "message": "Article scheduled", "article": article})
}

// DeleteArticle handles DELETE /v1/admin/articles/:id
func (h *AdminHandler) DeleteArticle(c *gin.Context) {
	if !h.store.DeleteRecord(c.Request.Context(), c.Param("id")) {
		respondError(c, lifecycle.ErrNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "message": "Article deleted"})
}

// Sweep handles POST /v1/admin/sweep
func (h *AdminHandler) Sweep(c *gin.Context) {
	ctx, cancel := contextWithTimeout(c, 30*time.Second)
	defer cancel()

	result := h.services.Sweeper.RunNow(ctx)
	promoted := result.Promoted
	if promoted == nil {
		promoted = []models.Article{}
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":        true,
		"message":   "Sweep completed",
		"promoted":  promoted,
		"remaining": result.Remaining,
	})
}

func bindArticle(c *gin.Context, req *models.Article) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "invalid request body"})
		return false
	}
	return true
}
