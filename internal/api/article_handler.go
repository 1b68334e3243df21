package api

import (
	"net/http"
	"strings"

	"github.com/editorial-lifecycle-api/internal/lifecycle"
	"github.com/editorial-lifecycle-api/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// ArticleHandler serves the public site
type ArticleHandler struct {
	store *lifecycle.Store
	log   zerolog.Logger
}

// NewArticleHandler creates a new ArticleHandler
func NewArticleHandler(store *lifecycle.Store, log zerolog.Logger) *ArticleHandler {
	return &ArticleHandler{
		store: store,
		log:   log.With().Str("handler", "article").Logger(),
	}
}

// ListArticles handles GET /v1/articles?tag=...&category=...
func (h *ArticleHandler) ListArticles(c *gin.Context) {
	ctx := c.Request.Context()
	tag := strings.TrimSpace(c.Query("tag"))
	category := strings.TrimSpace(c.Query("category"))

	var articles []models.Article
	switch {
	case category != "":
		articles = h.store.ListByCategory(ctx, category)
	case tag != "":
		articles = h.store.ListByTag(ctx, tag)
	default:
		articles = h.store.ListPublished(ctx)
	}

	if category != "" && tag != "" {
		filtered := articles[:0]
		for _, a := range articles {
			if a.HasTag(tag) {
				filtered = append(filtered, a)
			}
		}
		articles = filtered
	}

	c.JSON(http.StatusOK, gin.H{
		"articles": articles,
		"count":    len(articles),
	})
}

// GetArticle handles GET /v1/articles/:slug
func (h *ArticleHandler) GetArticle(c *gin.Context) {
	article, err := h.store.FindBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, article)
}

// AddComment handles POST /v1/articles/:slug/comments
func (h *ArticleHandler) AddComment(c *gin.Context) {
	ctx := c.Request.Context()

	var req struct {
		Author string `json:"author"`
		Body   string `json:"body"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "invalid request body"})
		return
	}

	article, err := h.store.FindBySlug(ctx, c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}

	comment, err := h.store.AddComment(ctx, article.ID, models.Comment{Author: req.Author, Body: req.Body})
	if err != nil {
		respondError(c, err)
		return
	}

	h.log.Info().Str("article_id", article.ID).Str("comment_id", comment.ID).Msg("Comment added")
	c.JSON(http.StatusCreated, gin.H{
		"ok":      true,
		"message": "Comment added",
		"comment": comment,
	})
}
