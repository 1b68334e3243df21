package lifecycle

import (
	"context"
	"strings"

	"github.com/editorial-lifecycle-api/internal/models"
)

// Get looks id up in published, drafts and scheduled, in that order.
func (s *Store) Get(ctx context.Context, id string) (models.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, status := range models.Statuses {
		records := s.read(ctx, status)
		if idx := indexOf(records, id); idx >= 0 {
			return records[idx], nil
		}
	}
	return models.Article{}, ErrNotFound
}

// FindBySlug returns the published record with slug.
func (s *Store) FindBySlug(ctx context.Context, slug string) (models.Article, error) {
	slug = strings.TrimSpace(slug)
	for _, rec := range s.ListPublished(ctx) {
		if rec.Slug == slug {
			return rec, nil
		}
	}
	return models.Article{}, ErrNotFound
}

// ListByTag returns published records carrying tag, ignoring case.
func (s *Store) ListByTag(ctx context.Context, tag string) []models.Article {
	out := []models.Article{}
	for _, rec := range s.ListPublished(ctx) {
		if rec.HasTag(tag) {
			out = append(out, rec)
		}
	}
	return out
}

// ListByCategory returns published records in category, ignoring case. An
// unknown category matches nothing.
func (s *Store) ListByCategory(ctx context.Context, category string) []models.Article {
	out := []models.Article{}
	c, ok := models.ParseCategory(category)
	if !ok {
		return out
	}
	for _, rec := range s.ListPublished(ctx) {
		if rec.Category == c {
			out = append(out, rec)
		}
	}
	return out
}
