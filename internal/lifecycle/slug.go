package lifecycle

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-slug"

	"github.com/editorial-lifecycle-api/internal/models"
)

// deriveSlug builds a slug from the title, falling back to the identifier
// when the title has nothing sluggable in it.
func deriveSlug(title, id string) string {
	s, err := slug.Normalize(strings.TrimSpace(title))
	if err != nil || s == "" {
		return id
	}
	return s
}

// takenSlugs returns the slugs used by published records other than id.
func takenSlugs(published []models.Article, id string) map[string]bool {
	taken := make(map[string]bool, len(published))
	for _, p := range published {
		if p.ID != id && p.Slug != "" {
			taken[p.Slug] = true
		}
	}
	return taken
}

// uniqueSlug returns base, or base-2, base-3, ... whichever is free first.
func uniqueSlug(base string, taken map[string]bool) string {
	if !taken[base] {
		return base
	}
	for n := 2; ; n++ {
		candidate := base + "-" + strconv.Itoa(n)
		if !taken[candidate] {
			return candidate
		}
	}
}

// assignSlug gives rec a slug that is unique among published. An explicit
// slug that collides is reported unless relaxed is set, in which case it is
// suffixed like a derived one.
func assignSlug(rec *models.Article, published []models.Article, relaxed bool) *models.ValidationError {
	taken := takenSlugs(published, rec.ID)

	rec.Slug = strings.TrimSpace(rec.Slug)
	if rec.Slug == "" {
		rec.Slug = uniqueSlug(deriveSlug(rec.Title, rec.ID), taken)
		return nil
	}
	if !taken[rec.Slug] {
		return nil
	}
	if !relaxed {
		return &models.ValidationError{Field: "slug", Message: "slug is already used by a published article", Value: rec.Slug}
	}
	rec.Slug = uniqueSlug(rec.Slug, taken)
	return nil
}
