package models

import (
	"strings"
	"time"
)

// Status is the lifecycle stage of an article.
type Status string

const (
	StatusPublished Status = "published"
	StatusDraft     Status = "draft"
	StatusScheduled Status = "scheduled"
)

// Statuses lists every lifecycle stage in store search order.
var Statuses = []Status{StatusPublished, StatusDraft, StatusScheduled}

// Valid reports whether s is a known lifecycle stage.
func (s Status) Valid() bool {
	switch s {
	case StatusPublished, StatusDraft, StatusScheduled:
		return true
	}
	return false
}

// Category is the closed set of content kinds shown on the site.
type Category string

const (
	CategoryBlog      Category = "Blog"
	CategoryInterview Category = "Interview"
	CategoryReview    Category = "Review"
	CategoryResource  Category = "Resource"
)

// Categories lists every valid category.
var Categories = []Category{CategoryBlog, CategoryInterview, CategoryReview, CategoryResource}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory matches s against the known categories ignoring case.
func ParseCategory(s string) (Category, bool) {
	s = strings.TrimSpace(s)
	for _, c := range Categories {
		if strings.EqualFold(string(c), s) {
			return c, true
		}
	}
	return "", false
}

// Article is one piece of content at any lifecycle stage.
type Article struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Slug         string     `json:"slug"`
	Author       string     `json:"author,omitempty"`
	Date         string     `json:"date"`
	Content      string     `json:"content"`
	Excerpt      string     `json:"excerpt"`
	Image        string     `json:"image,omitempty"`
	ImageCaption string     `json:"image_caption,omitempty"`
	Category     Category   `json:"category"`
	Tags         []string   `json:"tags"`
	Comments     []Comment  `json:"comments"`
	Status       Status     `json:"status"`
	ScheduledAt  *time.Time `json:"scheduled_at,omitempty"`
	LastModified time.Time  `json:"last_modified"`
}

// Clone returns a deep copy so callers never share slices with the store.
func (a Article) Clone() Article {
	out := a
	if a.Tags != nil {
		out.Tags = append([]string(nil), a.Tags...)
	}
	if a.Comments != nil {
		out.Comments = append([]Comment(nil), a.Comments...)
	}
	if a.ScheduledAt != nil {
		at := *a.ScheduledAt
		out.ScheduledAt = &at
	}
	return out
}

// HasTag reports whether the article carries tag, compared case-insensitively.
func (a Article) HasTag(tag string) bool {
	tag = strings.TrimSpace(tag)
	for _, t := range a.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// NormalizeTags trims tags, drops empties and removes case-insensitive
// duplicates, keeping the first spelling seen.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		key := strings.ToLower(t)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	return out
}

// CloneArticles deep-copies a collection.
func CloneArticles(in []Article) []Article {
	out := make([]Article, len(in))
	for i, a := range in {
		out[i] = a.Clone()
	}
	return out
}
