package lifecycle

import (
	"time"

	"github.com/editorial-lifecycle-api/internal/models"
)

// DefaultSeed is served as the published collection until the first write,
// so the public site is never empty on a fresh install.
func DefaultSeed() []models.Article {
	modified := time.Date(2024, time.January, 15, 9, 0, 0, 0, time.UTC)
	return []models.Article{
		{
			ID:           "seed-welcome",
			Title:        "Welcome to the magazine",
			Slug:         "welcome-to-the-magazine",
			Author:       "Editorial Team",
			Date:         "2024-01-15",
			Content:      "<p>This is where our stories, interviews and reviews will live.</p>",
			Excerpt:      "Where our stories, interviews and reviews will live.",
			Category:     models.CategoryBlog,
			Tags:         []string{"News"},
			Comments:     []models.Comment{},
			Status:       models.StatusPublished,
			LastModified: modified,
		},
		{
			ID:           "seed-interview",
			Title:        "In conversation with our first guest",
			Slug:         "in-conversation-with-our-first-guest",
			Author:       "Editorial Team",
			Date:         "2024-01-10",
			Content:      "<p>A long-form conversation about craft, process and influences.</p>",
			Excerpt:      "A long-form conversation about craft, process and influences.",
			Category:     models.CategoryInterview,
			Tags:         []string{"Interview", "Process"},
			Comments:     []models.Comment{},
			Status:       models.StatusPublished,
			LastModified: modified,
		},
		{
			ID:           "seed-review",
			Title:        "Review: the records that shaped this year",
			Slug:         "review-the-records-that-shaped-this-year",
			Author:       "Editorial Team",
			Date:         "2024-01-05",
			Content:      "<p>Our picks, and why they stayed on repeat.</p>",
			Excerpt:      "Our picks, and why they stayed on repeat.",
			Category:     models.CategoryReview,
			Tags:         []string{"Review", "Music"},
			Comments:     []models.Comment{},
			Status:       models.StatusPublished,
			LastModified: modified,
		},
	}
}
