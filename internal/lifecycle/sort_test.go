package lifecycle

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/editorial-lifecycle-api/internal/models"
)

func TestParseDisplayDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-03-05", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
		{"2024-03-05T10:30:00Z", time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC)},
		{"2024-03-05T10:30", time.Date(2024, 3, 5, 10, 30, 0, 0, time.UTC)},
		{"March 5, 2024", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
		{"  2024-03-05  ", time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)},
		{"", epochZero},
		{"next tuesday", epochZero},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.True(t, tt.want.Equal(ParseDisplayDate(tt.in)), "got %v", ParseDisplayDate(tt.in))
		})
	}
}

func TestSortScheduledMissingTimeFirst(t *testing.T) {
	later := time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC)
	sooner := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	records := []models.Article{
		{ID: "later", ScheduledAt: &later},
		{ID: "none"},
		{ID: "sooner", ScheduledAt: &sooner},
	}
	SortScheduled(records)
	assert.Equal(t, []string{"none", "sooner", "later"}, ids(records))
}

func TestUniqueSlug(t *testing.T) {
	taken := map[string]bool{"post": true, "post-2": true}
	assert.Equal(t, "post-3", uniqueSlug("post", taken))
	assert.Equal(t, "fresh", uniqueSlug("fresh", taken))
}

func TestAssignSlug(t *testing.T) {
	published := []models.Article{{ID: "a", Slug: "taken"}}

	t.Run("explicit collision is rejected when strict", func(t *testing.T) {
		rec := models.Article{ID: "b", Slug: "taken"}
		verr := assignSlug(&rec, published, false)
		if assert.NotNil(t, verr) {
			assert.Equal(t, "slug", verr.Field)
		}
	})

	t.Run("explicit collision is suffixed when relaxed", func(t *testing.T) {
		rec := models.Article{ID: "b", Slug: "taken"}
		assert.Nil(t, assignSlug(&rec, published, true))
		assert.Equal(t, "taken-2", rec.Slug)
	})

	t.Run("a record keeps its own slug", func(t *testing.T) {
		rec := models.Article{ID: "a", Slug: "taken"}
		assert.Nil(t, assignSlug(&rec, published, false))
		assert.Equal(t, "taken", rec.Slug)
	})

	t.Run("empty title falls back to id", func(t *testing.T) {
		rec := models.Article{ID: "c"}
		assert.Nil(t, assignSlug(&rec, published, false))
		assert.Equal(t, "c", rec.Slug)
	})
}
