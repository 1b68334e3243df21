package lifecycle

import (
	"sort"
	"strings"
	"time"

	"github.com/editorial-lifecycle-api/internal/models"
)

// epochZero is where unparsable display dates sort: after every real date
// in a newest-first listing.
var epochZero = time.Unix(0, 0).UTC()

var displayDateLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02",
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"January 2, 2006",
	"Jan 2, 2006",
}

// ParseDisplayDate parses an article's display date. Empty or unparsable
// values return the Unix epoch.
func ParseDisplayDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return epochZero
	}
	for _, layout := range displayDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return epochZero
}

// SortPublished orders by display date, newest first. Equal dates keep
// their relative order.
func SortPublished(records []models.Article) {
	keys := make([]time.Time, len(records))
	for i := range records {
		keys[i] = ParseDisplayDate(records[i].Date)
	}
	sort.Stable(byKey{records: records, keys: keys, less: func(a, b time.Time) bool { return a.After(b) }})
}

// SortDrafts orders by last modification, most recent first.
func SortDrafts(records []models.Article) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].LastModified.After(records[j].LastModified)
	})
}

// SortScheduled orders by publish time, soonest first. Records without a
// publish time come first since they are already due.
func SortScheduled(records []models.Article) {
	sort.SliceStable(records, func(i, j int) bool {
		return scheduledAt(records[i]).Before(scheduledAt(records[j]))
	})
}

func sortCollection(status models.Status, records []models.Article) {
	switch status {
	case models.StatusPublished:
		SortPublished(records)
	case models.StatusDraft:
		SortDrafts(records)
	case models.StatusScheduled:
		SortScheduled(records)
	}
}

func scheduledAt(a models.Article) time.Time {
	if a.ScheduledAt == nil {
		return time.Time{}
	}
	return *a.ScheduledAt
}

// byKey sorts records by precomputed keys so each date is parsed once.
type byKey struct {
	records []models.Article
	keys    []time.Time
	less    func(a, b time.Time) bool
}

func (b byKey) Len() int           { return len(b.records) }
func (b byKey) Less(i, j int) bool { return b.less(b.keys[i], b.keys[j]) }
func (b byKey) Swap(i, j int) {
	b.records[i], b.records[j] = b.records[j], b.records[i]
	b.keys[i], b.keys[j] = b.keys[j], b.keys[i]
}
