// Package lifecycle owns the published, draft and scheduled article
// collections. No other package reads or writes their storage keys.
package lifecycle

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/editorial-lifecycle-api/internal/kv"
	"github.com/editorial-lifecycle-api/internal/models"
	"github.com/editorial-lifecycle-api/internal/notify"
	"github.com/editorial-lifecycle-api/internal/validation"
)

// Storage keys, one per collection.
const (
	KeyPublished = "published-articles"
	KeyDrafts    = "draft-articles"
	KeyScheduled = "scheduled-articles"
)

var (
	// ErrNotFound reports an identifier absent from the collection searched.
	ErrNotFound = errors.New("lifecycle: record not found")
	// ErrInvalid matches every *ValidationFailure.
	ErrInvalid = errors.New("lifecycle: validation failed")
)

// ValidationFailure lists why a record was rejected. Nothing was written.
type ValidationFailure struct {
	Errors []models.ValidationError
}

func (e *ValidationFailure) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		if fe.Field == "" {
			parts = append(parts, fe.Message)
			continue
		}
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return ErrInvalid.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationFailure) Is(target error) bool {
	return target == ErrInvalid
}

// SweepResult reports what one sweep promoted.
type SweepResult struct {
	Promoted  []models.Article
	Remaining int
}

// Store is the article lifecycle store. Every operation reads the
// collections it needs, mutates them and writes them back while holding one
// lock, so operations never interleave. Change notifications are delivered
// after the lock is released; listeners may call back into the store.
type Store struct {
	mu    sync.Mutex
	kv    *kv.Adapter
	bus   *notify.Bus
	now   func() time.Time
	newID func() string
	seed  []models.Article
	log   zerolog.Logger
}

// Option customises a Store.
type Option func(*Store)

// WithClock overrides the store clock, used mainly for tests.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithIDGenerator overrides how identifiers are minted for new records.
func WithIDGenerator(generator func() string) Option {
	return func(s *Store) {
		if generator != nil {
			s.newID = generator
		}
	}
}

// WithSeed replaces the records served while the published collection has
// never been written. nil disables seeding.
func WithSeed(records []models.Article) Option {
	return func(s *Store) {
		s.seed = models.CloneArticles(records)
	}
}

// WithBus shares an existing notification bus.
func WithBus(bus *notify.Bus) Option {
	return func(s *Store) {
		if bus != nil {
			s.bus = bus
		}
	}
}

// NewStore creates a Store persisting through adapter.
func NewStore(adapter *kv.Adapter, log zerolog.Logger, opts ...Option) *Store {
	s := &Store{
		kv:    adapter,
		now:   time.Now,
		newID: uuid.NewString,
		seed:  DefaultSeed(),
		log:   log.With().Str("component", "lifecycle").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.bus == nil {
		s.bus = notify.NewBus(log)
	}
	return s
}

// Subscribe registers a change listener and returns its unsubscribe func.
func (s *Store) Subscribe(l notify.Listener) func() {
	return s.bus.Subscribe(l)
}

// ListPublished returns published records, newest display date first.
func (s *Store) ListPublished(ctx context.Context) []models.Article {
	return s.list(ctx, models.StatusPublished)
}

// ListDrafts returns drafts, most recently modified first.
func (s *Store) ListDrafts(ctx context.Context) []models.Article {
	return s.list(ctx, models.StatusDraft)
}

// ListScheduled returns scheduled records, soonest first.
func (s *Store) ListScheduled(ctx context.Context) []models.Article {
	return s.list(ctx, models.StatusScheduled)
}

func (s *Store) list(ctx context.Context, status models.Status) []models.Article {
	s.mu.Lock()
	records := s.read(ctx, status)
	s.mu.Unlock()

	sortCollection(status, records)
	return records
}

// UpsertPublished replaces the published collection.
func (s *Store) UpsertPublished(ctx context.Context, records []models.Article) {
	s.upsert(ctx, models.StatusPublished, records)
}

// UpsertDrafts replaces the draft collection.
func (s *Store) UpsertDrafts(ctx context.Context, records []models.Article) {
	s.upsert(ctx, models.StatusDraft, records)
}

// UpsertScheduled replaces the scheduled collection.
func (s *Store) UpsertScheduled(ctx context.Context, records []models.Article) {
	s.upsert(ctx, models.StatusScheduled, records)
}

// upsert replaces one collection wholesale. The collection claims every
// identifier it is given: the same identifiers are removed from the other
// two collections in the same write. Within records the first occurrence of
// an identifier wins. Published records always leave with a slug unique in
// the collection; a missing one is derived, a repeated one is suffixed.
func (s *Store) upsert(ctx context.Context, status models.Status, records []models.Article) {
	incoming := make([]models.Article, 0, len(records))
	claimed := make(map[string]bool, len(records))
	for _, r := range records {
		rec := r.Clone()
		if rec.ID == "" {
			rec.ID = s.newID()
		}
		if claimed[rec.ID] {
			continue
		}
		claimed[rec.ID] = true
		rec.Status = status
		if status != models.StatusScheduled {
			rec.ScheduledAt = nil
		}
		rec.Tags = models.NormalizeTags(rec.Tags)
		if status == models.StatusPublished {
			assignSlug(&rec, incoming, true)
		}
		incoming = append(incoming, rec)
	}

	s.mu.Lock()
	cols := s.load(ctx)
	cols.set(status, incoming)
	changed := []models.Status{status}
	for _, other := range models.Statuses {
		if other == status {
			continue
		}
		if kept, removed := removeIDs(cols.get(other), claimed); removed > 0 {
			cols.set(other, kept)
			changed = append(changed, other)
		}
	}
	s.persist(ctx, cols, changed...)
	s.mu.Unlock()

	s.emit("upsert_"+string(status), len(incoming), changed...)
}

// CreateDraft saves rec as a draft, minting an identifier when it has none.
// An existing draft with the same identifier is updated in place; the same
// identifier in published or scheduled is moved to drafts.
func (s *Store) CreateDraft(ctx context.Context, rec models.Article) (models.Article, error) {
	rec = rec.Clone()
	if rec.ID == "" {
		rec.ID = s.newID()
	}
	rec.Status = models.StatusDraft
	rec.ScheduledAt = nil
	rec.Tags = models.NormalizeTags(rec.Tags)

	s.mu.Lock()
	rec.LastModified = s.now()
	cols := s.load(ctx)
	carryComments(&rec, cols)
	changed := cols.place(models.StatusDraft, rec)
	s.persist(ctx, cols, changed...)
	s.mu.Unlock()

	s.log.Debug().Str("id", rec.ID).Msg("Draft saved")
	s.emit("draft_saved", 1, changed...)
	return rec.Clone(), nil
}

// PublishDirectly publishes rec without going through drafts. Title and
// content are required; an explicit slug must be free among published
// records, a missing one is derived from the title.
func (s *Store) PublishDirectly(ctx context.Context, rec models.Article) (models.Article, error) {
	rec = rec.Clone()
	if errs := validation.NewValidator().ValidateForPublish(&rec); len(errs) > 0 {
		return models.Article{}, &ValidationFailure{Errors: errs}
	}
	if rec.ID == "" {
		rec.ID = s.newID()
	}
	rec.Status = models.StatusPublished
	rec.ScheduledAt = nil
	rec.Tags = models.NormalizeTags(rec.Tags)

	s.mu.Lock()
	now := s.now()
	cols := s.load(ctx)
	if fe := assignSlug(&rec, cols.published, false); fe != nil {
		s.mu.Unlock()
		return models.Article{}, &ValidationFailure{Errors: []models.ValidationError{*fe}}
	}
	if strings.TrimSpace(rec.Date) == "" {
		rec.Date = formatDate(now)
	}
	rec.LastModified = now
	carryComments(&rec, cols)
	changed := cols.place(models.StatusPublished, rec)
	s.persist(ctx, cols, changed...)
	s.mu.Unlock()

	s.log.Info().Str("id", rec.ID).Str("slug", rec.Slug).Msg("Article published")
	s.emit("published", 1, changed...)
	return rec.Clone(), nil
}

// PublishDraft moves the draft with identifier id to published, stamping
// today's display date. Drafts and published are written together.
func (s *Store) PublishDraft(ctx context.Context, id string) (models.Article, error) {
	s.mu.Lock()
	cols := s.load(ctx)
	idx := indexOf(cols.drafts, id)
	if idx < 0 {
		s.mu.Unlock()
		s.log.Warn().Str("id", id).Msg("Publish requested for unknown draft")
		return models.Article{}, ErrNotFound
	}

	now := s.now()
	rec := cols.drafts[idx].Clone()
	rec.Status = models.StatusPublished
	rec.ScheduledAt = nil
	rec.Date = formatDate(now)
	rec.LastModified = now
	assignSlug(&rec, cols.published, true)

	changed := cols.place(models.StatusPublished, rec)
	s.persist(ctx, cols, changed...)
	s.mu.Unlock()

	s.log.Info().Str("id", rec.ID).Str("slug", rec.Slug).Msg("Draft published")
	s.emit("draft_published", 1, changed...)
	return rec.Clone(), nil
}

// Schedule queues rec for publication at publishAt. See ParsePublishAt for
// accepted formats; times before the current minute are rejected.
func (s *Store) Schedule(ctx context.Context, rec models.Article, publishAt string) (models.Article, error) {
	rec = rec.Clone()
	errs := validation.NewValidator().ValidateForPublish(&rec)

	now := s.now()
	at, err := ParsePublishAt(publishAt)
	switch {
	case err != nil:
		errs = append(errs, models.ValidationError{Field: "publish_at", Message: "publish_at is not a valid date", Value: publishAt})
	case at.Before(now.Truncate(time.Minute)):
		errs = append(errs, models.ValidationError{Field: "publish_at", Message: "publish_at must not be in the past", Value: publishAt})
	}
	if len(errs) > 0 {
		return models.Article{}, &ValidationFailure{Errors: errs}
	}

	if rec.ID == "" {
		rec.ID = s.newID()
	}
	if strings.TrimSpace(rec.Slug) == "" {
		rec.Slug = deriveSlug(rec.Title, rec.ID)
	}
	rec.Status = models.StatusScheduled
	rec.ScheduledAt = &at
	rec.LastModified = now
	rec.Tags = models.NormalizeTags(rec.Tags)

	s.mu.Lock()
	cols := s.load(ctx)
	carryComments(&rec, cols)
	changed := cols.place(models.StatusScheduled, rec)
	s.persist(ctx, cols, changed...)
	s.mu.Unlock()

	s.log.Info().Str("id", rec.ID).Time("publish_at", at).Msg("Article scheduled")
	s.emit("scheduled", 1, changed...)
	return rec.Clone(), nil
}

// DeleteRecord removes id from the first collection holding it, searching
// published, then drafts, then scheduled. It reports whether anything was
// removed; an unknown id is a no-op and notifies nobody.
func (s *Store) DeleteRecord(ctx context.Context, id string) bool {
	s.mu.Lock()
	for _, status := range models.Statuses {
		records := s.read(ctx, status)
		idx := indexOf(records, id)
		if idx < 0 {
			continue
		}
		records = append(records[:idx], records[idx+1:]...)
		sortCollection(status, records)
		s.kv.Write(ctx, keyFor(status), records)
		s.mu.Unlock()

		s.log.Info().Str("id", id).Str("collection", string(status)).Msg("Article deleted")
		s.emit("deleted", 1, status)
		return true
	}
	s.mu.Unlock()
	return false
}

// SweepDueScheduled promotes every scheduled record whose publish time is
// at or before now. Both collections are written together and one
// notification covers the batch. Calling it again with the same now finds
// nothing to do.
func (s *Store) SweepDueScheduled(ctx context.Context, now time.Time) SweepResult {
	s.mu.Lock()
	scheduled := s.read(ctx, models.StatusScheduled)

	var due, pending []models.Article
	for _, rec := range scheduled {
		if rec.ScheduledAt == nil || !rec.ScheduledAt.After(now) {
			due = append(due, rec)
		} else {
			pending = append(pending, rec)
		}
	}
	if len(due) == 0 {
		s.mu.Unlock()
		return SweepResult{Remaining: len(scheduled)}
	}

	published := s.read(ctx, models.StatusPublished)
	promoted := make([]models.Article, 0, len(due))
	for _, rec := range due {
		if rec.ScheduledAt != nil && strings.TrimSpace(rec.Date) == "" {
			rec.Date = formatDate(*rec.ScheduledAt)
		}
		rec.ScheduledAt = nil
		rec.Status = models.StatusPublished
		assignSlug(&rec, published, true)

		published, _ = removeIDs(published, map[string]bool{rec.ID: true})
		published = append(published, rec)
		promoted = append(promoted, rec.Clone())
	}
	if pending == nil {
		pending = []models.Article{}
	}

	cols := collections{published: published, scheduled: pending}
	s.persist(ctx, cols, models.StatusPublished, models.StatusScheduled)
	s.mu.Unlock()

	ids := make([]string, len(promoted))
	for i, p := range promoted {
		ids[i] = p.ID
	}
	s.log.Info().Strs("ids", ids).Int("remaining", len(pending)).Msg("Scheduled articles promoted")
	s.emit("sweep", len(promoted), models.StatusPublished, models.StatusScheduled)
	return SweepResult{Promoted: promoted, Remaining: len(pending)}
}

// AddComment appends a comment to the published article id.
func (s *Store) AddComment(ctx context.Context, id string, c models.Comment) (models.Comment, error) {
	if errs := validation.ValidateComment(&c); len(errs) > 0 {
		return models.Comment{}, &ValidationFailure{Errors: errs}
	}
	c.Author = strings.TrimSpace(c.Author)
	c.Body = strings.TrimSpace(c.Body)

	s.mu.Lock()
	published := s.read(ctx, models.StatusPublished)
	idx := indexOf(published, id)
	if idx < 0 {
		s.mu.Unlock()
		return models.Comment{}, ErrNotFound
	}
	if c.ID == "" {
		c.ID = s.newID()
	}
	c.CreatedAt = s.now()
	published[idx].Comments = append(published[idx].Comments, c)
	sortCollection(models.StatusPublished, published)
	s.kv.Write(ctx, KeyPublished, published)
	s.mu.Unlock()

	s.emit("comment_added", 1, models.StatusPublished)
	return c, nil
}

// Snapshot returns all three collections read under one lock.
func (s *Store) Snapshot(ctx context.Context) models.Bundle {
	s.mu.Lock()
	cols := s.load(ctx)
	now := s.now()
	s.mu.Unlock()

	for _, status := range models.Statuses {
		sortCollection(status, cols.get(status))
	}
	return models.Bundle{
		Version:    models.BundleVersion,
		ExportedAt: now.UTC(),
		Published:  cols.published,
		Drafts:     cols.drafts,
		Scheduled:  cols.scheduled,
	}
}

// read loads one collection. Callers hold s.mu.
func (s *Store) read(ctx context.Context, status models.Status) []models.Article {
	def := []models.Article{}
	if status == models.StatusPublished && s.seed != nil {
		def = models.CloneArticles(s.seed)
	}
	records := kv.Read(ctx, s.kv, keyFor(status), def)
	if records == nil {
		records = []models.Article{}
	}
	return records
}

func (s *Store) load(ctx context.Context) collections {
	return collections{
		published: s.read(ctx, models.StatusPublished),
		drafts:    s.read(ctx, models.StatusDraft),
		scheduled: s.read(ctx, models.StatusScheduled),
	}
}

// persist sorts and writes the named collections in one backend write.
// Callers hold s.mu.
func (s *Store) persist(ctx context.Context, cols collections, statuses ...models.Status) {
	values := make(map[string]any, len(statuses))
	for _, status := range statuses {
		records := cols.get(status)
		sortCollection(status, records)
		values[keyFor(status)] = records
	}
	if len(values) == 1 {
		for key, v := range values {
			s.kv.Write(ctx, key, v)
		}
		return
	}
	s.kv.WriteMany(ctx, values)
}

func (s *Store) emit(reason string, count int, statuses ...models.Status) {
	s.bus.Publish(notify.Change{
		Reason:      reason,
		Collections: statuses,
		Count:       count,
		At:          s.now(),
	})
}

// ParsePublishAt parses a schedule time. RFC3339 is preferred; HTML
// datetime-local values and plain dates are read as UTC.
func ParsePublishAt(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var lastErr error
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02T15:04:05", "2006-01-02 15:04", "2006-01-02"} {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func formatDate(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func keyFor(status models.Status) string {
	switch status {
	case models.StatusDraft:
		return KeyDrafts
	case models.StatusScheduled:
		return KeyScheduled
	default:
		return KeyPublished
	}
}

func indexOf(records []models.Article, id string) int {
	if id == "" {
		return -1
	}
	for i := range records {
		if records[i].ID == id {
			return i
		}
	}
	return -1
}

func removeIDs(records []models.Article, ids map[string]bool) ([]models.Article, int) {
	kept := make([]models.Article, 0, len(records))
	for _, r := range records {
		if !ids[r.ID] {
			kept = append(kept, r)
		}
	}
	return kept, len(records) - len(kept)
}

// carryComments keeps the comments of an existing record with the same id
// when rec arrives without any.
func carryComments(rec *models.Article, cols collections) {
	if rec.Comments != nil {
		return
	}
	for _, status := range models.Statuses {
		if idx := indexOf(cols.get(status), rec.ID); idx >= 0 {
			rec.Comments = cols.get(status)[idx].Comments
			return
		}
	}
	rec.Comments = []models.Comment{}
}

type collections struct {
	published []models.Article
	drafts    []models.Article
	scheduled []models.Article
}

func (c *collections) get(status models.Status) []models.Article {
	switch status {
	case models.StatusDraft:
		return c.drafts
	case models.StatusScheduled:
		return c.scheduled
	default:
		return c.published
	}
}

func (c *collections) set(status models.Status, records []models.Article) {
	switch status {
	case models.StatusDraft:
		c.drafts = records
	case models.StatusScheduled:
		c.scheduled = records
	default:
		c.published = records
	}
}

// place puts rec into the collection for status, replacing a record with
// the same id in place or appending, and removes the id from the other
// collections. It returns every collection that changed.
func (c *collections) place(status models.Status, rec models.Article) []models.Status {
	changed := []models.Status{status}
	target := c.get(status)
	if idx := indexOf(target, rec.ID); idx >= 0 {
		target[idx] = rec
	} else {
		target = append(target, rec)
	}
	c.set(status, target)

	for _, other := range models.Statuses {
		if other == status {
			continue
		}
		if kept, removed := removeIDs(c.get(other), map[string]bool{rec.ID: true}); removed > 0 {
			c.set(other, kept)
			changed = append(changed, other)
		}
	}
	return changed
}
