// Package backup keeps track of when the collections were last exported so
// the admin UI can remind editors to take a fresh copy.
package backup

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/editorial-lifecycle-api/internal/kv"
)

// KeyLastBackup holds the time of the last successful export.
const KeyLastBackup = "last-backup"

// DefaultThresholdDays is used when the configured threshold is not positive.
const DefaultThresholdDays = 7

// Status is the reminder state shown to editors.
type Status struct {
	LastBackup    *time.Time `json:"last_backup"`
	DaysSince     *int       `json:"days_since"`
	Due           bool       `json:"due"`
	ThresholdDays int        `json:"threshold_days"`
}

// Tracker records backups through the persistence adapter.
type Tracker struct {
	kv        *kv.Adapter
	threshold int
	now       func() time.Time
	log       zerolog.Logger
}

// NewTracker creates a Tracker reminding after thresholdDays.
func NewTracker(adapter *kv.Adapter, thresholdDays int, log zerolog.Logger) *Tracker {
	if thresholdDays <= 0 {
		thresholdDays = DefaultThresholdDays
	}
	return &Tracker{
		kv:        adapter,
		threshold: thresholdDays,
		now:       time.Now,
		log:       log.With().Str("component", "backup").Logger(),
	}
}

// SetClock overrides the tracker clock.
func (t *Tracker) SetClock(clock func() time.Time) {
	if clock != nil {
		t.now = clock
	}
}

// RecordBackupPerformed stores the current time as the last backup.
func (t *Tracker) RecordBackupPerformed(ctx context.Context) {
	now := t.now().UTC()
	if !t.kv.Write(ctx, KeyLastBackup, now.Format(time.RFC3339)) {
		t.log.Warn().Time("at", now).Msg("Backup time not persisted")
		return
	}
	t.log.Info().Time("at", now).Msg("Backup recorded")
}

// LastBackup returns the recorded time, or false if none was ever recorded
// or the stored value is unreadable.
func (t *Tracker) LastBackup(ctx context.Context) (time.Time, bool) {
	raw := kv.Read(ctx, t.kv, KeyLastBackup, "")
	if raw == "" {
		return time.Time{}, false
	}
	at, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		t.log.Warn().Err(err).Str("value", raw).Msg("Ignoring unreadable backup time")
		return time.Time{}, false
	}
	return at, true
}

// DaysSinceLastBackup returns whole days elapsed since the last backup.
// The second result is false when no backup was ever recorded.
func (t *Tracker) DaysSinceLastBackup(ctx context.Context) (int, bool) {
	at, ok := t.LastBackup(ctx)
	if !ok {
		return 0, false
	}
	days := int(t.now().Sub(at) / (24 * time.Hour))
	if days < 0 {
		days = 0
	}
	return days, true
}

// IsBackupDue reports whether no backup exists or the last one is at least
// the threshold number of days old.
func (t *Tracker) IsBackupDue(ctx context.Context) bool {
	days, ok := t.DaysSinceLastBackup(ctx)
	return !ok || days >= t.threshold
}

// Status gathers the reminder state in one read.
func (t *Tracker) Status(ctx context.Context) Status {
	st := Status{ThresholdDays: t.threshold, Due: true}
	at, ok := t.LastBackup(ctx)
	if !ok {
		return st
	}
	days := int(t.now().Sub(at) / (24 * time.Hour))
	if days < 0 {
		days = 0
	}
	st.LastBackup = &at
	st.DaysSince = &days
	st.Due = days >= t.threshold
	return st
}
