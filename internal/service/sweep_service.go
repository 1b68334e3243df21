package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/editorial-lifecycle-api/internal/lifecycle"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// DefaultSweepSchedule runs the sweep once a minute.
const DefaultSweepSchedule = "@every 1m"

// sweepTimeout bounds a single scheduled sweep.
const sweepTimeout = 30 * time.Second

// sweeper is the concrete implementation of Sweeper
type sweeper struct {
	store ArticleStore
	cron  *cron.Cron
	now   func() time.Time
	log   zerolog.Logger

	mu      sync.Mutex
	running bool
}

// newSweeper registers the sweep on a cron schedule. The schedule accepts
// the standard five-field syntax and descriptors such as "@every 1m".
func newSweeper(store ArticleStore, schedule string, log zerolog.Logger) (*sweeper, error) {
	if schedule == "" {
		schedule = DefaultSweepSchedule
	}

	s := &sweeper{
		store: store,
		now:   time.Now,
		log:   log.With().Str("service", "sweeper").Logger(),
	}

	logger := cronLogger{log: s.log}
	s.cron = cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)

	if _, err := s.cron.AddFunc(schedule, s.tick); err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}
	return s, nil
}

// Start begins running the sweep on schedule. Calling it twice is a no-op.
func (s *sweeper) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	s.cron.Start()
	s.running = true
	s.log.Info().Msg("Sweeper started")
}

// Stop halts the schedule and waits for a sweep in progress to finish.
func (s *sweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	<-s.cron.Stop().Done()
	s.running = false
	s.log.Info().Msg("Sweeper stopped")
}

func (s *sweeper) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// RunNow sweeps immediately, independent of the schedule.
func (s *sweeper) RunNow(ctx context.Context) lifecycle.SweepResult {
	result := s.store.SweepDueScheduled(ctx, s.now())
	if len(result.Promoted) > 0 {
		ids := make([]string, len(result.Promoted))
		for i, rec := range result.Promoted {
			ids[i] = rec.ID
		}
		s.log.Info().Strs("ids", ids).Int("remaining", result.Remaining).Msg("Sweep promoted scheduled articles")
	} else {
		s.log.Debug().Int("remaining", result.Remaining).Msg("Sweep found nothing due")
	}
	return result
}

func (s *sweeper) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()
	s.RunNow(ctx)
}

// cronLogger routes cron's own logging through zerolog.
type cronLogger struct {
	log zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
