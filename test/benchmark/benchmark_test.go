package benchmark

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/editorial-lifecycle-api/internal/backup"
	"github.com/editorial-lifecycle-api/internal/config"
	"github.com/editorial-lifecycle-api/internal/kv"
	"github.com/editorial-lifecycle-api/internal/lifecycle"
	"github.com/editorial-lifecycle-api/internal/mocks"
	"github.com/editorial-lifecycle-api/internal/models"
	"github.com/editorial-lifecycle-api/internal/service"
	"github.com/editorial-lifecycle-api/internal/validation"
)

var benchNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func makeArticles(n int) []models.Article {
	out := make([]models.Article, n)
	for i := 0; i < n; i++ {
		out[i] = models.Article{
			ID:       fmt.Sprintf("article-%06d", i),
			Title:    fmt.Sprintf("Article %d", i),
			Slug:     fmt.Sprintf("article-%d", i),
			Content:  "<p>Body</p>",
			Date:     benchNow.AddDate(0, 0, -(i % 365)).Format("2006-01-02"),
			Category: models.CategoryBlog,
			Tags:     []string{"go", "web"},
		}
	}
	return out
}

func newStore() *lifecycle.Store {
	adapter := kv.NewAdapter(mocks.NewMockBackend(), zerolog.Nop())
	return lifecycle.NewStore(adapter, zerolog.Nop(),
		lifecycle.WithSeed(nil),
		lifecycle.WithClock(func() time.Time { return benchNow }),
	)
}

// BenchmarkSortPublished benchmarks display ordering of a large collection
func BenchmarkSortPublished(b *testing.B) {
	base := makeArticles(1000)
	records := make([]models.Article, len(base))

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		copy(records, base)
		lifecycle.SortPublished(records)
	}

	b.ReportMetric(float64(1000*b.N)/b.Elapsed().Seconds(), "rows/sec")
}

// BenchmarkListPublished benchmarks a full read through the persistence adapter
func BenchmarkListPublished(b *testing.B) {
	store := newStore()
	ctx := context.Background()
	store.UpsertPublished(ctx, makeArticles(1000))

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		store.ListPublished(ctx)
	}

	b.ReportMetric(float64(1000*b.N)/b.Elapsed().Seconds(), "rows/sec")
}

// BenchmarkSweep benchmarks promoting a batch of due scheduled articles
func BenchmarkSweep(b *testing.B) {
	ctx := context.Background()
	due := benchNow.Add(-time.Hour)
	scheduled := makeArticles(200)
	for i := range scheduled {
		scheduled[i].ScheduledAt = &due
	}

	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		b.StopTimer()
		store := newStore()
		store.UpsertPublished(ctx, makeArticles(100))
		store.UpsertScheduled(ctx, scheduled)
		b.StartTimer()

		store.SweepDueScheduled(ctx, benchNow)
	}
}

// BenchmarkValidation benchmarks import validation
func BenchmarkValidation(b *testing.B) {
	records := makeArticles(1000)

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		validator := validation.NewValidator()
		for j := range records {
			validator.ValidateImported(&records[j], models.StatusPublished, j+1)
		}
	}

	b.ReportMetric(float64(1000*b.N)/b.Elapsed().Seconds(), "rows/sec")
}

// BenchmarkExportImport benchmarks a full backup round trip
func BenchmarkExportImport(b *testing.B) {
	ctx := context.Background()
	store := newStore()
	store.UpsertPublished(ctx, makeArticles(1000))

	adapter := kv.NewAdapter(mocks.NewMockBackend(), zerolog.Nop())
	cfg := &config.Config{Lifecycle: config.LifecycleConfig{SweepSchedule: "@every 1m"}}
	services, err := service.NewServices(store, backup.NewTracker(adapter, 7, zerolog.Nop()), cfg, zerolog.Nop())
	if err != nil {
		b.Fatal(err)
	}

	var buf bytes.Buffer
	if err := services.Export.Export(ctx, &buf); err != nil {
		b.Fatal(err)
	}
	payload := buf.Bytes()

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		if err := services.Export.Export(ctx, io.Discard); err != nil {
			b.Fatal(err)
		}
		if _, err := services.Import.Import(ctx, bytes.NewReader(payload)); err != nil {
			b.Fatal(err)
		}
	}

	b.ReportMetric(float64(1000*b.N)/b.Elapsed().Seconds(), "rows/sec")
}
