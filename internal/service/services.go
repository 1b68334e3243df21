package service

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/editorial-lifecycle-api/internal/config"
	"github.com/editorial-lifecycle-api/internal/lifecycle"
	"github.com/editorial-lifecycle-api/internal/models"
	"github.com/rs/zerolog"
)

// ArticleStore is the part of the lifecycle store the services drive.
type ArticleStore interface {
	Snapshot(ctx context.Context) models.Bundle
	ListPublished(ctx context.Context) []models.Article
	ListDrafts(ctx context.Context) []models.Article
	ListScheduled(ctx context.Context) []models.Article
	UpsertPublished(ctx context.Context, records []models.Article)
	UpsertDrafts(ctx context.Context, records []models.Article)
	UpsertScheduled(ctx context.Context, records []models.Article)
	SweepDueScheduled(ctx context.Context, now time.Time) lifecycle.SweepResult
}

// BackupRecorder is told when a full export has been written.
type BackupRecorder interface {
	RecordBackupPerformed(ctx context.Context)
}

// ImportService defines the interface for import operations
type ImportService interface {
	Import(ctx context.Context, r io.Reader) (*models.ImportResult, error)
}

// ExportService defines the interface for export operations
type ExportService interface {
	Export(ctx context.Context, w io.Writer) error
	StreamCollection(ctx context.Context, w http.ResponseWriter, status models.Status, format string) error
}

// Sweeper promotes due scheduled articles on a timer
type Sweeper interface {
	Start()
	Stop()
	Running() bool
	RunNow(ctx context.Context) lifecycle.SweepResult
}

// Services holds all service interfaces
type Services struct {
	Import  ImportService
	Export  ExportService
	Sweeper Sweeper
}

// NewServices creates all services
func NewServices(store ArticleStore, backups BackupRecorder, cfg *config.Config, log zerolog.Logger) (*Services, error) {
	sweeper, err := newSweeper(store, cfg.Lifecycle.SweepSchedule, log)
	if err != nil {
		return nil, err
	}

	return &Services{
		Import:  newImportService(store, log),
		Export:  newExportService(store, backups, log),
		Sweeper: sweeper,
	}, nil
}
