package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/editorial-lifecycle-api/internal/models"
	"github.com/rs/zerolog"
)

// exportService is the concrete implementation of ExportService
type exportService struct {
	store   ArticleStore
	backups BackupRecorder
	log     zerolog.Logger
}

// newExportService creates a new ExportService
func newExportService(store ArticleStore, backups BackupRecorder, log zerolog.Logger) *exportService {
	return &exportService{
		store:   store,
		backups: backups,
		log:     log.With().Str("service", "export").Logger(),
	}
}

// Export writes every collection as one bundle. Once the bundle has been
// written completely the backup time is recorded.
func (s *exportService) Export(ctx context.Context, w io.Writer) error {
	bundle := s.store.Snapshot(ctx)

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(bundle); err != nil {
		s.log.Error().Err(err).Msg("Export failed")
		return fmt.Errorf("failed to write export: %w", err)
	}

	if s.backups != nil {
		s.backups.RecordBackupPerformed(ctx)
	}

	s.log.Info().
		Int("published", len(bundle.Published)).
		Int("drafts", len(bundle.Drafts)).
		Int("scheduled", len(bundle.Scheduled)).
		Msg("Export completed")
	return nil
}

// StreamCollection streams one collection in the specified format
func (s *exportService) StreamCollection(ctx context.Context, w http.ResponseWriter, status models.Status, format string) error {
	var records []models.Article
	switch status {
	case models.StatusPublished:
		records = s.store.ListPublished(ctx)
	case models.StatusDraft:
		records = s.store.ListDrafts(ctx)
	case models.StatusScheduled:
		records = s.store.ListScheduled(ctx)
	default:
		return fmt.Errorf("unknown collection: %s", status)
	}

	s.log.Info().Str("collection", string(status)).Str("format", format).Msg("Starting collection export")

	switch format {
	case "ndjson":
		return s.streamNDJSON(ctx, w, status, records)
	case "json", "":
		return s.streamJSON(ctx, w, status, records)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func (s *exportService) streamNDJSON(ctx context.Context, w http.ResponseWriter, status models.Status, records []models.Article) error {
	w.Header().Set("Content-Type", "application/x-ndjson")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.ndjson", status))

	flusher, _ := w.(http.Flusher)

	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		w.Write(data)
		w.Write([]byte("\n"))

		// Flush every 100 records for streaming
		if (i+1)%100 == 0 && flusher != nil {
			flusher.Flush()
		}
	}

	s.log.Info().Int("count", len(records)).Str("collection", string(status)).Msg("Collection export completed")
	return nil
}

func (s *exportService) streamJSON(ctx context.Context, w http.ResponseWriter, status models.Status, records []models.Article) error {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.json", status))

	w.Write([]byte("["))
	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		if i > 0 {
			w.Write([]byte(","))
		}
		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		w.Write(data)
	}
	w.Write([]byte("]"))

	s.log.Info().Int("count", len(records)).Str("collection", string(status)).Msg("Collection export completed")
	return nil
}
