package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/editorial-lifecycle-api/internal/models"
	"github.com/editorial-lifecycle-api/internal/validation"
	"github.com/rs/zerolog"
)

// maxReportedErrors caps the errors returned with an import result.
const maxReportedErrors = 100

// ErrImportShape is returned for files that are neither a bundle nor an array
// of articles.
var ErrImportShape = errors.New("import file must be a JSON array of articles or an export bundle")

// importFile is the bundle layout accepted on import. "articles" is an older
// name for the published collection. A nil slice means the collection is
// absent from the file and is left untouched.
type importFile struct {
	Version   string             `json:"version"`
	Published *[]json.RawMessage `json:"published"`
	Articles  *[]json.RawMessage `json:"articles"`
	Drafts    *[]json.RawMessage `json:"drafts"`
	Scheduled *[]json.RawMessage `json:"scheduled"`
}

// importService is the concrete implementation of ImportService
type importService struct {
	store ArticleStore
	log   zerolog.Logger
}

// newImportService creates a new ImportService
func newImportService(store ArticleStore, log zerolog.Logger) *importService {
	return &importService{
		store: store,
		log:   log.With().Str("service", "import").Logger(),
	}
}

// Import reads an export bundle (or a bare array of published articles) and
// replaces each collection present in it with its valid records. Invalid
// records are skipped and reported. A collection whose records are all
// invalid is left as it was.
func (s *importService) Import(ctx context.Context, r io.Reader) (*models.ImportResult, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read import: %w", err)
	}

	file, err := parseImportFile(raw)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("version", file.Version).Msg("Starting import")

	result := &models.ImportResult{}
	validator := validation.NewValidator()
	seen := make(map[string]models.Status)

	collections := []struct {
		status models.Status
		raw    *[]json.RawMessage
		upsert func(context.Context, []models.Article)
		count  *int
	}{
		{models.StatusPublished, file.Published, s.store.UpsertPublished, &result.Published},
		{models.StatusDraft, file.Drafts, s.store.UpsertDrafts, &result.Drafts},
		{models.StatusScheduled, file.Scheduled, s.store.UpsertScheduled, &result.Scheduled},
	}

	type pending struct {
		records []models.Article
		upsert  func(context.Context, []models.Article)
	}
	var writes []pending

	for _, col := range collections {
		if col.raw == nil {
			continue
		}
		records, errs := s.decodeCollection(validator, col.status, *col.raw, seen)
		result.Skipped += len(*col.raw) - len(records)
		addErrors(result, errs)

		if len(records) == 0 && len(*col.raw) > 0 {
			s.log.Warn().Str("collection", string(col.status)).Msg("No valid records, collection left unchanged")
			continue
		}
		*col.count = len(records)
		writes = append(writes, pending{records: records, upsert: col.upsert})
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, w := range writes {
		w.upsert(ctx, w.records)
	}

	s.log.Info().
		Int("published", result.Published).
		Int("drafts", result.Drafts).
		Int("scheduled", result.Scheduled).
		Int("skipped", result.Skipped).
		Int("errors", result.ErrorCount).
		Msg("Import completed")

	return result, nil
}

// decodeCollection decodes and validates the records of one collection.
// seen tracks identifiers across the whole file; an identifier already
// claimed by an earlier collection is rejected.
func (s *importService) decodeCollection(v *validation.Validator, status models.Status, raws []json.RawMessage, seen map[string]models.Status) ([]models.Article, []models.ValidationError) {
	var (
		records []models.Article
		errs    []models.ValidationError
	)

	for i, raw := range raws {
		line := i + 1

		var rec models.Article
		if err := json.Unmarshal(raw, &rec); err != nil {
			errs = append(errs, models.ValidationError{
				Collection: string(status),
				Line:       line,
				Message:    fmt.Sprintf("record is not a valid article: %v", err),
			})
			continue
		}

		fieldErrs := v.ValidateImported(&rec, status, line)
		if rec.ID != "" {
			if other, dup := seen[rec.ID]; dup {
				fieldErrs = append(fieldErrs, models.ValidationError{
					Line:    line,
					Field:   "id",
					Message: fmt.Sprintf("id already used in %s", other),
					Value:   rec.ID,
				})
			}
		}
		if len(fieldErrs) > 0 {
			for j := range fieldErrs {
				fieldErrs[j].Collection = string(status)
			}
			errs = append(errs, fieldErrs...)
			continue
		}

		if rec.ID != "" {
			seen[rec.ID] = status
		}
		rec.Status = status
		records = append(records, rec)
	}
	return records, errs
}

func addErrors(result *models.ImportResult, errs []models.ValidationError) {
	result.ErrorCount += len(errs)
	for _, e := range errs {
		if len(result.Errors) >= maxReportedErrors {
			return
		}
		result.Errors = append(result.Errors, e)
	}
}

func parseImportFile(raw []byte) (*importFile, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, ErrImportShape
	}

	switch trimmed[0] {
	case '[':
		var records []json.RawMessage
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrImportShape, err)
		}
		return &importFile{Published: &records}, nil
	case '{':
		var file importFile
		if err := json.Unmarshal(trimmed, &file); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrImportShape, err)
		}
		if file.Version != "" && file.Version != models.BundleVersion {
			return nil, fmt.Errorf("unsupported export version %q", file.Version)
		}
		if file.Published == nil {
			file.Published = file.Articles
		}
		if file.Published == nil && file.Drafts == nil && file.Scheduled == nil {
			return nil, ErrImportShape
		}
		return &file, nil
	default:
		return nil, ErrImportShape
	}
}
