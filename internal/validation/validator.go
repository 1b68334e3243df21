package validation

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	ozzo "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/editorial-lifecycle-api/internal/models"
)

var slugRegex = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

var (
	categoryRule = ozzo.In(
		models.CategoryBlog,
		models.CategoryInterview,
		models.CategoryReview,
		models.CategoryResource,
	).Error("invalid category, must be one of: Blog, Interview, Review, Resource")
	slugRule = ozzo.Match(slugRegex).Error("slug must be kebab-case (lowercase letters, numbers, hyphens)")
)

// Validator checks article records. It remembers published slugs seen so far
// so a batch (an import file) can be checked for duplicates.
type Validator struct {
	publishedSlugs map[string]bool
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{
		publishedSlugs: make(map[string]bool),
	}
}

// AddPublishedSlug adds a slug to the uniqueness cache
func (v *Validator) AddPublishedSlug(slug string) {
	if slug != "" {
		v.publishedSlugs[slug] = true
	}
}

// ValidateForPublish checks the fields a record needs before it can go live
// or be scheduled: a title, a body, and well-formed slug and category when
// they are set.
func (v *Validator) ValidateForPublish(article *models.Article) []models.ValidationError {
	rec := trimmed(article)
	err := ozzo.ValidateStruct(&rec,
		ozzo.Field(&rec.Title, ozzo.Required.Error("title is required")),
		ozzo.Field(&rec.Content, ozzo.Required.Error("content is required")),
		ozzo.Field(&rec.Slug, slugRule),
		ozzo.Field(&rec.Category, categoryRule),
	)
	return collect(err, 0)
}

// ValidateImported checks a record read from an import file for the
// collection identified by status. lineNum is the record's position in that
// collection, starting at 1.
func (v *Validator) ValidateImported(article *models.Article, status models.Status, lineNum int) []models.ValidationError {
	rec := trimmed(article)
	live := status == models.StatusPublished || status == models.StatusScheduled

	err := ozzo.ValidateStruct(&rec,
		ozzo.Field(&rec.Title, ozzo.When(live, ozzo.Required.Error("title is required"))),
		ozzo.Field(&rec.Content, ozzo.When(live, ozzo.Required.Error("content is required"))),
		ozzo.Field(&rec.Slug, slugRule),
		ozzo.Field(&rec.Category, categoryRule),
		ozzo.Field(&rec.Status, ozzo.In(status).Error(fmt.Sprintf("status must be %q in this collection", status))),
		ozzo.Field(&rec.ScheduledAt,
			ozzo.When(status == models.StatusScheduled, ozzo.Required.Error("scheduled_at is required for scheduled articles")),
			ozzo.When(status != models.StatusScheduled, ozzo.Nil.Error("only scheduled articles may have scheduled_at")),
		),
	)
	errs := collect(err, lineNum)

	if status == models.StatusPublished && rec.Slug != "" {
		if v.publishedSlugs[rec.Slug] {
			errs = append(errs, models.ValidationError{Line: lineNum, Field: "slug", Message: "duplicate slug", Value: rec.Slug})
		} else if len(errs) == 0 {
			v.AddPublishedSlug(rec.Slug)
		}
	}
	return errs
}

// ValidateComment validates a reader comment
func ValidateComment(comment *models.Comment) []models.ValidationError {
	rec := *comment
	rec.Author = strings.TrimSpace(rec.Author)
	rec.Body = strings.TrimSpace(rec.Body)

	err := ozzo.ValidateStruct(&rec,
		ozzo.Field(&rec.Author, ozzo.Required.Error("author is required"), ozzo.RuneLength(0, 80).Error("author must be at most 80 characters")),
		ozzo.Field(&rec.Body, ozzo.Required.Error("body is required"), ozzo.By(maxWords(models.MaxCommentWords))),
	)
	return collect(err, 0)
}

func maxWords(limit int) ozzo.RuleFunc {
	return func(value interface{}) error {
		s, _ := value.(string)
		if n := len(strings.Fields(s)); n > limit {
			return fmt.Errorf("body exceeds maximum of %d words (has %d)", limit, n)
		}
		return nil
	}
}

func trimmed(article *models.Article) models.Article {
	rec := *article
	rec.Title = strings.TrimSpace(rec.Title)
	rec.Content = strings.TrimSpace(rec.Content)
	rec.Slug = strings.TrimSpace(rec.Slug)
	return rec
}

// collect flattens ozzo's field->error map into a stable list.
func collect(err error, line int) []models.ValidationError {
	if err == nil {
		return nil
	}

	var fieldErrs ozzo.Errors
	if !errors.As(err, &fieldErrs) {
		return []models.ValidationError{{Line: line, Field: "", Message: err.Error()}}
	}

	fields := make([]string, 0, len(fieldErrs))
	for f := range fieldErrs {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	out := make([]models.ValidationError, 0, len(fields))
	for _, f := range fields {
		out = append(out, models.ValidationError{Line: line, Field: f, Message: fieldErrs[f].Error()})
	}
	return out
}
