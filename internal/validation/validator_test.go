package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/editorial-lifecycle-api/internal/models"
)

func TestValidateForPublish(t *testing.T) {
	validator := NewValidator()

	tests := []struct {
		name       string
		article    *models.Article
		wantErrors int
		wantFields []string
	}{
		{
			name: "valid article with all fields",
			article: &models.Article{
				Title:    "Hello",
				Slug:     "hello",
				Content:  "<p>Body</p>",
				Category: models.CategoryBlog,
			},
			wantErrors: 0,
		},
		{
			name:       "slug and category are optional",
			article:    &models.Article{Title: "Hello", Content: "Body"},
			wantErrors: 0,
		},
		{
			name:       "missing title",
			article:    &models.Article{Content: "Body"},
			wantErrors: 1,
			wantFields: []string{"title"},
		},
		{
			name:       "whitespace only content",
			article:    &models.Article{Title: "Hello", Content: "   \n\t"},
			wantErrors: 1,
			wantFields: []string{"content"},
		},
		{
			name:       "invalid category",
			article:    &models.Article{Title: "Hello", Content: "Body", Category: "Podcast"},
			wantErrors: 1,
			wantFields: []string{"category"},
		},
		{
			name:       "category is case sensitive",
			article:    &models.Article{Title: "Hello", Content: "Body", Category: "blog"},
			wantErrors: 1,
			wantFields: []string{"category"},
		},
		{
			name:       "everything missing",
			article:    &models.Article{Slug: "Bad Slug"},
			wantErrors: 3,
			wantFields: []string{"content", "slug", "title"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errors := validator.ValidateForPublish(tt.article)
			if len(errors) != tt.wantErrors {
				t.Errorf("ValidateForPublish() got %d errors, want %d. Errors: %v", len(errors), tt.wantErrors, errors)
			}
			assertFields(t, errors, tt.wantFields)
		})
	}
}

func TestValidateForPublish_SortedFields(t *testing.T) {
	errors := NewValidator().ValidateForPublish(&models.Article{Slug: "Bad Slug", Category: "x"})
	var got []string
	for _, e := range errors {
		got = append(got, e.Field)
	}
	want := []string{"category", "content", "slug", "title"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Expected fields %v in order, got %v", want, got)
	}
}

func TestValidateImported(t *testing.T) {
	at := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		status     models.Status
		article    *models.Article
		wantFields []string
	}{
		{
			name:    "draft may be empty",
			status:  models.StatusDraft,
			article: &models.Article{ID: "d1"},
		},
		{
			name:       "published needs title and content",
			status:     models.StatusPublished,
			article:    &models.Article{ID: "p1"},
			wantFields: []string{"content", "title"},
		},
		{
			name:       "status must match the collection",
			status:     models.StatusDraft,
			article:    &models.Article{ID: "d1", Status: models.StatusPublished},
			wantFields: []string{"status"},
		},
		{
			name:       "scheduled needs scheduled_at",
			status:     models.StatusScheduled,
			article:    &models.Article{ID: "s1", Title: "T", Content: "C"},
			wantFields: []string{"scheduled_at"},
		},
		{
			name:    "scheduled with time",
			status:  models.StatusScheduled,
			article: &models.Article{ID: "s1", Title: "T", Content: "C", ScheduledAt: &at},
		},
		{
			name:       "only scheduled records carry scheduled_at",
			status:     models.StatusPublished,
			article:    &models.Article{ID: "p1", Title: "T", Content: "C", ScheduledAt: &at},
			wantFields: []string{"scheduled_at"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errors := NewValidator().ValidateImported(tt.article, tt.status, 7)
			if len(errors) != len(tt.wantFields) {
				t.Errorf("ValidateImported() got %d errors, want %d. Errors: %v", len(errors), len(tt.wantFields), errors)
			}
			assertFields(t, errors, tt.wantFields)
			for _, e := range errors {
				if e.Line != 7 {
					t.Errorf("Expected line 7, got %d", e.Line)
				}
			}
		})
	}
}

func TestDuplicateSlugDetection(t *testing.T) {
	validator := NewValidator()

	first := &models.Article{ID: "a", Title: "One", Content: "Body", Slug: "duplicate-slug"}
	if errors := validator.ValidateImported(first, models.StatusPublished, 1); len(errors) != 0 {
		t.Errorf("First article should be valid, got %d errors: %v", len(errors), errors)
	}

	second := &models.Article{ID: "b", Title: "Two", Content: "Other", Slug: "duplicate-slug"}
	errors := validator.ValidateImported(second, models.StatusPublished, 2)
	if len(errors) != 1 {
		t.Fatalf("Second article should have 1 error, got %d: %v", len(errors), errors)
	}
	if errors[0].Message != "duplicate slug" {
		t.Errorf("Expected 'duplicate slug' error, got '%s'", errors[0].Message)
	}

	draft := &models.Article{ID: "c", Slug: "duplicate-slug"}
	if errors := validator.ValidateImported(draft, models.StatusDraft, 1); len(errors) != 0 {
		t.Errorf("Drafts may share a published slug, got %v", errors)
	}

	validator.AddPublishedSlug("taken")
	third := &models.Article{ID: "d", Title: "Three", Content: "Body", Slug: "taken"}
	if errors := validator.ValidateImported(third, models.StatusPublished, 3); len(errors) != 1 {
		t.Errorf("Expected pre-registered slug to be rejected, got %v", errors)
	}
}

func TestInvalidRecordDoesNotReserveSlug(t *testing.T) {
	validator := NewValidator()

	broken := &models.Article{ID: "a", Slug: "shared"}
	if errors := validator.ValidateImported(broken, models.StatusPublished, 1); len(errors) == 0 {
		t.Fatal("Expected missing title and content")
	}

	valid := &models.Article{ID: "b", Title: "T", Content: "C", Slug: "shared"}
	if errors := validator.ValidateImported(valid, models.StatusPublished, 2); len(errors) != 0 {
		t.Errorf("Slug of a rejected record should stay free, got %v", errors)
	}
}

func TestKebabCaseValidation(t *testing.T) {
	validator := NewValidator()

	tests := []struct {
		slug  string
		valid bool
	}{
		{"valid-slug", true},
		{"another-valid-slug", true},
		{"a", true},
		{"a-b-c", true},
		{"Invalid-Slug", false},
		{"invalid_slug", false},
		{"invalid slug", false},
		{"123-numbers", true},
		{"slug-123", true},
		{"-starts-with-dash", false},
		{"ends-with-dash-", false},
		{"double--dash", false},
	}

	for _, tt := range tests {
		t.Run(tt.slug, func(t *testing.T) {
			article := &models.Article{Title: "Test", Content: "Test body", Slug: tt.slug}
			hasSlugError := false
			for _, err := range validator.ValidateForPublish(article) {
				if err.Field == "slug" {
					hasSlugError = true
					break
				}
			}
			if tt.valid && hasSlugError {
				t.Errorf("Slug '%s' should be valid", tt.slug)
			}
			if !tt.valid && !hasSlugError {
				t.Errorf("Slug '%s' should be invalid", tt.slug)
			}
		})
	}
}

func TestValidateComment(t *testing.T) {
	tests := []struct {
		name       string
		comment    *models.Comment
		wantErrors int
		wantFields []string
	}{
		{
			name:       "valid comment",
			comment:    &models.Comment{Author: "Sam", Body: "This is a valid comment"},
			wantErrors: 0,
		},
		{
			name:       "missing body",
			comment:    &models.Comment{Author: "Sam", Body: "   "},
			wantErrors: 1,
			wantFields: []string{"body"},
		},
		{
			name:       "missing author",
			comment:    &models.Comment{Body: "Anonymous"},
			wantErrors: 1,
			wantFields: []string{"author"},
		},
		{
			name:       "author too long",
			comment:    &models.Comment{Author: strings.Repeat("é", 81), Body: "Hi"},
			wantErrors: 1,
			wantFields: []string{"author"},
		},
		{
			name:       "body exceeds word limit",
			comment:    &models.Comment{Author: "Sam", Body: strings.Repeat("word ", 600)},
			wantErrors: 1,
			wantFields: []string{"body"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errors := ValidateComment(tt.comment)
			if len(errors) != tt.wantErrors {
				t.Errorf("ValidateComment() got %d errors, want %d. Errors: %v", len(errors), tt.wantErrors, errors)
			}
			assertFields(t, errors, tt.wantFields)
		})
	}
}

func TestCommentBodyWordBoundary(t *testing.T) {
	// Exactly 500 words - should pass
	comment500 := &models.Comment{Author: "Sam", Body: strings.TrimSpace(strings.Repeat("word ", 500))}
	for _, e := range ValidateComment(comment500) {
		if e.Field == "body" {
			t.Errorf("500 words should be valid, but got body error: %s", e.Message)
		}
	}

	// 501 words - should fail
	comment501 := &models.Comment{Author: "Sam", Body: strings.TrimSpace(strings.Repeat("word ", 501))}
	hasBodyError := false
	for _, e := range ValidateComment(comment501) {
		if e.Field == "body" {
			hasBodyError = true
		}
	}
	if !hasBodyError {
		t.Error("501 words should fail validation, but no body error was returned")
	}
}

func TestValidationErrorMessages(t *testing.T) {
	errors := NewValidator().ValidateImported(&models.Article{Slug: "NOPE", Category: "x", Status: "archived"}, models.StatusPublished, 1)

	// Verify each error has a clear message
	for _, err := range errors {
		if err.Field == "" {
			t.Error("Error should have a field name")
		}
		if err.Message == "" {
			t.Error("Error should have a message")
		}
	}
}

func assertFields(t *testing.T, errors []models.ValidationError, want []string) {
	t.Helper()
	for _, wantField := range want {
		found := false
		for _, err := range errors {
			if err.Field == wantField {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Expected error for field '%s' but not found", wantField)
		}
	}
}

func BenchmarkValidateComment(b *testing.B) {
	comment := &models.Comment{Author: "Sam", Body: strings.Repeat("word ", 250)}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		ValidateComment(comment)
	}
}

func BenchmarkValidateForPublish(b *testing.B) {
	validator := NewValidator()
	article := &models.Article{Title: "Hello", Slug: "hello-world", Content: "Body", Category: models.CategoryReview}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		validator.ValidateForPublish(article)
	}
}
