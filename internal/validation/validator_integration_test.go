package validation

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/editorial-lifecycle-api/internal/models"
)

// testdataPath returns the absolute path to a file in the testdata directory.
func testdataPath(t *testing.T, filename string) string {
	t.Helper()
	_, currentFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine test file path")
	}
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(currentFile)))
	path := filepath.Join(projectRoot, "testdata", filename)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Skipf("testdata file not found: %s", path)
	}
	return path
}

func TestValidateImported_RealBundle(t *testing.T) {
	raw, err := os.ReadFile(testdataPath(t, "bundle.json"))
	if err != nil {
		t.Fatal(err)
	}

	var bundle models.Bundle
	if err := json.Unmarshal(raw, &bundle); err != nil {
		t.Fatalf("Failed to parse bundle: %v", err)
	}

	validator := NewValidator()
	failed := map[models.Status][]string{}
	check := func(status models.Status, records []models.Article) {
		for i := range records {
			if errs := validator.ValidateImported(&records[i], status, i+1); len(errs) > 0 {
				failed[status] = append(failed[status], records[i].ID)
			}
		}
	}
	check(models.StatusPublished, bundle.Published)
	check(models.StatusDraft, bundle.Drafts)
	check(models.StatusScheduled, bundle.Scheduled)

	if got := failed[models.StatusPublished]; len(got) != 1 || got[0] != "pub-bad" {
		t.Errorf("Expected only pub-bad to fail among published, got %v", got)
	}
	if got := failed[models.StatusDraft]; len(got) != 0 {
		t.Errorf("Drafts should all pass, got %v", got)
	}
	if got := failed[models.StatusScheduled]; len(got) != 1 || got[0] != "sched-bad" {
		t.Errorf("Expected only sched-bad to fail among scheduled, got %v", got)
	}
}
