package models

import (
	"time"
)

// BundleVersion tags the export file layout.
const BundleVersion = "1"

// Bundle is the export file holding all three collections.
type Bundle struct {
	Version    string    `json:"version"`
	ExportedAt time.Time `json:"exported_at"`
	Published  []Article `json:"published"`
	Drafts     []Article `json:"drafts"`
	Scheduled  []Article `json:"scheduled"`
}

// ValidationError represents a single validation error
type ValidationError struct {
	Collection string      `json:"collection,omitempty"`
	Line       int         `json:"line,omitempty"`
	Field      string      `json:"field"`
	Message    string      `json:"message"`
	Value      interface{} `json:"value,omitempty"`
}

// ImportResult summarises an import run
type ImportResult struct {
	Published  int               `json:"published"`
	Drafts     int               `json:"drafts"`
	Scheduled  int               `json:"scheduled"`
	Skipped    int               `json:"skipped"`
	Errors     []ValidationError `json:"errors,omitempty"`
	ErrorCount int               `json:"error_count"`
}
