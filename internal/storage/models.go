package storage

import (
	"time"

	"talentsift/internal/llm"
)

// Upload lifecycle statuses. A record reaches exactly one terminal status per
// processing attempt; only a fresh re-upload re-enters the pipeline.
const (
	StatusUploaded     = "uploaded"
	StatusParsing      = "parsing"
	StatusParsedOK     = "parsed_success"
	StatusParsingError = "parsing_error"
)

// UploadRecord tracks one uploaded resume's processing lifecycle.
// Owned exclusively by the uploading user; mutated only by the parse
// pipeline and user-initiated delete.
type UploadRecord struct {
	ID           string                `json:"id"`
	UserID       string                `json:"user_id"`
	Filename     string                `json:"filename"`
	StorageKey   string                `json:"storage_key"`
	ContentType  string                `json:"content_type"`
	Status       string                `json:"status"`
	Profile      *llm.CandidateProfile `json:"profile,omitempty"`
	Skills       []string              `json:"skills,omitempty"`
	ErrorMessage string                `json:"error_message,omitempty"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

// SearchQueryRecord is one row of the append-only search log.
type SearchQueryRecord struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Query       string    `json:"query"`
	ResultCount int       `json:"result_count"`
	CreatedAt   time.Time `json:"created_at"`
}
