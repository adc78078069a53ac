package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq" // PostgreSQL driver

	"talentsift/internal/llm"
)

type DB struct {
	connection *sql.DB
}

func NewDB(dataSourceName string) (*DB, error) {
	db, err := sql.Open("postgres", dataSourceName)
	if err != nil {
		return nil, err
	}

	// Connection pool tuning
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return &DB{connection: db}, nil
}

func (db *DB) Close() {
	if err := db.connection.Close(); err != nil {
		log.Println("Error closing the database connection:", err)
	}
}

// EnsureSchema creates the tables this service owns if they do not exist.
func (db *DB) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS resume_uploads (
			id UUID PRIMARY KEY,
			user_id TEXT NOT NULL,
			filename TEXT NOT NULL,
			storage_key TEXT NOT NULL,
			content_type TEXT NOT NULL,
			status TEXT NOT NULL,
			profile JSONB,
			skills TEXT,
			error_message TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_resume_uploads_user ON resume_uploads (user_id)`,
		`CREATE TABLE IF NOT EXISTS search_queries (
			id UUID PRIMARY KEY,
			user_id TEXT NOT NULL,
			query TEXT NOT NULL,
			result_count INT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_search_queries_user ON search_queries (user_id)`,
	}
	for _, stmt := range stmts {
		if _, err := db.connection.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema setup failed: %w", err)
		}
	}
	return nil
}

// CreateUpload inserts a new upload record with status "uploaded" and
// returns it.
func (db *DB) CreateUpload(ctx context.Context, userID, filename, storageKey, contentType string) (*UploadRecord, error) {
	rec := &UploadRecord{
		ID:          uuid.NewString(),
		UserID:      userID,
		Filename:    filename,
		StorageKey:  storageKey,
		ContentType: contentType,
		Status:      StatusUploaded,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
	query := `INSERT INTO resume_uploads (id, user_id, filename, storage_key, content_type, status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := db.connection.ExecContext(ctx, query,
		rec.ID, rec.UserID, rec.Filename, rec.StorageKey, rec.ContentType, rec.Status, rec.CreatedAt, rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// MarkParsing flips an upload into the transient parsing state.
func (db *DB) MarkParsing(ctx context.Context, uploadID string) error {
	query := `UPDATE resume_uploads SET status = $2, updated_at = NOW() WHERE id = $1`
	_, err := db.connection.ExecContext(ctx, query, uploadID, StatusParsing)
	return err
}

// SaveProfile records a successful parse: profile, skills and terminal
// success status in a single statement. This is the one place an upload
// transitions to parsed_success.
func (db *DB) SaveProfile(ctx context.Context, uploadID string, profile llm.CandidateProfile) error {
	profileJSON, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	query := `UPDATE resume_uploads
	          SET profile = $2, skills = $3, status = $4, error_message = '', updated_at = NOW()
	          WHERE id = $1`
	_, err = db.connection.ExecContext(ctx, query,
		uploadID, profileJSON, strings.Join(profile.Skills, ","), StatusParsedOK)
	return err
}

// MarkFailed records a terminal parse failure with its reason.
func (db *DB) MarkFailed(ctx context.Context, uploadID, reason string) error {
	query := `UPDATE resume_uploads SET status = $2, error_message = $3, updated_at = NOW() WHERE id = $1`
	_, err := db.connection.ExecContext(ctx, query, uploadID, StatusParsingError, reason)
	return err
}

const uploadColumns = `id, user_id, filename, storage_key, content_type, status, profile, skills, error_message, created_at, updated_at`

func scanUpload(row interface{ Scan(...interface{}) error }) (*UploadRecord, error) {
	rec := &UploadRecord{}
	var profileJSON []byte
	var skills sql.NullString
	err := row.Scan(&rec.ID, &rec.UserID, &rec.Filename, &rec.StorageKey, &rec.ContentType,
		&rec.Status, &profileJSON, &skills, &rec.ErrorMessage, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(profileJSON) > 0 {
		var p llm.CandidateProfile
		if err := json.Unmarshal(profileJSON, &p); err == nil {
			rec.Profile = &p
		}
	}
	if skills.Valid && skills.String != "" {
		rec.Skills = splitAndTrim(skills.String)
	}
	return rec, nil
}

// GetUpload fetches one upload scoped to its owning user.
func (db *DB) GetUpload(ctx context.Context, userID, uploadID string) (*UploadRecord, error) {
	query := `SELECT ` + uploadColumns + ` FROM resume_uploads WHERE id = $1 AND user_id = $2`
	return scanUpload(db.connection.QueryRowContext(ctx, query, uploadID, userID))
}

// ListUploads returns all of a user's upload records, newest first.
func (db *DB) ListUploads(ctx context.Context, userID string) ([]*UploadRecord, error) {
	query := `SELECT ` + uploadColumns + ` FROM resume_uploads WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := db.connection.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*UploadRecord
	for rows.Next() {
		rec, err := scanUpload(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, rec)
	}
	return res, rows.Err()
}

// DeleteUpload removes a user's upload record and reports whether a row
// actually existed.
func (db *DB) DeleteUpload(ctx context.Context, userID, uploadID string) (bool, error) {
	res, err := db.connection.ExecContext(ctx,
		`DELETE FROM resume_uploads WHERE id = $1 AND user_id = $2`, uploadID, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// ListParsedProfiles returns the successfully parsed profiles a search runs
// over, keyed by their upload record.
func (db *DB) ListParsedProfiles(ctx context.Context, userID string) ([]llm.ProfileDoc, error) {
	query := `SELECT id, profile FROM resume_uploads
	          WHERE user_id = $1 AND status = $2 AND profile IS NOT NULL
	          ORDER BY created_at DESC`
	rows, err := db.connection.QueryContext(ctx, query, userID, StatusParsedOK)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []llm.ProfileDoc
	for rows.Next() {
		var id string
		var profileJSON []byte
		if err := rows.Scan(&id, &profileJSON); err != nil {
			return nil, err
		}
		var p llm.CandidateProfile
		if err := json.Unmarshal(profileJSON, &p); err != nil {
			continue
		}
		docs = append(docs, llm.ProfileDoc{UploadID: id, Profile: p})
	}
	return docs, rows.Err()
}

// LogSearch appends one row to the search log and returns it. The log is
// never mutated or deleted by this service.
func (db *DB) LogSearch(ctx context.Context, userID, query string, resultCount int) (*SearchQueryRecord, error) {
	rec := &SearchQueryRecord{
		ID:          uuid.NewString(),
		UserID:      userID,
		Query:       query,
		ResultCount: resultCount,
		CreatedAt:   time.Now().UTC(),
	}
	_, err := db.connection.ExecContext(ctx,
		`INSERT INTO search_queries (id, user_id, query, result_count, created_at) VALUES ($1, $2, $3, $4, $5)`,
		rec.ID, rec.UserID, rec.Query, rec.ResultCount, rec.CreatedAt)
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// helper to split comma-separated skills
func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
