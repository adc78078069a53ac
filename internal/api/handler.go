package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"talentsift/internal/llm"
	"talentsift/internal/resume"
	"talentsift/internal/search"
	"talentsift/internal/storage"
)

// Store is the record surface the handlers need. *storage.DB satisfies it;
// tests use in-memory fakes.
type Store interface {
	resume.Store
	CreateUpload(ctx context.Context, userID, filename, storageKey, contentType string) (*storage.UploadRecord, error)
	GetUpload(ctx context.Context, userID, uploadID string) (*storage.UploadRecord, error)
	ListUploads(ctx context.Context, userID string) ([]*storage.UploadRecord, error)
	DeleteUpload(ctx context.Context, userID, uploadID string) (bool, error)
	ListParsedProfiles(ctx context.Context, userID string) ([]llm.ProfileDoc, error)
	LogSearch(ctx context.Context, userID, query string, resultCount int) (*storage.SearchQueryRecord, error)
}

// ObjectStore is the document-storage surface the handlers need.
// *storage.ObjectStore satisfies it.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Remove(ctx context.Context, key string) error
}

type API struct {
	db       Store
	objects  ObjectStore
	client   resume.Completer
	pipeline *resume.Pipeline
	ranker   *search.Ranker
}

func NewAPI(db Store, objects ObjectStore, client resume.Completer) *API {
	return &API{
		db:       db,
		objects:  objects,
		client:   client,
		pipeline: resume.NewPipeline(client, db),
		ranker:   search.NewRanker(client),
	}
}

// userID extracts the owning-user identifier from the request. Every record
// in the service is scoped to it; a request without one is rejected.
func userID(r *http.Request) string {
	return r.Header.Get("X-User-ID")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("ERROR: Failed to encode JSON response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
