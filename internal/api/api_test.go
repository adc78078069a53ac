package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"talentsift/internal/llm"
	"talentsift/internal/storage"
)

type stubCompleter struct {
	response string
	err      error
	calls    int
}

func (s *stubCompleter) Complete(ctx context.Context, messages []llm.Message, temperature float64, maxTokens int) (string, error) {
	s.calls++
	return s.response, s.err
}

// fakeStore is an in-memory Store.
type fakeStore struct {
	uploads  map[string]*storage.UploadRecord
	profiles []llm.ProfileDoc
	searches []*storage.SearchQueryRecord
	nextID   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{uploads: map[string]*storage.UploadRecord{}}
}

func (f *fakeStore) CreateUpload(ctx context.Context, userID, filename, storageKey, contentType string) (*storage.UploadRecord, error) {
	f.nextID++
	rec := &storage.UploadRecord{
		ID:          fmt.Sprintf("up-%d", f.nextID),
		UserID:      userID,
		Filename:    filename,
		StorageKey:  storageKey,
		ContentType: contentType,
		Status:      storage.StatusUploaded,
	}
	f.uploads[rec.ID] = rec
	return rec, nil
}

func (f *fakeStore) MarkParsing(ctx context.Context, uploadID string) error {
	f.uploads[uploadID].Status = storage.StatusParsing
	return nil
}

func (f *fakeStore) SaveProfile(ctx context.Context, uploadID string, profile llm.CandidateProfile) error {
	rec := f.uploads[uploadID]
	rec.Status = storage.StatusParsedOK
	rec.Profile = &profile
	rec.Skills = profile.Skills
	return nil
}

func (f *fakeStore) MarkFailed(ctx context.Context, uploadID, reason string) error {
	rec := f.uploads[uploadID]
	rec.Status = storage.StatusParsingError
	rec.ErrorMessage = reason
	return nil
}

func (f *fakeStore) GetUpload(ctx context.Context, userID, uploadID string) (*storage.UploadRecord, error) {
	rec, ok := f.uploads[uploadID]
	if !ok || rec.UserID != userID {
		return nil, errors.New("upload not found")
	}
	return rec, nil
}

func (f *fakeStore) ListUploads(ctx context.Context, userID string) ([]*storage.UploadRecord, error) {
	var out []*storage.UploadRecord
	for _, rec := range f.uploads {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeStore) DeleteUpload(ctx context.Context, userID, uploadID string) (bool, error) {
	rec, ok := f.uploads[uploadID]
	if !ok || rec.UserID != userID {
		return false, nil
	}
	delete(f.uploads, uploadID)
	return true, nil
}

func (f *fakeStore) ListParsedProfiles(ctx context.Context, userID string) ([]llm.ProfileDoc, error) {
	return f.profiles, nil
}

func (f *fakeStore) LogSearch(ctx context.Context, userID, query string, resultCount int) (*storage.SearchQueryRecord, error) {
	rec := &storage.SearchQueryRecord{
		ID:          fmt.Sprintf("sq-%d", len(f.searches)+1),
		UserID:      userID,
		Query:       query,
		ResultCount: resultCount,
	}
	f.searches = append(f.searches, rec)
	return rec, nil
}

// fakeObjects is an in-memory ObjectStore.
type fakeObjects struct {
	objects   map[string][]byte
	removeErr error
	removed   []string
}

func newFakeObjects() *fakeObjects {
	return &fakeObjects{objects: map[string][]byte{}}
}

func (f *fakeObjects) Put(ctx context.Context, key string, data []byte, contentType string) error {
	f.objects[key] = data
	return nil
}

func (f *fakeObjects) Remove(ctx context.Context, key string) error {
	f.removed = append(f.removed, key)
	if f.removeErr != nil {
		return f.removeErr
	}
	delete(f.objects, key)
	return nil
}

func newTestAPI(stub *stubCompleter) (*fakeStore, *fakeObjects, http.Handler) {
	store := newFakeStore()
	objects := newFakeObjects()
	return store, objects, NewRouter(NewAPI(store, objects, stub))
}

func multipartBody(t *testing.T, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write([]byte(content)); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &buf, w.FormDataContentType()
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response %q: %v", rr.Body.String(), err)
	}
	return body
}

func TestUploadParsesAndStoresProfile(t *testing.T) {
	stub := &stubCompleter{
		response: `Here is the data: {"full_name":"John Doe","email":"john@x.com","skills":["Python","Java"]} Hope that helps!`,
	}
	store, objects, router := newTestAPI(stub)

	buf, contentType := multipartBody(t, "resume.txt", "John Doe john@x.com Python Java")
	req := httptest.NewRequest(http.MethodPost, "/api/resumes/upload", buf)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-User-ID", "user-1")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	body := decodeBody(t, rr)
	if body["status"] != storage.StatusParsedOK {
		t.Errorf("response status = %v, want %q", body["status"], storage.StatusParsedOK)
	}
	if body["parse_outcome"] != "parsed" {
		t.Errorf("parse_outcome = %v, want parsed", body["parse_outcome"])
	}

	rec := store.uploads[body["upload_id"].(string)]
	if rec == nil {
		t.Fatal("upload record not created")
	}
	if rec.Status != storage.StatusParsedOK {
		t.Errorf("record status = %q, want %q", rec.Status, storage.StatusParsedOK)
	}
	if rec.Profile == nil || rec.Profile.FullName != "John Doe" {
		t.Errorf("persisted profile = %+v", rec.Profile)
	}
	if len(objects.objects) != 1 {
		t.Errorf("stored %d objects, want 1", len(objects.objects))
	}
	if !strings.HasPrefix(rec.StorageKey, "resumes/user-1/") {
		t.Errorf("storage key %q not namespaced by user", rec.StorageKey)
	}
}

func TestUploadUpstreamErrorIs502AndRecordFailed(t *testing.T) {
	stub := &stubCompleter{err: &llm.UpstreamError{StatusCode: http.StatusInternalServerError, Body: "boom"}}
	store, _, router := newTestAPI(stub)

	buf, contentType := multipartBody(t, "resume.txt", "John Doe john@x.com Python Java")
	req := httptest.NewRequest(http.MethodPost, "/api/resumes/upload", buf)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-User-ID", "user-1")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502 (body = %s)", rr.Code, rr.Body.String())
	}
	body := decodeBody(t, rr)
	if body["status"] != storage.StatusParsingError {
		t.Errorf("response status = %v, want %q", body["status"], storage.StatusParsingError)
	}

	rec := store.uploads[body["upload_id"].(string)]
	if rec == nil || rec.Status != storage.StatusParsingError {
		t.Errorf("record = %+v, want status %q", rec, storage.StatusParsingError)
	}
	if rec != nil && rec.ErrorMessage == "" {
		t.Error("failure reason not recorded on the upload")
	}
}

func TestUploadUnreadableDocumentIs422(t *testing.T) {
	stub := &stubCompleter{response: "{}"}
	store, _, router := newTestAPI(stub)

	buf, contentType := multipartBody(t, "resume.txt", "  ")
	req := httptest.NewRequest(http.MethodPost, "/api/resumes/upload", buf)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-User-ID", "user-1")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422 (body = %s)", rr.Code, rr.Body.String())
	}
	if stub.calls != 0 {
		t.Errorf("completion called %d times for unreadable document, want 0", stub.calls)
	}
	body := decodeBody(t, rr)
	rec := store.uploads[body["upload_id"].(string)]
	if rec == nil || rec.Status != storage.StatusParsingError {
		t.Errorf("record = %+v, want status %q", rec, storage.StatusParsingError)
	}
}

func TestUploadRequiresUserHeader(t *testing.T) {
	stub := &stubCompleter{response: "{}"}
	_, _, router := newTestAPI(stub)

	buf, contentType := multipartBody(t, "resume.txt", "John Doe john@x.com")
	req := httptest.NewRequest(http.MethodPost, "/api/resumes/upload", buf)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func searchRequestFor(t *testing.T, query string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/search",
		strings.NewReader(fmt.Sprintf(`{"query": %q}`, query)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "user-1")
	return req
}

func TestSearchReturnsRankedResults(t *testing.T) {
	stub := &stubCompleter{response: `[{"upload_id":"up-1","relevance_score":0.9,"justification":"strong Go"}]`}
	store, _, router := newTestAPI(stub)
	store.profiles = []llm.ProfileDoc{
		{UploadID: "up-1", Profile: llm.CandidateProfile{FullName: "John Doe", Skills: []string{"Go"}}},
	}

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, searchRequestFor(t, "golang engineer"))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	body := decodeBody(t, rr)
	if body["total"] != float64(1) {
		t.Errorf("total = %v, want 1", body["total"])
	}
	if body["search_id"] == nil || body["search_id"] == "" {
		t.Error("search_id missing from response")
	}
	if len(store.searches) != 1 || store.searches[0].ResultCount != 1 || store.searches[0].Query != "golang engineer" {
		t.Errorf("search log = %+v", store.searches)
	}
}

func TestSearchRankFailureIsEmptyState(t *testing.T) {
	stub := &stubCompleter{err: &llm.UpstreamError{StatusCode: http.StatusInternalServerError, Body: "boom"}}
	store, _, router := newTestAPI(stub)
	store.profiles = []llm.ProfileDoc{
		{UploadID: "up-1", Profile: llm.CandidateProfile{FullName: "John Doe"}},
	}

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, searchRequestFor(t, "golang engineer"))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 empty state (body = %s)", rr.Code, rr.Body.String())
	}
	body := decodeBody(t, rr)
	if body["total"] != float64(0) {
		t.Errorf("total = %v, want 0", body["total"])
	}
	if len(store.searches) != 1 || store.searches[0].ResultCount != 0 {
		t.Errorf("search log = %+v, want one entry with zero results", store.searches)
	}
}

func TestSearchZeroProfilesSkipsCompletion(t *testing.T) {
	stub := &stubCompleter{response: `[]`}
	store, _, router := newTestAPI(stub)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, searchRequestFor(t, "golang engineer"))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	if stub.calls != 0 {
		t.Errorf("completion called %d times with no profiles, want 0", stub.calls)
	}
	if len(store.searches) != 1 {
		t.Errorf("search not logged: %+v", store.searches)
	}
}

func TestDeleteRemovesRecordDespiteObjectError(t *testing.T) {
	stub := &stubCompleter{response: "{}"}
	store, objects, router := newTestAPI(stub)
	store.uploads["up-1"] = &storage.UploadRecord{
		ID: "up-1", UserID: "user-1", StorageKey: "resumes/user-1/x.txt",
		Status: storage.StatusParsedOK,
	}
	objects.removeErr = errors.New("bucket unavailable")

	req := httptest.NewRequest(http.MethodDelete, "/api/resumes/up-1", nil)
	req.Header.Set("X-User-ID", "user-1")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	if _, stillThere := store.uploads["up-1"]; stillThere {
		t.Error("record not deleted when object removal failed")
	}
	if len(objects.removed) != 1 || objects.removed[0] != "resumes/user-1/x.txt" {
		t.Errorf("object removal attempts = %v", objects.removed)
	}
}

func TestDeleteOtherUsersUploadIs404(t *testing.T) {
	stub := &stubCompleter{response: "{}"}
	store, _, router := newTestAPI(stub)
	store.uploads["up-1"] = &storage.UploadRecord{ID: "up-1", UserID: "someone-else", StorageKey: "k"}

	req := httptest.NewRequest(http.MethodDelete, "/api/resumes/up-1", nil)
	req.Header.Set("X-User-ID", "user-1")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
	if _, stillThere := store.uploads["up-1"]; !stillThere {
		t.Error("another user's record was deleted")
	}
}
