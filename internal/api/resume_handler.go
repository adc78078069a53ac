package api

import (
	"errors"
	"io"
	"log"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"talentsift/internal/extract"
	"talentsift/internal/llm"
	"talentsift/internal/storage"
)

var allowedExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
	".doc":  true,
	".rtf":  true,
	".odt":  true,
	".txt":  true,
}

// UploadResumeHandler handles resume uploads and runs the parse pipeline
// @Summary Upload and parse a resume
// @Description Upload a resume (PDF/DOCX/TXT), store it and extract a structured candidate profile using the LLM
// @Tags resumes
// @Accept multipart/form-data
// @Produce json
// @Param X-User-ID header string true "Owning user identifier"
// @Param file formData file true "Resume file (PDF, DOCX or TXT)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /resumes/upload [post]
func (a *API) UploadResumeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	uid := userID(r)
	if uid == "" {
		writeError(w, http.StatusBadRequest, "missing X-User-ID header")
		return
	}

	startTime := time.Now()

	// Parse multipart form (max 10MB)
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "file too large or invalid (max 10MB)")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file uploaded")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExtensions[ext] {
		writeError(w, http.StatusBadRequest, "invalid file type (supported: PDF, DOCX, DOC, RTF, ODT, TXT)")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read uploaded file")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		if byExt := mime.TypeByExtension(ext); byExt != "" {
			contentType = byExt
		} else {
			contentType = "application/octet-stream"
		}
	}

	// Store the raw document first so a parse failure never loses the upload.
	storageKey := storage.ResumeKey(uid, header.Filename)
	if err := a.objects.Put(r.Context(), storageKey, data, contentType); err != nil {
		log.Printf("object store put failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to store document")
		return
	}

	rec, err := a.db.CreateUpload(r.Context(), uid, header.Filename, storageKey, contentType)
	if err != nil {
		log.Printf("create upload failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to create upload record")
		return
	}

	log.Printf("resume uploaded: %s (%d bytes) -> %s", header.Filename, len(data), rec.ID)

	profile, outcome, err := a.pipeline.Process(r.Context(), rec.ID, data, contentType)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, extract.ErrEmptyDocument) {
			status = http.StatusUnprocessableEntity
		}
		writeJSON(w, status, map[string]interface{}{
			"upload_id": rec.ID,
			"filename":  rec.Filename,
			"status":    storage.StatusParsingError,
			"error":     err.Error(),
		})
		return
	}

	processingTime := time.Since(startTime).Milliseconds()
	log.Printf("resume %s parsed (%s) in %dms", rec.ID, outcome, processingTime)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"upload_id":          rec.ID,
		"filename":           rec.Filename,
		"status":             storage.StatusParsedOK,
		"parse_outcome":      outcome.String(),
		"profile":            profile,
		"skills_count":       len(profile.Skills),
		"processing_time_ms": processingTime,
	})
}

// ListResumesHandler lists the caller's upload records
// @Summary List uploaded resumes
// @Description List all of the caller's resume upload records, newest first
// @Tags resumes
// @Produce json
// @Param X-User-ID header string true "Owning user identifier"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Router /resumes [get]
func (a *API) ListResumesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	uid := userID(r)
	if uid == "" {
		writeError(w, http.StatusBadRequest, "missing X-User-ID header")
		return
	}

	uploads, err := a.db.ListUploads(r.Context(), uid)
	if err != nil {
		log.Printf("list uploads failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list uploads")
		return
	}
	if uploads == nil {
		uploads = []*storage.UploadRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"total":   len(uploads),
		"uploads": uploads,
	})
}

// ResumeByIDHandler routes /api/resumes/{id} requests
// @Summary Delete an uploaded resume
// @Description Remove a resume upload record and its stored document
// @Tags resumes
// @Produce json
// @Param X-User-ID header string true "Owning user identifier"
// @Param id path string true "Upload record ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /resumes/{id} [delete]
func (a *API) ResumeByIDHandler(w http.ResponseWriter, r *http.Request) {
	uid := userID(r)
	if uid == "" {
		writeError(w, http.StatusBadRequest, "missing X-User-ID header")
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/resumes/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		rec, err := a.db.GetUpload(r.Context(), uid, id)
		if err != nil {
			writeError(w, http.StatusNotFound, "upload not found")
			return
		}
		writeJSON(w, http.StatusOK, rec)
	case http.MethodDelete:
		rec, err := a.db.GetUpload(r.Context(), uid, id)
		if err != nil {
			writeError(w, http.StatusNotFound, "upload not found")
			return
		}
		if err := a.objects.Remove(r.Context(), rec.StorageKey); err != nil {
			// Row removal still proceeds; an orphaned object beats a
			// dangling record the user cannot delete.
			log.Printf("object store remove failed for %s: %v", rec.StorageKey, err)
		}
		deleted, err := a.db.DeleteUpload(r.Context(), uid, id)
		if err != nil || !deleted {
			writeError(w, http.StatusInternalServerError, "failed to delete upload")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"deleted": id})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// profileForUpload loads a parsed profile or replies with the right error.
func (a *API) profileForUpload(w http.ResponseWriter, r *http.Request, uid, uploadID string) (llm.CandidateProfile, bool) {
	rec, err := a.db.GetUpload(r.Context(), uid, uploadID)
	if err != nil {
		writeError(w, http.StatusNotFound, "upload not found")
		return llm.CandidateProfile{}, false
	}
	if rec.Status != storage.StatusParsedOK || rec.Profile == nil {
		writeError(w, http.StatusConflict, "resume has not been parsed successfully")
		return llm.CandidateProfile{}, false
	}
	return *rec.Profile, true
}
