package api

import (
	"encoding/json"
	"log"
	"net/http"

	"talentsift/internal/resume"
)

type outreachRequest struct {
	UploadID string `json:"upload_id"`
	Role     string `json:"role"`
	Company  string `json:"company"`
	Tone     string `json:"tone"`
}

// OutreachHandler generates an outreach message for one candidate
// @Summary Generate outreach message
// @Description Generate a short personalized outreach message for a parsed candidate
// @Tags generate
// @Accept json
// @Produce json
// @Param X-User-ID header string true "Owning user identifier"
// @Param request body outreachRequest true "Outreach parameters"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /generate/outreach [post]
func (a *API) OutreachHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	uid := userID(r)
	if uid == "" {
		writeError(w, http.StatusBadRequest, "missing X-User-ID header")
		return
	}

	var req outreachRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.UploadID == "" || req.Role == "" {
		writeError(w, http.StatusBadRequest, "upload_id and role are required")
		return
	}

	profile, ok := a.profileForUpload(w, r, uid, req.UploadID)
	if !ok {
		return
	}

	message, err := resume.GenerateOutreach(r.Context(), a.client, profile, req.Role, req.Company, req.Tone)
	if err != nil {
		log.Printf("outreach generation failed: %v", err)
		writeError(w, http.StatusBadGateway, "outreach generation failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"upload_id": req.UploadID,
		"message":   message,
	})
}

type screeningRequest struct {
	UploadID string `json:"upload_id"`
	Role     string `json:"role"`
}

// ScreeningHandler generates screening questions for one candidate
// @Summary Generate screening questions
// @Description Generate screening questions tailored to a parsed candidate; falls back to a generic set when the model output is unusable
// @Tags generate
// @Accept json
// @Produce json
// @Param X-User-ID header string true "Owning user identifier"
// @Param request body screeningRequest true "Screening parameters"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 502 {object} map[string]string
// @Router /generate/screening [post]
func (a *API) ScreeningHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	uid := userID(r)
	if uid == "" {
		writeError(w, http.StatusBadRequest, "missing X-User-ID header")
		return
	}

	var req screeningRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.UploadID == "" || req.Role == "" {
		writeError(w, http.StatusBadRequest, "upload_id and role are required")
		return
	}

	profile, ok := a.profileForUpload(w, r, uid, req.UploadID)
	if !ok {
		return
	}

	questions, err := resume.GenerateScreening(r.Context(), a.client, profile, req.Role)
	if err != nil {
		log.Printf("screening generation failed: %v", err)
		writeError(w, http.StatusBadGateway, "screening generation failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"upload_id": req.UploadID,
		"total":     len(questions),
		"questions": questions,
	})
}
