package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"talentsift/internal/search"
)

type searchRequest struct {
	Query string `json:"query"`
}

// SearchHandler runs a natural-language search over the caller's parsed profiles
// @Summary Search candidates
// @Description Score the caller's parsed candidate profiles against a free-text query using the LLM
// @Tags search
// @Accept json
// @Produce json
// @Param X-User-ID header string true "Owning user identifier"
// @Param request body searchRequest true "Search query"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Router /search [post]
func (a *API) SearchHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	uid := userID(r)
	if uid == "" {
		writeError(w, http.StatusBadRequest, "missing X-User-ID header")
		return
	}

	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	docs, err := a.db.ListParsedProfiles(r.Context(), uid)
	if err != nil {
		log.Printf("list profiles failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to load profiles")
		return
	}

	results, err := a.ranker.Rank(r.Context(), req.Query, docs)
	if err != nil {
		// A failed search is an empty state for the UI, not an error page.
		log.Printf("ranking failed for query %q: %v", req.Query, err)
		results = []search.Result{}
	}

	response := map[string]interface{}{
		"query":   req.Query,
		"total":   len(results),
		"results": results,
	}
	logged, err := a.db.LogSearch(r.Context(), uid, req.Query, len(results))
	if err != nil {
		log.Printf("search log insert failed: %v", err)
	} else {
		response["search_id"] = logged.ID
	}

	writeJSON(w, http.StatusOK, response)
}
