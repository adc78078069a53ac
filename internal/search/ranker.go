// Package search ranks stored candidate profiles against a free-text query
// using the completion endpoint as the scorer.
package search

import (
	"context"
	"log"
	"sort"

	"talentsift/internal/llm"
)

const (
	// MaxResults caps how many matches a single search returns.
	MaxResults = 10
	// MinScore is the exclusive relevance threshold below which a match
	// is dropped.
	MinScore = 0.3
)

// Completer is the completion-endpoint surface the ranker needs.
type Completer interface {
	Complete(ctx context.Context, messages []llm.Message, temperature float64, maxTokens int) (string, error)
}

// Result is one ranked search hit. Ephemeral: produced fresh per query,
// never persisted.
type Result struct {
	UploadID       string               `json:"upload_id"`
	RelevanceScore float64              `json:"relevance_score"`
	Justification  string               `json:"justification"`
	Profile        llm.CandidateProfile `json:"profile"`
}

type Ranker struct {
	client Completer
}

func NewRanker(client Completer) *Ranker {
	return &Ranker{client: client}
}

// Rank scores the given profiles against the query and returns at most
// MaxResults hits with score above MinScore, sorted by score descending.
// Ties keep the order the completion endpoint returned them in. Zero
// profiles short-circuits to an empty list without a completion call, and a
// malformed response degrades to an empty list rather than an error.
func (r *Ranker) Rank(ctx context.Context, query string, docs []llm.ProfileDoc) ([]Result, error) {
	if len(docs) == 0 {
		return []Result{}, nil
	}

	byID := make(map[string]llm.CandidateProfile, len(docs))
	for _, d := range docs {
		byID[d.UploadID] = d.Profile
	}

	messages := []llm.Message{
		{Role: "system", Content: "You are a technical recruiter. Return only valid JSON."},
		{Role: "user", Content: llm.BuildSearchPrompt(query, docs)},
	}
	raw, err := r.client.Complete(ctx, messages, 0.2, 2000)
	if err != nil {
		return nil, err
	}

	matches := llm.NormalizeMatchList(raw)

	results := make([]Result, 0, len(matches))
	for _, m := range matches {
		profile, known := byID[m.UploadID]
		if !known {
			// The model referenced an upload it was never shown.
			log.Printf("ranker: dropping unknown upload id %q", m.UploadID)
			continue
		}
		score := clamp01(m.RelevanceScore)
		if score <= MinScore {
			continue
		}
		results = append(results, Result{
			UploadID:       m.UploadID,
			RelevanceScore: score,
			Justification:  m.Justification,
			Profile:        profile,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].RelevanceScore > results[j].RelevanceScore
	})

	if len(results) > MaxResults {
		results = results[:MaxResults]
	}
	return results, nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
