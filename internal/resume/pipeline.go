// Package resume runs the upload-to-profile pipeline: excerpt the document,
// prompt the completion endpoint, normalize the response and persist the
// terminal status against the upload record.
package resume

import (
	"context"
	"log"

	"talentsift/internal/extract"
	"talentsift/internal/llm"
)

// Completer is the completion-endpoint surface this package needs.
// *llm.Service satisfies it; tests use stubs.
type Completer interface {
	Complete(ctx context.Context, messages []llm.Message, temperature float64, maxTokens int) (string, error)
}

// Store is the state-transition surface for an upload record.
// *storage.DB satisfies it.
type Store interface {
	MarkParsing(ctx context.Context, uploadID string) error
	SaveProfile(ctx context.Context, uploadID string, profile llm.CandidateProfile) error
	MarkFailed(ctx context.Context, uploadID, reason string) error
}

type Pipeline struct {
	client Completer
	store  Store
}

func NewPipeline(client Completer, store Store) *Pipeline {
	return &Pipeline{client: client, store: store}
}

// Process runs one upload through extraction, parsing and persistence.
// Extraction and upstream failures are terminal: the record is marked
// parsing_error and the error is returned. A malformed model response is
// not a failure; it degrades to the all-defaults profile (OutcomeDefaulted)
// and the record still reaches parsed_success.
func (p *Pipeline) Process(ctx context.Context, uploadID string, data []byte, contentType string) (llm.CandidateProfile, llm.Outcome, error) {
	if err := p.store.MarkParsing(ctx, uploadID); err != nil {
		return llm.DefaultProfile(), llm.OutcomeDefaulted, err
	}

	excerpt, err := extract.Excerpt(data, contentType)
	if err != nil {
		if markErr := p.store.MarkFailed(ctx, uploadID, err.Error()); markErr != nil {
			log.Printf("mark failed after extraction error: %v", markErr)
		}
		return llm.DefaultProfile(), llm.OutcomeDefaulted, err
	}

	messages := []llm.Message{
		{Role: "system", Content: "You are a resume parser. Return only valid JSON."},
		{Role: "user", Content: llm.BuildParsePrompt(excerpt)},
	}
	raw, err := p.client.Complete(ctx, messages, 0.1, 1500)
	if err != nil {
		if markErr := p.store.MarkFailed(ctx, uploadID, err.Error()); markErr != nil {
			log.Printf("mark failed after completion error: %v", markErr)
		}
		return llm.DefaultProfile(), llm.OutcomeDefaulted, err
	}

	profile, outcome := llm.NormalizeProfile(raw)
	if outcome == llm.OutcomeDefaulted {
		log.Printf("upload %s: completion response unusable, stored defaults", uploadID)
	}

	if err := p.store.SaveProfile(ctx, uploadID, profile); err != nil {
		if markErr := p.store.MarkFailed(ctx, uploadID, err.Error()); markErr != nil {
			log.Printf("mark failed after save error: %v", markErr)
		}
		return llm.DefaultProfile(), llm.OutcomeDefaulted, err
	}

	return profile, outcome, nil
}
