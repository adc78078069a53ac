package resume

import (
	"context"
	"strings"

	"talentsift/internal/llm"
)

// GenerateOutreach asks the completion endpoint for an outreach message to
// one candidate. Output is free text; fences are the only cleanup applied.
func GenerateOutreach(ctx context.Context, client Completer, profile llm.CandidateProfile, role, company, tone string) (string, error) {
	messages := []llm.Message{
		{Role: "system", Content: "You are a recruiting assistant. Write concise, personal outreach."},
		{Role: "user", Content: llm.BuildOutreachPrompt(profile, role, company, tone)},
	}
	raw, err := client.Complete(ctx, messages, 0.4, 500)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(raw), "`")), nil
}

// GenerateScreening asks the completion endpoint for screening questions
// tailored to one candidate. Unusable output falls back to a fixed generic
// set inside the normalizer, so the result is never empty.
func GenerateScreening(ctx context.Context, client Completer, profile llm.CandidateProfile, role string) ([]llm.ScreeningQuestion, error) {
	messages := []llm.Message{
		{Role: "system", Content: "You are an expert technical interviewer. Return only valid JSON."},
		{Role: "user", Content: llm.BuildScreeningPrompt(profile, role)},
	}
	raw, err := client.Complete(ctx, messages, 0.3, 1000)
	if err != nil {
		return nil, err
	}
	return llm.NormalizeQuestionList(raw), nil
}
