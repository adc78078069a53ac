package resume

import (
	"context"
	"errors"
	"testing"

	"talentsift/internal/llm"
)

func TestGenerateOutreachTrimsOutput(t *testing.T) {
	stub := &stubCompleter{response: "\n  Hi John, your Go work at Acme caught our eye.  \n"}
	got, err := GenerateOutreach(context.Background(), stub,
		llm.CandidateProfile{FullName: "John Doe"}, "Backend Engineer", "Acme", "")
	if err != nil {
		t.Fatalf("GenerateOutreach() error: %v", err)
	}
	if got != "Hi John, your Go work at Acme caught our eye." {
		t.Errorf("GenerateOutreach() = %q", got)
	}
	if stub.calls != 1 {
		t.Errorf("completion called %d times, want 1", stub.calls)
	}
}

func TestGenerateOutreachUpstreamErrorSurfaces(t *testing.T) {
	wantErr := errors.New("upstream down")
	stub := &stubCompleter{err: wantErr}
	_, err := GenerateOutreach(context.Background(), stub,
		llm.CandidateProfile{}, "Engineer", "Acme", "friendly")
	if !errors.Is(err, wantErr) {
		t.Fatalf("error = %v, want %v", err, wantErr)
	}
}

func TestGenerateScreeningFallsBackToGenericSet(t *testing.T) {
	stub := &stubCompleter{response: "Sorry, I can't help with that."}
	got, err := GenerateScreening(context.Background(), stub,
		llm.CandidateProfile{FullName: "John Doe"}, "Backend Engineer")
	if err != nil {
		t.Fatalf("GenerateScreening() error: %v", err)
	}
	if len(got) != 5 {
		t.Errorf("got %d questions, want generic 5", len(got))
	}
}

func TestGenerateScreeningParsesQuestions(t *testing.T) {
	stub := &stubCompleter{response: `[
		{"category": "Technical", "question": "Explain goroutine scheduling.", "purpose": "depth"},
		{"category": "Behavioral", "question": "Describe a conflict you resolved.", "purpose": "teamwork"}
	]`}
	got, err := GenerateScreening(context.Background(), stub,
		llm.CandidateProfile{FullName: "John Doe"}, "Backend Engineer")
	if err != nil {
		t.Fatalf("GenerateScreening() error: %v", err)
	}
	if len(got) != 2 || got[0].Question != "Explain goroutine scheduling." {
		t.Errorf("GenerateScreening() = %+v", got)
	}
}
