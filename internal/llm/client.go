package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderGroq   Provider = "groq"
	ProviderNone   Provider = "none"
)

const (
	openAIEndpoint = "https://api.openai.com/v1/chat/completions"
	groqEndpoint   = "https://api.groq.com/openai/v1/chat/completions"
)

// UpstreamError is a non-2xx response from the completion endpoint.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("completion endpoint returned %d: %s", e.StatusCode, e.Body)
}

// ResponseShapeError means the endpoint answered 2xx but the expected
// choices[0].message.content path was absent.
type ResponseShapeError struct {
	Reason string
}

func (e *ResponseShapeError) Error() string {
	return fmt.Sprintf("unexpected completion response shape: %s", e.Reason)
}

// Service talks to a hosted chat-completion endpoint (OpenAI or Groq, both
// chat-completions shaped). No retries: retrying is the caller's call.
type Service struct {
	provider   Provider
	apiKey     string
	model      string
	endpoint   string
	httpClient *http.Client
}

func NewService(provider, apiKey, model string) *Service {
	s := &Service{
		provider: Provider(provider),
		apiKey:   apiKey,
		model:    model,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
	switch s.provider {
	case ProviderGroq:
		s.endpoint = groqEndpoint
	default:
		s.endpoint = openAIEndpoint
	}
	return s
}

// Complete sends one chat-completion request and returns the first choice's
// message text. maxTokens <= 0 leaves the cap to the provider.
func (s *Service) Complete(ctx context.Context, messages []Message, temperature float64, maxTokens int) (string, error) {
	if s.provider == ProviderNone {
		return "", fmt.Errorf("LLM provider not configured")
	}

	reqBody := map[string]interface{}{
		"model":       s.model,
		"messages":    messages,
		"temperature": temperature,
	}
	if maxTokens > 0 {
		reqBody["max_tokens"] = maxTokens
	}

	jsonData, _ := json.Marshal(reqBody)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", &UpstreamError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", &ResponseShapeError{Reason: fmt.Sprintf("decode failed: %v", err)}
	}
	if len(result.Choices) == 0 {
		return "", &ResponseShapeError{Reason: "no choices in response"}
	}

	return result.Choices[0].Message.Content, nil
}
