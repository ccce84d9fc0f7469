// Package gemini implements the completion backend on top of the Google
// Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/pandacode/pandacode/internal/provider"
)

// Backend sends prompts to the Gemini API and returns the text of the
// first candidate. One request, one response; failures are classified and
// surfaced without retry.
type Backend struct {
	client Client
	model  string
}

// New creates a Backend for the given client and model name.
func New(client Client, model string) *Backend {
	if client == nil {
		panic("client is required")
	}
	return &Backend{client: client, model: model}
}

// Model returns the configured model name.
func (b *Backend) Model() string {
	return b.model
}

// GenerateText sends a single-turn prompt and returns the response text.
func (b *Backend) GenerateText(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{genai.NewPartFromText(prompt)},
		},
	}

	resp, err := b.client.GenerateContent(ctx, b.model, contents, &genai.GenerateContentConfig{})
	if err != nil {
		return "", mapAPIError(err)
	}

	return textOf(resp)
}

// textOf extracts the text of the first candidate.
func textOf(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", &provider.Error{
			Code:    provider.ErrorCodeInvalidRequest,
			Message: "no candidates in response",
		}
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil {
		return "", provider.ErrEmptyResponse
	}

	var text string
	for _, part := range candidate.Content.Parts {
		text += part.Text
	}
	if text == "" {
		return "", provider.ErrEmptyResponse
	}
	return text, nil
}

// mapAPIError classifies Gemini API errors.
func mapAPIError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 401, 403:
			return &provider.Error{
				Code:       provider.ErrorCodeAuth,
				Message:    "authentication failed",
				Underlying: err,
			}
		case 429:
			return &provider.Error{
				Code:       provider.ErrorCodeRateLimit,
				Message:    "rate limit exceeded",
				Underlying: err,
			}
		case 400:
			return &provider.Error{
				Code:       provider.ErrorCodeInvalidRequest,
				Message:    fmt.Sprintf("invalid request: %s", apiErr.Message),
				Underlying: err,
			}
		case 500, 502, 503, 504:
			return &provider.Error{
				Code:       provider.ErrorCodeUnavailable,
				Message:    "service unavailable",
				Underlying: err,
			}
		default:
			return &provider.Error{
				Code:       provider.ErrorCodeNetwork,
				Message:    fmt.Sprintf("API error: %s", apiErr.Message),
				Underlying: err,
			}
		}
	}

	return &provider.Error{
		Code:       provider.ErrorCodeNetwork,
		Message:    "network error",
		Underlying: err,
	}
}
