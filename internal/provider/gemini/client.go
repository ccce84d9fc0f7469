package gemini

import (
	"context"

	"google.golang.org/genai"
)

// Client defines the interface for interacting with the Gemini API.
// This abstraction allows for easier testing and potential future
// implementations.
type Client interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// RealClient wraps the official SDK client to satisfy Client.
type RealClient struct {
	client *genai.Client
}

// NewRealClient creates a RealClient from an SDK client.
func NewRealClient(client *genai.Client) *RealClient {
	return &RealClient{client: client}
}

// GenerateContent calls the SDK's GenerateContent method.
func (c *RealClient) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return c.client.Models.GenerateContent(ctx, model, contents, config)
}
