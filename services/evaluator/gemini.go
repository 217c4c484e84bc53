package evaluator

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const DefaultGeminiModel = "gemini-2.0-flash"

// GeminiService completes prompts with a Gemini model and asks for JSON output
type GeminiService struct {
	client *genai.Client
	model  string
}

var _ ReasoningService = (*GeminiService)(nil)

// NewGeminiService creates a Gemini API client. No request is made until Complete.
func NewGeminiService(ctx context.Context, apiKey, model string) (*GeminiService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is empty")
	}
	if model == "" {
		model = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiService{client: client, model: model}, nil
}

func (s *GeminiService) Name() string {
	return "gemini:" + s.model
}

// Complete sends prompt as a single user turn and returns the response text
func (s *GeminiService) Complete(ctx context.Context, prompt string) ([]byte, error) {
	resp, err := s.client.Models.GenerateContent(ctx, s.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr[float32](0),
	})
	if err != nil {
		return nil, err
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return nil, fmt.Errorf("empty response from %s", s.model)
	}
	return []byte(text), nil
}
