package report

import (
	"context"
	"fmt"
	"os"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const defaultGeminiModel = "gemini-2.5-flash"

// Gemini drafts reports through the Google Gemini API.
type Gemini struct {
	model string
}

// NewGemini returns a Gemini provider. An empty model selects the
// GEMINI_MODEL environment variable, then the default.
func NewGemini(model string) *Gemini {
	if model == "" {
		model = os.Getenv("GEMINI_MODEL")
	}
	if model == "" {
		model = defaultGeminiModel
	}
	return &Gemini{model: model}
}

func (g *Gemini) Name() string { return "gemini" }

// GenerateReport performs a single GenerateContent call. Every failure
// mode, including a missing API key and an empty candidate list, maps
// to ErrRemoteService.
func (g *Gemini) GenerateReport(ctx context.Context, req Request) (string, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return "", fmt.Errorf("%w: GEMINI_API_KEY environment variable not set", ErrRemoteService)
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return "", fmt.Errorf("%w: create client: %v", ErrRemoteService, err)
	}
	defer client.Close()

	model := client.GenerativeModel(g.model)
	model.SetTemperature(0.2)
	model.SetTopP(0.8)
	model.SetMaxOutputTokens(1000)

	resp, err := model.GenerateContent(ctx, genai.Text(BuildPrompt(req)))
	if err != nil {
		return "", fmt.Errorf("%w: generate content: %v", ErrRemoteService, err)
	}

	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates returned", ErrRemoteService)
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("%w: empty content returned", ErrRemoteService)
	}

	if txt, ok := candidate.Content.Parts[0].(genai.Text); ok {
		return string(txt), nil
	}

	return "", fmt.Errorf("%w: unexpected response format", ErrRemoteService)
}
