package report

import (
	"context"
	"fmt"
	"log/slog"
	"os"
)

// Service runs the configured provider and, unless disabled, falls
// back to the deterministic template when the remote call fails.
type Service struct {
	provider      Provider
	fallback      *Template
	allowFallback bool
}

// NewService builds a Service for the named provider ("gemini",
// "ollama" or "template"). An empty name reads RADGEN_PROVIDER and
// defaults to gemini.
func NewService(providerName, model string, allowFallback bool) (*Service, error) {
	if providerName == "" {
		providerName = os.Getenv("RADGEN_PROVIDER")
	}
	if providerName == "" {
		providerName = "gemini"
	}

	var provider Provider
	switch providerName {
	case "gemini":
		provider = NewGemini(model)
	case "ollama":
		provider = NewOllama("", model)
	case "template":
		provider = NewTemplate()
	default:
		return nil, fmt.Errorf("unsupported report provider: %s", providerName)
	}

	return &Service{
		provider:      provider,
		fallback:      NewTemplate(),
		allowFallback: allowFallback,
	}, nil
}

// Generate returns the report text and the name of the provider that
// produced it. When the primary provider fails and fallback is allowed,
// the template report is returned instead of the error.
func (s *Service) Generate(ctx context.Context, req Request) (string, string, error) {
	text, err := s.provider.GenerateReport(ctx, req)
	if err == nil {
		return text, s.provider.Name(), nil
	}

	if !s.allowFallback {
		return "", "", err
	}

	slog.Warn("Report provider failed, using template fallback",
		"provider", s.provider.Name(), "err", err)

	text, fbErr := s.fallback.GenerateReport(ctx, req)
	if fbErr != nil {
		return "", "", fmt.Errorf("fallback after %v: %w", err, fbErr)
	}
	return text, s.fallback.Name(), nil
}
