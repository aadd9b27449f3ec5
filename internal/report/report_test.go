package report

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/radgen/radgen/internal/models"
)

func testRequest(label string) Request {
	return Request{
		Classification: models.Classification{
			Label:      label,
			Confidence: 0.87,
			Scores:     map[string]float32{label: 0.87},
		},
		AnalyzedAt: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
	}
}

func TestBuildPrompt(t *testing.T) {
	req := testRequest(models.LabelCOVID)
	req.Patient = models.PatientInfo{
		PatientID:       "PX-1042",
		Age:             "61",
		ClinicalHistory: "fever and dry cough for five days",
	}

	prompt := BuildPrompt(req)

	require.Contains(t, prompt, "COVID-19")
	require.Contains(t, prompt, "87.0%")
	require.Contains(t, prompt, "2026-03-14 09:30:00")
	require.Contains(t, prompt, "PX-1042")
	require.Contains(t, prompt, "fever and dry cough")
	require.Contains(t, prompt, "FINDINGS:")
	require.Contains(t, prompt, "IMPRESSION:")
	require.Contains(t, prompt, "RECOMMENDATIONS:")
	require.Contains(t, prompt, "DISCLAIMER")
	require.NotContains(t, prompt, "Referring Physician", "empty fields must be omitted")
}

func TestPatientContextEmpty(t *testing.T) {
	got := PatientContext(models.PatientInfo{})
	require.Equal(t, "PATIENT INFORMATION: Not provided", got)
}

func TestTemplateAllLabels(t *testing.T) {
	tmpl := NewTemplate()
	ctx := context.Background()

	for _, label := range models.Labels() {
		t.Run(label, func(t *testing.T) {
			text, err := tmpl.GenerateReport(ctx, testRequest(label))
			require.NoError(t, err)
			require.NotEmpty(t, text)
			require.Contains(t, text, "CHEST X-RAY INTERPRETATION REPORT")
			require.Contains(t, text, "87.0%")
			require.Contains(t, text, "RECOMMENDATIONS:")
		})
	}
}

func TestTemplateUnknownLabel(t *testing.T) {
	tmpl := NewTemplate()
	_, err := tmpl.GenerateReport(context.Background(), testRequest("Pleural Effusion"))
	require.Error(t, err)
}

type failingProvider struct{ err error }

func (f *failingProvider) GenerateReport(context.Context, Request) (string, error) {
	return "", f.err
}
func (f *failingProvider) Name() string { return "failing" }

type stubProvider struct{ text string }

func (s *stubProvider) GenerateReport(context.Context, Request) (string, error) {
	return s.text, nil
}
func (s *stubProvider) Name() string { return "stub" }

func TestServiceUsesPrimaryProvider(t *testing.T) {
	svc := &Service{
		provider:      &stubProvider{text: "primary report"},
		fallback:      NewTemplate(),
		allowFallback: true,
	}

	text, name, err := svc.Generate(context.Background(), testRequest(models.LabelNormal))
	require.NoError(t, err)
	require.Equal(t, "primary report", text)
	require.Equal(t, "stub", name)
}

func TestServiceFallsBackOnRemoteFailure(t *testing.T) {
	// Simulated timeout: the pipeline must survive with a template report.
	remoteErr := fmt.Errorf("%w: context deadline exceeded", ErrRemoteService)
	svc := &Service{
		provider:      &failingProvider{err: remoteErr},
		fallback:      NewTemplate(),
		allowFallback: true,
	}

	text, name, err := svc.Generate(context.Background(), testRequest(models.LabelViralPneumonia))
	require.NoError(t, err)
	require.Equal(t, "template", name)
	require.True(t, strings.Contains(text, "viral pneumonia") || strings.Contains(text, "Viral Pneumonia"))
}

func TestServiceSurfacesErrorWhenFallbackDisabled(t *testing.T) {
	remoteErr := fmt.Errorf("%w: HTTP 429", ErrRemoteService)
	svc := &Service{
		provider:      &failingProvider{err: remoteErr},
		fallback:      NewTemplate(),
		allowFallback: false,
	}

	_, _, err := svc.Generate(context.Background(), testRequest(models.LabelNormal))
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrRemoteService))
}

func TestNewServiceUnsupportedProvider(t *testing.T) {
	_, err := NewService("watson", "", true)
	require.Error(t, err)
}

func TestNewServiceKnownProviders(t *testing.T) {
	for _, name := range []string{"gemini", "ollama", "template"} {
		svc, err := NewService(name, "", true)
		require.NoError(t, err, name)
		require.NotNil(t, svc)
	}
}

func TestGeminiWithoutAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	g := NewGemini("")
	_, err := g.GenerateReport(context.Background(), testRequest(models.LabelNormal))
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrRemoteService))
}
