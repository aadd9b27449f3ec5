package report

import (
	"context"
	"errors"
	"time"

	"github.com/radgen/radgen/internal/models"
)

// ErrRemoteService indicates the remote LLM call failed: network,
// auth, rate limit, or an empty/blocked response.
var ErrRemoteService = errors.New("remote report service failed")

// Request carries everything a provider needs to draft a report.
// Image is optional; only vision-capable providers use it.
type Request struct {
	Classification models.Classification
	Patient        models.PatientInfo
	AnalyzedAt     time.Time
	Image          []byte
}

// Provider drafts a narrative radiology report from a classification.
type Provider interface {
	// GenerateReport performs a single synchronous call; it does not retry.
	GenerateReport(ctx context.Context, req Request) (string, error)
	Name() string
}
