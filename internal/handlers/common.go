package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/radgen/radgen/internal/classifier"
	"github.com/radgen/radgen/internal/imaging"
	"github.com/radgen/radgen/internal/models"
	"github.com/radgen/radgen/internal/pdf"
	"github.com/radgen/radgen/internal/report"
	"github.com/radgen/radgen/internal/storage"
)

// Classifier runs a forward pass over a preprocessed tensor.
type Classifier interface {
	Classify(tensor []float32) (*models.Classification, error)
}

// ReportGenerator drafts the narrative report and names the provider
// that produced it.
type ReportGenerator interface {
	Generate(ctx context.Context, req report.Request) (string, string, error)
}

type Handler struct {
	store      *storage.AnalysisStore
	classifier Classifier
	reports    ReportGenerator
	uploadsDir string
	staticDir  string
}

func New(c Classifier, r ReportGenerator, uploadsDir, staticDir string) *Handler {
	return &Handler{
		store:      storage.New(),
		classifier: c,
		reports:    r,
		uploadsDir: uploadsDir,
		staticDir:  staticDir,
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, code int) {
	slog.Error(message, "status", code)
	http.Error(w, message, code)
}

// statusFor maps pipeline failure kinds onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, imaging.ErrDecode), errors.Is(err, imaging.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, classifier.ErrModelUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, report.ErrRemoteService):
		return http.StatusBadGateway
	case errors.Is(err, pdf.ErrRender):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) getSessionOrError(w http.ResponseWriter, id string) (*models.AnalysisSession, bool) {
	session, exists := h.store.Get(id)
	if !exists {
		h.writeError(w, "Session not found", http.StatusNotFound)
		return nil, false
	}
	return session, true
}
