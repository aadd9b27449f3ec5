package handlers

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/radgen/radgen/internal/imaging"
	"github.com/radgen/radgen/internal/models"
	"github.com/radgen/radgen/internal/report"
)

const maxUploadBytes = 10 * 1024 * 1024

// HandleAnalyze accepts an X-ray image as a multipart upload or as a
// JSON body with an image URL, runs the full pipeline and returns the
// stored analysis session.
func (h *Handler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		h.handleURLAnalyze(w, r)
		return
	}

	h.handleUploadAnalyze(w, r)
}

func (h *Handler) handleUploadAnalyze(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("image")
	if err != nil {
		file, header, err = r.FormFile("file")
		if err != nil {
			h.writeError(w, "No image file provided; use 'image' as the form field name", http.StatusBadRequest)
			return
		}
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		h.writeError(w, "Failed to read file contents: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if len(data) >= maxUploadBytes {
		h.writeError(w, "File too large (max 10MB)", http.StatusBadRequest)
		return
	}

	slog.Info("Received upload", "filename", header.Filename, "size", len(data))

	patient := models.PatientInfo{
		PatientID:          r.FormValue("patient_id"),
		Age:                r.FormValue("age"),
		Gender:             r.FormValue("gender"),
		ClinicalHistory:    r.FormValue("clinical_history"),
		ReferringPhysician: r.FormValue("referring_physician"),
	}

	session, err := h.runPipeline(r.Context(), data, patient)
	if err != nil {
		h.writeError(w, err.Error(), statusFor(err))
		return
	}

	h.writeJSON(w, session)
}

func (h *Handler) handleURLAnalyze(w http.ResponseWriter, r *http.Request) {
	var request struct {
		ImageURL string             `json:"image_url"`
		Patient  models.PatientInfo `json:"patient"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	if request.ImageURL == "" {
		h.writeError(w, "image_url is required", http.StatusBadRequest)
		return
	}

	data, err := h.downloadImage(r.Context(), request.ImageURL)
	if err != nil {
		h.writeError(w, "Failed to fetch image URL: "+err.Error(), http.StatusBadRequest)
		return
	}

	session, err := h.runPipeline(r.Context(), data, request.Patient)
	if err != nil {
		h.writeError(w, err.Error(), statusFor(err))
		return
	}

	slog.Info("Session created from URL", "session_id", session.ID, "url", request.ImageURL)
	h.writeJSON(w, session)
}

func (h *Handler) downloadImage(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: HTTP %d", resp.StatusCode)
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxUploadBytes))
}

// runPipeline executes the four stages in order: decode/preprocess,
// classify, generate report, persist the session. A failure at any
// stage aborts the whole request.
func (h *Handler) runPipeline(ctx context.Context, data []byte, patient models.PatientInfo) (*models.AnalysisSession, error) {
	loaded, err := imaging.Load(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	classification, err := h.classifier.Classify(loaded.Tensor)
	if err != nil {
		return nil, err
	}

	analyzedAt := time.Now()
	text, providerName, err := h.reports.Generate(ctx, report.Request{
		Classification: *classification,
		Patient:        patient,
		AnalyzedAt:     analyzedAt,
	})
	if err != nil {
		return nil, err
	}

	filename, err := h.saveImage(data, loaded.Format)
	if err != nil {
		return nil, err
	}

	session := &models.AnalysisSession{
		ID:             uuid.NewString(),
		ImagePath:      filename,
		ImageURL:       "/static/uploads/" + filename,
		ImageWidth:     loaded.Width,
		ImageHeight:    loaded.Height,
		Classification: classification,
		ReportText:     text,
		ReportProvider: providerName,
		Patient:        patient,
		Warnings:       loaded.Warnings,
		CreatedAt:      analyzedAt,
	}
	h.store.Set(session.ID, session)

	slog.Info("Analysis completed",
		"session_id", session.ID,
		"label", classification.Label,
		"confidence", classification.Confidence,
		"report_provider", providerName)

	return session, nil
}

// saveImage stores the upload under a content hash so repeated uploads
// of the same image share one file.
func (h *Handler) saveImage(data []byte, format string) (string, error) {
	if err := os.MkdirAll(h.uploadsDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create uploads directory: %w", err)
	}

	sum := md5.Sum(data)
	filename := hex.EncodeToString(sum[:]) + extensionFor(format)
	path := filepath.Join(h.uploadsDir, filename)

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to save image: %w", err)
	}
	return filename, nil
}

func extensionFor(format string) string {
	switch format {
	case "jpeg":
		return ".jpg"
	case "gif":
		return ".gif"
	default:
		return ".png"
	}
}
