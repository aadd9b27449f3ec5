package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/radgen/radgen/internal/pdf"
)

// handleSessionPDF renders the session's report as a PDF and streams
// it as a download.
func (h *Handler) handleSessionPDF(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodGet {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	session, ok := h.getSessionOrError(w, id)
	if !ok {
		return
	}
	if session.Classification == nil {
		h.writeError(w, "Session has no classification", http.StatusConflict)
		return
	}

	doc := pdf.Document{
		Classification: *session.Classification,
		Patient:        session.Patient,
		ReportText:     session.ReportText,
		AnalyzedAt:     session.CreatedAt,
	}

	// Embed the stored upload when it is still on disk; the PDF is
	// complete without it.
	if session.ImagePath != "" {
		data, err := os.ReadFile(filepath.Join(h.uploadsDir, session.ImagePath))
		if err != nil {
			slog.Warn("Stored image unavailable for PDF", "session_id", id, "err", err)
		} else {
			doc.Image = data
			doc.ImageFormat = formatFromExtension(session.ImagePath)
		}
	}

	data, err := pdf.Render(doc)
	if err != nil {
		h.writeError(w, err.Error(), statusFor(err))
		return
	}

	filename := fmt.Sprintf("radgen_report_%s.pdf", session.CreatedAt.Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	if _, err := w.Write(data); err != nil {
		slog.Error("Unable to write PDF response", "err", err)
	}
}

func formatFromExtension(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "jpeg"
	case ".gif":
		return "gif"
	default:
		return "png"
	}
}
