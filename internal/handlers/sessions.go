package handlers

import (
	"net/http"
	"strings"

	"github.com/radgen/radgen/internal/models"
)

// HandleSessions lists all analysis sessions.
func (h *Handler) HandleSessions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		sessions := h.store.GetAll()
		sessionList := make([]*models.AnalysisSession, 0, len(sessions))
		for _, session := range sessions {
			sessionList = append(sessionList, session)
		}
		h.writeJSON(w, sessionList)
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleSessionDetail serves a single session, its PDF report, or
// deletes it.
func (h *Handler) HandleSessionDetail(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/sessions/")

	if strings.HasSuffix(id, "/pdf") {
		h.handleSessionPDF(w, r, strings.TrimSuffix(id, "/pdf"))
		return
	}

	session, ok := h.getSessionOrError(w, id)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.writeJSON(w, session)
	case http.MethodDelete:
		h.store.Delete(id)
		w.WriteHeader(http.StatusNoContent)
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
