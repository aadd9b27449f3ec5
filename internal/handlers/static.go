package handlers

import (
	"net/http"
	"path/filepath"
	"strings"
)

// HandleStatic serves the single-page UI and uploaded images.
func (h *Handler) HandleStatic(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/static/")

	// Prevent directory traversal attacks
	if strings.Contains(path, "..") {
		http.Error(w, "Invalid file path", http.StatusBadRequest)
		return
	}

	if strings.HasPrefix(path, "uploads/") {
		http.ServeFile(w, r, filepath.Join(h.uploadsDir, strings.TrimPrefix(path, "uploads/")))
		return
	}

	if path == "" || path == "/" {
		path = "index.html"
	}

	switch {
	case strings.HasSuffix(path, ".css"):
		w.Header().Set("Content-Type", "text/css")
	case strings.HasSuffix(path, ".js"):
		w.Header().Set("Content-Type", "application/javascript")
	case strings.HasSuffix(path, ".html"):
		w.Header().Set("Content-Type", "text/html")
	}

	http.ServeFile(w, r, filepath.Join(h.staticDir, path))
}
