package images

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/ecoform/internal/form"
)

// StatusFunc returns the completion status stored for a session.
type StatusFunc func(ctx context.Context, sessionID string) (string, error)

// RegisterRoutes mounts GET /api/images, and serves the image files themselves
// when a local directory and a path-only base URL are configured.
func RegisterRoutes(r chi.Router, checker *Checker, dir string, status StatusFunc) {
	r.Get("/api/images", func(w http.ResponseWriter, r *http.Request) {
		id := form.ResolveSession(w, r)
		st, err := status(r.Context(), id)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		reports, err := checker.Check(st)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, reports)
	})

	if dir != "" && strings.HasPrefix(checker.baseURL, "/") {
		prefix := checker.baseURL + "/"
		r.Handle(prefix+"*", http.StripPrefix(prefix, http.FileServer(http.Dir(dir))))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
