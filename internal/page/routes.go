package page

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/ecoform/internal/form"
)

// Source assembles the page data for a session.
type Source func(ctx context.Context, sessionID string) (Data, error)

// RegisterRoutes mounts the HTML summary at GET /.
func RegisterRoutes(r chi.Router, source Source) {
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		id := form.ResolveSession(w, r)
		data, err := source(r.Context(), id)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		out, err := Render(data)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(out)
	})
}
