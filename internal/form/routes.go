package form

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ziadkadry99/ecoform/internal/compute"
	"github.com/ziadkadry99/ecoform/internal/fields"
	"github.com/ziadkadry99/ecoform/internal/schema"
)

// Session identification.
const (
	SessionHeader = "X-Session-ID"
	SessionCookie = "ecoform_session"
)

// SubmitPath is the submission endpoint. It runs the remote simulation and
// must not be bound by request timeouts.
const SubmitPath = "/api/form/submit"

// ResolveSession returns the request's session id from the header or the
// cookie. A new id is issued as a cookie when neither is present.
func ResolveSession(w http.ResponseWriter, r *http.Request) string {
	if id := r.Header.Get(SessionHeader); id != "" {
		return id
	}
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	id := uuid.New().String()
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// State is the JSON view of a session's form.
type State struct {
	Session string            `json:"session"`
	Status  string            `json:"status"`
	Fields  map[string]string `json:"fields"`
	Result  *compute.Response `json:"result,omitempty"`
	Error   string            `json:"error,omitempty"`
}

// RegisterRoutes mounts form endpoints under /api/form on the given router.
// live, when non-nil, serves /api/form/live.
func RegisterRoutes(r chi.Router, m *Manager, live http.Handler) {
	r.Route("/api/form", func(r chi.Router) {
		r.Get("/", handleLoad(m))
		r.Post("/random", handleFillRandom(m))
		r.Post("/reset", handleReset(m))
		r.Post("/submit", handleSubmit(m))
		r.Get("/request", handleRequest(m))
		if live != nil {
			r.Handle("/live", live)
		}
	})
}

func stateOf(sessionID string, f *fields.Map) State {
	values := f.Values()
	status := values[schema.StatusField]
	delete(values, schema.StatusField)
	return State{Session: sessionID, Status: status, Fields: values}
}

func handleLoad(m *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := ResolveSession(w, r)
		var state State
		err := m.Do(r.Context(), id, func(s *Synchronizer, f *fields.Map) error {
			if _, err := s.Load(r.Context()); err != nil {
				return err
			}
			state = stateOf(id, f)
			return nil
		})
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, state)
	}
}

func handleFillRandom(m *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := ResolveSession(w, r)
		var state State
		err := m.Do(r.Context(), id, func(s *Synchronizer, f *fields.Map) error {
			if _, err := s.FillRandom(r.Context()); err != nil {
				return err
			}
			state = stateOf(id, f)
			return nil
		})
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, state)
	}
}

func handleReset(m *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := ResolveSession(w, r)
		var state State
		err := m.Do(r.Context(), id, func(s *Synchronizer, f *fields.Map) error {
			if _, err := s.Reset(r.Context()); err != nil {
				return err
			}
			state = stateOf(id, f)
			return nil
		})
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, state)
	}
}

type submitRequest struct {
	Fields map[string]string `json:"fields"`
}

func handleSubmit(m *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := ResolveSession(w, r)

		var body submitRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body: " + err.Error()})
			return
		}
		for key := range body.Fields {
			if !schema.IsKey(key) {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": (&UnknownFieldError{Key: key}).Error()})
				return
			}
		}

		var (
			state  State
			result *compute.Response
		)
		// The run outlives a dropped client; no deadline applies to it.
		ctx := context.WithoutCancel(r.Context())
		err := m.Do(ctx, id, func(s *Synchronizer, f *fields.Map) error {
			f.Load(body.Fields)
			resp, err := s.Submit(ctx)
			result = resp
			state = stateOf(id, f)
			return err
		})
		state.Result = result

		var (
			verr *ValidationError
			terr *TransportError
		)
		switch {
		case err == nil:
			writeJSON(w, http.StatusOK, state)
		case errors.As(err, &verr):
			state.Error = verr.Error()
			writeJSON(w, http.StatusUnprocessableEntity, state)
		case errors.As(err, &terr):
			state.Error = terr.Error()
			writeJSON(w, http.StatusBadGateway, state)
		default:
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
	}
}

func handleRequest(m *Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := ResolveSession(w, r)
		var req schema.Request
		err := m.Do(r.Context(), id, func(s *Synchronizer, _ *fields.Map) error {
			values, err := s.Snapshot(r.Context())
			req = values.Request()
			return err
		})
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, req)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
