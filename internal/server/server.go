package server

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/ziadkadry99/ecoform/internal/db"
	"github.com/ziadkadry99/ecoform/internal/fields"
	"github.com/ziadkadry99/ecoform/internal/form"
	"github.com/ziadkadry99/ecoform/internal/history"
	"github.com/ziadkadry99/ecoform/internal/images"
	"github.com/ziadkadry99/ecoform/internal/live"
	"github.com/ziadkadry99/ecoform/internal/page"
	"github.com/ziadkadry99/ecoform/internal/sampler"
	"github.com/ziadkadry99/ecoform/internal/schema"
	"github.com/ziadkadry99/ecoform/internal/session"
)

// Config holds server configuration.
type Config struct {
	Port          int
	AllowAll      bool // allow all CORS origins (dev mode)
	ImagesDir     string
	ImagesBaseURL string
	ReloadDelay   time.Duration
	MaxDraws      int
	SessionIdle   time.Duration // in-memory session lifetime without requests
}

// Server hosts the form API, the live reload channel and the HTML page.
type Server struct {
	cfg        Config
	db         *db.DB
	compute    form.Computer
	logger     *zap.Logger
	history    *history.Store
	hub        *live.Hub
	manager    *form.Manager
	checker    *images.Checker
	router     chi.Router
	httpServer *http.Server
	sweepCtx   context.Context
	stopSweep  context.CancelFunc
}

// New creates a server. computer may be nil, in which case submissions fail.
func New(cfg Config, database *db.DB, computer form.Computer, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		cfg:     cfg,
		db:      database,
		compute: computer,
		logger:  logger,
		history: history.NewStore(database),
		hub:     live.NewHub(logger.Named("live")),
		checker: images.NewChecker(cfg.ImagesDir, cfg.ImagesBaseURL),
	}
	s.manager = form.NewManager(s.newSession, cfg.SessionIdle)
	s.sweepCtx, s.stopSweep = context.WithCancel(context.Background())
	s.router = s.buildRouter()
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// newSession builds the synchronizer behind one browser session.
func (s *Server) newSession(sessionID string, f fields.Fields) (*form.Synchronizer, error) {
	return form.New(form.Options{
		Store:       session.NewSQLStore(s.db, sessionID),
		Fields:      f,
		Sampler:     sampler.New(rand.New(rand.NewSource(time.Now().UnixNano())), s.cfg.MaxDraws),
		Compute:     s.compute,
		Reloader:    s.hub.Reloader(sessionID),
		History:     s.history.Recorder(sessionID),
		Logger:      s.logger.With(zap.String("session", sessionID)),
		ReloadDelay: s.cfg.ReloadDelay,
	})
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(timeoutExcept(60*time.Second, form.SubmitPath))

	// CORS
	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", form.SessionHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	form.RegisterRoutes(r, s.manager, s.hub)
	history.RegisterRoutes(r, s.history)
	images.RegisterRoutes(r, s.checker, s.cfg.ImagesDir, s.status)
	page.RegisterRoutes(r, s.pageData)
	r.Get("/api/sessions", s.handleSessions)

	return r
}

// timeoutExcept applies middleware.Timeout to everything except WebSocket
// handshakes and the given paths, which may legitimately run for longer.
func timeoutExcept(d time.Duration, paths ...string) func(http.Handler) http.Handler {
	timeout := middleware.Timeout(d)
	exempt := make(map[string]bool, len(paths))
	for _, p := range paths {
		exempt[p] = true
	}
	return func(next http.Handler) http.Handler {
		limited := timeout(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if websocket.IsWebSocketUpgrade(r) || exempt[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}
			limited.ServeHTTP(w, r)
		})
	}
}

func (s *Server) status(ctx context.Context, sessionID string) (string, error) {
	v, _, err := session.NewSQLStore(s.db, sessionID).Get(ctx, schema.KeyStatus)
	return v, err
}

func (s *Server) pageData(ctx context.Context, sessionID string) (page.Data, error) {
	var data page.Data
	err := s.manager.Do(ctx, sessionID, func(sync *form.Synchronizer, _ *fields.Map) error {
		values, err := sync.Snapshot(ctx)
		if err != nil {
			return err
		}
		status, err := sync.Status(ctx)
		if err != nil {
			return err
		}
		reports, err := s.checker.Check(status)
		if err != nil {
			return err
		}
		data = page.Data{Session: sessionID, Status: status, Values: values, Images: reports}
		return nil
	})
	return data, err
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := session.List(r.Context(), s.db)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if sessions == nil {
		sessions = []session.Info{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sessions)
}

// Router returns the chi router for registering additional routes.
func (s *Server) Router() chi.Router { return s.router }

// Database returns the database connection.
func (s *Server) Database() *db.DB { return s.db }

// Hub returns the live reload hub.
func (s *Server) Hub() *live.Hub { return s.hub }

// Start begins listening on the configured port and drops idle sessions
// from memory until Shutdown.
func (s *Server) Start() error {
	go s.manager.RunSweeper(s.sweepCtx, sweepInterval(s.cfg.SessionIdle))

	s.logger.Info("ecoform server listening", zap.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

func sweepInterval(idle time.Duration) time.Duration {
	if idle <= 0 {
		idle = form.DefaultIdleTimeout
	}
	if half := idle / 2; half > 0 && half < time.Minute {
		return half
	}
	return time.Minute
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.stopSweep()
	return s.httpServer.Shutdown(ctx)
}
