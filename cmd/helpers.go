package cmd

import (
	"fmt"
	"io"
	"math/rand"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ziadkadry99/ecoform/internal/compute"
	"github.com/ziadkadry99/ecoform/internal/config"
	"github.com/ziadkadry99/ecoform/internal/db"
	"github.com/ziadkadry99/ecoform/internal/fields"
	"github.com/ziadkadry99/ecoform/internal/form"
	"github.com/ziadkadry99/ecoform/internal/history"
	"github.com/ziadkadry99/ecoform/internal/sampler"
	"github.com/ziadkadry99/ecoform/internal/schema"
	"github.com/ziadkadry99/ecoform/internal/session"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `ecoform init` to create a config file", err)
	}
	if sessionFlag != "" {
		cfg.Session = sessionFlag
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// newLogger builds the zap logger for commands. Logs go to stderr so
// stdout stays clean for form output and MCP traffic.
func newLogger() (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	if verbose {
		zc.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return zc.Build()
}

// app bundles everything a form command needs for one session.
type app struct {
	cfg     *config.Config
	db      *db.DB
	logger  *zap.Logger
	client  *compute.Client
	history *history.Store
	fields  *fields.Map
	reload  *form.PendingReload
	form    *form.Synchronizer
}

func openApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := newLogger()
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	database, err := db.Open(cfg.DBPath())
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	a := &app{
		cfg:     cfg,
		db:      database,
		logger:  logger,
		client:  compute.NewClient(cfg.BackendURL, cfg.ComputeTimeout()),
		history: history.NewStore(database),
		fields:  fields.NewMap(),
		reload:  &form.PendingReload{},
	}

	a.form, err = form.New(form.Options{
		Store:       session.NewSQLStore(database, cfg.Session),
		Fields:      a.fields,
		Sampler:     sampler.New(rand.New(rand.NewSource(time.Now().UnixNano())), cfg.MaxDraws),
		Compute:     a.client,
		Reloader:    a.reload,
		History:     a.history.Recorder(cfg.Session),
		Logger:      logger.With(zap.String("session", cfg.Session)),
		ReloadDelay: cfg.ReloadDelay(),
	})
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("creating form: %w", err)
	}

	logger.Debug("session opened",
		zap.String("session", cfg.Session),
		zap.String("db", database.Path()),
		zap.String("backend", cfg.BackendURL))
	return a, nil
}

func (a *app) Close() {
	a.logger.Sync()
	a.db.Close()
}

// printForm writes the collected field values and the status field.
func (a *app) printForm(w io.Writer) {
	status, _ := a.fields.Get(schema.StatusField)
	form.Format(w, a.form.Collect(), status)
}

// parseAssignments splits key=value pairs given with --set.
func parseAssignments(pairs []string) ([][2]string, error) {
	out := make([][2]string, 0, len(pairs))
	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid assignment %q: expected key=value", p)
		}
		out = append(out, [2]string{key, strings.TrimSpace(value)})
	}
	return out, nil
}
