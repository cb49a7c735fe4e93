// Package form keeps the simulation form's fields and its session store in
// sync: random fills, resets, restores on load, and validated submission to
// the compute backend.
package form

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ziadkadry99/ecoform/internal/compute"
	"github.com/ziadkadry99/ecoform/internal/fields"
	"github.com/ziadkadry99/ecoform/internal/history"
	"github.com/ziadkadry99/ecoform/internal/sampler"
	"github.com/ziadkadry99/ecoform/internal/schema"
	"github.com/ziadkadry99/ecoform/internal/session"
)

// DefaultReloadDelay is how long after a successful submission the host
// reloads.
const DefaultReloadDelay = time.Second

// Status field texts.
const (
	StatusFilledFormat = "Заполнено случайными значениями (t=%s)"
	StatusCleared      = "Очищено (значения из документа)"
	StatusConnError    = "Ошибка соединения"
)

// Computer runs the remote simulation.
type Computer interface {
	DrawGraphics(ctx context.Context, req schema.Request) (*compute.Response, error)
}

// Reloader schedules a host reload after a successful submission.
type Reloader interface {
	ScheduleReload(delay time.Duration)
}

// ReloaderFunc adapts a function to Reloader.
type ReloaderFunc func(delay time.Duration)

func (f ReloaderFunc) ScheduleReload(delay time.Duration) { f(delay) }

// Recorder receives a history event for every operation.
type Recorder interface {
	Record(ctx context.Context, action history.Action, summary, status string, payload map[string]string) error
}

// Sampler draws the random values for FillRandom. *sampler.Sampler
// implements it.
type Sampler interface {
	PickTimeValue() float64
	UniformOpen01() (float64, error)
	ConstrainedCf() (float64, error)
	ConstrainedBelow(limit float64) (float64, error)
	Below(limit float64) (float64, error)
}

// Options configures a Synchronizer. Store and Fields are required.
type Options struct {
	Store       session.Repository
	Fields      fields.Fields
	Sampler     Sampler
	Compute     Computer
	Reloader    Reloader
	History     Recorder
	Logger      *zap.Logger
	ReloadDelay time.Duration
}

// Synchronizer mirrors form fields into the session store.
type Synchronizer struct {
	store       session.Repository
	fields      fields.Fields
	sampler     Sampler
	compute     Computer
	reloader    Reloader
	history     Recorder
	logger      *zap.Logger
	reloadDelay time.Duration
}

// New creates a Synchronizer from opts.
func New(opts Options) (*Synchronizer, error) {
	if opts.Store == nil {
		return nil, errors.New("form: store is required")
	}
	if opts.Fields == nil {
		return nil, errors.New("form: fields are required")
	}
	s := &Synchronizer{
		store:       opts.Store,
		fields:      opts.Fields,
		sampler:     opts.Sampler,
		compute:     opts.Compute,
		reloader:    opts.Reloader,
		history:     opts.History,
		logger:      opts.Logger,
		reloadDelay: opts.ReloadDelay,
	}
	if s.sampler == nil {
		s.sampler = sampler.New(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.reloadDelay <= 0 {
		s.reloadDelay = DefaultReloadDelay
	}
	return s, nil
}

// FillRandom fills every field with schema-valid random values, stores them
// and clears the completion marker.
func (s *Synchronizer) FillRandom(ctx context.Context) (schema.Schema, error) {
	values, err := s.generate()
	if err != nil {
		return schema.Schema{}, fmt.Errorf("generating random values: %w", err)
	}

	if err := s.apply(ctx, values); err != nil {
		return schema.Schema{}, err
	}
	status := fmt.Sprintf(StatusFilledFormat, values.Time)
	s.fields.Set(schema.StatusField, status)

	s.logger.Debug("form filled with random values", zap.String("time", values.Time))
	s.record(ctx, history.ActionFilled, status, "", values.Values())
	return values, nil
}

// generate draws a complete random schema. Initial values are drawn below
// their restriction so the submission invariant holds by construction.
func (s *Synchronizer) generate() (schema.Schema, error) {
	out := schema.New()
	out.Time = schema.FormatValue(s.sampler.PickTimeValue())

	var limits [schema.CfCount]float64
	for i := range limits {
		v, err := s.sampler.ConstrainedCf()
		if err != nil {
			return out, fmt.Errorf("restriction %d: %w", i+1, err)
		}
		limits[i] = v
		out.Restrictions[i] = schema.FormatValue(v)
	}

	for i := 0; i < schema.FaksCount; i++ {
		for j := 0; j < 2; j++ {
			v, err := s.sampler.UniformOpen01()
			if err != nil {
				return out, fmt.Errorf("faks %d-%d: %w", i+1, j+1, err)
			}
			out.Faks[i][j] = schema.FormatValue(v)
		}
	}

	for i, limit := range limits {
		v, err := s.sampler.ConstrainedBelow(limit)
		if errors.Is(err, sampler.ErrExhausted) {
			// Low restrictions (0.21) admit no ConstrainedCf draw at all.
			s.logger.Warn("constrained draw exhausted, drawing uniformly below limit",
				zap.Int("cf", i+1), zap.Float64("limit", limit))
			v, err = s.sampler.Below(limit)
		}
		if err != nil {
			return out, fmt.Errorf("initial value %d: %w", i+1, err)
		}
		out.Init[i] = schema.FormatValue(v)
	}

	for _, eq := range schema.Equations {
		draws := make([]float64, eq.Arity)
		for n := range draws {
			v, err := s.sampler.UniformOpen01()
			if err != nil {
				return out, fmt.Errorf("equation %d-%d: %w", eq.Index, n+1, err)
			}
			draws[n] = v
		}
		if eq.Index == 3 {
			sort.Float64s(draws)
		}
		for n, v := range draws {
			out.Equations[eq.Index][n] = schema.FormatValue(v)
		}
	}
	return out, nil
}

// Reset writes the canonical defaults and clears the completion marker.
func (s *Synchronizer) Reset(ctx context.Context) (schema.Schema, error) {
	values := schema.Defaults()
	if err := s.apply(ctx, values); err != nil {
		return schema.Schema{}, err
	}
	s.fields.Set(schema.StatusField, StatusCleared)

	s.logger.Debug("form reset to defaults")
	s.record(ctx, history.ActionReset, StatusCleared, "", nil)
	return values, nil
}

// apply stores values, mirrors them into the fields and drops the marker.
func (s *Synchronizer) apply(ctx context.Context, values schema.Schema) error {
	flat := values.Values()
	if err := s.store.SetMany(ctx, flat); err != nil {
		return fmt.Errorf("storing form values: %w", err)
	}
	for key, v := range flat {
		s.fields.Set(key, v)
	}
	if err := s.store.Delete(ctx, schema.KeyStatus); err != nil {
		return fmt.Errorf("clearing status: %w", err)
	}
	return nil
}

// Load initialises the fields on page load: without a completion marker the
// form is filled randomly, otherwise stored values are restored.
func (s *Synchronizer) Load(ctx context.Context) (schema.Schema, error) {
	status, _, err := s.store.Get(ctx, schema.KeyStatus)
	if err != nil {
		return schema.Schema{}, fmt.Errorf("reading status: %w", err)
	}
	s.fields.Set(schema.StatusField, status)

	if status != schema.Completed {
		return s.FillRandom(ctx)
	}
	return s.Restore(ctx)
}

// Hydrate copies the stored values and status into the fields without
// recording a history event. Hosts call it when fields start out empty.
func (s *Synchronizer) Hydrate(ctx context.Context) error {
	values, err := s.Snapshot(ctx)
	if err != nil {
		return err
	}
	status, err := s.Status(ctx)
	if err != nil {
		return err
	}
	for key, v := range values.Values() {
		s.fields.Set(key, v)
	}
	s.fields.Set(schema.StatusField, status)
	return nil
}

// Restore copies stored values into the fields, using the per-field
// fallback for anything missing or empty.
func (s *Synchronizer) Restore(ctx context.Context) (schema.Schema, error) {
	status, _, err := s.store.Get(ctx, schema.KeyStatus)
	if err != nil {
		return schema.Schema{}, fmt.Errorf("reading status: %w", err)
	}
	s.fields.Set(schema.StatusField, status)

	for _, key := range schema.Keys() {
		v, _, err := s.store.Get(ctx, key)
		if err != nil {
			return schema.Schema{}, fmt.Errorf("reading %s: %w", key, err)
		}
		if v == "" {
			fallback, ok := schema.RestoreFallback(key)
			if !ok {
				continue
			}
			v = fallback
		}
		s.fields.Set(key, v)
	}

	values := s.Collect()
	s.record(ctx, history.ActionRestored, "restored from session", status, nil)
	return values, nil
}

// Edit sets a single field and stores it.
func (s *Synchronizer) Edit(ctx context.Context, key, value string) error {
	if !schema.IsKey(key) {
		return &UnknownFieldError{Key: key}
	}
	s.fields.Set(key, value)
	if err := s.store.Set(ctx, key, value); err != nil {
		return fmt.Errorf("storing %s: %w", key, err)
	}
	s.record(ctx, history.ActionEdited, key+"="+value, "", map[string]string{key: value})
	return nil
}

// Collect reads the fields into a schema. Empty or unrendered fields take
// their reset literal.
func (s *Synchronizer) Collect() schema.Schema {
	return schema.FromValues(func(key string) string {
		if v, ok := s.fields.Get(key); ok && v != "" {
			return v
		}
		return schema.CollectFallback(key)
	})
}

// Validate checks that every initial value is at most its restriction. It
// stops at the first violation.
func Validate(values schema.Schema) error {
	for i := 0; i < schema.CfCount; i++ {
		initRaw, limitRaw := values.Init[i], values.Restrictions[i]
		initVal, err1 := strconv.ParseFloat(strings.TrimSpace(initRaw), 64)
		limitVal, err2 := strconv.ParseFloat(strings.TrimSpace(limitRaw), 64)
		if err1 != nil || err2 != nil {
			return &ValidationError{Index: i + 1, Init: initRaw, Limit: limitRaw, NotNumber: true}
		}
		if initVal > limitVal {
			return &ValidationError{
				Index: i + 1,
				Init:  schema.FormatValue(initVal),
				Limit: schema.FormatValue(limitVal),
			}
		}
	}
	return nil
}

// Submit validates the fields, stores them and runs the remote simulation.
// On success the returned status becomes the completion marker and a reload
// is scheduled. A *ValidationError leaves the store untouched; a
// *TransportError leaves the marker untouched.
func (s *Synchronizer) Submit(ctx context.Context) (*compute.Response, error) {
	if s.compute == nil {
		return nil, errors.New("form: no compute backend configured")
	}

	values := s.Collect()
	if err := Validate(values); err != nil {
		s.logger.Info("submission rejected", zap.Error(err))
		s.record(ctx, history.ActionRejected, err.Error(), "", nil)
		return nil, err
	}

	flat := values.Values()
	if err := s.store.SetMany(ctx, flat); err != nil {
		return nil, fmt.Errorf("storing form values: %w", err)
	}

	resp, err := s.compute.DrawGraphics(ctx, values.Request())
	if err != nil {
		s.fields.Set(schema.StatusField, StatusConnError)
		s.logger.Error("compute request failed", zap.Error(err))
		s.record(ctx, history.ActionFailed, err.Error(), "", nil)
		return nil, &TransportError{Err: err}
	}

	s.fields.Set(schema.StatusField, fmt.Sprintf("%s (t=%s)", resp.Status, values.Time))
	if err := s.store.Set(ctx, schema.KeyStatus, resp.Status); err != nil {
		return resp, fmt.Errorf("storing status: %w", err)
	}

	s.logger.Info("simulation submitted",
		zap.String("status", resp.Status),
		zap.String("time", values.Time),
		zap.Duration("reload_in", s.reloadDelay))
	s.record(ctx, history.ActionSubmitted, resp.Status+" (t="+values.Time+")", resp.Status, flat)

	if s.reloader != nil {
		s.reloader.ScheduleReload(s.reloadDelay)
	}
	return resp, nil
}

// Snapshot builds a schema from the store alone, applying restore fallbacks
// and then reset literals for anything still missing.
func (s *Synchronizer) Snapshot(ctx context.Context) (schema.Schema, error) {
	var firstErr error
	values := schema.FromValues(func(key string) string {
		v, _, err := s.store.Get(ctx, key)
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("reading %s: %w", key, err)
		}
		if v != "" {
			return v
		}
		if fallback, ok := schema.RestoreFallback(key); ok {
			return fallback
		}
		return schema.CollectFallback(key)
	})
	return values, firstErr
}

// Status returns the stored completion marker, or "" when none is set.
func (s *Synchronizer) Status(ctx context.Context) (string, error) {
	status, _, err := s.store.Get(ctx, schema.KeyStatus)
	if err != nil {
		return "", fmt.Errorf("reading status: %w", err)
	}
	return status, nil
}

// ReloadDelay returns the delay passed to the Reloader after a submission.
func (s *Synchronizer) ReloadDelay() time.Duration { return s.reloadDelay }

func (s *Synchronizer) record(ctx context.Context, action history.Action, summary, status string, payload map[string]string) {
	if s.history == nil {
		return
	}
	if err := s.history.Record(ctx, action, summary, status, payload); err != nil {
		s.logger.Warn("recording history", zap.String("action", string(action)), zap.Error(err))
	}
}
