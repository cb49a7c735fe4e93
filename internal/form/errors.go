package form

import (
	"fmt"

	"github.com/ziadkadry99/ecoform/internal/fields"
)

// ValidationError reports an initial value that exceeds its restriction, or
// a pair that is not numeric. Submission is aborted and nothing is stored.
type ValidationError struct {
	Index int    // 1-based Cf index
	Init  string // initial value as entered
	Limit string // restriction as entered
	// NotNumber is set when either value failed to parse.
	NotNumber bool
}

func (e *ValidationError) Error() string {
	if e.NotNumber {
		return fmt.Sprintf("Ошибка: значения Cf%d (%s, %s) должны быть числами", e.Index, e.Init, e.Limit)
	}
	return fmt.Sprintf("Ошибка: Начальное значение Cf%d (%s) превышает предел (%s)", e.Index, e.Init, e.Limit)
}

// TransportError wraps any failure of the remote compute call.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return "compute request failed: " + e.Err.Error() }

func (e *TransportError) Unwrap() error { return e.Err }

// UnknownFieldError is returned when editing a key outside the schema.
type UnknownFieldError struct {
	Key string
}

func (e *UnknownFieldError) Error() string {
	if s := fields.Suggest(e.Key); s != "" {
		return fmt.Sprintf("unknown field %q (did you mean %q?)", e.Key, s)
	}
	return fmt.Sprintf("unknown field %q", e.Key)
}
