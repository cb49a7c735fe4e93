package schema

import "strings"

// Reset literals.
const (
	DefaultTime        = "0.5"
	DefaultFaksA       = "0.1"
	DefaultFaksB       = "2.0"
	DefaultRestriction = "1.0"

	restoreInit     = "0.5"
	restoreEquation = "0.5"
)

var defaultInit = [CfCount]string{"0.5", "0.7", "0.9", "0.4", "0.5"}

var defaultEquations = map[int][]string{
	1:  {"0.5", "0.5"},
	2:  {"0.3", "15"},
	3:  {"0.3", "0.4", "0.5"},
	4:  {"0.7", "11"},
	5:  {"0.8", "9"},
	6:  {"0.8", "12"},
	7:  {"0.8", "11"},
	8:  {"0.7", "13"},
	10: {"0.55", "13"},
	11: {"0.55", "12", "2"},
	12: {"0.5", "3"},
}

// Defaults returns the canonical reset values.
func Defaults() Schema {
	s := New()
	s.Time = DefaultTime
	for i := 0; i < FaksCount; i++ {
		s.Faks[i] = [2]string{DefaultFaksA, DefaultFaksB}
	}
	s.Init = defaultInit
	for i := 0; i < CfCount; i++ {
		s.Restrictions[i] = DefaultRestriction
	}
	for idx, vals := range defaultEquations {
		s.Equations[idx] = append([]string(nil), vals...)
	}
	return s
}

// RestoreFallback returns the value shown when key is missing from the store
// during a restore. The second result is false for keys without a fallback,
// which are left untouched.
func RestoreFallback(key string) (string, bool) {
	switch {
	case strings.HasPrefix(key, "faks-"):
		if strings.HasSuffix(key, "-1") {
			return DefaultFaksA, true
		}
		return DefaultFaksB, true
	case strings.HasPrefix(key, "init-eq-"):
		return restoreInit, true
	case strings.HasPrefix(key, "restrictions-"):
		return DefaultRestriction, true
	case strings.HasPrefix(key, "equations-"):
		return restoreEquation, true
	}
	return "", false
}

// CollectFallback returns the value submitted when the field for key is
// empty: the reset literal for that key.
func CollectFallback(key string) string {
	return defaultValues[key]
}

var defaultValues = Defaults().Values()
