// Package schema describes the fixed set of numeric fields the simulation
// form manages: their storage keys, default literals and the request body
// sent to the compute backend.
package schema

import (
	"fmt"
	"strconv"
)

const (
	// FaksCount is the number of disturbance coefficient pairs.
	FaksCount = 14
	// CfCount is the number of initial values and their restrictions.
	CfCount = 5

	// KeyTime stores the selected time checkpoint.
	KeyTime = "time-value"
	// KeyStatus stores the completion marker.
	KeyStatus = "status"
	// StatusField is the id of the visible status field.
	StatusField = "status-input"

	// Completed is the marker value the backend returns after a successful run.
	Completed = "Выполнено"
)

// EquationSet describes one equation index and how many parameters it takes.
type EquationSet struct {
	Index int
	Arity int
}

// Equations lists the equation sets in page order. Index 9 has no inputs.
var Equations = []EquationSet{
	{1, 2}, {2, 2}, {3, 3}, {4, 2}, {5, 2}, {6, 2},
	{7, 2}, {8, 2}, {10, 2}, {11, 3}, {12, 2},
}

// EquationSlots is the number of positional equation slots on the wire.
const EquationSlots = 12

// TimeCheckpoints are the discrete time values the form offers.
var TimeCheckpoints = []float64{0, 0.25, 0.5, 0.75, 1}

// FaksKey returns the key of coefficient j (1 or 2) of disturbance i.
func FaksKey(i, j int) string { return fmt.Sprintf("faks-%d-%d", i, j) }

// InitKey returns the key of initial value i.
func InitKey(i int) string { return fmt.Sprintf("init-eq-%d", i) }

// RestrictionKey returns the key of restriction i.
func RestrictionKey(i int) string { return fmt.Sprintf("restrictions-%d", i) }

// EquationKey returns the key of parameter n of equation k.
func EquationKey(k, n int) string { return fmt.Sprintf("equations-%d-%d", k, n) }

// Keys returns every schema key in page order, excluding the status marker.
func Keys() []string {
	keys := []string{KeyTime}
	for i := 1; i <= FaksCount; i++ {
		keys = append(keys, FaksKey(i, 1), FaksKey(i, 2))
	}
	for i := 1; i <= CfCount; i++ {
		keys = append(keys, InitKey(i))
	}
	for i := 1; i <= CfCount; i++ {
		keys = append(keys, RestrictionKey(i))
	}
	for _, eq := range Equations {
		for n := 1; n <= eq.Arity; n++ {
			keys = append(keys, EquationKey(eq.Index, n))
		}
	}
	return keys
}

// IsKey reports whether key names a schema field.
func IsKey(key string) bool {
	for _, k := range Keys() {
		if k == key {
			return true
		}
	}
	return false
}

// Schema holds one complete set of form values, as text.
type Schema struct {
	Time         string
	Faks         [FaksCount][2]string
	Init         [CfCount]string
	Restrictions [CfCount]string
	// Equations is keyed by equation index; index 9 is never present.
	Equations map[int][]string
}

// New returns an empty schema with equation slices sized per arity.
func New() Schema {
	s := Schema{Equations: make(map[int][]string, len(Equations))}
	for _, eq := range Equations {
		s.Equations[eq.Index] = make([]string, eq.Arity)
	}
	return s
}

// Values flattens the schema into key/value pairs.
func (s Schema) Values() map[string]string {
	out := make(map[string]string, len(Keys()))
	out[KeyTime] = s.Time
	for i := 0; i < FaksCount; i++ {
		out[FaksKey(i+1, 1)] = s.Faks[i][0]
		out[FaksKey(i+1, 2)] = s.Faks[i][1]
	}
	for i := 0; i < CfCount; i++ {
		out[InitKey(i+1)] = s.Init[i]
		out[RestrictionKey(i+1)] = s.Restrictions[i]
	}
	for _, eq := range Equations {
		vals := s.Equations[eq.Index]
		for n := 1; n <= eq.Arity; n++ {
			v := ""
			if n <= len(vals) {
				v = vals[n-1]
			}
			out[EquationKey(eq.Index, n)] = v
		}
	}
	return out
}

// FromValues builds a schema by looking up every key with get.
func FromValues(get func(key string) string) Schema {
	s := New()
	s.Time = get(KeyTime)
	for i := 0; i < FaksCount; i++ {
		s.Faks[i][0] = get(FaksKey(i+1, 1))
		s.Faks[i][1] = get(FaksKey(i+1, 2))
	}
	for i := 0; i < CfCount; i++ {
		s.Init[i] = get(InitKey(i + 1))
		s.Restrictions[i] = get(RestrictionKey(i + 1))
	}
	for _, eq := range Equations {
		for n := 1; n <= eq.Arity; n++ {
			s.Equations[eq.Index][n-1] = get(EquationKey(eq.Index, n))
		}
	}
	return s
}

// FormatValue renders a number the way the page stores it: shortest
// representation, no trailing zeros.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
