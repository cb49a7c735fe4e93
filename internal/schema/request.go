package schema

import "fmt"

// Request is the JSON body accepted by the compute backend.
type Request struct {
	Faks             [][]string `json:"faks"`
	InitialEquations []string   `json:"initial_equations"`
	Restrictions     []string   `json:"restrictions"`
	Equations        [][]string `json:"equations"`
	TimeValue        string     `json:"time_value"`
}

// Request converts the schema into the backend body. Equations are sent
// positionally, one slot per equation index 1..12, with slot 9 empty.
func (s Schema) Request() Request {
	req := Request{
		Faks:             make([][]string, FaksCount),
		InitialEquations: append([]string(nil), s.Init[:]...),
		Restrictions:     append([]string(nil), s.Restrictions[:]...),
		Equations:        make([][]string, EquationSlots),
		TimeValue:        s.Time,
	}
	for i := 0; i < FaksCount; i++ {
		req.Faks[i] = []string{s.Faks[i][0], s.Faks[i][1]}
	}
	for slot := 1; slot <= EquationSlots; slot++ {
		vals, ok := s.Equations[slot]
		if !ok {
			req.Equations[slot-1] = []string{}
			continue
		}
		req.Equations[slot-1] = append([]string(nil), vals...)
	}
	return req
}

// Schema converts a backend body back into a schema, checking its shape.
func (r Request) Schema() (Schema, error) {
	if len(r.Faks) != FaksCount {
		return Schema{}, fmt.Errorf("faks: want %d pairs, got %d", FaksCount, len(r.Faks))
	}
	if len(r.InitialEquations) != CfCount {
		return Schema{}, fmt.Errorf("initial_equations: want %d values, got %d", CfCount, len(r.InitialEquations))
	}
	if len(r.Restrictions) != CfCount {
		return Schema{}, fmt.Errorf("restrictions: want %d values, got %d", CfCount, len(r.Restrictions))
	}
	if len(r.Equations) != EquationSlots {
		return Schema{}, fmt.Errorf("equations: want %d slots, got %d", EquationSlots, len(r.Equations))
	}

	s := New()
	s.Time = r.TimeValue
	for i, pair := range r.Faks {
		if len(pair) != 2 {
			return Schema{}, fmt.Errorf("faks[%d]: want 2 values, got %d", i, len(pair))
		}
		s.Faks[i] = [2]string{pair[0], pair[1]}
	}
	copy(s.Init[:], r.InitialEquations)
	copy(s.Restrictions[:], r.Restrictions)
	for _, eq := range Equations {
		vals := r.Equations[eq.Index-1]
		if len(vals) != eq.Arity {
			return Schema{}, fmt.Errorf("equations[%d]: want %d values, got %d", eq.Index, eq.Arity, len(vals))
		}
		copy(s.Equations[eq.Index], vals)
	}
	return s, nil
}
