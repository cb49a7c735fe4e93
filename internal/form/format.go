package form

import (
	"fmt"
	"io"
	"strings"

	"github.com/ziadkadry99/ecoform/internal/schema"
)

// Format writes a plain-text listing of values grouped the way the page
// shows them, keyed by field id.
func Format(w io.Writer, values schema.Schema, status string) {
	if status != "" {
		fmt.Fprintf(w, "status: %s\n", status)
	}
	fmt.Fprintf(w, "%s = %s\n", schema.KeyTime, values.Time)

	fmt.Fprintln(w, "\n# Cf")
	for i := 0; i < schema.CfCount; i++ {
		fmt.Fprintf(w, "%s = %-6s %s = %-6s  %s\n",
			schema.InitKey(i+1), values.Init[i],
			schema.RestrictionKey(i+1), values.Restrictions[i],
			schema.CfLabels[i])
	}

	fmt.Fprintln(w, "\n# faks")
	for i := 0; i < schema.FaksCount; i++ {
		fmt.Fprintf(w, "%s = %-6s %s = %-6s  %s\n",
			schema.FaksKey(i+1, 1), values.Faks[i][0],
			schema.FaksKey(i+1, 2), values.Faks[i][1],
			schema.FaksLabels[i])
	}

	fmt.Fprintln(w, "\n# equations")
	for _, eq := range schema.Equations {
		parts := make([]string, eq.Arity)
		for n := 0; n < eq.Arity; n++ {
			parts[n] = fmt.Sprintf("%s = %s", schema.EquationKey(eq.Index, n+1), values.Equations[eq.Index][n])
		}
		fmt.Fprintf(w, "%s  %s\n", strings.Join(parts, "  "), schema.EquationLabels[eq.Index])
	}
}

// FormatString returns Format's output as a string.
func FormatString(values schema.Schema, status string) string {
	var b strings.Builder
	Format(&b, values, status)
	return b.String()
}
