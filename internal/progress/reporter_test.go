package progress

import (
	"bytes"
	"testing"
)

func TestCIReporter(t *testing.T) {
	var buf bytes.Buffer
	r := &CIReporter{Out: &buf, Description: "Sweep"}

	r.Start(2)
	r.Update(1, "t=0")
	r.Update(2, "t=0.25")
	r.Finish()

	want := "Sweep: 2 runs\n[1/2] t=0\n[2/2] t=0.25\nSweep: done\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestNewReporterInCI(t *testing.T) {
	t.Setenv("CI", "true")
	if _, ok := NewReporter("Sweep").(*CIReporter); !ok {
		t.Error("expected CIReporter when CI is set")
	}
}

func TestTerminalReporterWithoutStart(t *testing.T) {
	r := &TerminalReporter{}
	// Update and Finish before Start must not panic.
	r.Update(1, "x")
	r.Finish()
}
