package helpcheck

import (
	"strings"
	"testing"
	"time"
)

func sampleReport() *Report {
	var r Report
	r.Add(Result{Script: "skills/a.py", Outcome: OutcomeSuccess, Stdout: "usage: a", Duration: 120 * time.Millisecond})
	r.Add(Result{Script: "skills/b.py", Outcome: OutcomeFailed, ExitCode: 2, Stderr: "missing dep"})
	r.Add(Result{Script: "skills/c.py", Outcome: OutcomeTimeout, Duration: 30 * time.Second})
	return &r
}

func TestReportCounts(t *testing.T) {
	r := sampleReport()

	if got := r.Total(); got != 3 {
		t.Errorf("Total = %d, want 3", got)
	}
	if got := r.Successful(); got != 1 {
		t.Errorf("Successful = %d, want 1", got)
	}
	if got := r.Failed(); got != 2 {
		t.Errorf("Failed = %d, want 2 (timeout counts as failed)", got)
	}
}

func TestPrintResult(t *testing.T) {
	var sb strings.Builder
	PrintResult(&sb, Result{Script: "skills/b.py", Outcome: OutcomeFailed, ExitCode: 2, Stderr: "missing dep", Stdout: "partial"})

	out := sb.String()
	for _, want := range []string{"Running: skills/b.py", "FAILED - Return code: 2", "Stderr:", "missing dep", "Stdout:", "partial"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintResultTimeout(t *testing.T) {
	var sb strings.Builder
	PrintResult(&sb, Result{Script: "skills/c.py", Outcome: OutcomeTimeout})

	if !strings.Contains(sb.String(), "TIMEOUT - Command took too long") {
		t.Errorf("timeout block missing:\n%s", sb.String())
	}
}

func TestPrintSummary(t *testing.T) {
	var sb strings.Builder
	sampleReport().PrintSummary(&sb)

	out := sb.String()
	for _, want := range []string{"SCRIPT", "OUTCOME", "SUCCESS", "FAILED", "TIMEOUT", "Total files: 3", "Successful: 1", "Failed: 2"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}
