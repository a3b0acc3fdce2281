package subproc

import (
	"context"
	"runtime"
	"strings"
	"testing"
	"time"
)

func TestRunForwardsOutput(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}

	var lines []string
	opts := Options{Progress: func(line string) { lines = append(lines, line) }}

	if err := Run(context.Background(), opts, "sh", "-c", "echo one; echo two >&2"); err != nil {
		t.Fatal(err)
	}
	if len(lines) != 2 {
		t.Errorf("lines = %v, want stdout and stderr", lines)
	}
}

func TestRunErrorCarriesTail(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}

	err := Run(context.Background(), Options{}, "sh", "-c", "echo something broke; exit 2")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "something broke") {
		t.Errorf("error should include output tail: %v", err)
	}
}

func TestRunHandlesOversizedLines(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}

	var lines []string
	opts := Options{Progress: func(line string) { lines = append(lines, line) }}

	// a single multi-megabyte line must not stall the output reader
	errCh := make(chan error, 1)
	go func() {
		errCh <- Run(context.Background(), opts,
			"sh", "-c", "head -c 2000000 /dev/zero | tr '\\0' 'a'; echo; echo done")
	}()

	select {
	case err := <-errCh:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return for a >1MB output line")
	}

	if len(lines) != 2 {
		t.Fatalf("lines = %d, want the long line plus done", len(lines))
	}
	if len(lines[0]) != 2000000 {
		t.Errorf("first line length = %d, want 2000000", len(lines[0]))
	}
	if lines[1] != "done" {
		t.Errorf("last line = %q, want done", lines[1])
	}
}

func TestRunEnvAppended(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires sh")
	}

	var lines []string
	opts := Options{
		Env:      []string{"SUBPROC_TEST_VAR=hello"},
		Progress: func(line string) { lines = append(lines, line) },
	}
	if err := Run(context.Background(), opts, "sh", "-c", "echo $SUBPROC_TEST_VAR"); err != nil {
		t.Fatal(err)
	}
	if len(lines) != 1 || lines[0] != "hello" {
		t.Errorf("lines = %v, want [hello]", lines)
	}
}
