// Package subproc runs external commands with line-by-line output
// forwarding, used for the Python and build tool invocations.
package subproc

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// Options adjust how a command runs. The zero value is usable.
type Options struct {
	// Dir is the working directory when set.
	Dir string

	// Env entries are appended to the inherited environment.
	Env []string

	// Progress receives each output line (stdout and stderr interleaved).
	Progress func(string)
}

const tailLines = 20

// Run executes a command and waits for it. On failure the returned error
// carries the last lines of combined output so callers do not need to
// capture it separately.
func Run(ctx context.Context, opts Options, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = opts.Dir
	if len(opts.Env) > 0 {
		cmd.Env = append(cmd.Environ(), opts.Env...)
	}

	pr, pw := io.Pipe()
	cmd.Stdout = pw
	cmd.Stderr = pw

	if err := cmd.Start(); err != nil {
		return err
	}

	// The reader must consume the pipe until EOF: if it stopped early the
	// command's output copy would block and Wait would never return. A
	// bufio.Reader has no line length cap, unlike bufio.Scanner.
	var tail []string
	done := make(chan struct{})
	go func() {
		defer close(done)
		r := bufio.NewReader(pr)
		for {
			line, err := r.ReadString('\n')
			line = strings.TrimRight(line, "\r\n")
			if line != "" || err == nil {
				if opts.Progress != nil {
					opts.Progress(line)
				}
				tail = append(tail, line)
				if len(tail) > tailLines {
					tail = tail[1:]
				}
			}
			if err != nil {
				return
			}
		}
	}()

	err := cmd.Wait()
	pw.Close()
	<-done

	if err != nil {
		return fmt.Errorf("%s %s: %w\n%s", name, strings.Join(args, " "), err, strings.Join(tail, "\n"))
	}
	return nil
}
