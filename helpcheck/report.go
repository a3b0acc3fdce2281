package helpcheck

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
)

const rule = "============================================================"

// Report accumulates per-script results.
type Report struct {
	Results []Result
}

func (r *Report) Add(result Result) {
	r.Results = append(r.Results, result)
}

func (r *Report) Total() int { return len(r.Results) }

func (r *Report) Successful() int {
	var n int
	for _, res := range r.Results {
		if res.Outcome == OutcomeSuccess {
			n++
		}
	}
	return n
}

// Failed counts everything that did not succeed; timeouts are reported
// distinctly per script but count as failures in the summary.
func (r *Report) Failed() int {
	return r.Total() - r.Successful()
}

// PrintResult writes the block for one script, in the shape of the
// original runner output.
func PrintResult(w io.Writer, result Result) {
	fmt.Fprintf(w, "\n%s\n", rule)
	fmt.Fprintf(w, "Running: %s\n", result.Script)
	fmt.Fprintf(w, "%s\n", rule)

	switch result.Outcome {
	case OutcomeSuccess:
		fmt.Fprintln(w, "SUCCESS - Output:")
		fmt.Fprintln(w, result.Stdout)
	case OutcomeTimeout:
		fmt.Fprintln(w, "TIMEOUT - Command took too long")
	case OutcomeFailed:
		fmt.Fprintf(w, "FAILED - Return code: %d\n", result.ExitCode)
		if result.Stderr != "" {
			fmt.Fprintln(w, "Stderr:")
			fmt.Fprintln(w, result.Stderr)
		}
		if result.Stdout != "" {
			fmt.Fprintln(w, "Stdout:")
			fmt.Fprintln(w, result.Stdout)
		}
	}
}

// PrintSummary writes the per-script outcome table and the final counts.
func (r *Report) PrintSummary(w io.Writer) {
	fmt.Fprintf(w, "\n%s\n", rule)

	var data [][]string
	for _, res := range r.Results {
		data = append(data, []string{
			res.Script,
			strings.ToUpper(res.Outcome.String()),
			res.Duration.Round(10 * time.Millisecond).String(),
		})
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"SCRIPT", "OUTCOME", "TIME"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.AppendBulk(data)
	table.Render()

	fmt.Fprintln(w, "\nSUMMARY:")
	fmt.Fprintf(w, "Total files: %d\n", r.Total())
	fmt.Fprintf(w, "Successful: %d\n", r.Successful())
	fmt.Fprintf(w, "Failed: %d\n", r.Failed())
	fmt.Fprintf(w, "%s\n", rule)
}
