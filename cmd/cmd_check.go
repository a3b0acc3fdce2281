package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/evalstate/finetune/envconfig"
	"github.com/evalstate/finetune/helpcheck"
)

func newCheckCmd() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "check [path ...]",
		Short: "Run every skill script with --help and report the outcomes",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			started := time.Now()

			scripts, err := helpcheck.Scan(args)
			if err != nil {
				return err
			}
			if len(scripts) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No scripts found under a skills directory.")
				return nil
			}

			runner := helpcheck.NewRunner([]string{envconfig.UvCommand(), "run"})
			if timeout > 0 {
				runner.Timeout = timeout
			} else {
				runner.Timeout = envconfig.CheckTimeout()
			}

			out := cmd.OutOrStdout()
			var report helpcheck.Report
			for _, script := range scripts {
				result, err := runner.Run(cmd.Context(), script)
				if err != nil {
					return err
				}
				helpcheck.PrintResult(out, *result)
				report.Add(*result)
			}
			report.PrintSummary(out)

			var runErr error
			if failed := report.Failed(); failed > 0 {
				runErr = fmt.Errorf("%d of %d scripts failed", failed, report.Total())
			}
			recordRun("check", fmt.Sprintf("%d scripts", report.Total()), runErr, time.Since(started))
			return runErr
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Per-script timeout (default 30s)")
	return cmd
}
