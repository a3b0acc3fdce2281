// Package cmd wires the finetune CLI together.
package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/evalstate/finetune/envconfig"
	"github.com/evalstate/finetune/history"
	"github.com/evalstate/finetune/version"
)

func appendEnvDocs(cmd *cobra.Command, envs []envconfig.EnvVar) {
	if len(envs) == 0 {
		return
	}

	envUsage := `
Environment Variables:
`
	for _, e := range envs {
		envUsage += fmt.Sprintf("      %-24s   %s\n", e.Name, e.Description)
	}

	cmd.SetUsageTemplate(cmd.UsageTemplate() + envUsage)
}

func versionHandler(cmd *cobra.Command, _ []string) {
	fmt.Fprintln(cmd.OutOrStdout(), "finetune version", version.Version)
}

// NewCLI builds the root command with all subcommands attached.
func NewCLI() *cobra.Command {
	cobra.EnableCommandSorting = false

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: envconfig.LogLevel(),
	})))

	rootCmd := &cobra.Command{
		Use:           "finetune",
		Short:         "Fine-tuning utilities for the Hugging Face Hub",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		Run: func(cmd *cobra.Command, args []string) {
			if version, _ := cmd.Flags().GetBool("version"); version {
				versionHandler(cmd, args)
				return
			}

			cmd.Print(cmd.UsageString())
		},
	}

	rootCmd.Flags().BoolP("version", "v", false, "Show version information")

	checkCmd := newCheckCmd()
	trainCmd := newTrainCmd()
	exportCmd := newExportCmd()
	downloadCmd := newDownloadCmd()
	historyCmd := newHistoryCmd()

	envVars := envconfig.AsMap()
	tokenEnvs := []envconfig.EnvVar{envVars["HF_TOKEN"], envVars["HF_ENDPOINT"]}

	for _, cmd := range []*cobra.Command{
		checkCmd,
		trainCmd,
		exportCmd,
		downloadCmd,
	} {
		switch cmd {
		case checkCmd:
			appendEnvDocs(cmd, []envconfig.EnvVar{
				envVars["FINETUNE_UV"],
				envVars["FINETUNE_CHECK_TIMEOUT"],
			})
		case exportCmd:
			appendEnvDocs(cmd, []envconfig.EnvVar{
				envVars["HF_TOKEN"],
				envVars["HF_USERNAME"],
				envVars["ADAPTER_MODEL"],
				envVars["BASE_MODEL"],
				envVars["OUTPUT_REPO"],
				envVars["FINETUNE_WORKDIR"],
				envVars["FINETUNE_LLAMACPP"],
				envVars["FINETUNE_UV"],
			})
		default:
			appendEnvDocs(cmd, tokenEnvs)
		}
	}

	rootCmd.AddCommand(
		checkCmd,
		trainCmd,
		exportCmd,
		downloadCmd,
		historyCmd,
	)

	return rootCmd
}

// recordRun stores the outcome of a command in the local history database.
// History is best effort: failures only log.
func recordRun(command, detail string, runErr error, duration time.Duration) {
	store, err := history.Open(envconfig.DataDir())
	if err != nil {
		slog.Debug("history unavailable", "error", err)
		return
	}
	defer store.Close()

	outcome := history.OutcomeSuccess
	if runErr != nil {
		outcome = history.OutcomeFailed
	}
	if _, err := store.Record(command, detail, outcome, duration); err != nil {
		slog.Debug("recording run failed", "error", err)
	}
}
