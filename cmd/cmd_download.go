package cmd

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/evalstate/finetune/format"
	"github.com/evalstate/finetune/huggingface"
	"github.com/evalstate/finetune/progress"
)

func newDownloadCmd() *cobra.Command {
	var revision string
	var patterns []string

	cmd := &cobra.Command{
		Use:   "download MODEL",
		Short: "Download a model snapshot into the local cache",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := huggingface.NewClient()

			p := progress.NewProgress(os.Stderr)
			defer p.Stop()

			var once sync.Once
			var bar *progress.Bar
			opts := []huggingface.DownloadOption{
				huggingface.WithRevision(revision),
				huggingface.WithProgress(func(downloaded, total int64) {
					once.Do(func() {
						bar = progress.NewBar(fmt.Sprintf("pulling %s:", args[0]), total, 0)
						p.Add("download", bar)
					})
					bar.Set(downloaded)
				}),
			}
			if len(patterns) > 0 {
				opts = append(opts, huggingface.WithPatterns(patterns...))
			}

			result, err := client.DownloadSnapshot(cmd.Context(), args[0], opts...)
			p.Stop()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "downloaded %d files (%s) in %s\n",
				len(result.Files), format.HumanBytes(result.TotalSize),
				result.Duration.Round(10*time.Millisecond))
			fmt.Fprintln(out, result.Path)
			return nil
		},
	}

	cmd.Flags().StringVar(&revision, "revision", "main", "Git revision to download")
	cmd.Flags().StringSliceVar(&patterns, "pattern", nil, "Only download files matching these globs")
	return cmd
}
