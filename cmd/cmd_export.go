package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/evalstate/finetune/export"
	"github.com/evalstate/finetune/huggingface"
	"github.com/evalstate/finetune/llamacpp"
)

func newExportCmd() *cobra.Command {
	var cfg export.Config

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Convert a LoRA adapter to quantized GGUF files and upload them",
		RunE: func(cmd *cobra.Command, args []string) error {
			started := time.Now()

			env := export.ConfigFromEnv()
			if cfg.AdapterModel == "" {
				cfg.AdapterModel = env.AdapterModel
			}
			if cfg.BaseModel == "" {
				cfg.BaseModel = env.BaseModel
			}
			if cfg.OutputRepo == "" {
				cfg.OutputRepo = env.OutputRepo
			}
			if cfg.Username == "" {
				cfg.Username = env.Username
			}
			if cfg.Username == "" && strings.Contains(cfg.AdapterModel, "/") {
				cfg.Username = huggingface.RepoOwner(cfg.AdapterModel)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Configuration:")
			fmt.Fprintln(out, "  Base model:    "+cfg.BaseModel)
			fmt.Fprintln(out, "  Adapter model: "+cfg.AdapterModel)
			fmt.Fprintln(out, "  Output repo:   "+cfg.OutputRepo)
			fmt.Fprintln(out)

			pipeline := export.NewPipeline(cfg, huggingface.NewClient())
			pipeline.Progress = func(line string) { fmt.Fprintln(out, line) }

			result, err := pipeline.Run(cmd.Context())
			recordRun("export", cfg.OutputRepo, err, time.Since(started))
			if err != nil {
				return err
			}

			recommended := llamacpp.ArtifactName(cfg.ModelName(), "Q4_K_M")
			fmt.Fprintln(out)
			fmt.Fprintln(out, "GGUF conversion complete!")
			fmt.Fprintln(out, "Repository:", result.RepoURL)
			if len(result.SkippedQuants) > 0 {
				fmt.Fprintln(out, "Skipped quantizations:", strings.Join(result.SkippedQuants, ", "))
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Download with:")
			fmt.Fprintf(out, "  huggingface-cli download %s %s\n", cfg.OutputRepo, recommended)
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Use with Ollama:")
			fmt.Fprintln(out, "  1. Download the GGUF file")
			fmt.Fprintf(out, "  2. Create Modelfile: FROM ./%s\n", recommended)
			fmt.Fprintln(out, "  3. ollama create my-model -f Modelfile")
			fmt.Fprintln(out, "  4. ollama run my-model")
			return nil
		},
	}

	cmd.Flags().StringVar(&cfg.AdapterModel, "adapter", "", "Fine-tuned adapter repo (default $ADAPTER_MODEL)")
	cmd.Flags().StringVar(&cfg.BaseModel, "base", "", "Base model the adapter was trained from (default $BASE_MODEL)")
	cmd.Flags().StringVar(&cfg.OutputRepo, "output-repo", "", "Hub repo for GGUF artifacts (default $OUTPUT_REPO)")
	cmd.Flags().StringVar(&cfg.Username, "username", "", "Hub username for the model card (default $HF_USERNAME)")
	return cmd
}
