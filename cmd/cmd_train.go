package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/evalstate/finetune/train"
)

func newTrainCmd() *cobra.Command {
	cfg := train.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "train --dataset DATASET --output-repo REPO",
		Short: "Fine-tune a model with supervised training on a GPU",
		RunE: func(cmd *cobra.Command, args []string) error {
			started := time.Now()

			runner := train.NewRunner(cfg)
			out := cmd.OutOrStdout()
			runner.Progress = func(line string) { fmt.Fprintln(out, line) }

			err := runner.Run(cmd.Context())
			// Validate resolves the implicit run length on the runner's
			// copy, so the recorded name comes from there.
			recordRun("train", runner.Config.ResolvedRunName(), err, time.Since(started))
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfg.BaseModel, "base-model", cfg.BaseModel, "Base model to fine-tune")
	flags.StringVar(&cfg.Dataset, "dataset", "", "Dataset in ShareGPT/conversation format (required)")
	flags.StringVar(&cfg.OutputRepo, "output-repo", "", "Hub repo to push the model to (required)")
	flags.Float64Var(&cfg.NumEpochs, "num-epochs", 0, "Number of epochs (default 1 when --max-steps is unset)")
	flags.IntVar(&cfg.MaxSteps, "max-steps", 0, "Training steps, for quick tests")
	flags.IntVar(&cfg.BatchSize, "batch-size", cfg.BatchSize, "Per-device batch size")
	flags.IntVar(&cfg.GradientAccumulation, "gradient-accumulation", cfg.GradientAccumulation, "Gradient accumulation steps")
	flags.Float64Var(&cfg.LearningRate, "learning-rate", cfg.LearningRate, "Learning rate")
	flags.IntVar(&cfg.MaxSeqLength, "max-seq-length", cfg.MaxSeqLength, "Maximum sequence length")
	flags.IntVar(&cfg.LoraR, "lora-r", cfg.LoraR, "LoRA rank")
	flags.IntVar(&cfg.LoraAlpha, "lora-alpha", cfg.LoraAlpha, "LoRA alpha")
	flags.StringVar(&cfg.TrackioSpace, "trackio-space", "", "Hub space for the Trackio dashboard")
	flags.StringVar(&cfg.RunName, "run-name", "", "Custom run name (default generated)")
	flags.StringVar(&cfg.SaveLocal, "save-local", cfg.SaveLocal, "Local directory for checkpoints")
	flags.Float64Var(&cfg.EvalSplit, "eval-split", 0, "Fraction of data held out for evaluation (0.0-0.5)")
	flags.IntVar(&cfg.NumSamples, "num-samples", 0, "Limit dataset samples (default all)")
	flags.IntVar(&cfg.Seed, "seed", cfg.Seed, "Random seed")
	flags.BoolVar(&cfg.MergeModel, "merge-model", false, "Merge LoRA weights into the base model before uploading")

	_ = cmd.MarkFlagRequired("dataset")
	_ = cmd.MarkFlagRequired("output-repo")
	return cmd
}
