package train

import (
	"context"
	_ "embed"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/evalstate/finetune/discover"
	"github.com/evalstate/finetune/envconfig"
	"github.com/evalstate/finetune/format"
	"github.com/evalstate/finetune/internal/subproc"
)

//go:embed scripts/sft_train.py
var trainScript []byte

// Runner launches a fine-tuning run as a uv subprocess.
type Runner struct {
	Config Config

	// Progress receives status lines and subprocess output when set.
	Progress func(string)
}

func NewRunner(cfg Config) *Runner {
	return &Runner{Config: cfg}
}

// Run validates the configuration, requires a CUDA device, then executes
// the embedded training script with fully resolved flags. The subprocess
// inherits the environment plus fast-transfer and Trackio settings.
func (r *Runner) Run(ctx context.Context) error {
	if err := r.Config.Validate(); err != nil {
		return err
	}

	devices, err := discover.CudaDevices(ctx)
	if err != nil {
		return fmt.Errorf("%w\nrun on a machine with a CUDA-capable GPU, or on HF Jobs:\n"+
			"  hf jobs uv run ... --flavor a10g-small --secrets HF_TOKEN", err)
	}
	for _, d := range devices {
		r.progress(fmt.Sprintf("CUDA device %d: %s (%s)", d.Index, d.Name, format.HumanBytes(int64(d.MemoryMiB)*1024*1024)))
	}

	r.printPlan()

	workDir := envconfig.WorkDir()
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return err
	}
	script := filepath.Join(workDir, "sft_train.py")
	if err := os.WriteFile(script, trainScript, 0o644); err != nil {
		return err
	}

	env := []string{"HF_HUB_ENABLE_HF_TRANSFER=1"}
	if r.Config.TrackioSpace != "" {
		env = append(env, "TRACKIO_SPACE_ID="+r.Config.TrackioSpace)
		r.progress("Trackio dashboard: https://huggingface.co/spaces/" + r.Config.TrackioSpace)
	}

	args := append([]string{"run", script}, r.Config.Args()...)
	return subproc.Run(ctx, subproc.Options{Env: env, Progress: r.Progress}, envconfig.UvCommand(), args...)
}

// Args flattens the configuration into the training script's flags. The run
// name is always resolved here so the subprocess never generates its own.
// Interval flags are included when they can be computed up front: always for
// step-based runs, and for epoch-based runs when the sample count is known.
func (c Config) Args() []string {
	args := []string{
		"--base-model", c.BaseModel,
		"--dataset", c.Dataset,
		"--output-repo", c.OutputRepo,
		"--batch-size", strconv.Itoa(c.BatchSize),
		"--gradient-accumulation", strconv.Itoa(c.GradientAccumulation),
		"--learning-rate", strconv.FormatFloat(c.LearningRate, 'g', -1, 64),
		"--max-seq-length", strconv.Itoa(c.MaxSeqLength),
		"--lora-r", strconv.Itoa(c.LoraR),
		"--lora-alpha", strconv.Itoa(c.LoraAlpha),
		"--run-name", c.ResolvedRunName(),
		"--save-local", c.SaveLocal,
		"--seed", strconv.Itoa(c.Seed),
	}

	if c.EpochBased() {
		args = append(args, "--num-epochs", strconv.FormatFloat(c.NumEpochs, 'f', -1, 64))
	} else {
		args = append(args, "--max-steps", strconv.Itoa(c.MaxSteps))
	}
	if c.EvalSplit > 0 {
		args = append(args, "--eval-split", strconv.FormatFloat(c.EvalSplit, 'f', -1, 64))
	}
	if c.NumSamples > 0 {
		args = append(args, "--num-samples", strconv.Itoa(c.NumSamples))
	}
	if c.MergeModel {
		args = append(args, "--merge-model")
	}

	if iv, ok := c.knownIntervals(); ok {
		args = append(args,
			"--logging-steps", strconv.Itoa(iv.LoggingSteps),
			"--save-steps", strconv.Itoa(iv.SaveSteps))
		if iv.EvalSteps > 0 {
			args = append(args, "--eval-steps", strconv.Itoa(iv.EvalSteps))
		}
	}

	return args
}

// knownIntervals derives intervals when enough is known before the dataset
// is loaded.
func (c Config) knownIntervals() (Intervals, bool) {
	if !c.EpochBased() {
		return DeriveIntervals(c, 0), true
	}
	if c.NumSamples > 0 {
		trainSamples := int(math.Floor(float64(c.NumSamples) * (1 - c.EvalSplit)))
		return DeriveIntervals(c, trainSamples), true
	}
	return Intervals{}, false
}

func (r *Runner) printPlan() {
	c := r.Config
	r.progress("Configuration:")
	r.progress("  Base model:      " + c.BaseModel)
	r.progress("  Dataset:         " + c.Dataset)
	r.progress("  Training:        " + c.DurationString())
	r.progress(fmt.Sprintf("  Batch size:      %d x %d = %d", c.BatchSize, c.GradientAccumulation, c.EffectiveBatch()))
	r.progress(fmt.Sprintf("  Learning rate:   %g", c.LearningRate))
	r.progress(fmt.Sprintf("  LoRA rank:       %d", c.LoraR))
	r.progress(fmt.Sprintf("  Seed:            %d", c.Seed))
	r.progress("  Output repo:     " + c.OutputRepo)
	if c.EvalSplit > 0 {
		r.progress(fmt.Sprintf("  Eval split:      %g", c.EvalSplit))
	}
	if iv, ok := r.Config.knownIntervals(); ok && iv.StepsPerEpoch > 0 {
		r.progress(fmt.Sprintf("  Steps per epoch: ~%d", iv.StepsPerEpoch))
	}
}

func (r *Runner) progress(line string) {
	if r.Progress != nil {
		r.Progress(line)
	}
}
