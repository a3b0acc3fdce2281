// Package train drives supervised fine-tuning runs: it validates the
// training configuration, derives logging and checkpoint intervals, and
// launches the training script on a CUDA machine.
package train

import (
	"errors"
	"fmt"
	"strconv"
)

var ErrConfig = errors.New("invalid training configuration")

// Config holds every knob of a fine-tuning run. DefaultConfig supplies the
// defaults; Dataset and OutputRepo must always be set by the caller.
type Config struct {
	// BaseModel is the model to fine-tune.
	BaseModel string

	// Dataset is a hub dataset in ShareGPT/conversation format.
	Dataset string

	// OutputRepo is the hub repo the trained model is pushed to.
	OutputRepo string

	// NumEpochs selects epoch-based training. Mutually preferred over
	// MaxSteps: when both are set, epochs win.
	NumEpochs float64

	// MaxSteps selects step-based training, typically for quick tests.
	MaxSteps int

	// BatchSize is the per-device batch size.
	BatchSize int

	// GradientAccumulation multiplies BatchSize into the effective batch.
	GradientAccumulation int

	LearningRate float64
	MaxSeqLength int

	// LoraR is the LoRA rank; LoraAlpha conventionally matches it.
	LoraR     int
	LoraAlpha int

	// TrackioSpace enables the Trackio dashboard when set to a hub space.
	TrackioSpace string

	// RunName overrides the generated run name.
	RunName string

	// SaveLocal is the local output directory for checkpoints.
	SaveLocal string

	// EvalSplit is the fraction of data held out for evaluation, 0 to 0.5.
	EvalSplit float64

	// NumSamples limits the dataset when positive.
	NumSamples int

	Seed int

	// MergeModel merges LoRA weights into the base model before upload.
	MergeModel bool
}

func DefaultConfig() Config {
	return Config{
		BaseModel:            "LiquidAI/LFM2.5-1.2B-Instruct",
		BatchSize:            2,
		GradientAccumulation: 4,
		LearningRate:         2e-4,
		MaxSeqLength:         2048,
		LoraR:                16,
		LoraAlpha:            16,
		SaveLocal:            "unsloth-output",
		Seed:                 3407,
	}
}

// Validate checks the configuration and applies the one implicit default:
// a run with neither epochs nor steps trains for a single epoch.
func (c *Config) Validate() error {
	if c.Dataset == "" {
		return fmt.Errorf("%w: dataset is required", ErrConfig)
	}
	if c.OutputRepo == "" {
		return fmt.Errorf("%w: output repo is required", ErrConfig)
	}
	if c.NumEpochs < 0 {
		return fmt.Errorf("%w: epochs must be positive", ErrConfig)
	}
	if c.MaxSteps < 0 {
		return fmt.Errorf("%w: steps must be positive", ErrConfig)
	}
	if c.NumEpochs == 0 && c.MaxSteps == 0 {
		c.NumEpochs = 1
	}
	if c.BatchSize < 1 {
		return fmt.Errorf("%w: batch size must be at least 1", ErrConfig)
	}
	if c.GradientAccumulation < 1 {
		return fmt.Errorf("%w: gradient accumulation must be at least 1", ErrConfig)
	}
	if c.EvalSplit < 0 || c.EvalSplit > 0.5 {
		return fmt.Errorf("%w: eval split must be between 0 and 0.5, got %g", ErrConfig, c.EvalSplit)
	}
	if c.LoraR < 1 {
		return fmt.Errorf("%w: LoRA rank must be at least 1", ErrConfig)
	}
	return nil
}

// EpochBased reports whether the run length is expressed in epochs.
func (c Config) EpochBased() bool {
	return c.NumEpochs > 0
}

// EffectiveBatch is the number of samples consumed per optimizer step.
func (c Config) EffectiveBatch() int {
	return c.BatchSize * c.GradientAccumulation
}

// ResolvedRunName returns the explicit run name, or one generated from the
// run length: sft-<n>ep or sft-<n>steps.
func (c Config) ResolvedRunName() string {
	if c.RunName != "" {
		return c.RunName
	}
	if c.EpochBased() {
		return "sft-" + strconv.FormatFloat(c.NumEpochs, 'f', -1, 64) + "ep"
	}
	return fmt.Sprintf("sft-%dsteps", c.MaxSteps)
}

// ReportTo lists the metric backends: tensorboard always, trackio when a
// space is configured.
func (c Config) ReportTo() []string {
	backends := []string{"tensorboard"}
	if c.TrackioSpace != "" {
		backends = append(backends, "trackio")
	}
	return backends
}

// DurationString describes the run length for display.
func (c Config) DurationString() string {
	if c.EpochBased() {
		return strconv.FormatFloat(c.NumEpochs, 'f', -1, 64) + " epoch(s)"
	}
	return fmt.Sprintf("%d steps", c.MaxSteps)
}
