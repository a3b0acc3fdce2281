package train

import (
	"errors"
	"slices"
	"strings"
	"testing"
)

func validConfig() Config {
	cfg := DefaultConfig()
	cfg.Dataset = "mlabonne/FineTome-100k"
	cfg.OutputRepo = "alice/model-finetuned"
	return cfg
}

func TestValidateDefaultsToOneEpoch(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	if cfg.NumEpochs != 1 {
		t.Errorf("NumEpochs = %g, want default 1", cfg.NumEpochs)
	}
	if !cfg.EpochBased() {
		t.Error("default run should be epoch based")
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing dataset", func(c *Config) { c.Dataset = "" }},
		{"missing output repo", func(c *Config) { c.OutputRepo = "" }},
		{"negative epochs", func(c *Config) { c.NumEpochs = -1 }},
		{"negative steps", func(c *Config) { c.MaxSteps = -5 }},
		{"zero batch", func(c *Config) { c.BatchSize = 0 }},
		{"zero accumulation", func(c *Config) { c.GradientAccumulation = 0 }},
		{"eval split too large", func(c *Config) { c.EvalSplit = 0.6 }},
		{"negative eval split", func(c *Config) { c.EvalSplit = -0.1 }},
		{"zero lora rank", func(c *Config) { c.LoraR = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrConfig) {
				t.Errorf("Validate() = %v, want ErrConfig", err)
			}
		})
	}
}

func TestValidateEvalSplitBoundary(t *testing.T) {
	cfg := validConfig()
	cfg.EvalSplit = 0.5
	if err := cfg.Validate(); err != nil {
		t.Errorf("eval split of exactly 0.5 should pass: %v", err)
	}
}

func TestResolvedRunName(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"one epoch", func(c *Config) { c.NumEpochs = 1 }, "sft-1ep"},
		{"fractional epochs", func(c *Config) { c.NumEpochs = 1.5 }, "sft-1.5ep"},
		{"steps", func(c *Config) { c.MaxSteps = 500 }, "sft-500steps"},
		{"explicit wins", func(c *Config) { c.MaxSteps = 500; c.RunName = "my-run" }, "my-run"},
		{"epochs win over steps", func(c *Config) { c.NumEpochs = 2; c.MaxSteps = 500 }, "sft-2ep"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			if got := cfg.ResolvedRunName(); got != tt.want {
				t.Errorf("ResolvedRunName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReportTo(t *testing.T) {
	cfg := validConfig()
	if got := cfg.ReportTo(); !slices.Equal(got, []string{"tensorboard"}) {
		t.Errorf("ReportTo() = %v", got)
	}

	cfg.TrackioSpace = "alice/trackio"
	if got := cfg.ReportTo(); !slices.Equal(got, []string{"tensorboard", "trackio"}) {
		t.Errorf("ReportTo() with space = %v", got)
	}
}

func TestArgs(t *testing.T) {
	cfg := validConfig()
	cfg.NumEpochs = 1
	cfg.EvalSplit = 0.2
	cfg.NumSamples = 1000

	args := cfg.Args()
	joined := " " + strings.Join(args, " ") + " "

	for _, want := range []string{
		"--dataset mlabonne/FineTome-100k",
		"--output-repo alice/model-finetuned",
		"--num-epochs 1",
		"--eval-split 0.2",
		"--num-samples 1000",
		"--run-name sft-1ep",
		"--seed 3407",
		// 1000 samples minus the 20% eval split leaves 800, so 100
		// steps/epoch at the default effective batch of 8
		"--logging-steps 10",
		"--save-steps 25",
	} {
		if !strings.Contains(joined, " "+want+" ") {
			t.Errorf("args missing %q:\n%v", want, args)
		}
	}
	if strings.Contains(joined, "--max-steps") {
		t.Errorf("epoch run must not pass --max-steps: %v", args)
	}
	if strings.Contains(joined, "--merge-model") {
		t.Errorf("merge flag must be off by default: %v", args)
	}
}

func TestArgsStepBased(t *testing.T) {
	cfg := validConfig()
	cfg.MaxSteps = 500
	cfg.MergeModel = true

	args := cfg.Args()
	joined := " " + strings.Join(args, " ") + " "

	for _, want := range []string{
		"--max-steps 500",
		"--run-name sft-500steps",
		"--logging-steps 25",
		"--save-steps 125",
		"--merge-model",
	} {
		if !strings.Contains(joined, " "+want+" ") {
			t.Errorf("args missing %q:\n%v", want, args)
		}
	}
	if strings.Contains(joined, "--num-epochs") {
		t.Errorf("step run must not pass --num-epochs: %v", args)
	}
	if strings.Contains(joined, "--eval-steps") {
		t.Errorf("no eval split means no eval steps: %v", args)
	}
}

func TestArgsEpochWithoutSampleCountOmitsIntervals(t *testing.T) {
	cfg := validConfig()
	cfg.NumEpochs = 1

	joined := strings.Join(cfg.Args(), " ")
	if strings.Contains(joined, "--logging-steps") || strings.Contains(joined, "--save-steps") {
		t.Errorf("intervals are unknown before the dataset loads: %v", joined)
	}
}
