package train

// Intervals are the derived logging, checkpoint, and evaluation cadences
// for a run.
type Intervals struct {
	// StepsPerEpoch is floor(samples / effective batch). Zero for
	// step-based runs or when the sample count is unknown.
	StepsPerEpoch int

	// LoggingSteps is how often metrics are logged.
	LoggingSteps int

	// SaveSteps is how often a checkpoint is written.
	SaveSteps int

	// EvalStrategy is "epoch", "steps", or "" when evaluation is off.
	EvalStrategy string

	// EvalSteps is set when EvalStrategy is "steps".
	EvalSteps int
}

// StepsPerEpoch is the number of optimizer steps one pass over the training
// data takes.
func StepsPerEpoch(trainSamples, batchSize, gradientAccumulation int) int {
	effective := batchSize * gradientAccumulation
	if effective < 1 {
		return 0
	}
	return trainSamples / effective
}

// DeriveIntervals computes the run cadences. Epoch-based runs log ten times
// and checkpoint four times per epoch; step-based runs log twenty times,
// checkpoint four times, and evaluate five times over the whole run.
// trainSamples is the post-split training set size and only matters for
// epoch-based runs.
func DeriveIntervals(cfg Config, trainSamples int) Intervals {
	var iv Intervals
	if cfg.EpochBased() {
		iv.StepsPerEpoch = StepsPerEpoch(trainSamples, cfg.BatchSize, cfg.GradientAccumulation)
		iv.LoggingSteps = max(1, iv.StepsPerEpoch/10)
		iv.SaveSteps = max(1, iv.StepsPerEpoch/4)
		if cfg.EvalSplit > 0 {
			iv.EvalStrategy = "epoch"
		}
		return iv
	}

	iv.LoggingSteps = max(1, cfg.MaxSteps/20)
	iv.SaveSteps = max(1, cfg.MaxSteps/4)
	if cfg.EvalSplit > 0 {
		iv.EvalStrategy = "steps"
		iv.EvalSteps = max(1, cfg.MaxSteps/5)
	}
	return iv
}
