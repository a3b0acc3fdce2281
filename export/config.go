// Package export merges a LoRA adapter into its base model, converts the
// result to GGUF, quantizes it, and publishes the artifacts to the hub.
package export

import (
	"errors"
	"fmt"
	"strings"

	"github.com/evalstate/finetune/envconfig"
	"github.com/evalstate/finetune/huggingface"
)

var ErrConfig = errors.New("incomplete configuration")

// Config identifies the adapter to export and where artifacts go.
type Config struct {
	// AdapterModel is the fine-tuned LoRA adapter repo, e.g. "user/my-model".
	AdapterModel string

	// BaseModel is the model the adapter was trained from.
	BaseModel string

	// OutputRepo receives the GGUF files.
	OutputRepo string

	// Username is used for README attribution. Defaults to the adapter owner.
	Username string
}

// ConfigFromEnv builds a Config from ADAPTER_MODEL, BASE_MODEL, OUTPUT_REPO
// and HF_USERNAME.
func ConfigFromEnv() Config {
	cfg := Config{
		AdapterModel: envconfig.AdapterModel(),
		BaseModel:    envconfig.BaseModel(),
		OutputRepo:   envconfig.OutputRepo(),
		Username:     envconfig.Username(),
	}
	if cfg.Username == "" && strings.Contains(cfg.AdapterModel, "/") {
		cfg.Username = huggingface.RepoOwner(cfg.AdapterModel)
	}
	return cfg
}

func (c Config) Validate() error {
	if c.AdapterModel == "" {
		return fmt.Errorf("%w: ADAPTER_MODEL is not set", ErrConfig)
	}
	if c.BaseModel == "" {
		return fmt.Errorf("%w: BASE_MODEL is not set", ErrConfig)
	}
	if c.OutputRepo == "" {
		return fmt.Errorf("%w: OUTPUT_REPO is not set", ErrConfig)
	}
	if !strings.Contains(c.AdapterModel, "/") {
		return fmt.Errorf("%w: ADAPTER_MODEL must be owner/name, got %q", ErrConfig, c.AdapterModel)
	}
	if !strings.Contains(c.OutputRepo, "/") {
		return fmt.Errorf("%w: OUTPUT_REPO must be owner/name, got %q", ErrConfig, c.OutputRepo)
	}
	return nil
}

// ModelName is the adapter repo name without its owner, used to name
// GGUF artifacts.
func (c Config) ModelName() string {
	return huggingface.RepoName(c.AdapterModel)
}
