// Package envconfig resolves all environment-driven configuration for the
// finetune CLI. Getters read the environment on every call so .env loading
// and tests can change values at runtime.
package envconfig

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Var reads an environment variable, trimming whitespace and quotes.
func Var(key string) string {
	return strings.Trim(strings.TrimSpace(os.Getenv(key)), "\"'")
}

var (
	// Token is the hub API token (HF_TOKEN)
	Token = String("HF_TOKEN")

	// Username is the hub username used for attribution (HF_USERNAME)
	Username = String("HF_USERNAME")

	// AdapterModel is the fine-tuned adapter to export (ADAPTER_MODEL)
	AdapterModel = String("ADAPTER_MODEL")

	// OutputRepo is the hub repo exported artifacts are pushed to (OUTPUT_REPO)
	OutputRepo = String("OUTPUT_REPO")

	// BaseModel is the base model the adapter was trained from (BASE_MODEL)
	BaseModel = StringWithDefault("BASE_MODEL", "Qwen/Qwen2.5-0.5B")

	// UvCommand is the runner used for Python scripts (FINETUNE_UV)
	UvCommand = StringWithDefault("FINETUNE_UV", "uv")

	// CheckTimeout bounds each script invocation of the check command
	CheckTimeout = Duration("FINETUNE_CHECK_TIMEOUT", 30*time.Second)
)

// WorkDir is the scratch directory for merge/convert/quantize intermediates.
// Configurable via FINETUNE_WORKDIR, default $TMPDIR/finetune.
func WorkDir() string {
	if s := Var("FINETUNE_WORKDIR"); s != "" {
		return s
	}

	return filepath.Join(os.TempDir(), "finetune")
}

// LlamaCppDir is where the llama.cpp toolchain is cloned and built.
// Configurable via FINETUNE_LLAMACPP, default <workdir>/llama.cpp.
func LlamaCppDir() string {
	if s := Var("FINETUNE_LLAMACPP"); s != "" {
		return s
	}

	return filepath.Join(WorkDir(), "llama.cpp")
}

// DataDir holds the run-history database.
// Configurable via FINETUNE_HOME, default $HOME/.finetune.
func DataDir() string {
	if s := Var("FINETUNE_HOME"); s != "" {
		return s
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".finetune")
	}

	return filepath.Join(home, ".finetune")
}

// LogLevel returns the slog level, debug when FINETUNE_DEBUG is truthy.
func LogLevel() slog.Level {
	level := slog.LevelInfo
	if s := Var("FINETUNE_DEBUG"); s != "" {
		switch s {
		case "0", "false", "FALSE", "False":
		default:
			level = slog.LevelDebug
		}
	}

	return level
}
