package envconfig

import (
	"log/slog"
	"strconv"
	"time"
)

// String returns a getter for a plain string variable.
func String(key string) func() string {
	return func() string {
		return Var(key)
	}
}

// StringWithDefault returns a getter that falls back to defaultValue when
// the variable is unset or empty.
func StringWithDefault(key, defaultValue string) func() string {
	return func() string {
		if s := Var(key); s != "" {
			return s
		}
		return defaultValue
	}
}

// Bool returns a getter for a boolean variable (default false).
func Bool(key string) func() bool {
	return func() bool {
		if s := Var(key); s != "" {
			b, err := strconv.ParseBool(s)
			if err != nil {
				return true
			}
			return b
		}
		return false
	}
}

// Uint returns a getter for an unsigned integer variable with a default.
func Uint(key string, defaultValue uint) func() uint {
	return func() uint {
		if s := Var(key); s != "" {
			if n, err := strconv.ParseUint(s, 10, 64); err != nil {
				slog.Warn("invalid environment variable, using default", "key", key, "value", s, "default", defaultValue)
			} else {
				return uint(n)
			}
		}
		return defaultValue
	}
}

// Duration returns a getter for a duration variable with a default. Plain
// integers are interpreted as seconds.
func Duration(key string, defaultValue time.Duration) func() time.Duration {
	return func() time.Duration {
		if s := Var(key); s != "" {
			if n, err := strconv.ParseInt(s, 10, 64); err == nil {
				return time.Duration(n) * time.Second
			}
			if d, err := time.ParseDuration(s); err != nil {
				slog.Warn("invalid environment variable, using default", "key", key, "value", s, "default", defaultValue)
			} else {
				return d
			}
		}
		return defaultValue
	}
}

// EnvVar describes one environment variable for usage documentation.
type EnvVar struct {
	Name        string
	Value       any
	Description string
}

// AsMap returns every variable the CLI reads, with current values.
func AsMap() map[string]EnvVar {
	return map[string]EnvVar{
		"HF_TOKEN":               {"HF_TOKEN", mask(Token()), "Hub API token used for authenticated requests and uploads"},
		"HF_ENDPOINT":            {"HF_ENDPOINT", Var("HF_ENDPOINT"), "Override the hub endpoint (default https://huggingface.co)"},
		"HF_USERNAME":            {"HF_USERNAME", Username(), "Hub username, used in generated model cards"},
		"ADAPTER_MODEL":          {"ADAPTER_MODEL", AdapterModel(), "Fine-tuned adapter repo to export (owner/name)"},
		"BASE_MODEL":             {"BASE_MODEL", BaseModel(), "Base model the adapter was trained from"},
		"OUTPUT_REPO":            {"OUTPUT_REPO", OutputRepo(), "Hub repo that receives exported GGUF artifacts"},
		"FINETUNE_DEBUG":         {"FINETUNE_DEBUG", LogLevel(), "Show additional debug information (e.g. FINETUNE_DEBUG=1)"},
		"FINETUNE_WORKDIR":       {"FINETUNE_WORKDIR", WorkDir(), "Scratch directory for export intermediates"},
		"FINETUNE_LLAMACPP":      {"FINETUNE_LLAMACPP", LlamaCppDir(), "Checkout directory for the llama.cpp toolchain"},
		"FINETUNE_HOME":          {"FINETUNE_HOME", DataDir(), "Directory for the run-history database"},
		"FINETUNE_UV":            {"FINETUNE_UV", UvCommand(), "Runner used to execute Python scripts (default \"uv\")"},
		"FINETUNE_CHECK_TIMEOUT": {"FINETUNE_CHECK_TIMEOUT", CheckTimeout(), "Per-script timeout for the check command (default 30s)"},
	}
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "***"
}
