package envconfig

import (
	"log/slog"
	"path/filepath"
	"testing"
	"time"
)

func TestVar(t *testing.T) {
	tests := map[string]string{
		"value":       "value",
		" value ":     "value",
		`"quoted"`:    "quoted",
		`'quoted'`:    "quoted",
		"  'mixed\" ": "mixed",
	}

	for raw, want := range tests {
		t.Run(raw, func(t *testing.T) {
			t.Setenv("FINETUNE_TEST_VAR", raw)
			if got := Var("FINETUNE_TEST_VAR"); got != want {
				t.Errorf("Var(%q) = %q, want %q", raw, got, want)
			}
		})
	}
}

func TestStringWithDefault(t *testing.T) {
	get := StringWithDefault("FINETUNE_TEST_STR", "fallback")

	t.Setenv("FINETUNE_TEST_STR", "")
	if got := get(); got != "fallback" {
		t.Errorf("unset: got %q, want fallback", got)
	}

	t.Setenv("FINETUNE_TEST_STR", "explicit")
	if got := get(); got != "explicit" {
		t.Errorf("set: got %q, want explicit", got)
	}
}

func TestDuration(t *testing.T) {
	get := Duration("FINETUNE_TEST_DUR", 30*time.Second)

	tests := []struct {
		value string
		want  time.Duration
	}{
		{"", 30 * time.Second},
		{"45", 45 * time.Second},
		{"2m", 2 * time.Minute},
		{"1h30m", 90 * time.Minute},
		{"bogus", 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("FINETUNE_TEST_DUR", tt.value)
			if got := get(); got != tt.want {
				t.Errorf("Duration(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"":      slog.LevelInfo,
		"0":     slog.LevelInfo,
		"false": slog.LevelInfo,
		"1":     slog.LevelDebug,
		"true":  slog.LevelDebug,
	}

	for value, want := range tests {
		t.Run("debug_"+value, func(t *testing.T) {
			t.Setenv("FINETUNE_DEBUG", value)
			if got := LogLevel(); got != want {
				t.Errorf("LogLevel() with %q = %v, want %v", value, got, want)
			}
		})
	}
}

func TestWorkDirOverride(t *testing.T) {
	t.Setenv("FINETUNE_WORKDIR", "/scratch/ft")
	if got := WorkDir(); got != "/scratch/ft" {
		t.Errorf("WorkDir() = %q, want /scratch/ft", got)
	}

	t.Setenv("FINETUNE_WORKDIR", "")
	t.Setenv("FINETUNE_LLAMACPP", "")
	if got := LlamaCppDir(); got != filepath.Join(WorkDir(), "llama.cpp") {
		t.Errorf("LlamaCppDir() = %q, want it nested under WorkDir", got)
	}
}

func TestAsMapMasksToken(t *testing.T) {
	t.Setenv("HF_TOKEN", "hf_secret")
	if v := AsMap()["HF_TOKEN"].Value; v != "***" {
		t.Errorf("token value = %v, want masked", v)
	}
}
