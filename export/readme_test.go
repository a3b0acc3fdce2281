package export

import (
	"strings"
	"testing"
)

func TestRenderReadme(t *testing.T) {
	cfg := Config{
		AdapterModel: "alice/qwen-tuned",
		BaseModel:    "Qwen/Qwen2.5-0.5B",
		OutputRepo:   "alice/qwen-tuned-gguf",
		Username:     "alice",
	}
	artifacts := []Artifact{
		{Name: "qwen-tuned-f16.gguf", QuantType: "F16", Size: 1_000_000_000},
		{Name: "qwen-tuned-q4_k_m.gguf", QuantType: "Q4_K_M", Size: 300_000_000},
		{Name: "qwen-tuned-q8_0.gguf", QuantType: "Q8_0", Size: 500_000_000},
	}

	out, err := RenderReadme(cfg, artifacts)
	if err != nil {
		t.Fatal(err)
	}
	readme := string(out)

	for _, want := range []string{
		"base_model: Qwen/Qwen2.5-0.5B",
		"- gguf",
		"- llama.cpp",
		"- quantized",
		"- trl",
		"- sft",
		"# qwen-tuned-gguf",
		"| qwen-tuned-f16.gguf | F16 | 1.0 GB | Full precision |",
		"| qwen-tuned-q4_k_m.gguf | Q4_K_M | 300.0 MB | 4-bit, medium quality (recommended) |",
		"huggingface-cli download alice/qwen-tuned-gguf qwen-tuned-q4_k_m.gguf",
		"FROM ./qwen-tuned-q4_k_m.gguf",
		"@misc{qwen_tuned_gguf,",
		"author = {alice},",
		"url = {https://huggingface.co/alice/qwen-tuned-gguf}",
	} {
		if !strings.Contains(readme, want) {
			t.Errorf("readme missing %q", want)
		}
	}

	// no template syntax may leak
	for _, bad := range []string{"<<", ">>"} {
		if strings.Contains(readme, bad) {
			t.Errorf("readme contains unexpanded delimiter %q:\n%s", bad, readme)
		}
	}
}

func TestRenderReadmeRecommendedFallback(t *testing.T) {
	cfg := Config{
		AdapterModel: "alice/m",
		BaseModel:    "b/m",
		OutputRepo:   "alice/m-gguf",
		Username:     "alice",
	}
	// Q4_K_M missing: the last artifact is used in the usage examples.
	artifacts := []Artifact{
		{Name: "m-f16.gguf", QuantType: "F16", Size: 10},
		{Name: "m-q8_0.gguf", QuantType: "Q8_0", Size: 5},
	}

	out, err := RenderReadme(cfg, artifacts)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), "-m m-q8_0.gguf") {
		t.Errorf("usage should fall back to last artifact:\n%s", out)
	}
}
