package export

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

type fakeHub struct {
	created  []string
	uploaded []string
	failFor  map[string]error
}

func (f *fakeHub) CreateRepo(ctx context.Context, repoID string, private bool) error {
	f.created = append(f.created, repoID)
	return nil
}

func (f *fakeHub) UploadFile(ctx context.Context, repoID, pathInRepo, localPath, message string) error {
	if err := f.failFor[pathInRepo]; err != nil {
		return err
	}
	f.uploaded = append(f.uploaded, pathInRepo)
	return nil
}

func (f *fakeHub) UploadBytes(ctx context.Context, repoID, pathInRepo string, data []byte, message string) error {
	if err := f.failFor[pathInRepo]; err != nil {
		return err
	}
	f.uploaded = append(f.uploaded, pathInRepo)
	return nil
}

func testPipeline(h *fakeHub) *Pipeline {
	return &Pipeline{
		Config: Config{
			AdapterModel: "alice/qwen-tuned",
			BaseModel:    "Qwen/Qwen2.5-0.5B",
			OutputRepo:   "alice/qwen-tuned-gguf",
			Username:     "alice",
		},
		Hub: h,
	}
}

func TestPublishUploadsEverything(t *testing.T) {
	h := &fakeHub{}
	p := testPipeline(h)

	f16 := Artifact{Name: "qwen-tuned-f16.gguf", QuantType: "F16", Size: 100}
	quants := []Artifact{
		{Name: "qwen-tuned-q4_k_m.gguf", QuantType: "Q4_K_M", Size: 30},
		{Name: "qwen-tuned-q8_0.gguf", QuantType: "Q8_0", Size: 50},
	}

	res, err := p.publish(context.Background(), f16, quants, nil)
	if err != nil {
		t.Fatal(err)
	}

	if res.RepoURL != "https://huggingface.co/alice/qwen-tuned-gguf" {
		t.Errorf("RepoURL = %q", res.RepoURL)
	}
	if len(h.created) != 1 {
		t.Errorf("created = %v, want one repo", h.created)
	}
	want := []string{"qwen-tuned-f16.gguf", "qwen-tuned-q4_k_m.gguf", "qwen-tuned-q8_0.gguf", "README.md"}
	if got := strings.Join(h.uploaded, ","); got != strings.Join(want, ",") {
		t.Errorf("uploaded = %v, want %v", h.uploaded, want)
	}
	if len(res.Uploaded) != 3 {
		t.Errorf("Uploaded = %d artifacts, want 3", len(res.Uploaded))
	}
	if len(res.SkippedQuants) != 0 {
		t.Errorf("SkippedQuants = %v, want none", res.SkippedQuants)
	}
}

func TestPublishF16UploadIsFatal(t *testing.T) {
	h := &fakeHub{failFor: map[string]error{
		"qwen-tuned-f16.gguf": fmt.Errorf("boom"),
	}}
	p := testPipeline(h)

	_, err := p.publish(context.Background(),
		Artifact{Name: "qwen-tuned-f16.gguf", QuantType: "F16"},
		[]Artifact{{Name: "qwen-tuned-q4_k_m.gguf", QuantType: "Q4_K_M"}},
		nil)
	if err == nil {
		t.Fatal("expected error when FP16 upload fails")
	}
	if len(h.uploaded) != 0 {
		t.Errorf("nothing should be uploaded after FP16 failure, got %v", h.uploaded)
	}
}

func TestPublishContinuesPastQuantFailure(t *testing.T) {
	h := &fakeHub{failFor: map[string]error{
		"qwen-tuned-q4_k_m.gguf": errors.New("flaky"),
	}}
	p := testPipeline(h)

	res, err := p.publish(context.Background(),
		Artifact{Name: "qwen-tuned-f16.gguf", QuantType: "F16"},
		[]Artifact{
			{Name: "qwen-tuned-q4_k_m.gguf", QuantType: "Q4_K_M"},
			{Name: "qwen-tuned-q8_0.gguf", QuantType: "Q8_0"},
		},
		[]string{"Q5_K_M"})
	if err != nil {
		t.Fatal(err)
	}

	if len(res.Uploaded) != 2 {
		t.Errorf("Uploaded = %d, want f16 + q8_0", len(res.Uploaded))
	}
	want := []string{"Q5_K_M", "Q4_K_M"}
	if strings.Join(res.SkippedQuants, ",") != strings.Join(want, ",") {
		t.Errorf("SkippedQuants = %v, want %v", res.SkippedQuants, want)
	}
}

func TestPublishReadmeFailureIsNonFatal(t *testing.T) {
	h := &fakeHub{failFor: map[string]error{
		"README.md": errors.New("denied"),
	}}
	p := testPipeline(h)

	var warnings []string
	p.Progress = func(line string) { warnings = append(warnings, line) }

	res, err := p.publish(context.Background(),
		Artifact{Name: "qwen-tuned-f16.gguf", QuantType: "F16"},
		[]Artifact{{Name: "qwen-tuned-q4_k_m.gguf", QuantType: "Q4_K_M"}},
		nil)
	if err != nil {
		t.Fatalf("README failure must not abort: %v", err)
	}
	if len(res.Uploaded) != 2 {
		t.Errorf("Uploaded = %d, want 2", len(res.Uploaded))
	}

	found := false
	for _, w := range warnings {
		if strings.Contains(w, "README upload failed") {
			found = true
		}
	}
	if !found {
		t.Error("expected a README failure warning")
	}
}
