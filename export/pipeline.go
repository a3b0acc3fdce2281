package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/evalstate/finetune/envconfig"
	"github.com/evalstate/finetune/format"
	"github.com/evalstate/finetune/huggingface"
	"github.com/evalstate/finetune/llamacpp"
)

var ErrNoQuantizations = errors.New("no quantized versions were created")

// hub is the slice of the hub client the pipeline needs.
type hub interface {
	CreateRepo(ctx context.Context, repoID string, private bool) error
	UploadFile(ctx context.Context, repoID, pathInRepo, localPath, message string) error
	UploadBytes(ctx context.Context, repoID, pathInRepo string, data []byte, message string) error
}

// Artifact is one GGUF file produced by the pipeline.
type Artifact struct {
	// Path is the local file.
	Path string

	// Name is the file name in the output repo.
	Name string

	// QuantType is F16 or a quantization format like Q4_K_M.
	QuantType string

	Size int64
}

// Result summarizes a completed export.
type Result struct {
	RepoURL string

	// Uploaded holds everything that made it to the hub, FP16 first.
	Uploaded []Artifact

	// SkippedQuants lists formats that failed to quantize or upload.
	SkippedQuants []string
}

// Pipeline exports a LoRA adapter as quantized GGUF files.
type Pipeline struct {
	Config    Config
	Hub       hub
	Toolchain *llamacpp.Toolchain

	// Progress receives one line per step or subprocess output line when set.
	Progress func(string)
}

func NewPipeline(cfg Config, client *huggingface.Client) *Pipeline {
	return &Pipeline{
		Config:    cfg,
		Hub:       client,
		Toolchain: llamacpp.NewToolchain(envconfig.LlamaCppDir()),
	}
}

// Run drives the full export: merge the adapter, convert to FP16 GGUF,
// quantize, then publish. Individual quantizations may fail without
// aborting, but producing none at all is fatal, as is losing the FP16
// upload.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	if err := p.Config.Validate(); err != nil {
		return nil, err
	}
	if err := llamacpp.CheckSystemDeps(); err != nil {
		return nil, err
	}

	workDir := filepath.Join(envconfig.WorkDir(), "export-"+uuid.New().String()[:8])
	mergedDir := filepath.Join(workDir, "merged")
	ggufDir := filepath.Join(workDir, "gguf")
	for _, dir := range []string{mergedDir, ggufDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	p.progress(fmt.Sprintf("merging %s into %s", p.Config.AdapterModel, p.Config.BaseModel))
	if err := p.mergeAdapter(ctx, workDir, mergedDir); err != nil {
		return nil, fmt.Errorf("merge adapter: %w", err)
	}

	if p.Toolchain.Progress == nil {
		p.Toolchain.Progress = p.Progress
	}
	p.progress("setting up llama.cpp")
	if err := p.Toolchain.Ensure(ctx); err != nil {
		return nil, err
	}

	modelName := p.Config.ModelName()
	f16Name := llamacpp.ArtifactName(modelName, "f16")
	f16Path := filepath.Join(ggufDir, f16Name)

	p.progress("converting to GGUF (FP16)")
	if err := p.Toolchain.ConvertToGGUF(ctx, mergedDir, f16Path); err != nil {
		return nil, err
	}

	p.progress("building llama-quantize")
	quantizeBin, err := p.Toolchain.BuildQuantize(ctx)
	if err != nil {
		return nil, err
	}

	f16, err := artifactAt(f16Path, f16Name, "F16")
	if err != nil {
		return nil, err
	}

	var quants []Artifact
	var skipped []string
	for _, qf := range llamacpp.QuantFormats {
		p.progress(fmt.Sprintf("quantizing to %s (%s)", qf.Type, qf.Description))

		name := llamacpp.ArtifactName(modelName, qf.Type)
		path := filepath.Join(ggufDir, name)
		if err := p.Toolchain.Quantize(ctx, quantizeBin, f16Path, path, qf.Type); err != nil {
			p.progress(fmt.Sprintf("skipping %s: %v", qf.Type, err))
			skipped = append(skipped, qf.Type)
			continue
		}

		a, err := artifactAt(path, name, qf.Type)
		if err != nil {
			return nil, err
		}
		p.progress(fmt.Sprintf("%s: %s", qf.Type, format.HumanBytes(a.Size)))
		quants = append(quants, a)
	}
	if len(quants) == 0 {
		return nil, ErrNoQuantizations
	}

	return p.publish(ctx, f16, quants, skipped)
}

// publish creates the output repo and uploads the artifacts. The FP16 upload
// is required; quantized uploads continue past individual failures. A failed
// README upload only warns.
func (p *Pipeline) publish(ctx context.Context, f16 Artifact, quants []Artifact, skipped []string) (*Result, error) {
	repo := p.Config.OutputRepo

	p.progress("creating repository " + repo)
	if err := p.Hub.CreateRepo(ctx, repo, false); err != nil {
		return nil, err
	}

	p.progress("uploading " + f16.Name)
	if err := p.Hub.UploadFile(ctx, repo, f16.Name, f16.Path, ""); err != nil {
		return nil, fmt.Errorf("upload %s: %w", f16.Name, err)
	}

	result := &Result{
		RepoURL:       "https://huggingface.co/" + repo,
		Uploaded:      []Artifact{f16},
		SkippedQuants: skipped,
	}

	for _, a := range quants {
		p.progress("uploading " + a.Name)
		if err := p.Hub.UploadFile(ctx, repo, a.Name, a.Path, ""); err != nil {
			p.progress(fmt.Sprintf("upload failed for %s: %v", a.QuantType, err))
			result.SkippedQuants = append(result.SkippedQuants, a.QuantType)
			continue
		}
		result.Uploaded = append(result.Uploaded, a)
	}

	readme, err := RenderReadme(p.Config, result.Uploaded)
	if err == nil {
		p.progress("uploading README.md")
		err = p.Hub.UploadBytes(ctx, repo, "README.md", readme, "Add model card")
	}
	if err != nil {
		p.progress(fmt.Sprintf("README upload failed: %v", err))
	}

	return result, nil
}

func artifactAt(path, name, quantType string) (Artifact, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return Artifact{}, err
	}
	return Artifact{Path: path, Name: name, QuantType: quantType, Size: fi.Size()}, nil
}

func (p *Pipeline) progress(line string) {
	if p.Progress != nil {
		p.Progress(line)
	}
}
