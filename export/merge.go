package export

import (
	"context"
	_ "embed"
	"os"
	"path/filepath"

	"github.com/evalstate/finetune/envconfig"
	"github.com/evalstate/finetune/internal/subproc"
)

//go:embed scripts/merge_adapter.py
var mergeScript []byte

// mergeAdapter merges the LoRA adapter into its base model by running the
// embedded merge script with uv, which resolves the Python dependencies
// declared in the script header. The merged model lands in outDir.
func (p *Pipeline) mergeAdapter(ctx context.Context, workDir, outDir string) error {
	script := filepath.Join(workDir, "merge_adapter.py")
	if err := os.WriteFile(script, mergeScript, 0o644); err != nil {
		return err
	}

	return subproc.Run(ctx, subproc.Options{Progress: p.Progress},
		envconfig.UvCommand(), "run", script,
		"--base-model", p.Config.BaseModel,
		"--adapter-model", p.Config.AdapterModel,
		"--output-dir", outDir)
}
