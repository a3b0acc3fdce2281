// Package llamacpp drives the external llama.cpp toolchain: cloning the
// repository, building the quantize tool, and running its conversion and
// quantization programs as subprocesses. No model format logic lives here.
package llamacpp

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/evalstate/finetune/internal/subproc"
)

const RepoURL = "https://github.com/ggerganov/llama.cpp.git"

var (
	ErrMissingTool    = errors.New("missing system dependency")
	ErrPythonNotFound = errors.New("python not found")
	ErrCloneFailed    = errors.New("clone failed")
	ErrBuildFailed    = errors.New("build failed")
)

// CheckSystemDeps verifies the build prerequisites are installed: git,
// and at least one of make/cmake. The returned error carries install hints.
func CheckSystemDeps() error {
	if _, err := exec.LookPath("git"); err != nil {
		return fmt.Errorf("%w: git is not installed\n"+
			"   Ubuntu/Debian: sudo apt-get install git\n"+
			"   RHEL/CentOS: sudo yum install git\n"+
			"   macOS: brew install git", ErrMissingTool)
	}

	_, makeErr := exec.LookPath("make")
	_, cmakeErr := exec.LookPath("cmake")
	if makeErr != nil && cmakeErr != nil {
		return fmt.Errorf("%w: neither make nor cmake found\n"+
			"   Ubuntu/Debian: sudo apt-get install build-essential cmake\n"+
			"   RHEL/CentOS: sudo yum groupinstall 'Development Tools' && sudo yum install cmake\n"+
			"   macOS: xcode-select --install && brew install cmake", ErrMissingTool)
	}

	return nil
}

// Toolchain is a llama.cpp checkout plus the subprocess plumbing to use it.
type Toolchain struct {
	// Dir is the checkout directory.
	Dir string

	// Progress receives one line per subprocess output line when set.
	Progress func(string)

	pythonPath string
}

func NewToolchain(dir string) *Toolchain {
	return &Toolchain{Dir: dir}
}

// Ensure makes the checkout available, cloning it if needed. A failed full
// clone is retried as a shallow clone before giving up. Python requirements
// are installed best effort; a pip failure is not fatal since they are
// frequently preinstalled.
func (t *Toolchain) Ensure(ctx context.Context) error {
	if _, err := os.Stat(filepath.Join(t.Dir, "convert_hf_to_gguf.py")); err == nil {
		t.progress("llama.cpp checkout found at " + t.Dir)
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(t.Dir), 0o755); err != nil {
		return err
	}

	if err := t.run(ctx, "", "git", "clone", RepoURL, t.Dir); err != nil {
		t.progress("full clone failed, retrying shallow")
		os.RemoveAll(t.Dir)
		if err := t.run(ctx, "", "git", "clone", "--depth", "1", RepoURL, t.Dir); err != nil {
			return fmt.Errorf("%w: %v", ErrCloneFailed, err)
		}
	}

	python, err := t.findPython()
	if err != nil {
		return err
	}
	if err := t.run(ctx, t.Dir, python, "-m", "pip", "install", "-r", "requirements.txt"); err != nil {
		t.progress("pip install failed, requirements may already be installed")
	}

	return nil
}

// BuildQuantize configures and builds the llama-quantize target with cmake
// and returns the binary path. An existing binary is reused.
func (t *Toolchain) BuildQuantize(ctx context.Context) (string, error) {
	bin := filepath.Join(t.Dir, "build", "bin", "llama-quantize")
	if _, err := os.Stat(bin); err == nil {
		return bin, nil
	}

	buildDir := filepath.Join(t.Dir, "build")
	if err := os.MkdirAll(buildDir, 0o755); err != nil {
		return "", err
	}

	if err := t.run(ctx, "", "cmake", "-B", buildDir, "-S", t.Dir, "-DGGML_CUDA=OFF"); err != nil {
		return "", fmt.Errorf("%w: cmake configure: %v", ErrBuildFailed, err)
	}
	if err := t.run(ctx, "", "cmake", "--build", buildDir, "--target", "llama-quantize", "-j", "4"); err != nil {
		return "", fmt.Errorf("%w: %v", ErrBuildFailed, err)
	}

	if _, err := os.Stat(bin); err != nil {
		return "", fmt.Errorf("%w: llama-quantize not produced at %s", ErrBuildFailed, bin)
	}
	return bin, nil
}

func (t *Toolchain) findPython() (string, error) {
	if t.pythonPath != "" {
		return t.pythonPath, nil
	}
	for _, name := range []string{"python", "python3"} {
		if p, err := exec.LookPath(name); err == nil {
			t.pythonPath = p
			return p, nil
		}
	}
	return "", ErrPythonNotFound
}

func (t *Toolchain) run(ctx context.Context, dir, name string, args ...string) error {
	return subproc.Run(ctx, subproc.Options{Dir: dir, Progress: t.Progress}, name, args...)
}

func (t *Toolchain) progress(line string) {
	if t.Progress != nil {
		t.Progress(line)
	}
}
