package llamacpp

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var (
	ErrConvertFailed  = errors.New("gguf conversion failed")
	ErrQuantizeFailed = errors.New("quantization failed")
)

// QuantFormat is one quantization target understood by llama-quantize.
type QuantFormat struct {
	Type        string
	Description string
}

// QuantFormats are the formats produced by the export pipeline, most
// broadly useful first.
var QuantFormats = []QuantFormat{
	{"Q4_K_M", "4-bit, medium quality (recommended)"},
	{"Q5_K_M", "5-bit, higher quality"},
	{"Q8_0", "8-bit, very high quality"},
}

// ArtifactName is the conventional file name for a converted model:
// <model>-<type>.gguf with the type lowercased.
func ArtifactName(modelName, quantType string) string {
	return fmt.Sprintf("%s-%s.gguf", modelName, strings.ToLower(quantType))
}

// ConvertToGGUF runs llama.cpp's converter over a saved model directory,
// producing an FP16 GGUF file at outFile.
func (t *Toolchain) ConvertToGGUF(ctx context.Context, modelDir, outFile string) error {
	python, err := t.findPython()
	if err != nil {
		return err
	}

	script := filepath.Join(t.Dir, "convert_hf_to_gguf.py")
	err = t.run(ctx, t.Dir, python, script, modelDir,
		"--outfile", outFile,
		"--outtype", "f16")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConvertFailed, err)
	}
	return nil
}

// Quantize converts an FP16 GGUF into the given quantization format using
// the llama-quantize binary built by BuildQuantize.
func (t *Toolchain) Quantize(ctx context.Context, quantizeBin, inFile, outFile, quantType string) error {
	if err := t.run(ctx, "", quantizeBin, inFile, outFile, quantType); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrQuantizeFailed, quantType, err)
	}
	return nil
}
