package export

import (
	"bytes"
	_ "embed"
	"strings"
	"text/template"
	"time"

	"github.com/evalstate/finetune/format"
	"github.com/evalstate/finetune/huggingface"
	"github.com/evalstate/finetune/llamacpp"
)

// The model card template uses << >> delimiters so bibtex and YAML braces
// stay literal.
//
//go:embed readme.tmpl
var readmeTemplate string

type readmeFile struct {
	Name        string
	Quant       string
	Size        string
	Description string
}

type readmeData struct {
	BaseModel    string
	AdapterModel string
	OutputRepo   string
	RepoName     string
	Username     string
	CiteKey      string
	Year         int
	Recommended  string
	Files        []readmeFile
}

// RenderReadme produces the model card for an exported repository from the
// artifacts that were actually uploaded.
func RenderReadme(cfg Config, artifacts []Artifact) ([]byte, error) {
	tmpl, err := template.New("readme").Delims("<<", ">>").Parse(readmeTemplate)
	if err != nil {
		return nil, err
	}

	repoName := huggingface.RepoName(cfg.OutputRepo)
	data := readmeData{
		BaseModel:    cfg.BaseModel,
		AdapterModel: cfg.AdapterModel,
		OutputRepo:   cfg.OutputRepo,
		RepoName:     repoName,
		Username:     cfg.Username,
		CiteKey:      strings.ReplaceAll(repoName, "-", "_"),
		Year:         time.Now().Year(),
	}

	for _, a := range artifacts {
		desc := "Full precision"
		for _, f := range llamacpp.QuantFormats {
			if f.Type == a.QuantType {
				desc = f.Description
			}
		}
		data.Files = append(data.Files, readmeFile{
			Name:        a.Name,
			Quant:       a.QuantType,
			Size:        format.HumanBytes(a.Size),
			Description: desc,
		})
		if a.QuantType == "Q4_K_M" {
			data.Recommended = a.Name
		}
	}
	if data.Recommended == "" && len(data.Files) > 0 {
		data.Recommended = data.Files[len(data.Files)-1].Name
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
