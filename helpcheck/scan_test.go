package helpcheck

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeTree(t *testing.T, root string, paths []string) {
	t.Helper()
	for _, p := range paths {
		full := filepath.Join(root, p)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte("# script\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestScan(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, []string{
		"skills/trainer/scripts/train.py",
		"skills/trainer/scripts/convert.py",
		"skills/README.md",
		"docs/skills/example.py",
		"other/loose.py",
		"skills/nested/deep/helper.py",
	})

	got, err := Scan([]string{root})
	if err != nil {
		t.Fatal(err)
	}

	want := []string{
		filepath.Join(root, "docs/skills/example.py"),
		filepath.Join(root, "skills/nested/deep/helper.py"),
		filepath.Join(root, "skills/trainer/scripts/convert.py"),
		filepath.Join(root, "skills/trainer/scripts/train.py"),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Scan mismatch (-want +got):\n%s", diff)
	}
}

func TestScanEmpty(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, []string{"src/main.py", "skills.py"})

	got, err := Scan([]string{root})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("Scan = %v, want empty", got)
	}
}

func TestScanDeduplicates(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, []string{"skills/a.py"})

	got, err := Scan([]string{root, root})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Errorf("Scan over duplicate roots = %v, want 1 entry", got)
	}
}

func TestUnderSkillsDir(t *testing.T) {
	tests := map[string]bool{
		"skills/a.py":            true,
		"x/skills/y/a.py":        true,
		"myskills/a.py":          false,
		"a.py":                   false,
		"skills.py":              false,
		"deep/skills/sub/b.py":   true,
		"deep/skillset/sub/b.py": false,
	}

	for path, want := range tests {
		if got := underSkillsDir(filepath.FromSlash(path)); got != want {
			t.Errorf("underSkillsDir(%q) = %v, want %v", path, got, want)
		}
	}
}
