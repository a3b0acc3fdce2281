// Package helpcheck discovers scripts under skills directories, invokes
// each with a help flag under a timeout, and reports the outcomes.
package helpcheck

import (
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
)

const (
	// scripts live somewhere below a directory with this name
	skillsDirName = "skills"
	scriptPattern = "*.py"
)

// Scan walks the given roots and returns every script under a skills
// directory, sorted and de-duplicated.
func Scan(roots []string) ([]string, error) {
	if len(roots) == 0 {
		roots = []string{"."}
	}

	var scripts []string
	for _, root := range roots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			if ok, _ := filepath.Match(scriptPattern, d.Name()); !ok {
				return nil
			}
			if underSkillsDir(path) {
				scripts = append(scripts, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	slices.Sort(scripts)
	return slices.Compact(scripts), nil
}

func underSkillsDir(path string) bool {
	dir := filepath.Dir(path)
	for _, part := range strings.Split(filepath.ToSlash(dir), "/") {
		if part == skillsDirName {
			return true
		}
	}
	return false
}
