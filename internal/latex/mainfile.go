package latex

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Conventional names for a project's root document, tried in order before
// falling back to any .tex file.
var mainFileNames = []string{"main.tex", "thesis.tex", "paper.tex", "document.tex"}

// FindMainFile locates the root .tex file of a working copy.
func FindMainFile(dir string) (string, error) {
	for _, name := range mainFileNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("read working copy: %w", err)
	}

	var texFiles []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".tex") {
			texFiles = append(texFiles, entry.Name())
		}
	}
	if len(texFiles) == 0 {
		return "", fmt.Errorf("no .tex file in %s", dir)
	}

	sort.Strings(texFiles)
	return filepath.Join(dir, texFiles[0]), nil
}
