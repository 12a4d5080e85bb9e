package latex

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/mhagen/texwatch/internal/domain/extract"
)

// Typesetter compiles a working copy to PDF with pdflatex.
type Typesetter struct {
	Binary  string
	Timeout time.Duration
}

// NewTypesetter creates a pdflatex-backed typesetter.
func NewTypesetter(binary string, timeout time.Duration) *Typesetter {
	if binary == "" {
		binary = "pdflatex"
	}
	return &Typesetter{Binary: binary, Timeout: timeout}
}

// Typeset compiles the main file in place. The run is considered successful
// only when the PDF artifact exists afterwards; pdflatex's exit code alone is
// unreliable in nonstop mode.
func (t *Typesetter) Typeset(ctx context.Context, dir string) (extract.TypesetResult, error) {
	mainFile, err := FindMainFile(dir)
	if err != nil {
		return extract.TypesetResult{}, err
	}

	if t.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.Timeout)
		defer cancel()
	}

	base := filepath.Base(mainFile)
	cmd := exec.CommandContext(ctx, t.Binary,
		"-interaction=nonstopmode", "-file-line-error", base)
	cmd.Dir = dir
	stdout, runErr := cmd.Output()

	stem := strings.TrimSuffix(base, ".tex")
	artifact := filepath.Join(dir, stem+".pdf")
	if _, err := os.Stat(artifact); err != nil {
		return extract.TypesetResult{}, fmt.Errorf("pdflatex produced no artifact: %s", firstTeXError(string(stdout), runErr))
	}

	logText := string(stdout)
	if data, err := os.ReadFile(filepath.Join(dir, stem+".log")); err == nil {
		logText = string(data)
	}

	return extract.TypesetResult{LogText: logText, ArtifactPath: artifact}, nil
}

// firstTeXError pulls the first error line out of pdflatex output for a
// readable failure message.
func firstTeXError(output string, runErr error) string {
	for _, line := range strings.Split(output, "\n") {
		if strings.HasPrefix(line, "!") || strings.Contains(line, "Error") {
			return strings.TrimSpace(line)
		}
	}
	if runErr != nil {
		return runErr.Error()
	}
	return "compilation failed"
}
