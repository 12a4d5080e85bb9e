package latex

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	totalPattern = regexp.MustCompile(`\((\d+)\)`)
	firstNumber  = regexp.MustCompile(`\d+`)
)

// WordCounter measures a working copy with texcount, which applies the same
// counting semantics the upstream platform reports: \input/\include files are
// merged, comments and markup are excluded.
type WordCounter struct {
	Binary            string
	Timeout           time.Duration
	CountBibliography bool
}

// NewWordCounter creates a texcount-backed word counter.
func NewWordCounter(binary string, timeout time.Duration, countBibliography bool) *WordCounter {
	if binary == "" {
		binary = "texcount"
	}
	return &WordCounter{Binary: binary, Timeout: timeout, CountBibliography: countBibliography}
}

// Count runs texcount against the working copy's main file.
func (c *WordCounter) Count(ctx context.Context, dir string) (int, error) {
	mainFile, err := FindMainFile(dir)
	if err != nil {
		return 0, err
	}

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	// -merge follows \input and \include, -sum -1 emit a single total.
	args := []string{"-merge", "-sum", "-q", "-1"}
	if c.CountBibliography {
		args = append(args, "-incbib")
	}
	args = append(args, filepath.Base(mainFile))

	cmd := exec.CommandContext(ctx, c.Binary, args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("texcount: %w", err)
	}

	return parseTexcountTotal(string(out))
}

// parseTexcountTotal reads texcount -1 output, which is either a bare total
// or a breakdown like "1234+56+7 (1297) Header+Body+Float"; the total in
// parentheses wins when present.
func parseTexcountTotal(output string) (int, error) {
	output = strings.TrimSpace(output)

	if m := totalPattern.FindStringSubmatch(output); m != nil {
		return strconv.Atoi(m[1])
	}
	if m := firstNumber.FindString(output); m != "" {
		return strconv.Atoi(m)
	}
	return 0, fmt.Errorf("unparseable texcount output: %q", output)
}
