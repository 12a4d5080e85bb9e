package latex

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
)

var (
	// "Output written on main.pdf (37 pages, 1482731 bytes)."
	logPagesPattern = regexp.MustCompile(`Output written on .+ \((\d+) pages?`)
	// Page object dictionaries in the artifact. \b keeps /Type /Pages (the
	// page tree node) from matching.
	pdfPagePattern = regexp.MustCompile(`/Type\s*/Page\b`)
)

// PageReader implements extract.PageReader for pdflatex runs.
type PageReader struct{}

// NewPageReader creates a page reader.
func NewPageReader() *PageReader {
	return &PageReader{}
}

// FromArtifact counts page objects in the PDF.
func (PageReader) FromArtifact(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read artifact: %w", err)
	}
	pages := len(pdfPagePattern.FindAll(data, -1))
	if pages == 0 {
		return 0, fmt.Errorf("no page objects in %s", path)
	}
	return pages, nil
}

// FromLog parses the page count from the typesetting log.
func (PageReader) FromLog(logText string) (int, error) {
	m := logPagesPattern.FindStringSubmatch(logText)
	if m == nil {
		return 0, fmt.Errorf("no page count in log")
	}
	return strconv.Atoi(m[1])
}
