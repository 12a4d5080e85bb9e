package extract

import "context"

// WordCounter measures the merged document source, excluding markup, with the
// same inclusion rules the upstream platform applies.
type WordCounter interface {
	Count(ctx context.Context, dir string) (int, error)
}

// Typesetter compiles the document to its output form.
type Typesetter interface {
	Typeset(ctx context.Context, dir string) (TypesetResult, error)
}

// PageReader extracts the page count from a typesetting run. The artifact
// reading is ground truth; the log reading cross-checks it.
type PageReader interface {
	FromArtifact(path string) (int, error)
	FromLog(logText string) (int, error)
}
