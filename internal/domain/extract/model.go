package extract

// Metrics holds one cycle's measurements for a working copy. Pages is nil
// when typesetting failed; Words is always set for a readable working copy.
type Metrics struct {
	Words int
	Pages *int
}

// TypesetResult is the product of a successful typesetting run.
type TypesetResult struct {
	LogText      string
	ArtifactPath string
}
