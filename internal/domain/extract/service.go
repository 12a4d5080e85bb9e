package extract

import (
	"context"
	"fmt"
	"log/slog"
)

// Service computes word and page counts for a working copy.
type Service struct {
	words      WordCounter
	typesetter Typesetter
	pages      PageReader
	logger     *slog.Logger
}

// NewService creates a metric extractor.
func NewService(words WordCounter, typesetter Typesetter, pages PageReader, logger *slog.Logger) *Service {
	return &Service{words: words, typesetter: typesetter, pages: pages, logger: logger}
}

// Extract measures the working copy at dir. Word counting has no dependency
// on typesetting; a typesetting failure degrades Pages to nil and never
// discards the word count.
func (s *Service) Extract(ctx context.Context, dir string) (Metrics, error) {
	words, err := s.words.Count(ctx, dir)
	if err != nil {
		return Metrics{}, fmt.Errorf("count words: %w", err)
	}

	metrics := Metrics{Words: words}

	result, err := s.typesetter.Typeset(ctx, dir)
	if err != nil {
		s.logger.Warn("typesetting failed, page count unavailable", "dir", dir, "error", err)
		return metrics, nil
	}

	metrics.Pages = s.pageCount(result)
	return metrics, nil
}

// pageCount reads the page count from the artifact and the log. The two must
// agree; a mismatch is logged but the artifact reading wins, since the log is
// a secondary report of the same run.
func (s *Service) pageCount(result TypesetResult) *int {
	fromArtifact, artifactErr := s.pages.FromArtifact(result.ArtifactPath)
	fromLog, logErr := s.pages.FromLog(result.LogText)

	switch {
	case artifactErr == nil && logErr == nil:
		if fromArtifact != fromLog {
			s.logger.Warn("page count disagreement, using artifact",
				"artifact", fromArtifact, "log", fromLog)
		}
		return &fromArtifact
	case artifactErr == nil:
		s.logger.Warn("page count log reading failed", "error", logErr)
		return &fromArtifact
	case logErr == nil:
		s.logger.Warn("page count artifact reading failed", "error", artifactErr)
		return &fromLog
	default:
		s.logger.Warn("page count unavailable",
			"artifact_error", artifactErr, "log_error", logErr)
		return nil
	}
}
