package extract_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mhagen/texwatch/internal/domain/extract"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

type fakeCounter struct {
	words int
	err   error
}

func (f *fakeCounter) Count(ctx context.Context, dir string) (int, error) {
	return f.words, f.err
}

type fakeTypesetter struct {
	result extract.TypesetResult
	err    error
	calls  int
}

func (f *fakeTypesetter) Typeset(ctx context.Context, dir string) (extract.TypesetResult, error) {
	f.calls++
	return f.result, f.err
}

type fakePages struct {
	artifact    int
	artifactErr error
	log         int
	logErr      error
}

func (f *fakePages) FromArtifact(path string) (int, error) {
	return f.artifact, f.artifactErr
}

func (f *fakePages) FromLog(logText string) (int, error) {
	return f.log, f.logErr
}

func TestExtract_BothMetrics(t *testing.T) {
	svc := extract.NewService(
		&fakeCounter{words: 4821},
		&fakeTypesetter{result: extract.TypesetResult{ArtifactPath: "main.pdf"}},
		&fakePages{artifact: 37, log: 37},
		discardLogger(),
	)

	metrics, err := svc.Extract(context.Background(), "dir")
	require.NoError(t, err)
	require.Equal(t, 4821, metrics.Words)
	require.Equal(t, 37, *metrics.Pages)
}

func TestExtract_WordCountFailureFailsExtraction(t *testing.T) {
	typesetter := &fakeTypesetter{}
	svc := extract.NewService(
		&fakeCounter{err: errors.New("texcount crashed")},
		typesetter,
		&fakePages{},
		discardLogger(),
	)

	_, err := svc.Extract(context.Background(), "dir")
	require.Error(t, err)
	require.Equal(t, 0, typesetter.calls, "no typesetting when the word count fails")
}

func TestExtract_TypesetFailureDegradesPages(t *testing.T) {
	svc := extract.NewService(
		&fakeCounter{words: 5100},
		&fakeTypesetter{err: errors.New("undefined control sequence")},
		&fakePages{},
		discardLogger(),
	)

	metrics, err := svc.Extract(context.Background(), "dir")
	require.NoError(t, err)
	require.Equal(t, 5100, metrics.Words)
	require.Nil(t, metrics.Pages)
}

func TestExtract_PageDisagreementPrefersArtifact(t *testing.T) {
	svc := extract.NewService(
		&fakeCounter{words: 100},
		&fakeTypesetter{},
		&fakePages{artifact: 37, log: 36},
		discardLogger(),
	)

	metrics, err := svc.Extract(context.Background(), "dir")
	require.NoError(t, err)
	require.Equal(t, 37, *metrics.Pages)
}

func TestExtract_OneReadingSuffices(t *testing.T) {
	t.Run("artifact only", func(t *testing.T) {
		svc := extract.NewService(
			&fakeCounter{words: 100},
			&fakeTypesetter{},
			&fakePages{artifact: 37, logErr: errors.New("no page count in log")},
			discardLogger(),
		)

		metrics, err := svc.Extract(context.Background(), "dir")
		require.NoError(t, err)
		require.Equal(t, 37, *metrics.Pages)
	})

	t.Run("log only", func(t *testing.T) {
		svc := extract.NewService(
			&fakeCounter{words: 100},
			&fakeTypesetter{},
			&fakePages{artifactErr: errors.New("unreadable pdf"), log: 36},
			discardLogger(),
		)

		metrics, err := svc.Extract(context.Background(), "dir")
		require.NoError(t, err)
		require.Equal(t, 36, *metrics.Pages)
	})
}

func TestExtract_NoPageReadingMeansNil(t *testing.T) {
	svc := extract.NewService(
		&fakeCounter{words: 100},
		&fakeTypesetter{},
		&fakePages{artifactErr: errors.New("unreadable"), logErr: errors.New("no count")},
		discardLogger(),
	)

	metrics, err := svc.Extract(context.Background(), "dir")
	require.NoError(t, err)
	require.Equal(t, 100, metrics.Words)
	require.Nil(t, metrics.Pages)
}
