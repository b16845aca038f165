package split

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/local/pdfpages/internal/filetype"
	"github.com/local/pdfpages/internal/pdferr"
	"github.com/local/pdfpages/internal/splitplan"
)

type fakeSource struct {
	pages   int
	failAt  int
	failErr error
	written []splitplan.Range
	closed  bool
}

func (s *fakeSource) PageCount() int { return s.pages }

func (s *fakeSource) WriteRange(r splitplan.Range, outFile string) error {
	if len(s.written)+1 == s.failAt {
		return s.failErr
	}
	s.written = append(s.written, r)
	return os.WriteFile(outFile, []byte("%PDF-1.7 "+r.String()), 0o644)
}

func (s *fakeSource) Close() error {
	s.closed = true
	return nil
}

type acceptAll struct{}

func (acceptAll) RequirePDF(string) error { return nil }

type partLog []Part

func (l *partLog) PartWritten(p Part) { *l = append(*l, p) }

func opener(src *fakeSource) func(string) (Source, error) {
	return func(string) (Source, error) { return src, nil }
}

func TestRun_WritesEveryPart(t *testing.T) {
	out := filepath.Join(t.TempDir(), "nested", "parts")
	src := &fakeSource{pages: 10}
	var seen partLog

	res, err := Run(context.Background(), Options{
		Input:     "book.pdf",
		OutputDir: out,
		Parts:     3,
		Open:      opener(src),
		Checker:   acceptAll{},
		Observer:  &seen,
	})
	require.NoError(t, err)

	want := []Part{
		{Index: 1, Path: filepath.Join(out, "split_1.pdf"), Range: splitplan.Range{Start: 1, End: 4}},
		{Index: 2, Path: filepath.Join(out, "split_2.pdf"), Range: splitplan.Range{Start: 5, End: 7}},
		{Index: 3, Path: filepath.Join(out, "split_3.pdf"), Range: splitplan.Range{Start: 8, End: 10}},
	}
	assert.Equal(t, 10, res.TotalPages)
	assert.Equal(t, want, res.Parts)
	assert.Equal(t, want, []Part(seen))
	assert.True(t, src.closed)

	for _, p := range want {
		data, err := os.ReadFile(p.Path)
		require.NoError(t, err)
		assert.Contains(t, string(data), p.Range.String())
	}
}

func TestRun_FailureKeepsWrittenPrefix(t *testing.T) {
	out := t.TempDir()
	src := &fakeSource{pages: 9, failAt: 2, failErr: errors.New("broken object stream")}

	res, err := Run(context.Background(), Options{
		Input:     "book.pdf",
		OutputDir: out,
		Parts:     3,
		Open:      opener(src),
		Checker:   acceptAll{},
	})

	require.Error(t, err)
	assert.True(t, pdferr.IsKind(err, pdferr.KindEncode))
	require.Len(t, res.Parts, 1)
	assert.FileExists(t, filepath.Join(out, "split_1.pdf"))
	assert.NoFileExists(t, filepath.Join(out, "split_2.pdf"))
}

func TestRun_WriteIOError(t *testing.T) {
	src := &fakeSource{pages: 2, failAt: 1, failErr: &fs.PathError{Op: "open", Path: "x", Err: fs.ErrPermission}}

	_, err := Run(context.Background(), Options{
		Input:     "book.pdf",
		OutputDir: t.TempDir(),
		Parts:     2,
		Open:      opener(src),
		Checker:   acceptAll{},
	})
	assert.True(t, pdferr.IsKind(err, pdferr.KindIO))
	assert.ErrorIs(t, err, fs.ErrPermission)
}

func TestRun_InvalidSplits(t *testing.T) {
	tests := []struct {
		name  string
		pages int
		parts int
	}{
		{name: "zero parts", pages: 4, parts: 0},
		{name: "more parts than pages", pages: 2, parts: 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := filepath.Join(t.TempDir(), "parts")
			_, err := Run(context.Background(), Options{
				Input:     "book.pdf",
				OutputDir: out,
				Parts:     tt.parts,
				Open:      opener(&fakeSource{pages: tt.pages}),
				Checker:   acceptAll{},
			})

			var splitErr *splitplan.InvalidSplitError
			require.True(t, errors.As(err, &splitErr))
			assert.NoDirExists(t, out)
		})
	}
}

func TestRun_OpenFailure(t *testing.T) {
	_, err := Run(context.Background(), Options{
		Input:     "book.pdf",
		OutputDir: t.TempDir(),
		Parts:     2,
		Open:      func(string) (Source, error) { return nil, errors.New("not a pdf") },
		Checker:   acceptAll{},
	})
	assert.True(t, pdferr.IsKind(err, pdferr.KindDecode))
}

func TestRun_RejectsNonPDF(t *testing.T) {
	p := filepath.Join(t.TempDir(), "notes.pdf")
	require.NoError(t, os.WriteFile(p, []byte("hello\n"), 0o644))

	_, err := Run(context.Background(), Options{
		Input:     p,
		OutputDir: t.TempDir(),
		Parts:     1,
		Open:      opener(&fakeSource{pages: 1}),
	})
	assert.True(t, pdferr.IsKind(err, pdferr.KindValidation))

	var notPDF *filetype.NotPDFError
	assert.True(t, errors.As(err, &notPDF))
}

func TestPartName(t *testing.T) {
	assert.Equal(t, "split_12.pdf", PartName(12))
}
