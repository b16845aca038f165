// Package split cuts a PDF into a number of contiguous, near-equal parts.
package split

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/local/pdfpages/internal/filetype"
	"github.com/local/pdfpages/internal/pdfdoc"
	"github.com/local/pdfpages/internal/pdferr"
	"github.com/local/pdfpages/internal/splitplan"
)

// Source is an open document whose page ranges can be copied out.
type Source interface {
	PageCount() int
	WriteRange(r splitplan.Range, outFile string) error
	Close() error
}

// Part is one written output file.
type Part struct {
	Index int             `json:"index"`
	Path  string          `json:"path"`
	Range splitplan.Range `json:"range"`
}

// Observer is told about every part as soon as its file is on disk.
type Observer interface {
	PartWritten(p Part)
}

// InputChecker validates the input file before it is opened.
type InputChecker interface {
	RequirePDF(path string) error
}

type Options struct {
	Input     string
	OutputDir string
	Parts     int

	Open     func(path string) (Source, error)
	Checker  InputChecker
	Logger   zerolog.Logger
	Observer Observer
}

type Result struct {
	TotalPages int
	Parts      []Part
	Duration   time.Duration
}

// PartName is the file name of the 1-based part index.
func PartName(index int) string { return fmt.Sprintf("split_%d.pdf", index) }

func openPDF(path string) (Source, error) {
	doc, err := pdfdoc.Open(path)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// Run writes opts.Parts files into opts.OutputDir. Parts are written one at a
// time; on failure the parts already written are left in place.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Open == nil {
		opts.Open = openPDF
	}
	if opts.Checker == nil {
		opts.Checker = filetype.New()
	}
	logger := opts.Logger
	start := time.Now()

	if opts.Parts < 1 {
		return nil, &splitplan.InvalidSplitError{Splits: opts.Parts, Reason: "number of splits must be at least 1"}
	}
	if err := opts.Checker.RequirePDF(opts.Input); err != nil {
		var notPDF *filetype.NotPDFError
		if errors.As(err, &notPDF) {
			return nil, pdferr.Validation("check input", opts.Input, err)
		}
		return nil, pdferr.IO("check input", opts.Input, err)
	}

	src, err := opts.Open(opts.Input)
	if err != nil {
		return nil, pdferr.Decode("read", opts.Input, err)
	}
	defer src.Close()

	total := src.PageCount()
	plan, err := splitplan.Distribute(total, opts.Parts)
	if err != nil {
		return nil, err
	}
	logger.Info().Str("input", opts.Input).Int("total_pages", total).Int("parts", len(plan)).Msg("computed split plan")

	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return nil, pdferr.IO("create output dir", opts.OutputDir, err)
	}

	res := &Result{TotalPages: total, Parts: make([]Part, 0, len(plan))}
	for i, r := range plan {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		part := Part{Index: i + 1, Path: filepath.Join(opts.OutputDir, PartName(i+1)), Range: r}
		if err := src.WriteRange(r, part.Path); err != nil {
			var pathErr *fs.PathError
			if errors.As(err, &pathErr) {
				return res, pdferr.IO(fmt.Sprintf("write part %d", part.Index), part.Path, err)
			}
			return res, pdferr.Encode(fmt.Sprintf("write part %d", part.Index), part.Path, err)
		}
		res.Parts = append(res.Parts, part)
		logger.Info().Int("part", part.Index).Str("range", r.String()).Str("path", part.Path).Msg("created split")
		if opts.Observer != nil {
			opts.Observer.PartWritten(part)
		}
	}
	res.Duration = time.Since(start)
	return res, nil
}
