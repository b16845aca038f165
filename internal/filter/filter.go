// Package filter runs the page filter pipeline: render selected PDF pages,
// keep only near-black pixels, and assemble the results into a new PDF.
package filter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/local/pdfpages/internal/filetype"
	"github.com/local/pdfpages/internal/imagefilter"
	"github.com/local/pdfpages/internal/imagerender"
	"github.com/local/pdfpages/internal/pagerange"
	"github.com/local/pdfpages/internal/pdfdoc"
	"github.com/local/pdfpages/internal/pdferr"
)

const (
	DefaultDPI       = 300
	DefaultThreshold = 30
)

// Observer is notified as the run progresses. Calls are serialized.
type Observer interface {
	PagesSelected(pages []int, totalPages int)
	PageDone(page int, stats imagefilter.Stats)
}

// InputChecker validates the input file before it is opened.
type InputChecker interface {
	RequirePDF(path string) error
}

// Options configures a filter run. Zero values fall back to the defaults.
type Options struct {
	Input     string
	Output    string
	DPI       int
	Threshold int
	Pages     string
	Quality   int
	Workers   int

	Opener   imagerender.Opener
	Assemble func(imagePaths []string, outFile string) error
	Checker  InputChecker
	Logger   zerolog.Logger
	Observer Observer
}

// Result describes a completed run.
type Result struct {
	Output     string
	Pages      []int
	TotalPages int
	Stats      imagefilter.Stats
	Duration   time.Duration
}

func (o *Options) setDefaults() {
	if o.DPI == 0 {
		o.DPI = DefaultDPI
	}
	if o.Pages == "" {
		o.Pages = pagerange.All
	}
	if o.Quality == 0 {
		o.Quality = imagerender.DefaultQuality
	}
	if o.Workers <= 0 {
		o.Workers = 1
	}
	if o.Opener == nil {
		o.Opener = imagerender.Default()
	}
	if o.Assemble == nil {
		o.Assemble = pdfdoc.ImagesToPDF
	}
	if o.Checker == nil {
		o.Checker = filetype.New()
	}
}

// Run filters opts.Input into opts.Output. Intermediate page rasters live in a
// temporary directory that is removed on every return path.
func Run(ctx context.Context, opts Options) (*Result, error) {
	opts.setDefaults()
	logger := opts.Logger
	start := time.Now()

	if opts.DPI < 0 {
		return nil, pdferr.Validation("check dpi", "", fmt.Errorf("dpi must be positive, got %d", opts.DPI))
	}
	if err := opts.Checker.RequirePDF(opts.Input); err != nil {
		var notPDF *filetype.NotPDFError
		if errors.As(err, &notPDF) {
			return nil, pdferr.Validation("check input", opts.Input, err)
		}
		return nil, pdferr.IO("check input", opts.Input, err)
	}

	logger.Info().
		Str("input", opts.Input).
		Str("output", opts.Output).
		Int("dpi", opts.DPI).
		Int("threshold", opts.Threshold).
		Msg("starting PDF filter")

	doc, err := opts.Opener.Open(opts.Input)
	if err != nil {
		return nil, pdferr.Decode("open", opts.Input, err)
	}
	defer doc.Close()

	total := doc.NumPage()
	pages, err := pagerange.Resolve(opts.Pages, total)
	if err != nil {
		return nil, err
	}
	logger.Info().Int("total_pages", total).Str("pages", pagerange.Format(pages)).Msg("resolved page selection")

	tmpDir, err := os.MkdirTemp("", "pdffilter-*")
	if err != nil {
		return nil, pdferr.IO("create temp dir", "", err)
	}
	defer os.RemoveAll(tmpDir)

	var mu sync.Mutex
	var stats imagefilter.Stats
	if opts.Observer != nil {
		opts.Observer.PagesSelected(pages, total)
	}

	rasters := make([]string, len(pages))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Workers)
	for i, page := range pages {
		i, page := i, page
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			img, err := doc.Image(page, float64(opts.DPI))
			if err != nil {
				return pdferr.Decode(fmt.Sprintf("render page %d of", page), opts.Input, err)
			}
			filtered, pageStats := imagefilter.KeepDarkStats(img, opts.Threshold)

			path := filepath.Join(tmpDir, fmt.Sprintf("page_%d.jpg", page))
			if err := imagerender.WriteJPEG(path, filtered, opts.Quality); err != nil {
				return pdferr.Encode(fmt.Sprintf("write page %d raster", page), path, err)
			}
			rasters[i] = path

			mu.Lock()
			defer mu.Unlock()
			stats.Kept += pageStats.Kept
			stats.Total += pageStats.Total
			logger.Info().
				Int("page", page).
				Int("total_pages", total).
				Float64("kept_ratio", pageStats.Ratio()).
				Msg("filtered page")
			if opts.Observer != nil {
				opts.Observer.PageDone(page, pageStats)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger.Info().Int("pages", len(rasters)).Msg("assembling filtered pages into PDF")
	if err := opts.Assemble(rasters, opts.Output); err != nil {
		return nil, pdferr.Encode("assemble", opts.Output, err)
	}

	res := &Result{
		Output:     opts.Output,
		Pages:      pages,
		TotalPages: total,
		Stats:      stats,
		Duration:   time.Since(start),
	}
	logger.Info().Str("output", opts.Output).Dur("duration", res.Duration).Msg("saved filtered PDF")
	return res, nil
}
