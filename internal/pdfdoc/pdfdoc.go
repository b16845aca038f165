// Package pdfdoc reads, slices and assembles PDF files with pdfcpu.
package pdfdoc

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/rs/zerolog/log"

	"github.com/local/pdfpages/internal/splitplan"
)

// Document is a parsed PDF whose pages can be copied into new files.
type Document struct {
	path string
	f    *os.File
	ctx  *model.Context
}

// Open reads and validates the PDF at path.
func Open(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	ctx, err := api.ReadContext(f, model.NewDefaultConfiguration())
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to read PDF context: %w", err)
	}
	if err := api.ValidateContext(ctx); err != nil {
		f.Close()
		return nil, fmt.Errorf("pdf validation failed: %w", err)
	}
	if err := ctx.EnsurePageCount(); err != nil {
		f.Close()
		return nil, fmt.Errorf("pdf page count failed: %w", err)
	}
	return &Document{path: path, f: f, ctx: ctx}, nil
}

// PageCount returns the number of pages in the document.
func (d *Document) PageCount() int { return d.ctx.PageCount }

// WriteRange copies the pages of r, unchanged, into a new PDF at outFile.
func (d *Document) WriteRange(r splitplan.Range, outFile string) error {
	if r.Start < 1 || r.End > d.ctx.PageCount || r.Start > r.End {
		return fmt.Errorf("page range %s out of bounds (document has %d pages)", r, d.ctx.PageCount)
	}
	part, err := pdfcpu.ExtractPages(d.ctx, r.Pages(), false)
	if err != nil {
		return fmt.Errorf("failed to extract pages %s: %w", r, err)
	}
	f, err := os.Create(outFile)
	if err != nil {
		return err
	}
	if err := api.WriteContext(part, f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write pages %s: %w", r, err)
	}
	log.Debug().Str("source", d.path).Str("range", r.String()).Str("path", outFile).Msg("wrote page range")
	return f.Close()
}

// Close releases the underlying file.
func (d *Document) Close() error { return d.f.Close() }

// ErrNoImages is returned when there is nothing to assemble.
var ErrNoImages = errors.New("no page images to assemble")

// ImagesToPDF writes one page per image, in order, to outFile. Each page is
// sized to its image. An existing outFile is replaced, not appended to.
func ImagesToPDF(imagePaths []string, outFile string) error {
	if len(imagePaths) == 0 {
		return ErrNoImages
	}
	if err := os.Remove(outFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	imp, err := pdfcpu.ParseImportDetails("pos:full", types.POINTS)
	if err != nil {
		return fmt.Errorf("import config: %w", err)
	}
	if err := api.ImportImagesFile(imagePaths, outFile, imp, model.NewDefaultConfiguration()); err != nil {
		return fmt.Errorf("failed to import images: %w", err)
	}
	log.Debug().Int("pages", len(imagePaths)).Str("path", outFile).Msg("assembled PDF from images")
	return nil
}
