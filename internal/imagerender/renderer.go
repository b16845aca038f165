package imagerender

import (
	"bufio"
	"fmt"
	"image"
	"image/jpeg"
	"os"

	"github.com/gen2brain/go-fitz"
	"github.com/rs/zerolog/log"
)

// DefaultQuality is the JPEG quality used for intermediate page rasters.
const DefaultQuality = 95

// Document is an open, renderable PDF.
type Document interface {
	NumPage() int
	// Image renders a 1-based page at dpi.
	Image(page int, dpi float64) (image.Image, error)
	Close() error
}

// Opener opens a PDF path into a Document.
type Opener interface {
	Open(path string) (Document, error)
}

// Default returns the MuPDF-backed opener.
func Default() Opener { return fitzOpener{} }

type fitzOpener struct{}

func (fitzOpener) Open(path string) (Document, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	return fitzDoc{doc}, nil
}

type fitzDoc struct{ doc *fitz.Document }

func (d fitzDoc) NumPage() int { return d.doc.NumPage() }

func (d fitzDoc) Image(page int, dpi float64) (image.Image, error) {
	// go-fitz uses 0-based indexing
	img, err := d.doc.ImageDPI(page-1, dpi)
	if err != nil {
		return nil, fmt.Errorf("failed to render page %d: %w", page, err)
	}
	bounds := img.Bounds()
	log.Debug().
		Int("page", page).
		Int("width", bounds.Dx()).
		Int("height", bounds.Dy()).
		Float64("dpi", dpi).
		Msg("rendered page")
	return img, nil
}

func (d fitzDoc) Close() error { return d.doc.Close() }

// WriteJPEG encodes img as a JPEG file at path.
func WriteJPEG(path string, img image.Image, quality int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	if err := jpeg.Encode(w, img, &jpeg.Options{Quality: quality}); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode JPEG: %w", err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Dimensions reads the pixel size of an encoded JPEG file.
func Dimensions(path string) (width, height int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()
	cfg, err := jpeg.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to decode JPEG: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}
