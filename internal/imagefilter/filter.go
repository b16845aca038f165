// Package imagefilter keeps near-black pixels of a page image and paints
// everything lighter white.
//
// Darkness is judged on the HSV value channel, max(R, G, B), so dark
// chromatic ink survives just like gray or black ink.
package imagefilter

import (
	"image"

	"golang.org/x/image/draw"
)

// Stats counts the pixels a filter pass kept.
type Stats struct {
	Kept  int
	Total int
}

// Ratio is the fraction of pixels kept, 0 for an empty image.
func (s Stats) Ratio() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Kept) / float64(s.Total)
}

// Value returns the HSV value of an RGB pixel.
func Value(r, g, b uint8) uint8 {
	v := r
	if g > v {
		v = g
	}
	if b > v {
		v = b
	}
	return v
}

// KeepDark returns a new image with the bounds of img in which every pixel
// whose value is <= threshold keeps its RGB and every other pixel is white.
// Thresholds outside [0, 255] are used as given.
func KeepDark(img image.Image, threshold int) *image.RGBA {
	out, _ := KeepDarkStats(img, threshold)
	return out
}

// KeepDarkStats is KeepDark that also reports how many pixels survived.
func KeepDarkStats(img image.Image, threshold int) (*image.RGBA, Stats) {
	src := toRGBA(img)
	bounds := src.Bounds()
	dst := image.NewRGBA(bounds)
	stats := Stats{Total: bounds.Dx() * bounds.Dy()}

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		si := src.PixOffset(bounds.Min.X, y)
		di := dst.PixOffset(bounds.Min.X, y)
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b := src.Pix[si], src.Pix[si+1], src.Pix[si+2]
			if int(Value(r, g, b)) <= threshold {
				dst.Pix[di], dst.Pix[di+1], dst.Pix[di+2] = r, g, b
				stats.Kept++
			} else {
				dst.Pix[di], dst.Pix[di+1], dst.Pix[di+2] = 0xff, 0xff, 0xff
			}
			dst.Pix[di+3] = 0xff
			si += 4
			di += 4
		}
	}
	return dst, stats
}

// toRGBA avoids a copy for the *image.RGBA pages go-fitz produces.
func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	bounds := img.Bounds()
	rgba := image.NewRGBA(bounds)
	draw.Draw(rgba, bounds, img, bounds.Min, draw.Src)
	return rgba
}
