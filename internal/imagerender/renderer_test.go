package imagerender

import (
	"image"
	"image/color"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteJPEG_Dimensions(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 37, 21))
	for x := 0; x < 37; x++ {
		img.SetRGBA(x, 10, color.RGBA{A: 255})
	}

	path := filepath.Join(t.TempDir(), "page_1.jpg")
	require.NoError(t, WriteJPEG(path, img, DefaultQuality))

	w, h, err := Dimensions(path)
	require.NoError(t, err)
	assert.Equal(t, 37, w)
	assert.Equal(t, 21, h)
}

func TestWriteJPEG_BadPath(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	err := WriteJPEG(filepath.Join(t.TempDir(), "missing", "p.jpg"), img, DefaultQuality)
	assert.Error(t, err)
}

func TestDefaultOpener_MissingFile(t *testing.T) {
	_, err := Default().Open(filepath.Join(t.TempDir(), "nope.pdf"))
	assert.Error(t, err)
}
