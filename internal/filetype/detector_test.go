package filetype

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, data, 0o644))
	return p
}

func TestDetect_PDF(t *testing.T) {
	p := writeFile(t, "doc.bin", []byte("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n1 0 obj\n<<>>\nendobj\n"))

	info, err := New().Detect(p)
	require.NoError(t, err)
	assert.True(t, info.IsPDF)
	assert.Equal(t, "application/pdf", info.MIMEType)
	assert.NoError(t, New().RequirePDF(p))
}

func TestRequirePDF_RejectsText(t *testing.T) {
	p := writeFile(t, "fake.pdf", []byte("just some notes, not a document\n"))

	err := New().RequirePDF(p)
	var notPDF *NotPDFError
	require.True(t, errors.As(err, &notPDF))
	assert.Equal(t, p, notPDF.Path)
	assert.Contains(t, notPDF.MIMEType, "text/plain")
}

func TestDetect_MissingFile(t *testing.T) {
	_, err := New().Detect(filepath.Join(t.TempDir(), "missing.pdf"))
	assert.Error(t, err)
}
