package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	Init()
	Init()

	before := testutil.ToFloat64(runsTotal.WithLabelValues("filter", "success"))
	ObserveRun("filter", "success", 2*time.Second)
	assert.Equal(t, before+1, testutil.ToFloat64(runsTotal.WithLabelValues("filter", "success")))

	pagesBefore := testutil.ToFloat64(pagesTotal.WithLabelValues("split"))
	AddPages("split", 7)
	assert.Equal(t, pagesBefore+7, testutil.ToFloat64(pagesTotal.WithLabelValues("split")))

	partsBefore := testutil.ToFloat64(partsWritten)
	IncPartsWritten()
	assert.Equal(t, partsBefore+1, testutil.ToFloat64(partsWritten))
}

func TestWriteTextfile(t *testing.T) {
	ObserveKeptRatio(0.12)
	ObserveRun("split", "failed", time.Second)

	path := filepath.Join(t.TempDir(), "pdfpages.prom")
	require.NoError(t, WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, `pdfpages_runs_total{pipeline="split",result="failed"}`)
	assert.Contains(t, out, "pdfpages_pixels_kept_ratio_bucket")
	assert.Contains(t, out, "pdfpages_run_duration_seconds_count")
}
