package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registry = prometheus.NewRegistry()
	once     sync.Once

	runsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pdfpages",
			Name:      "runs_total",
			Help:      "Total pipeline runs by pipeline and result (success, failed)",
		},
		[]string{"pipeline", "result"},
	)

	runDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pdfpages",
			Name:      "run_duration_seconds",
			Help:      "Duration of pipeline runs",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"pipeline"},
	)

	pagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pdfpages",
			Name:      "pages_total",
			Help:      "Pages filtered or copied into split parts",
		},
		[]string{"pipeline"},
	)

	keptRatio = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "pdfpages",
			Name:      "pixels_kept_ratio",
			Help:      "Fraction of pixels kept per filtered page",
			Buckets:   prometheus.LinearBuckets(0.05, 0.05, 20),
		},
	)

	partsWritten = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "pdfpages",
			Name:      "split_parts_written_total",
			Help:      "Split part files written",
		},
	)
)

// Init registers collectors. Safe to call more than once.
func Init() {
	once.Do(func() {
		registry.MustRegister(runsTotal, runDuration, pagesTotal, keptRatio, partsWritten)
	})
}

// Gatherer exposes the registry backing the textfile export.
func Gatherer() prometheus.Gatherer { return registry }

func ObserveRun(pipeline, result string, dur time.Duration) {
	runsTotal.WithLabelValues(pipeline, result).Inc()
	runDuration.WithLabelValues(pipeline).Observe(dur.Seconds())
}

func AddPages(pipeline string, n int)  { pagesTotal.WithLabelValues(pipeline).Add(float64(n)) }
func ObserveKeptRatio(ratio float64) { keptRatio.Observe(ratio) }
func IncPartsWritten()               { partsWritten.Inc() }

// WriteTextfile writes all metrics in Prometheus text format for the
// node_exporter textfile collector.
func WriteTextfile(path string) error {
	Init()
	return prometheus.WriteToTextfile(path, registry)
}
