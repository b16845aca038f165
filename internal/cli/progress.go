// Package cli holds the terminal side of the commands: progress display,
// part reports and per-run bookkeeping.
package cli

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"github.com/local/pdfpages/internal/imagefilter"
	"github.com/local/pdfpages/internal/split"
)

// FilterProgress draws a bar of filtered pages.
type FilterProgress struct {
	w   io.Writer
	bar *progressbar.ProgressBar
}

func NewFilterProgress(w io.Writer) *FilterProgress { return &FilterProgress{w: w} }

func (p *FilterProgress) PagesSelected(pages []int, totalPages int) {
	p.bar = progressbar.NewOptions(len(pages),
		progressbar.OptionSetWriter(p.w),
		progressbar.OptionSetDescription(fmt.Sprintf("filtering %d of %d pages", len(pages), totalPages)),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetItsString("pages"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "│",
			BarEnd:        "│",
		}),
		progressbar.OptionOnCompletion(func() { fmt.Fprint(p.w, "\n") }),
		progressbar.OptionSetRenderBlankState(true),
	)
}

func (p *FilterProgress) PageDone(page int, stats imagefilter.Stats) {
	if p.bar != nil {
		_ = p.bar.Add(1)
	}
}

// Finish completes the bar, if one was started.
func (p *FilterProgress) Finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}

// PartReporter prints one line per written split part.
type PartReporter struct {
	mu    sync.Mutex
	w     io.Writer
	label func(a ...interface{}) string
}

func NewPartReporter(w io.Writer) *PartReporter {
	return &PartReporter{w: w, label: color.New(color.FgGreen, color.Bold).SprintFunc()}
}

func (r *PartReporter) PartWritten(p split.Part) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.w, "%s %s (pages %s)\n", r.label("Created:"), p.Path, p.Range)
}

// Uploaded reports a file committed to remote storage.
func (r *PartReporter) Uploaded(ref string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.w, "%s %s\n", r.label("Uploaded:"), ref)
}

// Saved prints the final output of a filter run.
func Saved(w io.Writer, ref string, pages int) {
	fmt.Fprintf(w, "%s %s (%d pages)\n", color.New(color.FgGreen, color.Bold).Sprint("Saved:"), ref, pages)
}

// Fail prints an error line.
func Fail(w io.Writer, err error) {
	fmt.Fprintf(w, "%s %v\n", color.New(color.FgRed, color.Bold).Sprint("Error:"), err)
}
