package storage

import (
	"os"
	"path/filepath"
	"strings"
	"time"
)

// stalePrefixes are the temp names created by Fetch, the output targets and
// the filter pipeline.
var stalePrefixes = []string{"pdfdl-", "s3pdf-", "pdfout-", "pdffilter-"}

// CleanupStale removes leftovers of killed runs from dir that are older than
// maxAge. It returns how many entries were removed.
func CleanupStale(dir string, maxAge time.Duration) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0
	}
	now := time.Now()
	removed := 0
	for _, e := range entries {
		if !hasStalePrefix(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil || now.Sub(info.ModTime()) < maxAge {
			continue
		}
		if os.RemoveAll(filepath.Join(dir, e.Name())) == nil {
			removed++
		}
	}
	return removed
}

func hasStalePrefix(name string) bool {
	for _, p := range stalePrefixes {
		if strings.HasPrefix(name, p) {
			return true
		}
	}
	return false
}
