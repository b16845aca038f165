package main

import (
	"fmt"
	"os"
	"time"

	"github.com/local/pdfpages/internal/cli"
	"github.com/local/pdfpages/internal/config"
	"github.com/local/pdfpages/internal/logger"
	"github.com/local/pdfpages/internal/storage"
)

// staleTempAge is how old leftovers of killed runs must be before removal.
const staleTempAge = 24 * time.Hour

func main() {
	cfg := config.FromEnv()
	if err := cli.InitLogging(cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	storage.CleanupStale(os.TempDir(), staleTempAge)

	err := newRootCmd(cfg).Execute()
	logger.Close()
	if err != nil {
		cli.Fail(os.Stderr, err)
		os.Exit(1)
	}
}
