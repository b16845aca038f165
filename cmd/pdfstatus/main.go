package main

import (
	"fmt"
	"os"

	"github.com/local/pdfpages/internal/cli"
	"github.com/local/pdfpages/internal/config"
	"github.com/local/pdfpages/internal/logger"
)

func main() {
	cfg := config.FromEnv()
	if err := cli.InitLogging(cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	err := newRootCmd(cfg).Execute()
	logger.Close()
	if err != nil {
		cli.Fail(os.Stderr, err)
		os.Exit(1)
	}
}
