package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/local/pdfpages/internal/cli"
	"github.com/local/pdfpages/internal/config"
	"github.com/local/pdfpages/internal/split"
)

func newRootCmd(cfg config.Config) *cobra.Command {
	var metricsFile string

	cmd := &cobra.Command{
		Use:   "pdfsplit <input> <output_dir> <num_splits>",
		Short: "Split a PDF into N near-equal contiguous parts",
		Long: `pdfsplit copies the pages of a PDF into num_splits files named
split_1.pdf ... split_N.pdf. Earlier parts receive one extra page when the
page count does not divide evenly. output_dir may be an s3:// prefix.`,
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := parseSplits(args[2])
			if err != nil {
				return err
			}
			ctx, cancel := cli.SignalContext(cmd.Context())
			defer cancel()
			return runSplit(ctx, cmd, cfg, metricsFile, args[0], args[1], n)
		},
	}
	cmd.Flags().StringVar(&metricsFile, "metrics-file", cfg.MetricsFile, "write Prometheus metrics to this textfile")
	return cmd
}

// parseSplits accepts only a positive base-10 integer.
func parseSplits(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("num_splits must be a positive integer, got %q", s)
	}
	if n < 1 {
		return 0, fmt.Errorf("num_splits must be a positive integer, got %d", n)
	}
	return n, nil
}

func runSplit(ctx context.Context, cmd *cobra.Command, cfg config.Config, metricsFile, input, outputDir string, n int) (err error) {
	run := cli.StartRun(ctx, cli.RunOptions{
		Pipeline:    cli.PipelineSplit,
		Status:      cli.OpenStatus(ctx, cfg.Status),
		MetricsFile: metricsFile,
		Metadata: map[string]interface{}{
			"input":      input,
			"output_dir": outputDir,
			"num_splits": n,
		},
	})
	meta := map[string]interface{}{}
	defer func() { run.Finish(err, meta) }()

	resolver := cli.NewResolver(cfg.Storage)
	fetchCtx, cancel := cli.FetchContext(ctx, cfg.Storage.FetchTimeout)
	defer cancel()
	local, cleanup, err := resolver.Fetch(fetchCtx, input)
	defer cleanup()
	if err != nil {
		return fmt.Errorf("fetch input: %w", err)
	}

	target, err := resolver.DirTarget(outputDir)
	if err != nil {
		return err
	}
	defer target.Cleanup()

	reporter := cli.NewPartReporter(cmd.OutOrStdout())
	res, err := split.Run(ctx, split.Options{
		Input:     local,
		OutputDir: target.Local,
		Parts:     n,
		Logger:    run.Logger,
		Observer:  cli.NewSplitObserver(run, reporter, n),
	})
	if res != nil {
		meta["total_pages"] = res.TotalPages
		meta["parts_written"] = len(res.Parts)
	}
	if err != nil {
		return err
	}

	refs, err := resolver.Commit(ctx, target)
	for _, ref := range refs {
		reporter.Uploaded(ref)
	}
	if err != nil {
		return fmt.Errorf("upload parts: %w", err)
	}
	return nil
}
