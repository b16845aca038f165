package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/local/pdfpages/internal/cli"
	"github.com/local/pdfpages/internal/config"
	"github.com/local/pdfpages/internal/filter"
	"github.com/local/pdfpages/internal/pagerange"
)

type filterFlags struct {
	dpi         int
	threshold   int
	pages       string
	workers     int
	metricsFile string
}

func newRootCmd(cfg config.Config) *cobra.Command {
	var f filterFlags

	cmd := &cobra.Command{
		Use:   "pdffilter <input> <output>",
		Short: "Keep only near-black content of PDF pages on a white background",
		Long: `pdffilter renders the selected pages of a PDF, keeps every pixel whose
HSV value is at or below the threshold, paints the rest white and writes the
result as a new PDF. Input may be a path, file://, http(s):// or s3:// URL;
output may be a path or an s3:// URL.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := cli.SignalContext(cmd.Context())
			defer cancel()
			return runFilter(ctx, cmd, cfg, f, args[0], args[1])
		},
	}
	cmd.Flags().IntVar(&f.dpi, "dpi", cfg.Filter.DPI, "resolution pages are rendered at")
	cmd.Flags().IntVar(&f.threshold, "threshold", cfg.Filter.Threshold, "maximum HSV value (0-255) of kept pixels")
	cmd.Flags().StringVar(&f.pages, "pages", pagerange.All, `pages to keep, e.g. "1-3,5" or "all"`)
	cmd.Flags().IntVar(&f.workers, "workers", cfg.Filter.Workers, "pages filtered in parallel")
	cmd.Flags().StringVar(&f.metricsFile, "metrics-file", cfg.MetricsFile, "write Prometheus metrics to this textfile")
	return cmd
}

func runFilter(ctx context.Context, cmd *cobra.Command, cfg config.Config, f filterFlags, input, output string) (err error) {
	run := cli.StartRun(ctx, cli.RunOptions{
		Pipeline:    cli.PipelineFilter,
		Status:      cli.OpenStatus(ctx, cfg.Status),
		MetricsFile: f.metricsFile,
		Metadata: map[string]interface{}{
			"input":     input,
			"output":    output,
			"dpi":       f.dpi,
			"threshold": f.threshold,
			"pages":     f.pages,
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

	target, err := resolver.FileTarget(output)
	if err != nil {
		return err
	}
	defer target.Cleanup()

	progress := cli.NewFilterProgress(cmd.ErrOrStderr())
	res, err := filter.Run(ctx, filter.Options{
		Input:     local,
		Output:    target.Local,
		DPI:       f.dpi,
		Threshold: f.threshold,
		Pages:     f.pages,
		Quality:   cfg.Filter.JPEGQuality,
		Workers:   f.workers,
		Logger:    run.Logger,
		Observer:  cli.NewFilterObserver(run, progress),
	})
	progress.Finish()
	if err != nil {
		return err
	}
	meta["selected"] = pagerange.Format(res.Pages)
	meta["kept_ratio"] = res.Stats.Ratio()

	if _, err := resolver.Commit(ctx, target); err != nil {
		return fmt.Errorf("upload output: %w", err)
	}
	cli.Saved(cmd.OutOrStdout(), target.RefFor(target.Local), len(res.Pages))
	return nil
}
