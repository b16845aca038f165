package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/local/pdfpages/internal/config"
	"github.com/local/pdfpages/internal/statuscheck"
	"github.com/local/pdfpages/internal/storage"
	"github.com/local/pdfpages/internal/store"
)

func newRootCmd(cfg config.Config) *cobra.Command {
	root := &cobra.Command{
		Use:           "pdfstatus",
		Short:         "Inspect pdffilter / pdfsplit runs and their dependencies",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(runCmd(cfg), checkCmd(cfg))
	return root
}

func runCmd(cfg config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "run <run_id>",
		Short: "Print the status record of a run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Status.RedisURL == "" {
				return fmt.Errorf("REDIS_URL is not set")
			}
			rs, err := store.NewRedisStatus(cmd.Context(), cfg.Status.RedisURL, cfg.Status.TTL)
			if err != nil {
				return fmt.Errorf("connect to redis: %w", err)
			}
			defer rs.Close()

			st, ok, err := rs.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("run %s not found (expired or never recorded)", args[0])
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(st)
		},
	}
}

func checkCmd(cfg config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check Redis, the S3 bucket and temp storage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			opts := statuscheck.Options{S3Bucket: cfg.Storage.Bucket}
			if cfg.Status.RedisURL != "" {
				rs, err := store.NewRedisStatus(ctx, cfg.Status.RedisURL, cfg.Status.TTL)
				if err != nil {
					opts.Redis = failedPing{err: err}
				} else {
					defer rs.Close()
					opts.Redis = rs
				}
			}
			if cfg.Storage.Bucket != "" {
				if s3c, err := storage.NewS3Client(ctx); err == nil {
					opts.Buckets = s3c
				}
			}
			sum := statuscheck.New(opts).Summary(ctx)
			printSummary(cmd.OutOrStdout(), sum)
			if !sum.Healthy() {
				return fmt.Errorf("one or more checks failed")
			}
			return nil
		},
	}
}

// failedPing reports a connection error from client setup.
type failedPing struct{ err error }

func (f failedPing) Ping(context.Context) error { return f.err }

func printSummary(w io.Writer, s statuscheck.Summary) {
	ok := color.New(color.FgGreen).SprintFunc()
	bad := color.New(color.FgRed).SprintFunc()
	for _, row := range []struct {
		name string
		st   statuscheck.Status
	}{{"redis", s.Redis}, {"s3", s.S3}, {"temp_dir", s.TempDir}} {
		mark := ok("ok")
		if !row.st.OK {
			mark = bad("FAIL")
		}
		fmt.Fprintf(w, "%-9s %-4s %s\n", row.name, mark, row.st.Message)
	}
}
