package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/local/pdfpages/internal/config"
	"github.com/local/pdfpages/internal/logger"
	"github.com/local/pdfpages/internal/storage"
	"github.com/local/pdfpages/internal/store"
)

// InitLogging configures the global logger from cfg.
func InitLogging(cfg config.Config) error {
	return logger.Init(logger.Options{
		Level:        cfg.Logging.Level,
		Pretty:       cfg.Logging.Pretty,
		File:         cfg.Logging.File,
		MaxSizeMB:    cfg.Logging.MaxSizeMB,
		MaxBackups:   cfg.Logging.MaxBackups,
		MaxAgeDays:   cfg.Logging.MaxAgeDays,
		Compress:     cfg.Logging.Compress,
		SendToAxiom:  cfg.Axiom.Send && cfg.Axiom.APIKey != "",
		AxiomAPIKey:  cfg.Axiom.APIKey,
		AxiomOrgID:   cfg.Axiom.OrgID,
		AxiomDataset: cfg.Axiom.Dataset,
		AxiomFlush:   cfg.Axiom.FlushInterval,
	})
}

// OpenStatus connects to the status store. It returns nil when REDIS_URL is
// unset or unreachable; status records are best effort.
func OpenStatus(ctx context.Context, cfg config.StatusConfig) StatusStore {
	if cfg.RedisURL == "" {
		return nil
	}
	rs, err := store.NewRedisStatus(ctx, cfg.RedisURL, cfg.TTL)
	if err != nil {
		log.Warn().Err(err).Msg("run status disabled: failed to connect to redis")
		return nil
	}
	return rs
}

// NewResolver builds the input/output resolver for cfg.
func NewResolver(cfg config.StorageConfig) *storage.Resolver {
	r := storage.NewResolver()
	r.DefaultBucket = cfg.Bucket
	return r
}

// SignalContext is cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// FetchContext bounds input downloads. A non-positive timeout means no limit.
func FetchContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
