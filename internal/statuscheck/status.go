package statuscheck

import (
	"context"
	"errors"
	"os"
	"time"
)

// RedisPinger models the minimal Redis capability we need for status checks.
type RedisPinger interface {
	Ping(ctx context.Context) error
}

// BucketChecker reports whether a bucket is reachable.
type BucketChecker interface {
	HeadBucket(ctx context.Context, bucket string) error
}

// Checker aggregates health checks for the dependencies a run may touch.
type Checker struct {
	redis    RedisPinger
	buckets  BucketChecker
	s3Bucket string
	tempDir  string
}

// Options configures the Checker. Nil clients report "not configured".
type Options struct {
	Redis    RedisPinger
	Buckets  BucketChecker
	S3Bucket string
	TempDir  string
}

// Status represents the readiness of a subsystem.
type Status struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

// Summary bundles all subsystem statuses.
type Summary struct {
	Redis   Status `json:"redis"`
	S3      Status `json:"s3"`
	TempDir Status `json:"temp_dir"`
}

// Healthy is false when any subsystem failed.
func (s Summary) Healthy() bool { return s.Redis.OK && s.S3.OK && s.TempDir.OK }

func New(opts Options) *Checker {
	dir := opts.TempDir
	if dir == "" {
		dir = os.TempDir()
	}
	return &Checker{redis: opts.Redis, buckets: opts.Buckets, s3Bucket: opts.S3Bucket, tempDir: dir}
}

// Summary returns the current status snapshot.
func (c *Checker) Summary(ctx context.Context) Summary {
	return Summary{
		Redis:   c.checkRedis(ctx),
		S3:      c.checkS3(ctx),
		TempDir: c.checkTempDir(),
	}
}

func (c *Checker) checkRedis(ctx context.Context) Status {
	if c.redis == nil {
		return Status{OK: true, Message: "not configured"}
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := c.redis.Ping(ctx); err != nil {
		return Status{OK: false, Message: trimError(err)}
	}
	return Status{OK: true, Message: "Connected"}
}

func (c *Checker) checkS3(ctx context.Context) Status {
	if c.s3Bucket == "" {
		return Status{OK: true, Message: "not configured"}
	}
	if c.buckets == nil {
		return Status{OK: false, Message: "client unavailable"}
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := c.buckets.HeadBucket(ctx, c.s3Bucket); err != nil {
		return Status{OK: false, Message: trimError(err)}
	}
	return Status{OK: true, Message: "Connected"}
}

// Page rasters are staged in the temp dir, so it must be writable.
func (c *Checker) checkTempDir() Status {
	f, err := os.CreateTemp(c.tempDir, "pdfpages-check-*")
	if err != nil {
		return Status{OK: false, Message: trimError(err)}
	}
	name := f.Name()
	f.Close()
	os.Remove(name)
	return Status{OK: true, Message: "Writable"}
}

func trimError(err error) string {
	if err == nil {
		return ""
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timeout"
	}
	msg := err.Error()
	if len(msg) > 120 {
		return msg[:120]
	}
	return msg
}
