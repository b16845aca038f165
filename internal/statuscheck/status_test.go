package statuscheck

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

type buckets struct {
	err  error
	seen string
}

func (b *buckets) HeadBucket(_ context.Context, bucket string) error {
	b.seen = bucket
	return b.err
}

type timeoutErr struct{}

func (timeoutErr) Error() string { return "i/o timeout" }
func (timeoutErr) Timeout() bool { return true }

func TestSummaryNothingConfigured(t *testing.T) {
	s := New(Options{TempDir: t.TempDir()}).Summary(context.Background())
	assert.True(t, s.Healthy())
	assert.Equal(t, "not configured", s.Redis.Message)
	assert.Equal(t, "not configured", s.S3.Message)
	assert.Equal(t, "Writable", s.TempDir.Message)
}

func TestSummaryFailures(t *testing.T) {
	b := &buckets{err: errors.New(strings.Repeat("x", 200))}
	s := New(Options{
		Redis:    pinger{err: timeoutErr{}},
		Buckets:  b,
		S3Bucket: "docs",
		TempDir:  filepath.Join(t.TempDir(), "missing"),
	}).Summary(context.Background())

	assert.False(t, s.Healthy())
	assert.Equal(t, Status{OK: false, Message: "timeout"}, s.Redis)
	assert.Equal(t, "docs", b.seen)
	assert.Len(t, s.S3.Message, 120)
	assert.False(t, s.TempDir.OK)
}

func TestSummaryBucketWithoutClient(t *testing.T) {
	s := New(Options{Redis: pinger{}, S3Bucket: "docs", TempDir: t.TempDir()}).Summary(context.Background())
	assert.Equal(t, Status{OK: true, Message: "Connected"}, s.Redis)
	assert.Equal(t, Status{OK: false, Message: "client unavailable"}, s.S3)
}
