package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemStore() *memStore { return &memStore{objects: map[string][]byte{}} }

func (m *memStore) Download(_ context.Context, bucket, key string, w io.Writer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.objects[bucket+"/"+key]
	if !ok {
		return fmt.Errorf("no such key: %s/%s", bucket, key)
	}
	_, err := w.Write(b)
	return err
}

func (m *memStore) Upload(_ context.Context, bucket, key, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[bucket+"/"+key] = b
	return nil
}

func TestParseS3(t *testing.T) {
	tests := []struct {
		ref     string
		bucket  string
		key     string
		wantErr bool
	}{
		{ref: "s3://docs/in/a.pdf", bucket: "docs", key: "in/a.pdf"},
		{ref: "s3://docs", bucket: "docs"},
		{ref: "s3://docs/", bucket: "docs"},
		{ref: "s3:///a.pdf", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			b, k, err := ParseS3(tt.ref)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.bucket, b)
			assert.Equal(t, tt.key, k)
		})
	}
}

func TestFetchLocal(t *testing.T) {
	r := NewResolverWithStore(newMemStore())

	p, cleanup, err := r.Fetch(context.Background(), "/data/in.pdf")
	require.NoError(t, err)
	cleanup()
	assert.Equal(t, "/data/in.pdf", p)

	p, cleanup, err = r.Fetch(context.Background(), "file:///data/in.pdf#page=2")
	require.NoError(t, err)
	cleanup()
	assert.Equal(t, "/data/in.pdf", p)
}

func TestFetchHTTP(t *testing.T) {
	body := []byte("%PDF-1.4 fake body")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.pdf" {
			http.NotFound(w, r)
			return
		}
		w.Write(body)
	}))
	defer srv.Close()

	r := NewResolverWithStore(newMemStore())
	p, cleanup, err := r.Fetch(context.Background(), srv.URL+"/doc.pdf")
	require.NoError(t, err)
	got, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, body, got)
	cleanup()
	_, err = os.Stat(p)
	assert.True(t, os.IsNotExist(err))

	_, cleanup, err = r.Fetch(context.Background(), srv.URL+"/missing.pdf")
	cleanup()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http 404")
}

func TestFetchS3(t *testing.T) {
	store := newMemStore()
	store.objects["docs/in/a.pdf"] = []byte("%PDF-1.7")
	r := NewResolverWithStore(store)

	p, cleanup, err := r.Fetch(context.Background(), "s3://docs/in/a.pdf")
	require.NoError(t, err)
	defer cleanup()
	got, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7", string(got))
	assert.True(t, strings.HasSuffix(p, ".pdf"))

	_, cleanup2, err := r.Fetch(context.Background(), "s3://docs/nope.pdf")
	cleanup2()
	require.Error(t, err)
}

func TestLocalTargetsNeedNoCommit(t *testing.T) {
	r := NewResolverWithStore(newMemStore())

	ft, err := r.FileTarget("file:///tmp/out.pdf")
	require.NoError(t, err)
	defer ft.Cleanup()
	assert.False(t, ft.Remote())
	assert.Equal(t, "/tmp/out.pdf", ft.Local)

	refs, err := r.Commit(context.Background(), ft)
	require.NoError(t, err)
	assert.Nil(t, refs)

	dt, err := r.DirTarget("parts")
	require.NoError(t, err)
	assert.Equal(t, "parts", dt.Local)
	assert.Equal(t, "parts/split_1.pdf", dt.RefFor("parts/split_1.pdf"))
}

func TestFileTargetS3(t *testing.T) {
	store := newMemStore()
	r := NewResolverWithStore(store)

	_, err := r.FileTarget("s3://out/")
	require.Error(t, err)

	ft, err := r.FileTarget("s3://out/filtered/doc.pdf")
	require.NoError(t, err)
	defer ft.Cleanup()
	assert.True(t, ft.Remote())
	assert.Equal(t, "doc.pdf", filepath.Base(ft.Local))

	require.NoError(t, os.WriteFile(ft.Local, []byte("pdf"), 0o644))
	refs, err := r.Commit(context.Background(), ft)
	require.NoError(t, err)
	assert.Equal(t, []string{"s3://out/filtered/doc.pdf"}, refs)
	assert.Equal(t, []byte("pdf"), store.objects["out/filtered/doc.pdf"])

	local := ft.Local
	ft.Cleanup()
	_, err = os.Stat(local)
	assert.True(t, os.IsNotExist(err))
}

func TestDirTargetS3(t *testing.T) {
	store := newMemStore()
	r := NewResolverWithStore(store)

	dt, err := r.DirTarget("s3://out/parts/")
	require.NoError(t, err)
	defer dt.Cleanup()

	for i := 1; i <= 3; i++ {
		name := filepath.Join(dt.Local, fmt.Sprintf("split_%d.pdf", i))
		require.NoError(t, os.WriteFile(name, bytes.Repeat([]byte{'x'}, i), 0o644))
	}
	assert.Equal(t, "s3://out/parts/split_2.pdf", dt.RefFor(filepath.Join(dt.Local, "split_2.pdf")))

	refs, err := r.Commit(context.Background(), dt)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"s3://out/parts/split_1.pdf",
		"s3://out/parts/split_2.pdf",
		"s3://out/parts/split_3.pdf",
	}, refs)
	assert.Len(t, store.objects["out/parts/split_3.pdf"], 3)
}

func TestResolverWithoutStore(t *testing.T) {
	r := &Resolver{HTTP: http.DefaultClient}
	_, cleanup, err := r.Fetch(context.Background(), "s3://docs/a.pdf")
	cleanup()
	require.Error(t, err)
}

func TestDefaultBucket(t *testing.T) {
	store := newMemStore()
	store.objects["docs/a.pdf"] = []byte("%PDF")
	r := NewResolverWithStore(store)
	r.DefaultBucket = "docs"

	p, cleanup, err := r.Fetch(context.Background(), "s3:///a.pdf")
	require.NoError(t, err)
	defer cleanup()
	got, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(got))

	ft, err := r.FileTarget("s3:///out/b.pdf")
	require.NoError(t, err)
	defer ft.Cleanup()
	assert.Equal(t, "s3://docs/out/b.pdf", ft.Ref)
}
