// Package storage resolves input and output references: local paths,
// file:// and http(s):// URLs, and s3://bucket/key objects.
package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

func IsS3(ref string) bool { return strings.HasPrefix(ref, "s3://") }

func isHTTP(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

// ParseS3 splits s3://bucket/key. The key may be empty for a bucket root.
func ParseS3(ref string) (bucket, key string, err error) {
	p := strings.TrimPrefix(ref, "s3://")
	bucket, key, _ = strings.Cut(p, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("invalid s3 url: %s", ref)
	}
	return bucket, key, nil
}

// Resolver fetches inputs and commits outputs. The S3 client is created on
// first use so purely local runs never load AWS config.
type Resolver struct {
	HTTP *http.Client
	// DefaultBucket fills in refs written as s3:///key.
	DefaultBucket string

	mu       sync.Mutex
	store    ObjectStore
	newStore func(ctx context.Context) (ObjectStore, error)
}

func NewResolver() *Resolver {
	return &Resolver{
		HTTP: http.DefaultClient,
		newStore: func(ctx context.Context) (ObjectStore, error) {
			return NewS3Client(ctx)
		},
	}
}

// NewResolverWithStore uses store for every s3:// reference.
func NewResolverWithStore(store ObjectStore) *Resolver {
	return &Resolver{HTTP: http.DefaultClient, store: store}
}

func (r *Resolver) expand(ref string) string {
	if r.DefaultBucket != "" && strings.HasPrefix(ref, "s3:///") {
		return "s3://" + r.DefaultBucket + "/" + strings.TrimPrefix(ref, "s3:///")
	}
	return ref
}

func (r *Resolver) objectStore(ctx context.Context) (ObjectStore, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.store != nil {
		return r.store, nil
	}
	if r.newStore == nil {
		return nil, fmt.Errorf("no object store configured")
	}
	s, err := r.newStore(ctx)
	if err != nil {
		return nil, err
	}
	r.store = s
	return s, nil
}

// Fetch returns a local path for ref. Remote refs are downloaded to a temp
// file that cleanup removes; cleanup is never nil.
func (r *Resolver) Fetch(ctx context.Context, ref string) (string, func(), error) {
	// Strip optional #page fragment if present
	if i := strings.Index(ref, "#"); i >= 0 {
		ref = ref[:i]
	}
	ref = r.expand(ref)
	noop := func() {}

	switch {
	case IsS3(ref):
		bucket, key, err := ParseS3(ref)
		if err != nil {
			return "", noop, err
		}
		store, err := r.objectStore(ctx)
		if err != nil {
			return "", noop, err
		}
		return r.toTemp("s3pdf-*.pdf", func(w io.Writer) error {
			return store.Download(ctx, bucket, key, w)
		})
	case isHTTP(ref):
		return r.toTemp("pdfdl-*.pdf", func(w io.Writer) error {
			return r.downloadHTTP(ctx, ref, w)
		})
	case strings.HasPrefix(ref, "file://"):
		return strings.TrimPrefix(ref, "file://"), noop, nil
	default:
		return ref, noop, nil
	}
}

func (r *Resolver) toTemp(pattern string, fill func(io.Writer) error) (string, func(), error) {
	f, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", func() {}, err
	}
	cleanup := func() { os.Remove(f.Name()) }
	if err := fill(f); err != nil {
		f.Close()
		cleanup()
		return "", func() {}, err
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", func() {}, err
	}
	return f.Name(), cleanup, nil
}

func (r *Resolver) downloadHTTP(ctx context.Context, url string, w io.Writer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := r.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download %s: http %d", url, resp.StatusCode)
	}
	_, err = io.Copy(w, resp.Body)
	return err
}

// Target is where a pipeline writes. Local is always a filesystem path; for
// s3:// refs it lives in a temp dir until Commit uploads it.
type Target struct {
	Ref   string
	Local string
	dir   bool
	tmp   string
}

// FileTarget prepares a single-file output.
func (r *Resolver) FileTarget(ref string) (*Target, error) {
	ref = r.expand(ref)
	if !IsS3(ref) {
		return &Target{Ref: strings.TrimPrefix(ref, "file://"), Local: strings.TrimPrefix(ref, "file://")}, nil
	}
	_, key, err := ParseS3(ref)
	if err != nil {
		return nil, err
	}
	if key == "" || strings.HasSuffix(key, "/") {
		return nil, fmt.Errorf("s3 output needs an object key: %s", ref)
	}
	tmp, err := os.MkdirTemp("", "pdfout-*")
	if err != nil {
		return nil, err
	}
	return &Target{Ref: ref, Local: filepath.Join(tmp, path.Base(key)), tmp: tmp}, nil
}

// DirTarget prepares a directory output.
func (r *Resolver) DirTarget(ref string) (*Target, error) {
	ref = r.expand(ref)
	if !IsS3(ref) {
		return &Target{Ref: strings.TrimPrefix(ref, "file://"), Local: strings.TrimPrefix(ref, "file://"), dir: true}, nil
	}
	if _, _, err := ParseS3(ref); err != nil {
		return nil, err
	}
	tmp, err := os.MkdirTemp("", "pdfout-*")
	if err != nil {
		return nil, err
	}
	return &Target{Ref: ref, Local: tmp, dir: true, tmp: tmp}, nil
}

// Remote reports whether Commit has anything to upload.
func (t *Target) Remote() bool { return t.tmp != "" }

// RefFor maps a local file written under the target to its final reference.
func (t *Target) RefFor(local string) string {
	if !t.Remote() {
		return local
	}
	if !t.dir {
		return t.Ref
	}
	return strings.TrimSuffix(t.Ref, "/") + "/" + filepath.Base(local)
}

// Commit uploads a remote target's files and returns their references.
// Local targets are already in place and return nil.
func (r *Resolver) Commit(ctx context.Context, t *Target) ([]string, error) {
	if !t.Remote() {
		return nil, nil
	}
	store, err := r.objectStore(ctx)
	if err != nil {
		return nil, err
	}
	files := []string{t.Local}
	if t.dir {
		entries, err := os.ReadDir(t.Local)
		if err != nil {
			return nil, err
		}
		files = files[:0]
		for _, e := range entries {
			if !e.IsDir() {
				files = append(files, filepath.Join(t.Local, e.Name()))
			}
		}
		sort.Strings(files)
	}
	refs := make([]string, 0, len(files))
	for _, f := range files {
		ref := t.RefFor(f)
		bucket, key, err := ParseS3(ref)
		if err != nil {
			return refs, err
		}
		if err := store.Upload(ctx, bucket, key, f); err != nil {
			return refs, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// Cleanup removes the staging dir of a remote target.
func (t *Target) Cleanup() {
	if t.tmp != "" {
		os.RemoveAll(t.tmp)
	}
}
