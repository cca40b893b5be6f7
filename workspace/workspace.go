package workspace

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/jfrog/gofrog/log"
	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"
	"gocloud.dev/gcerrors"

	// Remote workspaces are addressed by bucket URL.
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/s3blob"
)

var ErrNotFound = errors.New("file not found in workspace")

// Workspace reads the files a build produced. It is backed by a local directory or by a bucket
// (file://, s3:// or gs:// URL).
type Workspace struct {
	bucket   *blob.Bucket
	location string
	// Absolute root directory, local workspaces only.
	rootDir string
}

// Open opens the workspace at location, either a directory path or a bucket URL.
func Open(ctx context.Context, location string) (*Workspace, error) {
	if strings.Contains(location, "://") {
		bucket, err := blob.OpenBucket(ctx, location)
		if err != nil {
			return nil, fmt.Errorf("open workspace bucket %s: %w", location, err)
		}
		return &Workspace{bucket: bucket, location: location}, nil
	}
	return OpenDir(location)
}

// OpenDir opens a local directory workspace.
func OpenDir(dir string) (*Workspace, error) {
	rootDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(rootDir)
	if err != nil {
		return nil, fmt.Errorf("open workspace: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("open workspace: %s is not a directory", rootDir)
	}
	bucket, err := fileblob.OpenBucket(rootDir, nil)
	if err != nil {
		return nil, fmt.Errorf("open workspace %s: %w", rootDir, err)
	}
	return &Workspace{bucket: bucket, location: rootDir, rootDir: rootDir}, nil
}

// Open returns a seekable stream of the file at relativePath. Paths that do not resolve under the
// workspace root, and missing files, return ErrNotFound.
func (w *Workspace) Open(ctx context.Context, relativePath string) (io.ReadSeekCloser, error) {
	key, err := w.key(relativePath)
	if err != nil {
		return nil, err
	}
	log.Debug(fmt.Sprintf("Opening %s from workspace %s", key, w.location))
	reader, err := w.bucket.NewReader(ctx, key, nil)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, relativePath)
		}
		return nil, fmt.Errorf("open %s: %w", relativePath, err)
	}
	return reader, nil
}

func (w *Workspace) Close() error {
	return w.bucket.Close()
}

// key converts p to a bucket key. Absolute paths are accepted for local workspaces when they lie under the root.
func (w *Workspace) key(p string) (string, error) {
	if w.rootDir != "" && filepath.IsAbs(p) {
		rel, err := filepath.Rel(w.rootDir, p)
		if err != nil {
			return "", fmt.Errorf("%w: %s", ErrNotFound, p)
		}
		p = rel
	}
	key := path.Clean(filepath.ToSlash(p))
	if key == "." || key == ".." || strings.HasPrefix(key, "../") || strings.HasPrefix(key, "/") {
		return "", fmt.Errorf("%w: %s is outside of the workspace", ErrNotFound, p)
	}
	return key, nil
}
