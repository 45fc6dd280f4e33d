package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

// GCSMirror copies post artifacts to a bucket and restores missing ones.
type GCSMirror struct {
	client *storage.Client
	bucket string
	prefix string
}

func NewGCSMirror(ctx context.Context, bucket, prefix string) (*GCSMirror, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	return &GCSMirror{
		client: client,
		bucket: bucket,
		prefix: prefix,
	}, nil
}

func (m *GCSMirror) Close() error {
	return m.client.Close()
}

func (m *GCSMirror) objectName(dir, name string) string {
	return path.Join(m.prefix, dir, name)
}

// Upload stores each file under <prefix>/<parent dir name>/<file name>.
func (m *GCSMirror) Upload(ctx context.Context, localPaths ...string) error {
	var errs []error
	for _, p := range localPaths {
		name := m.objectName(filepath.Base(filepath.Dir(p)), filepath.Base(p))
		if err := m.uploadFile(ctx, p, name); err != nil {
			errs = append(errs, fmt.Errorf("upload %s: %w", p, err))
		}
	}
	return errors.Join(errs...)
}

func (m *GCSMirror) uploadFile(ctx context.Context, localPath, name string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	w := m.client.Bucket(m.bucket).Object(name).NewWriter(ctx)
	if _, err := io.Copy(w, f); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

// Pull downloads objects under <prefix>/<base of localDir> that are not
// present in localDir. It returns the number of files fetched.
func (m *GCSMirror) Pull(ctx context.Context, localDir string) (int, error) {
	prefix := m.objectName(filepath.Base(localDir), "") + "/"
	it := m.client.Bucket(m.bucket).Objects(ctx, &storage.Query{Prefix: prefix})

	fetched := 0
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return fetched, fmt.Errorf("failed to list objects: %w", err)
		}

		localPath := filepath.Join(localDir, path.Base(attrs.Name))
		if _, err := os.Stat(localPath); err == nil {
			continue
		}
		if err := m.downloadFile(ctx, attrs.Name, localPath); err != nil {
			return fetched, err
		}
		fetched++
	}

	if fetched > 0 {
		slog.Info("Restored posts from bucket", "bucket", m.bucket, "dir", localDir, "files", fetched)
	}
	return fetched, nil
}

func (m *GCSMirror) downloadFile(ctx context.Context, remotePath, localPath string) error {
	if err := os.MkdirAll(filepath.Dir(localPath), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	r, err := m.client.Bucket(m.bucket).Object(remotePath).NewReader(ctx)
	if err != nil {
		return fmt.Errorf("failed to create reader: %w", err)
	}
	defer func() { _ = r.Close() }()

	if err := writeFileAtomic(localPath, r); err != nil {
		return fmt.Errorf("failed to download file: %w", err)
	}

	return nil
}

// writeFileAtomic copies r into a temp file beside path and renames it into
// place, so an interrupted copy never leaves a partial file at path.
func writeFileAtomic(path string, r io.Reader) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}
