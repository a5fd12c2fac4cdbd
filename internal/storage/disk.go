package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// LocalURLPrefix is where the HTTP server exposes the local storage root.
const LocalURLPrefix = "/uploads"

// DiskUploader writes photos below a local directory. Meant for development
// and single-node deployments.
type DiskUploader struct {
	root    string
	baseURL string
}

var _ Uploader = (*DiskUploader)(nil)

func NewDiskUploader(root, baseURL string) (*DiskUploader, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &DiskUploader{root: root, baseURL: baseURL}, nil
}

func (u *DiskUploader) Root() string {
	return u.root
}

func (u *DiskUploader) Upload(ctx context.Context, data []byte, publicID, folder string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	key, err := objectKey(publicID, folder)
	if err != nil {
		return "", err
	}

	dst := filepath.Join(u.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("create folder: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("write %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return "", fmt.Errorf("rename %s: %w", key, err)
	}

	return u.baseURL + "/" + key, nil
}
