// Package storage hosts uploaded face photos and returns their public URLs.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/saturnino-fabrica-de-software/presenca/internal/config"
)

// ErrInvalidPublicID is returned for ids or folders that could escape the storage root.
var ErrInvalidPublicID = errors.New("invalid public id")

// Uploader stores bytes under folder/publicID and returns a URL for them.
// Uploading to an existing id replaces the previous object.
type Uploader interface {
	Upload(ctx context.Context, data []byte, publicID, folder string) (string, error)
}

// New builds the uploader selected by STORAGE_DRIVER.
func New(ctx context.Context, cfg *config.Config) (Uploader, error) {
	switch strings.ToLower(cfg.StorageDriver) {
	case "s3":
		return NewS3Uploader(ctx, S3Config{
			Region:        cfg.AWSRegion,
			Bucket:        cfg.S3Bucket,
			PublicBaseURL: cfg.S3PublicBaseURL,
		})
	case "local", "":
		return NewDiskUploader(cfg.LocalStorageDir, strings.TrimRight(cfg.PublicBaseURL, "/")+LocalURLPrefix)
	default:
		return nil, fmt.Errorf("unknown storage driver: %s", cfg.StorageDriver)
	}
}

// objectKey joins folder and id into "<folder>/<id>.jpg".
func objectKey(publicID, folder string) (string, error) {
	if !validSegment(publicID) || (folder != "" && !validSegment(folder)) {
		return "", fmt.Errorf("%w: %q/%q", ErrInvalidPublicID, folder, publicID)
	}
	if folder == "" {
		return publicID + ".jpg", nil
	}
	return folder + "/" + publicID + ".jpg", nil
}

func validSegment(s string) bool {
	if s == "" || s == "." || s == ".." {
		return false
	}
	return !strings.ContainsAny(s, `/\`)
}
