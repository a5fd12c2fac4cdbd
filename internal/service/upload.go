package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log/slog"

	"github.com/disintegration/imaging"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
	"github.com/saturnino-fabrica-de-software/presenca/internal/storage"
)

const (
	RegistrationFolder = "face_registration"
	AttendanceFolder   = "absen"
)

// UploadPolicy decides what an upload failure means for the caller.
type UploadPolicy int

const (
	// UploadBestEffort logs the failure and continues without a URL.
	UploadBestEffort UploadPolicy = iota
	// UploadRequired aborts the operation with ErrUploadFailed.
	UploadRequired
)

func (p UploadPolicy) String() string {
	if p == UploadRequired {
		return "required"
	}
	return "best_effort"
}

type cropUploader struct {
	uploader storage.Uploader
	logger   *slog.Logger
}

func (u cropUploader) upload(ctx context.Context, policy UploadPolicy, crop image.Image, publicID, folder string) (string, error) {
	url, err := u.put(ctx, crop, publicID, folder)
	if err == nil {
		return url, nil
	}

	u.logger.WarnContext(ctx, "photo upload failed",
		slog.String("public_id", publicID),
		slog.String("folder", folder),
		slog.String("policy", policy.String()),
		slog.String("error", err.Error()),
	)

	if policy == UploadRequired {
		return "", domain.ErrUploadFailed.WithError(err)
	}
	return "", nil
}

func (u cropUploader) put(ctx context.Context, crop image.Image, publicID, folder string) (string, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, crop, imaging.JPEG, imaging.JPEGQuality(90)); err != nil {
		return "", fmt.Errorf("encode crop: %w", err)
	}
	return u.uploader.Upload(ctx, buf.Bytes(), publicID, folder)
}
