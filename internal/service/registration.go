package service

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"strconv"
	"strings"

	"github.com/saturnino-fabrica-de-software/presenca/internal/audit"
	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
	"github.com/saturnino-fabrica-de-software/presenca/internal/provider"
	"github.com/saturnino-fabrica-de-software/presenca/internal/similarity"
	"github.com/saturnino-fabrica-de-software/presenca/internal/storage"
)

var errPhotoCount = domain.ErrInvalidRequest.WithMessage(
	strconv.Itoa(domain.RequiredRegistrationPhotos) + " valid faces are required")

type RegistrationService struct {
	identities   IdentityRepositoryInterface
	extractor    FaceExtractor
	embedder     provider.FaceEmbedder
	uploads      cropUploader
	audit        audit.Logger
	logger       *slog.Logger
	providerName string
}

func NewRegistrationService(
	identities IdentityRepositoryInterface,
	extractor FaceExtractor,
	embedder provider.FaceEmbedder,
	uploader storage.Uploader,
	auditLogger audit.Logger,
	logger *slog.Logger,
) *RegistrationService {
	return &RegistrationService{
		identities: identities,
		extractor:  extractor,
		embedder:   embedder,
		uploads:    cropUploader{uploader: uploader, logger: logger},
		audit:      auditLogger,
		logger:     logger,
	}
}

// WithProviderName sets the provider label written to audit events.
func (s *RegistrationService) WithProviderName(name string) *RegistrationService {
	s.providerName = name
	return s
}

// Register enrolls a user from exactly three photos. The stored reference
// is the element-wise mean of the three embeddings. Nothing is written
// unless every photo yields a face.
func (s *RegistrationService) Register(ctx context.Context, userID string, photos [][]byte) (*domain.Identity, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, domain.ErrInvalidRequest.WithMessage("user_id is required")
	}
	if len(photos) != domain.RequiredRegistrationPhotos {
		return nil, errPhotoCount
	}
	for _, p := range photos {
		if len(p) == 0 {
			return nil, errPhotoCount
		}
	}

	crops := make([]image.Image, 0, len(photos))
	for i, photo := range photos {
		crop, err := s.extractor.Extract(ctx, photo)
		if err != nil {
			return nil, photoError(i, err)
		}
		crops = append(crops, crop.Image)
	}

	embeddings, err := s.embedder.Embed(ctx, crops)
	if err != nil {
		return nil, fmt.Errorf("user %s: embed faces: %w", userID, err)
	}
	if len(embeddings) != len(crops) {
		return nil, domain.ErrInternal.WithError(
			fmt.Errorf("user %s: got %d embeddings for %d faces", userID, len(embeddings), len(crops)))
	}

	reference, err := similarity.Mean(embeddings)
	if err != nil {
		return nil, err
	}

	urls := make([]string, 0, len(crops))
	for i, crop := range crops {
		publicID := fmt.Sprintf("%s_face%d", userID, i+1)
		url, _ := s.uploads.upload(ctx, UploadBestEffort, crop, publicID, RegistrationFolder)
		if url != "" {
			urls = append(urls, url)
		}
	}

	identity, err := s.identities.SaveRegistration(ctx, userID, reference, urls)
	if err != nil {
		return nil, err
	}

	_ = s.audit.Log(ctx, audit.Event{
		EventType: audit.EventFaceRegistered,
		UserID:    userID,
		Provider:  s.providerName,
		Success:   true,
		Metadata: map[string]string{
			"photos_uploaded": strconv.Itoa(len(urls)),
			"dimension":       strconv.Itoa(len(reference)),
		},
	})

	s.logger.InfoContext(ctx, "face registered",
		slog.String("user_id", userID),
		slog.Int("photos_uploaded", len(urls)),
	)

	return identity, nil
}

func (s *RegistrationService) Status(ctx context.Context, userID string) (*domain.RegistrationStatus, error) {
	identity, err := s.identities.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	urls := identity.PhotoURLs
	if urls == nil {
		urls = []string{}
	}

	return &domain.RegistrationStatus{
		UserID:     identity.UserID,
		Registered: identity.Registered && identity.HasEmbedding(),
		PhotoURLs:  urls,
		UpdatedAt:  identity.UpdatedAt,
	}, nil
}

// photoError names the form field (photo0, photo1, ...) that failed.
func photoError(index int, err error) error {
	field := fmt.Sprintf("photo%d", index)

	switch {
	case errors.Is(err, domain.ErrNoFaceDetected):
		return domain.ErrNoFaceDetected.WithMessage("no face detected in " + field).WithError(err)
	case errors.Is(err, domain.ErrDecodeImage):
		return domain.ErrDecodeImage.WithMessage(field + " is not a valid image").WithError(err)
	default:
		return fmt.Errorf("%s: %w", field, err)
	}
}
