package service

import (
	"context"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
)

type IdentityRepositoryInterface interface {
	GetByUserID(ctx context.Context, userID string) (*domain.Identity, error)
	SaveRegistration(ctx context.Context, userID string, embedding []float64, photoURLs []string) (*domain.Identity, error)
}

type LocationRepositoryInterface interface {
	GetReference(ctx context.Context) (*domain.ReferenceLocation, error)
}

type AttendanceRepositoryInterface interface {
	Exists(ctx context.Context, userID, date string, typ domain.AttendanceType) (bool, error)
	Create(ctx context.Context, rec *domain.AttendanceRecord) error
	ListByUser(ctx context.Context, userID, date string) ([]domain.AttendanceRecord, error)
}

// FaceExtractor turns raw photo bytes into a normalized face crop.
type FaceExtractor interface {
	Extract(ctx context.Context, data []byte) (*domain.FaceCrop, error)
}
