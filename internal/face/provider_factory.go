package face

import (
	"context"
	"fmt"

	"github.com/saturnino-fabrica-de-software/presenca/internal/config"
	"github.com/saturnino-fabrica-de-software/presenca/internal/provider"
	"github.com/saturnino-fabrica-de-software/presenca/internal/provider/deepface"
	"github.com/saturnino-fabrica-de-software/presenca/internal/provider/mock"
	"github.com/saturnino-fabrica-de-software/presenca/internal/provider/rekognition"
)

// ProviderType defines supported face provider types
type ProviderType string

const (
	// ProviderTypeDeepFace talks to a DeepFace API server (detector and embedder)
	ProviderTypeDeepFace ProviderType = "deepface"
	// ProviderTypeRekognition is AWS Rekognition (detector only)
	ProviderTypeRekognition ProviderType = "rekognition"
	// ProviderTypeMock is the offline provider for local development
	ProviderTypeMock ProviderType = "mock"
)

// NewDetector creates the FaceDetector selected by DETECTOR_PROVIDER.
//
// Environment variables:
//   - DETECTOR_PROVIDER: "deepface", "rekognition" or "mock" (default: "deepface")
//   - DEEPFACE_URL, DEEPFACE_MODEL, DEEPFACE_DETECTOR: DeepFace API settings
//   - AWS_REGION: AWS region for Rekognition (credentials via the AWS SDK chain)
func NewDetector(ctx context.Context, cfg *config.Config) (provider.FaceDetector, error) {
	switch ProviderType(cfg.DetectorProvider) {
	case ProviderTypeRekognition:
		rekogConfig := rekognition.DefaultConfig()
		rekogConfig.Region = cfg.AWSRegion

		prov, err := rekognition.NewProvider(ctx, rekogConfig)
		if err != nil {
			return nil, fmt.Errorf("create rekognition detector: %w", err)
		}
		return prov, nil

	case ProviderTypeMock:
		return mock.New(), nil

	case ProviderTypeDeepFace, "":
		return createDeepFaceProvider(cfg), nil

	default:
		return nil, fmt.Errorf("unknown detector provider: %s (supported: %s, %s, %s)",
			cfg.DetectorProvider, ProviderTypeDeepFace, ProviderTypeRekognition, ProviderTypeMock)
	}
}

// NewEmbedder creates the FaceEmbedder selected by EMBEDDER_PROVIDER.
func NewEmbedder(cfg *config.Config) (provider.FaceEmbedder, error) {
	switch ProviderType(cfg.EmbedderProvider) {
	case ProviderTypeMock:
		return mock.New(), nil

	case ProviderTypeDeepFace, "":
		return createDeepFaceProvider(cfg), nil

	default:
		return nil, fmt.Errorf("unknown embedder provider: %s (supported: %s, %s)",
			cfg.EmbedderProvider, ProviderTypeDeepFace, ProviderTypeMock)
	}
}

// createDeepFaceProvider creates a DeepFace provider instance
func createDeepFaceProvider(cfg *config.Config) *deepface.Provider {
	deepfaceConfig := deepface.DefaultConfig()

	if cfg.DeepFaceURL != "" {
		deepfaceConfig.BaseURL = cfg.DeepFaceURL
	}
	if cfg.DeepFaceModel != "" {
		deepfaceConfig.Model = cfg.DeepFaceModel
	}
	if cfg.DeepFaceDetector != "" {
		deepfaceConfig.Detector = cfg.DeepFaceDetector
	}

	return deepface.NewProvider(deepfaceConfig)
}
