package deepface

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/saturnino-fabrica-de-software/presenca/internal/provider"
)

// detectorSkip tells DeepFace the input already is a face crop.
const detectorSkip = "skip"

var (
	_ provider.FaceDetector = (*Provider)(nil)
	_ provider.FaceEmbedder = (*Provider)(nil)
)

// Provider detects and embeds faces through a DeepFace API server.
type Provider struct {
	client *Client
}

// NewProvider creates a new DeepFace provider
func NewProvider(config Config) *Provider {
	return &Provider{
		client: NewClient(config),
	}
}

// DetectFaces detects faces in the image
func (p *Provider) DetectFaces(ctx context.Context, image []byte) ([]provider.DetectedFace, error) {
	imageBase64 := base64.StdEncoding.EncodeToString(image)

	resp, err := p.client.Represent(ctx, imageBase64, "")
	if err != nil {
		return nil, fmt.Errorf("detect faces: %w", err)
	}

	faces := make([]provider.DetectedFace, 0, len(resp.Results))
	for _, result := range resp.Results {
		// with enforce_detection=false DeepFace answers "no face" as the
		// whole image at confidence 0
		if result.FaceConfidence <= 0 {
			continue
		}

		faces = append(faces, provider.DetectedFace{
			BoundingBox: provider.BoundingBox{
				X:      float64(result.FacialArea.X),
				Y:      float64(result.FacialArea.Y),
				Width:  float64(result.FacialArea.W),
				Height: float64(result.FacialArea.H),
			},
			Confidence: result.FaceConfidence,
		})
	}

	return faces, nil
}

// Embed returns one embedding per face crop.
func (p *Provider) Embed(ctx context.Context, faces []image.Image) ([][]float64, error) {
	embeddings := make([][]float64, 0, len(faces))

	for i, face := range faces {
		var buf bytes.Buffer
		if err := imaging.Encode(&buf, face, imaging.JPEG, imaging.JPEGQuality(95)); err != nil {
			return nil, fmt.Errorf("encode face %d: %w", i, err)
		}

		resp, err := p.client.Represent(ctx, base64.StdEncoding.EncodeToString(buf.Bytes()), detectorSkip)
		if err != nil {
			return nil, fmt.Errorf("embed face %d: %w", i, err)
		}
		if len(resp.Results) != 1 {
			return nil, fmt.Errorf("embed face %d: %w: got %d", i, ErrEmbeddingCount, len(resp.Results))
		}

		embeddings = append(embeddings, resp.Results[0].Embedding)
	}

	return embeddings, nil
}
