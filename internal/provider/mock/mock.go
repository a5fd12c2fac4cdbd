package mock

import (
	"bytes"
	"context"
	"image"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
	"github.com/saturnino-fabrica-de-software/presenca/internal/provider"
	"github.com/saturnino-fabrica-de-software/presenca/internal/similarity"
)

const (
	embeddingDimension = 512
	gridSize           = 16
)

// Provider implementa provider.FaceDetector e provider.FaceEmbedder para
// testes e desenvolvimento local, sem nenhum serviço externo
type Provider struct{}

var (
	_ provider.FaceDetector = (*Provider)(nil)
	_ provider.FaceEmbedder = (*Provider)(nil)
)

// New cria uma nova instância do MockProvider
func New() *Provider {
	return &Provider{}
}

// DetectFaces reports one face covering the central 80% of the image.
func (p *Provider) DetectFaces(ctx context.Context, img []byte) ([]provider.DetectedFace, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(img))
	if err != nil {
		return nil, domain.ErrDecodeImage.WithError(err)
	}

	w, h := float64(cfg.Width), float64(cfg.Height)

	return []provider.DetectedFace{
		{
			BoundingBox: provider.BoundingBox{
				X:      w * 0.1,
				Y:      h * 0.1,
				Width:  w * 0.8,
				Height: h * 0.8,
			},
			Confidence: 0.99,
		},
	}, nil
}

// Embed gera embedding determinístico a partir dos pixels do rosto:
// média de R e G numa grade 16x16, centrada e normalizada
func (p *Provider) Embed(ctx context.Context, faces []image.Image) ([][]float64, error) {
	embeddings := make([][]float64, 0, len(faces))
	for _, face := range faces {
		embeddings = append(embeddings, generateEmbedding(face))
	}
	return embeddings, nil
}

func generateEmbedding(face image.Image) []float64 {
	small := imaging.Resize(face, gridSize, gridSize, imaging.Box)

	embedding := make([]float64, 0, embeddingDimension)
	var sum float64
	for i := 0; i+3 < len(small.Pix) && len(embedding) < embeddingDimension; i += 4 {
		r := float64(small.Pix[i]) / 255
		g := float64(small.Pix[i+1]) / 255
		embedding = append(embedding, r, g)
		sum += r + g
	}

	mean := sum / float64(len(embedding))
	for i := range embedding {
		embedding[i] -= mean
	}
	// a flat image centers to zero; keep it usable
	embedding[0] += 1e-6

	return similarity.Normalize(embedding)
}
