package mock

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
	"github.com/saturnino-fabrica-de-software/presenca/internal/similarity"
)

func gradient(w, h int, shift uint8) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x) + shift, G: uint8(y), B: 50, A: 255})
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestProvider_DetectFaces(t *testing.T) {
	p := New()

	faces, err := p.DetectFaces(context.Background(), encodePNG(t, gradient(200, 100, 0)))

	require.NoError(t, err)
	require.Len(t, faces, 1)
	assert.InDelta(t, 20, faces[0].BoundingBox.X, 1e-9)
	assert.InDelta(t, 10, faces[0].BoundingBox.Y, 1e-9)
	assert.InDelta(t, 160, faces[0].BoundingBox.Width, 1e-9)
	assert.InDelta(t, 80, faces[0].BoundingBox.Height, 1e-9)
}

func TestProvider_DetectFacesInvalidImage(t *testing.T) {
	_, err := New().DetectFaces(context.Background(), []byte("not an image"))

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDecodeImage)
}

func TestProvider_Embed(t *testing.T) {
	p := New()

	embeddings, err := p.Embed(context.Background(), []image.Image{
		gradient(160, 160, 0),
		gradient(160, 160, 0),
		gradient(160, 160, 120),
	})
	require.NoError(t, err)
	require.Len(t, embeddings, 3)

	for _, e := range embeddings {
		assert.Len(t, e, embeddingDimension)
	}

	same, err := similarity.Cosine(embeddings[0], embeddings[1])
	require.NoError(t, err)
	assert.InDelta(t, 1.0, same, 1e-9)

	other, err := similarity.Cosine(embeddings[0], embeddings[2])
	require.NoError(t, err)
	assert.Less(t, other, same)
}

func TestProvider_EmbedFlatImage(t *testing.T) {
	flat := image.NewUniform(color.Gray{Y: 128})
	img := image.NewRGBA(image.Rect(0, 0, 160, 160))
	for y := 0; y < 160; y++ {
		for x := 0; x < 160; x++ {
			img.Set(x, y, flat.C)
		}
	}

	embeddings, err := New().Embed(context.Background(), []image.Image{img})
	require.NoError(t, err)

	_, err = similarity.Cosine(embeddings[0], embeddings[0])
	assert.NoError(t, err)
}
