package provider

import (
	"context"
	"image"
)

// FaceDetector localiza rostos numa imagem codificada
type FaceDetector interface {
	// DetectFaces returns every face found in the image, in the detector's
	// own order. Boxes are in pixel coordinates of the image as given.
	// An image without faces yields an empty slice and no error.
	DetectFaces(ctx context.Context, image []byte) ([]DetectedFace, error)
}

// FaceEmbedder turns normalized face crops into embedding vectors.
type FaceEmbedder interface {
	// Embed returns one embedding per crop, in the same order.
	// All embeddings produced by one embedder share a dimensionality.
	Embed(ctx context.Context, faces []image.Image) ([][]float64, error)
}

// DetectedFace represents a detected face in the image
type DetectedFace struct {
	BoundingBox BoundingBox `json:"bounding_box"`
	Confidence  float64     `json:"confidence"`
}

// BoundingBox represents the face area in the image, in pixels
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}
