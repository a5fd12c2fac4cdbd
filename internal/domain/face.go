package domain

import (
	"image"
	"time"
)

// FaceSize is the edge length, in pixels, of every normalized face crop.
const FaceSize = 160

// RequiredRegistrationPhotos is the number of photos a registration must carry.
const RequiredRegistrationPhotos = 3

// BoundingBox is a face region in pixel coordinates of the decoded image.
type BoundingBox struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (b BoundingBox) Area() int {
	return b.Width * b.Height
}

// Rect converts the box to an image.Rectangle, clamping negative origins to zero.
func (b BoundingBox) Rect() image.Rectangle {
	x, y := max(b.X, 0), max(b.Y, 0)
	return image.Rect(x, y, x+b.Width, y+b.Height)
}

// FaceCrop is a normalized FaceSize x FaceSize RGB crop. Never persisted.
type FaceCrop struct {
	Image image.Image
	Box   BoundingBox
}

// Identity representa um usuário com (ou sem) rosto cadastrado
type Identity struct {
	UserID     string    `json:"user_id"`
	Name       string    `json:"name"`
	Department string    `json:"department"`
	Embedding  []float64 `json:"-"`
	Registered bool      `json:"face_registered"`
	PhotoURLs  []string  `json:"photo_url"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (i *Identity) HasEmbedding() bool {
	return len(i.Embedding) > 0
}

// RegistrationStatus is the public view of an identity's enrollment.
type RegistrationStatus struct {
	UserID     string    `json:"user_id"`
	Registered bool      `json:"registered"`
	PhotoURLs  []string  `json:"photo_url"`
	UpdatedAt  time.Time `json:"updated_at"`
}
