// Package face turns uploaded photos into normalized face crops.
package face

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
	"github.com/saturnino-fabrica-de-software/presenca/internal/provider"
)

// Selection picks one face when the detector returns several.
type Selection string

const (
	// SelectLargest keeps the face with the largest box; ties go to the earliest.
	SelectLargest Selection = "largest"
	// SelectFirst keeps whatever the detector returned first.
	SelectFirst Selection = "first"
)

// ParseSelection is case-insensitive and defaults to SelectLargest for
// unknown values.
func ParseSelection(s string) Selection {
	if Selection(strings.ToLower(strings.TrimSpace(s))) == SelectFirst {
		return SelectFirst
	}
	return SelectLargest
}

// Extractor decodes a photo, finds one face and returns it as a
// domain.FaceSize square RGB crop. It has no side effects.
type Extractor struct {
	detector  provider.FaceDetector
	selection Selection
	size      int
}

func NewExtractor(detector provider.FaceDetector, selection Selection) *Extractor {
	return &Extractor{
		detector:  detector,
		selection: selection,
		size:      domain.FaceSize,
	}
}

func (e *Extractor) Extract(ctx context.Context, data []byte) (*domain.FaceCrop, error) {
	img, err := decodeRGB(data)
	if err != nil {
		return nil, err
	}

	// detectors see the oriented, alpha-free image so their boxes line up
	// with the pixels we crop from
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(95)); err != nil {
		return nil, domain.ErrDecodeImage.WithError(fmt.Errorf("re-encode: %w", err))
	}

	faces, err := e.detector.DetectFaces(ctx, buf.Bytes())
	if err != nil {
		var appErr *domain.AppError
		if errors.As(err, &appErr) {
			return nil, err
		}
		return nil, domain.ErrServiceUnavailable.WithError(fmt.Errorf("detect faces: %w", err))
	}
	if len(faces) == 0 {
		return nil, domain.ErrNoFaceDetected
	}

	box := toPixelBox(e.pick(faces).BoundingBox)
	rect := box.Rect().Intersect(img.Bounds())
	if rect.Empty() {
		return nil, domain.ErrNoFaceDetected.WithError(fmt.Errorf("face box %v outside image %v", box, img.Bounds()))
	}

	crop := imaging.Crop(img, rect)

	out := image.NewRGBA(image.Rect(0, 0, e.size, e.size))
	draw.CatmullRom.Scale(out, out.Bounds(), crop, crop.Bounds(), draw.Src, nil)

	return &domain.FaceCrop{
		Image: out,
		Box: domain.BoundingBox{
			X:      rect.Min.X,
			Y:      rect.Min.Y,
			Width:  rect.Dx(),
			Height: rect.Dy(),
		},
	}, nil
}

func (e *Extractor) pick(faces []provider.DetectedFace) provider.DetectedFace {
	if e.selection == SelectFirst {
		return faces[0]
	}

	best := faces[0]
	for _, f := range faces[1:] {
		if f.BoundingBox.Width*f.BoundingBox.Height > best.BoundingBox.Width*best.BoundingBox.Height {
			best = f
		}
	}
	return best
}

// decodeRGB applies EXIF orientation and drops the alpha channel without
// compositing, keeping the stored colour values.
func decodeRGB(data []byte) (*image.NRGBA, error) {
	if len(data) == 0 {
		return nil, domain.ErrDecodeImage.WithError(errors.New("empty image"))
	}

	src, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, domain.ErrDecodeImage.WithError(err)
	}

	img := imaging.Clone(src)
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xff
	}
	return img, nil
}

func toPixelBox(b provider.BoundingBox) domain.BoundingBox {
	return domain.BoundingBox{
		X:      int(math.Round(b.X)),
		Y:      int(math.Round(b.Y)),
		Width:  int(math.Round(b.Width)),
		Height: int(math.Round(b.Height)),
	}
}
