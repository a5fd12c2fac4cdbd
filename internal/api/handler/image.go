package handler

import (
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
)

// DefaultMaxImageSize applies when a handler is built with a non-positive limit.
const DefaultMaxImageSize = 10 * 1024 * 1024 // 10MB

// multipartForm parses the request body, rejecting anything that is not multipart.
func multipartForm(c *fiber.Ctx) (*multipart.Form, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, domain.ErrInvalidRequest.
			WithMessage("request must be multipart/form-data").
			WithError(err)
	}
	return form, nil
}

func formValue(form *multipart.Form, field string) string {
	if vals := form.Value[field]; len(vals) > 0 {
		return strings.TrimSpace(vals[0])
	}
	return ""
}

// readImage returns the bytes of the named file field, or nil when the field is absent.
func readImage(form *multipart.Form, field string, maxSize int64) ([]byte, error) {
	files := form.File[field]
	if len(files) == 0 {
		return nil, nil
	}
	file := files[0]

	if file.Size > maxSize {
		return nil, domain.ErrInvalidRequest.WithMessage(
			fmt.Sprintf("%s exceeds the maximum size of %d bytes", field, maxSize))
	}

	// devices often send octet-stream; the decoder has the final word
	if ct := file.Header.Get("Content-Type"); !acceptableContentType(ct) {
		return nil, domain.ErrDecodeImage.WithMessage(fmt.Sprintf("%s is not a valid image", field))
	}

	f, err := file.Open()
	if err != nil {
		return nil, domain.ErrDecodeImage.WithError(err)
	}
	defer func() {
		_ = f.Close()
	}()

	data, err := io.ReadAll(io.LimitReader(f, maxSize+1))
	if err != nil {
		return nil, domain.ErrDecodeImage.WithError(err)
	}

	return data, nil
}

func acceptableContentType(ct string) bool {
	ct = strings.ToLower(strings.TrimSpace(ct))
	return ct == "" ||
		ct == "application/octet-stream" ||
		strings.HasPrefix(ct, "image/")
}
