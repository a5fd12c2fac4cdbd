package handler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
)

// RegistrationService is the enrollment side of the service layer.
type RegistrationService interface {
	Register(ctx context.Context, userID string, photos [][]byte) (*domain.Identity, error)
	Status(ctx context.Context, userID string) (*domain.RegistrationStatus, error)
}

type RegistrationHandler struct {
	service      RegistrationService
	maxImageSize int64
	logger       *slog.Logger
}

func NewRegistrationHandler(service RegistrationService, maxImageSize int64, logger *slog.Logger) *RegistrationHandler {
	if maxImageSize <= 0 {
		maxImageSize = DefaultMaxImageSize
	}
	return &RegistrationHandler{
		service:      service,
		maxImageSize: maxImageSize,
		logger:       logger,
	}
}

type RegisterResponse struct {
	Success  bool     `json:"success"`
	Message  string   `json:"message"`
	PhotoURL []string `json:"photo_url"`
}

type RegistrationStatusResponse struct {
	Success    bool      `json:"success"`
	Registered bool      `json:"registered"`
	PhotoURL   []string  `json:"photo_url"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Register POST /register-face
func (h *RegistrationHandler) Register(c *fiber.Ctx) error {
	form, err := multipartForm(c)
	if err != nil {
		return err
	}

	// missing files are skipped; the service enforces the count
	photos := make([][]byte, 0, domain.RequiredRegistrationPhotos)
	for i := 0; i < domain.RequiredRegistrationPhotos; i++ {
		data, err := readImage(form, fmt.Sprintf("photo%d", i), h.maxImageSize)
		if err != nil {
			return err
		}
		if data != nil {
			photos = append(photos, data)
		}
	}

	identity, err := h.service.Register(c.UserContext(), formValue(form, "user_id"), photos)
	if err != nil {
		return err
	}

	urls := identity.PhotoURLs
	if urls == nil {
		urls = []string{}
	}

	return c.JSON(RegisterResponse{
		Success:  true,
		Message:  "Face registration successful",
		PhotoURL: urls,
	})
}

// Status GET /register-face/:user_id
func (h *RegistrationHandler) Status(c *fiber.Ctx) error {
	status, err := h.service.Status(c.UserContext(), c.Params("user_id"))
	if err != nil {
		return err
	}

	return c.JSON(RegistrationStatusResponse{
		Success:    true,
		Registered: status.Registered,
		PhotoURL:   status.PhotoURLs,
		UpdatedAt:  status.UpdatedAt,
	})
}
