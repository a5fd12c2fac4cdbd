package handler

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
)

// AttendanceService is the check-in/check-out side of the service layer.
type AttendanceService interface {
	Submit(ctx context.Context, req domain.AttendanceRequest) (*domain.AttendanceResult, error)
	History(ctx context.Context, userID, date string) ([]domain.AttendanceRecord, error)
}

type AttendanceHandler struct {
	service      AttendanceService
	maxImageSize int64
	logger       *slog.Logger
}

func NewAttendanceHandler(service AttendanceService, maxImageSize int64, logger *slog.Logger) *AttendanceHandler {
	if maxImageSize <= 0 {
		maxImageSize = DefaultMaxImageSize
	}
	return &AttendanceHandler{
		service:      service,
		maxImageSize: maxImageSize,
		logger:       logger,
	}
}

type AttendanceResponse struct {
	Success    bool    `json:"success"`
	Message    string  `json:"message"`
	AbsenID    string  `json:"absen_id"`
	Similarity float64 `json:"similarity"`
}

type AttendanceHistoryResponse struct {
	Success bool                      `json:"success"`
	Records []domain.AttendanceRecord `json:"records"`
}

// Submit POST /absen
func (h *AttendanceHandler) Submit(c *fiber.Ctx) error {
	form, err := multipartForm(c)
	if err != nil {
		return err
	}

	photo, err := readImage(form, "photo", h.maxImageSize)
	if err != nil {
		return err
	}

	req := domain.AttendanceRequest{
		UserID:       formValue(form, "user_id"),
		Type:         formValue(form, "type"),
		Date:         formValue(form, "date"),
		Time:         formValue(form, "time"),
		Latitude:     formValue(form, "latitude"),
		Longitude:    formValue(form, "longitude"),
		LocationName: formValue(form, "location_name"),
		Photo:        photo,
	}

	result, err := h.service.Submit(c.UserContext(), req)
	if err != nil {
		return err
	}

	return c.JSON(AttendanceResponse{
		Success:    true,
		Message:    result.Message,
		AbsenID:    result.Record.ID.String(),
		Similarity: result.Similarity,
	})
}

// History GET /absen/:user_id?date=YYYY-MM-DD
func (h *AttendanceHandler) History(c *fiber.Ctx) error {
	records, err := h.service.History(c.UserContext(), c.Params("user_id"), c.Query("date"))
	if err != nil {
		return err
	}

	if records == nil {
		records = []domain.AttendanceRecord{}
	}

	return c.JSON(AttendanceHistoryResponse{
		Success: true,
		Records: records,
	})
}
