package service

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/presenca/internal/audit"
	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
	"github.com/saturnino-fabrica-de-software/presenca/internal/geofence"
	"github.com/saturnino-fabrica-de-software/presenca/internal/provider"
	"github.com/saturnino-fabrica-de-software/presenca/internal/similarity"
	"github.com/saturnino-fabrica-de-software/presenca/internal/storage"
)

type AttendanceService struct {
	identities   IdentityRepositoryInterface
	locations    LocationRepositoryInterface
	attendances  AttendanceRepositoryInterface
	extractor    FaceExtractor
	embedder     provider.FaceEmbedder
	uploads      cropUploader
	matcher      *similarity.Matcher
	validate     *validator.Validate
	audit        audit.Logger
	logger       *slog.Logger
	providerName string
}

func NewAttendanceService(
	identities IdentityRepositoryInterface,
	locations LocationRepositoryInterface,
	attendances AttendanceRepositoryInterface,
	extractor FaceExtractor,
	embedder provider.FaceEmbedder,
	uploader storage.Uploader,
	auditLogger audit.Logger,
	logger *slog.Logger,
) *AttendanceService {
	return &AttendanceService{
		identities:  identities,
		locations:   locations,
		attendances: attendances,
		extractor:   extractor,
		embedder:    embedder,
		uploads:     cropUploader{uploader: uploader, logger: logger},
		matcher:     similarity.NewMatcher(similarity.DefaultThreshold),
		validate:    newValidator(),
		audit:       auditLogger,
		logger:      logger,
	}
}

func (s *AttendanceService) WithThreshold(threshold float64) *AttendanceService {
	s.matcher = similarity.NewMatcher(threshold)
	return s
}

func (s *AttendanceService) WithProviderName(name string) *AttendanceService {
	s.providerName = name
	return s
}

// submission carries one request through the pipeline. stage is the last
// step that completed.
type submission struct {
	req   domain.AttendanceRequest
	typ   domain.AttendanceType
	lat   float64
	lon   float64
	stage domain.Stage
}

// Submit runs the ordered attendance pipeline. Each check short-circuits
// with its own error kind; only a fully accepted request writes anything.
func (s *AttendanceService) Submit(ctx context.Context, req domain.AttendanceRequest) (*domain.AttendanceResult, error) {
	sub, err := s.parse(req)
	if err != nil {
		return nil, err
	}

	result, err := s.run(ctx, sub)
	if err != nil {
		s.reject(ctx, sub, err)
		return nil, err
	}

	_ = s.audit.Log(ctx, audit.Event{
		EventType:  audit.EventAttendanceAccepted,
		UserID:     sub.req.UserID,
		Attendance: string(sub.typ),
		Stage:      string(sub.stage),
		Provider:   s.providerName,
		Success:    true,
		Metadata: map[string]string{
			"attendance_id": result.Record.ID.String(),
			"similarity":    strconv.FormatFloat(result.Similarity, 'f', 4, 64),
		},
	})

	s.logger.InfoContext(ctx, "attendance accepted",
		slog.String("user_id", sub.req.UserID),
		slog.String("type", string(sub.typ)),
		slog.String("attendance_id", result.Record.ID.String()),
		slog.Float64("similarity", result.Similarity),
	)

	return result, nil
}

func (s *AttendanceService) parse(req domain.AttendanceRequest) (*submission, error) {
	req.UserID = strings.TrimSpace(req.UserID)
	req.Latitude = strings.TrimSpace(req.Latitude)
	req.Longitude = strings.TrimSpace(req.Longitude)

	if err := s.validate.Struct(req); err != nil {
		return nil, domain.ErrInvalidRequest.WithMessage(validationMessage(err)).WithError(err)
	}

	typ, ok := domain.ParseAttendanceType(req.Type)
	if !ok {
		return nil, domain.ErrInvalidRequest.WithMessage("type is invalid")
	}

	lat, err := strconv.ParseFloat(req.Latitude, 64)
	if err != nil {
		return nil, domain.ErrInvalidRequest.WithMessage("latitude is invalid").WithError(err)
	}
	lon, err := strconv.ParseFloat(req.Longitude, 64)
	if err != nil {
		return nil, domain.ErrInvalidRequest.WithMessage("longitude is invalid").WithError(err)
	}

	return &submission{req: req, typ: typ, lat: lat, lon: lon, stage: domain.StageReceived}, nil
}

func (s *AttendanceService) run(ctx context.Context, sub *submission) (*domain.AttendanceResult, error) {
	userID := sub.req.UserID

	location, err := s.locations.GetReference(ctx)
	if err != nil {
		return nil, err
	}

	identity, err := s.identities.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !geofence.WithinBounds(sub.lat, sub.lon, location, identity.Department) {
		dist := geofence.Distance(sub.lat, sub.lon, location.Latitude, location.Longitude)
		return nil, domain.ErrLocationRejected.WithError(
			fmt.Errorf("%.1fm from %s, radius %.1fm", dist, location.Name, location.RadiusMeters))
	}
	sub.stage = domain.StageLocationChecked

	crop, err := s.extractor.Extract(ctx, sub.req.Photo)
	if err != nil {
		return nil, err
	}
	sub.stage = domain.StageFaceExtracted

	if !identity.HasEmbedding() {
		return nil, domain.ErrNotRegistered
	}
	sub.stage = domain.StageIdentityLoaded

	embeddings, err := s.embedder.Embed(ctx, []image.Image{crop.Image})
	if err != nil {
		return nil, fmt.Errorf("user %s: embed face: %w", userID, err)
	}
	if len(embeddings) != 1 {
		return nil, domain.ErrInternal.WithError(fmt.Errorf("user %s: got %d embeddings for 1 face", userID, len(embeddings)))
	}

	score, ok, err := s.matcher.Match(identity.Embedding, embeddings[0])
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrFaceMismatch.WithError(
			fmt.Errorf("similarity %.4f below %.2f", score, s.matcher.Threshold()))
	}
	sub.stage = domain.StageMatched

	exists, err := s.attendances.Exists(ctx, userID, sub.req.Date, sub.typ)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrDuplicateSubmission.WithMessage(sub.typ.DuplicateMessage())
	}
	sub.stage = domain.StageDuplicateChecked

	// the record id is part of the key, so a request that later loses the
	// insert race never overwrites the accepted photo
	id := uuid.New()
	publicID := attendancePublicID(userID, sub.typ, sub.req.Date, id)
	url, err := s.uploads.upload(ctx, UploadRequired, crop.Image, publicID, AttendanceFolder)
	if err != nil {
		return nil, err
	}

	record := &domain.AttendanceRecord{
		ID:           id,
		UserID:       userID,
		Date:         sub.req.Date,
		Time:         sub.req.Time,
		Type:         sub.typ,
		Latitude:     sub.lat,
		Longitude:    sub.lon,
		Similarity:   score,
		PhotoURL:     url,
		LocationName: strings.TrimSpace(sub.req.LocationName),
	}
	if err := s.attendances.Create(ctx, record); err != nil {
		return nil, err
	}
	sub.stage = domain.StageCommitted

	return &domain.AttendanceResult{
		Record:     record,
		Similarity: score,
		Message:    sub.typ.SuccessMessage(),
	}, nil
}

func attendancePublicID(userID string, typ domain.AttendanceType, date string, id uuid.UUID) string {
	return fmt.Sprintf("%s_%s_%s_%s", userID, typ, date, id)
}

func (s *AttendanceService) reject(ctx context.Context, sub *submission, err error) {
	code := domain.ErrInternal.Code
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		code = appErr.Code
	}

	_ = s.audit.Log(ctx, audit.Event{
		EventType:  audit.EventAttendanceRejected,
		UserID:     sub.req.UserID,
		Attendance: string(sub.typ),
		Stage:      string(sub.stage),
		Provider:   s.providerName,
		Success:    false,
		Error:      code,
	})

	s.logger.InfoContext(ctx, "attendance rejected",
		slog.String("user_id", sub.req.UserID),
		slog.String("type", string(sub.typ)),
		slog.String("stage", string(sub.stage)),
		slog.String("code", code),
		slog.String("error", err.Error()),
	)
}

// History lists a user's attendance records, newest first.
func (s *AttendanceService) History(ctx context.Context, userID, date string) ([]domain.AttendanceRecord, error) {
	if _, err := s.identities.GetByUserID(ctx, userID); err != nil {
		return nil, err
	}
	return s.attendances.ListByUser(ctx, userID, strings.TrimSpace(date))
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// validationMessage reports the first failing field by its form name.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return domain.ErrInvalidRequest.Message
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "required", "min":
		return fe.Field() + " is required"
	case "oneof":
		return fe.Field() + " must be one of CHECK_IN, CHECK_OUT"
	case "datetime":
		return fe.Field() + " must be formatted as YYYY-MM-DD"
	case "max":
		return fe.Field() + " is too long"
	default:
		return fe.Field() + " is invalid"
	}
}
