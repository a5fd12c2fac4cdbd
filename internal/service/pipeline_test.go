package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
	"github.com/saturnino-fabrica-de-software/presenca/internal/face"
	mockprovider "github.com/saturnino-fabrica-de-software/presenca/internal/provider/mock"
)

// in-memory stores with the same conflict rules as the Postgres ones

type memIdentities struct {
	mu    sync.Mutex
	users map[string]*domain.Identity
	saves int
}

func (s *memIdentities) GetByUserID(_ context.Context, userID string) (*domain.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *memIdentities) SaveRegistration(_ context.Context, userID string, embedding []float64, urls []string) (*domain.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	u, ok := s.users[userID]
	if !ok {
		u = &domain.Identity{UserID: userID, CreatedAt: time.Now()}
		s.users[userID] = u
	}
	u.Embedding = embedding
	u.Registered = true
	u.PhotoURLs = urls
	u.UpdatedAt = time.Now()
	cp := *u
	return &cp, nil
}

type memLocations struct{}

func (memLocations) GetReference(context.Context) (*domain.ReferenceLocation, error) {
	return headOffice(), nil
}

type memAttendances struct {
	mu      sync.Mutex
	records []domain.AttendanceRecord
}

func (s *memAttendances) Exists(_ context.Context, userID, date string, typ domain.AttendanceType) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.records {
		if r.UserID == userID && r.Date == date && r.Type == typ {
			return true, nil
		}
	}
	return false, nil
}

func (s *memAttendances) Create(ctx context.Context, rec *domain.AttendanceRecord) error {
	if ok, _ := s.Exists(ctx, rec.UserID, rec.Date, rec.Type); ok {
		return domain.ErrDuplicateSubmission.WithMessage(rec.Type.DuplicateMessage())
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec.CreatedAt = time.Now()
	s.records = append(s.records, *rec)
	return nil
}

func (s *memAttendances) ListByUser(_ context.Context, userID, _ string) ([]domain.AttendanceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.AttendanceRecord
	for i := len(s.records) - 1; i >= 0; i-- {
		if s.records[i].UserID == userID {
			out = append(out, s.records[i])
		}
	}
	return out, nil
}

type memUploader struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (u *memUploader) Upload(_ context.Context, data []byte, publicID, folder string) (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	key := folder + "/" + publicID + ".jpg"
	u.objects[key] = data
	return "https://cdn.test/" + key, nil
}

// gradient draws red along x and green along y; mirrored flips the red axis.
func gradient(t *testing.T, mirrored bool) []byte {
	t.Helper()

	const size = 200
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			r := uint8(x * 255 / (size - 1))
			if mirrored {
				r = 255 - r
			}
			img.Set(x, y, color.NRGBA{R: r, G: uint8(y * 255 / (size - 1)), B: 60, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestPipeline_RegisterThenCheckIn(t *testing.T) {
	ctx := context.Background()

	identities := &memIdentities{users: map[string]*domain.Identity{
		"u1": {UserID: "u1", Name: "Ana", Department: "engineering"},
	}}
	attendances := &memAttendances{}
	uploader := &memUploader{objects: map[string][]byte{}}

	provider := mockprovider.New()
	extractor := face.NewExtractor(provider, face.SelectLargest)
	logger := discardLogger()
	rec := &recordingAudit{}

	registration := NewRegistrationService(identities, extractor, provider, uploader, rec, logger)
	attendance := NewAttendanceService(identities, memLocations{}, attendances, extractor, provider, uploader, rec, logger)

	photo := gradient(t, false)

	identity, err := registration.Register(ctx, "u1", [][]byte{photo, photo, photo})
	require.NoError(t, err)
	assert.True(t, identity.Registered)
	assert.Equal(t, "Ana", identity.Name)
	assert.Len(t, identity.PhotoURLs, 3)
	for i := 1; i <= 3; i++ {
		assert.Contains(t, uploader.objects, fmt.Sprintf("face_registration/u1_face%d.jpg", i))
	}

	req := validRequest()
	req.Photo = photo

	result, err := attendance.Submit(ctx, req)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, result.Similarity, 0.7)
	assert.Equal(t, "Check-in successful", result.Message)
	assert.Contains(t, uploader.objects, "absen/u1_CHECK_IN_2024-05-01_"+result.Record.ID.String()+".jpg")

	history, err := attendance.History(ctx, "u1", "")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, result.Record.ID, history[0].ID)

	_, err = attendance.Submit(ctx, req)
	assert.ErrorIs(t, err, domain.ErrDuplicateSubmission)

	req.Type = "CHECK_OUT"
	req.Time = "17:00:00"
	out, err := attendance.Submit(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "Check-out successful", out.Message)
}

func TestPipeline_ImpostorIsRejected(t *testing.T) {
	ctx := context.Background()

	identities := &memIdentities{users: map[string]*domain.Identity{
		"u1": {UserID: "u1", Department: "engineering"},
	}}
	attendances := &memAttendances{}
	uploader := &memUploader{objects: map[string][]byte{}}

	provider := mockprovider.New()
	extractor := face.NewExtractor(provider, face.SelectLargest)
	rec := &recordingAudit{}

	registration := NewRegistrationService(identities, extractor, provider, uploader, rec, discardLogger())
	attendance := NewAttendanceService(identities, memLocations{}, attendances, extractor, provider, uploader, rec, discardLogger())

	owner := gradient(t, false)
	_, err := registration.Register(ctx, "u1", [][]byte{owner, owner, owner})
	require.NoError(t, err)

	req := validRequest()
	req.Photo = gradient(t, true)

	_, err = attendance.Submit(ctx, req)
	assert.ErrorIs(t, err, domain.ErrFaceMismatch)
	assert.Empty(t, attendances.records)
	for key := range uploader.objects {
		assert.False(t, strings.HasPrefix(key, "absen/"), "unexpected upload %s", key)
	}
}

func TestPipeline_FailedRegistrationWritesNothing(t *testing.T) {
	identities := &memIdentities{users: map[string]*domain.Identity{}}
	uploader := &memUploader{objects: map[string][]byte{}}
	provider := mockprovider.New()

	registration := NewRegistrationService(identities, face.NewExtractor(provider, face.SelectLargest),
		provider, uploader, &recordingAudit{}, discardLogger())

	photo := gradient(t, false)
	_, err := registration.Register(context.Background(), "u1", [][]byte{photo, []byte("not an image"), photo})

	require.ErrorIs(t, err, domain.ErrDecodeImage)
	assert.Zero(t, identities.saves)
	assert.Empty(t, uploader.objects)
}
