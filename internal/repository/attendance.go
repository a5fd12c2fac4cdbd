package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
)

const dateLayout = "2006-01-02"

type AttendanceRepository struct {
	pool PgxPool
}

func NewAttendanceRepository(pool PgxPool) *AttendanceRepository {
	return &AttendanceRepository{pool: pool}
}

func (r *AttendanceRepository) Exists(ctx context.Context, userID, date string, typ domain.AttendanceType) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM attendances
			WHERE user_id = $1 AND date = $2 AND type = $3
		)
	`

	day, err := time.Parse(dateLayout, date)
	if err != nil {
		return false, domain.ErrInvalidRequest.WithError(err)
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, query, userID, day, string(typ)).Scan(&exists); err != nil {
		return false, fmt.Errorf("check attendance exists: %w", err)
	}

	return exists, nil
}

// Create inserts the record only if no record exists for the same
// (user_id, date, type); losing a race reports ErrDuplicateSubmission.
func (r *AttendanceRepository) Create(ctx context.Context, rec *domain.AttendanceRecord) error {
	query := `
		INSERT INTO attendances (id, user_id, date, time, type, latitude, longitude, similarity, photo_url, location_name, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW())
		ON CONFLICT (user_id, date, type) DO NOTHING
		RETURNING created_at
	`

	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}

	day, err := time.Parse(dateLayout, rec.Date)
	if err != nil {
		return domain.ErrInvalidRequest.WithError(err)
	}

	var locationName *string
	if rec.LocationName != "" {
		locationName = &rec.LocationName
	}

	err = r.pool.QueryRow(ctx, query,
		rec.ID,
		rec.UserID,
		day,
		rec.Time,
		string(rec.Type),
		rec.Latitude,
		rec.Longitude,
		rec.Similarity,
		rec.PhotoURL,
		locationName,
	).Scan(&rec.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrDuplicateSubmission.WithMessage(rec.Type.DuplicateMessage())
	}
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateSubmission.WithMessage(rec.Type.DuplicateMessage())
		}
		return fmt.Errorf("create attendance: %w", err)
	}

	return nil
}

// ListByUser returns a user's records newest first. An empty date lists all days.
func (r *AttendanceRepository) ListByUser(ctx context.Context, userID, date string) ([]domain.AttendanceRecord, error) {
	query := `
		SELECT id, user_id, date, time, type, latitude, longitude, similarity, photo_url, location_name, created_at
		FROM attendances
		WHERE user_id = $1 AND ($2::date IS NULL OR date = $2::date)
		ORDER BY created_at DESC
	`

	var day *time.Time
	if date != "" {
		d, err := time.Parse(dateLayout, date)
		if err != nil {
			return nil, domain.ErrInvalidRequest.WithError(err)
		}
		day = &d
	}

	rows, err := r.pool.Query(ctx, query, userID, day)
	if err != nil {
		return nil, fmt.Errorf("list attendances: %w", err)
	}
	defer rows.Close()

	records := make([]domain.AttendanceRecord, 0)
	for rows.Next() {
		var rec domain.AttendanceRecord
		var recDay time.Time
		var typ string
		var locationName *string

		if err := rows.Scan(
			&rec.ID,
			&rec.UserID,
			&recDay,
			&rec.Time,
			&typ,
			&rec.Latitude,
			&rec.Longitude,
			&rec.Similarity,
			&rec.PhotoURL,
			&locationName,
			&rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan attendance: %w", err)
		}

		rec.Date = recDay.Format(dateLayout)
		rec.Type = domain.AttendanceType(typ)
		if locationName != nil {
			rec.LocationName = *locationName
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate attendances: %w", err)
	}

	return records, nil
}
