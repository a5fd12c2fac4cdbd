package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"

	"github.com/saturnino-fabrica-de-software/presenca/internal/domain"
)

type IdentityRepository struct {
	pool PgxPool
}

func NewIdentityRepository(pool PgxPool) *IdentityRepository {
	return &IdentityRepository{pool: pool}
}

func (r *IdentityRepository) GetByUserID(ctx context.Context, userID string) (*domain.Identity, error) {
	query := `
		SELECT user_id, name, department, face_embedding, face_registered, photo_urls, created_at, updated_at
		FROM users
		WHERE user_id = $1
	`

	var identity domain.Identity
	var embedding *pgvector.Vector

	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&identity.UserID,
		&identity.Name,
		&identity.Department,
		&embedding,
		&identity.Registered,
		&identity.PhotoURLs,
		&identity.CreatedAt,
		&identity.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get identity by user_id: %w", err)
	}

	identity.Embedding = fromVector(embedding)

	return &identity, nil
}

// SaveRegistration upserts the face fields of an identity. Name and
// department of an existing row are left untouched; an unknown user_id
// creates the row.
func (r *IdentityRepository) SaveRegistration(ctx context.Context, userID string, embedding []float64, photoURLs []string) (*domain.Identity, error) {
	query := `
		INSERT INTO users (user_id, face_embedding, face_registered, photo_urls, created_at, updated_at)
		VALUES ($1, $2, TRUE, $3, NOW(), NOW())
		ON CONFLICT (user_id) DO UPDATE SET
			face_embedding = EXCLUDED.face_embedding,
			face_registered = TRUE,
			photo_urls = EXCLUDED.photo_urls,
			updated_at = NOW()
		RETURNING user_id, name, department, face_registered, photo_urls, created_at, updated_at
	`

	if photoURLs == nil {
		photoURLs = []string{}
	}

	identity := domain.Identity{Embedding: embedding}
	err := r.pool.QueryRow(ctx, query, userID, toVector(embedding), photoURLs).Scan(
		&identity.UserID,
		&identity.Name,
		&identity.Department,
		&identity.Registered,
		&identity.PhotoURLs,
		&identity.CreatedAt,
		&identity.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("save registration: %w", err)
	}

	return &identity, nil
}
