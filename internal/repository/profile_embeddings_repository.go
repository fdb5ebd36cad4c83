package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/mentormatch/backend/internal/merrors"
	"github.com/mentormatch/backend/internal/models"
)

// ErrProfileEmbeddingNotFound is returned when no embedding row exists for the
// given profile and model.
var ErrProfileEmbeddingNotFound = errors.New("embedding not found for profile and model")

// ProfileEmbeddingsRepository handles data access for the profile_embeddings
// table: one vector per (profile_id, role, model). The text hash lets callers
// detect a stale vector after a profile edit without re-embedding first.
type ProfileEmbeddingsRepository struct {
	db *pgxpool.Pool
}

// NewProfileEmbeddingsRepository creates a new profile embeddings repository.
func NewProfileEmbeddingsRepository(db *pgxpool.Pool) *ProfileEmbeddingsRepository {
	return &ProfileEmbeddingsRepository{db: db}
}

// Upsert inserts or updates the embedding for (profile_id, role, model).
// Uses halfvec storage (2 bytes per dimension); pgvector-go converts float32
// to float16 when encoding.
func (r *ProfileEmbeddingsRepository) Upsert(
	ctx context.Context, profileID uuid.UUID, role models.Role, model, textHash string, embedding []float32,
) error {
	vec := pgvector.NewHalfVector(embedding)
	now := time.Now()

	_, err := r.db.Exec(ctx, `
		INSERT INTO profile_embeddings (id, profile_id, role, model, text_hash, embedding, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		ON CONFLICT (profile_id, role, model)
		DO UPDATE SET embedding = EXCLUDED.embedding, text_hash = EXCLUDED.text_hash, updated_at = $7`,
		uuid.Must(uuid.NewV7()), profileID, string(role), model, textHash, vec, now,
	)
	if err != nil {
		return fmt.Errorf("profile embedding upsert: %w", err)
	}

	return nil
}

// Get returns the stored embedding row for (profile_id, role, model).
// Returns ErrProfileEmbeddingNotFound when the profile has not been embedded yet.
func (r *ProfileEmbeddingsRepository) Get(
	ctx context.Context, profileID uuid.UUID, role models.Role, model string,
) (*models.ProfileEmbedding, error) {
	var (
		row models.ProfileEmbedding
		vec pgvector.HalfVector
	)

	err := r.db.QueryRow(ctx, `
		SELECT id, profile_id, role, model, text_hash, embedding, created_at, updated_at
		FROM profile_embeddings WHERE profile_id = $1 AND role = $2 AND model = $3`,
		profileID, string(role), model,
	).Scan(&row.ID, &row.ProfileID, &row.Role, &row.Model, &row.TextHash, &vec, &row.CreatedAt, &row.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileEmbeddingNotFound
		}

		return nil, fmt.Errorf("get profile embedding: %w", err)
	}

	row.Embedding = vec.Slice()

	return &row, nil
}

// ListProfilesMissingEmbedding returns ids of profiles in the given role that
// have no stored embedding row for model, up to limit. Used by the backfill
// CLI to enqueue refresh jobs for profiles ranking has never seen.
func (r *ProfileEmbeddingsRepository) ListProfilesMissingEmbedding(
	ctx context.Context, role models.Role, model string, limit int,
) ([]uuid.UUID, error) {
	var table string

	switch role {
	case models.RoleStudent:
		table = "student_details"
	case models.RoleMentor:
		table = "mentor_details"
	default:
		return nil, merrors.NewInvalidArgumentError("role", "role must be student or mentor")
	}

	rows, err := r.db.Query(ctx, `
		SELECT p.id FROM `+table+` p
		LEFT JOIN profile_embeddings e ON e.profile_id = p.id AND e.role = $1 AND e.model = $2
		WHERE e.id IS NULL ORDER BY p.id LIMIT $3`,
		string(role), model, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list profiles missing embedding: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID

	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan profile id: %w", err)
		}

		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating profile ids: %w", err)
	}

	return ids, nil
}

// Delete removes the embedding row for (profile_id, role, model).
func (r *ProfileEmbeddingsRepository) Delete(
	ctx context.Context, profileID uuid.UUID, role models.Role, model string,
) error {
	_, err := r.db.Exec(ctx,
		`DELETE FROM profile_embeddings WHERE profile_id = $1 AND role = $2 AND model = $3`,
		profileID, string(role), model,
	)
	if err != nil {
		return fmt.Errorf("profile embedding delete: %w", err)
	}

	return nil
}
