package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mentormatch/backend/internal/merrors"
	"github.com/mentormatch/backend/internal/models"
)

// AssignmentsRepository handles data access for the assigned_mentors table.
// The table carries a unique constraint on (student_id, mentor_id).
type AssignmentsRepository struct {
	db *pgxpool.Pool
}

// NewAssignmentsRepository creates a new assignments repository.
func NewAssignmentsRepository(db *pgxpool.Pool) *AssignmentsRepository {
	return &AssignmentsRepository{db: db}
}

const assignmentColumns = `id, student_id, mentor_id, score, created_at, updated_at`

// ListByStudent returns all assignments for the student, ordered by mentor id.
func (r *AssignmentsRepository) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]models.AssignedMentorEntry, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+assignmentColumns+` FROM assigned_mentors WHERE student_id = $1 ORDER BY mentor_id`,
		studentID,
	)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	defer rows.Close()

	return scanAssignments(rows)
}

// AssignedMentorIDs returns the set of mentor ids already assigned to the
// student, used to exclude them from the recommendation candidate pool.
func (r *AssignmentsRepository) AssignedMentorIDs(ctx context.Context, studentID uuid.UUID) (map[uuid.UUID]struct{}, error) {
	rows, err := r.db.Query(ctx,
		`SELECT mentor_id FROM assigned_mentors WHERE student_id = $1`,
		studentID,
	)
	if err != nil {
		return nil, fmt.Errorf("assigned mentor ids: %w", err)
	}
	defer rows.Close()

	ids := make(map[uuid.UUID]struct{})

	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan mentor id: %w", err)
		}

		ids[id] = struct{}{}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating mentor ids: %w", err)
	}

	return ids, nil
}

// Upsert creates the (student, mentor) pairing or updates its score when the
// pair already exists. score may be nil (assignment without a judgment yet).
func (r *AssignmentsRepository) Upsert(
	ctx context.Context, studentID, mentorID uuid.UUID, score *float64,
) (*models.AssignedMentorEntry, error) {
	now := time.Now()

	var entry models.AssignedMentorEntry

	err := r.db.QueryRow(ctx, `
		INSERT INTO assigned_mentors (id, student_id, mentor_id, score, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
		ON CONFLICT (student_id, mentor_id)
		DO UPDATE SET score = EXCLUDED.score, updated_at = $5
		RETURNING `+assignmentColumns,
		uuid.Must(uuid.NewV7()), studentID, mentorID, score, now,
	).Scan(&entry.ID, &entry.StudentID, &entry.MentorID, &entry.Score, &entry.CreatedAt, &entry.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("upsert assignment: %w", err)
	}

	return &entry, nil
}

// FillScoreIfUnset writes a computed score for the pair only when the stored
// score is NULL or 0. Human-set scores are never overwritten here. Returns
// whether a row was updated.
func (r *AssignmentsRepository) FillScoreIfUnset(
	ctx context.Context, studentID, mentorID uuid.UUID, score float64,
) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE assigned_mentors SET score = $3, updated_at = now()
		WHERE student_id = $1 AND mentor_id = $2 AND (score IS NULL OR score = 0)`,
		studentID, mentorID, score,
	)
	if err != nil {
		return false, fmt.Errorf("fill assignment score: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// ListUnscored returns assignments whose score is NULL or 0, up to limit.
// Used by the score backfill CLI.
func (r *AssignmentsRepository) ListUnscored(ctx context.Context, limit int) ([]models.AssignedMentorEntry, error) {
	if limit <= 0 {
		return nil, merrors.NewInvalidArgumentError("limit", "limit must be positive")
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+assignmentColumns+` FROM assigned_mentors
		 WHERE score IS NULL OR score = 0 ORDER BY created_at LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list unscored assignments: %w", err)
	}
	defer rows.Close()

	return scanAssignments(rows)
}

// ListByProfile returns assignments involving the profile on either side.
// Used by the embedding refresh job to know which pairs to rescore.
func (r *AssignmentsRepository) ListByProfile(
	ctx context.Context, profileID uuid.UUID, role models.Role,
) ([]models.AssignedMentorEntry, error) {
	column := "student_id"
	if role == models.RoleMentor {
		column = "mentor_id"
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+assignmentColumns+` FROM assigned_mentors WHERE `+column+` = $1 ORDER BY mentor_id`,
		profileID,
	)
	if err != nil {
		return nil, fmt.Errorf("list assignments by profile: %w", err)
	}
	defer rows.Close()

	return scanAssignments(rows)
}

func scanAssignments(rows pgx.Rows) ([]models.AssignedMentorEntry, error) {
	var entries []models.AssignedMentorEntry

	for rows.Next() {
		var entry models.AssignedMentorEntry
		if err := rows.Scan(&entry.ID, &entry.StudentID, &entry.MentorID,
			&entry.Score, &entry.CreatedAt, &entry.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan assignment: %w", err)
		}

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating assignments: %w", err)
	}

	return entries, nil
}
