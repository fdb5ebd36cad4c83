// Package repository contains pgx-backed data access for profiles,
// assignments, and stored profile embeddings.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mentormatch/backend/internal/merrors"
	"github.com/mentormatch/backend/internal/models"
)

// ProfilesRepository reads student and mentor profiles. It is the data-hygiene
// boundary: list-valued columns (skills, interests, research_areas) are stored
// as comma-joined text and are normalized to []string here, so the engine only
// ever sees structured sequences.
type ProfilesRepository struct {
	db *pgxpool.Pool
}

// NewProfilesRepository creates a new profiles repository.
func NewProfilesRepository(db *pgxpool.Pool) *ProfilesRepository {
	return &ProfilesRepository{db: db}
}

// GetStudent returns the student profile snapshot for id.
// Returns NotFoundError when no such student exists.
func (r *ProfilesRepository) GetStudent(ctx context.Context, id uuid.UUID) (*models.ProfileRecord, error) {
	var (
		record                           models.ProfileRecord
		major, stream, skills, interests *string
	)

	err := r.db.QueryRow(ctx, `
		SELECT id, full_name, email, major, stream, skills, interests
		FROM student_details WHERE id = $1`,
		id,
	).Scan(&record.ID, &record.FullName, &record.Email, &major, &stream, &skills, &interests)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, merrors.NewNotFoundError("student", "")
		}

		return nil, fmt.Errorf("get student: %w", err)
	}

	record.Role = models.RoleStudent
	record.Major = deref(major)
	record.Stream = deref(stream)
	record.Skills = splitList(deref(skills))
	record.Interests = splitList(deref(interests))

	return &record, nil
}

// GetMentor returns the mentor profile snapshot for id.
// Returns NotFoundError when no such mentor exists.
func (r *ProfilesRepository) GetMentor(ctx context.Context, id uuid.UUID) (*models.ProfileRecord, error) {
	var (
		record                                 models.ProfileRecord
		department, designation, researchAreas *string
	)

	err := r.db.QueryRow(ctx, `
		SELECT id, full_name, email, department, designation, research_areas
		FROM mentor_details WHERE id = $1`,
		id,
	).Scan(&record.ID, &record.FullName, &record.Email, &department, &designation, &researchAreas)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, merrors.NewNotFoundError("mentor", "")
		}

		return nil, fmt.Errorf("get mentor: %w", err)
	}

	record.Role = models.RoleMentor
	record.Department = deref(department)
	record.Designation = deref(designation)
	record.ResearchAreas = splitList(deref(researchAreas))

	return &record, nil
}

// ListMentors returns all mentor profiles, ordered by id for deterministic iteration.
func (r *ProfilesRepository) ListMentors(ctx context.Context) ([]models.ProfileRecord, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, full_name, email, department, designation, research_areas
		FROM mentor_details ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list mentors: %w", err)
	}
	defer rows.Close()

	var mentors []models.ProfileRecord

	for rows.Next() {
		var (
			record                                 models.ProfileRecord
			department, designation, researchAreas *string
		)

		if err := rows.Scan(&record.ID, &record.FullName, &record.Email,
			&department, &designation, &researchAreas); err != nil {
			return nil, fmt.Errorf("scan mentor: %w", err)
		}

		record.Role = models.RoleMentor
		record.Department = deref(department)
		record.Designation = deref(designation)
		record.ResearchAreas = splitList(deref(researchAreas))

		mentors = append(mentors, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating mentors: %w", err)
	}

	return mentors, nil
}

// GetProfile returns the profile for (id, role).
func (r *ProfilesRepository) GetProfile(ctx context.Context, id uuid.UUID, role models.Role) (*models.ProfileRecord, error) {
	switch role {
	case models.RoleStudent:
		return r.GetStudent(ctx, id)
	case models.RoleMentor:
		return r.GetMentor(ctx, id)
	default:
		return nil, merrors.NewInvalidArgumentError("role", "role must be student or mentor")
	}
}

// splitList normalizes a comma-joined text column into an ordered []string:
// items trimmed, empties dropped, order preserved. Empty input yields nil.
func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	items := make([]string, 0, len(parts))

	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		items = append(items, part)
	}

	if len(items) == 0 {
		return nil
	}

	return items
}

func deref(s *string) string {
	if s == nil {
		return ""
	}

	return *s
}
