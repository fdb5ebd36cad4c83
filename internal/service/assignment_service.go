package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mentormatch/backend/internal/merrors"
	"github.com/mentormatch/backend/internal/models"
	"github.com/mentormatch/backend/internal/recommend"
)

// AssignmentsRepositoryForAssignments provides the assignment operations the
// assignment service needs.
type AssignmentsRepositoryForAssignments interface {
	ListByStudent(ctx context.Context, studentID uuid.UUID) ([]models.AssignedMentorEntry, error)
	Upsert(ctx context.Context, studentID, mentorID uuid.UUID, score *float64) (*models.AssignedMentorEntry, error)
}

// ProfilesRepositoryForAssignments provides the profile reads the assignment
// service needs.
type ProfilesRepositoryForAssignments interface {
	GetStudent(ctx context.Context, id uuid.UUID) (*models.ProfileRecord, error)
	GetMentor(ctx context.Context, id uuid.UUID) (*models.ProfileRecord, error)
}

// AssignmentService reads and writes persistent student–mentor pairings.
// Listing merges each stored row with mentor display metadata and reconciles
// the stored score with a freshly computed similarity when no human judgment
// exists yet.
type AssignmentService struct {
	assignmentsRepo AssignmentsRepositoryForAssignments
	profilesRepo    ProfilesRepositoryForAssignments
	embedder        recommend.Embedder
	logger          *slog.Logger
}

// AssignmentServiceParams configures AssignmentService. Embedder may be nil;
// rows without a stored score then surface a 0 instead of a computed fallback.
type AssignmentServiceParams struct {
	AssignmentsRepo AssignmentsRepositoryForAssignments
	ProfilesRepo    ProfilesRepositoryForAssignments
	Embedder        recommend.Embedder
	Logger          *slog.Logger
}

// NewAssignmentService creates an AssignmentService.
func NewAssignmentService(p AssignmentServiceParams) *AssignmentService {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &AssignmentService{
		assignmentsRepo: p.AssignmentsRepo,
		profilesRepo:    p.ProfilesRepo,
		embedder:        p.Embedder,
		logger:          logger,
	}
}

// ListAssignedMentors returns the student's assignments merged with mentor
// metadata and a single reconciled score per row.
//
// A stored non-zero score is authoritative. For rows still carrying the
// nil/zero "no judgment yet" sentinel a similarity is computed on the fly;
// if that computation fails the row is returned with score 0 rather than
// failing the listing. Rows whose mentor profile has since been deleted are
// skipped with a warning.
func (s *AssignmentService) ListAssignedMentors(
	ctx context.Context, studentID uuid.UUID,
) ([]models.AssignedMentorView, error) {
	// Existence check first so an unknown student 404s instead of returning
	// an empty list.
	student, err := s.profilesRepo.GetStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	entries, err := s.assignmentsRepo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}

	var studentVec []float32 // computed lazily, at most once

	views := make([]models.AssignedMentorView, 0, len(entries))

	for _, entry := range entries {
		mentor, err := s.profilesRepo.GetMentor(ctx, entry.MentorID)
		if err != nil {
			if errors.Is(err, merrors.ErrNotFound) {
				s.logger.Warn("assignments: skipping row with missing mentor",
					"student_id", studentID, "mentor_id", entry.MentorID)

				continue
			}

			return nil, err
		}

		var computed *float64

		if needsComputedScore(entry.Score) && s.embedder != nil {
			if studentVec == nil {
				studentVec = s.embedProfile(ctx, *student)
			}

			if studentVec != nil {
				if mentorVec := s.embedProfile(ctx, *mentor); mentorVec != nil {
					if score, simErr := recommend.SimilarityScore(studentVec, mentorVec); simErr == nil {
						computed = &score
					} else {
						s.logger.Warn("assignments: similarity failed",
							"student_id", studentID, "mentor_id", entry.MentorID, "error", simErr)
					}
				}
			}
		}

		views = append(views, models.AssignedMentorView{
			ID:            entry.ID,
			MentorID:      mentor.ID,
			Score:         recommend.ReconcileScore(entry.Score, computed),
			FullName:      mentor.FullName,
			Designation:   mentor.Designation,
			Department:    mentor.Department,
			ResearchAreas: mentor.ResearchAreas,
		})
	}

	return views, nil
}

// AcceptRecommendation persists a recommendation as an assignment, carrying
// the similarity score along. Upserting an existing pair updates its score.
// score may be nil and must otherwise lie in [0,1].
func (s *AssignmentService) AcceptRecommendation(
	ctx context.Context, studentID, mentorID uuid.UUID, score *float64,
) (*models.AssignedMentorEntry, error) {
	if score != nil && (*score < 0 || *score > 1) {
		return nil, merrors.NewInvalidArgumentError("score", "score must be in [0,1]")
	}

	if _, err := s.profilesRepo.GetStudent(ctx, studentID); err != nil {
		return nil, err
	}

	if _, err := s.profilesRepo.GetMentor(ctx, mentorID); err != nil {
		return nil, err
	}

	entry, err := s.assignmentsRepo.Upsert(ctx, studentID, mentorID, score)
	if err != nil {
		return nil, fmt.Errorf("upsert assignment: %w", err)
	}

	return entry, nil
}

// embedProfile builds and embeds a profile, returning nil on any failure.
// Listing degrades to the stored score instead of erroring.
func (s *AssignmentService) embedProfile(ctx context.Context, record models.ProfileRecord) []float32 {
	text, err := recommend.BuildProfileText(record)
	if err != nil {
		return nil
	}

	vec, err := s.embedder.EmbedText(ctx, text)
	if err != nil {
		s.logger.Warn("assignments: embedding failed", "profile_id", record.ID, "error", err)

		return nil
	}

	return vec
}

// needsComputedScore reports whether the stored score is the "no judgment yet"
// sentinel (nil or 0).
func needsComputedScore(stored *float64) bool {
	return stored == nil || *stored == 0
}
