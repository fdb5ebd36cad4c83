package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mentormatch/backend/internal/models"
	"github.com/mentormatch/backend/internal/recommend"
	"github.com/mentormatch/backend/internal/repository"
)

// BackfillAssignments provides the assignment operations score backfill needs.
type BackfillAssignments interface {
	ListUnscored(ctx context.Context, limit int) ([]models.AssignedMentorEntry, error)
	FillScoreIfUnset(ctx context.Context, studentID, mentorID uuid.UUID, score float64) (bool, error)
}

// BackfillStats holds statistics from a score backfill run.
type BackfillStats struct {
	Scanned int
	Filled  int
	Skipped int
	Errors  int
}

// BackfillScores computes similarity for assignments still carrying the NULL/0
// score sentinel, using stored embeddings only. Pairs whose profiles have not
// been embedded yet are skipped; the refresh worker will pick them up once
// their embeddings exist. Human-set scores are never touched. With dryRun the
// rows are left untouched and the stats report what would have been filled.
func BackfillScores(
	ctx context.Context,
	assignments BackfillAssignments,
	store EmbeddingStore,
	model string,
	limit int,
	dryRun bool,
	logger *slog.Logger,
) (*BackfillStats, error) {
	if logger == nil {
		logger = slog.Default()
	}

	entries, err := assignments.ListUnscored(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list unscored assignments: %w", err)
	}

	stats := &BackfillStats{Scanned: len(entries)}

	for _, entry := range entries {
		studentEmb, err := store.Get(ctx, entry.StudentID, models.RoleStudent, model)
		if err != nil {
			if errors.Is(err, repository.ErrProfileEmbeddingNotFound) {
				stats.Skipped++
			} else {
				logger.Warn("backfill: get student embedding failed", "student_id", entry.StudentID, "error", err)
				stats.Errors++
			}

			continue
		}

		mentorEmb, err := store.Get(ctx, entry.MentorID, models.RoleMentor, model)
		if err != nil {
			if errors.Is(err, repository.ErrProfileEmbeddingNotFound) {
				stats.Skipped++
			} else {
				logger.Warn("backfill: get mentor embedding failed", "mentor_id", entry.MentorID, "error", err)
				stats.Errors++
			}

			continue
		}

		score, err := recommend.SimilarityScore(studentEmb.Embedding, mentorEmb.Embedding)
		if err != nil {
			logger.Warn("backfill: similarity failed",
				"student_id", entry.StudentID, "mentor_id", entry.MentorID, "error", err)
			stats.Errors++

			continue
		}

		if dryRun {
			logger.Info("backfill: would fill score",
				"student_id", entry.StudentID, "mentor_id", entry.MentorID, "score", score)
			stats.Filled++

			continue
		}

		filled, err := assignments.FillScoreIfUnset(ctx, entry.StudentID, entry.MentorID, score)
		if err != nil {
			logger.Warn("backfill: score update failed",
				"student_id", entry.StudentID, "mentor_id", entry.MentorID, "error", err)
			stats.Errors++

			continue
		}

		if filled {
			stats.Filled++
		} else {
			stats.Skipped++
		}
	}

	return stats, nil
}
