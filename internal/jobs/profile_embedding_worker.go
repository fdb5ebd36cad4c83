package jobs

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/riverqueue/river"
	"golang.org/x/time/rate"

	"github.com/mentormatch/backend/internal/embeddings"
	"github.com/mentormatch/backend/internal/merrors"
	"github.com/mentormatch/backend/internal/models"
	"github.com/mentormatch/backend/internal/recommend"
	"github.com/mentormatch/backend/internal/repository"
)

// ProfileReader provides the profile read the worker needs.
type ProfileReader interface {
	GetProfile(ctx context.Context, id uuid.UUID, role models.Role) (*models.ProfileRecord, error)
}

// EmbeddingStore provides the stored-embedding operations the worker needs.
type EmbeddingStore interface {
	Upsert(ctx context.Context, profileID uuid.UUID, role models.Role, model, textHash string, embedding []float32) error
	Get(ctx context.Context, profileID uuid.UUID, role models.Role, model string) (*models.ProfileEmbedding, error)
	Delete(ctx context.Context, profileID uuid.UUID, role models.Role, model string) error
}

// AssignmentRescorer provides the assignment operations the worker needs to
// backfill pair scores after a refresh.
type AssignmentRescorer interface {
	ListByProfile(ctx context.Context, profileID uuid.UUID, role models.Role) ([]models.AssignedMentorEntry, error)
	FillScoreIfUnset(ctx context.Context, studentID, mentorID uuid.UUID, score float64) (bool, error)
}

// ProfileEmbeddingWorkerDeps holds the dependencies for the refresh worker.
// RateLimiter may be nil (no provider throttling). Logger nil means slog.Default().
type ProfileEmbeddingWorkerDeps struct {
	Profiles        ProfileReader
	EmbeddingClient embeddings.Client
	Embeddings      EmbeddingStore
	Assignments     AssignmentRescorer
	Model           string
	Dimensions      int
	RateLimiter     *rate.Limiter
	Logger          *slog.Logger
}

// ProfileEmbeddingWorker re-embeds one profile and backfills similarity scores
// for its unscored assignments. Human-set scores are never touched; the
// backfill only fills the NULL/0 "no judgment yet" sentinel.
type ProfileEmbeddingWorker struct {
	river.WorkerDefaults[ProfileEmbeddingArgs]
	deps ProfileEmbeddingWorkerDeps
}

// NewProfileEmbeddingWorker creates a new refresh worker with the given dependencies.
func NewProfileEmbeddingWorker(deps ProfileEmbeddingWorkerDeps) *ProfileEmbeddingWorker {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	return &ProfileEmbeddingWorker{deps: deps}
}

// Work processes one refresh job.
func (w *ProfileEmbeddingWorker) Work(ctx context.Context, job *river.Job[ProfileEmbeddingArgs]) error {
	args := job.Args
	logger := w.deps.Logger.With("job_id", job.ID, "profile_id", args.ProfileID, "role", args.Role)

	if w.deps.RateLimiter != nil {
		if err := w.deps.RateLimiter.Wait(ctx); err != nil {
			return err
		}
	}

	record, err := w.deps.Profiles.GetProfile(ctx, args.ProfileID, args.Role)
	if err != nil {
		// Profile deleted between enqueue and run: drop the stale vector and
		// complete, a retry would not bring the profile back.
		if errors.Is(err, merrors.ErrNotFound) {
			logger.Info("profile deleted before refresh completed")

			return w.deleteStored(ctx, args, logger)
		}

		logger.Error("refresh: get profile failed", "error", err)

		return err
	}

	text, err := recommend.BuildProfileText(*record)
	if err != nil {
		// Nothing embeddable anymore. Remove the stored vector so ranking
		// cannot score this profile on stale text.
		logger.Info("profile no longer embeddable, removing stored vector", "error", err)

		return w.deleteStored(ctx, args, logger)
	}

	vectors, err := w.deps.EmbeddingClient.CreateEmbeddings(ctx, []string{text})
	if err != nil {
		logger.Error("refresh: embedding failed", "error", err)

		return err // River retries per policy
	}

	vec := vectors[0]
	if w.deps.Dimensions > 0 && len(vec) != w.deps.Dimensions {
		return merrors.NewDimensionMismatchError(w.deps.Dimensions, len(vec))
	}

	if err := w.deps.Embeddings.Upsert(ctx, args.ProfileID, args.Role, w.deps.Model, recommend.HashText(text), vec); err != nil {
		logger.Error("refresh: embedding upsert failed", "error", err)

		return err
	}

	w.rescoreAssignments(ctx, args, vec, logger)

	logger.Info("profile embedding refreshed")

	return nil
}

// rescoreAssignments fills computed similarity into the profile's unscored
// pairs. Failures are logged and skipped; the refresh itself already succeeded
// and the backfill CLI can catch up later.
func (w *ProfileEmbeddingWorker) rescoreAssignments(
	ctx context.Context, args ProfileEmbeddingArgs, vec []float32, logger *slog.Logger,
) {
	entries, err := w.deps.Assignments.ListByProfile(ctx, args.ProfileID, args.Role)
	if err != nil {
		logger.Warn("refresh: list assignments failed", "error", err)

		return
	}

	otherRole := models.RoleMentor
	if args.Role == models.RoleMentor {
		otherRole = models.RoleStudent
	}

	for _, entry := range entries {
		if entry.Score != nil && *entry.Score != 0 {
			continue
		}

		otherID := entry.MentorID
		if args.Role == models.RoleMentor {
			otherID = entry.StudentID
		}

		stored, err := w.deps.Embeddings.Get(ctx, otherID, otherRole, w.deps.Model)
		if err != nil {
			if !errors.Is(err, repository.ErrProfileEmbeddingNotFound) {
				logger.Warn("refresh: get counterpart embedding failed", "other_id", otherID, "error", err)
			}

			continue
		}

		score, err := recommend.SimilarityScore(vec, stored.Embedding)
		if err != nil {
			logger.Warn("refresh: similarity failed", "other_id", otherID, "error", err)

			continue
		}

		if _, err := w.deps.Assignments.FillScoreIfUnset(ctx, entry.StudentID, entry.MentorID, score); err != nil {
			logger.Warn("refresh: score backfill failed",
				"student_id", entry.StudentID, "mentor_id", entry.MentorID, "error", err)
		}
	}
}

func (w *ProfileEmbeddingWorker) deleteStored(ctx context.Context, args ProfileEmbeddingArgs, logger *slog.Logger) error {
	if err := w.deps.Embeddings.Delete(ctx, args.ProfileID, args.Role, w.deps.Model); err != nil {
		logger.Error("refresh: embedding delete failed", "error", err)

		return err
	}

	return nil
}
