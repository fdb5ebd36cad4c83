// backfill-scores computes similarity scores for assignments that still carry
// the NULL/0 "no judgment yet" sentinel, using embeddings already stored by the
// API server and refresh workers. Run it as a one-off or on a schedule; pairs
// without stored embeddings are skipped, and -enqueue-missing queues refresh
// jobs for the profiles that have never been embedded so the next run can
// score them.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	pgxvec "github.com/pgvector/pgvector-go/pgx"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"

	"github.com/mentormatch/backend/internal/config"
	"github.com/mentormatch/backend/internal/jobs"
	"github.com/mentormatch/backend/internal/models"
	"github.com/mentormatch/backend/internal/repository"
	"github.com/mentormatch/backend/pkg/database"
)

const (
	defaultLimit = 1000
	exitSuccess  = 0
	exitFailure  = 1
)

func main() {
	os.Exit(run())
}

func run() int {
	limit := flag.Int("limit", defaultLimit, "maximum number of unscored assignments to process")
	dryRun := flag.Bool("dry-run", false, "report what would be filled without updating rows")
	enqueueMissing := flag.Bool("enqueue-missing", false, "enqueue refresh jobs for profiles with no stored embedding")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)

		return exitFailure
	}

	ctx := context.Background()

	db, err := database.NewPostgresPool(ctx, cfg.DatabaseURL, database.WithAfterConnect(pgxvec.RegisterTypes))
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)

		return exitFailure
	}
	defer db.Close()

	assignmentsRepo := repository.NewAssignmentsRepository(db)
	embeddingsRepo := repository.NewProfileEmbeddingsRepository(db)

	stats, err := jobs.BackfillScores(ctx, assignmentsRepo, embeddingsRepo,
		cfg.EmbeddingModel, *limit, *dryRun, slog.Default())
	if err != nil {
		slog.Error("Backfill failed", "error", err)

		return exitFailure
	}

	slog.Info("Backfill complete",
		"scanned", stats.Scanned,
		"filled", stats.Filled,
		"skipped", stats.Skipped,
		"errors", stats.Errors,
		"dry_run", *dryRun,
	)

	if *enqueueMissing {
		if err := enqueueMissingEmbeddings(ctx, db, embeddingsRepo, cfg, *limit); err != nil {
			slog.Error("Enqueue missing embeddings failed", "error", err)

			return exitFailure
		}
	}

	if stats.Errors > 0 {
		return exitFailure
	}

	return exitSuccess
}

// enqueueMissingEmbeddings queues one refresh job per profile that has no
// stored embedding. The API server's River workers process the jobs; this
// process only inserts.
func enqueueMissingEmbeddings(
	ctx context.Context,
	db *pgxpool.Pool,
	embeddingsRepo *repository.ProfileEmbeddingsRepository,
	cfg *config.Config,
	limit int,
) error {
	riverClient, err := river.NewClient(riverpgxv5.New(db), &river.Config{})
	if err != nil {
		return err
	}

	inserter := jobs.NewRiverJobInserter(riverClient)
	enqueued := 0

	for _, role := range []models.Role{models.RoleStudent, models.RoleMentor} {
		ids, err := embeddingsRepo.ListProfilesMissingEmbedding(ctx, role, cfg.EmbeddingModel, limit)
		if err != nil {
			return err
		}

		for _, id := range ids {
			if err := inserter.InsertProfileEmbeddingJob(ctx, jobs.ProfileEmbeddingArgs{
				ProfileID: id,
				Role:      role,
			}); err != nil {
				return err
			}

			enqueued++
		}
	}

	slog.Info("Refresh jobs enqueued for unembedded profiles", "count", enqueued)

	return nil
}
