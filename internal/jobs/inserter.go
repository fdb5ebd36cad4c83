package jobs

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
)

// JobInserter enqueues profile embedding refresh jobs. Handlers depend on this
// interface so tests do not need a running River client.
type JobInserter interface {
	InsertProfileEmbeddingJob(ctx context.Context, args ProfileEmbeddingArgs) error
}

// RiverJobInserter implements JobInserter using the River client.
type RiverJobInserter struct {
	client *river.Client[pgx.Tx]
}

// NewRiverJobInserter creates a new River-based job inserter.
func NewRiverJobInserter(client *river.Client[pgx.Tx]) *RiverJobInserter {
	return &RiverJobInserter{client: client}
}

// InsertProfileEmbeddingJob enqueues a refresh job, deduplicated per profile:
// a second edit while a refresh is pending does not enqueue a second job.
func (r *RiverJobInserter) InsertProfileEmbeddingJob(ctx context.Context, args ProfileEmbeddingArgs) error {
	_, err := r.client.Insert(ctx, args, &river.InsertOpts{
		UniqueOpts: river.UniqueOpts{
			ByArgs: true,
			// Note: JobStatePending is required by River when using ByState.
			ByState: []rivertype.JobState{
				rivertype.JobStatePending,
				rivertype.JobStateAvailable,
				rivertype.JobStateRunning,
				rivertype.JobStateRetryable,
				rivertype.JobStateScheduled,
			},
		},
	})

	return err
}
