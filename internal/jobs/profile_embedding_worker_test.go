package jobs

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentormatch/backend/internal/merrors"
	"github.com/mentormatch/backend/internal/models"
	"github.com/mentormatch/backend/internal/repository"
)

type mockProfileReader struct {
	getFunc func(ctx context.Context, id uuid.UUID, role models.Role) (*models.ProfileRecord, error)
}

func (m *mockProfileReader) GetProfile(ctx context.Context, id uuid.UUID, role models.Role) (*models.ProfileRecord, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, id, role)
	}

	return nil, merrors.NewNotFoundError("profile", "")
}

type mockEmbeddingStore struct {
	upsertFunc func(ctx context.Context, profileID uuid.UUID, role models.Role, model, textHash string, embedding []float32) error
	getFunc    func(ctx context.Context, profileID uuid.UUID, role models.Role, model string) (*models.ProfileEmbedding, error)
	deleted    []uuid.UUID
}

func (m *mockEmbeddingStore) Upsert(
	ctx context.Context, profileID uuid.UUID, role models.Role, model, textHash string, embedding []float32,
) error {
	if m.upsertFunc != nil {
		return m.upsertFunc(ctx, profileID, role, model, textHash, embedding)
	}

	return nil
}

func (m *mockEmbeddingStore) Get(
	ctx context.Context, profileID uuid.UUID, role models.Role, model string,
) (*models.ProfileEmbedding, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, profileID, role, model)
	}

	return nil, repository.ErrProfileEmbeddingNotFound
}

func (m *mockEmbeddingStore) Delete(_ context.Context, profileID uuid.UUID, _ models.Role, _ string) error {
	m.deleted = append(m.deleted, profileID)

	return nil
}

type mockRescorer struct {
	listFunc func(ctx context.Context, profileID uuid.UUID, role models.Role) ([]models.AssignedMentorEntry, error)
	filled   map[string]float64
}

func (m *mockRescorer) ListByProfile(
	ctx context.Context, profileID uuid.UUID, role models.Role,
) ([]models.AssignedMentorEntry, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, profileID, role)
	}

	return nil, nil
}

func (m *mockRescorer) FillScoreIfUnset(_ context.Context, studentID, mentorID uuid.UUID, score float64) (bool, error) {
	if m.filled == nil {
		m.filled = make(map[string]float64)
	}

	m.filled[studentID.String()+"/"+mentorID.String()] = score

	return true, nil
}

type mockBatchClient struct {
	vectors map[string][]float32
	err     error
}

func (m *mockBatchClient) CreateEmbeddings(_ context.Context, texts []string) ([][]float32, error) {
	if m.err != nil {
		return nil, m.err
	}

	out := make([][]float32, len(texts))
	for i, text := range texts {
		if vec, ok := m.vectors[text]; ok {
			out[i] = vec
		} else {
			out[i] = []float32{0, 0}
		}
	}

	return out, nil
}

func refreshJob(args ProfileEmbeddingArgs) *river.Job[ProfileEmbeddingArgs] {
	return &river.Job[ProfileEmbeddingArgs]{JobRow: &rivertype.JobRow{ID: 42}, Args: args}
}

func TestProfileEmbeddingWorker_Work(t *testing.T) {
	studentID := uuid.MustParse("018e1234-5678-9abc-def0-000000000001")
	mentorID := uuid.MustParse("018e1234-5678-9abc-def0-00000000000a")

	student := models.ProfileRecord{
		ID:        studentID,
		Role:      models.RoleStudent,
		Major:     "Computer Science",
		Interests: []string{"Machine Learning"},
	}

	t.Run("refreshes vector and backfills unscored pair", func(t *testing.T) {
		var upsertedVec []float32

		store := &mockEmbeddingStore{
			upsertFunc: func(_ context.Context, profileID uuid.UUID, role models.Role, model, textHash string, vec []float32) error {
				assert.Equal(t, studentID, profileID)
				assert.Equal(t, models.RoleStudent, role)
				assert.Equal(t, "test-model", model)
				assert.NotEmpty(t, textHash)

				upsertedVec = vec

				return nil
			},
			getFunc: func(_ context.Context, profileID uuid.UUID, role models.Role, _ string) (*models.ProfileEmbedding, error) {
				assert.Equal(t, mentorID, profileID)
				assert.Equal(t, models.RoleMentor, role)

				return &models.ProfileEmbedding{ProfileID: profileID, Embedding: []float32{1, 0}}, nil
			},
		}

		rescorer := &mockRescorer{
			listFunc: func(_ context.Context, _ uuid.UUID, _ models.Role) ([]models.AssignedMentorEntry, error) {
				return []models.AssignedMentorEntry{{StudentID: studentID, MentorID: mentorID}}, nil
			},
		}

		worker := NewProfileEmbeddingWorker(ProfileEmbeddingWorkerDeps{
			Profiles: &mockProfileReader{
				getFunc: func(_ context.Context, _ uuid.UUID, _ models.Role) (*models.ProfileRecord, error) {
					return &student, nil
				},
			},
			EmbeddingClient: &mockBatchClient{vectors: map[string][]float32{
				"computer science; machine learning": {1, 0},
			}},
			Embeddings:  store,
			Assignments: rescorer,
			Model:       "test-model",
			Dimensions:  2,
		})

		err := worker.Work(context.Background(), refreshJob(ProfileEmbeddingArgs{ProfileID: studentID, Role: models.RoleStudent}))
		require.NoError(t, err)

		assert.Equal(t, []float32{1, 0}, upsertedVec)

		key := studentID.String() + "/" + mentorID.String()
		require.Contains(t, rescorer.filled, key)
		assert.InDelta(t, 1.0, rescorer.filled[key], 1e-9)
	})

	t.Run("human-set score is not backfilled", func(t *testing.T) {
		set := 0.7

		rescorer := &mockRescorer{
			listFunc: func(_ context.Context, _ uuid.UUID, _ models.Role) ([]models.AssignedMentorEntry, error) {
				return []models.AssignedMentorEntry{{StudentID: studentID, MentorID: mentorID, Score: &set}}, nil
			},
		}

		worker := NewProfileEmbeddingWorker(ProfileEmbeddingWorkerDeps{
			Profiles: &mockProfileReader{
				getFunc: func(_ context.Context, _ uuid.UUID, _ models.Role) (*models.ProfileRecord, error) {
					return &student, nil
				},
			},
			EmbeddingClient: &mockBatchClient{},
			Embeddings:      &mockEmbeddingStore{},
			Assignments:     rescorer,
			Model:           "test-model",
		})

		err := worker.Work(context.Background(), refreshJob(ProfileEmbeddingArgs{ProfileID: studentID, Role: models.RoleStudent}))
		require.NoError(t, err)
		assert.Empty(t, rescorer.filled)
	})

	t.Run("deleted profile removes stored vector and completes", func(t *testing.T) {
		store := &mockEmbeddingStore{}

		worker := NewProfileEmbeddingWorker(ProfileEmbeddingWorkerDeps{
			Profiles:        &mockProfileReader{},
			EmbeddingClient: &mockBatchClient{},
			Embeddings:      store,
			Assignments:     &mockRescorer{},
			Model:           "test-model",
		})

		err := worker.Work(context.Background(), refreshJob(ProfileEmbeddingArgs{ProfileID: studentID, Role: models.RoleStudent}))
		require.NoError(t, err)
		assert.Equal(t, []uuid.UUID{studentID}, store.deleted)
	})

	t.Run("provider failure propagates for retry", func(t *testing.T) {
		worker := NewProfileEmbeddingWorker(ProfileEmbeddingWorkerDeps{
			Profiles: &mockProfileReader{
				getFunc: func(_ context.Context, _ uuid.UUID, _ models.Role) (*models.ProfileRecord, error) {
					return &student, nil
				},
			},
			EmbeddingClient: &mockBatchClient{err: merrors.NewEmbeddingUnavailableError("provider down", nil)},
			Embeddings:      &mockEmbeddingStore{},
			Assignments:     &mockRescorer{},
			Model:           "test-model",
		})

		err := worker.Work(context.Background(), refreshJob(ProfileEmbeddingArgs{ProfileID: studentID, Role: models.RoleStudent}))
		assert.ErrorIs(t, err, merrors.ErrEmbeddingUnavailable)
	})
}

func TestBackfillScores(t *testing.T) {
	studentID := uuid.MustParse("018e1234-5678-9abc-def0-000000000001")
	mentorID := uuid.MustParse("018e1234-5678-9abc-def0-00000000000a")
	unembeddedID := uuid.MustParse("018e1234-5678-9abc-def0-0000000000ff")

	store := &mockEmbeddingStore{
		getFunc: func(_ context.Context, profileID uuid.UUID, _ models.Role, _ string) (*models.ProfileEmbedding, error) {
			switch profileID {
			case studentID:
				return &models.ProfileEmbedding{ProfileID: profileID, Embedding: []float32{1, 0}}, nil
			case mentorID:
				return &models.ProfileEmbedding{ProfileID: profileID, Embedding: []float32{0, 1}}, nil
			default:
				return nil, repository.ErrProfileEmbeddingNotFound
			}
		},
	}

	assignments := &backfillAssignmentsMock{
		entries: []models.AssignedMentorEntry{
			{StudentID: studentID, MentorID: mentorID},
			{StudentID: studentID, MentorID: unembeddedID},
		},
	}

	stats, err := BackfillScores(context.Background(), assignments, store, "test-model", 100, false, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Scanned)
	assert.Equal(t, 1, stats.Filled)
	assert.Equal(t, 1, stats.Skipped)
	assert.Zero(t, stats.Errors)

	require.Len(t, assignments.filled, 1)
	assert.InDelta(t, 0.5, assignments.filled[0], 1e-9)
}

type backfillAssignmentsMock struct {
	entries []models.AssignedMentorEntry
	filled  []float64
}

func (m *backfillAssignmentsMock) ListUnscored(_ context.Context, _ int) ([]models.AssignedMentorEntry, error) {
	return m.entries, nil
}

func (m *backfillAssignmentsMock) FillScoreIfUnset(_ context.Context, _, _ uuid.UUID, score float64) (bool, error) {
	m.filled = append(m.filled, score)

	return true, nil
}
