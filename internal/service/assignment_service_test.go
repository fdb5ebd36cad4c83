package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentormatch/backend/internal/merrors"
	"github.com/mentormatch/backend/internal/models"
)

type mockEmbedder struct {
	vectors map[string][]float32
	err     error
}

func (m *mockEmbedder) EmbedText(_ context.Context, text string) ([]float32, error) {
	if m.err != nil {
		return nil, m.err
	}

	if vec, ok := m.vectors[text]; ok {
		return vec, nil
	}

	return []float32{0, 0}, nil
}

func TestAssignmentService_ListAssignedMentors(t *testing.T) {
	studentID := uuid.MustParse("018e1234-5678-9abc-def0-000000000001")
	mentorAID := uuid.MustParse("018e1234-5678-9abc-def0-00000000000a")
	mentorBID := uuid.MustParse("018e1234-5678-9abc-def0-00000000000b")

	student := testStudent(studentID)
	mentorA := testMentor(mentorAID, "Prof A", "Machine Learning")
	mentorB := testMentor(mentorBID, "Prof B", "Databases")

	profilesRepo := func() *mockProfilesRepo {
		return &mockProfilesRepo{
			getStudentFunc: func(_ context.Context, id uuid.UUID) (*models.ProfileRecord, error) {
				if id == studentID {
					return &student, nil
				}

				return nil, merrors.NewNotFoundError("student", "")
			},
			getMentorFunc: func(_ context.Context, id uuid.UUID) (*models.ProfileRecord, error) {
				switch id {
				case mentorAID:
					return &mentorA, nil
				case mentorBID:
					return &mentorB, nil
				default:
					return nil, merrors.NewNotFoundError("mentor", "")
				}
			},
		}
	}

	t.Run("stored non-zero score is authoritative", func(t *testing.T) {
		stored := 0.8

		svc := NewAssignmentService(AssignmentServiceParams{
			AssignmentsRepo: &mockAssignmentsRepo{
				listByStudentFunc: func(_ context.Context, _ uuid.UUID) ([]models.AssignedMentorEntry, error) {
					return []models.AssignedMentorEntry{
						{ID: uuid.MustParse("018e1234-5678-9abc-def0-0000000000f1"), MentorID: mentorAID, Score: &stored},
					}, nil
				},
			},
			ProfilesRepo: profilesRepo(),
			// Would compute 1.0; the stored judgment must win.
			Embedder: &mockEmbedder{vectors: map[string][]float32{
				mustText(t, student): {1, 0},
				mustText(t, mentorA): {1, 0},
			}},
		})

		views, err := svc.ListAssignedMentors(context.Background(), studentID)
		require.NoError(t, err)
		require.Len(t, views, 1)

		assert.Equal(t, mentorAID, views[0].MentorID)
		assert.InDelta(t, 0.8, views[0].Score, 1e-9)
		assert.Equal(t, "Prof A", views[0].FullName)
		assert.Equal(t, []string{"Machine Learning"}, views[0].ResearchAreas)
	})

	t.Run("nil stored score falls back to computed similarity", func(t *testing.T) {
		svc := NewAssignmentService(AssignmentServiceParams{
			AssignmentsRepo: &mockAssignmentsRepo{
				listByStudentFunc: func(_ context.Context, _ uuid.UUID) ([]models.AssignedMentorEntry, error) {
					return []models.AssignedMentorEntry{
						{MentorID: mentorAID},
						{MentorID: mentorBID},
					}, nil
				},
			},
			ProfilesRepo: profilesRepo(),
			Embedder: &mockEmbedder{vectors: map[string][]float32{
				mustText(t, student): {1, 0},
				mustText(t, mentorA): {1, 0},
				mustText(t, mentorB): {0, 1},
			}},
		})

		views, err := svc.ListAssignedMentors(context.Background(), studentID)
		require.NoError(t, err)
		require.Len(t, views, 2)

		assert.InDelta(t, 1.0, views[0].Score, 1e-9)
		assert.InDelta(t, 0.5, views[1].Score, 1e-9)
	})

	t.Run("embedding failure degrades to zero score", func(t *testing.T) {
		svc := NewAssignmentService(AssignmentServiceParams{
			AssignmentsRepo: &mockAssignmentsRepo{
				listByStudentFunc: func(_ context.Context, _ uuid.UUID) ([]models.AssignedMentorEntry, error) {
					return []models.AssignedMentorEntry{{MentorID: mentorAID}}, nil
				},
			},
			ProfilesRepo: profilesRepo(),
			Embedder:     &mockEmbedder{err: merrors.NewEmbeddingUnavailableError("provider down", nil)},
		})

		views, err := svc.ListAssignedMentors(context.Background(), studentID)
		require.NoError(t, err)
		require.Len(t, views, 1)
		assert.Zero(t, views[0].Score)
	})

	t.Run("row with deleted mentor is skipped", func(t *testing.T) {
		goneID := uuid.MustParse("018e1234-5678-9abc-def0-0000000000ff")

		svc := NewAssignmentService(AssignmentServiceParams{
			AssignmentsRepo: &mockAssignmentsRepo{
				listByStudentFunc: func(_ context.Context, _ uuid.UUID) ([]models.AssignedMentorEntry, error) {
					return []models.AssignedMentorEntry{
						{MentorID: goneID},
						{MentorID: mentorAID},
					}, nil
				},
			},
			ProfilesRepo: profilesRepo(),
		})

		views, err := svc.ListAssignedMentors(context.Background(), studentID)
		require.NoError(t, err)
		require.Len(t, views, 1)
		assert.Equal(t, mentorAID, views[0].MentorID)
	})

	t.Run("unknown student returns not found", func(t *testing.T) {
		svc := NewAssignmentService(AssignmentServiceParams{
			AssignmentsRepo: &mockAssignmentsRepo{},
			ProfilesRepo:    &mockProfilesRepo{},
		})

		views, err := svc.ListAssignedMentors(context.Background(), studentID)
		assert.Nil(t, views)
		assert.ErrorIs(t, err, merrors.ErrNotFound)
	})
}

func TestAssignmentService_AcceptRecommendation(t *testing.T) {
	studentID := uuid.MustParse("018e1234-5678-9abc-def0-000000000001")
	mentorAID := uuid.MustParse("018e1234-5678-9abc-def0-00000000000a")

	student := testStudent(studentID)
	mentorA := testMentor(mentorAID, "Prof A", "Machine Learning")

	profilesRepo := &mockProfilesRepo{
		getStudentFunc: func(_ context.Context, id uuid.UUID) (*models.ProfileRecord, error) {
			if id == studentID {
				return &student, nil
			}

			return nil, merrors.NewNotFoundError("student", "")
		},
		getMentorFunc: func(_ context.Context, id uuid.UUID) (*models.ProfileRecord, error) {
			if id == mentorAID {
				return &mentorA, nil
			}

			return nil, merrors.NewNotFoundError("mentor", "")
		},
	}

	t.Run("persists pair with score", func(t *testing.T) {
		score := 0.92

		var upserted bool

		svc := NewAssignmentService(AssignmentServiceParams{
			AssignmentsRepo: &mockAssignmentsRepo{
				upsertFunc: func(_ context.Context, sID, mID uuid.UUID, s *float64) (*models.AssignedMentorEntry, error) {
					upserted = true

					assert.Equal(t, studentID, sID)
					assert.Equal(t, mentorAID, mID)
					require.NotNil(t, s)
					assert.InDelta(t, 0.92, *s, 1e-9)

					return &models.AssignedMentorEntry{StudentID: sID, MentorID: mID, Score: s}, nil
				},
			},
			ProfilesRepo: profilesRepo,
		})

		entry, err := svc.AcceptRecommendation(context.Background(), studentID, mentorAID, &score)
		require.NoError(t, err)
		require.NotNil(t, entry)
		assert.True(t, upserted)
	})

	t.Run("score outside [0,1] is rejected", func(t *testing.T) {
		score := 1.5

		svc := NewAssignmentService(AssignmentServiceParams{
			AssignmentsRepo: &mockAssignmentsRepo{},
			ProfilesRepo:    profilesRepo,
		})

		entry, err := svc.AcceptRecommendation(context.Background(), studentID, mentorAID, &score)
		assert.Nil(t, entry)
		assert.ErrorIs(t, err, merrors.ErrInvalidArgument)
	})

	t.Run("unknown mentor returns not found", func(t *testing.T) {
		svc := NewAssignmentService(AssignmentServiceParams{
			AssignmentsRepo: &mockAssignmentsRepo{},
			ProfilesRepo:    profilesRepo,
		})

		entry, err := svc.AcceptRecommendation(
			context.Background(), studentID, uuid.MustParse("018e1234-5678-9abc-def0-0000000000ff"), nil)
		assert.Nil(t, entry)
		assert.ErrorIs(t, err, merrors.ErrNotFound)
	})
}
