package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentormatch/backend/internal/merrors"
	"github.com/mentormatch/backend/internal/models"
)

type mockRecommendationService struct {
	recommendFunc func(ctx context.Context, studentID uuid.UUID, topK int) ([]models.RecommendationEntry, error)
}

func (m *mockRecommendationService) Recommend(
	ctx context.Context, studentID uuid.UUID, topK int,
) ([]models.RecommendationEntry, error) {
	if m.recommendFunc != nil {
		return m.recommendFunc(ctx, studentID, topK)
	}

	return nil, nil
}

func recommendationsRequest(studentID, query string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "http://test/v1/students/"+studentID+"/recommendations"+query, nil)
	req.SetPathValue("studentID", studentID)

	return req
}

func TestRecommendationsHandler_List(t *testing.T) {
	studentID := uuid.MustParse("018e1234-5678-9abc-def0-000000000001")
	mentorID := uuid.MustParse("018e1234-5678-9abc-def0-00000000000a")

	t.Run("returns ranked recommendations", func(t *testing.T) {
		mock := &mockRecommendationService{
			recommendFunc: func(_ context.Context, id uuid.UUID, topK int) ([]models.RecommendationEntry, error) {
				assert.Equal(t, studentID, id)
				assert.Equal(t, 5, topK)

				return []models.RecommendationEntry{
					{MentorID: mentorID, Score: 0.93, Reason: "Shares interest in: machine learning", FullName: "Prof A"},
				}, nil
			},
		}

		handler := NewRecommendationsHandler(mock, 5, 50)
		rec := httptest.NewRecorder()

		handler.List(rec, recommendationsRequest(studentID.String(), ""))

		require.Equal(t, http.StatusOK, rec.Code)

		var resp RecommendationsResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Len(t, resp.Recommendations, 1)
		assert.Equal(t, mentorID, resp.Recommendations[0].MentorID)
		assert.InDelta(t, 0.93, resp.Recommendations[0].Score, 1e-9)
	})

	t.Run("clamps topK to the configured max", func(t *testing.T) {
		var gotTopK int

		mock := &mockRecommendationService{
			recommendFunc: func(_ context.Context, _ uuid.UUID, topK int) ([]models.RecommendationEntry, error) {
				gotTopK = topK

				return nil, nil
			},
		}

		handler := NewRecommendationsHandler(mock, 5, 50)
		rec := httptest.NewRecorder()

		handler.List(rec, recommendationsRequest(studentID.String(), "?topK=500"))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 50, gotTopK)
	})

	t.Run("non-positive topK returns 400", func(t *testing.T) {
		handler := NewRecommendationsHandler(&mockRecommendationService{}, 5, 50)
		rec := httptest.NewRecorder()

		handler.List(rec, recommendationsRequest(studentID.String(), "?topK=0"))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid student id returns 400", func(t *testing.T) {
		handler := NewRecommendationsHandler(&mockRecommendationService{}, 5, 50)
		rec := httptest.NewRecorder()

		handler.List(rec, recommendationsRequest("not-a-uuid", ""))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown student returns 404", func(t *testing.T) {
		mock := &mockRecommendationService{
			recommendFunc: func(_ context.Context, _ uuid.UUID, _ int) ([]models.RecommendationEntry, error) {
				return nil, merrors.NewNotFoundError("student", "")
			},
		}

		handler := NewRecommendationsHandler(mock, 5, 50)
		rec := httptest.NewRecorder()

		handler.List(rec, recommendationsRequest(studentID.String(), ""))

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("provider outage returns 503", func(t *testing.T) {
		mock := &mockRecommendationService{
			recommendFunc: func(_ context.Context, _ uuid.UUID, _ int) ([]models.RecommendationEntry, error) {
				return nil, merrors.NewEmbeddingUnavailableError("provider down", nil)
			},
		}

		handler := NewRecommendationsHandler(mock, 5, 50)
		rec := httptest.NewRecorder()

		handler.List(rec, recommendationsRequest(studentID.String(), ""))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("empty result is an empty array, not null", func(t *testing.T) {
		handler := NewRecommendationsHandler(&mockRecommendationService{}, 5, 50)
		rec := httptest.NewRecorder()

		handler.List(rec, recommendationsRequest(studentID.String(), ""))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"recommendations":[]}`, rec.Body.String())
	})
}
