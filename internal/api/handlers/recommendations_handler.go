package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/mentormatch/backend/internal/api/response"
	"github.com/mentormatch/backend/internal/models"
)

// RecommendationService produces ranked mentor recommendations for a student.
type RecommendationService interface {
	Recommend(ctx context.Context, studentID uuid.UUID, topK int) ([]models.RecommendationEntry, error)
}

// RecommendationsHandler handles HTTP requests for mentor recommendations.
type RecommendationsHandler struct {
	service     RecommendationService
	topKDefault int
	topKMax     int
}

// NewRecommendationsHandler creates a new recommendations handler.
func NewRecommendationsHandler(service RecommendationService, topKDefault, topKMax int) *RecommendationsHandler {
	return &RecommendationsHandler{service: service, topKDefault: topKDefault, topKMax: topKMax}
}

// RecommendationsResponse is the response for GET /v1/students/{studentID}/recommendations.
type RecommendationsResponse struct {
	Recommendations []models.RecommendationEntry `json:"recommendations"`
}

// List handles GET /v1/students/{studentID}/recommendations.
// topK is optional; absent means the configured default, larger than the
// configured cap is clamped, zero or negative is a 400.
func (h *RecommendationsHandler) List(w http.ResponseWriter, r *http.Request) {
	studentID, err := uuid.Parse(r.PathValue("studentID"))
	if err != nil {
		response.RespondBadRequest(w, "studentID must be a valid UUID")

		return
	}

	topK := h.topKDefault

	if raw := r.URL.Query().Get("topK"); raw != "" {
		topK, err = strconv.Atoi(raw)
		if err != nil || topK <= 0 {
			response.RespondBadRequest(w, "topK must be a positive integer")

			return
		}
	}

	if topK > h.topKMax {
		topK = h.topKMax
	}

	entries, err := h.service.Recommend(r.Context(), studentID, topK)
	if err != nil {
		respondServiceError(w, err)

		return
	}

	if entries == nil {
		entries = []models.RecommendationEntry{}
	}

	response.RespondJSON(w, http.StatusOK, RecommendationsResponse{Recommendations: entries})
}
