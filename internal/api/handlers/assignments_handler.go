package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/mentormatch/backend/internal/api/response"
	"github.com/mentormatch/backend/internal/api/validation"
	"github.com/mentormatch/backend/internal/models"
)

// AssignmentService reads and writes persistent student–mentor pairings.
type AssignmentService interface {
	ListAssignedMentors(ctx context.Context, studentID uuid.UUID) ([]models.AssignedMentorView, error)
	AcceptRecommendation(ctx context.Context, studentID, mentorID uuid.UUID, score *float64) (*models.AssignedMentorEntry, error)
}

// AssignmentsHandler handles HTTP requests for assigned mentors.
type AssignmentsHandler struct {
	service AssignmentService
}

// NewAssignmentsHandler creates a new assignments handler.
func NewAssignmentsHandler(service AssignmentService) *AssignmentsHandler {
	return &AssignmentsHandler{service: service}
}

// AssignedMentorsResponse is the response for GET /v1/students/{studentID}/assigned-mentors.
type AssignedMentorsResponse struct {
	AssignedMentors []models.AssignedMentorView `json:"assigned_mentors"`
}

// AcceptAssignmentRequest is the body for POST /v1/students/{studentID}/assigned-mentors.
// Score is the similarity carried over from the recommendation; omit it for an
// assignment without a judgment yet.
type AcceptAssignmentRequest struct {
	MentorID string   `json:"mentor_id" validate:"required,uuid"`
	Score    *float64 `json:"score"     validate:"omitempty,gte=0,lte=1"`
}

// List handles GET /v1/students/{studentID}/assigned-mentors.
func (h *AssignmentsHandler) List(w http.ResponseWriter, r *http.Request) {
	studentID, err := uuid.Parse(r.PathValue("studentID"))
	if err != nil {
		response.RespondBadRequest(w, "studentID must be a valid UUID")

		return
	}

	views, err := h.service.ListAssignedMentors(r.Context(), studentID)
	if err != nil {
		respondServiceError(w, err)

		return
	}

	if views == nil {
		views = []models.AssignedMentorView{}
	}

	response.RespondJSON(w, http.StatusOK, AssignedMentorsResponse{AssignedMentors: views})
}

// Create handles POST /v1/students/{studentID}/assigned-mentors.
func (h *AssignmentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	studentID, err := uuid.Parse(r.PathValue("studentID"))
	if err != nil {
		response.RespondBadRequest(w, "studentID must be a valid UUID")

		return
	}

	var req AcceptAssignmentRequest

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&req); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			response.RespondError(w, http.StatusRequestEntityTooLarge,
				"Request Entity Too Large", "request body exceeds maximum allowed size")

			return
		}

		response.RespondBadRequest(w, "Invalid request body")

		return
	}

	if details := validation.ValidateStruct(req); details != nil {
		response.RespondProblem(w, response.ProblemDetails{
			Type:   "about:blank",
			Title:  "Validation Error",
			Status: http.StatusUnprocessableEntity,
			Errors: details,
		})

		return
	}

	mentorID := uuid.MustParse(req.MentorID) // validated above

	entry, err := h.service.AcceptRecommendation(r.Context(), studentID, mentorID, req.Score)
	if err != nil {
		respondServiceError(w, err)

		return
	}

	response.RespondJSON(w, http.StatusCreated, entry)
}
