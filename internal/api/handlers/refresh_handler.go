package handlers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/mentormatch/backend/internal/api/response"
	"github.com/mentormatch/backend/internal/jobs"
	"github.com/mentormatch/backend/internal/models"
)

// RefreshHandler enqueues profile embedding refresh jobs after profile edits.
type RefreshHandler struct {
	inserter jobs.JobInserter
}

// NewRefreshHandler creates a new refresh handler. inserter may be nil when
// background processing is disabled; refresh requests then answer 503.
func NewRefreshHandler(inserter jobs.JobInserter) *RefreshHandler {
	return &RefreshHandler{inserter: inserter}
}

// RefreshResponse is the response for POST /v1/profiles/{role}/{id}/refresh.
type RefreshResponse struct {
	Status string `json:"status"`
}

// Refresh handles POST /v1/profiles/{role}/{id}/refresh.
// The refresh itself runs asynchronously; 202 means the job is queued, not done.
func (h *RefreshHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	role := models.Role(r.PathValue("role"))
	if !role.Valid() {
		response.RespondBadRequest(w, "role must be student or mentor")

		return
	}

	profileID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		response.RespondBadRequest(w, "id must be a valid UUID")

		return
	}

	if h.inserter == nil {
		response.RespondServiceUnavailable(w, "background processing is disabled")

		return
	}

	if err := h.inserter.InsertProfileEmbeddingJob(r.Context(), jobs.ProfileEmbeddingArgs{
		ProfileID: profileID,
		Role:      role,
	}); err != nil {
		respondServiceError(w, err)

		return
	}

	response.RespondJSON(w, http.StatusAccepted, RefreshResponse{Status: "queued"})
}
