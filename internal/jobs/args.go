// Package jobs provides River job workers for asynchronous embedding refresh.
package jobs

import (
	"github.com/google/uuid"

	"github.com/mentormatch/backend/internal/models"
)

// ProfileEmbeddingArgs contains the arguments for a profile embedding refresh
// job, enqueued after a profile edit so the stored vector catches up with the
// new text.
type ProfileEmbeddingArgs struct {
	// ProfileID is the UUID of the student or mentor to re-embed.
	ProfileID uuid.UUID `json:"profile_id"`

	// Role selects which profile table the ID refers to.
	Role models.Role `json:"role"`
}

// Kind returns the job type identifier for River.
func (ProfileEmbeddingArgs) Kind() string { return "profile_embedding" }
