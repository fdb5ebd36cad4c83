package models

import (
	"time"

	"github.com/google/uuid"
)

// AssignedMentorEntry is one persistent student–mentor pairing. At most one row
// exists per (student_id, mentor_id). Score is nil until a human sets one or a
// computed similarity is backfilled; a stored 0 is treated as "no judgment yet".
type AssignedMentorEntry struct {
	ID        uuid.UUID `json:"id"`
	StudentID uuid.UUID `json:"student_id"`
	MentorID  uuid.UUID `json:"mentor_id"`
	Score     *float64  `json:"score"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AssignedMentorView is an assignment merged with mentor display metadata and
// a single reconciled score, the shape the UI consumes.
type AssignedMentorView struct {
	ID            uuid.UUID `json:"id"`
	MentorID      uuid.UUID `json:"mentor_id"`
	Score         float64   `json:"score"` // reconciled, always in [0,1]
	FullName      string    `json:"full_name"`
	Designation   string    `json:"designation"`
	Department    string    `json:"department"`
	ResearchAreas []string  `json:"research_areas"`
}

// ProfileEmbedding is one stored embedding row: one vector per profile per model.
type ProfileEmbedding struct {
	ID        uuid.UUID `json:"id"`
	ProfileID uuid.UUID `json:"profile_id"`
	Role      Role      `json:"role"`
	Model     string    `json:"model"`
	TextHash  string    `json:"text_hash"` // sha256 of the built profile text
	Embedding []float32 `json:"embedding"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
