package models

import "github.com/google/uuid"

// RecommendationEntry is one ranked mentor suggestion for a student. Entries
// are transient: they exist for the lifetime of a single request and are only
// persisted when a recommendation is accepted into an assignment.
type RecommendationEntry struct {
	MentorID      uuid.UUID `json:"mentor_id"`
	Score         float64   `json:"score"` // normalized similarity in [0,1]
	Reason        string    `json:"reason"`
	FullName      string    `json:"full_name"`
	Designation   string    `json:"designation"`
	Department    string    `json:"department"`
	ResearchAreas []string  `json:"research_areas"`
}
