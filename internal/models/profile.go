// Package models contains the data structures shared by the recommendation
// engine, repositories, and API layer.
package models

import "github.com/google/uuid"

// Role identifies which profile table a record came from.
type Role string

// Profile roles.
const (
	RoleStudent Role = "student"
	RoleMentor  Role = "mentor"
)

// Valid reports whether the role is one of the known profile roles.
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleMentor
}

// ProfileRecord is a read-only snapshot of a student or mentor profile, fetched
// fresh per recommendation request. List-valued fields are always normalized
// []string; the repositories split comma-joined text columns before anything
// else sees them.
type ProfileRecord struct {
	ID            uuid.UUID `json:"id"`
	Role          Role      `json:"role"`
	FullName      string    `json:"full_name"`
	Email         string    `json:"email"`
	Major         string    `json:"major"`          // students
	Stream        string    `json:"stream"`         // students
	Skills        []string  `json:"skills"`         // students
	Interests     []string  `json:"interests"`      // students
	Department    string    `json:"department"`     // mentors
	Designation   string    `json:"designation"`    // mentors
	ResearchAreas []string  `json:"research_areas"` // mentors
}
