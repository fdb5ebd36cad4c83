package recommend

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mentormatch/backend/internal/merrors"
	"github.com/mentormatch/backend/internal/models"
)

func studentRecord() models.ProfileRecord {
	return models.ProfileRecord{
		ID:        uuid.MustParse("018e1234-5678-9abc-def0-000000000001"),
		Role:      models.RoleStudent,
		Major:     "Computer Science",
		Stream:    "B.Tech",
		Skills:    []string{"Python", "Go"},
		Interests: []string{"Machine Learning", "Distributed Systems"},
	}
}

func mentorRecord() models.ProfileRecord {
	return models.ProfileRecord{
		ID:            uuid.MustParse("018e1234-5678-9abc-def0-000000000002"),
		Role:          models.RoleMentor,
		Department:    "CSE",
		Designation:   "Associate Professor",
		ResearchAreas: []string{"Machine Learning", "Computer Vision"},
	}
}

func TestBuildProfileText_student(t *testing.T) {
	text, err := BuildProfileText(studentRecord())
	require.NoError(t, err)
	assert.Equal(t, "computer science; b.tech; python, go; machine learning, distributed systems", text)
}

func TestBuildProfileText_mentor(t *testing.T) {
	text, err := BuildProfileText(mentorRecord())
	require.NoError(t, err)
	assert.Equal(t, "cse; associate professor; machine learning, computer vision", text)
}

func TestBuildProfileText_deterministic(t *testing.T) {
	record := studentRecord()

	first, err := BuildProfileText(record)
	require.NoError(t, err)

	second, err := BuildProfileText(record)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestBuildProfileText_omitsEmptyFields(t *testing.T) {
	record := models.ProfileRecord{
		ID:     uuid.New(),
		Role:   models.RoleStudent,
		Major:  "Physics",
		Skills: []string{"  ", ""},
	}

	text, err := BuildProfileText(record)
	require.NoError(t, err)
	assert.Equal(t, "physics", text)
	assert.NotContains(t, text, "null")
}

func TestBuildProfileText_unknownRole(t *testing.T) {
	record := studentRecord()
	record.Role = "admin"

	_, err := BuildProfileText(record)
	assert.ErrorIs(t, err, merrors.ErrInvalidRecord)
}

func TestBuildProfileText_nothingEmbeddable(t *testing.T) {
	record := models.ProfileRecord{
		ID:   uuid.New(),
		Role: models.RoleMentor,
		// display-only fields do not count as semantic content
		FullName: "Dr. Example",
		Email:    "e@example.edu",
	}

	_, err := BuildProfileText(record)
	assert.ErrorIs(t, err, merrors.ErrInvalidRecord)
}
