// Package recommend implements the mentor recommendation engine: profile text
// building, similarity ranking, recommendation assembly, and assignment score
// reconciliation.
package recommend

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/mentormatch/backend/internal/merrors"
	"github.com/mentormatch/backend/internal/models"
)

const (
	fieldSeparator = "; "
	listSeparator  = ", "
)

// BuildProfileText deterministically serializes a profile record into one
// normalized text blob for embedding: lower-cased, fields joined with a stable
// separator, empty fields omitted. The same record always produces
// byte-identical text, which is what makes embeddings cacheable by text.
//
// Students contribute major, stream, skills, and interests; mentors contribute
// department, designation, and research areas.
func BuildProfileText(record models.ProfileRecord) (string, error) {
	var fields []string

	switch record.Role {
	case models.RoleStudent:
		fields = appendField(fields, record.Major)
		fields = appendField(fields, record.Stream)
		fields = appendField(fields, joinList(record.Skills))
		fields = appendField(fields, joinList(record.Interests))
	case models.RoleMentor:
		fields = appendField(fields, record.Department)
		fields = appendField(fields, record.Designation)
		fields = appendField(fields, joinList(record.ResearchAreas))
	default:
		return "", merrors.NewInvalidRecordError(record.ID.String(), "profile has unknown role")
	}

	if len(fields) == 0 {
		return "", merrors.NewInvalidRecordError(record.ID.String(), "profile has no embeddable content")
	}

	return strings.Join(fields, fieldSeparator), nil
}

// HashText returns the hex SHA-256 of a built profile text. Stored alongside
// the embedding so a stale vector can be detected without re-embedding.
func HashText(text string) string {
	sum := sha256.Sum256([]byte(text))

	return hex.EncodeToString(sum[:])
}

// appendField appends the lower-cased, trimmed value when non-empty.
func appendField(fields []string, value string) []string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return fields
	}

	return append(fields, value)
}

// joinList joins the trimmed, non-empty items with the list separator.
// Order is preserved: list fields are ordered sequences, not sets.
func joinList(items []string) string {
	kept := make([]string, 0, len(items))

	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}

		kept = append(kept, item)
	}

	return strings.Join(kept, listSeparator)
}
