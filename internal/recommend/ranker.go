package recommend

import (
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/mentormatch/backend/internal/merrors"
)

// Candidate pairs a mentor ID with that mentor's profile embedding.
type Candidate struct {
	MentorID uuid.UUID
	Vector   []float32
}

// RankedMentor is one ranker output row: a mentor and its normalized score.
type RankedMentor struct {
	MentorID uuid.UUID
	Score    float64 // in [0,1]
}

// CosineSimilarity returns the cosine of the angle between a and b, in [-1,1].
// If either vector has zero norm the similarity is defined as 0 (not NaN), so
// a degenerate profile never outranks a real match and never crashes ranking.
// Returns DimensionMismatchError when the vectors differ in length.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, merrors.NewDimensionMismatchError(len(a), len(b))
	}

	var dot, normA, normB float64

	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0, nil
	}

	cos := dot / (math.Sqrt(normA) * math.Sqrt(normB))

	// Float error can push the ratio fractionally outside [-1,1].
	return math.Max(-1, math.Min(1, cos)), nil
}

// SimilarityScore maps cosine similarity from [-1,1] into the user-facing
// [0,1] range via (cos+1)/2. Zero-norm inputs score 0.
func SimilarityScore(a, b []float32) (float64, error) {
	cos, err := CosineSimilarity(a, b)
	if err != nil {
		return 0, err
	}

	if isZeroNorm(a) || isZeroNorm(b) {
		return 0, nil
	}

	return (cos + 1) / 2, nil
}

// Rank scores every candidate against the student vector, sorts descending by
// score with ties broken ascending by mentor ID, and truncates to topK.
//
// The tie-break makes the output fully deterministic: repeated calls with
// identical inputs return an identical sequence. Fewer than topK candidates is
// not an error; all of them are returned, sorted. topK <= 0 fails with
// InvalidArgumentError, and any candidate whose vector length differs from the
// student's fails the whole call with DimensionMismatchError.
func Rank(studentVec []float32, candidates []Candidate, topK int) ([]RankedMentor, error) {
	if topK <= 0 {
		return nil, merrors.NewInvalidArgumentError("topK", "topK must be positive")
	}

	ranked := make([]RankedMentor, 0, len(candidates))

	for _, cand := range candidates {
		score, err := SimilarityScore(studentVec, cand.Vector)
		if err != nil {
			return nil, err
		}

		ranked = append(ranked, RankedMentor{MentorID: cand.MentorID, Score: score})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}

		return ranked[i].MentorID.String() < ranked[j].MentorID.String()
	})

	if len(ranked) > topK {
		ranked = ranked[:topK]
	}

	return ranked, nil
}

// isZeroNorm reports whether every component of v is zero.
func isZeroNorm(v []float32) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}

	return true
}
