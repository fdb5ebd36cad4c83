package recommend

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/mentormatch/backend/internal/merrors"
	"github.com/mentormatch/backend/internal/models"
)

// reasonFallback is used when no interest overlaps a mentor's research areas.
const reasonFallback = "Semantic profile match"

const defaultMaxConcurrent = 8

// Embedder supplies one embedding vector per text. The service layer backs it
// with a cached, deduplicated client; tests back it with fixed vectors.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// Assembler orchestrates text building, embedding, and ranking for one
// student, then merges ranker output with mentor metadata and a human-readable
// reason per recommendation.
type Assembler struct {
	embedder      Embedder
	logger        *slog.Logger
	maxConcurrent int
}

// AssemblerParams configures an Assembler. Logger nil means slog.Default();
// MaxConcurrent <= 0 means the default fan-out cap.
type AssemblerParams struct {
	Embedder      Embedder
	Logger        *slog.Logger
	MaxConcurrent int
}

// NewAssembler creates an Assembler.
func NewAssembler(p AssemblerParams) *Assembler {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	maxConcurrent := p.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxConcurrent
	}

	return &Assembler{
		embedder:      p.Embedder,
		logger:        logger,
		maxConcurrent: maxConcurrent,
	}
}

// Assemble produces the ranked recommendation list for one student.
//
// Mentors in assigned are excluded from the candidate pool: a student is never
// recommended someone they are already paired with. A mentor whose text cannot
// be built or whose embedding call fails is dropped with a warning rather than
// failing the request; a failure on the student's own embedding fails the
// whole operation. Candidate embeddings are fetched concurrently, but the
// final order is deterministic (ties broken by mentor ID in Rank). If ctx is
// cancelled mid fan-out the whole request fails; no partial result is returned.
func (a *Assembler) Assemble(
	ctx context.Context,
	student models.ProfileRecord,
	mentors []models.ProfileRecord,
	assigned map[uuid.UUID]struct{},
	topK int,
) ([]models.RecommendationEntry, error) {
	if topK <= 0 {
		return nil, merrors.NewInvalidArgumentError("topK", "topK must be positive")
	}

	studentText, err := BuildProfileText(student)
	if err != nil {
		return nil, err
	}

	studentVec, err := a.embedder.EmbedText(ctx, studentText)
	if err != nil {
		return nil, err
	}

	// Build texts first so records with nothing embeddable are dropped before
	// any provider call is spent on them.
	pool := make([]models.ProfileRecord, 0, len(mentors))
	texts := make([]string, 0, len(mentors))

	for _, mentor := range mentors {
		if _, ok := assigned[mentor.ID]; ok {
			continue
		}

		text, buildErr := BuildProfileText(mentor)
		if buildErr != nil {
			a.logger.Warn("recommend: skipping mentor with no embeddable profile",
				"mentor_id", mentor.ID, "error", buildErr)

			continue
		}

		pool = append(pool, mentor)
		texts = append(texts, text)
	}

	vectors := make([][]float32, len(pool))
	embedErrs := make([]error, len(pool))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.maxConcurrent)

	for i := range pool {
		g.Go(func() error {
			vec, embedErr := a.embedder.EmbedText(gctx, texts[i])
			if embedErr != nil {
				// Absorbed: one bad mentor profile must not deny
				// recommendations to the student.
				embedErrs[i] = embedErr

				return nil
			}

			vectors[i] = vec

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Cancellation fails the request outright; partial results would be
	// indistinguishable from a complete ranking.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	byID := make(map[uuid.UUID]models.ProfileRecord, len(pool))
	candidates := make([]Candidate, 0, len(pool))

	for i, mentor := range pool {
		if embedErrs[i] != nil {
			a.logger.Warn("recommend: dropping mentor after embedding failure",
				"mentor_id", mentor.ID, "error", embedErrs[i])

			continue
		}

		byID[mentor.ID] = mentor
		candidates = append(candidates, Candidate{MentorID: mentor.ID, Vector: vectors[i]})
	}

	ranked, err := Rank(studentVec, candidates, topK)
	if err != nil {
		return nil, err
	}

	entries := make([]models.RecommendationEntry, 0, len(ranked))

	for _, r := range ranked {
		mentor := byID[r.MentorID]
		entries = append(entries, models.RecommendationEntry{
			MentorID:      mentor.ID,
			Score:         r.Score,
			Reason:        buildReason(student, mentor),
			FullName:      mentor.FullName,
			Designation:   mentor.Designation,
			Department:    mentor.Department,
			ResearchAreas: mentor.ResearchAreas,
		})
	}

	return entries, nil
}

// buildReason names the student interests that overlap the mentor's research
// areas (case-insensitive substring match in either direction), or falls back
// to a generic semantic-match reason.
func buildReason(student models.ProfileRecord, mentor models.ProfileRecord) string {
	var shared []string

	seen := make(map[string]struct{})

	for _, interest := range student.Interests {
		interest = strings.ToLower(strings.TrimSpace(interest))
		if interest == "" {
			continue
		}

		if _, dup := seen[interest]; dup {
			continue
		}

		for _, area := range mentor.ResearchAreas {
			area = strings.ToLower(strings.TrimSpace(area))
			if area == "" {
				continue
			}

			if strings.Contains(area, interest) || strings.Contains(interest, area) {
				shared = append(shared, interest)
				seen[interest] = struct{}{}

				break
			}
		}
	}

	if len(shared) == 0 {
		return reasonFallback
	}

	return "Shares interest in: " + strings.Join(shared, ", ")
}
