// Package service contains the application services that sit between the HTTP
// handlers and the repositories.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mentormatch/backend/internal/embeddings"
	"github.com/mentormatch/backend/internal/merrors"
	"github.com/mentormatch/backend/internal/models"
	"github.com/mentormatch/backend/internal/observability"
	"github.com/mentormatch/backend/internal/recommend"
	"github.com/mentormatch/backend/pkg/cache"
)

const profileEmbeddingCacheName = "profile_embedding"

// ProfilesRepositoryForRecommend provides the profile reads recommendation needs.
type ProfilesRepositoryForRecommend interface {
	GetStudent(ctx context.Context, id uuid.UUID) (*models.ProfileRecord, error)
	ListMentors(ctx context.Context) ([]models.ProfileRecord, error)
}

// AssignmentsRepositoryForRecommend provides the assignment reads recommendation needs.
type AssignmentsRepositoryForRecommend interface {
	AssignedMentorIDs(ctx context.Context, studentID uuid.UUID) (map[uuid.UUID]struct{}, error)
}

// ProfileEmbeddingStore persists computed profile embeddings. May be nil
// (embeddings are then recomputed per request, subject to the cache).
type ProfileEmbeddingStore interface {
	Upsert(ctx context.Context, profileID uuid.UUID, role models.Role, model, textHash string, embedding []float32) error
}

// RecommendationService produces ranked mentor recommendations for a student.
// It implements recommend.Embedder by fronting the provider client with an
// LRU + singleflight cache keyed by the exact built profile text, so identical
// profiles cost at most one provider call per cache lifetime.
type RecommendationService struct {
	profilesRepo     ProfilesRepositoryForRecommend
	assignmentsRepo  AssignmentsRepositoryForRecommend
	embeddingStore   ProfileEmbeddingStore
	embeddingClient  embeddings.Client
	model            string
	dimensions       int
	embeddingCache   *cache.LoaderCache[[]float32]
	cacheMetrics     observability.CacheMetrics
	embeddingMetrics observability.EmbeddingMetrics
	assembler        *recommend.Assembler
	logger           *slog.Logger
}

// RecommendationServiceParams configures RecommendationService.
// EmbeddingCache, EmbeddingStore, and the metrics may be nil.
// Dimensions <= 0 disables the dimension guard.
type RecommendationServiceParams struct {
	ProfilesRepo     ProfilesRepositoryForRecommend
	AssignmentsRepo  AssignmentsRepositoryForRecommend
	EmbeddingStore   ProfileEmbeddingStore
	EmbeddingClient  embeddings.Client
	Model            string
	Dimensions       int
	EmbeddingCache   *cache.LoaderCache[[]float32]
	CacheMetrics     observability.CacheMetrics
	EmbeddingMetrics observability.EmbeddingMetrics
	MaxConcurrent    int
	Logger           *slog.Logger
}

// NewRecommendationService creates a RecommendationService.
func NewRecommendationService(p RecommendationServiceParams) *RecommendationService {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &RecommendationService{
		profilesRepo:     p.ProfilesRepo,
		assignmentsRepo:  p.AssignmentsRepo,
		embeddingStore:   p.EmbeddingStore,
		embeddingClient:  p.EmbeddingClient,
		model:            p.Model,
		dimensions:       p.Dimensions,
		embeddingCache:   p.EmbeddingCache,
		cacheMetrics:     p.CacheMetrics,
		embeddingMetrics: p.EmbeddingMetrics,
		logger:           logger,
	}

	s.assembler = recommend.NewAssembler(recommend.AssemblerParams{
		Embedder:      s,
		Logger:        logger,
		MaxConcurrent: p.MaxConcurrent,
	})

	return s
}

// Recommend returns up to topK mentors ranked by semantic similarity to the
// student's profile, excluding mentors already assigned to the student.
// topK must be positive; the handler applies defaults and caps before calling.
func (s *RecommendationService) Recommend(
	ctx context.Context, studentID uuid.UUID, topK int,
) ([]models.RecommendationEntry, error) {
	student, err := s.profilesRepo.GetStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}

	mentors, err := s.profilesRepo.ListMentors(ctx)
	if err != nil {
		return nil, fmt.Errorf("list mentors: %w", err)
	}

	assigned, err := s.assignmentsRepo.AssignedMentorIDs(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("assigned mentor ids: %w", err)
	}

	entries, err := s.assembler.Assemble(ctx, *student, mentors, assigned, topK)
	if err != nil {
		return nil, err
	}

	// Best effort: the ranking already succeeded, a failed persist only costs
	// the next refresh job a recomputation.
	s.persistEmbedding(ctx, *student)

	return entries, nil
}

// EmbedText returns the embedding vector for text, serving repeats from the
// cache. Concurrent misses for the same text are coalesced; a burst of
// requests embedding the same profile triggers one provider call.
func (s *RecommendationService) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if s.embeddingCache == nil {
		return s.embedDirect(ctx, text)
	}

	vec, hit, err := s.embeddingCache.Get(ctx, text, func(ctx context.Context) ([]float32, error) {
		return s.embedDirect(ctx, text)
	})
	if err != nil {
		return nil, err
	}

	if s.cacheMetrics != nil {
		if hit {
			s.cacheMetrics.RecordHit(ctx, profileEmbeddingCacheName)
		} else {
			s.cacheMetrics.RecordMiss(ctx, profileEmbeddingCacheName)
		}
	}

	return vec, nil
}

// embedDirect calls the provider for a single text and guards the configured
// dimensionality.
func (s *RecommendationService) embedDirect(ctx context.Context, text string) ([]float32, error) {
	start := time.Now()

	vectors, err := s.embeddingClient.CreateEmbeddings(ctx, []string{text})

	if s.embeddingMetrics != nil {
		status := "success"
		if err != nil {
			status = "error"
		}

		s.embeddingMetrics.RecordRequest(ctx, status)
		s.embeddingMetrics.RecordDuration(ctx, time.Since(start), status)
	}

	if err != nil {
		return nil, err
	}

	vec := vectors[0]
	if s.dimensions > 0 && len(vec) != s.dimensions {
		return nil, merrors.NewDimensionMismatchError(s.dimensions, len(vec))
	}

	return vec, nil
}

// persistEmbedding writes the profile's current embedding through the store.
// Failures are logged, never propagated.
func (s *RecommendationService) persistEmbedding(ctx context.Context, record models.ProfileRecord) {
	if s.embeddingStore == nil {
		return
	}

	text, err := recommend.BuildProfileText(record)
	if err != nil {
		return
	}

	// Cache hit in the common path: the vector was just computed for ranking.
	vec, err := s.EmbedText(ctx, text)
	if err != nil {
		s.logger.Warn("recommend: embedding persist skipped", "profile_id", record.ID, "error", err)

		return
	}

	if err := s.embeddingStore.Upsert(ctx, record.ID, record.Role, s.model, recommend.HashText(text), vec); err != nil {
		s.logger.Warn("recommend: embedding persist failed", "profile_id", record.ID, "error", err)
	}
}
