package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"golang.org/x/time/rate"

	"github.com/mentormatch/backend/internal/api/handlers"
	"github.com/mentormatch/backend/internal/api/middleware"
	"github.com/mentormatch/backend/internal/config"
	"github.com/mentormatch/backend/internal/embeddings"
	"github.com/mentormatch/backend/internal/googleai"
	"github.com/mentormatch/backend/internal/jobs"
	"github.com/mentormatch/backend/internal/observability"
	"github.com/mentormatch/backend/internal/openai"
	"github.com/mentormatch/backend/internal/repository"
	"github.com/mentormatch/backend/internal/service"
	"github.com/mentormatch/backend/pkg/cache"
)

// App holds all server dependencies and coordinates startup and shutdown.
type App struct {
	cfg    *config.Config
	server *http.Server
	river  *river.Client[pgx.Tx]
}

var errUnsupportedEmbeddingProvider = errors.New("unsupported embedding provider")

// newEmbeddingClient builds the provider client selected by EMBEDDING_PROVIDER.
// The mock provider is deterministic and needs no API key; it exists for local
// runs and CI.
func newEmbeddingClient(ctx context.Context, cfg *config.Config) (embeddings.Client, error) {
	switch cfg.EmbeddingProvider {
	case config.ProviderOpenAI:
		return openai.NewClient(cfg.EmbeddingAPIKey,
			openai.WithModel(cfg.EmbeddingModel),
			openai.WithDimensions(cfg.EmbeddingDimensions),
		), nil
	case config.ProviderGoogle:
		client, err := googleai.NewClient(ctx, cfg.EmbeddingAPIKey,
			googleai.WithModel(cfg.EmbeddingModel),
			googleai.WithDimensions(cfg.EmbeddingDimensions),
		)
		if err != nil {
			return nil, fmt.Errorf("create google embedding client: %w", err)
		}

		return client, nil
	case config.ProviderMock:
		return embeddings.NewMockClient(cfg.EmbeddingDimensions), nil
	default:
		return nil, fmt.Errorf("%w: %s", errUnsupportedEmbeddingProvider, cfg.EmbeddingProvider)
	}
}

// NewApp builds and wires all components. It does not start the HTTP server or
// River; call Run to start and block until shutdown or failure.
func NewApp(cfg *config.Config, db *pgxpool.Pool) (*App, error) {
	embeddingClient, err := newEmbeddingClient(context.Background(), cfg)
	if err != nil {
		return nil, err
	}

	// Metrics go to the global meter provider; a no-op unless the process
	// installs an SDK exporter.
	meter := otel.Meter("mentormatch")

	cacheMetrics, err := observability.NewCacheMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("create cache metrics: %w", err)
	}

	embeddingMetrics, err := observability.NewEmbeddingMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("create embedding metrics: %w", err)
	}

	profilesRepo := repository.NewProfilesRepository(db)
	assignmentsRepo := repository.NewAssignmentsRepository(db)
	embeddingsRepo := repository.NewProfileEmbeddingsRepository(db)

	embeddingCache, err := cache.NewLoaderCache[[]float32](cfg.EmbeddingCacheSize)
	if err != nil {
		return nil, fmt.Errorf("create embedding cache: %w", err)
	}

	recommendationService := service.NewRecommendationService(service.RecommendationServiceParams{
		ProfilesRepo:     profilesRepo,
		AssignmentsRepo:  assignmentsRepo,
		EmbeddingStore:   embeddingsRepo,
		EmbeddingClient:  embeddingClient,
		Model:            cfg.EmbeddingModel,
		Dimensions:       cfg.EmbeddingDimensions,
		EmbeddingCache:   embeddingCache,
		CacheMetrics:     cacheMetrics,
		EmbeddingMetrics: embeddingMetrics,
		Logger:           slog.Default(),
	})

	assignmentService := service.NewAssignmentService(service.AssignmentServiceParams{
		AssignmentsRepo: assignmentsRepo,
		ProfilesRepo:    profilesRepo,
		Embedder:        recommendationService,
		Logger:          slog.Default(),
	})

	var (
		riverClient *river.Client[pgx.Tx]
		jobInserter jobs.JobInserter
	)

	if cfg.RiverEnabled {
		riverWorkers := river.NewWorkers()
		river.AddWorker(riverWorkers, jobs.NewProfileEmbeddingWorker(jobs.ProfileEmbeddingWorkerDeps{
			Profiles:        profilesRepo,
			EmbeddingClient: embeddingClient,
			Embeddings:      embeddingsRepo,
			Assignments:     assignmentsRepo,
			Model:           cfg.EmbeddingModel,
			Dimensions:      cfg.EmbeddingDimensions,
			RateLimiter:     rate.NewLimiter(rate.Limit(cfg.EmbeddingRateLimit), 1),
			Logger:          slog.Default(),
		}))

		riverClient, err = river.NewClient(riverpgxv5.New(db), &river.Config{
			Queues: map[string]river.QueueConfig{
				river.QueueDefault: {MaxWorkers: cfg.RiverWorkers},
			},
			Workers:      riverWorkers,
			MaxAttempts:  cfg.RiverMaxAttempts,
			ErrorHandler: &jobs.ErrorHandler{},
		})
		if err != nil {
			return nil, fmt.Errorf("create River client: %w", err)
		}

		jobInserter = jobs.NewRiverJobInserter(riverClient)

		slog.Info("River job queue enabled",
			"workers", cfg.RiverWorkers,
			"max_attempts", cfg.RiverMaxAttempts,
			"rate_limit", cfg.EmbeddingRateLimit,
		)
	} else {
		slog.Info("River job queue disabled (RIVER_ENABLED=false); refresh endpoint will answer 503")
	}

	server := newHTTPServer(cfg,
		handlers.NewHealthHandler(db),
		handlers.NewRecommendationsHandler(recommendationService, cfg.RecommendTopKDefault, cfg.RecommendTopKMax),
		handlers.NewAssignmentsHandler(assignmentService),
		handlers.NewRefreshHandler(jobInserter),
	)

	return &App{cfg: cfg, server: server, river: riverClient}, nil
}

// newHTTPServer builds the HTTP server and muxes (no auth on /health, API key
// on /v1/). Handler chain: RequestID -> otelhttp(Logging(mux)) so access logs
// get trace_id/span_id from context.
func newHTTPServer(
	cfg *config.Config,
	health *handlers.HealthHandler,
	recommendations *handlers.RecommendationsHandler,
	assignments *handlers.AssignmentsHandler,
	refresh *handlers.RefreshHandler,
) *http.Server {
	public := http.NewServeMux()
	public.HandleFunc("GET /health", health.Check)

	protected := http.NewServeMux()
	protected.HandleFunc("GET /v1/students/{studentID}/recommendations", recommendations.List)
	protected.HandleFunc("GET /v1/students/{studentID}/assigned-mentors", assignments.List)
	protected.HandleFunc("POST /v1/students/{studentID}/assigned-mentors", assignments.Create)
	protected.HandleFunc("POST /v1/profiles/{role}/{id}/refresh", refresh.Refresh)

	protectedWithAuth := middleware.Auth(cfg.APIKey)(middleware.MaxBody(cfg.MaxRequestBodyBytes)(protected))
	mux := http.NewServeMux()
	mux.Handle("/v1/", protectedWithAuth)
	mux.Handle("/", public)

	otelOpts := []otelhttp.Option{
		// Skip tracing and HTTP metrics for health checks to reduce noise.
		otelhttp.WithFilter(func(r *http.Request) bool {
			return r.URL.Path != "/health"
		}),
	}

	// Logging runs inside otelhttp so r.Context() has the span when we log.
	inner := middleware.Logging(mux)
	handler := otelhttp.NewHandler(inner, "mentormatch-api", otelOpts...)
	handler = middleware.RequestID(handler)

	const (
		readTimeout  = 15 * time.Second
		writeTimeout = 30 * time.Second
		idleTimeout  = 60 * time.Second
	)

	return &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}
}

// Run starts the HTTP server and River, then blocks until ctx is cancelled
// (e.g. signal) or a component fails. Caller should then call Shutdown.
func (a *App) Run(ctx context.Context) error {
	runErr := make(chan error, 1)

	riverCtx, cancelRiver := context.WithCancel(ctx)
	defer cancelRiver()

	if a.river != nil {
		go func() {
			if err := a.river.Start(riverCtx); err != nil && !errors.Is(err, context.Canceled) {
				select {
				case runErr <- fmt.Errorf("river: %w", err):
				default:
				}
			}
		}()
	}

	go func() {
		slog.Info("Starting server", "port", a.cfg.Port, "provider", a.cfg.EmbeddingProvider)

		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			select {
			case runErr <- fmt.Errorf("server: %w", err):
			default:
			}
		}
	}()

	select {
	case err := <-runErr:
		cancelRiver()

		return err
	case <-ctx.Done():
		cancelRiver()

		return nil
	}
}

// Shutdown stops the server and River in order. Call after Run returns.
func (a *App) Shutdown(ctx context.Context) error {
	if err := a.server.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		if a.river != nil {
			if stopErr := a.river.Stop(ctx); stopErr != nil {
				slog.Error("river stop during server shutdown", "error", stopErr)
			}
		}

		return fmt.Errorf("server shutdown: %w", err)
	}

	if a.river != nil {
		if err := a.river.Stop(ctx); err != nil {
			return fmt.Errorf("river stop: %w", err)
		}
	}

	return nil
}
