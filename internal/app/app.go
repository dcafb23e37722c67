package app

import (
	"fmt"
	"net/http"

	_ "github.com/lib/pq"
	"github.com/sporthub/sporthub-api/external/openligadb"
	"github.com/sporthub/sporthub-api/internal/config"
	"github.com/sporthub/sporthub-api/internal/infrastructure/repository/postgres"
	"github.com/sporthub/sporthub-api/internal/interfaces/httpapi"
	"github.com/sporthub/sporthub-api/internal/platform/cache"
	"github.com/sporthub/sporthub-api/internal/platform/logging"
	"github.com/sporthub/sporthub-api/internal/platform/resilience"
	"github.com/sporthub/sporthub-api/internal/usecase"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
)

// NewHTTPServer wires the full service: database, upstream feed client,
// services and the HTTP router. The returned cleanup closes the database pool.
func NewHTTPServer(cfg config.Config, logger *logging.Logger) (*http.Server, func(), error) {
	if logger == nil {
		logger = logging.Default()
	}

	db, err := otelsqlx.Connect("postgres", cfg.DBURL,
		otelsql.WithDBName(dbNameFromURL(cfg.DBURL)),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}

	cleanup := func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.Warn("close database pool", "error", closeErr)
		}
	}

	var catalog *cache.Store
	if cfg.CacheEnabled {
		catalog = cache.NewStore(cfg.CacheTTL)
	}

	feed := openligadb.NewClient(openligadb.ClientConfig{
		BaseURL:    cfg.SportsAPIBaseURL,
		Timeout:    cfg.SportsAPITimeout,
		MaxRetries: cfg.SportsAPIMaxRetries,
		LiveGrace:  cfg.BoardLiveGrace,
		Logger:     logger,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          cfg.SportsCircuitEnabled,
			FailureThreshold: cfg.SportsCircuitFailureCount,
			OpenTimeout:      cfg.SportsCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.SportsCircuitHalfOpenMaxReq,
		},
		Catalog: catalog,
	})

	repo := postgres.NewArchiveRepository(db)

	sportsSvc := usecase.NewSportsService(feed, cfg.DefaultLeagues, cfg.DefaultSeason)
	boardSvc := usecase.NewBoardService(feed, repo, logger, usecase.BoardConfig{
		Leagues:   cfg.DefaultLeagues,
		Season:    cfg.DefaultSeason,
		LiveGrace: cfg.BoardLiveGrace,
		DaysBack:  cfg.BoardDaysBack,
		DaysAhead: cfg.BoardDaysAhead,
	})
	archiveSvc := usecase.NewArchiveService(feed, repo, cfg.BoardLiveGrace)

	handler := httpapi.NewHandler(sportsSvc, boardSvc, archiveSvc, logger)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		cleanup()
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	return server, cleanup, nil
}
