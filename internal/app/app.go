// Package app wires configuration, the Riot client, the database handle and
// the repositories into a runnable ingestion service.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"

	"github.com/DeadSpoonbill/API-lol-public/external/riot"
	"github.com/DeadSpoonbill/API-lol-public/internal/config"
	"github.com/DeadSpoonbill/API-lol-public/internal/infrastructure/repository/postgres"
	"github.com/DeadSpoonbill/API-lol-public/internal/platform/logging"
	"github.com/DeadSpoonbill/API-lol-public/internal/usecase"
)

// OpenDB opens the instrumented Postgres handle and verifies connectivity
// before any ingestion work starts.
func OpenDB(ctx context.Context, cfg config.Config) (*sqlx.DB, error) {
	dsn := normalizeDBURL(cfg.DBURL)
	db, err := otelsqlx.Open("postgres", dsn,
		otelsql.WithAttributes(semconv.DBSystemPostgreSQL),
		otelsql.WithDBName(dbNameFromURL(dsn)),
	)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return db, nil
}

// BuildIngestion assembles the ingestion service on top of an open database
// handle.
func BuildIngestion(db *sqlx.DB, cfg config.Config, logger *logging.Logger) *usecase.IngestionService {
	client := riot.NewClient(riot.ClientConfig{
		Router:            cfg.RiotRouter,
		APIKey:            cfg.RiotAPIKey,
		BaseURL:           cfg.RiotBaseURL,
		RequestsPerSecond: cfg.RiotRequestsPerSecond,
		Retry: riot.RetryPolicy{
			MaxAttempts:     cfg.RiotMaxAttempts,
			MaxElapsed:      cfg.RiotMaxElapsed,
			ThrottleWait:    cfg.RiotThrottleWait,
			ServerErrorWait: cfg.RiotServerErrorWait,
		},
		HTTPClient: &http.Client{
			Timeout:   cfg.RiotTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		Logger: logger,
	})

	return usecase.NewIngestionService(
		client,
		postgres.NewSummonerRepository(db),
		postgres.NewMatchRepository(db),
		postgres.NewTimelineRepository(db),
		usecase.IngestionConfig{
			Router:    cfg.RiotRouter,
			Queues:    cfg.Queues,
			MatchType: cfg.MatchType,
		},
		logger,
	)
}
