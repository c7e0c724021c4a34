// Package app wires the components shared by the worker manager and the
// assessment API: the pipeline, its text-generation backend and the
// session store.
package app

import (
	"context"
	"fmt"
	"time"

	"readiness-workers/internal/assessment"
	"readiness-workers/internal/common/config"
	"readiness-workers/internal/common/database"
	"readiness-workers/internal/common/logger"
	"readiness-workers/internal/common/observability"
	"readiness-workers/internal/llm"
	"readiness-workers/internal/session"
)

type App struct {
	Config   *config.Config
	Logger   logger.Logger
	Obs      *observability.Observability
	Pipeline *assessment.Pipeline
	Sessions session.Store
	Redis    *database.RedisClient
}

// New builds the shared components. The caller owns the result and must
// call Close.
func New(ctx context.Context, cfg *config.Config, log logger.Logger, serviceName string) (*App, error) {
	gen, err := llm.New(ctx, cfg.APIs.LLM)
	if err != nil {
		return nil, fmt.Errorf("llm client: %w", err)
	}

	catalog, err := assessment.LoadPromptCatalog(cfg.Assessment.PromptCatalog)
	if err != nil {
		return nil, err
	}

	sessions, rdb, err := OpenSessions(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	obs := observability.New(serviceName)
	return &App{
		Config:   cfg,
		Logger:   log,
		Obs:      obs,
		Pipeline: assessment.NewPipeline(gen, catalog, assessment.SettingsFromConfig(cfg), log, obs),
		Sessions: sessions,
		Redis:    rdb,
	}, nil
}

// OpenSessions builds the configured session store. Redis is only dialled
// for the redis backend, with retries while the server comes up.
func OpenSessions(ctx context.Context, cfg *config.Config, log logger.Logger) (session.Store, *database.RedisClient, error) {
	if cfg.Session.Store != "redis" {
		store, err := session.NewStore(cfg.Session, nil)
		return store, nil, err
	}

	var rdb *database.RedisClient
	err := retryWithBackoff(func() error {
		var err error
		rdb, err = database.NewRedis(ctx, cfg.Database.Redis)
		return err
	}, 5, time.Second, log, "Redis connection")
	if err != nil {
		return nil, nil, err
	}

	store, err := session.NewStore(cfg.Session, rdb.Client)
	if err != nil {
		_ = rdb.Close()
		return nil, nil, err
	}
	log.Info("session store ready", map[string]interface{}{
		"store":  cfg.Session.Store,
		"prefix": cfg.Session.KeyPrefix,
	})
	return store, rdb, nil
}

// Ready reports whether the backing services answer.
func (a *App) Ready(ctx context.Context) error {
	if a.Redis != nil {
		return a.Redis.Ping(ctx)
	}
	return nil
}

func (a *App) Close() {
	if err := a.Redis.Close(); err != nil {
		a.Logger.Error("closing redis", map[string]interface{}{"error": err.Error()})
	}
	a.Obs.Shutdown()
}

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log logger.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(operationName+" failed, retrying", map[string]interface{}{
				"error":       err.Error(),
				"attempt":     i + 1,
				"maxRetries":  maxRetries,
				"nextRetryIn": delay.String(),
			})
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}
