// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"readiness-workers/internal/app"
	"readiness-workers/internal/common/camunda"
	"readiness-workers/internal/common/config"
	"readiness-workers/internal/common/logger"
	"readiness-workers/pkg/registry"

	cs "readiness-workers/internal/workers/assessment/calculate-scores"
	gq "readiness-workers/internal/workers/assessment/generate-questions"
	grr "readiness-workers/internal/workers/assessment/generate-readiness-report"
	gr "readiness-workers/internal/workers/assessment/generate-recommendations"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer logger.Sync(zapLog)
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...")

	ctx := context.Background()

	components, err := app.New(ctx, cfg, log, "worker-manager")
	if err != nil {
		zapLog.Fatal("component setup failed", zap.Error(err))
	}
	defer components.Close()

	zeebe, err := camunda.NewClient(ctx, cfg.Camunda.BrokerAddress)
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	checkRegistry(cfg, zapLog)

	client := zeebe.GetClient()
	pipeline := components.Pipeline
	sessions := components.Sessions

	var workers []worker.JobWorker
	start := func(taskType string, handler camunda.JobHandler) {
		if w := camunda.StartWorker(client, taskType, cfg.Workers[taskType], handler, log); w != nil {
			workers = append(workers, w)
		}
	}

	start(gq.TaskType, gq.NewHandler(gq.LoadConfig(cfg.Workers[gq.TaskType]), pipeline, sessions, log))
	start(gr.TaskType, gr.NewHandler(gr.LoadConfig(cfg.Workers[gr.TaskType]), pipeline, sessions, log))
	start(grr.TaskType, grr.NewHandler(grr.LoadConfig(cfg.Workers[grr.TaskType]), pipeline, sessions, log))
	start(cs.TaskType, cs.NewHandler(cs.LoadConfig(cfg.Workers[cs.TaskType]), sessions, log))

	zapLog.Info("Workers registered", zap.Int("count", len(workers)))

	// --- Health & Metrics Server ---
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, "healthy", nil)
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		checkCtx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		if err := components.Ready(checkCtx); err != nil {
			writeStatus(w, http.StatusServiceUnavailable, "not ready", err)
			return
		}
		if err := zeebe.HealthCheck(checkCtx); err != nil {
			writeStatus(w, http.StatusServiceUnavailable, "not ready", err)
			return
		}
		writeStatus(w, http.StatusOK, "ready", nil)
	})
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{Addr: ":8080", Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		zapLog.Info("Health/Metrics server listening on :8080")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range workers {
		w.Close()
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

// checkRegistry warns about enabled job types the activity registry does
// not describe. A missing registry file is only logged.
func checkRegistry(cfg *config.Config, log *zap.Logger) {
	path := os.Getenv("ACTIVITY_REGISTRY_PATH")
	if path == "" {
		path = registry.DefaultPath
	}

	reg, err := registry.LoadRegistry(path)
	if err != nil {
		log.Warn("activity registry not loaded", zap.String("path", path), zap.Error(err))
		return
	}
	if err := reg.Validate(); err != nil {
		log.Warn("activity registry invalid", zap.Error(err))
	}
	for taskType, wcfg := range cfg.Workers {
		if !wcfg.Enabled {
			continue
		}
		if _, ok := reg.Find(taskType); !ok {
			log.Warn("enabled worker missing from activity registry", zap.String("taskType", taskType))
		}
	}
}

func writeStatus(w http.ResponseWriter, code int, status string, err error) {
	body := map[string]string{
		"status": status,
		"time":   time.Now().Format(time.RFC3339),
	}
	if err != nil {
		body["error"] = err.Error()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
