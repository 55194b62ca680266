// cmd/search-manager/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.uber.org/zap"

	"people-search/internal/api"
	"people-search/internal/app"
	"people-search/internal/common/camunda"
	"people-search/internal/common/config"
	"people-search/internal/common/logger"
	"people-search/internal/common/observability"

	psearch "people-search/internal/workers/search/perform-people-search"
	vsearch "people-search/internal/workers/search/validate-search-input"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New("info", "console").Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)
	zapLog.Info("Starting search manager...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTracing(cfg.Tracing, cfg.App)
	if err != nil {
		zapLog.Fatal("tracing init failed", zap.Error(err))
	}

	obs := observability.New(cfg.App.Name, log)

	core, err := app.Build(ctx, cfg, obs, log)
	if err != nil {
		zapLog.Fatal("search core init failed", zap.Error(err))
	}

	// --- Camunda job workers ---
	var (
		zeebe   *camunda.Client
		workers []worker.JobWorker
	)
	if cfg.Camunda.Enabled {
		zeebe, err = camunda.Connect(ctx, &camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			ConnectionTimeout:      config.GetDuration(cfg.Camunda.RequestTimeout),
		}, log)
		if err != nil {
			zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
		}
		zapLog.Info("Zeebe client connected successfully")

		if config.IsWorkerEnabled(cfg, vsearch.TaskType) {
			wcfg := config.GetWorkerConfig(cfg, vsearch.TaskType)
			handler := vsearch.NewHandler(
				&vsearch.Config{Timeout: config.GetDuration(wcfg.Timeout)},
				core.Schema, log,
			)
			workers = append(workers, startWorker(zeebe, vsearch.TaskType, wcfg, handler, log))
		}

		if config.IsWorkerEnabled(cfg, psearch.TaskType) {
			wcfg := config.GetWorkerConfig(cfg, psearch.TaskType)
			handler := psearch.NewHandler(
				&psearch.Config{Timeout: config.GetDuration(wcfg.Timeout)},
				core.Orchestrator, core.Schema, log,
			)
			workers = append(workers, startWorker(zeebe, psearch.TaskType, wcfg, handler, log))
		}
		zapLog.Info("Workers registered", zap.Int("count", len(workers)))
	} else {
		zapLog.Info("Camunda disabled, serving HTTP only")
	}

	// --- HTTP API, health & metrics ---
	server := api.NewServer(api.Options{
		Searcher:    core.Orchestrator,
		Schema:      core.Schema,
		Diagnostics: core.Diagnostics(),
		History:     historyReader(core),
		Directory:   directory(core),
		Ready:       core.Ready,
		Logger:      log,
	})
	if err := server.Run(ctx, cfg.Server); err != nil {
		zapLog.Error("HTTP server failed", zap.Error(err))
	}

	// --- Graceful Shutdown ---
	zapLog.Info("Shutdown signal received, stopping workers...")
	for _, w := range workers {
		w.Close()
		w.AwaitClose()
	}
	if zeebe != nil {
		if err := zeebe.Close(); err != nil {
			zapLog.Error("Error closing Zeebe client", zap.Error(err))
		}
	}
	core.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := obs.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping meter provider", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		zapLog.Error("Error stopping tracer provider", zap.Error(err))
	}

	zapLog.Info("Search manager stopped gracefully")
}

func startWorker(client *camunda.Client, taskType string, wcfg config.WorkerConfig, handler camunda.JobHandler, log logger.Logger) worker.JobWorker {
	return camunda.StartWorker(client.GetClient(), taskType, camunda.WorkerOptions{
		MaxJobsActive: wcfg.MaxJobsActive,
		Timeout:       config.GetDuration(wcfg.Timeout),
	}, handler, log)
}

// historyReader keeps a nil *PostgresLogger from becoming a non-nil
// interface.
func historyReader(core *app.App) api.HistoryReader {
	if core.History == nil {
		return nil
	}
	return core.History
}

func directory(core *app.App) api.Directory {
	if core.Profiles == nil {
		return nil
	}
	return core.Profiles
}
