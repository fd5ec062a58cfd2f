package main

import (
	"collab-lab/auth"
	"collab-lab/internal"
	"collab-lab/projection"
	"collab-lab/repositories"
	"collab-lab/runtime"
	"collab-lab/runtime/workers"
	"collab-lab/services"
	"collab-lab/sink"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages their lifecycle, and
// centralizes error reporting, so every defer (database cleanup
// included) executes before the process exits.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Storage (BadgerDB + Bluge index)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.INFO))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	index, err := bluge.OpenWriter(bluge.DefaultConfig(config.BlugeFilepath))
	if err != nil {
		return fmt.Errorf("index opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing search index...")
		_ = index.Close()
	}()

	// 3. Session manager core
	registry := runtime.NewRegistry()
	store := runtime.NewStore()
	router := runtime.NewRouter(log, registry, store, config.SinkTimeout)
	coordinator := runtime.NewCoordinator(log, registry, store, router, config.TelemetryBufferSize)

	// 4. Collaborator services (accounts + document library)
	tokens := auth.NewTokenIssuer(config.AuthTokenSecret, config.AuthTokenDuration)
	authService := services.NewAuthService(repositories.NewUserRepository(db), tokens)
	documentService := services.NewDocumentService(
		repositories.NewDocumentRepository(db, index, log))
	collabService := services.NewCollabService(coordinator)

	// 5. Observers & workers
	timeline := projection.NewTimeline()
	archive := sink.NewArchiveSink(repositories.NewSnapshotRepository(db), log)

	sup := workers.NewSupervisor(log, config.RestartInterval)
	sup.Add(workers.NewTelemetryWorker(log, coordinator.TelemetryEvents(), timeline, archive))
	sup.Add(workers.NewStatsWorker(log, config.StatsInterval, func() (int, int) {
		return registry.Size(), store.Size()
	}))

	// 6. Debug surface
	internal.StartDebugServer(db, config.DebugPort, nil, func() map[string]any {
		return map[string]any{
			"participants": registry.Size(),
			"sessions":     store.Size(),
		}
	})

	// 7. HTTP surface: realtime gateway + collaborator API
	api := internal.NewAPI(log, authService, documentService)
	gateway := internal.NewWSGateway(log, collabService,
		config.ConnectionBufferSize, config.WriteTimeout)
	mux := api.Routes()
	mux.Handle("GET /ws", gateway)
	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler: mux,
	}

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting API server", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("API server error: %w", err)
		}
	}()

	// 8. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("Session manager ready", "debug_port", config.DebugPort)
	go sup.Run(ctx)

	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	_ = server.Shutdown(context.Background())
	sup.Stop()
	log.Info("Program stopped cleanly")
	return nil
}
