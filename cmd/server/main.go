/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the secure economy ledger server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load environment configuration, apply flag overrides
  2. Initialize SQLite store
  3. Resolve device identity, construct remote clients (if configured)
  4. Construct and load the secure ledger
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (overrides PORT)
  -db      SQLite database path (overrides DB_PATH)
           Use ":memory:" for an in-memory database

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Flush in-flight security events
  4. Close database connection

SEE ALSO:
  - config/config.go: Environment configuration
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arcadia/coin-engine/api"
	"github.com/arcadia/coin-engine/config"
	"github.com/arcadia/coin-engine/ledger"
	"github.com/arcadia/coin-engine/purchase"
	"github.com/arcadia/coin-engine/remote"
	"github.com/arcadia/coin-engine/store/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Flag overrides
	port := flag.Int("port", cfg.Port, "HTTP server port")
	dbPath := flag.String("db", cfg.DBPath, "SQLite database path")
	flag.Parse()

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	// Device identity must exist before the remote clients are built.
	identity := ledger.NewDeviceIdentity(store)
	deviceID, err := identity.GetOrCreate(ctx)
	if err != nil {
		log.Fatalf("Failed to resolve device identity: %v", err)
	}

	// Remote clients are optional: with no base URL the ledger runs
	// fully local (events dropped, purchases always on the fallback
	// path).
	var (
		reporter  ledger.Reporter = ledger.NopReporter{}
		validator purchase.Validator
		fraud     purchase.FraudChecker
		flush     func()
	)
	if cfg.RemoteBaseURL != "" {
		client := remote.NewClient(remote.Config{
			BaseURL:         cfg.RemoteBaseURL,
			APIKey:          cfg.APIKey,
			SigningSecret:   cfg.SigningSecret,
			UserID:          cfg.UserID,
			DeviceID:        deviceID,
			ValidateTimeout: cfg.ValidateTimeout,
			FraudTimeout:    cfg.FraudTimeout,
			ReportTimeout:   cfg.ReportTimeout,
		})
		r := remote.NewReporter(client)
		reporter = r
		flush = r.Flush
		validator = client
		fraud = client
	} else {
		log.Println("No REMOTE_BASE_URL configured; running fully local")
		validator = unavailableValidator{}
	}

	// Construct and load the ledger
	secureLedger := ledger.New(store, reporter, ledger.Config{PlatformTag: cfg.Platform})
	result := secureLedger.Load(ctx)
	log.Printf("Ledger loaded: status=%s balance=%d", result.Status, result.Balance)

	pipeline := purchase.NewPipeline(secureLedger, purchase.DefaultCatalog(), validator, fraud, reporter)
	handler := api.NewHandler(secureLedger, pipeline, fraud, purchase.DefaultCatalog())
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on http://localhost:%d", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	if flush != nil {
		flush()
	}

	log.Println("Server stopped")
}

// unavailableValidator forces the pipeline's fallback path when no
// backend is configured.
type unavailableValidator struct{}

func (unavailableValidator) ValidateReceipt(context.Context, purchase.ValidationRequest) (*purchase.ValidationResponse, error) {
	return nil, remote.ErrRemoteUnavailable
}
