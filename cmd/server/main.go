/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the stipend administration server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Initialize SQLite store
  3. Load rate tables (JSON file, or built-in ordinance defaults)
  4. Create batch service, engine, and API handler
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port        HTTP server port (default: 8080)
  -db          SQLite database path (default: stipend.db)
               Use ":memory:" for in-memory database
  -rates       Path to a JSON rate-table file; empty uses the built-in
               ordinance defaults
  -seed        Load the standard demo dataset at startup
  -save-delay  Artificial latency applied to batch commits

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with file database and demo data
  ./server -db="./data/stipend.db" -seed

  # Run with municipality-specific rates
  ./server -rates="./config/rates.json"

SEE ALSO:
  - api/server.go: Router configuration
  - factory/reference.go: Rate-table JSON format
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

	"github.com/warp/stipend-engine/api"
	"github.com/warp/stipend-engine/batch"
	"github.com/warp/stipend-engine/factory"
	"github.com/warp/stipend-engine/payroll"
	"github.com/warp/stipend-engine/store/sqlite"
)

func main() {
	// Flags
	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "stipend.db", "SQLite database path")
	ratesPath := flag.String("rates", "", "JSON rate-table file (empty = built-in defaults)")
	seed := flag.Bool("seed", false, "load the standard demo dataset at startup")
	saveDelay := flag.Duration("save-delay", 0, "artificial latency applied to batch commits")
	flag.Parse()

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Rate tables
	tables := payroll.DefaultTables()
	if *ratesPath != "" {
		data, err := os.ReadFile(*ratesPath)
		if err != nil {
			log.Fatalf("Failed to read rate tables: %v", err)
		}
		tables, err = factory.NewReferenceFactory().ParseTables(string(data))
		if err != nil {
			log.Fatalf("Failed to parse rate tables: %v", err)
		}
		log.Printf("Loaded rate tables from %s", *ratesPath)
	}

	// Wire dependencies
	engine := payroll.NewEngine(tables, payroll.DefaultPolicy())
	batches := batch.NewService(store)
	batches.SaveDelay = *saveDelay
	handler := api.NewHandler(store, batches, engine)

	if *seed {
		if err := handler.Seed(context.Background()); err != nil {
			log.Fatalf("Failed to seed demo data: %v", err)
		}
		log.Println("Loaded standard demo dataset")
	}

	// Create router
	router := api.NewRouter(handler)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("🚀 Server starting on http://localhost:%d", *port)
		log.Printf("📊 API available at http://localhost:%d/api", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
