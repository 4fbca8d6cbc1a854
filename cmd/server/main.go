/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the timetable engine server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Load configuration (defaults, YAML, .env, environment)
  3. Configure logging
  4. Open SQLite and load every collection into the Store
  5. Create engine, API handler and router
  6. Start the autosaver and the HTTP server

COMMAND-LINE FLAGS:
  -config  YAML config file (default: config.yaml, optional)
  -env     .env file (default: .env, optional)
  -port    HTTP server port, overrides config
  -db      SQLite database path, overrides config
           Use ":memory:" for in-memory database

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (shutdown timeout)
  3. Stop the autosaver and flush anything still dirty
  4. Close database connection

EXAMPLES:
  ./server -db="./data/school.db"
  ./server -db=":memory:" -port=3000
  LOG_LEVEL=debug LOG_PRETTY=true ./server

SEE ALSO:
  - config/config.go: Configuration keys
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/warp/timetable-engine/api"
	"github.com/warp/timetable-engine/config"
	"github.com/warp/timetable-engine/logger"
	"github.com/warp/timetable-engine/store/sqlite"
	"github.com/warp/timetable-engine/timetable"
)

func main() {
	configPath := flag.String("config", "config.yaml", "YAML config file")
	envPath := flag.String("env", ".env", "dotenv file")
	port := flag.Int("port", 0, "HTTP server port (overrides config)")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath, *envPath)
	if err != nil {
		logger.Configure(logger.Config{Level: logger.InfoLevel})
		logger.Error().Err(err).Msg("failed to load configuration")
		os.Exit(1)
	}
	if *port != 0 {
		cfg.Server.Port = strconv.Itoa(*port)
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}

	log := logger.Configure(logger.Config{
		Level:  logger.Level(cfg.Logging.Level),
		Pretty: cfg.Logging.Pretty,
	})

	db, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Database.Path).Msg("failed to initialize database")
	}
	defer db.Close()

	snap, err := db.Load(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load timetable")
	}

	store := timetable.NewStore(timetable.WithStoreLogger(logger.With("store")))
	store.Restore(snap)

	engine := timetable.NewEngine(store)
	engine.StrictOwnership = cfg.Engine.StrictOwnership
	engine.Logger = logger.With("engine")

	handler := api.NewHandler(engine, db, logger.With("api"))
	router := api.NewRouter(handler, api.RouterOptions{AllowedOrigins: cfg.CORS.AllowedOrigins})

	saver := api.NewAutosaver(store, db, logger.With("autosave"))
	saver.Interval, _ = cfg.FlushInterval()
	saver.Start()

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().
			Str("addr", server.Addr).
			Int("teachers", len(snap.Teachers)).
			Int("lessons", len(snap.ScheduleEntries)).
			Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("shutting down server")

	timeout, _ := cfg.ShutdownTimeout()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
	if err := saver.Stop(ctx); err != nil {
		log.Error().Err(err).Strs("dirty", collections(store.Dirty())).Msg("final flush failed")
	}

	log.Info().Msg("server stopped")
}

func collections(cs []timetable.Collection) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = string(c)
	}
	return out
}
