/*
main.go - budgetd entry point

PURPOSE:
  Starts the daily-budget engine server. Loads configuration, restores
  persisted state, wires the engine to its SQLite state store, and runs
  the HTTP server with graceful shutdown.

STARTUP SEQUENCE:
  1. Load TOML config (flags override)
  2. Configure zerolog
  3. Open the SQLite store and load the last state image
  4. Build the in-memory spend store and engine from that state
  5. Subscribe the persistence loop to engine snapshots
  6. Serve HTTP until SIGINT/SIGTERM, then save a final state image

USAGE:
  budgetd serve
  budgetd serve --config ./budgetd.toml --addr :3000 --db ./data/budget.db

SEE ALSO:
  - config/: file format and defaults
  - api/server.go: router configuration
  - store/sqlite: the state image store
*/
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/warp/budget-engine/api"
	"github.com/warp/budget-engine/budget"
	memstore "github.com/warp/budget-engine/budget/store"
	"github.com/warp/budget-engine/config"
	"github.com/warp/budget-engine/store/sqlite"
)

var (
	flagConfig string
	flagAddr   string
	flagDB     string
)

func main() {
	root := &cobra.Command{
		Use:   "budgetd",
		Short: "Daily budget allocation engine",
	}

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the budget engine HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
	serve.Flags().StringVar(&flagConfig, "config", "", "path to TOML config file")
	serve.Flags().StringVar(&flagAddr, "addr", "", "listen address (overrides config)")
	serve.Flags().StringVar(&flagDB, "db", "", "SQLite database path (overrides config)")
	root.AddCommand(serve)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServe(ctx context.Context) error {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	if flagAddr != "" {
		cfg.Server.Addr = flagAddr
	}
	if flagDB != "" {
		cfg.Database.Path = flagDB
	}

	log := newLogger(cfg.Log)

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	// Open persistence and restore the last state image.
	db, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	state, err := db.Load(ctx)
	if err != nil {
		return err
	}

	spendStore := memstore.Restore(state.Spends, removedOrZero(state), state.RemovedAt, state.Removed != nil)
	engine := budget.NewEngine(spendStore, budget.Options{
		Location:  loc,
		Tolerance: cfg.Tolerance(),
		Period:    state.Period,
	})
	log.Info().
		Int("spends", len(state.Spends)).
		Bool("has_period", state.Period != nil).
		Msg("state restored")

	// Persistence loop: the in-memory state is authoritative, saves run
	// off the mutating goroutine. A full buffer just coalesces saves.
	saveCh := make(chan struct{}, 1)
	unsubscribe := engine.Subscribe(func(budget.Snapshot) {
		select {
		case saveCh <- struct{}{}:
		default:
		}
	})
	defer unsubscribe()

	saveCtx, stopSaves := context.WithCancel(context.Background())
	defer stopSaves()
	saveDone := make(chan struct{})
	go func() {
		defer close(saveDone)
		for {
			select {
			case <-saveCtx.Done():
				return
			case <-saveCh:
				persist(saveCtx, engine, db, log)
			}
		}
	}()

	handler := api.NewHandler(engine, log)
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      api.NewRouter(handler),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	// Stop the save loop, then write a final image so the loss window
	// closes cleanly.
	stopSaves()
	<-saveDone
	persist(context.Background(), engine, db, log)

	log.Info().Msg("server stopped")
	return nil
}

func persist(ctx context.Context, engine *budget.Engine, db *sqlite.Store, log zerolog.Logger) {
	state, err := engine.State(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to read engine state")
		return
	}
	if err := db.Save(ctx, state); err != nil {
		log.Error().Err(err).Msg("failed to persist state")
	}
}

func removedOrZero(state budget.State) budget.Spend {
	if state.Removed == nil {
		return budget.Spend{}
	}
	return *state.Removed
}

func newLogger(cfg config.LogConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if cfg.Format == "json" {
		logger = zerolog.New(os.Stdout)
	} else {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout})
	}
	return logger.Level(level).With().Timestamp().Logger()
}
