package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/danielhkuo/simple-survey/cliparse"
	"github.com/danielhkuo/simple-survey/db"
	"github.com/danielhkuo/simple-survey/logging"
	"github.com/danielhkuo/simple-survey/middleware"
	"github.com/danielhkuo/simple-survey/router"
	"github.com/danielhkuo/simple-survey/store"
	"github.com/danielhkuo/simple-survey/survey"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		middleware.LogError("server exited", err)
		os.Exit(1)
	}
}

func run() error {
	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		return err
	}

	if err := logging.Setup(cfg.LogLevel, cfg.LogFormat); err != nil {
		return err
	}
	slog.Info("configuration loaded", "config", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to the database
	conn, err := db.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer conn.Close()

	// Create schema (tables)
	if err := db.CreateSchema(ctx, conn); err != nil {
		return err
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	// The survey and the seed file must be valid before serving anything
	def, err := survey.Load(cfg.SurveyJSONPath)
	if err != nil {
		return err
	}
	slog.Info("Survey loaded", "path", cfg.SurveyJSONPath, "title", def.Title())

	inserted, err := store.NewParticipants(conn).SeedFromFile(ctx, cfg.ParticipantsSeedPath)
	if err != nil {
		return err
	}
	slog.Info("Participants seeded", "path", cfg.ParticipantsSeedPath, "inserted", inserted)

	mux := router.NewRouter(conn, cfg, def)

	server := &http.Server{
		Handler:           middleware.CORS(middleware.OriginOf(cfg.BaseURL), mux),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("Listening", "port", cfg.Port, "allow_updates", cfg.AllowResponseUpdates)
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info("Server closed")
	return nil
}
