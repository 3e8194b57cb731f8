package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cimillas/ultimate-ticket/services/eticket/internal/app"
	"github.com/cimillas/ultimate-ticket/services/eticket/internal/clock"
	"github.com/cimillas/ultimate-ticket/services/eticket/internal/config"
	"github.com/cimillas/ultimate-ticket/services/eticket/internal/matrixcode"
	"github.com/cimillas/ultimate-ticket/services/eticket/internal/sequencer"
	"github.com/cimillas/ultimate-ticket/services/eticket/internal/storage/postgres"
	"github.com/cimillas/ultimate-ticket/services/eticket/internal/ticketpdf"
	transporthttp "github.com/cimillas/ultimate-ticket/services/eticket/internal/transport/http"
	"github.com/cimillas/ultimate-ticket/services/eticket/migrations"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"
)

func main() {
	configPath := pflag.String("config", "configs/default.yaml", "path to the YAML config file")
	pflag.Parse()

	bootLogger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	config.LoadEnvFile(bootLogger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		bootLogger.Error("load config", "error", err)
		os.Exit(1)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("api stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	startupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(startupCtx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect to db: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(startupCtx); err != nil {
		return fmt.Errorf("db ping: %w", err)
	}
	if err := migrations.Apply(startupCtx, pool); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	eventRepo := postgres.NewEventRepository(pool)
	ticketRepo := postgres.NewTicketRepository(pool)

	last, err := ticketRepo.LastTicketNumber(startupCtx)
	if err != nil {
		return err
	}
	ready := []transporthttp.Pinger{pool}

	var seq ticketpdf.Sequencer
	if cfg.RedisURL == "" {
		logger.Info("numbering tickets in process", "last_number", uint64(last))
		seq = sequencer.NewCounterFrom(last)
	} else {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("parse redis url: %w", err)
		}
		client := redis.NewClient(opts)
		defer client.Close()

		shared := sequencer.NewRedis(client, cfg.SequencerKey)
		current, err := shared.ResumeFrom(startupCtx, last)
		if err != nil {
			return err
		}
		logger.Info("numbering tickets with redis", "key", cfg.SequencerKey, "last_number", uint64(current))
		seq = shared
		ready = append(ready, redisPinger{client})
	}

	clk := clock.NewSystem()
	builder := ticketpdf.NewBuilder(
		seq,
		matrixcode.NewEncoder(),
		ticketpdf.NewFPDFFactory(ticketpdf.FPDFOptions{Clock: clk, Uncompressed: !cfg.PDFCompress}),
	)
	logo := ticketpdf.NewFileLogo(cfg.LogoPath)
	if _, err := logo.Logo(); err != nil {
		// Issuance keeps failing with document_failed until the file is fixed.
		logger.Warn("logo not loadable", "path", cfg.LogoPath, "error", err)
	}

	eventSvc := app.NewEventService(eventRepo, clk)
	ticketSvc := app.NewTicketService(eventRepo, ticketRepo, builder, logo, clk, app.WithLogger(logger))

	server := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: transporthttp.NewRouter(transporthttp.RouterConfig{
			Events:      eventSvc,
			Tickets:     ticketSvc,
			Logger:      logger,
			CORSOrigins: cfg.CORSOrigins,
			Ready:       ready,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("api listening", "addr", server.Addr)

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
	case <-stopCtx.Done():
		logger.Info("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

type redisPinger struct {
	client *redis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}
