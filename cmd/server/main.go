package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/nealrs/baby-tracker/internal/api"
	"github.com/nealrs/baby-tracker/internal/config"
	"github.com/nealrs/baby-tracker/internal/domain"
	"github.com/nealrs/baby-tracker/internal/extraction"
	applog "github.com/nealrs/baby-tracker/internal/logger"
	"github.com/nealrs/baby-tracker/internal/outbox"
	"github.com/nealrs/baby-tracker/internal/persistence"
	"github.com/nealrs/baby-tracker/internal/persistence/postgres"
	httptransport "github.com/nealrs/baby-tracker/internal/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	logger := applog.New(cfg)
	log.Logger = logger

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sessions, err := persistence.Open(ctx, persistence.PoolConfig{
		URL:            cfg.PostgresURL,
		MaxConns:       cfg.DBMaxConns,
		IdleTimeout:    cfg.DBIdleTimeout,
		ConnectTimeout: cfg.DBConnectTimeout,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create postgres pool")
	}
	defer sessions.Close()

	if now, err := persistence.Probe(ctx, sessions); err != nil {
		logger.Warn().Err(err).Msg("database not reachable yet")
	} else {
		logger.Info().Time("db_time", now).Msg("database reachable")
	}

	generator, err := extraction.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiTemperature)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create gemini client")
	}
	extractor := extraction.NewExtractor(generator, extraction.WithLogger(component(logger, "extractor")))

	formatter, err := persistence.NewTimeFormatter(cfg.DisplayTimezone)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid display timezone")
	}

	persisterOpts := []postgres.Option{postgres.WithLogger(component(logger, "persister"))}
	var dispatcher *outbox.Dispatcher
	if cfg.PublishEvents() {
		persisterOpts = append(persisterOpts, postgres.WithEvents(outbox.NewRecorder()))

		producer := outbox.NewKafkaProducer(cfg.KafkaBrokers)
		defer producer.Close()
		registry := outbox.NewSchemaRegistryClient(cfg.SchemaRegistryURL)
		dispatcher = outbox.NewDispatcher(sessions, producer, registry, cfg.OutboxPollInterval, cfg.OutboxBatchSize, component(logger, "outbox"))
		go dispatcher.Start(ctx)
	}

	persister := postgres.NewPersister(sessions, persisterOpts...)
	reader := postgres.NewReader(sessions, formatter, postgres.WithLogger(component(logger, "reader")))
	service := domain.NewService(extractor, persister, reader)

	probe := func(ctx context.Context) (time.Time, error) {
		return persistence.Probe(ctx, sessions)
	}
	handler := api.NewHandler(service, probe,
		api.WithLogger(component(logger, "api")),
		api.WithTitle(cfg.BabyName),
	)
	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)
	mux.Handle("/metrics", promhttp.Handler())

	server := httptransport.NewServer(
		httptransport.DefaultServerConfig(cfg.HTTPAddress),
		httptransport.WithRequestLogging(logger, mux),
	)

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info().Str("addr", cfg.HTTPAddress).Str("model", generator.Model()).Bool("events", cfg.PublishEvents()).Msg("baby-tracker listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	<-shutdownCh
	logger.Info().Msg("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	if dispatcher != nil {
		dispatcher.Wait()
	}
}

func component(logger zerolog.Logger, name string) zerolog.Logger {
	return logger.With().Str("component", name).Logger()
}
