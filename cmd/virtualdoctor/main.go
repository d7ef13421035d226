package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"virtual-doctor/internal/agent"
	"virtual-doctor/internal/audio"
	"virtual-doctor/internal/audio/microphone"
	"virtual-doctor/internal/config"
	"virtual-doctor/internal/consultation"
	"virtual-doctor/internal/language"
	"virtual-doctor/internal/logging"
	"virtual-doctor/internal/platform/events"
	"virtual-doctor/internal/platform/monitoring"
	"virtual-doctor/internal/platform/telegram"
	"virtual-doctor/internal/platform/tracking"
	"virtual-doctor/internal/report"
	"virtual-doctor/internal/session"
	"virtual-doctor/internal/translation"
)

const (
	version           = "1.0.0"
	dbConnectAttempts = 10
)

func main() {
	// 1. Configuration and observability
	cfg, err := config.Load()
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := tracking.Init(cfg.SentryDSN, cfg.Environment, version); err != nil {
		logger.Warnw("sentry disabled", "error", err)
	}
	defer tracking.Flush()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	monitoring.Init()
	if cfg.MetricsAddr != "" {
		go monitoring.Serve(ctx, cfg.MetricsAddr, logger)
	}

	// 2. Backends
	generator, err := newGenerator(ctx, cfg)
	if err != nil {
		logger.Errorw("generative backend unavailable", "provider", cfg.Provider, "error", err)
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		return
	}

	var closers []io.Closer
	defer func() {
		for _, c := range closers {
			if err := c.Close(); err != nil {
				logger.Warnw("failed to close integration", "error", err)
			}
		}
	}()

	var translator translation.Backend = agent.NewLibreTranslateClient(cfg.TranslateURL, cfg.TranslateAPIKey, cfg.BackendTimeout)
	if cfg.RedisAddr != "" {
		cache, err := translation.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			logger.Warnw("translation cache disabled", "addr", cfg.RedisAddr, "error", err)
		} else {
			closers = append(closers, cache)
			translator = translation.NewCachedBackend(translator, cache, logger)
		}
	}

	// 3. Storage and optional mirrors
	store := consultation.OpenStore(cfg.StorePath, logger, storeSinks(ctx, cfg, logger, &closers)...)

	deps := session.Deps{
		Catalog:     language.LoadCatalog(cfg.LanguagesFile, logger),
		Translator:  translation.NewGateway(translator, logger),
		Detector:    language.NewDetector(agent.NewWhatlangDetector(0), logger),
		Advisor:     consultation.NewEngine(generator, logger),
		Store:       store,
		Recorder:    audio.NewRecorder(microphone.Opener(audio.SampleRate, audio.ChunkFrames), audio.SampleRate),
		Transcriber: audio.NewTranscriber(agent.NewWhisperClient(cfg.STTURL, cfg.BackendTimeout), "", logger),
	}
	if cfg.ReportsEnabled() {
		var tg report.TelegramClient
		if cfg.TelegramToken != "" {
			tg = telegram.NewClient(cfg.TelegramToken)
		}
		deps.Reporter = report.NewService(tg, cfg.DoctorChatID, cfg.ReportDir, cfg.ReportFontPath, logger)
	}

	// 4. Session
	orchestrator := session.New(deps, session.NewConsole(os.Stdin, os.Stdout), logger)
	if err := orchestrator.Run(ctx); err != nil {
		logger.Infow("session ended with error", "error", err)
	}
}

func newGenerator(ctx context.Context, cfg config.Config) (consultation.GenerativeClient, error) {
	if cfg.Provider == config.ProviderOpenAI {
		return agent.NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, cfg.BackendTimeout), nil
	}
	return agent.NewGeminiClient(ctx, agent.GeminiOptions{
		APIKey:  cfg.GeminiAPIKey,
		Model:   cfg.GeminiModel,
		Timeout: cfg.BackendTimeout,
	})
}

// storeSinks sets up the optional record mirrors. A mirror that cannot be
// reached is skipped; the JSON file stays the source of truth.
func storeSinks(ctx context.Context, cfg config.Config, logger *zap.SugaredLogger, closers *[]io.Closer) []consultation.StoreOption {
	var opts []consultation.StoreOption

	if cfg.DatabaseURL != "" {
		db, err := consultation.OpenDatabase(ctx, cfg.DatabaseURL, dbConnectAttempts)
		if err != nil {
			logger.Warnw("postgres mirror disabled", "error", err)
		} else {
			*closers = append(*closers, db)
			if err := consultation.Migrate(cfg.DatabaseURL); err != nil {
				logger.Warnw("postgres migration failed, mirror disabled", "error", err)
			} else {
				opts = append(opts, consultation.WithSink(consultation.NewRepository(db)))
			}
		}
	}

	if cfg.KafkaBroker != "" {
		publisher, err := events.NewKafkaPublisher(cfg.KafkaBroker)
		if err != nil {
			logger.Warnw("event publishing disabled", "broker", cfg.KafkaBroker, "error", err)
		} else {
			*closers = append(*closers, publisher)
			opts = append(opts, consultation.WithSink(publisher))
		}
	}
	return opts
}
