package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"ict-signal-engine/internal/bot"
	"ict-signal-engine/internal/cache"
	"ict-signal-engine/internal/config"
	"ict-signal-engine/internal/db"
	"ict-signal-engine/internal/domain"
	"ict-signal-engine/internal/handler"
	"ict-signal-engine/internal/job"
	"ict-signal-engine/internal/logging"
	"ict-signal-engine/internal/provider"
	"ict-signal-engine/internal/repository"
	"ict-signal-engine/internal/service"
	signalengine "ict-signal-engine/internal/signal"
	"ict-signal-engine/pkg/tracing"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"

	_ "ict-signal-engine/docs"
)

var (
	loadEnvFunc       = godotenv.Load
	loadConfigFunc    = config.Load
	initPostgresFunc  = db.InitPostgres
	initRedisFunc     = cache.InitRedis
	initTracerFunc    = tracing.InitTracer
	newBarRepoFunc    = repository.NewBarRepository
	newSignalRepoFunc = repository.NewSignalRepository
	newProviderFunc   = func(tracer trace.Tracer, cfg *config.Config) service.BarProvider {
		return provider.NewTwelveDataProvider(tracer, provider.TwelveDataConfig{
			BaseURL:    cfg.TwelveDataBaseURL,
			APIKey:     cfg.TwelveDataAPIKey,
			MaxRetries: cfg.ProviderMaxRetries,
			Scheduler:  provider.NewScheduler(cfg.ProviderReqPerMin),
		})
	}
	newSignalEngineFunc    = signalengine.NewEngine
	newMarketServiceFunc   = service.NewMarketService
	newSignalServiceFunc   = service.NewSignalServiceWithCache
	newIngestPollerFunc    = job.NewIngestPoller
	newSignalPollerFunc    = job.NewSignalPoller
	startIngestPollerFunc  = func(p *job.IngestPoller, ctx context.Context) { go p.Start(ctx) }
	startSignalPollerFunc  = func(p *job.SignalPoller, ctx context.Context) { go p.Start(ctx) }
	startTelegramBotFunc   = bot.StartTelegramBot
	newHandlerFunc         = handler.New
	newRouterFunc          = gin.Default
	setupSignalNotify      = ossignal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// @title           ICT Signal Engine API
// @version         1.0
// @description     OHLC bar ingestion and ICT-style trade signal generation.

// @host      localhost:8080
// @BasePath  /
func main() {
	_ = loadEnvFunc()

	cfg := loadConfigFunc()
	logging.Setup(cfg.LogLevel, cfg.LogPretty)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init Postgres and Redis
	os.Setenv("DATABASE_URL", cfg.DatabaseURL)
	os.Setenv("REDIS_URL", cfg.RedisURL)
	initPostgresFunc(ctx)
	initRedisFunc(ctx)

	// Init tracing
	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize tracer")
	}
	defer func() {
		if err := tp.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("error shutting down tracer provider")
		}
	}()

	// Create repositories and run migrations; without Postgres the services report
	// ErrNotInitialized instead of touching a nil pool
	var (
		barStore    service.BarStore
		barReader   service.SignalBarRepository
		signalStore service.SignalRepository
	)
	if db.Pool != nil {
		barRepo := newBarRepoFunc(db.Pool, tracer)
		signalRepo := newSignalRepoFunc(db.Pool, tracer)
		if err := barRepo.RunMigrations(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to run bar migrations")
		}
		if err := signalRepo.RunMigrations(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to run signal migrations")
		}
		barStore, barReader, signalStore = barRepo, barRepo, signalRepo
	} else {
		log.Warn().Msg("running without Postgres, bar and signal storage disabled")
	}

	var analyses *cache.AnalysisCache
	if cache.Client != nil {
		analyses = cache.NewAnalysisCache(cache.Client, tracer, cache.DefaultAnalysisTTL)
	}

	// Create provider and services
	catalog := domain.NewCatalog(cfg.Instruments)
	barProvider := newProviderFunc(tracer, cfg)
	marketService := newMarketServiceFunc(tracer, catalog, barProvider, barStore, analyses, cfg.Timeframe, cfg.BarLookback)
	signalEngine := newSignalEngineFunc(nil)
	signalService := newSignalServiceFunc(tracer, catalog, barReader, signalStore, signalEngine, analyses).
		WithSeries(cfg.Timeframe, cfg.BarLookback)

	// Start Telegram bot; its dispatcher receives poller alerts
	dispatcher := startTelegramBotFunc(cfg.TelegramBotToken, signalService)

	// Start background pollers (stopped by ctx cancel)
	signalPoller := newSignalPollerFunc(tracer, signalService, dispatcher, cfg.SignalPollSecs)
	startSignalPollerFunc(signalPoller, ctx)
	ingestPoller := newIngestPollerFunc(tracer, marketService, cfg.IngestPollSecs)
	if signalPoller != nil {
		ingestPoller.OnIngested(func(ctx context.Context) { signalPoller.RunOnce(ctx) })
	}
	startIngestPollerFunc(ingestPoller, ctx)

	// Create handlers and routes
	h := newHandlerFunc(tracer, marketService, signalService)

	r := newRouterFunc()
	r.Use(handler.RequestID())
	r.Use(cors.Default())
	r.Use(otelgin.Middleware("ict-signal-engine"))

	h.RegisterRoutes(r)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    httpAddr(cfg.HTTPPort),
		Handler: r,
	}

	go func() {
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("listen")
		}
	}()
	log.Info().Str("addr", srv.Addr).Int("instruments", len(catalog.Instruments())).Msg("server started")

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Info().Msg("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}

func httpAddr(port int) string {
	if port <= 0 {
		port = 8080
	}
	return fmt.Sprintf(":%d", port)
}
