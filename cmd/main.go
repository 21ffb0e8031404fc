package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fintrackhq/fintrack/config"
	"github.com/fintrackhq/fintrack/data"
	"github.com/fintrackhq/fintrack/data/cache"
	"github.com/fintrackhq/fintrack/data/store"
	"github.com/fintrackhq/fintrack/internal/externalApi/cloudStorageApi/googleDriveApi"
	"github.com/fintrackhq/fintrack/internal/externalApi/coingeckoApi"
	"github.com/fintrackhq/fintrack/internal/externalApi/geminiApi"
	"github.com/fintrackhq/fintrack/internal/externalApi/gistApi"
	"github.com/fintrackhq/fintrack/internal/externalApi/yahooApi"
	"github.com/fintrackhq/fintrack/internal/httpserver"
	"github.com/fintrackhq/fintrack/internal/reportGenerator/xlsxGenerator"
	"github.com/fintrackhq/fintrack/internal/scheduler"
	"github.com/fintrackhq/fintrack/internal/service/priceService"
	"github.com/fintrackhq/fintrack/internal/service/syncService"
	"github.com/fintrackhq/fintrack/internal/service/trackerService"
	"github.com/fintrackhq/fintrack/internal/transport/httpapi"
)

func main() {
	cfg := config.MustLoad()

	setupLogger(cfg)

	slog.Debug("config", slog.Any("cfg", cfg))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st := newStore(cfg)

	var quoteCache priceService.Cache
	if cfg.Redis.Enabled {
		redisClient := data.NewRedisClient(cfg)
		defer redisClient.Close()
		quoteCache = cache.NewRedisCache(redisClient, cfg)
	}

	coingeckoApiClient := coingeckoApi.New(cfg)
	yahooApiClient := yahooApi.New(cfg)

	var fallbackApi priceService.FallbackApi
	if cfg.API.Gemini.ApiKey != "" {
		geminiApiClient, err := geminiApi.New(ctx, cfg)
		if err != nil {
			slog.Error("can't create gemini client, fallback disabled", slog.String("err", err.Error()))
		} else {
			fallbackApi = geminiApiClient
		}
	}

	priceSrv := priceService.New(coingeckoApiClient, yahooApiClient, fallbackApi, quoteCache)

	reportGenerator := xlsxGenerator.New()

	var cloudStorage trackerService.CloudStorage
	var driveApi *googleDriveApi.GoogleDriveApi
	if cfg.GoogleDrive.CredentialsFile != "" {
		driveApi = googleDriveApi.New(ctx, cfg)
		cloudStorage = driveApi
	}

	trackerSrv := trackerService.New(ctx, st, priceSrv, reportGenerator, cloudStorage)

	gistApiClient := gistApi.New(cfg)
	syncSrv := syncService.New(trackerSrv, gistApiClient)

	sched := scheduler.New()
	if cfg.Jobs.RefreshPricesInterval > 0 {
		sched.NewIntervalJob("refresh prices", func(ctx context.Context) error {
			_, _, err := trackerSrv.RefreshPrices(ctx)
			return err
		}, cfg.Jobs.RefreshPricesInterval, false)
	}
	if driveApi != nil && cfg.GoogleDrive.FileTTL > 0 {
		sched.NewIntervalJob("cleanup drive reports", driveApi.DeleteOldFiles, cfg.GoogleDrive.FileTTL, false)
	}
	sched.Start()
	defer sched.Stop()

	ctrl := httpapi.NewController(trackerSrv, syncSrv)

	server := httpserver.New(cfg, httpapi.NewRouter(ctrl))
	server.Start()
	defer server.Stop()

	// Waiting interruption signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	<-interrupt
}

func newStore(cfg *config.Config) store.Store {
	switch cfg.Store.Backend {
	case "postgres":
		pgClient := data.NewPostgresClient(cfg)
		return store.NewPostgresStore(pgClient)
	case "file":
		fileStore, err := store.NewFileStore(cfg.Store.FileDir)
		if err != nil {
			slog.Error("can't create file store", slog.String("err", err.Error()))
			panic(err)
		}
		return fileStore
	default:
		slog.Error("unknown store backend", slog.String("backend", cfg.Store.Backend))
		panic("unknown store backend: " + cfg.Store.Backend)
	}
}

func setupLogger(cfg *config.Config) {
	var logLevel slog.Level

	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warning":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(log)
}
