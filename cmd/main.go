package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/KotFed0t/crypto_portfolio_bot/config"
	"github.com/KotFed0t/crypto_portfolio_bot/data"
	"github.com/KotFed0t/crypto_portfolio_bot/data/cache"
	"github.com/KotFed0t/crypto_portfolio_bot/data/repository/postgres"
	"github.com/KotFed0t/crypto_portfolio_bot/data/session"
	"github.com/KotFed0t/crypto_portfolio_bot/internal/externalApi/cloudStorageApi/googleDriveApi"
	"github.com/KotFed0t/crypto_portfolio_bot/internal/externalApi/coinGeckoApi"
	"github.com/KotFed0t/crypto_portfolio_bot/internal/refresher"
	"github.com/KotFed0t/crypto_portfolio_bot/internal/reportGenerator/xslsxGenerator"
	"github.com/KotFed0t/crypto_portfolio_bot/internal/scheduler"
	"github.com/KotFed0t/crypto_portfolio_bot/internal/service/portfolioService"
	"github.com/KotFed0t/crypto_portfolio_bot/internal/service/reportService"
	"github.com/KotFed0t/crypto_portfolio_bot/internal/symbolRegistry"
	"github.com/KotFed0t/crypto_portfolio_bot/internal/tgbot"
	"github.com/KotFed0t/crypto_portfolio_bot/internal/transport/telegram"
	"github.com/KotFed0t/crypto_portfolio_bot/internal/valuation"
	"github.com/KotFed0t/crypto_portfolio_bot/utils"
)

func main() {
	cfg := config.MustLoad()

	setupLogger(cfg)

	slog.Debug("config", slog.Any("cfg", cfg))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pgClient := data.NewPostgresClient(cfg)
	defer pgClient.Close()

	pgRepo := postgres.NewPostgres(cfg, pgClient)

	redisClient := data.NewRedisClient(cfg)
	defer redisClient.Close()

	redisCache := cache.NewRedisCache(redisClient, cfg)
	redisSession := session.NewRedisSession(redisClient, cfg)

	symbols := symbolRegistry.New()

	coinGeckoApiClient := coinGeckoApi.New(cfg, symbols)

	valuationEngine := valuation.New(coinGeckoApiClient)

	portfolioSrv := portfolioService.New(pgRepo, redisCache, coinGeckoApiClient, symbols)

	sched := scheduler.New()
	sched.Start()
	defer sched.Stop()

	portfolioRefresher := refresher.New(portfolioSrv, valuationEngine, sched, cfg.Jobs.RefreshPricesInterval)
	defer portfolioRefresher.Stop()

	// первая загрузка; при ошибке бот стартует, портфель можно перезагрузить через /refresh
	if err := portfolioRefresher.Reload(utils.WithNewRqID(ctx)); err != nil {
		slog.Error("initial portfolio load failed", slog.String("err", err.Error()))
	}

	var cloudStorage reportService.CloudStorage
	if cfg.GoogleDrive.Enabled {
		googleCloudStorage, err := googleDriveApi.New(ctx, cfg)
		if err != nil {
			panic(err)
		}
		cloudStorage = googleCloudStorage
		sched.MustNewCrontabJob("delete old drive files", googleCloudStorage.DeleteOldFiles, cfg.Jobs.DeleteOldFilesCrontab, false)
	}

	reportSrv := reportService.New(cfg, xslsxGenerator.New(), cloudStorage)

	tgController := telegram.NewController(portfolioSrv, portfolioRefresher, reportSrv, redisSession)

	tgBot := tgbot.New(cfg, tgController, redisSession)
	tgBot.Start()
	defer tgBot.Stop()

	// Waiting interruption signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	<-interrupt
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
