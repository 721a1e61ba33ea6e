package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"message-relay-backend/internal/common/config"
	"message-relay-backend/internal/common/logger"
	"message-relay-backend/internal/features/relay/service"
	"message-relay-backend/internal/features/relay/tracker"
	apphttp "message-relay-backend/internal/http"
	"message-relay-backend/internal/platform/metrics"
	"message-relay-backend/internal/platform/redis"
	"message-relay-backend/internal/platform/telegram"
	"message-relay-backend/internal/workers"
)

// @title           Message Relay API
// @version         1.0
// @description     Relays messages to Telegram tagged with the sender IP and attempt counter, with one-shot capture of the next new IP.

// @host      localhost:3000
// @BasePath  /

// @securityDefinitions.apikey TelegramInitData
// @in header
// @name init_data
// @description Telegram Mini App init_data string, required on admin routes when ADMIN_IDS is set

// @tag.name relay
// @tag.description Message intake

// @tag.name admin
// @tag.description Counters, resets and capture arming

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger.Init("message-relay-backend", cfg.Debug)
	logger.Debug().
		Str("telegram_api", cfg.Telegram.APIURL).
		Int("attempt_limit", cfg.Telegram.AttemptLimit).
		Bool("redis", cfg.Redis.Enabled).
		Bool("metrics", cfg.Metrics.Enabled).
		Msg("Configuration loaded")

	if cfg.Telegram.Token == "" || cfg.Telegram.ChatID == "" {
		logger.Warn().Msg("APIKEY or CHATID is empty, default deliveries will fail")
	}
	if cfg.AdminGuardEnabled() && cfg.Admin.BotToken == "" {
		logger.Fatal().Msg("ADMIN_IDS is set but ADMIN_BOT_TOKEN is empty")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New()
	}

	deps := apphttp.Deps{Config: cfg, Metrics: m, Logger: log.Logger}

	var (
		rdb       *goredis.Client
		publisher service.EventPublisher
	)
	if cfg.Redis.Enabled {
		rdb, err = redis.Open(ctx, cfg)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()

		publisher = redis.NewStreamPublisher(rdb, cfg.Redis.Stream, cfg.Redis.StreamMaxLen)
		deps.Ready = redis.NewHealthChecker(rdb)
		logger.Info().Str("stream", cfg.Redis.Stream).Msg("Relay events go to Redis")
	}

	tg := telegram.NewClient(cfg.Telegram.Timeout,
		telegram.WithBaseURL(cfg.Telegram.APIURL),
		telegram.WithParseMode(cfg.Telegram.ParseMode),
	)

	state := tracker.New(tracker.Credentials{Token: cfg.Telegram.Token, ChatID: cfg.Telegram.ChatID})
	deps.Relay = service.NewRelayService(state, tg, publisher, m, log.Logger, service.Options{
		AttemptLimit: cfg.Telegram.AttemptLimit,
		EscapeHTML:   cfg.Telegram.ParseMode == "HTML",
	})

	if rdb != nil && cfg.Redis.CommandStream != "" {
		consumer, _ := os.Hostname()
		if consumer == "" {
			consumer = "relay"
		}
		w := workers.NewCommandStreamWorker(rdb, deps.Relay, cfg.Redis.CommandStream, cfg.Redis.ConsumerGroup, consumer, log.Logger)
		go w.Start(ctx)
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      apphttp.NewRouter(deps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.Telegram.Timeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Int("port", cfg.Server.Port).Bool("admin_guard", cfg.AdminGuardEnabled()).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Server exited")
}
