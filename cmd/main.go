package main

import (
	"context"
	"errors"
	"fmt"
	nethttp "net/http"
	"os"
	"os/signal"
	"project_aceRelay/internal/config"
	"project_aceRelay/internal/entities"
	"project_aceRelay/internal/infrastructure"
	"project_aceRelay/internal/interfaces"
	"project_aceRelay/internal/interfaces/http"
	"project_aceRelay/internal/repository"
	"project_aceRelay/internal/usecases"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// .env is optional; hosted deployments inject the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	logger, err := infrastructure.NewLogger(cfg.LogLevel, cfg.Server.Mode == gin.DebugMode)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	for _, key := range cfg.Missing() {
		logger.Warn("required setting is empty; calls depending on it will fail", zap.String("key", key))
	}

	ctx := context.Background()
	catalog, err := loadCatalog(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to load objection catalog", zap.Error(err))
	}
	logger.Info("objection catalog loaded", zap.Strings("objections", catalog.IDs()))

	metrics := infrastructure.NewMetrics("acerelay")
	llmClient := infrastructure.NewLLMClient(cfg.LLM)

	messengers := map[string]interfaces.Messenger{
		entities.PlatformWhatsApp: infrastructure.NewWhatsAppBusinessClient(cfg.WhatsApp, cfg.Dispatch.Timeout),
	}
	if cfg.Telegram.BotToken != "" {
		tg, err := infrastructure.NewTelegramClient(cfg.Telegram.BotToken, cfg.Dispatch.Timeout)
		if err != nil {
			logger.Warn("telegram disabled", zap.Error(err))
		} else {
			messengers[entities.PlatformTelegram] = tg
			logger.Info("telegram bot connected", zap.String("bot", tg.UserName))
		}
	}

	replyService, err := usecases.NewReplyService(llmClient, catalog, usecases.PromptOptions{
		AgentName:   cfg.Sales.AgentName,
		ProductName: cfg.Sales.ProductName,
		OfferLink:   cfg.Sales.OfferLink,
	}, metrics, logger)
	if err != nil {
		logger.Fatal("failed to build reply service", zap.Error(err))
	}
	messageService := usecases.NewMessageService(replyService, messengers, metrics, logger)

	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	http.SetupRoutes(r, messageService, cfg, metrics, logger)

	srv := &nethttp.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// loadCatalog picks the objection source: PostgreSQL, then a YAML file, then the built-in playbook.
func loadCatalog(ctx context.Context, cfg *config.Config, logger *zap.Logger) (entities.Catalog, error) {
	if cfg.DatabaseURL != "" {
		pgClient, err := infrastructure.NewPostgresClient(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		defer pgClient.Close()

		repo := repository.NewObjectionRepository(pgClient.Pool)
		defaults, err := repository.DefaultCatalog()
		if err != nil {
			return nil, err
		}
		seeded, err := repo.SeedIfEmpty(ctx, defaults)
		if err != nil {
			return nil, err
		}
		if seeded {
			logger.Info("seeded objections table with built-in playbook")
		}
		return repo.GetCatalog(ctx)
	}

	if cfg.Sales.ObjectionsFile != "" {
		return repository.LoadCatalogFile(cfg.Sales.ObjectionsFile)
	}
	return repository.DefaultCatalog()
}
