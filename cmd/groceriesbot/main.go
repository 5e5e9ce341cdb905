package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/nvalis/GroceriesBot/internal/api"
	"github.com/nvalis/GroceriesBot/internal/config"
	"github.com/nvalis/GroceriesBot/internal/handlers"
	"github.com/nvalis/GroceriesBot/internal/manager"
	"github.com/nvalis/GroceriesBot/internal/repository"
	"github.com/nvalis/GroceriesBot/internal/repository/memory"
	"github.com/nvalis/GroceriesBot/internal/repository/postgres"
	"github.com/nvalis/GroceriesBot/internal/telegram"
	"github.com/nvalis/GroceriesBot/pkg/logger"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	l := logger.New(cfg.LogLevel)
	l.Info("Starting GroceriesBot...")

	// Storage: Postgres when configured, otherwise the in-memory store.
	var (
		chatRepo repository.ChatRepository
		listRepo repository.ListRepository
		itemRepo repository.ItemRepository
		admRepo  repository.AdminRepository
	)
	if cfg.DatabaseURL != "" {
		db, err := config.NewDatabase(cfg.DatabaseURL, l)
		if err != nil {
			l.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		if err := db.Migrate(cfg.MigrationsDir); err != nil {
			l.Fatalf("Failed to run migrations: %v", err)
		}

		chatRepo = postgres.NewChatRepository(db.DB)
		listRepo = postgres.NewListRepository(db.DB)
		itemRepo = postgres.NewItemRepository(db.DB)
		admRepo = postgres.NewAdminRepository(db.DB)
	} else {
		l.Warn("DATABASE_URL not set, using in-memory store; data will not survive a restart")
		store := memory.New()
		chatRepo = store.Chats()
		listRepo = store.Lists()
		itemRepo = store.Items()
		admRepo = store.Admin()
	}

	mgr := manager.New(l, chatRepo, listRepo, itemRepo, admRepo)

	// Telegram bot
	bot, err := telegram.NewBot(cfg.TelegramToken, l)
	if err != nil {
		l.Fatalf("Failed to create Telegram bot: %v", err)
	}

	// Register command handlers
	bot.RegisterCommand("start", handlers.NewStartHandler(l))
	bot.RegisterCommand("help", handlers.NewHelpHandler(mgr, l))

	// Item handlers
	bot.RegisterCommand("add", handlers.NewAddItemHandler(mgr, l))
	bot.RegisterCommand("done", handlers.NewDoneHandler(mgr, l))
	bot.RegisterCommand("remove", handlers.NewRemoveItemHandler(mgr, l))

	// List handlers
	bot.RegisterCommand("list", handlers.NewShowListHandler(mgr, l))
	bot.RegisterCommand("lists", handlers.NewListsHandler(mgr, l))
	bot.RegisterCommand("new", handlers.NewNewListHandler(mgr, l))
	bot.RegisterCommand("go", handlers.NewGoHandler(mgr, l))
	bot.RegisterCommand("delete", handlers.NewDeleteListHandler(mgr, l))
	bot.RegisterCommand("clear", handlers.NewClearHandler(mgr, l))
	bot.RegisterCommand("wipe", handlers.NewWipeHandler(mgr, l))

	// Admin handlers
	bot.RegisterCommand("backup", handlers.NewBackupHandler(mgr, l, cfg.BackupDir))
	bot.RegisterCommand("stats", handlers.NewStatsHandler(mgr, l))

	bot.SetCallbackHandler(handlers.NewCallbackHandler(mgr, l))

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		l.Info("Received shutdown signal...")
		cancel()
	}()

	// Periodic JSON backups
	if cfg.BackupInterval > 0 {
		go mgr.StartBackupScheduler(ctx, cfg.BackupInterval, cfg.BackupDir)
	}

	// HTTP server: read-only API plus the webhook endpoint when enabled
	apiServer := api.NewServer(mgr, l)
	mux := http.NewServeMux()
	mux.Handle("/", apiServer.Handler())
	if cfg.WebhookURL != "" {
		mux.HandleFunc("POST /telegram/webhook", func(w http.ResponseWriter, r *http.Request) {
			var update tgbotapi.Update
			if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
				l.WithError(err).Warn("Failed to decode webhook update")
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			bot.HandleWebhook(update)
			w.WriteHeader(http.StatusOK)
		})
	}

	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: mux,
	}

	go func() {
		l.Infof("HTTP server listening on :%s", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			l.Errorf("HTTP server error: %v", err)
		}
	}()

	// Updates: webhook when a public URL is configured, long polling otherwise
	if cfg.WebhookURL != "" {
		if err := bot.SetWebhook(cfg.WebhookURL + "/telegram/webhook"); err != nil {
			l.Fatalf("Failed to set webhook: %v", err)
		}
		l.Infof("Webhook registered at %s/telegram/webhook", cfg.WebhookURL)
	} else {
		go func() {
			if err := bot.Start(ctx); err != nil {
				l.Errorf("Bot error: %v", err)
			}
		}()
	}

	l.Info("GroceriesBot started successfully")

	<-ctx.Done()

	l.Info("Shutting down HTTP server...")
	httpServer.Close()

	l.Info("GroceriesBot stopped")
}
