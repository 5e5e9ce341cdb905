package handlers

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/nvalis/GroceriesBot/internal/manager"
)

// isPrivate reports whether the message came from a one-on-one chat.
// Admin commands are restricted to private chats.
func isPrivate(message *tgbotapi.Message) bool {
	return message.Chat.Type == "private"
}

// ---------------------------------------------------------------------------
// BackupHandler - /backup
// ---------------------------------------------------------------------------

// BackupHandler handles the /backup command to write a JSON snapshot of
// all chats, lists and items.
type BackupHandler struct {
	mgr    *manager.Manager
	logger *logrus.Logger
	dir    string
}

// NewBackupHandler creates a new BackupHandler writing snapshots to dir.
func NewBackupHandler(mgr *manager.Manager, logger *logrus.Logger, dir string) *BackupHandler {
	return &BackupHandler{mgr: mgr, logger: logger, dir: dir}
}

// Handle processes the /backup command.
func (h *BackupHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	if !isPrivate(message) {
		reply(bot, message.Chat.ID, "❌ Backup command only available in private chat.")
		return nil
	}

	ctx := context.Background()

	path, err := h.mgr.WriteBackup(ctx, h.dir)
	if err != nil {
		return replyError(bot, message.Chat.ID, err)
	}

	reply(bot, message.Chat.ID, fmt.Sprintf("✅ Backup created successfully!\nFile: `%s`", path))

	h.logger.WithFields(logrus.Fields{
		"user_id": message.From.ID,
		"path":    path,
	}).Info("Backup created")

	return nil
}

// ---------------------------------------------------------------------------
// StatsHandler - /stats
// ---------------------------------------------------------------------------

// StatsHandler handles the /stats command to show store-wide counts and
// cache effectiveness.
type StatsHandler struct {
	mgr    *manager.Manager
	logger *logrus.Logger
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(mgr *manager.Manager, logger *logrus.Logger) *StatsHandler {
	return &StatsHandler{mgr: mgr, logger: logger}
}

// Handle processes the /stats command.
func (h *StatsHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	if !isPrivate(message) {
		reply(bot, message.Chat.ID, "❌ Stats command only available in private chat.")
		return nil
	}

	ctx := context.Background()

	stats, err := h.mgr.Stats(ctx)
	if err != nil {
		return replyError(bot, message.Chat.ID, err)
	}
	cacheStats := h.mgr.CacheStats()

	text := fmt.Sprintf(`📊 *Bot Statistics*

👥 Total Chats: %d
📋 Total Lists: %d
📝 Total Items: %d
✅ Purchased Items: %d
📍 Pending Items: %d

🗄 Cache: %d hits, %d misses, %d entries`,
		stats.TotalChats, stats.TotalLists, stats.TotalItems,
		stats.PurchasedItems, stats.PendingItems(),
		cacheStats.Hits, cacheStats.Misses, cacheStats.Entries)

	reply(bot, message.Chat.ID, text)

	h.logger.WithField("user_id", message.From.ID).Info("Sent statistics")

	return nil
}
