package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/nvalis/GroceriesBot/internal/manager"
)

// reply sends a Markdown message to the chat.
func reply(bot *tgbotapi.BotAPI, chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	bot.Send(msg)
}

// replyError sends the translated message for expected errors and
// propagates everything else to the router.
func replyError(bot *tgbotapi.BotAPI, chatID int64, err error) error {
	if text, ok := userMessage(err); ok {
		reply(bot, chatID, text)
		return nil
	}
	return err
}

// ---------------------------------------------------------------------------
// AddItemHandler - /add <item> [quantity]
// ---------------------------------------------------------------------------

// AddItemHandler handles the /add command to put an item on the active
// list. A trailing number ("milk 2") or x-suffix ("milk x2") sets the
// quantity; adding a name that already exists unpurchased merges the
// quantities.
type AddItemHandler struct {
	mgr    *manager.Manager
	logger *logrus.Logger
}

// NewAddItemHandler creates a new AddItemHandler.
func NewAddItemHandler(mgr *manager.Manager, logger *logrus.Logger) *AddItemHandler {
	return &AddItemHandler{mgr: mgr, logger: logger}
}

// Handle processes the /add command.
func (h *AddItemHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	if len(args) == 0 {
		reply(bot, message.Chat.ID,
			"❌ Please specify an item to add.\n\n"+
				"*Usage:*\n"+
				"`/add Milk 2`\n"+
				"`/add Whole wheat bread`")
		return nil
	}

	ctx := context.Background()

	if _, err := h.mgr.EnsureChat(ctx, message.Chat.ID, message.Chat.Title); err != nil {
		return replyError(bot, message.Chat.ID, err)
	}

	item, merged, err := h.mgr.AddItem(ctx, message.Chat.ID, strings.Join(args, " "), message.From.FirstName)
	if err != nil {
		return replyError(bot, message.Chat.ID, err)
	}

	if merged {
		reply(bot, message.Chat.ID, fmt.Sprintf("✅ Merged! *%s* is now at quantity %d.",
			escapeMarkdown(item.Name), item.Quantity))
	} else {
		reply(bot, message.Chat.ID, fmt.Sprintf("✅ Added %s*%s* to the shopping list!",
			quantityPrefix(item.Quantity), escapeMarkdown(item.Name)))
	}

	h.logger.WithFields(logrus.Fields{
		"chat_id": message.Chat.ID,
		"user_id": message.From.ID,
		"item_id": item.ID,
		"merged":  merged,
	}).Info("Item added")

	return nil
}

// parseNumberArg converts the first argument to a display number.
func parseNumberArg(args []string) (int, bool) {
	if len(args) == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, false
	}
	return n, true
}

// ---------------------------------------------------------------------------
// DoneHandler - /done <number>
// ---------------------------------------------------------------------------

// DoneHandler handles the /done command to mark the item at a display
// number as purchased. The number is resolved against the list as it is
// right now, so it is safe after other members have edited the list.
type DoneHandler struct {
	mgr    *manager.Manager
	logger *logrus.Logger
}

// NewDoneHandler creates a new DoneHandler.
func NewDoneHandler(mgr *manager.Manager, logger *logrus.Logger) *DoneHandler {
	return &DoneHandler{mgr: mgr, logger: logger}
}

// Handle processes the /done command.
func (h *DoneHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	number, ok := parseNumberArg(args)
	if !ok {
		reply(bot, message.Chat.ID, "❌ Please provide an item number.\nUsage: `/done 3`")
		return nil
	}

	ctx := context.Background()

	item, err := h.mgr.MarkDone(ctx, message.Chat.ID, number)
	if err != nil {
		return replyError(bot, message.Chat.ID, err)
	}

	reply(bot, message.Chat.ID, fmt.Sprintf("✅ *%s* marked as bought!", escapeMarkdown(item.Name)))

	h.logger.WithFields(logrus.Fields{
		"chat_id": message.Chat.ID,
		"user_id": message.From.ID,
		"item_id": item.ID,
	}).Info("Item marked as bought")

	return nil
}

// ---------------------------------------------------------------------------
// RemoveItemHandler - /remove <number>
// ---------------------------------------------------------------------------

// RemoveItemHandler handles the /remove command to delete the item at a
// display number from the active list.
type RemoveItemHandler struct {
	mgr    *manager.Manager
	logger *logrus.Logger
}

// NewRemoveItemHandler creates a new RemoveItemHandler.
func NewRemoveItemHandler(mgr *manager.Manager, logger *logrus.Logger) *RemoveItemHandler {
	return &RemoveItemHandler{mgr: mgr, logger: logger}
}

// Handle processes the /remove command.
func (h *RemoveItemHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	number, ok := parseNumberArg(args)
	if !ok {
		reply(bot, message.Chat.ID, "❌ Please provide an item number.\nUsage: `/remove 3`")
		return nil
	}

	ctx := context.Background()

	item, err := h.mgr.RemoveItem(ctx, message.Chat.ID, number)
	if err != nil {
		return replyError(bot, message.Chat.ID, err)
	}

	reply(bot, message.Chat.ID, fmt.Sprintf("🗑 Removed *%s* from the shopping list!", escapeMarkdown(item.Name)))

	h.logger.WithFields(logrus.Fields{
		"chat_id": message.Chat.ID,
		"user_id": message.From.ID,
		"item_id": item.ID,
	}).Info("Item removed")

	return nil
}
