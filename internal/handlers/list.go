package handlers

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/nvalis/GroceriesBot/internal/manager"
)

// ---------------------------------------------------------------------------
// ShowListHandler - /list
// ---------------------------------------------------------------------------

// ShowListHandler handles the /list command to display the active list
// with its interactive keyboard.
type ShowListHandler struct {
	mgr    *manager.Manager
	logger *logrus.Logger
}

// NewShowListHandler creates a new ShowListHandler.
func NewShowListHandler(mgr *manager.Manager, logger *logrus.Logger) *ShowListHandler {
	return &ShowListHandler{mgr: mgr, logger: logger}
}

// Handle processes the /list command.
func (h *ShowListHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	ctx := context.Background()

	if _, err := h.mgr.EnsureChat(ctx, message.Chat.ID, message.Chat.Title); err != nil {
		return replyError(bot, message.Chat.ID, err)
	}

	rendered, err := h.mgr.Render(ctx, message.Chat.ID)
	if err != nil {
		return replyError(bot, message.Chat.ID, err)
	}

	msg := tgbotapi.NewMessage(message.Chat.ID, renderListText(rendered))
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = listKeyboard(rendered)
	bot.Send(msg)

	h.logger.WithFields(logrus.Fields{
		"chat_id": message.Chat.ID,
		"list_id": rendered.List.ID,
		"items":   len(rendered.Items),
	}).Info("Showed list")

	return nil
}

// ---------------------------------------------------------------------------
// ListsHandler - /lists
// ---------------------------------------------------------------------------

// ListsHandler handles the /lists command to show all lists of the chat.
type ListsHandler struct {
	mgr    *manager.Manager
	logger *logrus.Logger
}

// NewListsHandler creates a new ListsHandler.
func NewListsHandler(mgr *manager.Manager, logger *logrus.Logger) *ListsHandler {
	return &ListsHandler{mgr: mgr, logger: logger}
}

// Handle processes the /lists command.
func (h *ListsHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	ctx := context.Background()

	if _, err := h.mgr.EnsureChat(ctx, message.Chat.ID, message.Chat.Title); err != nil {
		return replyError(bot, message.Chat.ID, err)
	}

	overview, err := h.mgr.ListLists(ctx, message.Chat.ID)
	if err != nil {
		return replyError(bot, message.Chat.ID, err)
	}

	msg := tgbotapi.NewMessage(message.Chat.ID, listsOverviewText(overview))
	msg.ParseMode = tgbotapi.ModeMarkdown
	if len(overview.Lists) > 0 {
		msg.ReplyMarkup = listsKeyboard(overview)
	}
	bot.Send(msg)

	h.logger.WithFields(logrus.Fields{
		"chat_id": message.Chat.ID,
		"count":   len(overview.Lists),
	}).Info("Showed lists overview")

	return nil
}

// ---------------------------------------------------------------------------
// NewListHandler - /new <name>
// ---------------------------------------------------------------------------

// NewListHandler handles the /new command to create a list and switch to
// it.
type NewListHandler struct {
	mgr    *manager.Manager
	logger *logrus.Logger
}

// NewNewListHandler creates a new NewListHandler.
func NewNewListHandler(mgr *manager.Manager, logger *logrus.Logger) *NewListHandler {
	return &NewListHandler{mgr: mgr, logger: logger}
}

// Handle processes the /new command.
func (h *NewListHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	if len(args) == 0 {
		reply(bot, message.Chat.ID,
			"❌ Please specify a name for the new list.\n\n"+
				"*Usage:*\n"+
				"`/new Costco`\n"+
				"`/new Whole Foods`")
		return nil
	}

	ctx := context.Background()
	name := strings.Join(args, " ")

	if _, err := h.mgr.EnsureChat(ctx, message.Chat.ID, message.Chat.Title); err != nil {
		return replyError(bot, message.Chat.ID, err)
	}

	list, err := h.mgr.CreateList(ctx, message.Chat.ID, name)
	if err != nil {
		return replyError(bot, message.Chat.ID, err)
	}

	// Creating always switches, matching what group members expect when
	// they start a list for the next shopping trip.
	if _, err := h.mgr.SwitchActive(ctx, message.Chat.ID, list.Name); err != nil {
		return replyError(bot, message.Chat.ID, err)
	}

	reply(bot, message.Chat.ID, fmt.Sprintf(
		"✅ Created and switched to *%s*!\nStart adding items with `/add`",
		escapeMarkdown(list.Name)))

	h.logger.WithFields(logrus.Fields{
		"chat_id": message.Chat.ID,
		"user_id": message.From.ID,
		"list_id": list.ID,
	}).Info("List created")

	return nil
}

// ---------------------------------------------------------------------------
// GoHandler - /go <name>
// ---------------------------------------------------------------------------

// GoHandler handles the /go command to switch the active list by name
// (case-insensitive).
type GoHandler struct {
	mgr    *manager.Manager
	logger *logrus.Logger
}

// NewGoHandler creates a new GoHandler.
func NewGoHandler(mgr *manager.Manager, logger *logrus.Logger) *GoHandler {
	return &GoHandler{mgr: mgr, logger: logger}
}

// Handle processes the /go command.
func (h *GoHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	ctx := context.Background()

	if _, err := h.mgr.EnsureChat(ctx, message.Chat.ID, message.Chat.Title); err != nil {
		return replyError(bot, message.Chat.ID, err)
	}

	if len(args) == 0 {
		// Show the available lists for easy switching.
		overview, err := h.mgr.ListLists(ctx, message.Chat.ID)
		if err != nil {
			return replyError(bot, message.Chat.ID, err)
		}
		reply(bot, message.Chat.ID, listsOverviewText(overview)+
			"\n\nUsage: `/go <name>`\nExample: `/go Costco`")
		return nil
	}

	list, err := h.mgr.SwitchActive(ctx, message.Chat.ID, strings.Join(args, " "))
	if err != nil {
		return replyError(bot, message.Chat.ID, err)
	}

	reply(bot, message.Chat.ID, fmt.Sprintf("🛒 Now shopping at *%s*!", escapeMarkdown(list.Name)))

	h.logger.WithFields(logrus.Fields{
		"chat_id": message.Chat.ID,
		"user_id": message.From.ID,
		"list_id": list.ID,
	}).Info("Switched active list")

	return nil
}

// ---------------------------------------------------------------------------
// DeleteListHandler - /delete <name>
// ---------------------------------------------------------------------------

// DeleteListHandler handles the /delete command to remove a list and all
// of its items. Deleting the active list leaves the chat without an
// active list rather than silently picking another one.
type DeleteListHandler struct {
	mgr    *manager.Manager
	logger *logrus.Logger
}

// NewDeleteListHandler creates a new DeleteListHandler.
func NewDeleteListHandler(mgr *manager.Manager, logger *logrus.Logger) *DeleteListHandler {
	return &DeleteListHandler{mgr: mgr, logger: logger}
}

// Handle processes the /delete command.
func (h *DeleteListHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	if len(args) == 0 {
		reply(bot, message.Chat.ID,
			"❌ Please specify a list to delete.\nUsage: `/delete <name>`\nUse `/lists` to see available lists.")
		return nil
	}

	ctx := context.Background()

	list, err := h.mgr.DeleteList(ctx, message.Chat.ID, strings.Join(args, " "))
	if err != nil {
		return replyError(bot, message.Chat.ID, err)
	}

	reply(bot, message.Chat.ID, fmt.Sprintf(
		"🗑 Deleted list *%s*!\nSwitch to another list with `/go <name>` or create one with `/new <name>`.",
		escapeMarkdown(list.Name)))

	h.logger.WithFields(logrus.Fields{
		"chat_id": message.Chat.ID,
		"user_id": message.From.ID,
		"list_id": list.ID,
	}).Info("List deleted")

	return nil
}

// ---------------------------------------------------------------------------
// ClearHandler - /clear
// ---------------------------------------------------------------------------

// ClearHandler handles the /clear command to remove bought items from the
// active list.
type ClearHandler struct {
	mgr    *manager.Manager
	logger *logrus.Logger
}

// NewClearHandler creates a new ClearHandler.
func NewClearHandler(mgr *manager.Manager, logger *logrus.Logger) *ClearHandler {
	return &ClearHandler{mgr: mgr, logger: logger}
}

// Handle processes the /clear command.
func (h *ClearHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	ctx := context.Background()

	count, err := h.mgr.ClearPurchased(ctx, message.Chat.ID)
	if err != nil {
		return replyError(bot, message.Chat.ID, err)
	}

	if count > 0 {
		reply(bot, message.Chat.ID, fmt.Sprintf("🧹 Cleared %d bought items!", count))
	} else {
		reply(bot, message.Chat.ID, "No bought items to clear.")
	}

	h.logger.WithFields(logrus.Fields{
		"chat_id": message.Chat.ID,
		"count":   count,
	}).Info("Cleared bought items")

	return nil
}

// ---------------------------------------------------------------------------
// WipeHandler - /wipe
// ---------------------------------------------------------------------------

// WipeHandler handles the /wipe command to remove every item from the
// active list.
type WipeHandler struct {
	mgr    *manager.Manager
	logger *logrus.Logger
}

// NewWipeHandler creates a new WipeHandler.
func NewWipeHandler(mgr *manager.Manager, logger *logrus.Logger) *WipeHandler {
	return &WipeHandler{mgr: mgr, logger: logger}
}

// Handle processes the /wipe command.
func (h *WipeHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	ctx := context.Background()

	count, err := h.mgr.Wipe(ctx, message.Chat.ID)
	if err != nil {
		return replyError(bot, message.Chat.ID, err)
	}

	if count > 0 {
		reply(bot, message.Chat.ID, fmt.Sprintf("🧹 Wiped the list clean! (%d items removed)", count))
	} else {
		reply(bot, message.Chat.ID, "The list is already empty.")
	}

	h.logger.WithFields(logrus.Fields{
		"chat_id": message.Chat.ID,
		"count":   count,
	}).Info("Wiped list")

	return nil
}
