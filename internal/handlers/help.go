package handlers

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/nvalis/GroceriesBot/internal/manager"
)

// HelpHandler handles the /help command. The reply includes the chat's
// current active list so members know where their items will land.
type HelpHandler struct {
	mgr    *manager.Manager
	logger *logrus.Logger
}

// NewHelpHandler creates a new HelpHandler.
func NewHelpHandler(mgr *manager.Manager, logger *logrus.Logger) *HelpHandler {
	return &HelpHandler{mgr: mgr, logger: logger}
}

// Handle processes the /help command.
func (h *HelpHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	ctx := context.Background()

	currentLine := "_none - create one with_ `/new <name>`"
	rendered, err := h.mgr.Render(ctx, message.Chat.ID)
	switch {
	case err == nil:
		currentLine = fmt.Sprintf("*%s*", escapeMarkdown(rendered.List.Name))
	case !errors.Is(err, manager.ErrNoActiveList):
		return replyError(bot, message.Chat.ID, err)
	}

	helpText := fmt.Sprintf(`🛒 *Grocery Bot Help*

*Current List:* %s

*Items:*
• /add <item> [quantity] - Add item to current list
• /list - Show current list
• /done <number> - Mark item as bought
• /remove <number> - Remove item
• /clear - Remove bought items

*Lists:*
• /lists - Show all your lists
• /new <name> - Create new list
• /go <name> - Switch to different list
• /delete <name> - Delete a list
• /wipe - Clear entire current list`, currentLine)

	msg := tgbotapi.NewMessage(message.Chat.ID, helpText)
	msg.ParseMode = tgbotapi.ModeMarkdown

	if _, err := bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send help message: %w", err)
	}

	h.logger.WithFields(logrus.Fields{
		"chat_id": message.Chat.ID,
		"user_id": message.From.ID,
	}).Info("Sent help message")

	return nil
}
