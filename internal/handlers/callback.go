package handlers

import (
	"context"
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/nvalis/GroceriesBot/internal/manager"
	"github.com/nvalis/GroceriesBot/internal/metrics"
)

// Callback payload action kinds. Item- and list-addressed actions carry
// the stable identifier after a colon (e.g. "done:42").
const (
	actionDone    = "done"
	actionRemove  = "remove"
	actionSwitch  = "switch"
	actionClear   = "clear"
	actionWipe    = "wipe"
	actionLists   = "lists"
	actionRefresh = "refresh"
	actionBack    = "back"
)

// encodeItemAction builds a callback payload of the form "<action>:<id>".
func encodeItemAction(action string, id int64) string {
	return fmt.Sprintf("%s:%d", action, id)
}

// decodeAction splits a callback payload into its action kind and
// optional identifier. The id is 0 for bare actions.
func decodeAction(data string) (action string, id int64, err error) {
	action, raw, found := strings.Cut(data, ":")
	if !found {
		return action, 0, nil
	}
	id, err = strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("invalid callback payload %q: %w", data, err)
	}
	return action, id, nil
}

// CallbackHandler processes inline keyboard presses. Every action is
// resolved against current state by stable identifier and the originating
// message is edited in place with a fresh render.
type CallbackHandler struct {
	mgr    *manager.Manager
	logger *logrus.Logger
}

// NewCallbackHandler creates a new CallbackHandler.
func NewCallbackHandler(mgr *manager.Manager, logger *logrus.Logger) *CallbackHandler {
	return &CallbackHandler{mgr: mgr, logger: logger}
}

// HandleCallback dispatches a callback query by its payload.
func (h *CallbackHandler) HandleCallback(bot *tgbotapi.BotAPI, query *tgbotapi.CallbackQuery) error {
	action, id, err := decodeAction(query.Data)
	if err != nil {
		return err
	}

	metrics.CallbacksTotal.WithLabelValues(action).Inc()

	ctx := context.Background()
	chatID := query.Message.Chat.ID
	messageID := query.Message.MessageID

	var banner string

	switch action {
	case actionDone:
		if _, err := h.mgr.MarkDoneByID(ctx, chatID, id); err != nil {
			return h.editError(bot, chatID, messageID, err)
		}

	case actionRemove:
		if _, err := h.mgr.RemoveItemByID(ctx, chatID, id); err != nil {
			return h.editError(bot, chatID, messageID, err)
		}

	case actionSwitch:
		list, err := h.mgr.ListByID(ctx, chatID, id)
		if err != nil {
			return h.editError(bot, chatID, messageID, err)
		}
		if _, err := h.mgr.SwitchActive(ctx, chatID, list.Name); err != nil {
			return h.editError(bot, chatID, messageID, err)
		}
		banner = fmt.Sprintf("🛒 Switched to <b>%s</b>!\n\n", html.EscapeString(list.Name))

	case actionClear:
		count, err := h.mgr.ClearPurchased(ctx, chatID)
		if err != nil {
			return h.editError(bot, chatID, messageID, err)
		}
		if count > 0 {
			banner = fmt.Sprintf("🧹 Cleared %d bought items!\n\n", count)
		}

	case actionWipe:
		count, err := h.mgr.Wipe(ctx, chatID)
		if err != nil {
			return h.editError(bot, chatID, messageID, err)
		}
		banner = fmt.Sprintf("🧹 Wiped clean! (%d items removed)\n\n", count)

	case actionLists:
		overview, err := h.mgr.ListLists(ctx, chatID)
		if err != nil {
			return h.editError(bot, chatID, messageID, err)
		}
		edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID,
			listsOverviewText(overview), listsKeyboard(overview))
		edit.ParseMode = tgbotapi.ModeMarkdown
		bot.Send(edit)
		return nil

	case actionRefresh:
		// Re-rendered below with a timestamp suffix, which avoids
		// Telegram's "message is not modified" rejection.

	case actionBack:
		// Fall through to re-render the current list.

	default:
		h.logger.WithField("data", query.Data).Warn("Unknown callback action")
		return nil
	}

	rendered, err := h.mgr.Render(ctx, chatID)
	if err != nil {
		return h.editError(bot, chatID, messageID, err)
	}

	text := banner + renderListText(rendered)
	if action == actionRefresh {
		text += fmt.Sprintf("\n\n🔄 <i>Refreshed at %s</i>", time.Now().Format("15:04:05"))
	}

	// renderListText emits HTML, unlike the Markdown used elsewhere.
	edit := tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, listKeyboard(rendered))
	edit.ParseMode = tgbotapi.ModeHTML
	bot.Send(edit)

	h.logger.WithFields(logrus.Fields{
		"chat_id": chatID,
		"action":  action,
		"target":  id,
	}).Info("Handled callback")

	return nil
}

// editError replaces the message with a user-facing explanation for
// expected errors and propagates everything else.
func (h *CallbackHandler) editError(bot *tgbotapi.BotAPI, chatID int64, messageID int, err error) error {
	text, ok := userMessage(err)
	if !ok {
		return err
	}

	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeMarkdown
	bot.Send(edit)
	return nil
}
