package handlers

import (
	"fmt"
	"html"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/nvalis/GroceriesBot/internal/manager"
)

// escapeMarkdown neutralizes the Markdown control characters Telegram
// recognizes in user-supplied names.
func escapeMarkdown(s string) string {
	r := strings.NewReplacer("*", "\\*", "_", "\\_", "`", "\\`")
	return r.Replace(s)
}

// truncate shortens a name for button labels without splitting runes.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}

// quantityPrefix renders the quantity in front of the item name; a
// quantity of 1 is implicit and not shown.
func quantityPrefix(quantity int64) string {
	if quantity == 1 {
		return ""
	}
	return fmt.Sprintf("%d× ", quantity)
}

// renderListText formats the active list for a chat message. Items keep
// their insertion order with purchased ones struck through inline, and
// the display numbers match what /done and /remove accept. The output is
// HTML (legacy Markdown has no strikethrough), so messages built from it
// must be sent with ParseMode HTML.
func renderListText(rendered *manager.RenderedList) string {
	name := html.EscapeString(rendered.List.Name)

	if len(rendered.Items) == 0 {
		return fmt.Sprintf("📝 <b>%s</b> is empty.\n\nAdd items with <code>/add &lt;item&gt; [quantity]</code>", name)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📝 <b>%s</b>\n\n", name))

	for _, item := range rendered.Items {
		if item.Purchased {
			sb.WriteString(fmt.Sprintf("%d. ✅ <s>%s%s</s>\n",
				item.Number, quantityPrefix(item.Quantity), html.EscapeString(item.Name)))
		} else {
			sb.WriteString(fmt.Sprintf("%d. 📝 %s%s\n",
				item.Number, quantityPrefix(item.Quantity), html.EscapeString(item.Name)))
		}
	}

	sb.WriteString(fmt.Sprintf("\n<i>%d remaining, %d bought</i>",
		rendered.Remaining(), rendered.Purchased()))

	return sb.String()
}

// listKeyboard builds the inline keyboard for the rendered list: one
// done/remove row per unpurchased item, bulk actions, and navigation.
// Button payloads carry stable item identifiers, never display numbers,
// so a press still targets the same item after concurrent edits.
func listKeyboard(rendered *manager.RenderedList) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton

	for _, item := range rendered.Items {
		if item.Purchased {
			continue
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				"✅ Done: "+truncate(item.Name, 20), encodeItemAction(actionDone, item.ID)),
			tgbotapi.NewInlineKeyboardButtonData(
				"🗑 Remove: "+truncate(item.Name, 15), encodeItemAction(actionRemove, item.ID)),
		))
	}

	if rendered.Purchased() > 0 {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🧹 Clear Bought Items", actionClear),
			tgbotapi.NewInlineKeyboardButtonData("🗑 Wipe All", actionWipe),
		))
	} else if len(rendered.Items) > 0 {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🗑 Wipe All", actionWipe),
		))
	}

	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("📋 All Lists", actionLists),
		tgbotapi.NewInlineKeyboardButtonData("🔄 Refresh", actionRefresh),
	))

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// listsOverviewText formats the /lists overview.
func listsOverviewText(overview *manager.Overview) string {
	if len(overview.Lists) == 0 {
		return "📋 *No lists yet!*\n\nCreate one with `/new <name>`"
	}

	var sb strings.Builder
	sb.WriteString("📋 *Shopping Lists:*\n\n")

	for _, info := range overview.Lists {
		marker := "▫️"
		if info.Active {
			marker = "🔹"
		}
		sb.WriteString(fmt.Sprintf("%s *%s* - %d items\n",
			marker, escapeMarkdown(info.List.Name), info.ItemCount))
	}

	if overview.Active != nil {
		sb.WriteString(fmt.Sprintf("\n💡 Active list: *%s*", escapeMarkdown(overview.Active.Name)))
	} else {
		sb.WriteString("\n💡 No active list. Switch with `/go <name>`")
	}

	return sb.String()
}

// listsKeyboard offers one switch button per list plus navigation.
func listsKeyboard(overview *manager.Overview) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton

	for _, info := range overview.Lists {
		if info.Active {
			continue
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				"🛒 Switch to "+truncate(info.List.Name, 25),
				encodeItemAction(actionSwitch, info.List.ID)),
		))
	}

	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("🔙 Back to Current List", actionBack),
	))

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}
