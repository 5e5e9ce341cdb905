package manager

import (
	"context"

	"github.com/nvalis/GroceriesBot/internal/models"
)

// RenderedItem pairs an item with its display number: the transient
// 1-based position within the rendered list, recomputed on every render
// and never persisted.
type RenderedItem struct {
	Number int `json:"number"`
	*models.ShoppingItem
}

// RenderedList is the ordered view of a list. Items appear in insertion
// order (creation time, then id) with purchased items inline, and display
// numbers form a contiguous 1..N sequence over the currently-present
// items.
type RenderedList struct {
	List  *models.ShoppingList `json:"list"`
	Items []RenderedItem       `json:"items"`
}

// Remaining returns the number of unpurchased items.
func (r *RenderedList) Remaining() int {
	n := 0
	for _, item := range r.Items {
		if !item.Purchased {
			n++
		}
	}
	return n
}

// Purchased returns the number of purchased items.
func (r *RenderedList) Purchased() int {
	return len(r.Items) - r.Remaining()
}

// ListInfo summarizes one list for the /lists overview.
type ListInfo struct {
	List      *models.ShoppingList `json:"list"`
	ItemCount int                  `json:"item_count"`
	Active    bool                 `json:"active"`
}

// Overview describes all lists of a chat and which one is active.
type Overview struct {
	Lists  []ListInfo           `json:"lists"`
	Active *models.ShoppingList `json:"active,omitempty"`
}

// Render produces the ordered (number, name, quantity, purchased) view of
// the chat's active list. Reads go through the render cache; every
// mutating operation invalidates the affected entry, so a cached view is
// never stale.
func (m *Manager) Render(ctx context.Context, chatID int64) (*RenderedList, error) {
	list, err := m.activeList(ctx, chatID)
	if err != nil {
		return nil, err
	}

	if cached, ok := m.cache.Get(chatID, list.ID); ok {
		if rendered, ok := cached.(*RenderedList); ok {
			return rendered, nil
		}
	}

	items, err := m.items.GetByList(ctx, list.ID)
	if err != nil {
		return nil, m.storeErr("load items", err)
	}

	rendered := &RenderedList{List: list, Items: make([]RenderedItem, 0, len(items))}
	for i, item := range items {
		rendered.Items = append(rendered.Items, RenderedItem{Number: i + 1, ShoppingItem: item})
	}

	m.cache.Put(chatID, list.ID, rendered)
	return rendered, nil
}

// ListLists returns all lists of the chat, with item counts and the
// active marker. A chat without lists gets an empty overview, not an
// error. This is a pure read: an unknown chat is not recorded, so the
// HTTP API can be probed without creating chat rows.
func (m *Manager) ListLists(ctx context.Context, chatID int64) (*Overview, error) {
	chat, err := m.chats.Get(ctx, chatID)
	if err != nil {
		return nil, m.storeErr("get chat", err)
	}

	lists, err := m.lists.GetByChatID(ctx, chatID)
	if err != nil {
		return nil, m.storeErr("load lists", err)
	}

	overview := &Overview{Lists: make([]ListInfo, 0, len(lists))}
	for _, list := range lists {
		items, err := m.items.GetByList(ctx, list.ID)
		if err != nil {
			return nil, m.storeErr("count items", err)
		}

		active := chat != nil && chat.ActiveListID != nil && *chat.ActiveListID == list.ID
		if active {
			overview.Active = list
		}
		overview.Lists = append(overview.Lists, ListInfo{
			List:      list,
			ItemCount: len(items),
			Active:    active,
		})
	}

	return overview, nil
}
