package models

import "time"

// Stats holds aggregate counts over the whole store, shown by the /stats
// admin command and the HTTP API.
type Stats struct {
	TotalChats     int64 `json:"total_chats"`
	TotalLists     int64 `json:"total_lists"`
	TotalItems     int64 `json:"total_items"`
	PurchasedItems int64 `json:"purchased_items"`
}

// PendingItems returns the number of items not yet purchased.
func (s *Stats) PendingItems() int64 {
	return s.TotalItems - s.PurchasedItems
}

// Snapshot is a full JSON export of the store, written by /backup and the
// periodic backup scheduler.
type Snapshot struct {
	ID        string         `json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	Chats     []ChatSnapshot `json:"chats"`
}

// ChatSnapshot is one chat with all of its lists and items.
type ChatSnapshot struct {
	Chat  *Chat           `json:"chat"`
	Lists []*ShoppingList `json:"lists"`
}
