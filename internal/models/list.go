package models

import "time"

// ShoppingList is a named collection of items scoped to exactly one chat.
// List names are unique per chat (case-insensitive) so that /go <name>
// is unambiguous.
type ShoppingList struct {
	ID        int64          `json:"id" db:"id"`
	ChatID    int64          `json:"chat_id" db:"chat_id"`
	Name      string         `json:"name" db:"name"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
	Items     []ShoppingItem `json:"items,omitempty"`
}

// ShoppingItem is a purchasable entry in exactly one list. Its ID is the
// stable storage identifier; the position shown to users is computed at
// render time and never persisted.
type ShoppingItem struct {
	ID        int64     `json:"id" db:"id"`
	ListID    int64     `json:"list_id" db:"list_id"`
	Name      string    `json:"name" db:"name"`
	Quantity  int64     `json:"quantity" db:"quantity"`
	AddedBy   string    `json:"added_by" db:"added_by"`
	Purchased bool      `json:"purchased" db:"purchased"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
