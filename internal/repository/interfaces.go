package repository

import (
	"context"
	"errors"

	"github.com/nvalis/GroceriesBot/internal/models"
)

// ErrDuplicate is returned by ListRepository.Create when a list with the
// same name (case-insensitive) already exists in the chat.
var ErrDuplicate = errors.New("duplicate name")

// ChatRepository defines the interface for chat data operations
type ChatRepository interface {
	// Ensure guarantees a chat record exists and returns it; idempotent.
	// A non-empty title updates a stale stored title.
	Ensure(ctx context.Context, chatID int64, title string) (*models.Chat, error)
	Get(ctx context.Context, chatID int64) (*models.Chat, error)
	// SetActiveList re-points the chat's active list; nil clears it.
	SetActiveList(ctx context.Context, chatID int64, listID *int64) error
	All(ctx context.Context) ([]*models.Chat, error)
}

// ListRepository defines the interface for shopping list operations
type ListRepository interface {
	Create(ctx context.Context, list *models.ShoppingList) (*models.ShoppingList, error)
	GetByID(ctx context.Context, id int64) (*models.ShoppingList, error)
	// GetByName resolves a list by case-insensitive exact name match.
	GetByName(ctx context.Context, chatID int64, name string) (*models.ShoppingList, error)
	GetByChatID(ctx context.Context, chatID int64) ([]*models.ShoppingList, error)
	// Delete removes the list and cascades to its items. Returns false if
	// the list did not exist.
	Delete(ctx context.Context, id int64) (bool, error)
}

// ItemRepository defines the interface for shopping item operations.
//
// Implementations must serialize mutations per list: two concurrent
// AddOrMerge calls for the same name must not lose an increment, and
// position resolution must see the item set as of the start of the
// operation. Positions are 1-based over the list's items in insertion
// order (created_at, then id).
type ItemRepository interface {
	// AddOrMerge increments the quantity of an existing unpurchased item
	// whose name matches case-insensitively, or inserts a new item. The
	// second return value reports whether a merge happened.
	AddOrMerge(ctx context.Context, listID int64, name string, quantity int64, addedBy string) (*models.ShoppingItem, bool, error)
	GetByList(ctx context.Context, listID int64) ([]*models.ShoppingItem, error)
	// RemoveAt deletes the item at the given position. Returns (nil, nil)
	// when the position is out of range.
	RemoveAt(ctx context.Context, listID int64, position int) (*models.ShoppingItem, error)
	// MarkPurchasedAt sets the purchased flag on the item at the given
	// position; idempotent if already purchased. Returns (nil, nil) when
	// the position is out of range.
	MarkPurchasedAt(ctx context.Context, listID int64, position int) (*models.ShoppingItem, error)
	// Remove deletes an item by ID, scoped to the chat's lists. Returns
	// (nil, nil) if no such item exists in the chat.
	Remove(ctx context.Context, chatID, itemID int64) (*models.ShoppingItem, error)
	// MarkPurchased is the ID-addressed variant of MarkPurchasedAt.
	MarkPurchased(ctx context.Context, chatID, itemID int64) (*models.ShoppingItem, error)
	// ClearPurchased deletes all purchased items from a list and returns
	// the number removed.
	ClearPurchased(ctx context.Context, listID int64) (int64, error)
	// Wipe deletes all items from a list and returns the number removed.
	Wipe(ctx context.Context, listID int64) (int64, error)
}

// AdminRepository defines read-only aggregate queries used by the admin
// commands and the HTTP API.
type AdminRepository interface {
	Stats(ctx context.Context) (*models.Stats, error)
}
