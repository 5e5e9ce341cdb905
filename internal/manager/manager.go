package manager

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/nvalis/GroceriesBot/internal/cache"
	"github.com/nvalis/GroceriesBot/internal/models"
	"github.com/nvalis/GroceriesBot/internal/repository"
)

// Manager is the single authoritative API for all list and item mutations
// and queries. It is the only component that touches the store, so the
// invariants (active-list resolution, display numbering, quantity merge,
// name uniqueness) are enforced in one place. One shared instance is
// constructed at process start and injected into the transport layers.
type Manager struct {
	logger *logrus.Logger
	cache  *cache.Cache
	chats  repository.ChatRepository
	lists  repository.ListRepository
	items  repository.ItemRepository
	admin  repository.AdminRepository
}

// New creates a Manager with all required dependencies.
func New(logger *logrus.Logger,
	chats repository.ChatRepository,
	lists repository.ListRepository,
	items repository.ItemRepository,
	admin repository.AdminRepository,
) *Manager {
	return &Manager{
		logger: logger,
		cache:  cache.New(),
		chats:  chats,
		lists:  lists,
		items:  items,
		admin:  admin,
	}
}

// storeErr logs a persistence failure for operator visibility and wraps it
// as ErrStoreUnavailable.
func (m *Manager) storeErr(op string, err error) error {
	m.logger.WithError(err).Errorf("Store failure during %s", op)
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}

// EnsureChat guarantees a chat record exists; idempotent.
func (m *Manager) EnsureChat(ctx context.Context, chatID int64, title string) (*models.Chat, error) {
	chat, err := m.chats.Ensure(ctx, chatID, strings.TrimSpace(title))
	if err != nil {
		return nil, m.storeErr("ensure chat", err)
	}
	return chat, nil
}

// CreateList creates a new named list in the chat. Fails with
// ErrDuplicateName if a list with that name (case-insensitive) already
// exists. The new list becomes active when the chat has none.
func (m *Manager) CreateList(ctx context.Context, chatID int64, name string) (*models.ShoppingList, error) {
	name = strings.TrimSpace(name)

	chat, err := m.EnsureChat(ctx, chatID, "")
	if err != nil {
		return nil, err
	}

	list, err := m.lists.Create(ctx, &models.ShoppingList{ChatID: chatID, Name: name})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("list %q: %w", name, ErrDuplicateName)
		}
		return nil, m.storeErr("create list", err)
	}

	if !chat.HasActiveList() {
		if err := m.chats.SetActiveList(ctx, chatID, &list.ID); err != nil {
			return nil, m.storeErr("activate new list", err)
		}
	}

	m.cache.InvalidateChat(chatID)
	m.logger.WithFields(logrus.Fields{
		"chat_id": chatID,
		"list_id": list.ID,
	}).Infof("Created list %q", list.Name)

	return list, nil
}

// SwitchActive makes the named list the chat's active list. Resolution is
// a case-insensitive exact match; fails with ErrNotFound and leaves the
// previous active list unchanged when no such list exists.
func (m *Manager) SwitchActive(ctx context.Context, chatID int64, name string) (*models.ShoppingList, error) {
	if _, err := m.EnsureChat(ctx, chatID, ""); err != nil {
		return nil, err
	}

	list, err := m.lists.GetByName(ctx, chatID, strings.TrimSpace(name))
	if err != nil {
		return nil, m.storeErr("resolve list name", err)
	}
	if list == nil {
		return nil, fmt.Errorf("list %q: %w", name, ErrNotFound)
	}

	if err := m.chats.SetActiveList(ctx, chatID, &list.ID); err != nil {
		return nil, m.storeErr("switch active list", err)
	}

	m.cache.InvalidateChat(chatID)
	return list, nil
}

// DeleteList removes the named list and all of its items. When the deleted
// list was active, the chat's active reference is cleared; another list is
// never picked silently.
func (m *Manager) DeleteList(ctx context.Context, chatID int64, name string) (*models.ShoppingList, error) {
	list, err := m.lists.GetByName(ctx, chatID, strings.TrimSpace(name))
	if err != nil {
		return nil, m.storeErr("resolve list name", err)
	}
	if list == nil {
		return nil, fmt.Errorf("list %q: %w", name, ErrNotFound)
	}

	deleted, err := m.lists.Delete(ctx, list.ID)
	if err != nil {
		return nil, m.storeErr("delete list", err)
	}
	if !deleted {
		return nil, fmt.Errorf("list %q: %w", name, ErrNotFound)
	}

	m.cache.InvalidateChat(chatID)
	m.logger.WithFields(logrus.Fields{
		"chat_id": chatID,
		"list_id": list.ID,
	}).Infof("Deleted list %q", list.Name)

	return list, nil
}

// activeList resolves the chat's active list, returning ErrNoActiveList
// when the chat has none (or the stored reference is stale).
func (m *Manager) activeList(ctx context.Context, chatID int64) (*models.ShoppingList, error) {
	chat, err := m.chats.Get(ctx, chatID)
	if err != nil {
		return nil, m.storeErr("get chat", err)
	}
	if chat == nil || !chat.HasActiveList() {
		return nil, ErrNoActiveList
	}

	list, err := m.lists.GetByID(ctx, *chat.ActiveListID)
	if err != nil {
		return nil, m.storeErr("get active list", err)
	}
	if list == nil {
		return nil, ErrNoActiveList
	}

	return list, nil
}

// ListByID resolves a list by its stable identifier, scoped to the chat.
func (m *Manager) ListByID(ctx context.Context, chatID, listID int64) (*models.ShoppingList, error) {
	list, err := m.lists.GetByID(ctx, listID)
	if err != nil {
		return nil, m.storeErr("get list", err)
	}
	if list == nil || list.ChatID != chatID {
		return nil, fmt.Errorf("list #%d: %w", listID, ErrNotFound)
	}
	return list, nil
}

// AddItem parses rawText into a name and quantity and adds it to the
// chat's active list. When an unpurchased item with the same normalized
// name already exists, the quantities are merged instead of creating a
// duplicate row; the second return value reports a merge.
func (m *Manager) AddItem(ctx context.Context, chatID int64, rawText, addedBy string) (*models.ShoppingItem, bool, error) {
	name, quantity := ParseItemText(rawText)
	if name == "" {
		return nil, false, fmt.Errorf("empty item name")
	}

	list, err := m.activeList(ctx, chatID)
	if err != nil {
		return nil, false, err
	}

	item, merged, err := m.items.AddOrMerge(ctx, list.ID, name, quantity, addedBy)
	if err != nil {
		return nil, false, m.storeErr("add item", err)
	}

	m.cache.Invalidate(chatID, list.ID)
	return item, merged, nil
}

// RemoveItem deletes the item at the given display number. The number is
// re-resolved against the current item set under the store's per-list
// lock, never against a memoized snapshot.
func (m *Manager) RemoveItem(ctx context.Context, chatID int64, number int) (*models.ShoppingItem, error) {
	list, err := m.activeList(ctx, chatID)
	if err != nil {
		return nil, err
	}

	item, err := m.items.RemoveAt(ctx, list.ID, number)
	if err != nil {
		return nil, m.storeErr("remove item", err)
	}
	if item == nil {
		return nil, fmt.Errorf("item %d: %w", number, ErrOutOfRange)
	}

	m.cache.Invalidate(chatID, list.ID)
	return item, nil
}

// MarkDone sets the purchased flag on the item at the given display
// number; idempotent when the item is already purchased.
func (m *Manager) MarkDone(ctx context.Context, chatID int64, number int) (*models.ShoppingItem, error) {
	list, err := m.activeList(ctx, chatID)
	if err != nil {
		return nil, err
	}

	item, err := m.items.MarkPurchasedAt(ctx, list.ID, number)
	if err != nil {
		return nil, m.storeErr("mark item done", err)
	}
	if item == nil {
		return nil, fmt.Errorf("item %d: %w", number, ErrOutOfRange)
	}

	m.cache.Invalidate(chatID, list.ID)
	return item, nil
}

// RemoveItemByID deletes an item by its stable identifier, scoped to the
// chat. Button callbacks use this so a press keeps targeting the same
// item regardless of concurrent renumbering.
func (m *Manager) RemoveItemByID(ctx context.Context, chatID, itemID int64) (*models.ShoppingItem, error) {
	item, err := m.items.Remove(ctx, chatID, itemID)
	if err != nil {
		return nil, m.storeErr("remove item by id", err)
	}
	if item == nil {
		return nil, fmt.Errorf("item #%d: %w", itemID, ErrNotFound)
	}

	m.cache.Invalidate(chatID, item.ListID)
	return item, nil
}

// MarkDoneByID is the ID-addressed variant of MarkDone; idempotent.
func (m *Manager) MarkDoneByID(ctx context.Context, chatID, itemID int64) (*models.ShoppingItem, error) {
	item, err := m.items.MarkPurchased(ctx, chatID, itemID)
	if err != nil {
		return nil, m.storeErr("mark item done by id", err)
	}
	if item == nil {
		return nil, fmt.Errorf("item #%d: %w", itemID, ErrNotFound)
	}

	m.cache.Invalidate(chatID, item.ListID)
	return item, nil
}

// ClearPurchased deletes all purchased items from the active list and
// returns the number removed.
func (m *Manager) ClearPurchased(ctx context.Context, chatID int64) (int64, error) {
	list, err := m.activeList(ctx, chatID)
	if err != nil {
		return 0, err
	}

	count, err := m.items.ClearPurchased(ctx, list.ID)
	if err != nil {
		return 0, m.storeErr("clear purchased items", err)
	}

	m.cache.Invalidate(chatID, list.ID)
	return count, nil
}

// Wipe deletes all items from the active list and returns the number
// removed. Wiping an empty list returns 0 without error.
func (m *Manager) Wipe(ctx context.Context, chatID int64) (int64, error) {
	list, err := m.activeList(ctx, chatID)
	if err != nil {
		return 0, err
	}

	count, err := m.items.Wipe(ctx, list.ID)
	if err != nil {
		return 0, m.storeErr("wipe list", err)
	}

	m.cache.Invalidate(chatID, list.ID)
	return count, nil
}

// Stats returns aggregate counts over the whole store.
func (m *Manager) Stats(ctx context.Context) (*models.Stats, error) {
	stats, err := m.admin.Stats(ctx)
	if err != nil {
		return nil, m.storeErr("collect stats", err)
	}
	return stats, nil
}

// CacheStats exposes the render cache counters.
func (m *Manager) CacheStats() cache.Stats {
	return m.cache.Stats()
}
