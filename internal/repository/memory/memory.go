// Package memory provides a non-durable store used when no DATABASE_URL is
// configured and as the backend for tests. A single mutex serializes all
// mutations, which trivially satisfies the per-list serialization the
// repository contract requires.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/nvalis/GroceriesBot/internal/models"
	"github.com/nvalis/GroceriesBot/internal/repository"
)

// Store implements every repository interface over in-process maps.
type Store struct {
	mu         sync.Mutex
	chats      map[int64]*models.Chat
	lists      map[int64]*models.ShoppingList
	items      map[int64]*models.ShoppingItem
	nextListID int64
	nextItemID int64
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		chats:      make(map[int64]*models.Chat),
		lists:      make(map[int64]*models.ShoppingList),
		items:      make(map[int64]*models.ShoppingItem),
		nextListID: 1,
		nextItemID: 1,
	}
}

// Chats returns the store viewed as a ChatRepository.
func (s *Store) Chats() repository.ChatRepository { return (*chatStore)(s) }

// Lists returns the store viewed as a ListRepository.
func (s *Store) Lists() repository.ListRepository { return (*listStore)(s) }

// Items returns the store viewed as an ItemRepository.
func (s *Store) Items() repository.ItemRepository { return (*itemStore)(s) }

// Admin returns the store viewed as an AdminRepository.
func (s *Store) Admin() repository.AdminRepository { return (*adminStore)(s) }

func copyChat(c *models.Chat) *models.Chat {
	out := *c
	if c.ActiveListID != nil {
		id := *c.ActiveListID
		out.ActiveListID = &id
	}
	return &out
}

func copyList(l *models.ShoppingList) *models.ShoppingList {
	out := *l
	out.Items = nil
	return &out
}

func copyItem(i *models.ShoppingItem) *models.ShoppingItem {
	out := *i
	return &out
}

// itemsOf returns the list's items in insertion order. Caller holds s.mu.
func (s *Store) itemsOf(listID int64) []*models.ShoppingItem {
	var items []*models.ShoppingItem
	for _, item := range s.items {
		if item.ListID == listID {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(a, b int) bool {
		if items[a].CreatedAt.Equal(items[b].CreatedAt) {
			return items[a].ID < items[b].ID
		}
		return items[a].CreatedAt.Before(items[b].CreatedAt)
	})
	return items
}

// ---------------------------------------------------------------------------
// ChatRepository
// ---------------------------------------------------------------------------

type chatStore Store

func (s *chatStore) Ensure(ctx context.Context, chatID int64, title string) (*models.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	chat, ok := s.chats[chatID]
	if !ok {
		now := time.Now()
		chat = &models.Chat{ChatID: chatID, Title: title, CreatedAt: now, UpdatedAt: now}
		s.chats[chatID] = chat
	} else if title != "" && chat.Title != title {
		chat.Title = title
		chat.UpdatedAt = time.Now()
	}

	return copyChat(chat), nil
}

func (s *chatStore) Get(ctx context.Context, chatID int64) (*models.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	chat, ok := s.chats[chatID]
	if !ok {
		return nil, nil
	}
	return copyChat(chat), nil
}

func (s *chatStore) SetActiveList(ctx context.Context, chatID int64, listID *int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	chat, ok := s.chats[chatID]
	if !ok {
		return nil
	}
	if listID != nil {
		id := *listID
		chat.ActiveListID = &id
	} else {
		chat.ActiveListID = nil
	}
	chat.UpdatedAt = time.Now()
	return nil
}

func (s *chatStore) All(ctx context.Context) ([]*models.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	chats := make([]*models.Chat, 0, len(s.chats))
	for _, chat := range s.chats {
		chats = append(chats, copyChat(chat))
	}
	sort.Slice(chats, func(a, b int) bool { return chats[a].ChatID < chats[b].ChatID })
	return chats, nil
}

// ---------------------------------------------------------------------------
// ListRepository
// ---------------------------------------------------------------------------

type listStore Store

func (s *listStore) Create(ctx context.Context, list *models.ShoppingList) (*models.ShoppingList, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.lists {
		if existing.ChatID == list.ChatID && strings.EqualFold(existing.Name, list.Name) {
			return nil, repository.ErrDuplicate
		}
	}

	list.ID = s.nextListID
	s.nextListID++
	list.CreatedAt = time.Now()
	s.lists[list.ID] = copyList(list)

	return list, nil
}

func (s *listStore) GetByID(ctx context.Context, id int64) (*models.ShoppingList, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, ok := s.lists[id]
	if !ok {
		return nil, nil
	}
	return copyList(list), nil
}

func (s *listStore) GetByName(ctx context.Context, chatID int64, name string) (*models.ShoppingList, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, list := range s.lists {
		if list.ChatID == chatID && strings.EqualFold(list.Name, name) {
			return copyList(list), nil
		}
	}
	return nil, nil
}

func (s *listStore) GetByChatID(ctx context.Context, chatID int64) ([]*models.ShoppingList, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var lists []*models.ShoppingList
	for _, list := range s.lists {
		if list.ChatID == chatID {
			lists = append(lists, copyList(list))
		}
	}
	sort.Slice(lists, func(a, b int) bool {
		if lists[a].CreatedAt.Equal(lists[b].CreatedAt) {
			return lists[a].ID < lists[b].ID
		}
		return lists[a].CreatedAt.Before(lists[b].CreatedAt)
	})
	return lists, nil
}

func (s *listStore) Delete(ctx context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, ok := s.lists[id]
	if !ok {
		return false, nil
	}

	delete(s.lists, id)
	for itemID, item := range s.items {
		if item.ListID == id {
			delete(s.items, itemID)
		}
	}
	for _, chat := range s.chats {
		if chat.ChatID == list.ChatID && chat.ActiveListID != nil && *chat.ActiveListID == id {
			chat.ActiveListID = nil
		}
	}

	return true, nil
}

// ---------------------------------------------------------------------------
// ItemRepository
// ---------------------------------------------------------------------------

type itemStore Store

func (s *itemStore) AddOrMerge(ctx context.Context, listID int64, name string, quantity int64, addedBy string) (*models.ShoppingItem, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range (*Store)(s).itemsOf(listID) {
		if !item.Purchased && strings.EqualFold(item.Name, name) {
			item.Quantity += quantity
			item.UpdatedAt = time.Now()
			return copyItem(item), true, nil
		}
	}

	now := time.Now()
	item := &models.ShoppingItem{
		ID:        s.nextItemID,
		ListID:    listID,
		Name:      name,
		Quantity:  quantity,
		AddedBy:   addedBy,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.nextItemID++
	s.items[item.ID] = item

	return copyItem(item), false, nil
}

func (s *itemStore) GetByList(ctx context.Context, listID int64) ([]*models.ShoppingItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := (*Store)(s).itemsOf(listID)
	out := make([]*models.ShoppingItem, len(items))
	for i, item := range items {
		out[i] = copyItem(item)
	}
	return out, nil
}

func (s *itemStore) RemoveAt(ctx context.Context, listID int64, position int) (*models.ShoppingItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := (*Store)(s).itemsOf(listID)
	if position < 1 || position > len(items) {
		return nil, nil
	}

	item := items[position-1]
	delete(s.items, item.ID)
	return copyItem(item), nil
}

func (s *itemStore) MarkPurchasedAt(ctx context.Context, listID int64, position int) (*models.ShoppingItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := (*Store)(s).itemsOf(listID)
	if position < 1 || position > len(items) {
		return nil, nil
	}

	item := items[position-1]
	if !item.Purchased {
		item.Purchased = true
		item.UpdatedAt = time.Now()
	}
	return copyItem(item), nil
}

func (s *itemStore) inChat(chatID, itemID int64) *models.ShoppingItem {
	item, ok := s.items[itemID]
	if !ok {
		return nil
	}
	list, ok := s.lists[item.ListID]
	if !ok || list.ChatID != chatID {
		return nil
	}
	return item
}

func (s *itemStore) Remove(ctx context.Context, chatID, itemID int64) (*models.ShoppingItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := s.inChat(chatID, itemID)
	if item == nil {
		return nil, nil
	}
	delete(s.items, item.ID)
	return copyItem(item), nil
}

func (s *itemStore) MarkPurchased(ctx context.Context, chatID, itemID int64) (*models.ShoppingItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := s.inChat(chatID, itemID)
	if item == nil {
		return nil, nil
	}
	if !item.Purchased {
		item.Purchased = true
		item.UpdatedAt = time.Now()
	}
	return copyItem(item), nil
}

func (s *itemStore) ClearPurchased(ctx context.Context, listID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	for id, item := range s.items {
		if item.ListID == listID && item.Purchased {
			delete(s.items, id)
			count++
		}
	}
	return count, nil
}

func (s *itemStore) Wipe(ctx context.Context, listID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	for id, item := range s.items {
		if item.ListID == listID {
			delete(s.items, id)
			count++
		}
	}
	return count, nil
}

// ---------------------------------------------------------------------------
// AdminRepository
// ---------------------------------------------------------------------------

type adminStore Store

func (s *adminStore) Stats(ctx context.Context) (*models.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := &models.Stats{
		TotalChats: int64(len(s.chats)),
		TotalLists: int64(len(s.lists)),
		TotalItems: int64(len(s.items)),
	}
	for _, item := range s.items {
		if item.Purchased {
			stats.PurchasedItems++
		}
	}
	return stats, nil
}
