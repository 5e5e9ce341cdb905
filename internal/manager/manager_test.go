package manager

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/nvalis/GroceriesBot/internal/repository/memory"
)

const testChat int64 = 100

func newTestManager() *Manager {
	l := logrus.New()
	l.SetOutput(io.Discard)

	store := memory.New()
	return New(l, store.Chats(), store.Lists(), store.Items(), store.Admin())
}

// newTestManagerWithList creates a manager whose test chat already has an
// active list named "Groceries".
func newTestManagerWithList(t *testing.T) *Manager {
	t.Helper()

	mgr := newTestManager()
	if _, err := mgr.CreateList(context.Background(), testChat, "Groceries"); err != nil {
		t.Fatalf("CreateList failed: %v", err)
	}
	return mgr
}

func TestCreateListActivatesFirstOnly(t *testing.T) {
	ctx := context.Background()
	mgr := newTestManager()

	first, err := mgr.CreateList(ctx, testChat, "Groceries")
	if err != nil {
		t.Fatalf("CreateList failed: %v", err)
	}

	if _, err := mgr.CreateList(ctx, testChat, "Hardware"); err != nil {
		t.Fatalf("CreateList failed: %v", err)
	}

	rendered, err := mgr.Render(ctx, testChat)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if rendered.List.ID != first.ID {
		t.Errorf("active list = %q, want the first created list", rendered.List.Name)
	}
}

func TestCreateListDuplicateNameCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	mgr := newTestManagerWithList(t)

	_, err := mgr.CreateList(ctx, testChat, "groceries")
	if !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("CreateList error = %v, want ErrDuplicateName", err)
	}
}

func TestAddItemMergesQuantities(t *testing.T) {
	ctx := context.Background()
	mgr := newTestManagerWithList(t)

	item, merged, err := mgr.AddItem(ctx, testChat, "milk 2", "alice")
	if err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	if merged {
		t.Error("first add reported as merge")
	}

	item, merged, err = mgr.AddItem(ctx, testChat, "Milk 3", "bob")
	if err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	if !merged {
		t.Error("second add of the same name did not merge")
	}
	if item.Quantity != 5 {
		t.Errorf("merged quantity = %d, want 5", item.Quantity)
	}

	rendered, err := mgr.Render(ctx, testChat)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if len(rendered.Items) != 1 {
		t.Errorf("item count = %d, want 1", len(rendered.Items))
	}
}

func TestAddItemPurchasedNotMerged(t *testing.T) {
	ctx := context.Background()
	mgr := newTestManagerWithList(t)

	if _, _, err := mgr.AddItem(ctx, testChat, "milk", "alice"); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	if _, err := mgr.MarkDone(ctx, testChat, 1); err != nil {
		t.Fatalf("MarkDone failed: %v", err)
	}

	_, merged, err := mgr.AddItem(ctx, testChat, "milk", "bob")
	if err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	if merged {
		t.Error("add merged into a purchased item")
	}

	rendered, err := mgr.Render(ctx, testChat)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if len(rendered.Items) != 2 {
		t.Errorf("item count = %d, want 2", len(rendered.Items))
	}
}

func TestAddItemNoActiveList(t *testing.T) {
	ctx := context.Background()
	mgr := newTestManager()

	_, _, err := mgr.AddItem(ctx, testChat, "milk", "alice")
	if !errors.Is(err, ErrNoActiveList) {
		t.Fatalf("AddItem error = %v, want ErrNoActiveList", err)
	}
}

func TestRemoveItemRenumbersContiguously(t *testing.T) {
	ctx := context.Background()
	mgr := newTestManagerWithList(t)

	for _, name := range []string{"milk", "bread", "eggs"} {
		if _, _, err := mgr.AddItem(ctx, testChat, name, "alice"); err != nil {
			t.Fatalf("AddItem(%q) failed: %v", name, err)
		}
	}

	removed, err := mgr.RemoveItem(ctx, testChat, 2)
	if err != nil {
		t.Fatalf("RemoveItem failed: %v", err)
	}
	if removed.Name != "bread" {
		t.Errorf("removed item = %q, want %q", removed.Name, "bread")
	}

	rendered, err := mgr.Render(ctx, testChat)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if len(rendered.Items) != 2 {
		t.Fatalf("item count = %d, want 2", len(rendered.Items))
	}
	for i, item := range rendered.Items {
		if item.Number != i+1 {
			t.Errorf("item %q has number %d, want %d", item.Name, item.Number, i+1)
		}
	}
	if rendered.Items[1].Name != "eggs" || rendered.Items[1].Number != 2 {
		t.Errorf("eggs renumbered to %d, want 2", rendered.Items[1].Number)
	}
}

func TestRemoveItemOutOfRange(t *testing.T) {
	ctx := context.Background()
	mgr := newTestManagerWithList(t)

	if _, _, err := mgr.AddItem(ctx, testChat, "milk", "alice"); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}

	for _, number := range []int{0, -1, 2, 99} {
		if _, err := mgr.RemoveItem(ctx, testChat, number); !errors.Is(err, ErrOutOfRange) {
			t.Errorf("RemoveItem(%d) error = %v, want ErrOutOfRange", number, err)
		}
	}
}

func TestMarkDoneIdempotent(t *testing.T) {
	ctx := context.Background()
	mgr := newTestManagerWithList(t)

	if _, _, err := mgr.AddItem(ctx, testChat, "milk", "alice"); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}

	first, err := mgr.MarkDone(ctx, testChat, 1)
	if err != nil {
		t.Fatalf("MarkDone failed: %v", err)
	}
	if !first.Purchased {
		t.Error("item not purchased after MarkDone")
	}

	second, err := mgr.MarkDone(ctx, testChat, 1)
	if err != nil {
		t.Fatalf("second MarkDone failed: %v", err)
	}
	if !second.Purchased {
		t.Error("item lost purchased flag after repeated MarkDone")
	}
}

func TestMarkDoneKeepsItemInPlace(t *testing.T) {
	ctx := context.Background()
	mgr := newTestManagerWithList(t)

	for _, name := range []string{"milk", "bread"} {
		if _, _, err := mgr.AddItem(ctx, testChat, name, "alice"); err != nil {
			t.Fatalf("AddItem(%q) failed: %v", name, err)
		}
	}
	if _, err := mgr.MarkDone(ctx, testChat, 1); err != nil {
		t.Fatalf("MarkDone failed: %v", err)
	}

	rendered, err := mgr.Render(ctx, testChat)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if rendered.Items[0].Name != "milk" || !rendered.Items[0].Purchased {
		t.Error("purchased item did not stay at position 1")
	}
	if rendered.Remaining() != 1 || rendered.Purchased() != 1 {
		t.Errorf("remaining/purchased = %d/%d, want 1/1",
			rendered.Remaining(), rendered.Purchased())
	}
}

func TestSwitchActiveUnknownNameLeavesActiveUnchanged(t *testing.T) {
	ctx := context.Background()
	mgr := newTestManagerWithList(t)

	_, err := mgr.SwitchActive(ctx, testChat, "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("SwitchActive error = %v, want ErrNotFound", err)
	}

	rendered, err := mgr.Render(ctx, testChat)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if rendered.List.Name != "Groceries" {
		t.Errorf("active list = %q, want %q after failed switch", rendered.List.Name, "Groceries")
	}
}

func TestSwitchActiveCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	mgr := newTestManagerWithList(t)

	if _, err := mgr.CreateList(ctx, testChat, "Hardware"); err != nil {
		t.Fatalf("CreateList failed: %v", err)
	}

	list, err := mgr.SwitchActive(ctx, testChat, "hardware")
	if err != nil {
		t.Fatalf("SwitchActive failed: %v", err)
	}
	if list.Name != "Hardware" {
		t.Errorf("switched to %q, want %q", list.Name, "Hardware")
	}
}

func TestDeleteActiveListClearsActive(t *testing.T) {
	ctx := context.Background()
	mgr := newTestManagerWithList(t)

	if _, err := mgr.CreateList(ctx, testChat, "Hardware"); err != nil {
		t.Fatalf("CreateList failed: %v", err)
	}

	if _, err := mgr.DeleteList(ctx, testChat, "Groceries"); err != nil {
		t.Fatalf("DeleteList failed: %v", err)
	}

	// The second list must not be adopted silently.
	if _, err := mgr.Render(ctx, testChat); !errors.Is(err, ErrNoActiveList) {
		t.Fatalf("Render error = %v, want ErrNoActiveList after deleting the active list", err)
	}

	overview, err := mgr.ListLists(ctx, testChat)
	if err != nil {
		t.Fatalf("ListLists failed: %v", err)
	}
	if overview.Active != nil {
		t.Errorf("overview active = %q, want none", overview.Active.Name)
	}
	if len(overview.Lists) != 1 {
		t.Errorf("list count = %d, want 1", len(overview.Lists))
	}
}

func TestDeleteInactiveListKeepsActive(t *testing.T) {
	ctx := context.Background()
	mgr := newTestManagerWithList(t)

	if _, err := mgr.CreateList(ctx, testChat, "Hardware"); err != nil {
		t.Fatalf("CreateList failed: %v", err)
	}
	if _, err := mgr.DeleteList(ctx, testChat, "Hardware"); err != nil {
		t.Fatalf("DeleteList failed: %v", err)
	}

	rendered, err := mgr.Render(ctx, testChat)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if rendered.List.Name != "Groceries" {
		t.Errorf("active list = %q, want %q", rendered.List.Name, "Groceries")
	}
}

func TestClearPurchased(t *testing.T) {
	ctx := context.Background()
	mgr := newTestManagerWithList(t)

	for _, name := range []string{"milk", "bread", "eggs"} {
		if _, _, err := mgr.AddItem(ctx, testChat, name, "alice"); err != nil {
			t.Fatalf("AddItem(%q) failed: %v", name, err)
		}
	}
	if _, err := mgr.MarkDone(ctx, testChat, 1); err != nil {
		t.Fatalf("MarkDone failed: %v", err)
	}
	if _, err := mgr.MarkDone(ctx, testChat, 3); err != nil {
		t.Fatalf("MarkDone failed: %v", err)
	}

	count, err := mgr.ClearPurchased(ctx, testChat)
	if err != nil {
		t.Fatalf("ClearPurchased failed: %v", err)
	}
	if count != 2 {
		t.Errorf("cleared %d items, want 2", count)
	}

	rendered, err := mgr.Render(ctx, testChat)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if len(rendered.Items) != 1 || rendered.Items[0].Name != "bread" {
		t.Errorf("surviving items = %v, want only bread", rendered.Items)
	}
	if rendered.Items[0].Number != 1 {
		t.Errorf("bread renumbered to %d, want 1", rendered.Items[0].Number)
	}
}

func TestWipeEmptyListReturnsZero(t *testing.T) {
	ctx := context.Background()
	mgr := newTestManagerWithList(t)

	count, err := mgr.Wipe(ctx, testChat)
	if err != nil {
		t.Fatalf("Wipe failed: %v", err)
	}
	if count != 0 {
		t.Errorf("wiped %d items from an empty list, want 0", count)
	}
}

func TestRemoveItemByIDScopedToChat(t *testing.T) {
	ctx := context.Background()
	mgr := newTestManagerWithList(t)

	item, _, err := mgr.AddItem(ctx, testChat, "milk", "alice")
	if err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}

	// A foreign chat must not be able to address the item.
	if _, err := mgr.RemoveItemByID(ctx, testChat+1, item.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("cross-chat RemoveItemByID error = %v, want ErrNotFound", err)
	}

	removed, err := mgr.RemoveItemByID(ctx, testChat, item.ID)
	if err != nil {
		t.Fatalf("RemoveItemByID failed: %v", err)
	}
	if removed.ID != item.ID {
		t.Errorf("removed item %d, want %d", removed.ID, item.ID)
	}

	// A second press on the same button targets a gone item.
	if _, err := mgr.RemoveItemByID(ctx, testChat, item.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("repeated RemoveItemByID error = %v, want ErrNotFound", err)
	}
}

func TestMarkDoneByIDIdempotent(t *testing.T) {
	ctx := context.Background()
	mgr := newTestManagerWithList(t)

	item, _, err := mgr.AddItem(ctx, testChat, "milk", "alice")
	if err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}

	for i := 0; i < 2; i++ {
		done, err := mgr.MarkDoneByID(ctx, testChat, item.ID)
		if err != nil {
			t.Fatalf("MarkDoneByID #%d failed: %v", i+1, err)
		}
		if !done.Purchased {
			t.Errorf("MarkDoneByID #%d left item unpurchased", i+1)
		}
	}
}

func TestConcurrentAddItemMerges(t *testing.T) {
	ctx := context.Background()
	mgr := newTestManagerWithList(t)

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, _, err := mgr.AddItem(ctx, testChat, "milk 1", "alice"); err != nil {
				t.Errorf("AddItem failed: %v", err)
			}
		}()
	}
	wg.Wait()

	rendered, err := mgr.Render(ctx, testChat)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if len(rendered.Items) != 1 {
		t.Fatalf("item count = %d, want 1 after concurrent adds", len(rendered.Items))
	}
	if rendered.Items[0].Quantity != 2 {
		t.Errorf("quantity = %d, want 2 after concurrent adds", rendered.Items[0].Quantity)
	}
}

func TestRenderCacheInvalidatedByMutation(t *testing.T) {
	ctx := context.Background()
	mgr := newTestManagerWithList(t)

	if _, _, err := mgr.AddItem(ctx, testChat, "milk", "alice"); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}

	if _, err := mgr.Render(ctx, testChat); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if _, err := mgr.Render(ctx, testChat); err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if stats := mgr.CacheStats(); stats.Hits == 0 {
		t.Error("second render did not hit the cache")
	}

	if _, _, err := mgr.AddItem(ctx, testChat, "bread", "alice"); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}

	rendered, err := mgr.Render(ctx, testChat)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if len(rendered.Items) != 2 {
		t.Errorf("render after mutation shows %d items, want 2", len(rendered.Items))
	}
}

func TestListListsIsPureRead(t *testing.T) {
	ctx := context.Background()
	mgr := newTestManager()

	overview, err := mgr.ListLists(ctx, testChat)
	if err != nil {
		t.Fatalf("ListLists failed: %v", err)
	}
	if len(overview.Lists) != 0 || overview.Active != nil {
		t.Errorf("overview for unknown chat = %+v, want empty", overview)
	}

	stats, err := mgr.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.TotalChats != 0 {
		t.Errorf("ListLists created %d chat record(s), want 0", stats.TotalChats)
	}
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	mgr := newTestManagerWithList(t)

	for _, name := range []string{"milk", "bread"} {
		if _, _, err := mgr.AddItem(ctx, testChat, name, "alice"); err != nil {
			t.Fatalf("AddItem(%q) failed: %v", name, err)
		}
	}
	if _, err := mgr.MarkDone(ctx, testChat, 1); err != nil {
		t.Fatalf("MarkDone failed: %v", err)
	}

	stats, err := mgr.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.TotalChats != 1 || stats.TotalLists != 1 || stats.TotalItems != 2 {
		t.Errorf("stats = %+v, want 1 chat, 1 list, 2 items", stats)
	}
	if stats.PurchasedItems != 1 || stats.PendingItems() != 1 {
		t.Errorf("purchased/pending = %d/%d, want 1/1",
			stats.PurchasedItems, stats.PendingItems())
	}
}

func TestWriteBackup(t *testing.T) {
	ctx := context.Background()
	mgr := newTestManagerWithList(t)

	if _, _, err := mgr.AddItem(ctx, testChat, "milk 2", "alice"); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}

	dir := t.TempDir()
	path, err := mgr.WriteBackup(ctx, dir)
	if err != nil {
		t.Fatalf("WriteBackup failed: %v", err)
	}
	if filepath.Dir(path) != dir {
		t.Errorf("backup written to %q, want directory %q", path, dir)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading backup failed: %v", err)
	}
	for _, want := range []string{"Groceries", "milk"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("backup does not contain %q", want)
		}
	}
}
