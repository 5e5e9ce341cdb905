package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/nvalis/GroceriesBot/internal/manager"
	"github.com/nvalis/GroceriesBot/internal/repository/memory"
)

func newTestServer(t *testing.T) (*httptest.Server, *manager.Manager) {
	t.Helper()

	l := logrus.New()
	l.SetOutput(io.Discard)

	store := memory.New()
	mgr := manager.New(l, store.Chats(), store.Lists(), store.Items(), store.Admin())

	srv := httptest.NewServer(NewServer(mgr, l).Handler())
	t.Cleanup(srv.Close)

	return srv, mgr
}

func getJSON(t *testing.T, url string, wantStatus int, out any) {
	t.Helper()

	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s failed: %v", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		t.Fatalf("GET %s status = %d, want %d", url, resp.StatusCode, wantStatus)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decoding %s response failed: %v", url, err)
		}
	}
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)

	var body map[string]string
	getJSON(t, srv.URL+"/healthz", http.StatusOK, &body)
	if body["status"] != "ok" {
		t.Errorf("health status = %q, want %q", body["status"], "ok")
	}
}

func TestGetListsRequiresChatID(t *testing.T) {
	srv, _ := newTestServer(t)

	getJSON(t, srv.URL+"/api/lists", http.StatusBadRequest, nil)
	getJSON(t, srv.URL+"/api/lists?chat_id=abc", http.StatusBadRequest, nil)
}

func TestGetListsDoesNotCreateChat(t *testing.T) {
	srv, mgr := newTestServer(t)

	var overview manager.Overview
	getJSON(t, srv.URL+"/api/lists?chat_id=4242", http.StatusOK, &overview)
	if len(overview.Lists) != 0 || overview.Active != nil {
		t.Errorf("overview for unknown chat = %+v, want empty", overview)
	}

	stats, err := mgr.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.TotalChats != 0 {
		t.Errorf("read-only GET created %d chat record(s)", stats.TotalChats)
	}
}

func TestGetLists(t *testing.T) {
	srv, mgr := newTestServer(t)
	ctx := context.Background()

	if _, err := mgr.CreateList(ctx, 1, "Groceries"); err != nil {
		t.Fatalf("CreateList failed: %v", err)
	}
	if _, err := mgr.CreateList(ctx, 1, "Hardware"); err != nil {
		t.Fatalf("CreateList failed: %v", err)
	}

	var overview manager.Overview
	getJSON(t, srv.URL+"/api/lists?chat_id=1", http.StatusOK, &overview)

	if len(overview.Lists) != 2 {
		t.Fatalf("list count = %d, want 2", len(overview.Lists))
	}
	if overview.Active == nil || overview.Active.Name != "Groceries" {
		t.Errorf("active = %v, want Groceries", overview.Active)
	}
}

func TestGetActiveList(t *testing.T) {
	srv, mgr := newTestServer(t)
	ctx := context.Background()

	getJSON(t, srv.URL+"/api/list?chat_id=1", http.StatusNotFound, nil)

	if _, err := mgr.CreateList(ctx, 1, "Groceries"); err != nil {
		t.Fatalf("CreateList failed: %v", err)
	}
	if _, _, err := mgr.AddItem(ctx, 1, "milk 2", "alice"); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}

	var rendered manager.RenderedList
	getJSON(t, srv.URL+"/api/list?chat_id=1", http.StatusOK, &rendered)

	if rendered.List.Name != "Groceries" {
		t.Errorf("list name = %q, want %q", rendered.List.Name, "Groceries")
	}
	if len(rendered.Items) != 1 || rendered.Items[0].Number != 1 || rendered.Items[0].Quantity != 2 {
		t.Errorf("items = %+v, want one item numbered 1 with quantity 2", rendered.Items)
	}
}

func TestGetStats(t *testing.T) {
	srv, mgr := newTestServer(t)
	ctx := context.Background()

	if _, err := mgr.CreateList(ctx, 1, "Groceries"); err != nil {
		t.Fatalf("CreateList failed: %v", err)
	}
	if _, _, err := mgr.AddItem(ctx, 1, "milk", "alice"); err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}

	var body struct {
		Store struct {
			TotalChats int64 `json:"total_chats"`
			TotalItems int64 `json:"total_items"`
		} `json:"store"`
	}
	getJSON(t, srv.URL+"/api/stats", http.StatusOK, &body)

	if body.Store.TotalChats != 1 || body.Store.TotalItems != 1 {
		t.Errorf("stats = %+v, want 1 chat and 1 item", body.Store)
	}
}

func TestMetricsExposed(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET /metrics status = %d, want 200", resp.StatusCode)
	}
}
