package manager

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"

	"github.com/nvalis/GroceriesBot/internal/models"
)

// Snapshot exports every chat with all of its lists and items. The export
// keeps going when a single chat fails to load; the failures are
// aggregated and returned alongside the partial snapshot.
func (m *Manager) Snapshot(ctx context.Context) (*models.Snapshot, error) {
	chats, err := m.chats.All(ctx)
	if err != nil {
		return nil, m.storeErr("load chats", err)
	}

	snapshot := &models.Snapshot{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		Chats:     make([]models.ChatSnapshot, 0, len(chats)),
	}

	var result *multierror.Error
	for _, chat := range chats {
		lists, err := m.lists.GetByChatID(ctx, chat.ChatID)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("chat %d: %w", chat.ChatID, err))
			continue
		}

		for _, list := range lists {
			items, err := m.items.GetByList(ctx, list.ID)
			if err != nil {
				result = multierror.Append(result, fmt.Errorf("list %d: %w", list.ID, err))
				continue
			}
			list.Items = make([]models.ShoppingItem, 0, len(items))
			for _, item := range items {
				list.Items = append(list.Items, *item)
			}
		}

		snapshot.Chats = append(snapshot.Chats, models.ChatSnapshot{Chat: chat, Lists: lists})
	}

	return snapshot, result.ErrorOrNil()
}

// WriteBackup writes a snapshot as an indented JSON file under dir and
// returns the file path. The directory is created if needed.
func (m *Manager) WriteBackup(ctx context.Context, dir string) (string, error) {
	snapshot, err := m.Snapshot(ctx)
	if err != nil {
		return "", fmt.Errorf("snapshot: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create backup dir: %w", err)
	}

	name := fmt.Sprintf("groceries_%s_%s.json",
		snapshot.CreatedAt.Format("20060102_150405"), snapshot.ID)
	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write backup file: %w", err)
	}

	m.logger.WithField("path", path).Info("Backup written")
	return path, nil
}

// StartBackupScheduler runs a background loop writing a snapshot to dir
// at the given interval. It blocks until the context is cancelled, so it
// should be launched in a separate goroutine.
func (m *Manager) StartBackupScheduler(ctx context.Context, interval time.Duration, dir string) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	m.logger.Infof("Backup scheduler started (every %s)", interval)

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("Backup scheduler stopped")
			return
		case <-ticker.C:
			if _, err := m.WriteBackup(ctx, dir); err != nil {
				m.logger.Errorf("Scheduled backup failed: %v", err)
			}
		}
	}
}
