package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/nvalis/GroceriesBot/internal/models"
	"github.com/nvalis/GroceriesBot/internal/repository"
)

type chatRepository struct {
	db *sql.DB
}

// NewChatRepository creates a new chat repository
func NewChatRepository(db *sql.DB) repository.ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) Ensure(ctx context.Context, chatID int64, title string) (*models.Chat, error) {
	query := `
		INSERT INTO chats (chat_id, title, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (chat_id) DO UPDATE
		SET title      = CASE WHEN EXCLUDED.title <> '' THEN EXCLUDED.title ELSE chats.title END,
		    updated_at = EXCLUDED.updated_at
		RETURNING chat_id, title, active_list_id, created_at, updated_at`

	chat := &models.Chat{}
	err := r.db.QueryRowContext(ctx, query, chatID, title, time.Now()).Scan(
		&chat.ChatID,
		&chat.Title,
		&chat.ActiveListID,
		&chat.CreatedAt,
		&chat.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure chat: %w", err)
	}

	return chat, nil
}

func (r *chatRepository) Get(ctx context.Context, chatID int64) (*models.Chat, error) {
	query := `
		SELECT chat_id, title, active_list_id, created_at, updated_at
		FROM chats
		WHERE chat_id = $1`

	chat := &models.Chat{}
	err := r.db.QueryRowContext(ctx, query, chatID).Scan(
		&chat.ChatID,
		&chat.Title,
		&chat.ActiveListID,
		&chat.CreatedAt,
		&chat.UpdatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get chat: %w", err)
	}

	return chat, nil
}

func (r *chatRepository) SetActiveList(ctx context.Context, chatID int64, listID *int64) error {
	query := `
		UPDATE chats
		SET active_list_id = $2, updated_at = $3
		WHERE chat_id = $1`

	result, err := r.db.ExecContext(ctx, query, chatID, listID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to set active list: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("chat %d not found", chatID)
	}

	return nil
}

func (r *chatRepository) All(ctx context.Context) ([]*models.Chat, error) {
	query := `
		SELECT chat_id, title, active_list_id, created_at, updated_at
		FROM chats
		ORDER BY chat_id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query chats: %w", err)
	}
	defer rows.Close()

	var chats []*models.Chat
	for rows.Next() {
		chat := &models.Chat{}
		if err := rows.Scan(
			&chat.ChatID,
			&chat.Title,
			&chat.ActiveListID,
			&chat.CreatedAt,
			&chat.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan chat: %w", err)
		}
		chats = append(chats, chat)
	}

	return chats, rows.Err()
}
