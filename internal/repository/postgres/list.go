package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/nvalis/GroceriesBot/internal/models"
	"github.com/nvalis/GroceriesBot/internal/repository"
)

// uniqueViolation is the Postgres error code raised when the
// (chat_id, lower(name)) unique index rejects an insert.
const uniqueViolation = "23505"

type listRepository struct {
	db *sql.DB
}

// NewListRepository creates a new shopping list repository
func NewListRepository(db *sql.DB) repository.ListRepository {
	return &listRepository{db: db}
}

func (r *listRepository) Create(ctx context.Context, list *models.ShoppingList) (*models.ShoppingList, error) {
	query := `
		INSERT INTO shopping_lists (chat_id, name, created_at)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	list.CreatedAt = time.Now()

	err := r.db.QueryRowContext(ctx, query,
		list.ChatID,
		list.Name,
		list.CreatedAt,
	).Scan(&list.ID, &list.CreatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return nil, repository.ErrDuplicate
		}
		return nil, fmt.Errorf("failed to create shopping list: %w", err)
	}

	return list, nil
}

func (r *listRepository) GetByID(ctx context.Context, id int64) (*models.ShoppingList, error) {
	query := `
		SELECT id, chat_id, name, created_at
		FROM shopping_lists
		WHERE id = $1`

	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *listRepository) GetByName(ctx context.Context, chatID int64, name string) (*models.ShoppingList, error) {
	query := `
		SELECT id, chat_id, name, created_at
		FROM shopping_lists
		WHERE chat_id = $1 AND lower(name) = lower($2)`

	return r.scanOne(r.db.QueryRowContext(ctx, query, chatID, name))
}

func (r *listRepository) scanOne(row *sql.Row) (*models.ShoppingList, error) {
	list := &models.ShoppingList{}
	err := row.Scan(
		&list.ID,
		&list.ChatID,
		&list.Name,
		&list.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get shopping list: %w", err)
	}

	return list, nil
}

func (r *listRepository) GetByChatID(ctx context.Context, chatID int64) ([]*models.ShoppingList, error) {
	query := `
		SELECT id, chat_id, name, created_at
		FROM shopping_lists
		WHERE chat_id = $1
		ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to query shopping lists: %w", err)
	}
	defer rows.Close()

	var lists []*models.ShoppingList
	for rows.Next() {
		list := &models.ShoppingList{}
		if err := rows.Scan(
			&list.ID,
			&list.ChatID,
			&list.Name,
			&list.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan shopping list: %w", err)
		}
		lists = append(lists, list)
	}

	return lists, rows.Err()
}

func (r *listRepository) Delete(ctx context.Context, id int64) (bool, error) {
	// Items cascade via the shopping_items.list_id foreign key; the chat's
	// active_list_id is cleared via ON DELETE SET NULL.
	query := `DELETE FROM shopping_lists WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete shopping list: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}
