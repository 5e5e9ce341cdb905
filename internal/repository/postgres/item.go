package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/nvalis/GroceriesBot/internal/models"
	"github.com/nvalis/GroceriesBot/internal/repository"
)

type itemRepository struct {
	db *sql.DB
}

// NewItemRepository creates a new shopping item repository
func NewItemRepository(db *sql.DB) repository.ItemRepository {
	return &itemRepository{db: db}
}

// lockList takes a row lock on the owning list, serializing all mutations
// for that list until the transaction commits. Returns false if the list
// does not exist.
func lockList(ctx context.Context, tx *sql.Tx, listID int64) (bool, error) {
	var id int64
	err := tx.QueryRowContext(ctx,
		`SELECT id FROM shopping_lists WHERE id = $1 FOR UPDATE`, listID).Scan(&id)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("failed to lock shopping list: %w", err)
	}
	return true, nil
}

func (r *itemRepository) AddOrMerge(ctx context.Context, listID int64, name string, quantity int64, addedBy string) (*models.ShoppingItem, bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	locked, err := lockList(ctx, tx, listID)
	if err != nil {
		return nil, false, err
	}
	if !locked {
		return nil, false, fmt.Errorf("shopping list %d not found", listID)
	}

	item := &models.ShoppingItem{}

	// Merge into an existing unpurchased item with the same normalized name.
	query := `
		SELECT id, list_id, name, quantity, added_by, purchased, created_at, updated_at
		FROM shopping_items
		WHERE list_id = $1 AND lower(name) = lower($2) AND purchased = false
		ORDER BY created_at, id
		LIMIT 1`

	err = tx.QueryRowContext(ctx, query, listID, name).Scan(
		&item.ID, &item.ListID, &item.Name, &item.Quantity,
		&item.AddedBy, &item.Purchased, &item.CreatedAt, &item.UpdatedAt,
	)

	switch {
	case err == sql.ErrNoRows:
		insert := `
			INSERT INTO shopping_items (list_id, name, quantity, added_by, purchased, created_at, updated_at)
			VALUES ($1, $2, $3, $4, false, $5, $5)
			RETURNING id, list_id, name, quantity, added_by, purchased, created_at, updated_at`

		err = tx.QueryRowContext(ctx, insert, listID, name, quantity, addedBy, time.Now()).Scan(
			&item.ID, &item.ListID, &item.Name, &item.Quantity,
			&item.AddedBy, &item.Purchased, &item.CreatedAt, &item.UpdatedAt,
		)
		if err != nil {
			return nil, false, fmt.Errorf("failed to add shopping item: %w", err)
		}

		if err := tx.Commit(); err != nil {
			return nil, false, fmt.Errorf("failed to commit: %w", err)
		}
		return item, false, nil

	case err != nil:
		return nil, false, fmt.Errorf("failed to find mergeable item: %w", err)
	}

	update := `
		UPDATE shopping_items
		SET quantity = quantity + $2, updated_at = $3
		WHERE id = $1
		RETURNING quantity, updated_at`

	if err := tx.QueryRowContext(ctx, update, item.ID, quantity, time.Now()).Scan(&item.Quantity, &item.UpdatedAt); err != nil {
		return nil, false, fmt.Errorf("failed to merge quantity: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("failed to commit: %w", err)
	}
	return item, true, nil
}

func (r *itemRepository) GetByList(ctx context.Context, listID int64) ([]*models.ShoppingItem, error) {
	query := `
		SELECT id, list_id, name, quantity, added_by, purchased, created_at, updated_at
		FROM shopping_items
		WHERE list_id = $1
		ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, listID)
	if err != nil {
		return nil, fmt.Errorf("failed to query shopping items: %w", err)
	}
	defer rows.Close()

	var items []*models.ShoppingItem
	for rows.Next() {
		item := &models.ShoppingItem{}
		if err := rows.Scan(
			&item.ID, &item.ListID, &item.Name, &item.Quantity,
			&item.AddedBy, &item.Purchased, &item.CreatedAt, &item.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan shopping item: %w", err)
		}
		items = append(items, item)
	}

	return items, rows.Err()
}

// itemAtPosition resolves the 1-based render position against the current
// item set inside the transaction. Returns (nil, nil) when out of range.
func itemAtPosition(ctx context.Context, tx *sql.Tx, listID int64, position int) (*models.ShoppingItem, error) {
	if position < 1 {
		return nil, nil
	}

	query := `
		SELECT id, list_id, name, quantity, added_by, purchased, created_at, updated_at
		FROM shopping_items
		WHERE list_id = $1
		ORDER BY created_at, id
		OFFSET $2 LIMIT 1`

	item := &models.ShoppingItem{}
	err := tx.QueryRowContext(ctx, query, listID, position-1).Scan(
		&item.ID, &item.ListID, &item.Name, &item.Quantity,
		&item.AddedBy, &item.Purchased, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to resolve item position: %w", err)
	}

	return item, nil
}

func (r *itemRepository) RemoveAt(ctx context.Context, listID int64, position int) (*models.ShoppingItem, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	locked, err := lockList(ctx, tx, listID)
	if err != nil {
		return nil, err
	}
	if !locked {
		return nil, nil
	}

	item, err := itemAtPosition(ctx, tx, listID, position)
	if err != nil || item == nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM shopping_items WHERE id = $1`, item.ID); err != nil {
		return nil, fmt.Errorf("failed to delete shopping item: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}
	return item, nil
}

func (r *itemRepository) MarkPurchasedAt(ctx context.Context, listID int64, position int) (*models.ShoppingItem, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	locked, err := lockList(ctx, tx, listID)
	if err != nil {
		return nil, err
	}
	if !locked {
		return nil, nil
	}

	item, err := itemAtPosition(ctx, tx, listID, position)
	if err != nil || item == nil {
		return nil, err
	}

	if !item.Purchased {
		update := `UPDATE shopping_items SET purchased = true, updated_at = $2 WHERE id = $1`
		if _, err := tx.ExecContext(ctx, update, item.ID, time.Now()); err != nil {
			return nil, fmt.Errorf("failed to mark item purchased: %w", err)
		}
		item.Purchased = true
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit: %w", err)
	}
	return item, nil
}

func (r *itemRepository) Remove(ctx context.Context, chatID, itemID int64) (*models.ShoppingItem, error) {
	query := `
		DELETE FROM shopping_items
		WHERE id = $2
		  AND list_id IN (SELECT id FROM shopping_lists WHERE chat_id = $1)
		RETURNING id, list_id, name, quantity, added_by, purchased, created_at, updated_at`

	item := &models.ShoppingItem{}
	err := r.db.QueryRowContext(ctx, query, chatID, itemID).Scan(
		&item.ID, &item.ListID, &item.Name, &item.Quantity,
		&item.AddedBy, &item.Purchased, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to remove shopping item: %w", err)
	}

	return item, nil
}

func (r *itemRepository) MarkPurchased(ctx context.Context, chatID, itemID int64) (*models.ShoppingItem, error) {
	// Only unpurchased rows are written, so repeated presses do not keep
	// bumping updated_at.
	query := `
		UPDATE shopping_items
		SET purchased = true, updated_at = $3
		WHERE id = $2
		  AND purchased = false
		  AND list_id IN (SELECT id FROM shopping_lists WHERE chat_id = $1)
		RETURNING id, list_id, name, quantity, added_by, purchased, created_at, updated_at`

	item := &models.ShoppingItem{}
	err := r.db.QueryRowContext(ctx, query, chatID, itemID, time.Now()).Scan(
		&item.ID, &item.ListID, &item.Name, &item.Quantity,
		&item.AddedBy, &item.Purchased, &item.CreatedAt, &item.UpdatedAt,
	)
	if err == nil {
		return item, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to mark shopping item purchased: %w", err)
	}

	// Already purchased, or absent from the chat.
	sel := `
		SELECT id, list_id, name, quantity, added_by, purchased, created_at, updated_at
		FROM shopping_items
		WHERE id = $2
		  AND list_id IN (SELECT id FROM shopping_lists WHERE chat_id = $1)`

	err = r.db.QueryRowContext(ctx, sel, chatID, itemID).Scan(
		&item.ID, &item.ListID, &item.Name, &item.Quantity,
		&item.AddedBy, &item.Purchased, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load shopping item: %w", err)
	}

	return item, nil
}

func (r *itemRepository) ClearPurchased(ctx context.Context, listID int64) (int64, error) {
	query := `DELETE FROM shopping_items WHERE list_id = $1 AND purchased = true`

	result, err := r.db.ExecContext(ctx, query, listID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear purchased items: %w", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return count, nil
}

func (r *itemRepository) Wipe(ctx context.Context, listID int64) (int64, error) {
	query := `DELETE FROM shopping_items WHERE list_id = $1`

	result, err := r.db.ExecContext(ctx, query, listID)
	if err != nil {
		return 0, fmt.Errorf("failed to wipe shopping items: %w", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return count, nil
}
