package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/nvalis/GroceriesBot/internal/models"
	"github.com/nvalis/GroceriesBot/internal/repository"
)

type adminRepository struct {
	db *sql.DB
}

// NewAdminRepository creates a new admin repository
func NewAdminRepository(db *sql.DB) repository.AdminRepository {
	return &adminRepository{db: db}
}

func (r *adminRepository) Stats(ctx context.Context) (*models.Stats, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM chats),
			(SELECT COUNT(*) FROM shopping_lists),
			(SELECT COUNT(*) FROM shopping_items),
			(SELECT COUNT(*) FROM shopping_items WHERE purchased = true)`

	stats := &models.Stats{}
	err := r.db.QueryRowContext(ctx, query).Scan(
		&stats.TotalChats,
		&stats.TotalLists,
		&stats.TotalItems,
		&stats.PurchasedItems,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to collect stats: %w", err)
	}

	return stats, nil
}
