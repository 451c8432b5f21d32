package menu

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"foodbot/internal/database"
	"foodbot/internal/models"
)

// Catalog is the read-only menu lookup the resolver works against.
// ListAvailable must return items in a stable order (primary key ascending):
// resolution tie-breaks depend on it.
type Catalog interface {
	FindByExactName(ctx context.Context, name string) (models.MenuItem, bool, error)
	ListAvailable(ctx context.Context) ([]models.MenuItem, error)
}

// PostgresCatalog reads the menu from the menu_items table
type PostgresCatalog struct {
	db *database.DB
}

// NewPostgresCatalog creates a catalog backed by PostgreSQL
func NewPostgresCatalog(db *database.DB) *PostgresCatalog {
	return &PostgresCatalog{db: db}
}

// FindByExactName looks up a menu item by its canonical name
func (c *PostgresCatalog) FindByExactName(ctx context.Context, name string) (models.MenuItem, bool, error) {
	var item models.MenuItem
	err := c.db.QueryRow(ctx, database.GetMenuItemByNameSQL, name).Scan(
		&item.ID,
		&item.Name,
		&item.Price,
		&item.Category,
		&item.Available,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.MenuItem{}, false, nil
	}
	if err != nil {
		return models.MenuItem{}, false, fmt.Errorf("failed to query menu item: %w", err)
	}
	return item, true, nil
}

// ListAvailable returns all available menu items ordered by id ascending
func (c *PostgresCatalog) ListAvailable(ctx context.Context) ([]models.MenuItem, error) {
	rows, err := c.db.Query(ctx, database.ListAvailableMenuItemsSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to query menu items: %w", err)
	}
	defer rows.Close()

	var items []models.MenuItem
	for rows.Next() {
		var item models.MenuItem
		if err := rows.Scan(&item.ID, &item.Name, &item.Price, &item.Category, &item.Available); err != nil {
			return nil, fmt.Errorf("failed to scan menu item: %w", err)
		}
		items = append(items, item)
	}

	return items, rows.Err()
}
