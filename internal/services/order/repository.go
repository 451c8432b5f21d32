package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"foodbot/internal/database"
	"foodbot/internal/models"
)

// Repository persists finalized orders
type Repository interface {
	// CreateOrder inserts an order with its lines in one transaction and
	// returns the assigned id.
	CreateOrder(ctx context.Context, lines []models.OrderLine, total decimal.Decimal) (int64, error)
	// GetOrder returns the order with its lines, or ErrOrderNotFound.
	GetOrder(ctx context.Context, orderID int64) (*models.Order, error)
}

// SalesSummary aggregates persisted orders for the admin CLI
type SalesSummary struct {
	TotalOrders  int
	TotalRevenue decimal.Decimal
	ByStatus     map[models.OrderStatus]int
}

// PostgresRepository persists orders in the orders / order_items tables
type PostgresRepository struct {
	db *database.DB
}

// NewPostgresRepository creates an order repository backed by PostgreSQL
func NewPostgresRepository(db *database.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// CreateOrder inserts the order and all line items in one transaction
func (r *PostgresRepository) CreateOrder(ctx context.Context, lines []models.OrderLine, total decimal.Decimal) (int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var orderID int64
	var createdAt any
	err = tx.QueryRow(ctx, database.InsertOrderSQL, models.StatusPlaced, total).Scan(&orderID, &createdAt)
	if err != nil {
		return 0, fmt.Errorf("failed to insert order: %w", err)
	}

	for _, line := range lines {
		_, err = tx.Exec(ctx, database.InsertOrderItemSQL, orderID, line.ItemName, line.Quantity, line.UnitPrice)
		if err != nil {
			return 0, fmt.Errorf("failed to insert order item %q: %w", line.ItemName, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit order: %w", err)
	}

	return orderID, nil
}

// GetOrder loads an order with its line items
func (r *PostgresRepository) GetOrder(ctx context.Context, orderID int64) (*models.Order, error) {
	var order models.Order
	err := r.db.QueryRow(ctx, database.GetOrderByIDSQL, orderID).Scan(
		&order.ID,
		&order.Status,
		&order.CreatedAt,
		&order.TotalAmount,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	rows, err := r.db.Query(ctx, database.GetOrderItemsSQL, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var line models.OrderLine
		if err := rows.Scan(&line.ItemName, &line.Quantity, &line.UnitPrice); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		order.Items = append(order.Items, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read order items: %w", err)
	}

	return &order, nil
}

// ListRecent returns the most recent orders, newest first
func (r *PostgresRepository) ListRecent(ctx context.Context, limit int) ([]models.Order, error) {
	rows, err := r.db.Query(ctx, database.ListRecentOrdersSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		var order models.Order
		if err := rows.Scan(&order.ID, &order.Status, &order.CreatedAt, &order.TotalAmount); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}

	return orders, rows.Err()
}

// UpdateStatus moves an order to a new lifecycle status
func (r *PostgresRepository) UpdateStatus(ctx context.Context, orderID int64, status models.OrderStatus) error {
	tag, err := r.db.Pool.Exec(ctx, database.UpdateOrderStatusSQL, status, orderID)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// GetSalesSummary aggregates order counts and revenue
func (r *PostgresRepository) GetSalesSummary(ctx context.Context) (*SalesSummary, error) {
	summary := &SalesSummary{ByStatus: make(map[models.OrderStatus]int)}

	err := r.db.QueryRow(ctx, database.CountOrdersSQL).Scan(&summary.TotalOrders, &summary.TotalRevenue)
	if err != nil {
		return nil, fmt.Errorf("failed to query sales totals: %w", err)
	}

	rows, err := r.db.Query(ctx, database.CountOrdersByStatusSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to query status counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status models.OrderStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		summary.ByStatus[status] = count
	}

	return summary, rows.Err()
}
