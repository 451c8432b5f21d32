package database

// Menu queries
const (
	GetMenuItemByNameSQL = `
		SELECT id, name, price, category, is_available
		FROM menu_items WHERE name = $1`

	ListAvailableMenuItemsSQL = `
		SELECT id, name, price, category, is_available
		FROM menu_items
		WHERE is_available
		ORDER BY id ASC`

	ListMenuItemsSQL = `
		SELECT id, name, price, category, is_available
		FROM menu_items
		ORDER BY id ASC`

	ListMenuItemsByCategorySQL = `
		SELECT id, name, price, category, is_available
		FROM menu_items
		WHERE category = $1
		ORDER BY id ASC`

	InsertMenuItemSQL = `
		INSERT INTO menu_items (name, price, category, is_available)
		VALUES ($1, $2, $3, TRUE)
		ON CONFLICT (name) DO NOTHING
		RETURNING id`

	UpdateMenuItemPriceSQL = `
		UPDATE menu_items SET price = $1 WHERE name = $2`

	ToggleMenuItemAvailabilitySQL = `
		UPDATE menu_items SET is_available = NOT is_available
		WHERE name = $1
		RETURNING is_available`

	CountMenuItemsSQL = `
		SELECT COUNT(*) FROM menu_items`
)

// Order queries
const (
	InsertOrderSQL = `
		INSERT INTO orders (status, total_amount)
		VALUES ($1, $2)
		RETURNING id, created_at`

	InsertOrderItemSQL = `
		INSERT INTO order_items (order_id, item_name, quantity, price)
		VALUES ($1, $2, $3, $4)`

	GetOrderByIDSQL = `
		SELECT id, status, created_at, total_amount
		FROM orders WHERE id = $1`

	GetOrderItemsSQL = `
		SELECT item_name, quantity, price
		FROM order_items
		WHERE order_id = $1
		ORDER BY id ASC`

	UpdateOrderStatusSQL = `
		UPDATE orders SET status = $1 WHERE id = $2`

	ListRecentOrdersSQL = `
		SELECT id, status, created_at, total_amount
		FROM orders
		ORDER BY created_at DESC
		LIMIT $1`

	CountOrdersSQL = `
		SELECT COUNT(*), COALESCE(SUM(total_amount), 0) FROM orders`

	CountOrdersByStatusSQL = `
		SELECT status, COUNT(*) FROM orders GROUP BY status`
)
