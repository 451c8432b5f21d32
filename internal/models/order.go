package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus represents the lifecycle status of a finalized order
type OrderStatus string

const (
	StatusPlaced         OrderStatus = "Placed"
	StatusPreparing      OrderStatus = "Preparing"
	StatusOutForDelivery OrderStatus = "Out for Delivery"
	StatusDelivered      OrderStatus = "Delivered"
	StatusCancelled      OrderStatus = "Cancelled"
)

// UnknownStatusError reports an order status string outside the closed set
type UnknownStatusError struct {
	Value string
}

func (e *UnknownStatusError) Error() string {
	return fmt.Sprintf("unknown order status: %q", e.Value)
}

// ParseOrderStatus maps a string onto the closed status set. It fails with
// *UnknownStatusError for anything outside it.
func ParseOrderStatus(value string) (OrderStatus, error) {
	switch OrderStatus(value) {
	case StatusPlaced, StatusPreparing, StatusOutForDelivery, StatusDelivered, StatusCancelled:
		return OrderStatus(value), nil
	default:
		return "", &UnknownStatusError{Value: value}
	}
}

// OrderLine is one line item of a finalized order. UnitPrice is the price
// snapshot taken when the item was first added to the cart.
type OrderLine struct {
	ItemName  string          `json:"item_name" db:"item_name"`
	Quantity  int             `json:"quantity" db:"quantity"`
	UnitPrice decimal.Decimal `json:"price" db:"price"`
}

// Subtotal returns quantity x unit price for the line
func (l OrderLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Order represents a finalized, persisted order. Lines are an immutable
// snapshot; TotalAmount is computed once at finalization.
type Order struct {
	ID          int64           `json:"order_id" db:"id"`
	Status      OrderStatus     `json:"status" db:"status"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	TotalAmount decimal.Decimal `json:"total_amount" db:"total_amount"`
	Items       []OrderLine     `json:"items"`
}
