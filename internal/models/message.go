package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderPlacedMessage is published to the broker when an order is finalized
type OrderPlacedMessage struct {
	OrderID     int64           `json:"order_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Items       []OrderLine     `json:"items"`
	PlacedAt    time.Time       `json:"placed_at"`
}
