package models

import "github.com/shopspring/decimal"

// MenuItem represents a single entry of the menu catalog. Name is the canonical
// spelling, unique under exact match.
type MenuItem struct {
	ID        int             `json:"id,omitempty" db:"id"`
	Name      string          `json:"name" db:"name"`
	Price     decimal.Decimal `json:"price" db:"price"`
	Category  *string         `json:"category,omitempty" db:"category"`
	Available bool            `json:"is_available" db:"is_available"`
}
