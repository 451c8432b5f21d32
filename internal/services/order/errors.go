package order

import "errors"

var (
	// ErrEmptyOrder is returned by Complete when the session has no in-progress order
	ErrEmptyOrder = errors.New("order is empty")

	// ErrOrderNotFound is returned by Track for an unknown order id
	ErrOrderNotFound = errors.New("order not found")

	// ErrInvalidQuantity is returned when a non-positive explicit quantity is supplied
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")
)
