// Package session holds the in-progress order of each conversation session.
// Orders live here until completion; there is no expiry, an abandoned cart
// stays until its session completes an order.
package session

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
)

// Line is one item of an in-progress order. Quantity is always > 0: a line
// reaching zero is deleted, never stored.
type Line struct {
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// Order is the mutable cart of one session. Lines keep insertion order so
// summaries are deterministic.
type Order struct {
	Lines []Line `json:"lines"`
}

// IsEmpty reports whether the order has no lines
func (o *Order) IsEmpty() bool {
	return o == nil || len(o.Lines) == 0
}

// LineIndex returns the index of the line with the given canonical name
func (o *Order) LineIndex(name string) (int, bool) {
	for i, line := range o.Lines {
		if line.Name == name {
			return i, true
		}
	}
	return 0, false
}

// Add inserts a new line or increments an existing one. The unit price of an
// existing line is kept: it represents the price at the time of first
// selection, not a later catalog change.
func (o *Order) Add(name string, quantity int, unitPrice decimal.Decimal) {
	if i, ok := o.LineIndex(name); ok {
		o.Lines[i].Quantity += quantity
		return
	}
	o.Lines = append(o.Lines, Line{Name: name, Quantity: quantity, UnitPrice: unitPrice})
}

// RemoveLine deletes the line at the given index, preserving order
func (o *Order) RemoveLine(i int) {
	o.Lines = append(o.Lines[:i], o.Lines[i+1:]...)
}

// Total returns the exact sum of quantity x unit price over all lines
func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range o.Lines {
		total = total.Add(line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total
}

// Clone returns a deep copy of the order
func (o *Order) Clone() *Order {
	clone := &Order{Lines: make([]Line, len(o.Lines))}
	copy(clone.Lines, o.Lines)
	return clone
}

// Store keeps in-progress orders keyed by session id. Lock serializes
// read-modify-write sequences against one session; operations on different
// sessions proceed independently.
type Store interface {
	Get(ctx context.Context, sessionID string) (*Order, bool, error)
	Put(ctx context.Context, sessionID string, order *Order) error
	Delete(ctx context.Context, sessionID string) error
	Lock(sessionID string) (unlock func())
}

// keyedMutex hands out one mutex per key
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*sync.Mutex)}
}

func (k *keyedMutex) lock(key string) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
