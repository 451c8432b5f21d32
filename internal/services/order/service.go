package order

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"foodbot/internal/logger"
	"foodbot/internal/menu"
	"foodbot/internal/models"
	"foodbot/internal/session"
)

// Publisher publishes order lifecycle events to the broker
type Publisher interface {
	PublishOrderPlaced(ctx context.Context, msg *models.OrderPlacedMessage) error
}

// Service implements the order session operations: accumulating items into a
// session-scoped cart, removing them, and finalizing the cart into a
// persisted order.
type Service struct {
	store     session.Store
	resolver  *menu.Resolver
	repo      Repository
	publisher Publisher
	logger    *logger.Logger
}

// NewService creates the order service. publisher may be nil when no broker
// is configured; order-placed events are then skipped.
func NewService(store session.Store, resolver *menu.Resolver, repo Repository, publisher Publisher, log *logger.Logger) *Service {
	return &Service{
		store:     store,
		resolver:  resolver,
		repo:      repo,
		publisher: publisher,
		logger:    log,
	}
}

// Confirmation is returned by Complete for user-facing confirmation
type Confirmation struct {
	OrderID int64
	Total   decimal.Decimal
	Lines   []models.OrderLine
}

// Text formats the confirmation the way the chatbot speaks it
func (c *Confirmation) Text() string {
	parts := make([]string, len(c.Lines))
	for i, line := range c.Lines {
		parts[i] = fmt.Sprintf("%s: %d", line.ItemName, line.Quantity)
	}
	return fmt.Sprintf("Your order has been placed successfully! Order ID: %d. Total: %s. Items: %s",
		c.OrderID, money(c.Total), strings.Join(parts, ", "))
}

// AddItems resolves each candidate against the menu and adds it to the
// session's in-progress order. Quantities are padded with 1 on the right when
// shorter than candidates. An unresolvable candidate does not abort the
// batch: every resolvable item is applied and the reply names the misses.
func (s *Service) AddItems(ctx context.Context, sessionID string, candidates []string, quantities []int, requestID string) (string, error) {
	quantities = padQuantities(quantities, len(candidates))

	unlock := s.store.Lock(sessionID)
	defer unlock()

	order, ok, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return "", fmt.Errorf("failed to load session order: %w", err)
	}
	if !ok {
		order = &session.Order{}
	}

	var notFound []string
	added := false
	for i, candidate := range candidates {
		item, resolved, err := s.resolver.Resolve(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("failed to resolve %q: %w", candidate, err)
		}
		if !resolved {
			notFound = append(notFound, candidate)
			continue
		}

		order.Add(item.Name, quantities[i], item.Price)
		added = true
	}

	if added {
		if err := s.store.Put(ctx, sessionID, order); err != nil {
			return "", fmt.Errorf("failed to store session order: %w", err)
		}
	}

	s.logger.Debug("items_added", "Processed add-to-order request", requestID, map[string]interface{}{
		"session_id":      sessionID,
		"requested_items": len(candidates),
		"unresolved":      len(notFound),
		"order_lines":     len(order.Lines),
	})

	return addReply(order, notFound), nil
}

// RemoveItems removes items from the session's in-progress order. Candidates
// are matched against the order's own lines only, never the full catalog:
// exact key first, then the same tier chain the menu resolver uses. Without
// an explicit quantity the whole line is removed; with one the line is
// decremented and deleted when it reaches zero.
func (s *Service) RemoveItems(ctx context.Context, sessionID string, candidates []string, explicitQuantities []int, requestID string) (string, error) {
	for _, quantity := range explicitQuantities {
		if quantity <= 0 {
			return "", ErrInvalidQuantity
		}
	}

	unlock := s.store.Lock(sessionID)
	defer unlock()

	order, ok, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return "", fmt.Errorf("failed to load session order: %w", err)
	}
	if !ok || order.IsEmpty() {
		return "You don't have any items in your order yet.", nil
	}

	var removed, notFound []string
	for i, candidate := range candidates {
		idx, found := order.LineIndex(candidate)
		if !found {
			idx, found = matchOrderLine(order, candidate)
		}
		if !found {
			notFound = append(notFound, candidate)
			continue
		}

		name := order.Lines[idx].Name
		if i < len(explicitQuantities) {
			order.Lines[idx].Quantity -= explicitQuantities[i]
			if order.Lines[idx].Quantity <= 0 {
				order.RemoveLine(idx)
			}
		} else {
			order.RemoveLine(idx)
		}
		removed = append(removed, name)
	}

	if order.IsEmpty() {
		err = s.store.Delete(ctx, sessionID)
	} else {
		err = s.store.Put(ctx, sessionID, order)
	}
	if err != nil {
		return "", fmt.Errorf("failed to store session order: %w", err)
	}

	s.logger.Debug("items_removed", "Processed remove-from-order request", requestID, map[string]interface{}{
		"session_id": sessionID,
		"removed":    len(removed),
		"not_found":  len(notFound),
	})

	return removeReply(order, removed, notFound), nil
}

// Summarize returns the current order state without mutating it
func (s *Service) Summarize(ctx context.Context, sessionID, requestID string) (string, error) {
	unlock := s.store.Lock(sessionID)
	defer unlock()

	order, ok, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return "", fmt.Errorf("failed to load session order: %w", err)
	}
	if !ok || order.IsEmpty() {
		return "Your order is empty.", nil
	}

	parts := make([]string, len(order.Lines))
	for i, line := range order.Lines {
		subtotal := line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
		parts[i] = fmt.Sprintf("%s: %d (%s)", line.Name, line.Quantity, money(subtotal))
	}

	return fmt.Sprintf("Current order: %s. Total: %s.", strings.Join(parts, ", "), money(order.Total())), nil
}

// Complete finalizes the session's in-progress order: persists it with status
// Placed, clears the session, and publishes an order-placed event. The
// session entry is only cleared after persistence succeeds, so a failed
// completion can be retried.
func (s *Service) Complete(ctx context.Context, sessionID, requestID string) (*Confirmation, error) {
	unlock := s.store.Lock(sessionID)
	defer unlock()

	order, ok, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session order: %w", err)
	}
	if !ok || order.IsEmpty() {
		return nil, ErrEmptyOrder
	}

	lines := make([]models.OrderLine, len(order.Lines))
	for i, line := range order.Lines {
		lines[i] = models.OrderLine{
			ItemName:  line.Name,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		}
	}
	total := order.Total()

	orderID, err := s.repo.CreateOrder(ctx, lines, total)
	if err != nil {
		// Session order is left intact: the user can retry completion.
		return nil, fmt.Errorf("failed to persist order: %w", err)
	}

	if err := s.store.Delete(ctx, sessionID); err != nil {
		// The order is placed; a stale cart is the lesser problem.
		s.logger.Error("session_clear_failed", "Failed to clear session after completion", requestID, err, map[string]interface{}{
			"session_id": sessionID,
			"order_id":   orderID,
		})
	}

	s.logger.Info("order_placed", fmt.Sprintf("Order %d placed", orderID), requestID, map[string]interface{}{
		"session_id":   sessionID,
		"order_id":     orderID,
		"total_amount": total.StringFixed(2),
		"line_count":   len(lines),
	})

	s.publishOrderPlaced(ctx, orderID, total, lines, requestID)

	return &Confirmation{OrderID: orderID, Total: total, Lines: lines}, nil
}

// Track returns the formatted status of a persisted order
func (s *Service) Track(ctx context.Context, orderID int64, requestID string) (string, error) {
	order, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return "", err
	}

	parts := make([]string, len(order.Items))
	for i, line := range order.Items {
		parts[i] = fmt.Sprintf("%s (x%d)", line.ItemName, line.Quantity)
	}

	return fmt.Sprintf("Order ID: %d\nStatus: %s\nItems: %s\nTotal Amount: %s\nOrder Date: %s",
		order.ID,
		order.Status,
		strings.Join(parts, ", "),
		money(order.TotalAmount),
		order.CreatedAt.Format("2006-01-02 15:04:05"),
	), nil
}

func (s *Service) publishOrderPlaced(ctx context.Context, orderID int64, total decimal.Decimal, lines []models.OrderLine, requestID string) {
	if s.publisher == nil {
		return
	}

	msg := &models.OrderPlacedMessage{
		OrderID:     orderID,
		TotalAmount: total,
		Items:       lines,
	}
	if err := s.publisher.PublishOrderPlaced(ctx, msg); err != nil {
		// The order is already persisted; event delivery is best-effort.
		s.logger.Error("event_publish_failed", "Failed to publish order-placed event", requestID, err, map[string]interface{}{
			"order_id": orderID,
		})
	}
}

// matchOrderLine runs the resolver's tier chain over the order's own line
// names. Exact key matching has already been tried by the caller.
func matchOrderLine(order *session.Order, candidate string) (int, bool) {
	names := make([]string, len(order.Lines))
	for i, line := range order.Lines {
		names[i] = line.Name
	}
	return menu.MatchName(candidate, names)
}

func padQuantities(quantities []int, n int) []int {
	padded := make([]int, n)
	for i := range padded {
		if i < len(quantities) && quantities[i] > 0 {
			padded[i] = quantities[i]
		} else {
			padded[i] = 1
		}
	}
	return padded
}

func addReply(order *session.Order, notFound []string) string {
	var b strings.Builder

	if len(notFound) == 1 {
		fmt.Fprintf(&b, "Sorry, %s is not available on our menu. ", notFound[0])
	} else if len(notFound) > 1 {
		fmt.Fprintf(&b, "Sorry, these items are not available on our menu: %s. ", strings.Join(notFound, ", "))
	}

	if order.IsEmpty() {
		b.WriteString("What would you like to order?")
		return b.String()
	}

	fmt.Fprintf(&b, "Added to your order: %s. Would you like to add more items or complete your order?", lineSummary(order))
	return b.String()
}

func removeReply(order *session.Order, removed, notFound []string) string {
	var b strings.Builder

	if len(removed) > 0 {
		fmt.Fprintf(&b, "Removed from your order: %s. ", strings.Join(removed, ", "))
	}
	if len(notFound) > 0 {
		fmt.Fprintf(&b, "These items were not in your order: %s. ", strings.Join(notFound, ", "))
	}

	if order.IsEmpty() {
		b.WriteString("Your order is now empty.")
	} else {
		fmt.Fprintf(&b, "Current order: %s", lineSummary(order))
	}
	return b.String()
}

func lineSummary(order *session.Order) string {
	parts := make([]string, len(order.Lines))
	for i, line := range order.Lines {
		parts[i] = fmt.Sprintf("%s: %d", line.Name, line.Quantity)
	}
	return strings.Join(parts, ", ")
}

func money(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}
