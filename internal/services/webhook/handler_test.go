package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foodbot/internal/logger"
	"foodbot/internal/menu"
	"foodbot/internal/metrics"
	"foodbot/internal/models"
	"foodbot/internal/services/order"
	"foodbot/internal/session"
)

type fakeCatalog struct {
	items []models.MenuItem
}

func (c *fakeCatalog) FindByExactName(_ context.Context, name string) (models.MenuItem, bool, error) {
	for _, item := range c.items {
		if item.Name == name {
			return item, true, nil
		}
	}
	return models.MenuItem{}, false, nil
}

func (c *fakeCatalog) ListAvailable(_ context.Context) ([]models.MenuItem, error) {
	return c.items, nil
}

type fakeRepo struct {
	nextID int64
	orders map[int64]*models.Order
}

func (r *fakeRepo) CreateOrder(_ context.Context, lines []models.OrderLine, total decimal.Decimal) (int64, error) {
	id := r.nextID
	r.nextID++
	r.orders[id] = &models.Order{
		ID:          id,
		Status:      models.StatusPlaced,
		CreatedAt:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		TotalAmount: total,
		Items:       lines,
	}
	return id, nil
}

func (r *fakeRepo) GetOrder(_ context.Context, orderID int64) (*models.Order, error) {
	o, ok := r.orders[orderID]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	return o, nil
}

func newTestHandler() *Handler {
	catalog := &fakeCatalog{items: []models.MenuItem{
		{ID: 1, Name: "Margherita Pizza", Price: decimal.RequireFromString("8.99"), Available: true},
		{ID: 2, Name: "Pepperoni Pizza", Price: decimal.RequireFromString("10.99"), Available: true},
		{ID: 3, Name: "Coca Cola", Price: decimal.RequireFromString("1.99"), Available: true},
	}}
	repo := &fakeRepo{nextID: 1, orders: make(map[int64]*models.Order)}
	svc := order.NewService(session.NewMemoryStore(), menu.NewResolver(catalog), repo, nil, logger.New("test"))
	return NewHandler(svc, logger.New("test"), metrics.NewWith(prometheus.NewRegistry(), "test"))
}

func postWebhook(t *testing.T, h *Handler, intent, sessionPath, queryText string, params map[string]interface{}) models.WebhookResponse {
	t.Helper()

	body, err := json.Marshal(models.WebhookRequest{
		QueryResult: models.WebhookQueryResult{
			Intent:     models.WebhookIntent{DisplayName: intent},
			Parameters: params,
			QueryText:  queryText,
		},
		Session: sessionPath,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.HandleWebhook(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp models.WebhookResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestHandleWebhook_AddTrackFlow(t *testing.T) {
	h := newTestHandler()
	sessionPath := "projects/food-bot/agent/sessions/flow-1"

	resp := postWebhook(t, h, "new.order", sessionPath, "two pepperoni pizzas", map[string]interface{}{
		"food-item.original": []interface{}{"pepperoni pizza"},
		"number":             []interface{}{2.0},
	})
	assert.Contains(t, resp.FulfillmentText, "Added to your order: Pepperoni Pizza: 2")

	resp = postWebhook(t, h, "order.summary - context: ongoing-order", sessionPath, "", nil)
	assert.Equal(t, "Current order: Pepperoni Pizza: 2 ($21.98). Total: $21.98.", resp.FulfillmentText)

	resp = postWebhook(t, h, "order.complete - context: ongoing-order", sessionPath, "that's all", nil)
	assert.Contains(t, resp.FulfillmentText, "Your order has been placed successfully! Order ID: 1.")
	assert.Contains(t, resp.FulfillmentText, "Total: $21.98")

	resp = postWebhook(t, h, "track.order", sessionPath, "track order 1", map[string]interface{}{
		"number": 1.0,
	})
	assert.Contains(t, resp.FulfillmentText, "Status: Placed")
	assert.Contains(t, resp.FulfillmentText, "Pepperoni Pizza (x2)")
}

func TestHandleWebhook_RemoveWithSpokenQuantity(t *testing.T) {
	h := newTestHandler()
	sessionPath := "projects/food-bot/agent/sessions/flow-2"

	postWebhook(t, h, "new.order", sessionPath, "", map[string]interface{}{
		"food-item": []interface{}{"Margherita Pizza"},
		"number":    []interface{}{3.0},
	})

	resp := postWebhook(t, h, "order.remove - context: ongoing-order", sessionPath, "remove two margherita pizzas", map[string]interface{}{
		"food-item": []interface{}{"Margherita Pizza"},
	})
	assert.Contains(t, resp.FulfillmentText, "Removed from your order: Margherita Pizza.")
	assert.Contains(t, resp.FulfillmentText, "Margherita Pizza: 1")
}

func TestHandleWebhook_CompleteEmptyOrder(t *testing.T) {
	h := newTestHandler()

	resp := postWebhook(t, h, "order.complete - context: ongoing-order", "projects/p/agent/sessions/empty", "", nil)
	assert.Equal(t, "Your order is empty. Please add items before completing the order.", resp.FulfillmentText)
}

func TestHandleWebhook_TrackUnknownOrder(t *testing.T) {
	h := newTestHandler()

	resp := postWebhook(t, h, "track.order", "projects/p/agent/sessions/s", "track order 99", map[string]interface{}{
		"number": 99.0,
	})
	assert.Equal(t, "Sorry, I couldn't find any order with ID: 99", resp.FulfillmentText)
}

func TestHandleWebhook_StoreHoursAndFallback(t *testing.T) {
	h := newTestHandler()

	resp := postWebhook(t, h, "store.hours", "projects/p/agent/sessions/s", "when are you open", nil)
	assert.Equal(t, storeHoursText, resp.FulfillmentText)

	resp = postWebhook(t, h, "something.unknown", "projects/p/agent/sessions/s", "???", nil)
	assert.Equal(t, fallbackText, resp.FulfillmentText)
}

func TestHandleWebhook_RejectsNonPost(t *testing.T) {
	h := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/webhook", nil)
	rec := httptest.NewRecorder()
	h.HandleWebhook(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandleWebhook_InvalidJSON(t *testing.T) {
	h := newTestHandler()

	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	h.HandleWebhook(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetOrder(t *testing.T) {
	h := newTestHandler()
	sessionPath := "projects/p/agent/sessions/rest"

	postWebhook(t, h, "new.order", sessionPath, "", map[string]interface{}{
		"food-item": []interface{}{"Coca Cola"},
	})
	postWebhook(t, h, "order.complete - context: ongoing-order", sessionPath, "", nil)

	req := httptest.NewRequest(http.MethodGet, "/orders/1", nil)
	rec := httptest.NewRecorder()
	h.GetOrder(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var payload map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&payload))
	assert.Equal(t, float64(1), payload["order_id"])
	assert.Contains(t, payload["details"], "Coca Cola (x1)")
}

func TestGetOrder_NotFoundAndBadID(t *testing.T) {
	h := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/orders/41", nil)
	rec := httptest.NewRecorder()
	h.GetOrder(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/orders/abc", nil)
	rec = httptest.NewRecorder()
	h.GetOrder(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthCheck(t *testing.T) {
	h := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.HealthCheck(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var payload map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&payload))
	assert.Equal(t, "ok", payload["status"])
}
