// Package webhook dispatches already-classified intents from the dialogue
// engine to the order operations. It owns no ordering logic of its own.
package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"foodbot/internal/logger"
	"foodbot/internal/metrics"
	"foodbot/internal/models"
	"foodbot/internal/services/order"
)

const storeHoursText = `Here are our store hours:
Monday - Friday: 10:00 AM to 10:00 PM
Saturday - Sunday: 11:00 AM to 11:00 PM

We're open every day! You can place orders anytime during these hours.`

const fallbackText = "I'm not sure how to help with that. You can:\n1. Place a new order\n2. Track an existing order\n3. Ask about store hours"

const errorText = "Sorry, something went wrong. Please try again."

// Handler handles HTTP requests from the dialogue engine
type Handler struct {
	service *order.Service
	logger  *logger.Logger
	metrics *metrics.Metrics
}

// NewHandler creates a new webhook handler
func NewHandler(service *order.Service, log *logger.Logger, m *metrics.Metrics) *Handler {
	return &Handler{
		service: service,
		logger:  log,
		metrics: m,
	}
}

// SetupRoutes sets up the HTTP routes
func (h *Handler) SetupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/webhook", h.withLogging("webhook", h.HandleWebhook))
	mux.HandleFunc("/orders/", h.withLogging("orders", h.GetOrder))
	mux.HandleFunc("/health", h.withLogging("health", h.HealthCheck))
	mux.Handle("/metrics", metrics.Handler())

	return mux
}

// HandleWebhook handles POST /webhook requests from the dialogue engine.
// Every outcome, including failures, is answered with fulfillment text: the
// dialogue engine has no use for HTTP errors mid-conversation.
func (h *Handler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GenerateRequestID()

	if r.Method != http.MethodPost {
		h.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed", requestID)
		return
	}

	var req models.WebhookRequest
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&req); err != nil {
		h.logger.Error("validation_failed", "Failed to parse webhook body", requestID, err, nil)
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid JSON format", requestID)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	intent := req.QueryResult.Intent.DisplayName
	sessionID := extractSessionID(req.Session)

	h.logger.Debug("intent_received", fmt.Sprintf("Dispatching intent %q", intent), requestID, map[string]interface{}{
		"intent":     intent,
		"session_id": sessionID,
		"query_text": req.QueryResult.QueryText,
	})

	fulfillment, err := h.dispatch(ctx, intent, sessionID, &req, requestID)
	if err != nil {
		h.logger.Error("intent_failed", fmt.Sprintf("Intent %q failed", intent), requestID, err, map[string]interface{}{
			"intent":     intent,
			"session_id": sessionID,
		})
		h.metrics.Intents.WithLabelValues(intent, "error").Inc()
		fulfillment = errorText
	} else {
		h.metrics.Intents.WithLabelValues(intent, "ok").Inc()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(models.WebhookResponse{FulfillmentText: fulfillment}); err != nil {
		h.logger.Error("response_encoding_failed", "Failed to encode response", requestID, err, nil)
	}
}

// dispatch routes an intent to the matching order operation. Recoverable,
// user-facing conditions come back as fulfillment text; only infrastructure
// failures return an error.
func (h *Handler) dispatch(ctx context.Context, intent, sessionID string, req *models.WebhookRequest, requestID string) (string, error) {
	params := req.QueryResult.Parameters

	switch intent {
	case "new.order", "order.add - context: ongoing-order":
		items := extractFoodItems(params)
		if len(items) == 0 {
			if intent == "new.order" {
				return "What would you like to order?", nil
			}
			return "What would you like to add to your order?", nil
		}
		return h.service.AddItems(ctx, sessionID, items, extractQuantities(params), requestID)

	case "order.remove - context: ongoing-order", "order.remove-context: ongoing-order":
		items := extractFoodItems(params)
		if len(items) == 0 {
			return "What would you like to remove from your order?", nil
		}
		quantities := parseRemovalQuantities(req.QueryResult.QueryText)
		reply, err := h.service.RemoveItems(ctx, sessionID, items, quantities, requestID)
		if errors.Is(err, order.ErrInvalidQuantity) {
			return "Please provide a valid quantity to remove.", nil
		}
		return reply, err

	case "order.complete - context: ongoing-order", "order.complete-context: ongoing-order":
		conf, err := h.service.Complete(ctx, sessionID, requestID)
		if errors.Is(err, order.ErrEmptyOrder) {
			return "Your order is empty. Please add items before completing the order.", nil
		}
		if err != nil {
			return "", err
		}
		return conf.Text(), nil

	case "order.summary", "order.summary - context: ongoing-order":
		return h.service.Summarize(ctx, sessionID, requestID)

	case "track.order", "track.order - context: ongoing-tracking":
		orderID := extractOrderID(params)
		if orderID == 0 {
			return "Please provide your order ID to track your order.", nil
		}
		status, err := h.service.Track(ctx, orderID, requestID)
		if errors.Is(err, order.ErrOrderNotFound) {
			return fmt.Sprintf("Sorry, I couldn't find any order with ID: %d", orderID), nil
		}
		return status, err

	case "store.hours", "store hours":
		return storeHoursText, nil

	default:
		return fallbackText, nil
	}
}

// GetOrder handles GET /orders/{order_id} requests, a plain REST view of
// order tracking for testing and external integrations.
func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	requestID := logger.GenerateRequestID()

	if r.Method != http.MethodGet {
		h.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed", requestID)
		return
	}

	idText := strings.TrimPrefix(r.URL.Path, "/orders/")
	orderID, err := strconv.ParseInt(idText, 10, 64)
	if err != nil || orderID <= 0 {
		h.writeErrorResponse(w, http.StatusBadRequest, "Invalid order id", requestID)
		return
	}

	details, err := h.service.Track(r.Context(), orderID, requestID)
	if errors.Is(err, order.ErrOrderNotFound) {
		h.writeErrorResponse(w, http.StatusNotFound, "Order not found", requestID)
		return
	}
	if err != nil {
		h.logger.Error("db_query_failed", "Failed to track order", requestID, err, map[string]interface{}{
			"order_id": orderID,
		})
		h.writeErrorResponse(w, http.StatusInternalServerError, "Internal server error", requestID)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"order_id": orderID,
		"details":  details,
	})
}

// HealthCheck handles GET /health requests
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeErrorResponse(w, http.StatusMethodNotAllowed, "Method not allowed", "")
		return
	}

	response := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "webhook-service",
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

func (h *Handler) writeErrorResponse(w http.ResponseWriter, statusCode int, message, requestID string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	json.NewEncoder(w).Encode(map[string]interface{}{
		"error":      message,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"request_id": requestID,
	})
}

// withLogging adds request logging and latency metrics
func (h *Handler) withLogging(name string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := logger.GenerateRequestID()

		h.logger.Debug("request_started",
			fmt.Sprintf("%s %s", r.Method, r.URL.Path),
			requestID,
			map[string]interface{}{
				"method":      r.Method,
				"path":        r.URL.Path,
				"remote_addr": r.RemoteAddr,
			})

		rw := &responseWriter{ResponseWriter: w, statusCode: 200}
		next(rw, r)

		duration := time.Since(start)
		h.metrics.LatencyMS.WithLabelValues(name).Observe(float64(duration.Milliseconds()))
		h.logger.Debug("request_completed",
			fmt.Sprintf("%s %s - %d", r.Method, r.URL.Path, rw.statusCode),
			requestID,
			map[string]interface{}{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status_code": rw.statusCode,
				"duration_ms": duration.Milliseconds(),
			})
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
