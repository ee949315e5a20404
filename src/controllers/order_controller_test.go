package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-order-ms/src/controllers/models"
	"go-order-ms/src/services/metrics"
	"go-order-ms/src/services/order/domain"
	"go-order-ms/src/services/revenue"
)

// stubOrderService lets each test pin the outcome of a single operation.
type stubOrderService struct {
	order *domain.Order
	list  []domain.Order
	err   error
}

func (s *stubOrderService) CreateOrder(context.Context, domain.CreateOrderRequest) (*domain.Order, error) {
	return s.order, s.err
}

func (s *stubOrderService) GetOrder(context.Context, string) (*domain.Order, error) {
	return s.order, s.err
}

func (s *stubOrderService) ListOrders(context.Context) ([]domain.Order, error) {
	return s.list, s.err
}

func (s *stubOrderService) ListOrdersByUser(context.Context, string) ([]domain.Order, error) {
	return s.list, s.err
}

func (s *stubOrderService) ListOrdersByStatus(context.Context, string) ([]domain.Order, error) {
	return s.list, s.err
}

func (s *stubOrderService) UpdateOrderStatus(context.Context, string, string) (*domain.Order, error) {
	return s.order, s.err
}

func (s *stubOrderService) CancelOrder(context.Context, string) error {
	return s.err
}

func newTestApp(service domain.OrderService) *fiber.App {
	app := fiber.New()
	controller := NewOrderController(service, metrics.NewStatusCounters(), revenue.NewDailyTotal())
	controller.Route(app)
	return app
}

func TestCreateOrderReturnsCreated(t *testing.T) {
	service := &stubOrderService{order: &domain.Order{
		ID:          "order-1",
		UserID:      "7",
		Status:      domain.StatusPending,
		TotalAmount: 10.00,
	}}
	app := newTestApp(service)

	body := `{"userId":"7","shippingAddress":"221B Baker Street, London","items":[{"productId":"11","quantity":2}]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var payload models.OrderResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, "order-1", payload.ID)
	assert.Equal(t, "PENDING", payload.Status)
	assert.Equal(t, 10.00, payload.TotalAmount)
	assert.Nil(t, payload.OrderDate, "unconfirmed orders carry no order date")
}

func TestCreateOrderMalformedBody(t *testing.T) {
	app := newTestApp(&stubOrderService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
	}{
		{"order not found", domain.ErrOrderNotFound, fiber.StatusNotFound},
		{"user not found", domain.ErrUserNotFound, fiber.StatusNotFound},
		{"product not found", domain.ErrProductNotFound, fiber.StatusNotFound},
		{
			"insufficient stock",
			&domain.InsufficientStockError{ProductName: "Widget", Requested: 2, Available: 1},
			fiber.StatusConflict,
		},
		{
			"invalid transition",
			&domain.InvalidTransitionError{From: domain.StatusDelivered, To: domain.StatusCancelled, Reason: "terminal"},
			fiber.StatusConflict,
		},
		{
			"collaborator unavailable",
			&domain.ExternalServiceError{Service: "user", Err: errors.New("connection refused")},
			fiber.StatusServiceUnavailable,
		},
		{"invalid request", domain.ErrInvalidRequest, fiber.StatusBadRequest},
		{"unexpected error", errors.New("boom"), fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(&stubOrderService{err: tt.serviceErr})

			req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/order-1", nil)
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestCancelOrderReturnsNoContent(t *testing.T) {
	app := newTestApp(&stubOrderService{})

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/orders/order-1", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}

func TestUpdateOrderStatusRoute(t *testing.T) {
	service := &stubOrderService{order: &domain.Order{
		ID:     "order-1",
		UserID: "7",
		Status: domain.StatusConfirmed,
	}}
	app := newTestApp(service)

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/orders/order-1/status", strings.NewReader(`{"status":"CONFIRMED"}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var payload models.OrderResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, "CONFIRMED", payload.Status)
}

func TestListRoutesAreNotShadowedByID(t *testing.T) {
	service := &stubOrderService{list: []domain.Order{
		{ID: "order-1", UserID: "7", Status: domain.StatusPending},
	}}
	app := newTestApp(service)

	for _, path := range []string{"/api/v1/orders/user/7", "/api/v1/orders/status/PENDING"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp, err := app.Test(req)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, fiber.StatusOK, resp.StatusCode, path)
	}
}

func TestOrderMetricsRoute(t *testing.T) {
	app := fiber.New()
	counters := metrics.NewStatusCounters()
	counters.Inc("PENDING")
	dailyRevenue := revenue.NewDailyTotal()
	dailyRevenue.Add(10.00)
	NewOrderController(&stubOrderService{}, counters, dailyRevenue).Route(app)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/metrics/orders", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var payload models.OrderMetricsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, int64(1), payload.StatusCounts["PENDING"])
	assert.Equal(t, 10.00, payload.DailyRevenue)
}
