package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go-order-ms/src/infrastructure/log"
	"go-order-ms/src/services/events"
	"go-order-ms/src/services/metrics"
	"go-order-ms/src/services/revenue"
)

// OrderService is the order workflow: the creation saga against the user and
// product services, the status lifecycle, and the read paths.
type OrderService interface {
	CreateOrder(ctx context.Context, req CreateOrderRequest) (*Order, error)
	GetOrder(ctx context.Context, id string) (*Order, error)
	ListOrders(ctx context.Context) ([]Order, error)
	ListOrdersByUser(ctx context.Context, userID string) ([]Order, error)
	ListOrdersByStatus(ctx context.Context, status string) ([]Order, error)
	UpdateOrderStatus(ctx context.Context, id string, status string) (*Order, error)
	CancelOrder(ctx context.Context, id string) error
}

// CreateOrderRequest is the validated input of the create workflow.
type CreateOrderRequest struct {
	UserID          string
	ShippingAddress string
	Items           []CreateOrderItem
}

type CreateOrderItem struct {
	ProductID string
	Quantity  int
}

type orderService struct {
	logger   log.Logger
	orders   OrderRepository
	users    UserGateway
	products ProductGateway
	revenue  *revenue.DailyTotal
	counters *metrics.StatusCounters
	events   EventPublisher
}

func NewOrderService(
	logger log.Logger,
	orders OrderRepository,
	users UserGateway,
	products ProductGateway,
	dailyRevenue *revenue.DailyTotal,
	counters *metrics.StatusCounters,
	publisher EventPublisher,
) OrderService {
	return &orderService{
		logger:   logger,
		orders:   orders,
		users:    users,
		products: products,
		revenue:  dailyRevenue,
		counters: counters,
		events:   publisher,
	}
}

const (
	minShippingAddressLen = 10
	maxShippingAddressLen = 500
)

func (req CreateOrderRequest) validate() error {
	if req.UserID == "" {
		return fmt.Errorf("%w: userId is required", ErrInvalidRequest)
	}
	if n := len(req.ShippingAddress); n < minShippingAddressLen || n > maxShippingAddressLen {
		return fmt.Errorf("%w: shippingAddress must be between %d and %d characters",
			ErrInvalidRequest, minShippingAddressLen, maxShippingAddressLen)
	}
	if len(req.Items) == 0 {
		return fmt.Errorf("%w: an order needs at least one item", ErrInvalidRequest)
	}
	for i, item := range req.Items {
		if item.ProductID == "" {
			return fmt.Errorf("%w: items[%d].productId is required", ErrInvalidRequest, i)
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: items[%d].quantity must be positive", ErrInvalidRequest, i)
		}
	}
	return nil
}

// CreateOrder runs the creation saga, strictly ordered:
//
//  1. Verify the user exists.
//  2. Read-only pass: fetch every product and check stock. Nothing has been
//     written yet, so a failure here aborts with no trace.
//  3. Persist the order in PENDING with zero total and no items.
//  4. Per item, in request order: re-fetch the product snapshot (price or
//     name may have drifted since step 2, which is accepted), persist the
//     item, accumulate the total, then send the stock decrement.
//  5. Persist the finalized total and count the PENDING order.
//
// If a collaborator call fails inside step 4 the order is forced to
// CANCELLED (best effort; a failure of that write is logged and swallowed,
// the primary error wins). Stock decrements already applied for earlier
// items are NOT reversed: the collaborator contract has no compensating
// positive-delta path in this workflow, so the stock stays over-decremented.
// That gap is inherited from the upstream design, deliberately left visible
// rather than papered over.
func (s *orderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*Order, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	s.logger.InfoWithExtra(ctx, "Creating order", map[string]any{
		"UserId":    req.UserID,
		"ItemCount": len(req.Items),
	})

	if err := s.users.EnsureExists(ctx, req.UserID); err != nil {
		return nil, err
	}

	for _, item := range req.Items {
		product, err := s.products.GetProduct(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		if product.Stock < item.Quantity {
			return nil, &InsufficientStockError{
				ProductID:   product.ID,
				ProductName: product.Name,
				Requested:   item.Quantity,
				Available:   product.Stock,
			}
		}
	}

	order := &Order{
		UserID:          req.UserID,
		ShippingAddress: req.ShippingAddress,
		Status:          StatusPending,
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to persist order: %w", err)
	}

	for _, requested := range req.Items {
		product, err := s.products.GetProduct(ctx, requested.ProductID)
		if err != nil {
			s.forceCancel(ctx, order)
			return nil, err
		}

		item := OrderItem{
			OrderID:     order.ID,
			ProductID:   product.ID,
			ProductName: product.Name,
			UnitPrice:   product.Price,
			Quantity:    requested.Quantity,
			Subtotal:    product.Price * float64(requested.Quantity),
		}
		if err := s.orders.AttachItem(ctx, order.ID, &item); err != nil {
			s.forceCancel(ctx, order)
			return nil, fmt.Errorf("failed to persist order item: %w", err)
		}
		order.AddItem(item)

		if err := s.products.AdjustStock(ctx, requested.ProductID, -requested.Quantity); err != nil {
			s.forceCancel(ctx, order)
			return nil, err
		}
	}

	if err := s.orders.Save(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to persist order total: %w", err)
	}
	s.counters.Inc(string(StatusPending))

	s.publish(ctx, events.OrderCreated, &events.OrderCreatedEvent{
		OrderID:     order.ID,
		UserID:      order.UserID,
		TotalAmount: order.TotalAmount,
		Status:      string(order.Status),
		ItemCount:   len(order.Items),
		Version:     1,
		TimeStamp:   time.Now().Local(),
	})

	s.logger.InfoWithExtra(ctx, "Order created successfully", map[string]any{
		"OrderId":     order.ID,
		"UserId":      order.UserID,
		"TotalAmount": order.TotalAmount,
	})
	return order, nil
}

// forceCancel is the single compensation point of the saga. It must not
// fail the request a second time: the collaborator error being propagated
// takes precedence over a failed cancellation write.
func (s *orderService) forceCancel(ctx context.Context, order *Order) {
	err := s.orders.UpdateStatus(ctx, order.ID, order.Status, StatusCancelled, time.Time{})
	if err != nil {
		s.logger.Exception(ctx, "Failed to cancel order "+order.ID+" after saga failure", err)
		return
	}
	order.Status = StatusCancelled
	s.counters.Inc(string(StatusCancelled))
	s.logger.Warn(ctx, "Order "+order.ID+" forced to CANCELLED after saga failure; stock decrements already applied are not reversed")
}

func (s *orderService) GetOrder(ctx context.Context, id string) (*Order, error) {
	return s.orders.FindByID(ctx, id)
}

func (s *orderService) ListOrders(ctx context.Context) ([]Order, error) {
	return s.orders.FindAll(ctx)
}

// ListOrdersByUser verifies the user against the user service first, like
// the create path, so an unknown user yields 404 rather than an empty list.
func (s *orderService) ListOrdersByUser(ctx context.Context, userID string) ([]Order, error) {
	if err := s.users.EnsureExists(ctx, userID); err != nil {
		return nil, err
	}
	return s.orders.FindByUserID(ctx, userID)
}

func (s *orderService) ListOrdersByStatus(ctx context.Context, status string) ([]Order, error) {
	parsed, ok := ParseStatus(status)
	if !ok {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidRequest, status)
	}
	return s.orders.FindByStatus(ctx, parsed)
}

// UpdateOrderStatus moves an order through its lifecycle. Rules are checked
// in a fixed sequence; the persistence write is conditional on the current
// status so a concurrent transition cannot sneak past the rank check. The
// revenue accumulator and status counters mutate only after that write
// succeeds, so a failed invocation never corrupts shared state.
func (s *orderService) UpdateOrderStatus(ctx context.Context, id string, status string) (*Order, error) {
	requested, ok := ParseStatus(status)
	if !ok {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidRequest, status)
	}
	if requested == StatusPending {
		return nil, &InvalidTransitionError{To: requested, Reason: "an order cannot return to PENDING"}
	}

	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ValidateTransition(order.Status, requested); err != nil {
		return nil, err
	}

	// Confirmation moment: the first move out of PENDING towards a
	// non-cancelled status stamps the order date and recognizes revenue.
	var orderDate time.Time
	confirming := order.Status == StatusPending && requested != StatusCancelled
	if confirming {
		orderDate = time.Now()
	}

	// A same-day cancellation of a confirmed order reverses the revenue
	// recognized at confirmation. Orders confirmed on an earlier day keep
	// their contribution to that day's total.
	reversing := requested == StatusCancelled &&
		order.Status != StatusPending &&
		order.ConfirmedOn(time.Now())

	previous := order.Status
	if err := s.orders.UpdateStatus(ctx, id, previous, requested, orderDate); err != nil {
		return nil, err
	}

	if confirming {
		order.OrderDate = orderDate
		s.revenue.Add(order.TotalAmount)
	}
	if reversing {
		s.revenue.Subtract(order.TotalAmount)
	}
	s.counters.Dec(string(previous))
	s.counters.Inc(string(requested))
	order.Status = requested

	s.publish(ctx, events.OrderStatusChanged, &events.OrderStatusChangedEvent{
		OrderID:   order.ID,
		From:      string(previous),
		To:        string(requested),
		Version:   1,
		TimeStamp: time.Now().Local(),
	})

	s.logger.InfoWithExtra(ctx, "Order status updated", map[string]any{
		"OrderId":   order.ID,
		"OldStatus": string(previous),
		"NewStatus": string(requested),
	})
	return order, nil
}

// CancelOrder is the convenience wrapper around a transition to CANCELLED.
// It refuses orders already at the terminal rank and performs the same
// same-day revenue reversal and counter bookkeeping as UpdateOrderStatus.
func (s *orderService) CancelOrder(ctx context.Context, id string) error {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if order.Status.Rank() == StatusCancelled.Rank() {
		return &InvalidTransitionError{
			From:   order.Status,
			To:     StatusCancelled,
			Reason: "an order cannot be cancelled once delivered or already cancelled",
		}
	}

	previous := order.Status
	if err := s.orders.UpdateStatus(ctx, id, previous, StatusCancelled, time.Time{}); err != nil {
		return err
	}

	s.counters.Dec(string(previous))
	s.counters.Inc(string(StatusCancelled))
	if order.ConfirmedOn(time.Now()) {
		s.revenue.Subtract(order.TotalAmount)
	}

	s.publish(ctx, events.OrderCancelled, &events.OrderCancelledEvent{
		OrderID:   order.ID,
		Status:    string(StatusCancelled),
		Version:   1,
		TimeStamp: time.Now().Local(),
	})

	s.logger.Info(ctx, "Order cancelled successfully: "+order.ID)
	return nil
}

type validatable interface {
	Validate() error
}

// publish emits a lifecycle event. Failures are logged and swallowed: the
// workflow has already committed and must not fail on notification plumbing.
func (s *orderService) publish(ctx context.Context, topic string, event validatable) {
	if s.events == nil {
		return
	}
	if err := event.Validate(); err != nil {
		s.logger.Exception(ctx, "Invalid "+topic+" event, not published", err)
		return
	}
	body, err := json.Marshal(event)
	if err != nil {
		s.logger.Exception(ctx, "Failed to marshal "+topic+" event", err)
		return
	}
	if err := s.events.Publish(topic, body); err != nil {
		s.logger.Exception(ctx, "Failed to publish "+topic+" event", err)
	}
}
