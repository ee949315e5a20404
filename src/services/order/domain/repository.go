package domain

import (
	"context"
	"time"
)

// OrderRepository persists the order aggregate. Implementations assign
// opaque identifiers on Create/AttachItem and maintain the audit timestamps.
type OrderRepository interface {
	// Create inserts a new order and assigns its ID.
	Create(ctx context.Context, order *Order) error

	// AttachItem appends an item to the order document, assigns the item ID
	// and increments the persisted total by the item's subtotal.
	AttachItem(ctx context.Context, orderID string, item *OrderItem) error

	// Save writes the order's finalized total.
	Save(ctx context.Context, order *Order) error

	FindByID(ctx context.Context, id string) (*Order, error)
	FindAll(ctx context.Context) ([]Order, error)
	FindByUserID(ctx context.Context, userID string) ([]Order, error)
	FindByStatus(ctx context.Context, status OrderStatus) ([]Order, error)

	// UpdateStatus moves the order from one status to another, conditionally
	// on the order still being in the expected current status. This is the
	// optimistic guard against two concurrent transitions both passing the
	// rank check: the loser of the race gets an InvalidTransitionError.
	// A non-zero orderDate is written alongside (confirmation moment).
	UpdateStatus(ctx context.Context, id string, from, to OrderStatus, orderDate time.Time) error

	// SumRevenueForDay sums totalAmount over orders whose orderDate falls on
	// the given calendar day. Read-only; used for startup reconciliation.
	SumRevenueForDay(ctx context.Context, day time.Time) (float64, error)

	// CountByStatus returns the number of persisted orders per status, used
	// to seed the status counters on startup.
	CountByStatus(ctx context.Context) (map[OrderStatus]int64, error)
}

// ProductInfo is the catalog snapshot returned by the product service.
type ProductInfo struct {
	ID    string
	Name  string
	Price float64
	Stock int
}

// UserGateway is the remote user service, reduced to the one question the
// workflow asks of it.
type UserGateway interface {
	// EnsureExists returns nil when the user exists, ErrUserNotFound when it
	// does not, and an ExternalServiceError when the service is unreachable.
	EnsureExists(ctx context.Context, userID string) error
}

// ProductGateway is the remote product service.
type ProductGateway interface {
	GetProduct(ctx context.Context, productID string) (*ProductInfo, error)

	// AdjustStock applies a signed stock delta. The create workflow only
	// ever sends negative deltas (reservations).
	AdjustStock(ctx context.Context, productID string, delta int) error
}

// EventPublisher emits lifecycle events. Publishing is fire-and-forget from
// the workflow's point of view; failures are logged, never surfaced.
type EventPublisher interface {
	Publish(topic string, body []byte) error
}
