package events

import (
	"errors"
	"time"
)

const (
	// Event types / routing keys
	OrderCreated       = "order.created"
	OrderStatusChanged = "order.status.changed"
	OrderCancelled     = "order.cancelled"
)

// Topics lists every routing key this service publishes, used to declare
// the queue topology at startup.
func Topics() []string {
	return []string{OrderCreated, OrderStatusChanged, OrderCancelled}
}

type OrderCreatedEvent struct {
	OrderID     string    `json:"orderId"`
	UserID      string    `json:"userId"`
	TotalAmount float64   `json:"totalAmount"`
	Status      string    `json:"status"`
	ItemCount   int       `json:"itemCount"`
	Version     int       `json:"version"`
	TimeStamp   time.Time `json:"timestamp"`
}

func (e *OrderCreatedEvent) Validate() error {
	if e.OrderID == "" || e.UserID == "" || e.Status == "" {
		return errors.New("missing required fields in OrderCreatedEvent")
	}
	return nil
}

type OrderStatusChangedEvent struct {
	OrderID   string    `json:"orderId"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Version   int       `json:"version"`
	TimeStamp time.Time `json:"timestamp"`
}

func (e *OrderStatusChangedEvent) Validate() error {
	if e.OrderID == "" || e.From == "" || e.To == "" {
		return errors.New("missing required fields in OrderStatusChangedEvent")
	}
	return nil
}

type OrderCancelledEvent struct {
	OrderID   string    `json:"orderId"`
	Status    string    `json:"status"`
	Version   int       `json:"version"`
	TimeStamp time.Time `json:"timestamp"`
}

func (e *OrderCancelledEvent) Validate() error {
	if e.OrderID == "" || e.Status == "" {
		return errors.New("missing required fields in OrderCancelledEvent")
	}
	return nil
}
