package domain

import "time"

// OrderStatus is the closed set of lifecycle states an order can be in.
// Statuses only move forward (see Rank) or sideways to CANCELLED.
type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusConfirmed OrderStatus = "CONFIRMED"
	StatusShipped   OrderStatus = "SHIPPED"
	StatusDelivered OrderStatus = "DELIVERED"
	StatusCancelled OrderStatus = "CANCELLED"
)

// Rank returns the forward-progress ordinal of a status. DELIVERED and
// CANCELLED deliberately share the top rank: both are terminal and only
// reachable by moving forward.
func (s OrderStatus) Rank() int {
	switch s {
	case StatusPending:
		return 1
	case StatusConfirmed:
		return 2
	case StatusShipped:
		return 3
	case StatusDelivered, StatusCancelled:
		return 4
	default:
		return 0
	}
}

func (s OrderStatus) IsValid() bool {
	return s.Rank() > 0
}

// IsTerminal reports whether the status admits no further transitions.
func (s OrderStatus) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

func (s OrderStatus) String() string {
	return string(s)
}

// ParseStatus converts a raw request value into an OrderStatus.
func ParseStatus(raw string) (OrderStatus, bool) {
	s := OrderStatus(raw)
	return s, s.IsValid()
}

// AllStatuses lists every valid status, used to seed the status counters.
func AllStatuses() []OrderStatus {
	return []OrderStatus{StatusPending, StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled}
}

// Order is the aggregate root. It owns its items exclusively; items are
// attached one at a time during creation and the item set is immutable
// afterwards. TotalAmount always equals the sum of the items' subtotals.
type Order struct {
	ID              string      `json:"id"`
	UserID          string      `json:"userId"`
	OrderDate       time.Time   `json:"orderDate"`
	Status          OrderStatus `json:"status"`
	TotalAmount     float64     `json:"totalAmount"`
	ShippingAddress string      `json:"shippingAddress"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
	Items           []OrderItem `json:"items,omitempty"`
}

// OrderItem carries a snapshot of the product's name and unit price taken
// at order time. Later catalog changes do not affect past orders.
type OrderItem struct {
	ID          string  `json:"id"`
	OrderID     string  `json:"orderId"`
	ProductID   string  `json:"productId"`
	ProductName string  `json:"productName"`
	UnitPrice   float64 `json:"unitPrice"`
	Quantity    int     `json:"quantity"`
	Subtotal    float64 `json:"subtotal"`
}

// AddItem attaches an item to the order and accumulates the running total.
func (o *Order) AddItem(item OrderItem) {
	o.Items = append(o.Items, item)
	o.TotalAmount += item.Subtotal
}

// Confirmed reports whether the order ever left PENDING towards a
// non-cancelled status. OrderDate is set exactly once, at that moment.
func (o *Order) Confirmed() bool {
	return !o.OrderDate.IsZero()
}

// ConfirmedOn reports whether the order was confirmed on the same calendar
// day as the given instant, in that instant's location.
func (o *Order) ConfirmedOn(day time.Time) bool {
	if !o.Confirmed() {
		return false
	}
	y1, m1, d1 := o.OrderDate.In(day.Location()).Date()
	y2, m2, d2 := day.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// ValidateTransition applies the status state machine rules, in order:
//
//  1. PENDING is never a valid target: an order cannot go back to waiting.
//  2. DELIVERED and CANCELLED orders are immutable.
//  3. A transition may not move backward in rank. CANCELLED ties with
//     DELIVERED at rank 4, so cancelling a shipped order is still forward.
//
// Side effects of a legal transition (order date, revenue accumulation,
// status counters) belong to the service layer, not here.
func ValidateTransition(current, requested OrderStatus) error {
	if requested == StatusPending {
		return &InvalidTransitionError{
			From:   current,
			To:     requested,
			Reason: "an order cannot return to PENDING",
		}
	}
	if current.IsTerminal() {
		return &InvalidTransitionError{
			From:   current,
			To:     requested,
			Reason: "delivered and cancelled orders cannot be modified",
		}
	}
	if current.Rank() > requested.Rank() {
		return &InvalidTransitionError{
			From:   current,
			To:     requested,
			Reason: "an order cannot move backward in its lifecycle",
		}
	}
	return nil
}
