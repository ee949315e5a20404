package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderStatusRank(t *testing.T) {
	tests := []struct {
		status OrderStatus
		rank   int
	}{
		{StatusPending, 1},
		{StatusConfirmed, 2},
		{StatusShipped, 3},
		{StatusDelivered, 4},
		{StatusCancelled, 4},
		{OrderStatus("UNKNOWN"), 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.rank, tt.status.Rank())
		})
	}
}

func TestOrderStatusIsTerminal(t *testing.T) {
	assert.True(t, StatusDelivered.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusConfirmed.IsTerminal())
	assert.False(t, StatusShipped.IsTerminal())
}

func TestParseStatus(t *testing.T) {
	status, ok := ParseStatus("CONFIRMED")
	require.True(t, ok)
	assert.Equal(t, StatusConfirmed, status)

	_, ok = ParseStatus("confirmed")
	assert.False(t, ok, "statuses are case sensitive")

	_, ok = ParseStatus("PAID")
	assert.False(t, ok)
}

func TestValidateTransition(t *testing.T) {
	tests := []struct {
		name      string
		current   OrderStatus
		requested OrderStatus
		wantErr   bool
	}{
		{"pending to confirmed", StatusPending, StatusConfirmed, false},
		{"pending to cancelled", StatusPending, StatusCancelled, false},
		{"pending straight to delivered", StatusPending, StatusDelivered, false},
		{"confirmed to shipped", StatusConfirmed, StatusShipped, false},
		{"shipped to delivered", StatusShipped, StatusDelivered, false},
		{"shipped to cancelled is still forward", StatusShipped, StatusCancelled, false},
		{"shipped back to confirmed", StatusShipped, StatusConfirmed, true},
		{"confirmed back to pending", StatusConfirmed, StatusPending, true},
		{"pending to pending", StatusPending, StatusPending, true},
		{"delivered is immutable", StatusDelivered, StatusCancelled, true},
		{"cancelled is immutable", StatusCancelled, StatusConfirmed, true},
		{"cancelled to delivered", StatusCancelled, StatusDelivered, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTransition(tt.current, tt.requested)
			if tt.wantErr {
				var invalid *InvalidTransitionError
				require.ErrorAs(t, err, &invalid)
				assert.Equal(t, tt.requested, invalid.To)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestOrderAddItemAccumulatesTotal(t *testing.T) {
	order := &Order{Status: StatusPending}

	order.AddItem(OrderItem{ProductID: "p1", UnitPrice: 5.00, Quantity: 2, Subtotal: 10.00})
	order.AddItem(OrderItem{ProductID: "p2", UnitPrice: 2.50, Quantity: 3, Subtotal: 7.50})

	require.Len(t, order.Items, 2)
	assert.Equal(t, 17.50, order.TotalAmount)

	var sum float64
	for _, item := range order.Items {
		sum += item.Subtotal
	}
	assert.Equal(t, sum, order.TotalAmount)
}

func TestOrderConfirmedOn(t *testing.T) {
	now := time.Now()

	unconfirmed := &Order{Status: StatusPending}
	assert.False(t, unconfirmed.Confirmed())
	assert.False(t, unconfirmed.ConfirmedOn(now))

	today := &Order{Status: StatusConfirmed, OrderDate: now.Add(-time.Minute)}
	assert.True(t, today.Confirmed())
	assert.True(t, today.ConfirmedOn(now))

	yesterday := &Order{Status: StatusConfirmed, OrderDate: now.AddDate(0, 0, -1)}
	assert.True(t, yesterday.Confirmed())
	assert.False(t, yesterday.ConfirmedOn(now))
}
