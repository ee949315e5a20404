package models

import (
	"time"

	"go-order-ms/src/services/order/domain"
)

type CreateOrderRequest struct {
	UserID          string             `json:"userId"`
	ShippingAddress string             `json:"shippingAddress"`
	Items           []OrderItemRequest `json:"items"`
}

type OrderItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type StatusUpdateRequest struct {
	Status string `json:"status"`
}

type OrderResponse struct {
	ID              string              `json:"id"`
	UserID          string              `json:"userId"`
	OrderDate       *time.Time          `json:"orderDate,omitempty"`
	Status          string              `json:"status"`
	TotalAmount     float64             `json:"totalAmount"`
	ShippingAddress string              `json:"shippingAddress"`
	CreatedAt       time.Time           `json:"createdAt"`
	UpdatedAt       time.Time           `json:"updatedAt"`
	Items           []OrderItemResponse `json:"items,omitempty"`
}

type OrderItemResponse struct {
	ID          string  `json:"id"`
	OrderID     string  `json:"orderId"`
	ProductID   string  `json:"productId"`
	ProductName string  `json:"productName"`
	UnitPrice   float64 `json:"unitPrice"`
	Quantity    int     `json:"quantity"`
	Subtotal    float64 `json:"subtotal"`
}

type OrderMetricsResponse struct {
	StatusCounts map[string]int64 `json:"statusCounts"`
	DailyRevenue float64          `json:"dailyRevenue"`
}

func FromOrder(order *domain.Order) OrderResponse {
	response := OrderResponse{
		ID:              order.ID,
		UserID:          order.UserID,
		Status:          string(order.Status),
		TotalAmount:     order.TotalAmount,
		ShippingAddress: order.ShippingAddress,
		CreatedAt:       order.CreatedAt,
		UpdatedAt:       order.UpdatedAt,
	}
	if order.Confirmed() {
		orderDate := order.OrderDate
		response.OrderDate = &orderDate
	}
	for _, item := range order.Items {
		response.Items = append(response.Items, OrderItemResponse{
			ID:          item.ID,
			OrderID:     item.OrderID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
			Subtotal:    item.Subtotal,
		})
	}
	return response
}

func FromOrders(orders []domain.Order) []OrderResponse {
	responses := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		order := orders[i]
		// List responses stay shallow; item details come from the detail endpoint.
		order.Items = nil
		responses = append(responses, FromOrder(&order))
	}
	return responses
}
