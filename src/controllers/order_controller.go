package controllers

import (
	"errors"

	"go-order-ms/src/controllers/models"
	"go-order-ms/src/services/metrics"
	"go-order-ms/src/services/order/domain"
	"go-order-ms/src/services/revenue"

	"github.com/gofiber/fiber/v2"
)

type OrderController struct {
	orderService domain.OrderService
	counters     *metrics.StatusCounters
	dailyRevenue *revenue.DailyTotal
}

func NewOrderController(orderService domain.OrderService, counters *metrics.StatusCounters, dailyRevenue *revenue.DailyTotal) *OrderController {
	return &OrderController{
		orderService: orderService,
		counters:     counters,
		dailyRevenue: dailyRevenue,
	}
}

func (c *OrderController) Route(app *fiber.App) {
	api := app.Group("/api/v1/orders")
	api.Post("/", c.CreateOrder)
	api.Get("/", c.ListOrders)
	// Literal segments must be registered before the /:id wildcard.
	api.Get("/user/:userId", c.ListOrdersByUser)
	api.Get("/status/:status", c.ListOrdersByStatus)
	api.Get("/:id", c.GetOrder)
	api.Patch("/:id/status", c.UpdateOrderStatus)
	api.Delete("/:id", c.CancelOrder)

	app.Get("/api/v1/metrics/orders", c.OrderMetrics)
}

// CreateOrder godoc
// @Summary      Create a new order
// @Description  Validates the user and product stock, persists the order with its items and reserves stock
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        order  body  models.CreateOrderRequest  true  "Order payload"
// @Success      201  {object}  models.OrderResponse
// @Failure      400  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Failure      409  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]interface{}
// @Router       /api/v1/orders [post]
func (c *OrderController) CreateOrder(ctx *fiber.Ctx) error {
	var request models.CreateOrderRequest
	if err := ctx.BodyParser(&request); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	}

	createRequest := domain.CreateOrderRequest{
		UserID:          request.UserID,
		ShippingAddress: request.ShippingAddress,
	}
	for _, item := range request.Items {
		createRequest.Items = append(createRequest.Items, domain.CreateOrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	order, err := c.orderService.CreateOrder(ctx.UserContext(), createRequest)
	if err != nil {
		return c.fail(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(models.FromOrder(order))
}

// GetOrder godoc
// @Summary      Get an order by ID
// @Description  Returns the order with its items
// @Tags         orders
// @Produce      json
// @Param        id  path  string  true  "Order ID"
// @Success      200  {object}  models.OrderResponse
// @Failure      404  {object}  map[string]interface{}
// @Router       /api/v1/orders/{id} [get]
func (c *OrderController) GetOrder(ctx *fiber.Ctx) error {
	order, err := c.orderService.GetOrder(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return c.fail(ctx, err)
	}
	return ctx.JSON(models.FromOrder(order))
}

// ListOrders godoc
// @Summary      List all orders
// @Tags         orders
// @Produce      json
// @Success      200  {array}  models.OrderResponse
// @Router       /api/v1/orders [get]
func (c *OrderController) ListOrders(ctx *fiber.Ctx) error {
	orders, err := c.orderService.ListOrders(ctx.UserContext())
	if err != nil {
		return c.fail(ctx, err)
	}
	return ctx.JSON(models.FromOrders(orders))
}

// ListOrdersByUser godoc
// @Summary      List a user's orders
// @Description  Verifies the user against the user service, then returns their orders
// @Tags         orders
// @Produce      json
// @Param        userId  path  string  true  "User ID"
// @Success      200  {array}  models.OrderResponse
// @Failure      404  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]interface{}
// @Router       /api/v1/orders/user/{userId} [get]
func (c *OrderController) ListOrdersByUser(ctx *fiber.Ctx) error {
	orders, err := c.orderService.ListOrdersByUser(ctx.UserContext(), ctx.Params("userId"))
	if err != nil {
		return c.fail(ctx, err)
	}
	return ctx.JSON(models.FromOrders(orders))
}

// ListOrdersByStatus godoc
// @Summary      List orders by status
// @Tags         orders
// @Produce      json
// @Param        status  path  string  true  "Order status"  Enums(PENDING, CONFIRMED, SHIPPED, DELIVERED, CANCELLED)
// @Success      200  {array}  models.OrderResponse
// @Failure      400  {object}  map[string]interface{}
// @Router       /api/v1/orders/status/{status} [get]
func (c *OrderController) ListOrdersByStatus(ctx *fiber.Ctx) error {
	orders, err := c.orderService.ListOrdersByStatus(ctx.UserContext(), ctx.Params("status"))
	if err != nil {
		return c.fail(ctx, err)
	}
	return ctx.JSON(models.FromOrders(orders))
}

// UpdateOrderStatus godoc
// @Summary      Update an order's status
// @Description  Moves the order through its lifecycle; backward moves and terminal states are rejected
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id      path  string                      true  "Order ID"
// @Param        status  body  models.StatusUpdateRequest  true  "Requested status"
// @Success      200  {object}  models.OrderResponse
// @Failure      400  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]interface{}
// @Failure      409  {object}  map[string]interface{}
// @Router       /api/v1/orders/{id}/status [patch]
func (c *OrderController) UpdateOrderStatus(ctx *fiber.Ctx) error {
	var request models.StatusUpdateRequest
	if err := ctx.BodyParser(&request); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request"})
	}

	order, err := c.orderService.UpdateOrderStatus(ctx.UserContext(), ctx.Params("id"), request.Status)
	if err != nil {
		return c.fail(ctx, err)
	}
	return ctx.JSON(models.FromOrder(order))
}

// CancelOrder godoc
// @Summary      Cancel an order
// @Description  Cancels the order unless it is already delivered or cancelled; cancellation is terminal, the order is kept
// @Tags         orders
// @Param        id  path  string  true  "Order ID"
// @Success      204
// @Failure      404  {object}  map[string]interface{}
// @Failure      409  {object}  map[string]interface{}
// @Router       /api/v1/orders/{id} [delete]
func (c *OrderController) CancelOrder(ctx *fiber.Ctx) error {
	if err := c.orderService.CancelOrder(ctx.UserContext(), ctx.Params("id")); err != nil {
		return c.fail(ctx, err)
	}
	return ctx.SendStatus(fiber.StatusNoContent)
}

// OrderMetrics godoc
// @Summary      Order metrics snapshot
// @Description  Per-status order counts and the running total of revenue confirmed today
// @Tags         metrics
// @Produce      json
// @Success      200  {object}  models.OrderMetricsResponse
// @Router       /api/v1/metrics/orders [get]
func (c *OrderController) OrderMetrics(ctx *fiber.Ctx) error {
	return ctx.JSON(models.OrderMetricsResponse{
		StatusCounts: c.counters.Snapshot(),
		DailyRevenue: c.dailyRevenue.Snapshot(),
	})
}

// fail maps domain error kinds onto HTTP statuses.
func (c *OrderController) fail(ctx *fiber.Ctx, err error) error {
	var insufficientStock *domain.InsufficientStockError
	var invalidTransition *domain.InvalidTransitionError
	var unavailable *domain.ExternalServiceError

	code := fiber.StatusInternalServerError
	switch {
	case domain.IsNotFound(err):
		code = fiber.StatusNotFound
	case errors.As(err, &insufficientStock), errors.As(err, &invalidTransition):
		code = fiber.StatusConflict
	case errors.As(err, &unavailable):
		code = fiber.StatusServiceUnavailable
	case errors.Is(err, domain.ErrInvalidRequest):
		code = fiber.StatusBadRequest
	}
	return ctx.Status(code).JSON(fiber.Map{"error": err.Error()})
}
