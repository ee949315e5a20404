package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-order-ms/src/config"
	"go-order-ms/src/controllers"
	"go-order-ms/src/infrastructure/clients"
	"go-order-ms/src/infrastructure/log"
	"go-order-ms/src/infrastructure/mongo"
	"go-order-ms/src/infrastructure/rabbitmq"
	"go-order-ms/src/services/events"
	"go-order-ms/src/services/metrics"
	"go-order-ms/src/services/order/domain"
	"go-order-ms/src/services/order/domain/persistence"
	"go-order-ms/src/services/revenue"

	_ "go-order-ms/docs"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	fiberSwagger "github.com/swaggo/fiber-swagger"
)

// @title        Order Service API
// @version      1.0
// @description  Order workflow service: order creation against the user and product services, status lifecycle, daily revenue metrics.
// @BasePath     /
func main() {
	// Create context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := log.NewLogger()

	configs, err := config.LoadConfig()
	if err != nil {
		logger.Fatal(ctx, "Failed to load configuration", err)
	}
	logger.Info(ctx, "Configuration loaded successfully")

	// Initialize MongoDB connection with health check
	client, err := mongo.GetMongoClient(configs)
	if err != nil {
		logger.Fatal(ctx, "Failed to connect to MongoDB", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		logger.Fatal(ctx, "MongoDB ping failed", err)
	}
	logger.Info(ctx, "MongoDB connection successful")

	orderRepository := persistence.NewOrderRepository(configs, client)

	// Collaborator clients (user and product services)
	userClient := clients.NewUserServiceClient(configs.UserServiceBaseURL, configs.CollaboratorTimeout)
	productClient := clients.NewProductServiceClient(configs.ProductServiceBaseURL, configs.CollaboratorTimeout)

	// RabbitMQ publisher for order lifecycle events
	rabbitmqService, err := rabbitmq.NewRabbitMQService(configs.RabbitMQHostName, configs.RabbitMQExchange, events.Topics())
	if err != nil {
		logger.Fatal(ctx, "Failed to create RabbitMQ service", err)
	}
	defer rabbitmqService.Close()

	if !rabbitmqService.IsHealthy() {
		logger.Fatal(ctx, "RabbitMQ connection is not healthy", nil)
	}
	logger.Info(ctx, "RabbitMQ connection successful")

	// Startup reconciliation: rebuild the status counters and today's
	// revenue from persisted orders. Both passes are read-only.
	statusCounters := metrics.NewStatusCounters()
	persistedCounts, err := orderRepository.CountByStatus(ctx)
	if err != nil {
		logger.Fatal(ctx, "Failed to load persisted status counts", err)
	}
	seed := make(map[string]int64, len(domain.AllStatuses()))
	for _, status := range domain.AllStatuses() {
		seed[string(status)] = persistedCounts[status]
	}
	statusCounters.Seed(seed)

	dailyRevenue := revenue.NewDailyTotal()
	if err := dailyRevenue.Rebuild(ctx, orderRepository); err != nil {
		logger.Fatal(ctx, "Failed to rebuild daily revenue total", err)
	}
	logger.InfoWithExtra(ctx, "Startup reconciliation complete", map[string]any{
		"StatusCounts": statusCounters.Snapshot(),
		"DailyRevenue": dailyRevenue.Snapshot(),
	})

	// Reset the daily total at every local midnight
	go dailyRevenue.RunMidnightReset(ctx, logger)

	orderService := domain.NewOrderService(
		logger,
		orderRepository,
		userClient,
		productClient,
		dailyRevenue,
		statusCounters,
		rabbitmqService,
	)
	orderController := controllers.NewOrderController(orderService, statusCounters, dailyRevenue)

	app := fiber.New(fiber.Config{
		ServerHeader: "Order-Service",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			logger.Exception(c.Context(), "HTTP request error", err)
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	app.Use(cors.New(cors.Config{
		AllowCredentials: true,
		AllowOriginsFunc: func(_ string) bool { return true },
	}))
	app.Use(recover.New())

	// Attach a correlation ID to every request's context
	app.Use(func(c *fiber.Ctx) error {
		c.SetUserContext(logger.WithCorrelationID(c.Context(), uuid.NewString()))
		return c.Next()
	})

	app.Get("/api/swagger/*", fiberSwagger.WrapHandler)
	app.Get("/api/healthCheck", func(c *fiber.Ctx) error {
		if err := client.Ping(c.Context(), nil); err != nil {
			logger.Exception(c.Context(), "Health check: MongoDB ping failed", err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "unhealthy",
				"error":  "database connection failed",
			})
		}

		if !rabbitmqService.IsHealthy() {
			logger.Warn(c.Context(), "Health check: RabbitMQ connection is unhealthy")
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status": "unhealthy",
				"error":  "message queue connection failed",
			})
		}

		return c.JSON(fiber.Map{
			"status":    "healthy",
			"timestamp": time.Now().UTC(),
		})
	})

	orderController.Route(app)

	// Set up graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	serverShutdown := make(chan error, 1)
	go func() {
		logger.Info(ctx, "Starting server on port "+configs.ServerPort)
		if err := app.Listen(":" + configs.ServerPort); err != nil {
			serverShutdown <- err
		}
	}()

	select {
	case <-quit:
		logger.Info(ctx, "Shutdown signal received, shutting down gracefully...")
	case err := <-serverShutdown:
		logger.Exception(ctx, "Server error occurred", err)
	}

	// Cancel context to stop background processes
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Exception(ctx, "Server shutdown error", err)
	}

	logger.Info(ctx, "Server shutdown complete")
}
