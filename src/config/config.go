package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoDBConnectionString string
	MongoDBDatabaseName     string
	RabbitMQHostName        string
	RabbitMQExchange        string
	UserServiceBaseURL      string
	ProductServiceBaseURL   string
	CollaboratorTimeout     time.Duration
	ServerPort              string
}

func LoadConfig() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: .env file not found, using environment variables only")
	}

	config := &Config{
		MongoDBConnectionString: os.Getenv("MONGODB_CONNECTION_STRING"),
		MongoDBDatabaseName:     os.Getenv("MONGODB_DATABASE_NAME"),
		RabbitMQHostName:        os.Getenv("RABBITMQ_HOSTNAME"),
		RabbitMQExchange:        os.Getenv("RABBITMQ_EXCHANGE"),
		UserServiceBaseURL:      os.Getenv("USER_SERVICE_BASE_URL"),
		ProductServiceBaseURL:   os.Getenv("PRODUCT_SERVICE_BASE_URL"),
		CollaboratorTimeout:     5 * time.Second,
		ServerPort:              os.Getenv("SERVER_PORT"),
	}

	// Set default values if environment variables are not set
	if config.MongoDBDatabaseName == "" {
		config.MongoDBDatabaseName = "order-db"
	}
	if config.RabbitMQExchange == "" {
		config.RabbitMQExchange = "order_events"
	}
	if config.UserServiceBaseURL == "" {
		config.UserServiceBaseURL = "http://localhost:8081"
	}
	if config.ProductServiceBaseURL == "" {
		config.ProductServiceBaseURL = "http://localhost:8082"
	}
	if config.ServerPort == "" {
		config.ServerPort = "8080"
	}
	if raw := os.Getenv("COLLABORATOR_TIMEOUT_SECONDS"); raw != "" {
		if seconds, err := strconv.Atoi(raw); err == nil && seconds > 0 {
			config.CollaboratorTimeout = time.Duration(seconds) * time.Second
		}
	}

	return config, nil
}
