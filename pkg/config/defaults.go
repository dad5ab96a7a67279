package config

import "time"

const (
	StorageMongo  = "mongo"
	StorageMemory = "memory"
)

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "hotelbook"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultStorageBackend = StorageMongo

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultPaymentCurrency = "INR"
	DefaultGatewayTimeout  = 10 * time.Second

	DefaultPriceCheckEnabled = true
	DefaultPriceTolerance    = 0.01

	DefaultRateLimitRequests = 60
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultRedisDB          = 0
	DefaultRedisConnTimeout = 5 * time.Second

	DefaultCORSAllowedOrigins = "*"

	DefaultKafkaEnabled          = false
	DefaultBookingEventsTopic    = "booking-events"
	DefaultBookingEventsDLQTopic = "booking-events-dlq"

	DefaultPaginationLimit    = 100
	DefaultPaginationPageSize = 10
)
