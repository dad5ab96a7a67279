package main

import (
	bookinghandler "hotelbook/internal/bookings/handler"
	bookingrepository "hotelbook/internal/bookings/repository"
	bookingservice "hotelbook/internal/bookings/service"
	"hotelbook/internal/bookings/validator"
	checkouthandler "hotelbook/internal/checkout/handler"
	checkoutservice "hotelbook/internal/checkout/service"
	"hotelbook/internal/events"
	"hotelbook/internal/health"
	"hotelbook/internal/payments"
	"hotelbook/internal/payments/gateway"
	roomsrepository "hotelbook/internal/rooms/repository"
	"hotelbook/pkg/app"
	"hotelbook/pkg/config"
	"hotelbook/pkg/kafka"
	kafka_config "hotelbook/pkg/kafka/config"
	kafkamw "hotelbook/pkg/kafka/middleware"
	"hotelbook/pkg/middleware"
)

const ServiceName = "bookings"

func main() {
	cfg := config.Load(ServiceName)
	cfg.Log.Info("Starting Bookings service")

	serverApp := app.NewApplication(cfg)

	bookingRepo, roomRepo := initStorage(cfg)
	publisher := initPublisher(cfg, serverApp)
	healthHandler := initHealth(cfg)

	bookingValidator := validator.NewBookingValidator(cfg.Log)
	bookingService := bookingservice.NewBookingService(bookingRepo, roomRepo, bookingValidator, publisher, cfg.Log)

	bridge := payments.NewBridge(payments.Config{
		KeyID:             cfg.RazorpayKeyID,
		KeySecret:         cfg.RazorpayKeySecret,
		Currency:          cfg.PaymentCurrency,
		GatewayTimeout:    cfg.GatewayTimeout,
		PriceCheckEnabled: cfg.PriceCheckEnabled,
		PriceTolerance:    cfg.PriceTolerance,
	}, gateway.NewRazorpay(cfg.RazorpayKeyID, cfg.RazorpayKeySecret, cfg.GatewayTimeout, cfg.Log), roomRepo, bookingService, cfg.Log)

	checkoutService := checkoutservice.NewCheckoutService(bookingService, bridge, bookingValidator, cfg.Log)

	auth := middleware.NewAuthenticator(cfg.JWTSecret, cfg.Log)
	serverApp.SetApp(
		healthHandler,
		bookinghandler.NewBookingHandler(bookingService, auth, cfg.Log),
		checkouthandler.NewCheckoutHandler(checkoutService, auth, cfg.RazorpayWebhookSecret, cfg.Log),
	)
	serverApp.Run()
}

func initStorage(cfg *config.Config) (bookingrepository.BookingRepository, roomsrepository.RoomRepository) {
	if cfg.UsesRedis() {
		cfg.SetRedis()
	}

	if cfg.UsesMongo() {
		cfg.SetMongo()
		cfg.Log.Info("Using MongoDB storage", "database", cfg.MongoDatabaseName)
		return bookingrepository.NewMongoBookingRepository(cfg), roomsrepository.NewMongoRoomRepository(cfg)
	}

	rooms := roomsrepository.NewMemoryRoomRepository()
	if cfg.RoomsSeedFile != "" {
		loaded, err := roomsrepository.LoadMemoryRoomRepository(cfg.RoomsSeedFile)
		if err != nil {
			cfg.Log.Fatal("Failed to load rooms", "file", cfg.RoomsSeedFile, "error", err)
		}
		rooms = loaded
	}
	cfg.Log.Warn("Using in-memory storage; bookings are lost on restart")
	return bookingrepository.NewMemoryBookingRepository(), rooms
}

func initPublisher(cfg *config.Config, serverApp *app.Application) events.Publisher {
	if !cfg.KafkaEnabled {
		return events.NewNoopPublisher()
	}

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.BookingEventsTopic, cfg.BookingEventsDLQTopic, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	producer.Use(kafkamw.LoggingProducerMiddleware(cfg.Log))

	serverApp.OnShutdown(func() {
		if err := producer.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka producer", "error", err)
		}
	})
	return events.NewKafkaPublisher(producer)
}

func initHealth(cfg *config.Config) *health.Handler {
	h := health.NewHandler(cfg.Log)
	if cfg.Client.Mongo != nil {
		h.AddCheck("mongo", health.MongoCheck(cfg.Client.Mongo))
	}
	if cfg.Client.Redis != nil {
		h.AddCheck("redis", health.RedisCheck(cfg.Client.Redis))
	}
	return h
}
