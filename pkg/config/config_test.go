package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		MongoURI:          DefaultMongoURI,
		MongoDatabaseName: DefaultMongoDatabaseName,
		MongoConnTimeout:  DefaultMongoConnTimeout,
		StorageBackend:    StorageMongo,
		Port:              DefaultPort,
		JWTSecret:         "secret",
		RazorpayKeyID:     "rzp_test_key",
		RazorpayKeySecret: "rzp_test_secret",
		PaymentCurrency:   DefaultPaymentCurrency,
		GatewayTimeout:    DefaultGatewayTimeout,
		PriceTolerance:    DefaultPriceTolerance,
		RateLimitRequests: DefaultRateLimitRequests,
		RateLimitWindow:   DefaultRateLimitWindow,
		RequestTimeout:    DefaultRequestTimeout,
		IdempotencyTTL:    DefaultIdempotencyTTL,
		MaxRequestSize:    DefaultMaxRequestSize,
		ReadTimeout:       DefaultReadTimeout,
		WriteTimeout:      DefaultWriteTimeout,
		IdleTimeout:       DefaultIdleTimeout,
		ShutdownTimeout:   DefaultShutdownTimeout,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr string
	}{
		{name: "valid config", mutate: func(cfg *Config) {}},
		{
			name:   "memory backend ignores mongo settings",
			mutate: func(cfg *Config) { cfg.StorageBackend = StorageMemory; cfg.MongoURI = "" },
		},
		{
			name:    "unknown backend",
			mutate:  func(cfg *Config) { cfg.StorageBackend = "postgres" },
			wantErr: "StorageBackend must be one of",
		},
		{
			name:    "bad mongo uri",
			mutate:  func(cfg *Config) { cfg.MongoURI = "http://localhost" },
			wantErr: "MongoURI must start with",
		},
		{
			name:    "missing jwt secret",
			mutate:  func(cfg *Config) { cfg.JWTSecret = "" },
			wantErr: "JWTSecret cannot be empty",
		},
		{
			name:    "missing gateway secret",
			mutate:  func(cfg *Config) { cfg.RazorpayKeySecret = "" },
			wantErr: "RazorpayKeySecret cannot be empty",
		},
		{
			name:    "lowercase currency",
			mutate:  func(cfg *Config) { cfg.PaymentCurrency = "inr" },
			wantErr: "PaymentCurrency must be a 3-letter ISO code",
		},
		{
			name:    "negative tolerance",
			mutate:  func(cfg *Config) { cfg.PriceTolerance = -1 },
			wantErr: "PriceTolerance cannot be negative",
		},
		{
			name:    "zero gateway timeout",
			mutate:  func(cfg *Config) { cfg.GatewayTimeout = 0 },
			wantErr: "GatewayTimeout must be positive",
		},
		{
			name:    "bad port",
			mutate:  func(cfg *Config) { cfg.Port = "99999" },
			wantErr: "Port must be between 1 and 65535",
		},
		{
			name:    "kafka without topic",
			mutate:  func(cfg *Config) { cfg.KafkaEnabled = true; cfg.BookingEventsTopic = "" },
			wantErr: "BookingEventsTopic cannot be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.JWTSecret = ""
	cfg.RequestTimeout = -time.Second

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "1. ") || !strings.Contains(err.Error(), "2. ") {
		t.Errorf("expected both problems to be listed, got %q", err.Error())
	}
}

func TestValidateStorage_IgnoresServiceSettings(t *testing.T) {
	cfg := &Config{
		MongoURI:          DefaultMongoURI,
		MongoDatabaseName: DefaultMongoDatabaseName,
		MongoConnTimeout:  DefaultMongoConnTimeout,
		StorageBackend:    StorageMongo,
	}
	if errs := cfg.validateStorage(); len(errs) != 0 {
		t.Fatalf("unexpected storage errors: %v", errs)
	}

	cfg.MongoURI = "postgres://db"
	if errs := cfg.validateStorage(); len(errs) != 1 {
		t.Fatalf("expected one storage error, got %v", errs)
	}
}

func TestRedactMongoURI(t *testing.T) {
	got := redactMongoURI("mongodb://admin:hunter2@db:27017")
	if strings.Contains(got, "hunter2") {
		t.Errorf("password leaked in %q", got)
	}
	if got != "mongodb://***:***@db:27017" {
		t.Errorf("unexpected redaction %q", got)
	}
}

func TestGetEnvList(t *testing.T) {
	t.Setenv(EnvCORSAllowedOrigins, " https://a.example , ,https://b.example")
	got := getEnvList(EnvCORSAllowedOrigins, DefaultCORSAllowedOrigins)
	if len(got) != 2 || got[0] != "https://a.example" || got[1] != "https://b.example" {
		t.Errorf("unexpected origins %v", got)
	}
}

func TestNormalizePaginationLimit(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, DefaultPaginationPageSize},
		{-5, DefaultPaginationPageSize},
		{25, 25},
		{5000, DefaultPaginationLimit},
	}
	for _, tt := range tests {
		if got := NormalizePaginationLimit(tt.in); got != tt.want {
			t.Errorf("NormalizePaginationLimit(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
