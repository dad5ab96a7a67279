//go:build integration

package common

import (
	"context"
	"os"
	"testing"
	"time"

	bookingrepository "hotelbook/internal/bookings/repository"
	roomsrepository "hotelbook/internal/rooms/repository"
	"hotelbook/pkg/client"
	"hotelbook/pkg/config"
	"hotelbook/pkg/middleware"
	"hotelbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	TestHotelID = "65f1a0c2b7e4d3a1f0c9e001"
	TestRoomID  = "65f1a0c2b7e4d3a1f0c9e101"
	TestRoomNo  = "IT-101"
	TestRate    = 2500.0

	tokenTTL = time.Hour
)

// IntegrationTestSuite drives a running bookings service backed by MongoDB.
type IntegrationTestSuite struct {
	Config    *config.Config
	ServerURL string
	Database  *mongo.Database
}

func NewIntegrationTestSuite(t *testing.T, serviceName string) *IntegrationTestSuite {
	t.Helper()

	cfg := config.LoadJob(serviceName)
	if cfg.JWTSecret == "" {
		t.Skip("JWT_SECRET is not set; skipping integration tests")
	}
	cfg.SetMongo()

	serverURL := os.Getenv("TEST_SERVER_URL")
	if serverURL == "" {
		serverURL = "http://localhost:8080"
	}

	s := &IntegrationTestSuite{
		Config:    cfg,
		ServerURL: serverURL,
		Database:  cfg.Client.Mongo.Database(cfg.MongoDatabaseName),
	}

	if err := client.NewHttpClient(serverURL).WaitForHealthy(30 * time.Second); err != nil {
		t.Fatalf("service not reachable: %v", err)
	}
	s.seedRoom(t)
	s.ClearBookings(t)
	return s
}

func (s *IntegrationTestSuite) seedRoom(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := roomsrepository.SeedMongoRooms(ctx, s.Database, []*model.Room{{
		ID:          TestRoomID,
		HotelID:     TestHotelID,
		RoomNumber:  TestRoomNo,
		Type:        "double",
		Price:       TestRate,
		Capacity:    2,
		IsAvailable: true,
	}})
	if err != nil {
		t.Fatalf("failed to seed room: %v", err)
	}
}

// ClearBookings drops every booking and night claim left by earlier runs.
func (s *IntegrationTestSuite) ClearBookings(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, name := range []string{bookingrepository.CollectionName, bookingrepository.RoomNightsCollectionName} {
		if _, err := s.Database.Collection(name).DeleteMany(ctx, bson.M{}); err != nil {
			t.Fatalf("failed to clear %s: %v", name, err)
		}
	}
}

// ClientFor returns a booking client authenticated as the given identity.
func (s *IntegrationTestSuite) ClientFor(t *testing.T, userID, role string) *client.BookingClient {
	t.Helper()
	token, err := middleware.IssueToken(s.Config.JWTSecret, userID, role, tokenTTL)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}
	return client.NewBookingClient(s.ServerURL, token)
}

func (s *IntegrationTestSuite) Teardown() {
	s.Config.GracefulShutdown()
}
