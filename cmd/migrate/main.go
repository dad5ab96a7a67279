package main

import (
	"context"
	"flag"
	"time"

	mongoMigration "hotelbook/internal/migrations/mongo"
	roomsrepository "hotelbook/internal/rooms/repository"
	"hotelbook/pkg/config"
)

const JobName = "mongo-migration"

func main() {
	seedFile := flag.String("seed-rooms", "", "JSON file of rooms to upsert after migrating")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	cfg := config.LoadJob(JobName)
	if !cfg.UsesMongo() {
		cfg.Log.Fatal("Migration requires the mongo storage backend", "storage_backend", cfg.StorageBackend)
	}
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Mongo migration job", "database", cfg.MongoDatabaseName)
	if err := mongoMigration.RunMigration(ctx, cfg.Client.Mongo, cfg.MongoDatabaseName, cfg.Log); err != nil {
		cfg.Log.Fatal("Migration failed", "error", err)
	}

	path := *seedFile
	if path == "" {
		path = cfg.RoomsSeedFile
	}
	if path != "" {
		seedRooms(ctx, cfg, path)
	}

	cfg.Log.Info("Migration completed successfully")
}

func seedRooms(ctx context.Context, cfg *config.Config, path string) {
	rooms, err := roomsrepository.LoadRoomsFile(path)
	if err != nil {
		cfg.Log.Fatal("Failed to read rooms file", "file", path, "error", err)
	}

	upserted, err := roomsrepository.SeedMongoRooms(ctx, cfg.Client.Mongo.Database(cfg.MongoDatabaseName), rooms)
	if err != nil {
		cfg.Log.Fatal("Failed to seed rooms", "file", path, "error", err)
	}
	cfg.Log.Info("Rooms seeded", "file", path, "rooms", len(rooms), "upserted", upserted)
}
