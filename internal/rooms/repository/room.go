package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	roomserrors "hotelbook/internal/rooms/errors"
	"hotelbook/pkg/config"
	"hotelbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const CollectionName = "Rooms"

// RoomRepository is a read-only view of room inventory.
type RoomRepository interface {
	FindByID(ctx context.Context, id string) (*model.Room, error)
}

// roomDocument mirrors model.Room with an ObjectID key so lookups hit the _id index.
type roomDocument struct {
	ID          primitive.ObjectID `bson:"_id"`
	HotelID     primitive.ObjectID `bson:"hotel_id"`
	RoomNumber  string             `bson:"room_number"`
	Type        string             `bson:"type"`
	Price       float64            `bson:"price"`
	Capacity    int                `bson:"capacity"`
	IsAvailable bool               `bson:"is_available"`
	CreatedAt   time.Time          `bson:"created_at"`
}

func (d *roomDocument) toModel() *model.Room {
	return &model.Room{
		ID:          d.ID.Hex(),
		HotelID:     d.HotelID.Hex(),
		RoomNumber:  d.RoomNumber,
		Type:        d.Type,
		Price:       d.Price,
		Capacity:    d.Capacity,
		IsAvailable: d.IsAvailable,
		CreatedAt:   d.CreatedAt,
	}
}

type mongoRoomRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoRoomRepository(cfg *config.Config) RoomRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoRoomRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoRoomRepository) FindByID(ctx context.Context, id string) (*model.Room, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", roomserrors.ErrInvalidID, id)
	}

	var doc roomDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, roomserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find room: %w", err)
	}

	return doc.toModel(), nil
}

// SeedMongoRooms upserts rooms keyed by room number and returns how many were inserted.
func SeedMongoRooms(ctx context.Context, db *mongo.Database, rooms []*model.Room) (int64, error) {
	collection := db.Collection(CollectionName)
	var inserted int64

	for _, room := range rooms {
		hotelID, err := primitive.ObjectIDFromHex(room.HotelID)
		if err != nil {
			return inserted, fmt.Errorf("room %s: invalid hotel_id %q", room.RoomNumber, room.HotelID)
		}
		roomID := primitive.NewObjectID()
		if room.ID != "" {
			if roomID, err = primitive.ObjectIDFromHex(room.ID); err != nil {
				return inserted, fmt.Errorf("%w: %s", roomserrors.ErrInvalidID, room.ID)
			}
		}
		createdAt := room.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}

		filter := bson.M{"room_number": room.RoomNumber}
		update := bson.M{
			"$set": bson.M{
				"hotel_id":     hotelID,
				"type":         room.Type,
				"price":        room.Price,
				"capacity":     room.Capacity,
				"is_available": room.IsAvailable,
			},
			"$setOnInsert": bson.M{
				"_id":        roomID,
				"created_at": createdAt,
			},
		}
		res, err := collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
		if err != nil {
			return inserted, fmt.Errorf("failed to seed room %s: %w", room.RoomNumber, err)
		}
		inserted += res.UpsertedCount
	}
	return inserted, nil
}
