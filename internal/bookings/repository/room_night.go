package repository

import (
	"context"
	"fmt"

	"hotelbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const RoomNightsCollectionName = "Room_nights"

// roomNightStore writes night claims. The collection's _id is the room/night key,
// so a second claim on a taken night fails with a duplicate key error.
type roomNightStore struct {
	collection *mongo.Collection
}

func newRoomNightStore(db *mongo.Database) *roomNightStore {
	return &roomNightStore{collection: db.Collection(RoomNightsCollectionName)}
}

func (s *roomNightStore) claim(ctx context.Context, claims []*model.RoomNight) error {
	if len(claims) == 0 {
		return nil
	}

	docs := make([]any, 0, len(claims))
	for _, c := range claims {
		docs = append(docs, c)
	}

	_, err := s.collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true))
	return err
}

func (s *roomNightStore) release(ctx context.Context, bookingID string) error {
	if _, err := s.collection.DeleteMany(ctx, bson.M{"booking_id": bookingID}); err != nil {
		return fmt.Errorf("failed to release room nights: %w", err)
	}
	return nil
}
