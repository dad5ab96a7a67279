package model

import "time"

// Room is read-only inventory from the booking core's point of view.
// IsAvailable is informational and is not consulted when reserving.
type Room struct {
	ID          string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	HotelID     string    `json:"hotel_id" bson:"hotel_id" validate:"required,mongodb"`
	RoomNumber  string    `json:"room_number" bson:"room_number" validate:"required,max=20"`
	Type        string    `json:"type" bson:"type" validate:"required,oneof=single double suite deluxe"`
	Price       float64   `json:"price" bson:"price" validate:"gt=0"`
	Capacity    int       `json:"capacity" bson:"capacity" validate:"gt=0"`
	IsAvailable bool      `json:"is_available" bson:"is_available"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}
