package model

import (
	"time"
)

const (
	StatusPending         = "pending"
	StatusAwaitingPayment = "awaiting_payment"
	StatusConfirmed       = "confirmed"
	StatusCancelled       = "cancelled"

	PaymentPending = "pending"
	PaymentPaid    = "paid"
	PaymentFailed  = "failed"
)

// CheckoutStage is the payment-side view of a booking, derived from its stored fields.
type CheckoutStage string

const (
	StageCreated         CheckoutStage = "created"
	StageOrderPlaced     CheckoutStage = "order_placed"
	StagePaymentVerified CheckoutStage = "payment_verified"
	StagePaymentFailed   CheckoutStage = "payment_failed"
)

type Booking struct {
	ID                string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	UserID            string    `json:"user_id" bson:"user_id" validate:"required,max=128"`
	HotelID           string    `json:"hotel_id" bson:"hotel_id" validate:"required,mongodb"`
	RoomID            string    `json:"room_id" bson:"room_id" validate:"required,mongodb"`
	CheckIn           time.Time `json:"check_in" bson:"check_in" validate:"required"`
	CheckOut          time.Time `json:"check_out" bson:"check_out" validate:"required,gtfield=CheckIn"`
	TotalPrice        float64   `json:"total_price" bson:"total_price" validate:"gt=0"`
	Status            string    `json:"status" bson:"status" validate:"required,oneof=pending awaiting_payment confirmed cancelled"`
	PaymentStatus     string    `json:"payment_status" bson:"payment_status" validate:"required,oneof=pending paid failed"`
	RazorpayOrderID   string    `json:"razorpay_order_id,omitempty" bson:"razorpay_order_id,omitempty"`
	RazorpayPaymentID string    `json:"razorpay_payment_id,omitempty" bson:"razorpay_payment_id,omitempty"`
	RazorpaySignature string    `json:"razorpay_signature,omitempty" bson:"razorpay_signature,omitempty"`
	CreatedAt         time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" bson:"updated_at"`
}

// HoldsRoom reports whether the booking still blocks its nights.
func (b *Booking) HoldsRoom() bool {
	return b.Status != StatusCancelled
}

func (b *Booking) IsOwnedBy(userID string) bool {
	return userID != "" && b.UserID == userID
}

func (b *Booking) Nights() int {
	return NightCount(b.CheckIn, b.CheckOut)
}

func (b *Booking) Stage() CheckoutStage {
	switch {
	case b.PaymentStatus == PaymentPaid:
		return StagePaymentVerified
	case b.PaymentStatus == PaymentFailed:
		return StagePaymentFailed
	case b.RazorpayOrderID != "":
		return StageOrderPlaced
	default:
		return StageCreated
	}
}

func IsValidStatus(status string) bool {
	switch status {
	case StatusPending, StatusAwaitingPayment, StatusConfirmed, StatusCancelled:
		return true
	}
	return false
}

type StatusUpdate struct {
	Status string `json:"status" validate:"required,oneof=pending awaiting_payment confirmed cancelled"`
}

// ReserveRequest is the client payload for a new reservation. Dates are calendar
// days (YYYY-MM-DD) or RFC3339 timestamps.
type ReserveRequest struct {
	HotelID    string  `json:"hotelId" validate:"required,mongodb"`
	RoomID     string  `json:"roomId" validate:"required,mongodb"`
	CheckIn    string  `json:"checkIn" validate:"required"`
	CheckOut   string  `json:"checkOut" validate:"required"`
	TotalPrice float64 `json:"totalPrice" validate:"gt=0"`
}

type CreateOrderRequest struct {
	BookingID string `json:"bookingId" validate:"required,mongodb"`
}
