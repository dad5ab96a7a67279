package repository

import (
	"fmt"
	"time"

	bookingserrors "hotelbook/internal/bookings/errors"
	"hotelbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type bookingDocument struct {
	ID                primitive.ObjectID `bson:"_id"`
	UserID            string             `bson:"user_id"`
	HotelID           string             `bson:"hotel_id"`
	RoomID            string             `bson:"room_id"`
	CheckIn           time.Time          `bson:"check_in"`
	CheckOut          time.Time          `bson:"check_out"`
	TotalPrice        float64            `bson:"total_price"`
	Status            string             `bson:"status"`
	PaymentStatus     string             `bson:"payment_status"`
	RazorpayOrderID   string             `bson:"razorpay_order_id,omitempty"`
	RazorpayPaymentID string             `bson:"razorpay_payment_id,omitempty"`
	RazorpaySignature string             `bson:"razorpay_signature,omitempty"`
	CreatedAt         time.Time          `bson:"created_at"`
	UpdatedAt         time.Time          `bson:"updated_at"`
}

func toDocument(b *model.Booking) (*bookingDocument, error) {
	oid, err := primitive.ObjectIDFromHex(b.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, b.ID)
	}
	return &bookingDocument{
		ID:                oid,
		UserID:            b.UserID,
		HotelID:           b.HotelID,
		RoomID:            b.RoomID,
		CheckIn:           b.CheckIn,
		CheckOut:          b.CheckOut,
		TotalPrice:        b.TotalPrice,
		Status:            b.Status,
		PaymentStatus:     b.PaymentStatus,
		RazorpayOrderID:   b.RazorpayOrderID,
		RazorpayPaymentID: b.RazorpayPaymentID,
		RazorpaySignature: b.RazorpaySignature,
		CreatedAt:         b.CreatedAt,
		UpdatedAt:         b.UpdatedAt,
	}, nil
}

func (d *bookingDocument) toModel() *model.Booking {
	return &model.Booking{
		ID:                d.ID.Hex(),
		UserID:            d.UserID,
		HotelID:           d.HotelID,
		RoomID:            d.RoomID,
		CheckIn:           d.CheckIn.UTC(),
		CheckOut:          d.CheckOut.UTC(),
		TotalPrice:        d.TotalPrice,
		Status:            d.Status,
		PaymentStatus:     d.PaymentStatus,
		RazorpayOrderID:   d.RazorpayOrderID,
		RazorpayPaymentID: d.RazorpayPaymentID,
		RazorpaySignature: d.RazorpaySignature,
		CreatedAt:         d.CreatedAt.UTC(),
		UpdatedAt:         d.UpdatedAt.UTC(),
	}
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %s", bookingserrors.ErrInvalidID, id)
	}
	return oid, nil
}

// classifyFinalize decides what a finalize that matched nothing means for the current record.
func classifyFinalize(current *model.Booking, orderID, paymentID string) (*model.Booking, bool, error) {
	switch {
	case current.PaymentStatus == model.PaymentPaid && current.RazorpayPaymentID == paymentID && current.RazorpayOrderID == orderID:
		return current, false, nil
	case current.PaymentStatus == model.PaymentPaid:
		return current, false, bookingserrors.ErrAlreadyPaid
	case current.Status == model.StatusCancelled:
		return current, false, bookingserrors.ErrBookingCancelled
	default:
		return current, false, bookingserrors.ErrOrderMismatch
	}
}
