package flows

import (
	"context"

	"hotelbook/pkg/model"
)

const (
	Reserve        = "reserve"
	PlaceOrder     = "place-order"
	ConfirmPayment = "confirm-payment"
	Reconcile      = "reconcile-webhook"
)

// Ledger is the booking side of checkout.
type Ledger interface {
	Reserve(ctx context.Context, principal model.Principal, req *model.ReserveRequest) (*model.Booking, error)
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	FindByOrderID(ctx context.Context, orderID string) (*model.Booking, error)
	FinalizeAsPaid(ctx context.Context, id, orderID, paymentID, signature string) (*model.Booking, error)
	MarkPaymentFailed(ctx context.Context, id string) (*model.Booking, error)
}

// Payments is the gateway side of checkout.
type Payments interface {
	CreateOrder(ctx context.Context, principal model.Principal, booking *model.Booking) (*model.PaymentOrder, error)
	VerifyConfirmation(ctx context.Context, principal model.Principal, booking *model.Booking, paymentID, orderID, signature string) error
}

// StructValidator checks tagged request structs.
type StructValidator interface {
	Struct(s any) error
}
