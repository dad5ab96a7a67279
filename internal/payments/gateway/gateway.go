package gateway

import (
	"context"
	"errors"
)

var ErrMalformedResponse = errors.New("gateway returned a malformed order")

type OrderRequest struct {
	Amount    int64
	Currency  string
	Receipt   string
	BookingID string
}

type Order struct {
	ID       string
	Amount   int64
	Currency string
	Status   string
}

// Gateway mints payment orders with the external provider.
type Gateway interface {
	CreateOrder(ctx context.Context, req OrderRequest) (*Order, error)
}

// Func adapts a function to Gateway.
type Func func(ctx context.Context, req OrderRequest) (*Order, error)

func (f Func) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	return f(ctx, req)
}

func Receipt(bookingID string) string {
	return "booking_" + bookingID
}
