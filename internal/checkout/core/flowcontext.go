package core

import (
	"context"

	"hotelbook/pkg/model"
)

// FlowContext carries the input and intermediate state of one flow run.
type FlowContext struct {
	ctx       context.Context
	Principal model.Principal

	BookingID    string
	Reserve      *model.ReserveRequest
	Confirmation *model.PaymentConfirmation
	Webhook      *model.WebhookEvent

	Booking *model.Booking
	Order   *model.PaymentOrder
}

func NewFlowContext(ctx context.Context, principal model.Principal) *FlowContext {
	return &FlowContext{ctx: ctx, Principal: principal}
}

// Context is the current span's context; steps pass it to blocking calls.
func (fc *FlowContext) Context() context.Context {
	if fc.ctx == nil {
		return context.Background()
	}
	return fc.ctx
}
