package flows

import (
	checkout "hotelbook/internal/checkout/core"
	apperrors "hotelbook/pkg/errors"
	"hotelbook/pkg/model"
)

// NewPlaceOrderFlow mints or reuses the gateway order for a booking. The
// limiter bounds concurrent gateway calls; nil means unbounded.
func NewPlaceOrderFlow(ledger Ledger, payments Payments, limiter *checkout.Limiter) checkout.Flow {
	return checkout.NewFlow(PlaceOrder,
		LoadOwnedBooking(ledger),
		checkout.NewStep("guard-stage", func(fc *checkout.FlowContext) error {
			if fc.Booking.Status == model.StatusCancelled {
				return apperrors.Conflict("Booking is cancelled")
			}
			if !requireStage(fc.Booking, model.StageCreated, model.StageOrderPlaced) {
				return apperrors.Conflict("Booking is not awaiting payment")
			}
			return nil
		}),
		checkout.NewStep("create-order", func(fc *checkout.FlowContext) error {
			create := func() error {
				order, err := payments.CreateOrder(fc.Context(), fc.Principal, fc.Booking)
				if err != nil {
					return err
				}
				fc.Order = order
				return nil
			}
			if limiter == nil || fc.Booking.RazorpayOrderID != "" {
				return create()
			}
			return limiter.Run(fc.Context(), create)
		}),
	)
}
