package flows

import (
	checkout "hotelbook/internal/checkout/core"
	apperrors "hotelbook/pkg/errors"
)

// NewReserveFlow creates a booking in the created stage. Field-level
// validation belongs to the ledger, which owns the date rules.
func NewReserveFlow(ledger Ledger) checkout.Flow {
	return checkout.NewFlow(Reserve,
		checkout.NewStep("require-input", func(fc *checkout.FlowContext) error {
			if fc.Reserve == nil {
				return apperrors.InvalidInput("Request body is required")
			}
			return nil
		}),
		checkout.NewStep("reserve", func(fc *checkout.FlowContext) error {
			booking, err := ledger.Reserve(fc.Context(), fc.Principal, fc.Reserve)
			if err != nil {
				return err
			}
			fc.Booking = booking
			fc.BookingID = booking.ID
			return nil
		}),
	)
}
