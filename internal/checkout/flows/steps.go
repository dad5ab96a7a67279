package flows

import (
	"errors"

	"hotelbook/internal/bookings/validator"
	checkout "hotelbook/internal/checkout/core"
	apperrors "hotelbook/pkg/errors"
	"hotelbook/pkg/model"
)

// LoadOwnedBooking loads fc.BookingID and rejects callers who do not own it.
func LoadOwnedBooking(ledger Ledger) *checkout.Step {
	return checkout.NewStep("load-booking", func(fc *checkout.FlowContext) error {
		if checkout.IsMissing(fc.BookingID) {
			return checkout.MissingParamErr("bookingId")
		}

		booking, err := ledger.GetByID(fc.Context(), fc.BookingID)
		if err != nil {
			return err
		}
		if !booking.IsOwnedBy(fc.Principal.ID) {
			return apperrors.Forbidden("You do not have access to this booking")
		}
		fc.Booking = booking
		return nil
	})
}

func ValidateStruct(v StructValidator, pick func(fc *checkout.FlowContext) any) *checkout.Step {
	return checkout.NewStep("validate-input", func(fc *checkout.FlowContext) error {
		input := pick(fc)
		if input == nil {
			return apperrors.InvalidInput("Request body is required")
		}
		if err := v.Struct(input); err != nil {
			var verrs validator.ValidationErrors
			if errors.As(err, &verrs) {
				return apperrors.Validation("Request validation failed", verrs.Details())
			}
			return apperrors.Validation("Request validation failed", map[string]any{"error": err.Error()})
		}
		return nil
	})
}

func requireStage(b *model.Booking, allowed ...model.CheckoutStage) bool {
	stage := b.Stage()
	for _, s := range allowed {
		if stage == s {
			return true
		}
	}
	return false
}
