package flows

import (
	checkout "hotelbook/internal/checkout/core"
	apperrors "hotelbook/pkg/errors"
	"hotelbook/pkg/model"
)

func NewConfirmPaymentFlow(ledger Ledger, payments Payments, v StructValidator) checkout.Flow {
	return checkout.NewFlow(ConfirmPayment,
		ValidateStruct(v, func(fc *checkout.FlowContext) any {
			if fc.Confirmation == nil {
				return nil
			}
			fc.BookingID = fc.Confirmation.BookingID
			return fc.Confirmation
		}),
		LoadOwnedBooking(ledger),
		checkout.NewStep("guard-confirmation", func(fc *checkout.FlowContext) error {
			b := fc.Booking
			switch {
			case b.Stage() == model.StageCreated:
				return apperrors.Conflict("No payment order has been placed for this booking")
			case b.RazorpayOrderID != fc.Confirmation.OrderID:
				return apperrors.InvalidInput("Order does not belong to this booking")
			case b.Status == model.StatusCancelled:
				return apperrors.Conflict("Booking is cancelled")
			case b.Stage() == model.StagePaymentFailed:
				return apperrors.Conflict("Payment for this booking has failed")
			}
			return nil
		}),
		checkout.NewStep("verify-signature", func(fc *checkout.FlowContext) error {
			c := fc.Confirmation
			err := payments.VerifyConfirmation(fc.Context(), fc.Principal, fc.Booking, c.PaymentID, c.OrderID, c.Signature)
			if err == nil {
				return nil
			}
			if apperrors.HasCode(err, apperrors.CodeSignatureMismatch) {
				if _, markErr := ledger.MarkPaymentFailed(fc.Context(), fc.Booking.ID); markErr != nil {
					return markErr
				}
			}
			return err
		}),
		checkout.NewStep("finalize", func(fc *checkout.FlowContext) error {
			c := fc.Confirmation
			booking, err := ledger.FinalizeAsPaid(fc.Context(), fc.Booking.ID, c.OrderID, c.PaymentID, c.Signature)
			if err != nil {
				return err
			}
			fc.Booking = booking
			return nil
		}),
	)
}
