package flows

import (
	checkout "hotelbook/internal/checkout/core"
	apperrors "hotelbook/pkg/errors"
	"hotelbook/pkg/model"
)

// NewReconcileFlow applies an authenticated gateway webhook through the same
// ledger transitions the client confirmation uses. The body signature is
// checked by the transport before the flow runs.
func NewReconcileFlow(ledger Ledger) checkout.Flow {
	return checkout.NewFlow(Reconcile,
		checkout.NewStep("load-by-order", func(fc *checkout.FlowContext) error {
			if fc.Webhook == nil {
				return apperrors.InvalidInput("Request body is required")
			}
			payment := fc.Webhook.Payment()
			if checkout.IsMissing(payment.OrderID) {
				return checkout.MissingParamErr("order_id")
			}

			booking, err := ledger.FindByOrderID(fc.Context(), payment.OrderID)
			if err != nil {
				return err
			}
			fc.Booking = booking
			fc.BookingID = booking.ID
			return nil
		}),
		checkout.NewStep("apply-event", func(fc *checkout.FlowContext) error {
			payment := fc.Webhook.Payment()

			var booking *model.Booking
			var err error
			switch fc.Webhook.Event {
			case model.WebhookPaymentCaptured:
				if checkout.IsMissing(payment.ID) {
					return checkout.MissingParamErr("payment_id")
				}
				booking, err = ledger.FinalizeAsPaid(fc.Context(), fc.Booking.ID, payment.OrderID, payment.ID, "")
			case model.WebhookPaymentFailed:
				booking, err = ledger.MarkPaymentFailed(fc.Context(), fc.Booking.ID)
			default:
				return nil
			}
			if err != nil {
				return err
			}
			fc.Booking = booking
			return nil
		}),
	)
}
