package model

// PaymentOrder is what a client needs to open the gateway checkout for a booking.
type PaymentOrder struct {
	OrderID   string `json:"orderId"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Key       string `json:"key"`
	BookingID string `json:"bookingId"`
}

// PaymentConfirmation is the signed tuple the gateway hands back to the client.
type PaymentConfirmation struct {
	BookingID string `json:"bookingId" validate:"required,mongodb"`
	OrderID   string `json:"razorpay_order_id" validate:"required"`
	PaymentID string `json:"razorpay_payment_id" validate:"required"`
	Signature string `json:"razorpay_signature" validate:"required"`
}

const (
	WebhookPaymentCaptured = "payment.captured"
	WebhookPaymentFailed   = "payment.failed"
)

// WebhookEvent is the subset of a gateway webhook body the service reconciles.
type WebhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity WebhookPayment `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

type WebhookPayment struct {
	ID      string            `json:"id"`
	OrderID string            `json:"order_id"`
	Status  string            `json:"status"`
	Notes   map[string]string `json:"notes,omitempty"`
}

func (e *WebhookEvent) Payment() WebhookPayment {
	return e.Payload.Payment.Entity
}
