package events

import (
	"context"
	"sync"
	"time"

	"hotelbook/pkg/kafka"
	"hotelbook/pkg/logger"
	"hotelbook/pkg/model"
)

const (
	BookingReserved      = "booking.reserved"
	BookingStatusChanged = "booking.status_changed"
	PaymentOrderCreated  = "payment.order_created"
	PaymentConfirmed     = "payment.confirmed"
	PaymentFailed        = "payment.failed"

	SchemaVersion = "1"
	Source        = "hotelbook"
)

type Event struct {
	Type           string    `json:"type"`
	BookingID      string    `json:"booking_id"`
	UserID         string    `json:"user_id"`
	RoomID         string    `json:"room_id"`
	Status         string    `json:"status"`
	PreviousStatus string    `json:"previous_status,omitempty"`
	PaymentStatus  string    `json:"payment_status"`
	OrderID        string    `json:"order_id,omitempty"`
	PaymentID      string    `json:"payment_id,omitempty"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// FromBooking snapshots b into an event of the given type.
func FromBooking(eventType string, b *model.Booking) Event {
	return Event{
		Type:          eventType,
		BookingID:     b.ID,
		UserID:        b.UserID,
		RoomID:        b.RoomID,
		Status:        b.Status,
		PaymentStatus: b.PaymentStatus,
		OrderID:       b.RazorpayOrderID,
		PaymentID:     b.RazorpayPaymentID,
		OccurredAt:    time.Now().UTC(),
	}
}

// Publisher delivers domain events. Delivery is best effort: callers log
// failures and never roll back the state change that produced the event.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

type noopPublisher struct{}

func NewNoopPublisher() Publisher { return noopPublisher{} }

func (noopPublisher) Publish(context.Context, Event) error { return nil }

type producer interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type kafkaPublisher struct {
	producer producer
}

func NewKafkaPublisher(p *kafka.Producer) Publisher {
	return &kafkaPublisher{producer: p}
}

func (p *kafkaPublisher) Publish(ctx context.Context, event Event) error {
	msg, err := kafka.NewMessage().
		WithKey(event.BookingID).
		WithValue(event).
		WithEventType(event.Type).
		WithCorrelationID(logger.RequestIDFromContext(ctx)).
		WithSchemaVersion(SchemaVersion).
		WithSource(Source).
		WithTimestamp(event.OccurredAt).
		Build()
	if err != nil {
		return err
	}
	return p.producer.Publish(ctx, msg)
}

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) Publish(_ context.Context, event Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Types lists the recorded event types in publish order.
func (r *Recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]string, 0, len(r.events))
	for _, e := range r.events {
		types = append(types, e.Type)
	}
	return types
}
