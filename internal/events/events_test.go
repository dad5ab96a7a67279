package events

import (
	"context"
	"encoding/json"
	"testing"

	"hotelbook/pkg/kafka"
	"hotelbook/pkg/logger"
	"hotelbook/pkg/model"
)

type mockProducer struct {
	publishFn func(ctx context.Context, msg kafka.Message) error
}

func (m *mockProducer) Publish(ctx context.Context, msg kafka.Message) error {
	return m.publishFn(ctx, msg)
}

func TestKafkaPublisher_Message(t *testing.T) {
	var got kafka.Message
	p := &kafkaPublisher{producer: &mockProducer{publishFn: func(_ context.Context, msg kafka.Message) error {
		got = msg
		return nil
	}}}

	b := &model.Booking{ID: "b1", UserID: "u1", RoomID: "r1", Status: model.StatusConfirmed, PaymentStatus: model.PaymentPaid, RazorpayOrderID: "order_1"}
	ctx := logger.ContextWithRequestID(context.Background(), "req-9")
	if err := p.Publish(ctx, FromBooking(PaymentConfirmed, b)); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	if got.Key != "b1" {
		t.Errorf("key = %s", got.Key)
	}
	if got.GetEventType() != PaymentConfirmed || got.GetCorrelationID() != "req-9" {
		t.Errorf("headers = %v", got.Headers)
	}

	var decoded Event
	if err := json.Unmarshal(got.Value, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.OrderID != "order_1" || decoded.Status != model.StatusConfirmed {
		t.Errorf("payload = %+v", decoded)
	}
}

func TestRecorder(t *testing.T) {
	r := NewRecorder()
	_ = r.Publish(context.Background(), Event{Type: BookingReserved})
	_ = r.Publish(context.Background(), Event{Type: PaymentFailed})

	types := r.Types()
	if len(types) != 2 || types[0] != BookingReserved || types[1] != PaymentFailed {
		t.Errorf("types = %v", types)
	}
}
