package gateway

import (
	"context"
	"errors"
	"testing"
	"time"

	"hotelbook/pkg/logger"
)

type fakeOrders struct {
	body  map[string]interface{}
	err   error
	delay time.Duration
	got   map[string]interface{}
}

func (f *fakeOrders) Create(data map[string]interface{}, _ map[string]string) (map[string]interface{}, error) {
	f.got = data
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.body, f.err
}

func TestRazorpay_CreateOrder(t *testing.T) {
	orders := &fakeOrders{body: map[string]interface{}{
		"id":       "order_abc",
		"amount":   float64(63334),
		"currency": "INR",
		"status":   "created",
	}}
	g := &Razorpay{orders: orders, log: logger.Discard()}

	order, err := g.CreateOrder(context.Background(), OrderRequest{
		Amount:    63334,
		Currency:  "INR",
		Receipt:   Receipt("b1"),
		BookingID: "b1",
	})
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if order.ID != "order_abc" || order.Amount != 63334 || order.Status != "created" {
		t.Errorf("unexpected order %+v", order)
	}

	if orders.got["receipt"] != "booking_b1" {
		t.Errorf("receipt = %v", orders.got["receipt"])
	}
	notes, _ := orders.got["notes"].(map[string]interface{})
	if notes["booking_id"] != "b1" {
		t.Errorf("notes = %v", orders.got["notes"])
	}
}

func TestRazorpay_CreateOrderFailures(t *testing.T) {
	tests := []struct {
		name   string
		orders *fakeOrders
		check  func(error) bool
	}{
		{
			name:   "provider error",
			orders: &fakeOrders{err: errors.New("BAD_REQUEST_ERROR")},
			check:  func(err error) bool { return err != nil },
		},
		{
			name:   "missing id",
			orders: &fakeOrders{body: map[string]interface{}{"status": "created"}},
			check:  func(err error) bool { return errors.Is(err, ErrMalformedResponse) },
		},
		{
			name:   "slow provider",
			orders: &fakeOrders{body: map[string]interface{}{"id": "late"}, delay: 200 * time.Millisecond},
			check:  func(err error) bool { return errors.Is(err, context.DeadlineExceeded) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := &Razorpay{orders: tt.orders, log: logger.Discard()}
			ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
			defer cancel()

			_, err := g.CreateOrder(ctx, OrderRequest{Amount: 100, Currency: "INR", BookingID: "b1"})
			if !tt.check(err) {
				t.Errorf("unexpected error %v", err)
			}
		})
	}
}

func TestSdkTimeoutSeconds(t *testing.T) {
	tests := []struct {
		name    string
		timeout time.Duration
		want    int16
	}{
		{"whole seconds", 10 * time.Second, 10},
		{"rounds up", 1500 * time.Millisecond, 2},
		{"sub second floors to one", 200 * time.Millisecond, 1},
		{"zero floors to one", 0, 1},
		{"clamped to int16", 100 * time.Hour, 32767},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sdkTimeoutSeconds(tt.timeout); got != tt.want {
				t.Errorf("sdkTimeoutSeconds(%v) = %d, want %d", tt.timeout, got, tt.want)
			}
		})
	}
}

func TestNewRazorpay_SetsSDKTimeout(t *testing.T) {
	g := NewRazorpay("rzp_test_key", "secret", 3*time.Second, logger.Discard())
	if g.orders == nil {
		t.Fatal("expected the SDK order resource to be wired")
	}
}
