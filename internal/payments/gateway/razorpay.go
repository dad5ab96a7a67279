package gateway

import (
	"context"
	"fmt"
	"math"
	"time"

	"hotelbook/pkg/logger"

	razorpay "github.com/razorpay/razorpay-go"
)

type orderCreator interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

type Razorpay struct {
	orders orderCreator
	log    *logger.Logger
}

// NewRazorpay caps the SDK's own HTTP timeout at timeout, so a call abandoned
// by CreateOrder does not outlive the gateway budget by more than a second.
func NewRazorpay(keyID, keySecret string, timeout time.Duration, log *logger.Logger) *Razorpay {
	client := razorpay.NewClient(keyID, keySecret)
	client.SetTimeout(sdkTimeoutSeconds(timeout))
	return &Razorpay{orders: client.Order, log: log}
}

// sdkTimeoutSeconds rounds up to whole seconds, the SDK's resolution.
func sdkTimeoutSeconds(timeout time.Duration) int16 {
	secs := math.Ceil(timeout.Seconds())
	switch {
	case secs < 1:
		return 1
	case secs > math.MaxInt16:
		return math.MaxInt16
	}
	return int16(secs)
}

// CreateOrder returns as soon as ctx is done. The SDK call has no context; its
// goroutine lives until the SDK timeout fires and the late reply is dropped.
func (g *Razorpay) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	data := map[string]interface{}{
		"amount":   req.Amount,
		"currency": req.Currency,
		"receipt":  req.Receipt,
		"notes": map[string]interface{}{
			"booking_id": req.BookingID,
		},
	}

	type result struct {
		body map[string]interface{}
		err  error
	}
	done := make(chan result, 1)
	go func() {
		body, err := g.orders.Create(data, nil)
		done <- result{body: body, err: err}
	}()

	select {
	case <-ctx.Done():
		g.log.WithContext(ctx).Warn("Gateway order call abandoned", "booking_id", req.BookingID, "error", ctx.Err())
		return nil, ctx.Err()
	case res := <-done:
		if res.err != nil {
			return nil, fmt.Errorf("razorpay order create: %w", res.err)
		}
		return parseOrder(res.body, req)
	}
}

func parseOrder(body map[string]interface{}, req OrderRequest) (*Order, error) {
	id, _ := body["id"].(string)
	if id == "" {
		return nil, ErrMalformedResponse
	}

	order := &Order{ID: id, Amount: req.Amount, Currency: req.Currency}
	// JSON numbers decode as float64.
	if amount, ok := body["amount"].(float64); ok {
		order.Amount = int64(amount)
	}
	if currency, ok := body["currency"].(string); ok && currency != "" {
		order.Currency = currency
	}
	order.Status, _ = body["status"].(string)
	return order, nil
}
