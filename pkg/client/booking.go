package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"hotelbook/pkg/model"
)

// BookingClient talks to the booking API as one caller.
type BookingClient struct {
	httpClient *HttpClient
}

func NewBookingClient(baseUrl, token string) *BookingClient {
	return &BookingClient{
		httpClient: NewHttpClient(baseUrl).WithToken(token),
	}
}

func (c *BookingClient) Reserve(ctx context.Context, req *model.ReserveRequest) (*Response, error) {
	return c.httpClient.POST(ctx, "/api/v1/bookings", req)
}

// ReserveIdempotent sends an Idempotency-Key so a retried request replays the first response.
func (c *BookingClient) ReserveIdempotent(ctx context.Context, req *model.ReserveRequest, key string) (*Response, error) {
	return c.httpClient.POSTWithHeaders(ctx, "/api/v1/bookings", req, map[string]string{"Idempotency-Key": key})
}

func (c *BookingClient) ListMine(ctx context.Context, limit int, offset int64) (*Response, error) {
	path := fmt.Sprintf("/api/v1/bookings/me?limit=%d&offset=%d", limit, offset)
	return c.httpClient.GET(ctx, path)
}

func (c *BookingClient) ListAll(ctx context.Context, limit int, offset int64) (*Response, error) {
	path := fmt.Sprintf("/api/v1/bookings?limit=%d&offset=%d", limit, offset)
	return c.httpClient.GET(ctx, path)
}

func (c *BookingClient) GetByID(ctx context.Context, id string) (*Response, error) {
	return c.httpClient.GET(ctx, "/api/v1/bookings/id/"+url.PathEscape(id))
}

func (c *BookingClient) UpdateStatus(ctx context.Context, id, status string) (*Response, error) {
	path := "/api/v1/bookings/" + url.PathEscape(id) + "/status"
	return c.httpClient.PUT(ctx, path, model.StatusUpdate{Status: status})
}

func (c *BookingClient) CreateOrder(ctx context.Context, bookingID string) (*Response, error) {
	return c.httpClient.POST(ctx, "/api/v1/payments/create-order", model.CreateOrderRequest{BookingID: bookingID})
}

func (c *BookingClient) Verify(ctx context.Context, confirmation *model.PaymentConfirmation) (*Response, error) {
	return c.httpClient.POST(ctx, "/api/v1/payments/verify", confirmation)
}

func (c *BookingClient) Webhook(ctx context.Context, rawBody []byte, signature string) (*Response, error) {
	return c.httpClient.POSTRaw(ctx, "/api/v1/payments/webhook", rawBody, map[string]string{
		"X-Razorpay-Signature": signature,
	})
}

func (c *BookingClient) DecodeBooking(resp *Response) (*model.Booking, error) {
	var booking model.Booking
	if err := decodeData(resp, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

func (c *BookingClient) DecodePaymentOrder(resp *Response) (*model.PaymentOrder, error) {
	var order model.PaymentOrder
	if err := decodeData(resp, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (c *BookingClient) DecodeBookings(resp *Response) ([]*model.Booking, *Metadata, error) {
	var wrapper struct {
		Data       json.RawMessage `json:"data"`
		TotalCount int64           `json:"total_count"`
		Limit      int             `json:"limit"`
		Offset     int64           `json:"offset"`
	}

	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return nil, nil, fmt.Errorf("could not decode paginated resp:\n%+v\n%s", resp.ToString(), err)
	}

	var bookings []*model.Booking
	if err := json.Unmarshal(wrapper.Data, &bookings); err != nil {
		return nil, nil, fmt.Errorf("could not decode booking list:\n%+v\n%s", resp.ToString(), err)
	}

	metadata := &Metadata{
		TotalCount: wrapper.TotalCount,
		Limit:      wrapper.Limit,
		Offset:     wrapper.Offset,
	}

	return bookings, metadata, nil
}

func decodeData(resp *Response, target any) error {
	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return fmt.Errorf("could not decode response wrapper:\n%+v\n%s", resp.ToString(), err)
	}
	if err := json.Unmarshal(wrapper.Data, target); err != nil {
		return fmt.Errorf("could not decode response data:\n%+v\n%s", resp.ToString(), err)
	}
	return nil
}
