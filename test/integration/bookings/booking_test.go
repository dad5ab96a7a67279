//go:build integration

package integrationtests

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"hotelbook/pkg/client"
	"hotelbook/pkg/model"
	"hotelbook/pkg/sealer"
	"hotelbook/test/common"

	"github.com/google/uuid"
)

const ServiceName = "bookings-integration-tests"

var suite *common.IntegrationTestSuite

func TestBookings(t *testing.T) {
	suite = common.NewIntegrationTestSuite(t, ServiceName)
	defer suite.Teardown()

	t.Run("reserve and read back", testReserveAndRead)
	t.Run("overlap is rejected", testOverlapRejected)
	t.Run("ownership is enforced", testOwnership)
	t.Run("admin listing and status", testAdminListingAndStatus)
	t.Run("concurrent reservations", testConcurrentReservations)
	t.Run("idempotent reserve", testIdempotentReserve)
	t.Run("verify before order", testVerifyBeforeOrder)
	t.Run("webhook for unknown order", testWebhookUnknownOrder)
}

func stay(offsetDays, nights int) (string, string) {
	base := time.Now().UTC().AddDate(0, 0, 30+offsetDays)
	return base.Format(time.DateOnly), base.AddDate(0, 0, nights).Format(time.DateOnly)
}

func reserveRequest(offsetDays, nights int) *model.ReserveRequest {
	checkIn, checkOut := stay(offsetDays, nights)
	return &model.ReserveRequest{
		HotelID:    common.TestHotelID,
		RoomID:     common.TestRoomID,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		TotalPrice: common.TestRate * float64(nights),
	}
}

func mustReserve(t *testing.T, c *client.BookingClient, req *model.ReserveRequest) *model.Booking {
	t.Helper()
	resp, err := c.Reserve(context.Background(), req)
	if err != nil {
		t.Fatalf("reserve failed: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %s", resp.ToString())
	}
	booking, err := c.DecodeBooking(resp)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	return booking
}

func testReserveAndRead(t *testing.T) {
	suite.ClearBookings(t)
	alice := suite.ClientFor(t, "alice", model.RoleUser)

	booking := mustReserve(t, alice, reserveRequest(0, 2))
	if booking.Status != model.StatusAwaitingPayment || booking.PaymentStatus != model.PaymentPending {
		t.Errorf("unexpected initial state %s/%s", booking.Status, booking.PaymentStatus)
	}
	if booking.UserID != "alice" {
		t.Errorf("expected owner alice, got %s", booking.UserID)
	}

	resp, err := alice.GetByID(context.Background(), booking.ID)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("get failed: %v %s", err, resp.ToString())
	}

	resp, err = alice.ListMine(context.Background(), 10, 0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	bookings, meta, err := alice.DecodeBookings(resp)
	if err != nil {
		t.Fatal(err)
	}
	if meta.TotalCount != 1 || len(bookings) != 1 || bookings[0].ID != booking.ID {
		t.Errorf("expected exactly the new booking, got %d (%d)", len(bookings), meta.TotalCount)
	}
}

func testOverlapRejected(t *testing.T) {
	suite.ClearBookings(t)
	alice := suite.ClientFor(t, "alice", model.RoleUser)
	bob := suite.ClientFor(t, "bob", model.RoleUser)

	mustReserve(t, alice, reserveRequest(10, 3))

	tests := []struct {
		name       string
		offset     int
		nights     int
		wantStatus int
	}{
		{"same dates", 10, 3, http.StatusConflict},
		{"starts inside", 11, 3, http.StatusConflict},
		{"ends inside", 8, 3, http.StatusConflict},
		{"checkout day is free", 13, 2, http.StatusCreated},
		{"ends on checkin day", 8, 2, http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := bob.Reserve(context.Background(), reserveRequest(tt.offset, tt.nights))
			if err != nil {
				t.Fatal(err)
			}
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("expected %d, got %s", tt.wantStatus, resp.ToString())
			}
		})
	}
}

func testOwnership(t *testing.T) {
	suite.ClearBookings(t)
	alice := suite.ClientFor(t, "alice", model.RoleUser)
	mallory := suite.ClientFor(t, "mallory", model.RoleUser)

	booking := mustReserve(t, alice, reserveRequest(20, 1))

	resp, err := mallory.GetByID(context.Background(), booking.ID)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 for foreign booking, got %s", resp.ToString())
	}

	resp, err = mallory.CreateOrder(context.Background(), booking.ID)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 for foreign order, got %s", resp.ToString())
	}

	resp, err = mallory.ListAll(context.Background(), 10, 0)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 for non-admin listing, got %s", resp.ToString())
	}
}

func testAdminListingAndStatus(t *testing.T) {
	suite.ClearBookings(t)
	alice := suite.ClientFor(t, "alice", model.RoleUser)
	bob := suite.ClientFor(t, "bob", model.RoleUser)
	admin := suite.ClientFor(t, "root", model.RoleAdmin)

	first := mustReserve(t, alice, reserveRequest(40, 2))
	mustReserve(t, bob, reserveRequest(45, 2))

	resp, err := admin.ListAll(context.Background(), 10, 0)
	if err != nil {
		t.Fatal(err)
	}
	_, meta, err := admin.DecodeBookings(resp)
	if err != nil {
		t.Fatal(err)
	}
	if meta.TotalCount != 2 {
		t.Errorf("expected 2 bookings, got %d", meta.TotalCount)
	}

	resp, err = admin.UpdateStatus(context.Background(), first.ID, model.StatusCancelled)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("cancel failed: %v %s", err, resp.ToString())
	}

	// Cancelled nights are free again.
	mustReserve(t, bob, reserveRequest(40, 2))

	resp, err = admin.UpdateStatus(context.Background(), first.ID, model.StatusConfirmed)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409 reviving an overlapped booking, got %s", resp.ToString())
	}
}

func testConcurrentReservations(t *testing.T) {
	suite.ClearBookings(t)

	const workers = 10
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c := suite.ClientFor(t, fmt.Sprintf("racer-%d", i), model.RoleUser)
			resp, err := c.Reserve(context.Background(), reserveRequest(60, 2))
			if err != nil {
				t.Errorf("worker %d: %v", i, err)
				return
			}
			switch resp.StatusCode {
			case http.StatusCreated:
				mu.Lock()
				created++
				mu.Unlock()
			case http.StatusConflict:
			default:
				t.Errorf("worker %d: unexpected %s", i, resp.ToString())
			}
		}(i)
	}
	wg.Wait()

	if created != 1 {
		t.Errorf("expected exactly one winner, got %d", created)
	}
}

func testIdempotentReserve(t *testing.T) {
	suite.ClearBookings(t)
	alice := suite.ClientFor(t, "alice", model.RoleUser)
	key := uuid.NewString()
	req := reserveRequest(70, 1)

	first, err := alice.ReserveIdempotent(context.Background(), req, key)
	if err != nil || first.StatusCode != http.StatusCreated {
		t.Fatalf("first reserve failed: %v %s", err, first.ToString())
	}
	second, err := alice.ReserveIdempotent(context.Background(), req, key)
	if err != nil {
		t.Fatal(err)
	}
	if second.StatusCode != http.StatusCreated || second.Header.Get("Idempotent-Replayed") != "true" {
		t.Errorf("expected replayed 201, got %s", second.ToString())
	}
}

func testVerifyBeforeOrder(t *testing.T) {
	suite.ClearBookings(t)
	alice := suite.ClientFor(t, "alice", model.RoleUser)
	booking := mustReserve(t, alice, reserveRequest(80, 1))

	resp, err := alice.Verify(context.Background(), &model.PaymentConfirmation{
		BookingID: booking.ID,
		OrderID:   "order_missing",
		PaymentID: "pay_missing",
		Signature: "00",
	})
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409 before an order exists, got %s", resp.ToString())
	}
}

func testWebhookUnknownOrder(t *testing.T) {
	secret := suite.Config.RazorpayWebhookSecret
	if secret == "" {
		t.Skip("RAZORPAY_WEBHOOK_SECRET is not set")
	}

	var event model.WebhookEvent
	event.Event = model.WebhookPaymentCaptured
	event.Payload.Payment.Entity = model.WebhookPayment{ID: "pay_ghost", OrderID: "order_ghost", Status: "captured"}
	body, err := json.Marshal(event)
	if err != nil {
		t.Fatal(err)
	}

	c := suite.ClientFor(t, "gateway", model.RoleUser)
	resp, err := c.Webhook(context.Background(), body, sealer.SealBytes(secret, body))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected unknown orders to be acknowledged, got %s", resp.ToString())
	}

	resp, err = c.Webhook(context.Background(), body, "deadbeef")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusUnauthorized && resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected a bad signature to be rejected, got %s", resp.ToString())
	}
}
