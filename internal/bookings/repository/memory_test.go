package repository

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	bookingserrors "hotelbook/internal/bookings/errors"
	"hotelbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var roomID = primitive.NewObjectID().Hex()

func day(d int) time.Time {
	return time.Date(2030, time.March, d, 0, 0, 0, 0, time.UTC)
}

func newBooking(room string, in, out int) *model.Booking {
	ts := now()
	return &model.Booking{
		ID:            primitive.NewObjectID().Hex(),
		UserID:        "user-1",
		HotelID:       primitive.NewObjectID().Hex(),
		RoomID:        room,
		CheckIn:       day(in),
		CheckOut:      day(out),
		TotalPrice:    100,
		Status:        model.StatusAwaitingPayment,
		PaymentStatus: model.PaymentPending,
		CreatedAt:     ts,
		UpdatedAt:     ts,
	}
}

func TestCreateIfAvailable_Overlap(t *testing.T) {
	tests := []struct {
		name    string
		in, out int
		wantErr bool
	}{
		{"identical", 10, 13, true},
		{"nested", 11, 12, true},
		{"enclosing", 9, 14, true},
		{"tail overlap", 12, 15, true},
		{"adjacent after", 13, 15, false},
		{"adjacent before", 8, 10, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewMemoryBookingRepository()
			if err := repo.CreateIfAvailable(context.Background(), newBooking(roomID, 10, 13)); err != nil {
				t.Fatalf("seed failed: %v", err)
			}

			err := repo.CreateIfAvailable(context.Background(), newBooking(roomID, tt.in, tt.out))
			if tt.wantErr && !errors.Is(err, bookingserrors.ErrDatesUnavailable) {
				t.Errorf("expected ErrDatesUnavailable, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestCreateIfAvailable_OtherRoomAndCancelled(t *testing.T) {
	repo := NewMemoryBookingRepository()
	ctx := context.Background()

	first := newBooking(roomID, 10, 13)
	if err := repo.CreateIfAvailable(ctx, first); err != nil {
		t.Fatal(err)
	}
	if err := repo.CreateIfAvailable(ctx, newBooking(primitive.NewObjectID().Hex(), 10, 13)); err != nil {
		t.Errorf("different room must not conflict: %v", err)
	}

	if _, _, err := repo.UpdateStatus(ctx, first.ID, model.StatusCancelled); err != nil {
		t.Fatal(err)
	}
	if err := repo.CreateIfAvailable(ctx, newBooking(roomID, 11, 12)); err != nil {
		t.Errorf("cancelled booking must not block: %v", err)
	}
}

func TestCreateIfAvailable_ConcurrentExactlyOne(t *testing.T) {
	repo := NewMemoryBookingRepository()

	const workers = 32
	var wg sync.WaitGroup
	var successes, conflicts int32
	start := make(chan struct{})

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			err := repo.CreateIfAvailable(context.Background(), newBooking(roomID, 10+i%3, 14))
			switch {
			case err == nil:
				atomic.AddInt32(&successes, 1)
			case errors.Is(err, bookingserrors.ErrDatesUnavailable):
				atomic.AddInt32(&conflicts, 1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	close(start)
	wg.Wait()

	if successes != 1 || conflicts != workers-1 {
		t.Errorf("successes = %d, conflicts = %d", successes, conflicts)
	}
}

func TestAttachOrder_CompareAndSet(t *testing.T) {
	repo := NewMemoryBookingRepository()
	ctx := context.Background()
	b := newBooking(roomID, 1, 2)
	_ = repo.CreateIfAvailable(ctx, b)

	got, attached, err := repo.AttachOrder(ctx, b.ID, "order_1")
	if err != nil || !attached || got.RazorpayOrderID != "order_1" {
		t.Fatalf("first attach: %+v %v %v", got, attached, err)
	}

	got, attached, err = repo.AttachOrder(ctx, b.ID, "order_2")
	if err != nil || attached || got.RazorpayOrderID != "order_1" {
		t.Fatalf("second attach must not reassign: %+v %v %v", got, attached, err)
	}

	found, err := repo.FindByOrderID(ctx, "order_1")
	if err != nil || found.ID != b.ID {
		t.Errorf("FindByOrderID = %+v, %v", found, err)
	}
}

func TestFinalizeAsPaid(t *testing.T) {
	repo := NewMemoryBookingRepository()
	ctx := context.Background()
	b := newBooking(roomID, 1, 2)
	_ = repo.CreateIfAvailable(ctx, b)
	_, _, _ = repo.AttachOrder(ctx, b.ID, "order_1")

	if _, _, err := repo.FinalizeAsPaid(ctx, b.ID, "order_x", "pay_1", "sig"); !errors.Is(err, bookingserrors.ErrOrderMismatch) {
		t.Errorf("expected ErrOrderMismatch, got %v", err)
	}

	got, changed, err := repo.FinalizeAsPaid(ctx, b.ID, "order_1", "pay_1", "sig")
	if err != nil || !changed {
		t.Fatalf("finalize: %v %v", changed, err)
	}
	if got.Status != model.StatusConfirmed || got.PaymentStatus != model.PaymentPaid {
		t.Errorf("state = %s/%s", got.Status, got.PaymentStatus)
	}

	_, changed, err = repo.FinalizeAsPaid(ctx, b.ID, "order_1", "pay_1", "sig")
	if err != nil || changed {
		t.Errorf("replay must be a no-op: %v %v", changed, err)
	}

	if _, _, err := repo.FinalizeAsPaid(ctx, b.ID, "order_1", "pay_2", "sig"); !errors.Is(err, bookingserrors.ErrAlreadyPaid) {
		t.Errorf("expected ErrAlreadyPaid, got %v", err)
	}

	_, changed, _ = repo.MarkPaymentFailed(ctx, b.ID)
	if changed {
		t.Error("a paid booking must not become failed")
	}
}

func TestFinalizeAsPaid_CancelledBooking(t *testing.T) {
	repo := NewMemoryBookingRepository()
	ctx := context.Background()
	b := newBooking(roomID, 1, 2)
	_ = repo.CreateIfAvailable(ctx, b)
	_, _, _ = repo.AttachOrder(ctx, b.ID, "order_1")
	_, _, _ = repo.UpdateStatus(ctx, b.ID, model.StatusCancelled)

	if _, _, err := repo.FinalizeAsPaid(ctx, b.ID, "order_1", "pay_1", "sig"); !errors.Is(err, bookingserrors.ErrBookingCancelled) {
		t.Errorf("expected ErrBookingCancelled, got %v", err)
	}
}

func TestMarkPaymentFailed_KeepsLifecycle(t *testing.T) {
	repo := NewMemoryBookingRepository()
	ctx := context.Background()
	b := newBooking(roomID, 1, 2)
	_ = repo.CreateIfAvailable(ctx, b)

	got, changed, err := repo.MarkPaymentFailed(ctx, b.ID)
	if err != nil || !changed || got.PaymentStatus != model.PaymentFailed || got.Status != model.StatusAwaitingPayment {
		t.Fatalf("got %+v, %v, %v", got, changed, err)
	}

	_, changed, _ = repo.MarkPaymentFailed(ctx, b.ID)
	if changed {
		t.Error("second failure must be a no-op")
	}
}

func TestUpdateStatus_Reclaim(t *testing.T) {
	repo := NewMemoryBookingRepository()
	ctx := context.Background()

	first := newBooking(roomID, 10, 13)
	_ = repo.CreateIfAvailable(ctx, first)
	_, prev, err := repo.UpdateStatus(ctx, first.ID, model.StatusCancelled)
	if err != nil || prev != model.StatusAwaitingPayment {
		t.Fatalf("cancel: %s %v", prev, err)
	}

	second := newBooking(roomID, 12, 14)
	if err := repo.CreateIfAvailable(ctx, second); err != nil {
		t.Fatal(err)
	}

	if _, _, err := repo.UpdateStatus(ctx, first.ID, model.StatusConfirmed); !errors.Is(err, bookingserrors.ErrDatesUnavailable) {
		t.Errorf("reclaiming taken nights must conflict, got %v", err)
	}

	_, _, _ = repo.UpdateStatus(ctx, second.ID, model.StatusCancelled)
	got, _, err := repo.UpdateStatus(ctx, first.ID, model.StatusConfirmed)
	if err != nil || got.Status != model.StatusConfirmed {
		t.Fatalf("reclaim after release: %+v %v", got, err)
	}
	if err := repo.CreateIfAvailable(ctx, newBooking(roomID, 10, 11)); !errors.Is(err, bookingserrors.ErrDatesUnavailable) {
		t.Errorf("reclaimed nights must block new bookings, got %v", err)
	}
}

func TestUpdateStatus_CancelReleasesOnlyOwnNights(t *testing.T) {
	repo := NewMemoryBookingRepository()
	ctx := context.Background()

	kept := newBooking(roomID, 1, 3)
	cancelled := newBooking(roomID, 3, 6)
	other := newBooking(primitive.NewObjectID().Hex(), 3, 6)
	for _, b := range []*model.Booking{kept, cancelled, other} {
		if err := repo.CreateIfAvailable(ctx, b); err != nil {
			t.Fatal(err)
		}
	}

	if _, _, err := repo.UpdateStatus(ctx, cancelled.ID, model.StatusCancelled); err != nil {
		t.Fatal(err)
	}

	if len(repo.nights) != 2+3 {
		t.Fatalf("expected 5 claimed nights after cancel, got %d", len(repo.nights))
	}
	for _, night := range model.NightsBetween(cancelled.CheckIn, cancelled.CheckOut) {
		if _, taken := repo.nights[model.NightKey(roomID, night)]; taken {
			t.Errorf("night %s still claimed", night.Format(time.DateOnly))
		}
	}
	if owner := repo.nights[model.NightKey(roomID, day(2))]; owner != kept.ID {
		t.Errorf("neighbouring booking lost its night, owner %q", owner)
	}
}

func TestListing_SortedAndPaged(t *testing.T) {
	repo := NewMemoryBookingRepository()
	ctx := context.Background()

	var ids []string
	for i := 0; i < 5; i++ {
		b := newBooking(primitive.NewObjectID().Hex(), 1, 2)
		b.CreatedAt = day(1).Add(time.Duration(i) * time.Hour)
		if i == 4 {
			b.UserID = "user-2"
		}
		_ = repo.CreateIfAvailable(ctx, b)
		ids = append(ids, b.ID)
	}

	all, _ := repo.FindAll(ctx, 2, 0)
	if len(all) != 2 || all[0].ID != ids[4] || all[1].ID != ids[3] {
		t.Errorf("FindAll newest first failed")
	}

	mine, _ := repo.FindByUser(ctx, "user-1", 10, 1)
	count, _ := repo.CountByUser(ctx, "user-1")
	if len(mine) != 3 || count != 4 {
		t.Errorf("FindByUser len = %d, count = %d", len(mine), count)
	}

	empty, _ := repo.FindAll(ctx, 10, 50)
	if len(empty) != 0 {
		t.Errorf("offset past end returned %d", len(empty))
	}
}
