package service

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"hotelbook/internal/bookings/repository"
	"hotelbook/internal/bookings/validator"
	"hotelbook/internal/events"
	roomsrepository "hotelbook/internal/rooms/repository"
	apperrors "hotelbook/pkg/errors"
	"hotelbook/pkg/logger"
	"hotelbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fixture struct {
	svc      BookingService
	repo     *repository.MemoryBookingRepository
	recorder *events.Recorder
	room     *model.Room
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logger.Discard()
	room := &model.Room{
		HotelID:    primitive.NewObjectID().Hex(),
		RoomNumber: "101",
		Type:       "double",
		Price:      2500,
		Capacity:   2,
	}
	rooms := roomsrepository.NewMemoryRoomRepository(room)
	repo := repository.NewMemoryBookingRepository()
	recorder := events.NewRecorder()

	return &fixture{
		svc:      NewBookingService(repo, rooms, validator.NewBookingValidator(log), recorder, log),
		repo:     repo,
		recorder: recorder,
		room:     room,
	}
}

func day(offset int) string {
	return time.Now().UTC().AddDate(0, 0, offset).Format("2006-01-02")
}

func (f *fixture) request(in, out int) *model.ReserveRequest {
	return &model.ReserveRequest{
		HotelID:    f.room.HotelID,
		RoomID:     f.room.ID,
		CheckIn:    day(in),
		CheckOut:   day(out),
		TotalPrice: 5000,
	}
}

var alice = model.Principal{ID: "alice", Role: model.RoleUser}
var bob = model.Principal{ID: "bob", Role: model.RoleUser}
var admin = model.Principal{ID: "root", Role: model.RoleAdmin}

func TestReserve_CreatesAwaitingPayment(t *testing.T) {
	f := newFixture(t)

	b, err := f.svc.Reserve(context.Background(), alice, f.request(10, 12))
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if b.Status != model.StatusAwaitingPayment || b.PaymentStatus != model.PaymentPending {
		t.Errorf("unexpected state %s/%s", b.Status, b.PaymentStatus)
	}
	if b.UserID != "alice" || !primitive.IsValidObjectID(b.ID) {
		t.Errorf("unexpected booking %+v", b)
	}
	if b.CheckIn.Hour() != 0 || b.Nights() != 2 {
		t.Errorf("dates not normalised: %s -> %s", b.CheckIn, b.CheckOut)
	}
	if types := f.recorder.Types(); len(types) != 1 || types[0] != events.BookingReserved {
		t.Errorf("expected one reserved event, got %v", types)
	}
}

func TestReserve_Rejections(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.Reserve(context.Background(), alice, f.request(10, 13)); err != nil {
		t.Fatalf("seed reservation: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(r *model.ReserveRequest)
		code   string
	}{
		{"overlapping stay", func(r *model.ReserveRequest) { r.CheckIn, r.CheckOut = day(12), day(14) }, apperrors.CodeConflict},
		{"checkout before checkin", func(r *model.ReserveRequest) { r.CheckIn, r.CheckOut = day(20), day(19) }, apperrors.CodeValidation},
		{"past check in", func(r *model.ReserveRequest) { r.CheckIn, r.CheckOut = day(-2), day(1) }, apperrors.CodeValidation},
		{"unknown room", func(r *model.ReserveRequest) { r.RoomID = primitive.NewObjectID().Hex() }, apperrors.CodeNotFound},
		{"room of another hotel", func(r *model.ReserveRequest) { r.HotelID = primitive.NewObjectID().Hex() }, apperrors.CodeValidation},
		{"non positive price", func(r *model.ReserveRequest) { r.TotalPrice = 0 }, apperrors.CodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := f.request(30, 32)
			tt.mutate(req)
			_, err := f.svc.Reserve(context.Background(), bob, req)
			if !apperrors.HasCode(err, tt.code) {
				t.Errorf("expected %s, got %v", tt.code, err)
			}
		})
	}

	if n := len(f.recorder.Events()); n != 1 {
		t.Errorf("rejected reservations must not publish, got %d events", n)
	}
}

func TestReserve_AdjacentStaysSucceed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Reserve(ctx, alice, f.request(10, 12)); err != nil {
		t.Fatalf("first: %v", err)
	}
	if _, err := f.svc.Reserve(ctx, bob, f.request(12, 14)); err != nil {
		t.Errorf("back-to-back stay should succeed: %v", err)
	}
}

func TestReserve_ConcurrentSameDates(t *testing.T) {
	f := newFixture(t)
	const workers = 16

	var wins, conflicts atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Reserve(context.Background(), alice, f.request(40, 43))
			switch {
			case err == nil:
				wins.Add(1)
			case apperrors.HasCode(err, apperrors.CodeConflict):
				conflicts.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if wins.Load() != 1 || conflicts.Load() != workers-1 {
		t.Errorf("expected 1 win and %d conflicts, got %d/%d", workers-1, wins.Load(), conflicts.Load())
	}
}

func TestGetForPrincipal(t *testing.T) {
	f := newFixture(t)
	b, err := f.svc.Reserve(context.Background(), alice, f.request(10, 11))
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}

	tests := []struct {
		name      string
		principal model.Principal
		id        string
		code      string
	}{
		{"owner", alice, b.ID, ""},
		{"admin", admin, b.ID, ""},
		{"stranger", bob, b.ID, apperrors.CodeForbidden},
		{"missing", alice, primitive.NewObjectID().Hex(), apperrors.CodeNotFound},
		{"malformed", alice, "nope", apperrors.CodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.GetForPrincipal(context.Background(), tt.principal, tt.id)
			if tt.code == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !apperrors.HasCode(err, tt.code) {
				t.Errorf("expected %s, got %v", tt.code, err)
			}
		})
	}
}

func TestListForUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if _, err := f.svc.Reserve(ctx, alice, f.request(10+i*2, 11+i*2)); err != nil {
			t.Fatalf("Reserve: %v", err)
		}
	}
	if _, err := f.svc.Reserve(ctx, bob, f.request(50, 51)); err != nil {
		t.Fatalf("Reserve: %v", err)
	}

	page, total, err := f.svc.ListForUser(ctx, "alice", 2, 0)
	if err != nil {
		t.Fatalf("ListForUser: %v", err)
	}
	if total != 3 || len(page) != 2 {
		t.Errorf("expected total 3 and page of 2, got %d/%d", total, len(page))
	}

	all, total, err := f.svc.ListAll(ctx, 10, 0)
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if total != 4 || len(all) != 4 {
		t.Errorf("expected 4 bookings, got %d/%d", total, len(all))
	}

	if _, _, err := f.svc.ListForUser(ctx, "", 10, 0); !apperrors.HasCode(err, apperrors.CodeUnauthorized) {
		t.Errorf("empty user should be unauthorized, got %v", err)
	}
}

func TestPaymentTransitions_PublishOnlyOnChange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b, err := f.svc.Reserve(ctx, alice, f.request(10, 11))
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}

	if _, attached, err := f.svc.AttachOrder(ctx, b.ID, "order_1"); err != nil || !attached {
		t.Fatalf("AttachOrder: attached=%v err=%v", attached, err)
	}
	if _, attached, _ := f.svc.AttachOrder(ctx, b.ID, "order_2"); attached {
		t.Error("second attach must not replace the order")
	}

	if _, err := f.svc.FinalizeAsPaid(ctx, b.ID, "order_2", "pay_1", "sig"); !apperrors.HasCode(err, apperrors.CodeInvalidInput) {
		t.Errorf("mismatched order should be rejected, got %v", err)
	}

	paid, err := f.svc.FinalizeAsPaid(ctx, b.ID, "order_1", "pay_1", "sig")
	if err != nil {
		t.Fatalf("FinalizeAsPaid: %v", err)
	}
	if paid.Status != model.StatusConfirmed || paid.PaymentStatus != model.PaymentPaid {
		t.Errorf("unexpected state %s/%s", paid.Status, paid.PaymentStatus)
	}
	if _, err := f.svc.FinalizeAsPaid(ctx, b.ID, "order_1", "pay_1", "sig"); err != nil {
		t.Errorf("replayed confirmation should be a no-op, got %v", err)
	}
	if _, err := f.svc.FinalizeAsPaid(ctx, b.ID, "order_1", "pay_2", "sig"); !apperrors.HasCode(err, apperrors.CodeConflict) {
		t.Errorf("second payment should conflict, got %v", err)
	}

	after, err := f.svc.MarkPaymentFailed(ctx, b.ID)
	if err != nil {
		t.Fatalf("MarkPaymentFailed: %v", err)
	}
	if after.PaymentStatus != model.PaymentPaid {
		t.Error("a paid booking must never become failed")
	}

	want := []string{events.BookingReserved, events.PaymentOrderCreated, events.PaymentConfirmed}
	got := f.recorder.Types()
	if len(got) != len(want) {
		t.Fatalf("expected events %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestUpdateStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b, err := f.svc.Reserve(ctx, alice, f.request(10, 12))
	if err != nil {
		t.Fatalf("Reserve: %v", err)
	}

	if _, err := f.svc.UpdateStatus(ctx, b.ID, "archived"); !apperrors.HasCode(err, apperrors.CodeValidation) {
		t.Errorf("unknown status should fail validation, got %v", err)
	}

	cancelled, err := f.svc.UpdateStatus(ctx, b.ID, model.StatusCancelled)
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if cancelled.Status != model.StatusCancelled {
		t.Errorf("expected cancelled, got %s", cancelled.Status)
	}

	events := f.recorder.Events()
	last := events[len(events)-1]
	if last.PreviousStatus != model.StatusAwaitingPayment || last.Status != model.StatusCancelled {
		t.Errorf("unexpected status event %+v", last)
	}

	// the released nights can be booked again
	other, err := f.svc.Reserve(ctx, bob, f.request(10, 12))
	if err != nil {
		t.Fatalf("rebook after cancel: %v", err)
	}

	if _, err := f.svc.UpdateStatus(ctx, b.ID, model.StatusConfirmed); !apperrors.HasCode(err, apperrors.CodeConflict) {
		t.Errorf("reviving a cancelled booking onto taken nights should conflict, got %v", err)
	}
	if _, err := f.svc.UpdateStatus(ctx, other.ID, model.StatusConfirmed); err != nil {
		t.Errorf("confirming a live booking: %v", err)
	}
}
