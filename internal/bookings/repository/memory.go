package repository

import (
	"context"
	"sort"
	"sync"

	bookingserrors "hotelbook/internal/bookings/errors"
	"hotelbook/pkg/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryBookingRepository is the single-process ledger. One mutex serialises
// every write, and the night index plays the role of the Room_nights unique key.
type MemoryBookingRepository struct {
	mu       sync.RWMutex
	bookings map[string]model.Booking
	nights   map[string]string // night key -> booking id
}

var _ BookingRepository = (*MemoryBookingRepository)(nil)

func NewMemoryBookingRepository() *MemoryBookingRepository {
	return &MemoryBookingRepository{
		bookings: make(map[string]model.Booking),
		nights:   make(map[string]string),
	}
}

func (r *MemoryBookingRepository) CreateIfAvailable(_ context.Context, b *model.Booking) error {
	if _, err := parseID(b.ID); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.overlapsLocked(b.RoomID, b, "") {
		return bookingserrors.ErrDatesUnavailable
	}
	r.bookings[b.ID] = *b
	r.claimLocked(b)
	return nil
}

func (r *MemoryBookingRepository) overlapsLocked(roomID string, b *model.Booking, excludeID string) bool {
	for _, night := range model.NightsBetween(b.CheckIn, b.CheckOut) {
		if owner, taken := r.nights[model.NightKey(roomID, night)]; taken && owner != excludeID {
			return true
		}
	}
	for id, other := range r.bookings {
		if id == excludeID || other.RoomID != roomID || !other.HoldsRoom() {
			continue
		}
		if model.StaysOverlap(b.CheckIn, b.CheckOut, other.CheckIn, other.CheckOut) {
			return true
		}
	}
	return false
}

func (r *MemoryBookingRepository) claimLocked(b *model.Booking) {
	for _, night := range model.NightsBetween(b.CheckIn, b.CheckOut) {
		r.nights[model.NightKey(b.RoomID, night)] = b.ID
	}
}

// releaseLocked frees only the nights of b that b still owns.
func (r *MemoryBookingRepository) releaseLocked(b *model.Booking) {
	for _, night := range model.NightsBetween(b.CheckIn, b.CheckOut) {
		key := model.NightKey(b.RoomID, night)
		if r.nights[key] == b.ID {
			delete(r.nights, key)
		}
	}
}

func (r *MemoryBookingRepository) FindByID(_ context.Context, id string) (*model.Booking, error) {
	if !primitive.IsValidObjectID(id) {
		return nil, bookingserrors.ErrInvalidID
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.bookings[id]
	if !ok {
		return nil, bookingserrors.ErrNotFound
	}
	return &b, nil
}

func (r *MemoryBookingRepository) FindByOrderID(_ context.Context, orderID string) (*model.Booking, error) {
	if orderID == "" {
		return nil, bookingserrors.ErrNotFound
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, b := range r.bookings {
		if b.RazorpayOrderID == orderID {
			return &b, nil
		}
	}
	return nil, bookingserrors.ErrNotFound
}

func (r *MemoryBookingRepository) filter(keep func(*model.Booking) bool) []*model.Booking {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*model.Booking
	for _, b := range r.bookings {
		b := b
		if keep(&b) {
			out = append(out, &b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func page(all []*model.Booking, limit int, offset int64) []*model.Booking {
	if offset >= int64(len(all)) {
		return []*model.Booking{}
	}
	end := offset + int64(limit)
	if end > int64(len(all)) {
		end = int64(len(all))
	}
	return all[offset:end]
}

func (r *MemoryBookingRepository) FindByUser(_ context.Context, userID string, limit int, offset int64) ([]*model.Booking, error) {
	return page(r.filter(func(b *model.Booking) bool { return b.UserID == userID }), limit, offset), nil
}

func (r *MemoryBookingRepository) CountByUser(_ context.Context, userID string) (int64, error) {
	return int64(len(r.filter(func(b *model.Booking) bool { return b.UserID == userID }))), nil
}

func (r *MemoryBookingRepository) FindAll(_ context.Context, limit int, offset int64) ([]*model.Booking, error) {
	return page(r.filter(func(*model.Booking) bool { return true }), limit, offset), nil
}

func (r *MemoryBookingRepository) Count(_ context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.bookings)), nil
}

// mutate runs fn on the stored booking under the write lock and saves it when fn reports a change.
func (r *MemoryBookingRepository) mutate(id string, fn func(b *model.Booking) (bool, error)) (*model.Booking, bool, error) {
	if !primitive.IsValidObjectID(id) {
		return nil, false, bookingserrors.ErrInvalidID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[id]
	if !ok {
		return nil, false, bookingserrors.ErrNotFound
	}

	changed, err := fn(&b)
	if err != nil {
		return &b, false, err
	}
	if changed {
		b.UpdatedAt = now()
		r.bookings[id] = b
	}
	out := b
	return &out, changed, nil
}

func (r *MemoryBookingRepository) AttachOrder(_ context.Context, id, orderID string) (*model.Booking, bool, error) {
	return r.mutate(id, func(b *model.Booking) (bool, error) {
		if b.RazorpayOrderID != "" {
			return false, nil
		}
		b.RazorpayOrderID = orderID
		b.PaymentStatus = model.PaymentPending
		return true, nil
	})
}

func (r *MemoryBookingRepository) FinalizeAsPaid(_ context.Context, id, orderID, paymentID, signature string) (*model.Booking, bool, error) {
	return r.mutate(id, func(b *model.Booking) (bool, error) {
		if b.RazorpayOrderID != orderID || b.Status == model.StatusCancelled || b.PaymentStatus == model.PaymentPaid {
			_, _, err := classifyFinalize(b, orderID, paymentID)
			return false, err
		}
		b.Status = model.StatusConfirmed
		b.PaymentStatus = model.PaymentPaid
		b.RazorpayPaymentID = paymentID
		b.RazorpaySignature = signature
		return true, nil
	})
}

func (r *MemoryBookingRepository) MarkPaymentFailed(_ context.Context, id string) (*model.Booking, bool, error) {
	return r.mutate(id, func(b *model.Booking) (bool, error) {
		if b.PaymentStatus != model.PaymentPending {
			return false, nil
		}
		b.PaymentStatus = model.PaymentFailed
		return true, nil
	})
}

func (r *MemoryBookingRepository) UpdateStatus(_ context.Context, id, status string) (*model.Booking, string, error) {
	var previous string
	b, _, err := r.mutate(id, func(b *model.Booking) (bool, error) {
		previous = b.Status
		if b.Status == status {
			return false, nil
		}

		switch {
		case status == model.StatusCancelled:
			r.releaseLocked(b)
		case b.Status == model.StatusCancelled:
			if r.overlapsLocked(b.RoomID, b, b.ID) {
				return false, bookingserrors.ErrDatesUnavailable
			}
			r.claimLocked(b)
		}
		b.Status = status
		return true, nil
	})
	if err != nil {
		return nil, "", err
	}
	return b, previous, nil
}
