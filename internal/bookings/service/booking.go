package service

import (
	"context"
	"errors"
	"sync"
	"time"

	bookingserrors "hotelbook/internal/bookings/errors"
	"hotelbook/internal/bookings/repository"
	"hotelbook/internal/bookings/validator"
	"hotelbook/internal/events"
	roomserrors "hotelbook/internal/rooms/errors"
	roomsrepository "hotelbook/internal/rooms/repository"
	apperrors "hotelbook/pkg/errors"
	"hotelbook/pkg/logger"
	"hotelbook/pkg/model"
	"hotelbook/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const msgDatesUnavailable = "Room is already booked for the selected dates"

type BookingService interface {
	Reserve(ctx context.Context, principal model.Principal, req *model.ReserveRequest) (*model.Booking, error)
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	GetForPrincipal(ctx context.Context, principal model.Principal, id string) (*model.Booking, error)
	FindByOrderID(ctx context.Context, orderID string) (*model.Booking, error)
	ListForUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.Booking, int64, error)
	ListAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error)
	AttachOrder(ctx context.Context, id, orderID string) (*model.Booking, bool, error)
	FinalizeAsPaid(ctx context.Context, id, orderID, paymentID, signature string) (*model.Booking, error)
	MarkPaymentFailed(ctx context.Context, id string) (*model.Booking, error)
	UpdateStatus(ctx context.Context, id, status string) (*model.Booking, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	rooms     roomsrepository.RoomRepository
	validator *validator.BookingValidator
	publisher events.Publisher
	log       *logger.Logger
	now       func() time.Time
}

func NewBookingService(
	repo repository.BookingRepository,
	rooms roomsrepository.RoomRepository,
	validator *validator.BookingValidator,
	publisher events.Publisher,
	log *logger.Logger,
) BookingService {
	return &bookingService{
		repo:      repo,
		rooms:     rooms,
		validator: validator,
		publisher: publisher,
		log:       log,
		now:       func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

func (s *bookingService) Reserve(ctx context.Context, principal model.Principal, req *model.ReserveRequest) (*model.Booking, error) {
	log := s.log.WithContext(ctx)

	sanitizer.SanitizeReserveRequest(req)
	stay, err := s.validator.ValidateReserve(req)
	if err != nil {
		log.Warn("Reservation validation failed", "user_id", principal.ID, "error", err)
		return nil, validationError("Booking validation failed", err)
	}

	room, err := s.rooms.FindByID(ctx, req.RoomID)
	if err != nil {
		if errors.Is(err, roomserrors.ErrNotFound) || errors.Is(err, roomserrors.ErrInvalidID) {
			return nil, apperrors.NotFound("Room")
		}
		return nil, apperrors.Internal("Failed to load room", err)
	}
	if room.HotelID != req.HotelID {
		return nil, apperrors.Validation("Room does not belong to the selected hotel", map[string]any{
			"fields": map[string]any{"roomId": "room is not part of hotelId"},
		})
	}

	ts := s.now()
	booking := &model.Booking{
		ID:            primitive.NewObjectID().Hex(),
		UserID:        principal.ID,
		HotelID:       req.HotelID,
		RoomID:        req.RoomID,
		CheckIn:       stay.CheckIn,
		CheckOut:      stay.CheckOut,
		TotalPrice:    req.TotalPrice,
		Status:        model.StatusAwaitingPayment,
		PaymentStatus: model.PaymentPending,
		CreatedAt:     ts,
		UpdatedAt:     ts,
	}

	if err := s.repo.CreateIfAvailable(ctx, booking); err != nil {
		if errors.Is(err, bookingserrors.ErrDatesUnavailable) {
			log.Info("Reservation rejected, dates unavailable",
				"room_id", booking.RoomID,
				"check_in", booking.CheckIn,
				"check_out", booking.CheckOut,
			)
			return nil, apperrors.Conflict(msgDatesUnavailable)
		}
		log.Error("Failed to create booking", "error", err)
		return nil, apperrors.Internal("Failed to create booking", err)
	}

	log.Info("Booking reserved",
		"id", booking.ID,
		"user_id", booking.UserID,
		"room_id", booking.RoomID,
		"check_in", booking.CheckIn,
		"check_out", booking.CheckOut,
	)
	s.publish(ctx, events.FromBooking(events.BookingReserved, booking))
	return booking, nil
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translate(err, id, "Failed to retrieve booking")
	}
	return booking, nil
}

// GetForPrincipal returns the booking when the caller owns it or is an admin.
func (s *bookingService) GetForPrincipal(ctx context.Context, principal model.Principal, id string) (*model.Booking, error) {
	booking, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !principal.IsAdmin() && !booking.IsOwnedBy(principal.ID) {
		return nil, apperrors.Forbidden("You do not have access to this booking")
	}
	return booking, nil
}

func (s *bookingService) FindByOrderID(ctx context.Context, orderID string) (*model.Booking, error) {
	booking, err := s.repo.FindByOrderID(ctx, orderID)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFound("Booking")
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}
	return booking, nil
}

func (s *bookingService) ListForUser(ctx context.Context, userID string, limit int, offset int64) ([]*model.Booking, int64, error) {
	if userID == "" {
		return nil, 0, apperrors.Unauthorized("Authentication required")
	}
	return s.list(ctx,
		func(ctx context.Context) (int64, error) { return s.repo.CountByUser(ctx, userID) },
		func(ctx context.Context) ([]*model.Booking, error) {
			return s.repo.FindByUser(ctx, userID, limit, offset)
		},
	)
}

func (s *bookingService) ListAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error) {
	return s.list(ctx,
		s.repo.Count,
		func(ctx context.Context) ([]*model.Booking, error) {
			return s.repo.FindAll(ctx, limit, offset)
		},
	)
}

// list fetches the total and the page concurrently.
func (s *bookingService) list(
	ctx context.Context,
	countFn func(context.Context) (int64, error),
	findFn func(context.Context) ([]*model.Booking, error),
) ([]*model.Booking, int64, error) {
	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = countFn(ctx)
		if errCount != nil {
			s.log.WithContext(ctx).Error("Failed to count bookings", "error", errCount)
			errCount = apperrors.Internal("Failed to count bookings", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = findFn(ctx)
		if errFind != nil {
			s.log.WithContext(ctx).Error("Failed to list bookings", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve bookings", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}
	if bookings == nil {
		bookings = []*model.Booking{}
	}
	return bookings, count, nil
}

func (s *bookingService) AttachOrder(ctx context.Context, id, orderID string) (*model.Booking, bool, error) {
	if orderID == "" {
		return nil, false, apperrors.InvalidInput("Order ID cannot be empty")
	}

	booking, attached, err := s.repo.AttachOrder(ctx, id, orderID)
	if err != nil {
		return nil, false, s.translate(err, id, "Failed to attach payment order")
	}
	if attached {
		s.log.WithContext(ctx).Info("Payment order attached", "id", id, "order_id", orderID)
		s.publish(ctx, events.FromBooking(events.PaymentOrderCreated, booking))
	}
	return booking, attached, nil
}

func (s *bookingService) FinalizeAsPaid(ctx context.Context, id, orderID, paymentID, signature string) (*model.Booking, error) {
	booking, changed, err := s.repo.FinalizeAsPaid(ctx, id, orderID, paymentID, signature)
	if err != nil {
		return nil, s.translate(err, id, "Failed to confirm payment")
	}
	if changed {
		s.log.WithContext(ctx).Info("Payment confirmed",
			"id", id,
			"order_id", orderID,
			"payment_id", paymentID,
		)
		s.publish(ctx, events.FromBooking(events.PaymentConfirmed, booking))
	}
	return booking, nil
}

func (s *bookingService) MarkPaymentFailed(ctx context.Context, id string) (*model.Booking, error) {
	booking, changed, err := s.repo.MarkPaymentFailed(ctx, id)
	if err != nil {
		return nil, s.translate(err, id, "Failed to record payment failure")
	}
	if changed {
		s.log.WithContext(ctx).Warn("Payment marked failed", "id", id, "order_id", booking.RazorpayOrderID)
		s.publish(ctx, events.FromBooking(events.PaymentFailed, booking))
	}
	return booking, nil
}

// UpdateStatus is the admin override. It bypasses the payment state machine.
func (s *bookingService) UpdateStatus(ctx context.Context, id, status string) (*model.Booking, error) {
	if err := s.validator.Struct(&model.StatusUpdate{Status: status}); err != nil {
		return nil, validationError("Invalid status", err)
	}

	booking, previous, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, s.translate(err, id, "Failed to update booking status")
	}
	if previous != status {
		s.log.WithContext(ctx).Info("Booking status overridden",
			"id", id,
			"from", previous,
			"to", status,
		)
		event := events.FromBooking(events.BookingStatusChanged, booking)
		event.PreviousStatus = previous
		s.publish(ctx, event)
	}
	return booking, nil
}

// --- Helpers ---

func (s *bookingService) publish(ctx context.Context, event events.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.WithContext(ctx).Error("Failed to publish event",
			"type", event.Type,
			"booking_id", event.BookingID,
			"error", err,
		)
	}
}

func (s *bookingService) translate(err error, id, message string) error {
	switch {
	case errors.Is(err, bookingserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Booking", id)
	case errors.Is(err, bookingserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid booking ID format")
	case errors.Is(err, bookingserrors.ErrDatesUnavailable):
		return apperrors.Conflict(msgDatesUnavailable)
	case errors.Is(err, bookingserrors.ErrAlreadyPaid):
		return apperrors.Conflict("Booking is already paid")
	case errors.Is(err, bookingserrors.ErrBookingCancelled):
		return apperrors.Conflict("Booking is cancelled")
	case errors.Is(err, bookingserrors.ErrOrderMismatch):
		return apperrors.InvalidInput("Order does not belong to this booking")
	case apperrors.IsAppError(err):
		return err
	}
	s.log.Error(message, "id", id, "error", err)
	return apperrors.Internal(message, err)
}

func validationError(message string, err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.Validation(message, verrs.Details())
	}
	return apperrors.Validation(message, map[string]any{"error": err.Error()})
}
