package payments

import (
	"context"
	"errors"
	"time"

	"hotelbook/internal/payments/gateway"
	roomserrors "hotelbook/internal/rooms/errors"
	roomsrepository "hotelbook/internal/rooms/repository"
	apperrors "hotelbook/pkg/errors"
	"hotelbook/pkg/logger"
	"hotelbook/pkg/model"
	"hotelbook/pkg/sealer"
)

// OrderAttacher is the ledger transition the bridge depends on.
type OrderAttacher interface {
	AttachOrder(ctx context.Context, id, orderID string) (*model.Booking, bool, error)
}

type Config struct {
	KeyID             string
	KeySecret         string
	Currency          string
	GatewayTimeout    time.Duration
	PriceCheckEnabled bool
	PriceTolerance    float64
}

type Bridge struct {
	cfg     Config
	gateway gateway.Gateway
	rooms   roomsrepository.RoomRepository
	ledger  OrderAttacher
	log     *logger.Logger
}

func NewBridge(cfg Config, gw gateway.Gateway, rooms roomsrepository.RoomRepository, ledger OrderAttacher, log *logger.Logger) *Bridge {
	return &Bridge{
		cfg:     cfg,
		gateway: gw,
		rooms:   rooms,
		ledger:  ledger,
		log:     log,
	}
}

// CreateOrder mints a gateway order for the booking, or returns the one
// already attached. Nothing is written when the gateway call fails.
func (b *Bridge) CreateOrder(ctx context.Context, principal model.Principal, booking *model.Booking) (*model.PaymentOrder, error) {
	log := b.log.WithContext(ctx)

	if !booking.IsOwnedBy(principal.ID) {
		log.Warn("Order requested for foreign booking", "booking_id", booking.ID, "user_id", principal.ID)
		return nil, apperrors.Forbidden("You do not have access to this booking")
	}
	if err := checkOrderable(booking); err != nil {
		return nil, err
	}

	amount, err := ToMinorUnits(booking.TotalPrice)
	if err != nil {
		return nil, apperrors.Validation("Invalid booking amount", map[string]any{"total_price": err.Error()})
	}

	if booking.RazorpayOrderID != "" {
		log.Info("Reusing attached payment order", "booking_id", booking.ID, "order_id", booking.RazorpayOrderID)
		return b.paymentOrder(booking, booking.RazorpayOrderID, amount, b.cfg.Currency), nil
	}

	if b.cfg.PriceCheckEnabled {
		if err := b.checkPrice(ctx, booking); err != nil {
			return nil, err
		}
	}

	gwCtx, cancel := context.WithTimeout(ctx, b.cfg.GatewayTimeout)
	defer cancel()

	order, err := b.gateway.CreateOrder(gwCtx, gateway.OrderRequest{
		Amount:    amount,
		Currency:  b.cfg.Currency,
		Receipt:   gateway.Receipt(booking.ID),
		BookingID: booking.ID,
	})
	if err != nil {
		log.Error("Gateway order creation failed", "booking_id", booking.ID, "amount", amount, "error", err)
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, apperrors.Gateway("Payment gateway timed out", err)
		}
		return nil, apperrors.Gateway("Payment gateway unavailable", err)
	}

	current, attached, err := b.ledger.AttachOrder(ctx, booking.ID, order.ID)
	if err != nil {
		return nil, err
	}
	if !attached {
		// A concurrent request attached first; its order wins.
		log.Warn("Discarding duplicate gateway order",
			"booking_id", booking.ID,
			"discarded_order_id", order.ID,
			"order_id", current.RazorpayOrderID,
		)
		return b.paymentOrder(current, current.RazorpayOrderID, amount, b.cfg.Currency), nil
	}

	log.Info("Payment order created", "booking_id", booking.ID, "order_id", order.ID, "amount", order.Amount)
	return b.paymentOrder(current, order.ID, order.Amount, order.Currency), nil
}

// VerifyConfirmation checks the gateway signature over orderID|paymentID.
func (b *Bridge) VerifyConfirmation(ctx context.Context, principal model.Principal, booking *model.Booking, paymentID, orderID, signature string) error {
	if !booking.IsOwnedBy(principal.ID) {
		return apperrors.Forbidden("You do not have access to this booking")
	}
	if !sealer.Verify(b.cfg.KeySecret, signature, orderID, paymentID) {
		b.log.WithContext(ctx).Warn("Payment signature mismatch",
			"booking_id", booking.ID,
			"order_id", orderID,
			"payment_id", paymentID,
		)
		return apperrors.SignatureMismatch("Payment signature verification failed")
	}
	return nil
}

func (b *Bridge) checkPrice(ctx context.Context, booking *model.Booking) error {
	room, err := b.rooms.FindByID(ctx, booking.RoomID)
	if err != nil {
		if errors.Is(err, roomserrors.ErrNotFound) || errors.Is(err, roomserrors.ErrInvalidID) {
			return apperrors.NotFound("Room")
		}
		return apperrors.Internal("Failed to load room", err)
	}

	expected := ExpectedTotal(room.Price, booking.Nights())
	if !WithinTolerance(booking.TotalPrice, expected, b.cfg.PriceTolerance) {
		b.log.WithContext(ctx).Warn("Booking total does not match room rate",
			"booking_id", booking.ID,
			"total_price", booking.TotalPrice,
			"expected", expected.String(),
		)
		return apperrors.Validation("total price does not match room rate", map[string]any{
			"total_price": booking.TotalPrice,
			"expected":    expected.InexactFloat64(),
		})
	}
	return nil
}

func (b *Bridge) paymentOrder(booking *model.Booking, orderID string, amount int64, currency string) *model.PaymentOrder {
	return &model.PaymentOrder{
		OrderID:   orderID,
		Amount:    amount,
		Currency:  currency,
		Key:       b.cfg.KeyID,
		BookingID: booking.ID,
	}
}

func checkOrderable(booking *model.Booking) error {
	switch {
	case booking.Status == model.StatusCancelled:
		return apperrors.Conflict("Booking is cancelled")
	case booking.PaymentStatus == model.PaymentPaid:
		return apperrors.Conflict("Booking is already paid")
	case booking.PaymentStatus == model.PaymentFailed:
		return apperrors.Conflict("Payment for this booking has failed")
	}
	return nil
}
