package service

import (
	"context"

	checkout "hotelbook/internal/checkout/core"
	"hotelbook/internal/checkout/flows"
	"hotelbook/pkg/logger"
	"hotelbook/pkg/model"
)

// MaxConcurrentGatewayCalls bounds in-flight order creations per process.
const MaxConcurrentGatewayCalls = 40

type CheckoutService interface {
	Reserve(ctx context.Context, principal model.Principal, req *model.ReserveRequest) (*model.Booking, error)
	PlaceOrder(ctx context.Context, principal model.Principal, bookingID string) (*model.PaymentOrder, error)
	ConfirmPayment(ctx context.Context, principal model.Principal, confirmation *model.PaymentConfirmation) (*model.Booking, error)
	Reconcile(ctx context.Context, event *model.WebhookEvent) (*model.Booking, error)
}

type checkoutService struct {
	engine *checkout.Engine
	log    *logger.Logger
}

func NewCheckoutService(ledger flows.Ledger, payments flows.Payments, v flows.StructValidator, log *logger.Logger) CheckoutService {
	limiter := checkout.NewLimiter(MaxConcurrentGatewayCalls)
	engine := checkout.NewEngine(log,
		flows.NewReserveFlow(ledger),
		flows.NewPlaceOrderFlow(ledger, payments, limiter),
		flows.NewConfirmPaymentFlow(ledger, payments, v),
		flows.NewReconcileFlow(ledger),
	)
	log.Info("Checkout engine ready", "flows", engine.Flows())

	return &checkoutService{engine: engine, log: log}
}

func (s *checkoutService) Reserve(ctx context.Context, principal model.Principal, req *model.ReserveRequest) (*model.Booking, error) {
	fc := checkout.NewFlowContext(ctx, principal)
	fc.Reserve = req
	if err := s.engine.Run(flows.Reserve, fc); err != nil {
		return nil, err
	}
	return fc.Booking, nil
}

func (s *checkoutService) PlaceOrder(ctx context.Context, principal model.Principal, bookingID string) (*model.PaymentOrder, error) {
	fc := checkout.NewFlowContext(ctx, principal)
	fc.BookingID = bookingID
	if err := s.engine.Run(flows.PlaceOrder, fc); err != nil {
		return nil, err
	}
	return fc.Order, nil
}

func (s *checkoutService) ConfirmPayment(ctx context.Context, principal model.Principal, confirmation *model.PaymentConfirmation) (*model.Booking, error) {
	fc := checkout.NewFlowContext(ctx, principal)
	fc.Confirmation = confirmation
	if err := s.engine.Run(flows.ConfirmPayment, fc); err != nil {
		return nil, err
	}
	return fc.Booking, nil
}

// Reconcile runs without a principal; the caller authenticated the gateway.
func (s *checkoutService) Reconcile(ctx context.Context, event *model.WebhookEvent) (*model.Booking, error) {
	fc := checkout.NewFlowContext(ctx, model.Principal{})
	fc.Webhook = event
	if err := s.engine.Run(flows.Reconcile, fc); err != nil {
		return nil, err
	}
	return fc.Booking, nil
}
