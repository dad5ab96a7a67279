package handler

import (
	"net/http"

	"hotelbook/internal/checkout/service"
	apperrors "hotelbook/pkg/errors"
	httputil "hotelbook/pkg/http"
	"hotelbook/pkg/logger"
	"hotelbook/pkg/middleware"
	"hotelbook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type CheckoutHandler struct {
	service       service.CheckoutService
	auth          *middleware.Authenticator
	webhookSecret string
	log           *logger.Logger
}

func NewCheckoutHandler(service service.CheckoutService, auth *middleware.Authenticator, webhookSecret string, log *logger.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service:       service,
		auth:          auth,
		webhookSecret: webhookSecret,
		log:           log,
	}
}

func (h *CheckoutHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/bookings", h.auth.Authenticate(h.Reserve))
	router.POST("/api/v1/payments/create-order", h.auth.Authenticate(h.CreateOrder))
	router.POST("/api/v1/payments/verify", h.auth.Authenticate(h.Verify))
	router.POST("/api/v1/payments/webhook", middleware.WebhookSignature(h.webhookSecret, h.log, h.Webhook))
}

func (h *CheckoutHandler) Reserve(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.ReserveRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Reserve", err)
		return
	}

	principal, _ := middleware.PrincipalFromContext(r.Context())
	booking, err := h.service.Reserve(r.Context(), principal, &req)
	if err != nil {
		h.writeError(w, "Reserve", err)
		return
	}

	if err := httputil.WriteCreated(w, "Booking reserved", booking); err != nil {
		h.log.Error("failed to write created response", "handler", "Reserve", "operation", "WriteCreated", "error", err)
	}
}

func (h *CheckoutHandler) CreateOrder(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.CreateOrderRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "CreateOrder", err)
		return
	}

	principal, _ := middleware.PrincipalFromContext(r.Context())
	order, err := h.service.PlaceOrder(r.Context(), principal, req.BookingID)
	if err != nil {
		h.writeError(w, "CreateOrder", err)
		return
	}

	if err := httputil.WriteSuccess(w, "Payment order ready", order); err != nil {
		h.log.Error("failed to write success response", "handler", "CreateOrder", "operation", "WriteSuccess", "error", err)
	}
}

func (h *CheckoutHandler) Verify(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.PaymentConfirmation
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Verify", err)
		return
	}

	principal, _ := middleware.PrincipalFromContext(r.Context())
	booking, err := h.service.ConfirmPayment(r.Context(), principal, &req)
	if err != nil {
		h.writeError(w, "Verify", err)
		return
	}

	if err := httputil.WriteSuccess(w, "Payment verified", booking); err != nil {
		h.log.Error("failed to write success response", "handler", "Verify", "operation", "WriteSuccess", "error", err)
	}
}

// Webhook acknowledges anything the gateway should not redeliver. Only
// failures that a retry could fix get a non-2xx.
func (h *CheckoutHandler) Webhook(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	log := h.log.WithContext(r.Context())

	var event model.WebhookEvent
	if err := httputil.DecodeLenientJSON(r, &event); err != nil {
		h.writeError(w, "Webhook", err)
		return
	}

	booking, err := h.service.Reconcile(r.Context(), &event)
	if err != nil {
		appErr := apperrors.AsAppError(err)
		if appErr.HTTPStatus < http.StatusInternalServerError {
			log.Warn("Webhook event ignored",
				"event", event.Event,
				"order_id", event.Payment().OrderID,
				"reason", appErr.Message,
			)
			h.ack(w, "ignored")
			return
		}
		h.writeError(w, "Webhook", err)
		return
	}

	log.Info("Webhook event applied",
		"event", event.Event,
		"booking_id", booking.ID,
		"payment_status", booking.PaymentStatus,
	)
	h.ack(w, "processed")
}

func (h *CheckoutHandler) ack(w http.ResponseWriter, status string) {
	if err := httputil.WriteSuccess(w, status, nil); err != nil {
		h.log.Error("failed to write success response", "handler", "Webhook", "operation", "WriteSuccess", "error", err)
	}
}

func (h *CheckoutHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}
