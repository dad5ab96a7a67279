package middleware

import (
	"bytes"
	"io"
	"net/http"

	apperrors "hotelbook/pkg/errors"
	"hotelbook/pkg/logger"
	"hotelbook/pkg/sealer"

	"github.com/julienschmidt/httprouter"
)

const WebhookSignatureHeader = "X-Razorpay-Signature"

// WebhookSignature rejects gateway callbacks whose body HMAC does not match the header.
func WebhookSignature(secret string, log *logger.Logger, next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if secret == "" {
			rejectWebhook(w, log, r, "Webhook secret not configured")
			return
		}

		signature := r.Header.Get(WebhookSignatureHeader)
		if signature == "" {
			rejectWebhook(w, log, r, "Missing "+WebhookSignatureHeader+" header")
			return
		}

		body, err := readAndRestoreBody(r)
		if err != nil {
			rejectWebhook(w, log, r, "Failed to read request body")
			return
		}

		if !VerifyBodySignature(body, signature, secret) {
			rejectWebhook(w, log, r, "Invalid webhook signature")
			return
		}

		next(w, r, ps)
	}
}

func readAndRestoreBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, err
	}

	r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(body))

	return body, nil
}

func VerifyBodySignature(body []byte, receivedSignature string, secret string) bool {
	return sealer.VerifyBytes(secret, body, receivedSignature)
}

func rejectWebhook(w http.ResponseWriter, log *logger.Logger, r *http.Request, reason string) {
	log.WithContext(r.Context()).Warn("Payment webhook verification failed",
		"reason", reason,
		"path", r.URL.Path,
		"remote_addr", r.RemoteAddr,
	)

	writeRejection(w, apperrors.Unauthorized("Unauthorized"))
}
