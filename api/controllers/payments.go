package controllers

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/aurelle/storefront-backend/api/responses"
	"github.com/aurelle/storefront-backend/api/validators"
	checkoutsvc "github.com/aurelle/storefront-backend/internal/checkout"
	pkgerrors "github.com/aurelle/storefront-backend/pkg/errors"
	"github.com/aurelle/storefront-backend/pkg/logger"
)

type createIntentRequest struct {
	Amount   decimal.Decimal   `json:"amount" validate:"required"`
	Currency string            `json:"currency"`
	Notes    map[string]string `json:"notes"`
}

type verifyPaymentRequest struct {
	IntentID  string `json:"intentId" validate:"required"`
	PaymentID string `json:"paymentId" validate:"required"`
	Signature string `json:"signature" validate:"required"`
}

// CreatePaymentIntent registers a gateway payment intent for the given
// major-unit amount.
func CreatePaymentIntent(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload createIntentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		intent, err := svc.CreateIntent(r.Context(), payload.Amount, payload.Currency, payload.Notes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, intent)
	}
}

// VerifyPayment checks the gateway signature for a completed payment.
func VerifyPayment(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload verifyPaymentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.VerifyPayment(r.Context(), payload.IntentID, payload.PaymentID, payload.Signature); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"verified": true})
	}
}
