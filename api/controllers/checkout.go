package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/aurelle/storefront-backend/api/middleware"
	"github.com/aurelle/storefront-backend/api/responses"
	"github.com/aurelle/storefront-backend/api/validators"
	checkoutsvc "github.com/aurelle/storefront-backend/internal/checkout"
	"github.com/aurelle/storefront-backend/pkg/enums"
	pkgerrors "github.com/aurelle/storefront-backend/pkg/errors"
	"github.com/aurelle/storefront-backend/pkg/logger"
	"github.com/aurelle/storefront-backend/pkg/types"
)

type checkoutItemRequest struct {
	ProductID  *uuid.UUID      `json:"productId"`
	CatalogRef string          `json:"catalogRef"`
	Name       string          `json:"name" validate:"required"`
	UnitPrice  decimal.Decimal `json:"unitPrice" validate:"required"`
	Qty        int             `json:"qty" validate:"required,gt=0"`
}

type checkoutPaymentRequest struct {
	IntentID  string `json:"intentId" validate:"required"`
	PaymentID string `json:"paymentId" validate:"required"`
	Signature string `json:"signature" validate:"required"`
}

type checkoutRequest struct {
	ShippingAddress types.ShippingAddress   `json:"shippingAddress" validate:"required"`
	PaymentMethod   string                  `json:"paymentMethod" validate:"required,oneof=card cod"`
	Items           []checkoutItemRequest   `json:"items" validate:"required,min=1,dive"`
	Total           decimal.Decimal         `json:"total"`
	Payment         *checkoutPaymentRequest `json:"payment"`
}

// Checkout converts the submitted cart snapshot into a durable order.
func Checkout(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		email := middleware.UserEmailFromContext(r.Context())
		if email == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, err := enums.ParsePaymentMethod(payload.PaymentMethod)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method"))
			return
		}

		input := checkoutsvc.PlaceOrderInput{
			UserEmail:   email,
			Address:     payload.ShippingAddress,
			Method:      method,
			ClientTotal: payload.Total,
		}
		for _, item := range payload.Items {
			input.Items = append(input.Items, checkoutsvc.ItemInput{
				ProductID:  item.ProductID,
				CatalogRef: item.CatalogRef,
				Name:       item.Name,
				UnitPrice:  item.UnitPrice,
				Qty:        item.Qty,
			})
		}
		if payload.Payment != nil {
			input.Proof = &checkoutsvc.PaymentProof{
				IntentID:  payload.Payment.IntentID,
				PaymentID: payload.Payment.PaymentID,
				Signature: payload.Payment.Signature,
			}
		}

		order, err := svc.PlaceOrder(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, orderResponse(order))
	}
}
