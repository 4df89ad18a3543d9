package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/aurelle/storefront-backend/api/responses"
	"github.com/aurelle/storefront-backend/api/validators"
	internalorders "github.com/aurelle/storefront-backend/internal/orders"
	pkgerrors "github.com/aurelle/storefront-backend/pkg/errors"
	"github.com/aurelle/storefront-backend/pkg/logger"
)

type deliveryStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// AdminSetDeliveryStatus advances an order along the delivery state machine.
func AdminSetDeliveryStatus(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, err := uuid.Parse(chi.URLParam(r, "orderId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id"))
			return
		}

		var payload deliveryStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.SetDeliveryStatus(r.Context(), orderID, payload.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, orderResponse(order))
	}
}
