package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/aurelle/storefront-backend/api/middleware"
	"github.com/aurelle/storefront-backend/api/responses"
	internalorders "github.com/aurelle/storefront-backend/internal/orders"
	"github.com/aurelle/storefront-backend/pkg/db/models"
	pkgerrors "github.com/aurelle/storefront-backend/pkg/errors"
	"github.com/aurelle/storefront-backend/pkg/logger"
	"github.com/aurelle/storefront-backend/pkg/types"
)

type orderItemView struct {
	ProductID  *uuid.UUID      `json:"productId,omitempty"`
	CatalogRef string          `json:"catalogRef,omitempty"`
	Name       string          `json:"name"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	Qty        int             `json:"qty"`
}

type orderView struct {
	ID               uuid.UUID             `json:"id"`
	UserEmail        string                `json:"userEmail"`
	ShippingAddress  types.ShippingAddress `json:"shippingAddress"`
	PaymentMethod    string                `json:"paymentMethod"`
	PaymentStatus    string                `json:"paymentStatus"`
	GatewayPaymentID *string               `json:"gatewayPaymentId,omitempty"`
	Total            decimal.Decimal       `json:"total"`
	DeliveryStatus   string                `json:"deliveryStatus"`
	PlacedAt         *time.Time            `json:"placedAt,omitempty"`
	OutForDeliveryAt *time.Time            `json:"outForDeliveryAt,omitempty"`
	DeliveredAt      *time.Time            `json:"deliveredAt,omitempty"`
	Items            []orderItemView       `json:"items"`
	CreatedAt        time.Time             `json:"createdAt"`
}

func orderResponse(order *models.Order) orderView {
	view := orderView{
		ID:               order.ID,
		UserEmail:        order.UserEmail,
		ShippingAddress:  order.ShippingAddress,
		PaymentMethod:    order.PaymentMethod.String(),
		PaymentStatus:    order.PaymentStatus.String(),
		GatewayPaymentID: order.GatewayPaymentID,
		Total:            order.Total,
		DeliveryStatus:   order.DeliveryStatus.String(),
		PlacedAt:         order.PlacedAt,
		OutForDeliveryAt: order.OutForDeliveryAt,
		DeliveredAt:      order.DeliveredAt,
		Items:            make([]orderItemView, 0, len(order.Items)),
		CreatedAt:        order.CreatedAt,
	}
	for _, item := range order.Items {
		view.Items = append(view.Items, orderItemView{
			ProductID:  item.ProductID,
			CatalogRef: item.CatalogRef,
			Name:       item.Name,
			UnitPrice:  item.UnitPrice,
			Qty:        item.Qty,
		})
	}
	return view
}

// ListMyOrders returns the authenticated user's orders, newest first.
func ListMyOrders(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		email := middleware.UserEmailFromContext(r.Context())
		if email == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
			return
		}

		rows, err := svc.ListForUser(r.Context(), email)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		views := make([]orderView, 0, len(rows))
		for i := range rows {
			views = append(views, orderResponse(&rows[i]))
		}
		responses.WriteSuccess(w, map[string]any{"orders": views})
	}
}

// GetMyOrder returns one of the authenticated user's orders.
func GetMyOrder(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		email := middleware.UserEmailFromContext(r.Context())
		if email == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required"))
			return
		}

		orderID, err := uuid.Parse(chi.URLParam(r, "orderId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id"))
			return
		}

		order, err := svc.Get(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if order.UserEmail != email {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "order not found"))
			return
		}
		responses.WriteSuccess(w, orderResponse(order))
	}
}
