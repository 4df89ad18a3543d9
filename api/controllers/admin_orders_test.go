package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/aurelle/storefront-backend/pkg/db/models"
	"github.com/aurelle/storefront-backend/pkg/enums"
	pkgerrors "github.com/aurelle/storefront-backend/pkg/errors"
)

type stubOrdersService struct {
	getFn  func(ctx context.Context, id uuid.UUID) (*models.Order, error)
	listFn func(ctx context.Context, email string) ([]models.Order, error)
	setFn  func(ctx context.Context, orderID uuid.UUID, raw string) (*models.Order, error)
}

func (s stubOrdersService) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if s.getFn != nil {
		return s.getFn(ctx, id)
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
}

func (s stubOrdersService) ListForUser(ctx context.Context, email string) ([]models.Order, error) {
	if s.listFn != nil {
		return s.listFn(ctx, email)
	}
	return nil, nil
}

func (s stubOrdersService) SetDeliveryStatus(ctx context.Context, orderID uuid.UUID, raw string) (*models.Order, error) {
	if s.setFn != nil {
		return s.setFn(ctx, orderID, raw)
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
}

func withOrderID(r *http.Request, orderID uuid.UUID) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("orderId", orderID.String())
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, routeCtx))
}

func TestAdminSetDeliveryStatus(t *testing.T) {
	orderID := uuid.New()
	svc := stubOrdersService{
		setFn: func(ctx context.Context, id uuid.UUID, raw string) (*models.Order, error) {
			if id != orderID {
				t.Fatalf("unexpected id %s", id)
			}
			if raw != "Out for Delivery" {
				t.Fatalf("unexpected status %q", raw)
			}
			return &models.Order{ID: id, DeliveryStatus: enums.DeliveryStatusOutForDel}, nil
		},
	}

	body := bytes.NewBufferString(`{"status":"Out for Delivery"}`)
	req := withOrderID(httptest.NewRequest(http.MethodPost, "/", body), orderID)
	resp := httptest.NewRecorder()
	AdminSetDeliveryStatus(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}

	var envelope struct {
		Data orderView `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.DeliveryStatus != "Out for Delivery" {
		t.Fatalf("unexpected payload %v", envelope.Data)
	}
}

func TestAdminSetDeliveryStatusInvalidOrderID(t *testing.T) {
	body := bytes.NewBufferString(`{"status":"Delivered"}`)
	req := httptest.NewRequest(http.MethodPost, "/", body)
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("orderId", "not-a-uuid")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))

	resp := httptest.NewRecorder()
	AdminSetDeliveryStatus(stubOrdersService{}, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAdminSetDeliveryStatusStateConflict(t *testing.T) {
	orderID := uuid.New()
	svc := stubOrdersService{
		setFn: func(ctx context.Context, id uuid.UUID, raw string) (*models.Order, error) {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "delivery status cannot move backward")
		},
	}

	body := bytes.NewBufferString(`{"status":"Order Placed"}`)
	req := withOrderID(httptest.NewRequest(http.MethodPost, "/", body), orderID)
	resp := httptest.NewRecorder()
	AdminSetDeliveryStatus(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}

	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Error.Code != "STATE_CONFLICT" {
		t.Fatalf("unexpected error code %q", envelope.Error.Code)
	}
}

func TestAdminSetDeliveryStatusMissingBodyField(t *testing.T) {
	orderID := uuid.New()
	body := bytes.NewBufferString(`{}`)
	req := withOrderID(httptest.NewRequest(http.MethodPost, "/", body), orderID)
	resp := httptest.NewRecorder()
	AdminSetDeliveryStatus(stubOrdersService{}, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}
