package cart

import (
	"context"
	"errors"

	"github.com/aurelle/storefront-backend/internal/products"
	"github.com/aurelle/storefront-backend/pkg/db/models"
	apperrors "github.com/aurelle/storefront-backend/pkg/errors"
	"github.com/aurelle/storefront-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Service is the cart surface the storefront consumes. Concurrent writes to
// the same cart are last-write-wins; the cart is a scratchpad, the order is
// the record.
type Service interface {
	Get(ctx context.Context, email string) (*CartView, error)
	SetLine(ctx context.Context, email string, productID uuid.UUID, qty int) (*CartView, error)
	Clear(ctx context.Context, email string) error
}

// CartView is the read model returned to controllers.
type CartView struct {
	Items []LineView      `json:"items"`
	Total decimal.Decimal `json:"total"`
}

type LineView struct {
	ProductID uuid.UUID       `json:"productId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Qty       int             `json:"qty"`
}

type service struct {
	repo     Repository
	products products.Repository
	logger   *logger.Logger
}

// NewService wires the cart service. All collaborators are required.
func NewService(repo Repository, prods products.Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, apperrors.New(apperrors.CodeInternal, "cart repository is required")
	}
	if prods == nil {
		return nil, apperrors.New(apperrors.CodeInternal, "products repository is required")
	}
	if logg == nil {
		return nil, apperrors.New(apperrors.CodeInternal, "logger is required")
	}
	return &service{repo: repo, products: prods, logger: logg}, nil
}

func (s *service) Get(ctx context.Context, email string) (*CartView, error) {
	if email == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "user email is required")
	}
	record, err := s.repo.EnsureForUserEmail(ctx, email)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "load cart")
	}
	return viewOf(record), nil
}

// SetLine sets the quantity for a product in the user's cart. Qty zero or
// below removes the line. The price and name are snapshotted from the catalog
// at write time.
func (s *service) SetLine(ctx context.Context, email string, productID uuid.UUID, qty int) (*CartView, error) {
	if email == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "user email is required")
	}
	if productID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "product id is required")
	}

	record, err := s.repo.EnsureForUserEmail(ctx, email)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "load cart")
	}

	if qty <= 0 {
		if err := s.repo.RemoveItem(ctx, record.ID, productID); err != nil {
			return nil, apperrors.Wrap(apperrors.CodeDependency, err, "remove cart line")
		}
		return s.Get(ctx, email)
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "product not found")
		}
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "load product")
	}

	line := &models.CartItem{
		ProductID: product.ID,
		Name:      product.Name,
		UnitPrice: product.Price,
		Qty:       qty,
	}
	if err := s.repo.UpsertItem(ctx, record.ID, line); err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "write cart line")
	}
	return s.Get(ctx, email)
}

func (s *service) Clear(ctx context.Context, email string) error {
	if email == "" {
		return apperrors.New(apperrors.CodeValidation, "user email is required")
	}
	if err := s.repo.Clear(ctx, email); err != nil {
		return apperrors.Wrap(apperrors.CodeDependency, err, "clear cart")
	}
	return nil
}

func viewOf(record *models.CartRecord) *CartView {
	view := &CartView{Items: make([]LineView, 0, len(record.Items)), Total: decimal.Zero}
	for _, item := range record.Items {
		view.Items = append(view.Items, LineView{
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Qty:       item.Qty,
		})
		view.Total = view.Total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Qty))))
	}
	return view
}
