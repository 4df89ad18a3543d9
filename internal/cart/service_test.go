package cart

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/aurelle/storefront-backend/internal/products"
	"github.com/aurelle/storefront-backend/pkg/db/models"
	apperrors "github.com/aurelle/storefront-backend/pkg/errors"
	"github.com/aurelle/storefront-backend/pkg/logger"
)

type stubCartRepo struct {
	byEmail map[string]*models.CartRecord
}

func newStubCartRepo() *stubCartRepo {
	return &stubCartRepo{byEmail: map[string]*models.CartRecord{}}
}

func (s *stubCartRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubCartRepo) FindByUserEmail(ctx context.Context, email string) (*models.CartRecord, error) {
	record, ok := s.byEmail[email]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return record, nil
}

func (s *stubCartRepo) EnsureForUserEmail(ctx context.Context, email string) (*models.CartRecord, error) {
	if record, ok := s.byEmail[email]; ok {
		return record, nil
	}
	fresh := &models.CartRecord{ID: uuid.New(), UserEmail: email}
	s.byEmail[email] = fresh
	return fresh, nil
}

func (s *stubCartRepo) UpsertItem(ctx context.Context, cartID uuid.UUID, item *models.CartItem) error {
	for _, record := range s.byEmail {
		if record.ID != cartID {
			continue
		}
		for i := range record.Items {
			if record.Items[i].ProductID == item.ProductID {
				record.Items[i].Name = item.Name
				record.Items[i].UnitPrice = item.UnitPrice
				record.Items[i].Qty = item.Qty
				return nil
			}
		}
		item.CartID = cartID
		record.Items = append(record.Items, *item)
		return nil
	}
	return gorm.ErrRecordNotFound
}

func (s *stubCartRepo) RemoveItem(ctx context.Context, cartID uuid.UUID, productID uuid.UUID) error {
	for _, record := range s.byEmail {
		if record.ID != cartID {
			continue
		}
		kept := record.Items[:0]
		for _, line := range record.Items {
			if line.ProductID != productID {
				kept = append(kept, line)
			}
		}
		record.Items = kept
		return nil
	}
	return nil
}

func (s *stubCartRepo) Clear(ctx context.Context, email string) error {
	if record, ok := s.byEmail[email]; ok {
		record.Items = nil
	}
	return nil
}

type stubCatalog struct {
	byID map[uuid.UUID]*models.Product
}

func (s stubCatalog) WithTx(tx *gorm.DB) products.Repository { return s }

func (s stubCatalog) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, ok := s.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return product, nil
}

func (s stubCatalog) FindByCatalogRef(ctx context.Context, ref string) (*models.Product, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s stubCatalog) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	return nil, nil
}

func (s stubCatalog) FindByCatalogRefs(ctx context.Context, refs []string) ([]models.Product, error) {
	return nil, nil
}

func testCartLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func cushion() *models.Product {
	return &models.Product{
		ID:         uuid.New(),
		CatalogRef: "cushion-01",
		Name:       "Linen Cushion",
		Category:   "home decor",
		Price:      decimal.RequireFromString("500.00"),
	}
}

func TestSetLineSnapshotsCatalogPrice(t *testing.T) {
	product := cushion()
	catalog := stubCatalog{byID: map[uuid.UUID]*models.Product{product.ID: product}}
	svc, err := NewService(newStubCartRepo(), catalog, testCartLogger())
	require.NoError(t, err)

	view, err := svc.SetLine(context.Background(), "asha@example.com", product.ID, 2)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, "Linen Cushion", view.Items[0].Name)
	assert.True(t, view.Items[0].UnitPrice.Equal(decimal.RequireFromString("500.00")))
	assert.Equal(t, 2, view.Items[0].Qty)
	assert.True(t, view.Total.Equal(decimal.RequireFromString("1000.00")))
}

func TestSetLineReplacesExistingQuantity(t *testing.T) {
	product := cushion()
	catalog := stubCatalog{byID: map[uuid.UUID]*models.Product{product.ID: product}}
	svc, err := NewService(newStubCartRepo(), catalog, testCartLogger())
	require.NoError(t, err)

	_, err = svc.SetLine(context.Background(), "asha@example.com", product.ID, 2)
	require.NoError(t, err)
	view, err := svc.SetLine(context.Background(), "asha@example.com", product.ID, 5)
	require.NoError(t, err)

	require.Len(t, view.Items, 1)
	assert.Equal(t, 5, view.Items[0].Qty)
	assert.True(t, view.Total.Equal(decimal.RequireFromString("2500.00")))
}

func TestSetLineZeroQtyRemovesLine(t *testing.T) {
	product := cushion()
	catalog := stubCatalog{byID: map[uuid.UUID]*models.Product{product.ID: product}}
	svc, err := NewService(newStubCartRepo(), catalog, testCartLogger())
	require.NoError(t, err)

	_, err = svc.SetLine(context.Background(), "asha@example.com", product.ID, 2)
	require.NoError(t, err)
	view, err := svc.SetLine(context.Background(), "asha@example.com", product.ID, 0)
	require.NoError(t, err)

	assert.Empty(t, view.Items)
	assert.True(t, view.Total.IsZero())
}

func TestSetLineUnknownProduct(t *testing.T) {
	catalog := stubCatalog{byID: map[uuid.UUID]*models.Product{}}
	svc, err := NewService(newStubCartRepo(), catalog, testCartLogger())
	require.NoError(t, err)

	_, err = svc.SetLine(context.Background(), "asha@example.com", uuid.New(), 1)
	require.Error(t, err)
	typed := apperrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, apperrors.CodeNotFound, typed.Code())
}

func TestGetCreatesEmptyCartOnFirstTouch(t *testing.T) {
	catalog := stubCatalog{byID: map[uuid.UUID]*models.Product{}}
	svc, err := NewService(newStubCartRepo(), catalog, testCartLogger())
	require.NoError(t, err)

	view, err := svc.Get(context.Background(), "new@example.com")
	require.NoError(t, err)
	assert.Empty(t, view.Items)
	assert.True(t, view.Total.IsZero())
}

func TestClearEmptiesCart(t *testing.T) {
	product := cushion()
	catalog := stubCatalog{byID: map[uuid.UUID]*models.Product{product.ID: product}}
	repo := newStubCartRepo()
	svc, err := NewService(repo, catalog, testCartLogger())
	require.NoError(t, err)

	_, err = svc.SetLine(context.Background(), "asha@example.com", product.ID, 3)
	require.NoError(t, err)
	require.NoError(t, svc.Clear(context.Background(), "asha@example.com"))

	view, err := svc.Get(context.Background(), "asha@example.com")
	require.NoError(t, err)
	assert.Empty(t, view.Items)
}
