package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/aurelle/storefront-backend/pkg/db/models"
	"github.com/aurelle/storefront-backend/pkg/enums"
	"github.com/aurelle/storefront-backend/pkg/types"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	ordersDDL := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  user_email TEXT NOT NULL,
  shipping_address TEXT,
  payment_method TEXT NOT NULL,
  payment_status TEXT NOT NULL DEFAULT 'pending',
  gateway_intent_id TEXT,
  gateway_payment_id TEXT,
  total NUMERIC NOT NULL,
  delivery_status TEXT NOT NULL DEFAULT 'Order Placed',
  placed_at DATETIME,
  out_for_delivery_at DATETIME,
  delivered_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	itemsDDL := `
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT,
  catalog_ref TEXT,
  name TEXT NOT NULL,
  unit_price NUMERIC NOT NULL,
  qty INTEGER NOT NULL,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(ordersDDL).Error)
	require.NoError(t, db.Exec(itemsDDL).Error)
	return db
}

func testAddress() types.ShippingAddress {
	return types.ShippingAddress{
		FullName:   "Asha Rao",
		Phone:      "+919800000000",
		Line1:      "14 MG Road",
		City:       "Bengaluru",
		State:      "Karnataka",
		PostalCode: "560001",
	}
}

func buildOrder(t *testing.T, db *gorm.DB, email string, created time.Time, items ...models.OrderItem) *models.Order {
	t.Helper()

	total := decimal.Zero
	for i := range items {
		items[i].ID = uuid.New()
		total = total.Add(items[i].UnitPrice.Mul(decimal.NewFromInt(int64(items[i].Qty))))
	}
	order := &models.Order{
		ID:              uuid.New(),
		UserEmail:       email,
		ShippingAddress: testAddress(),
		PaymentMethod:   enums.PaymentMethodCOD,
		PaymentStatus:   enums.PaymentStatusPending,
		Total:           total,
		DeliveryStatus:  enums.DeliveryStatusPlaced,
		Items:           items,
		CreatedAt:       created,
		UpdatedAt:       created,
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func lineItem(name string, price string, qty int) models.OrderItem {
	return models.OrderItem{
		Name:      name,
		UnitPrice: decimal.RequireFromString(price),
		Qty:       qty,
	}
}

func TestRepositoryCreateAndFindByID(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	order := &models.Order{
		ID:              uuid.New(),
		UserEmail:       "asha@example.com",
		ShippingAddress: testAddress(),
		PaymentMethod:   enums.PaymentMethodCard,
		PaymentStatus:   enums.PaymentStatusPaid,
		Total:           decimal.RequireFromString("1000.00"),
		DeliveryStatus:  enums.DeliveryStatusPlaced,
		Items: []models.OrderItem{
			{ID: uuid.New(), Name: "Linen Cushion", UnitPrice: decimal.RequireFromString("500.00"), Qty: 2},
		},
	}
	_, err := repo.Create(context.Background(), order)
	require.NoError(t, err)

	found, err := repo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	require.Len(t, found.Items, 1)
	assert.Equal(t, "asha@example.com", found.UserEmail)
	assert.Equal(t, enums.PaymentStatusPaid, found.PaymentStatus)
	assert.True(t, found.Total.Equal(decimal.RequireFromString("1000.00")))
	assert.Equal(t, 2, found.Items[0].Qty)
	assert.Equal(t, "Bengaluru", found.ShippingAddress.City)
}

func TestRepositoryFindByIDMissing(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	_, err := repo.FindByID(context.Background(), uuid.New())
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositoryListByUserEmailNewestFirst(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	now := time.Now().UTC()
	older := buildOrder(t, db, "asha@example.com", now.Add(-2*time.Hour), lineItem("Candle", "150.00", 1))
	newer := buildOrder(t, db, "asha@example.com", now, lineItem("Vase", "900.00", 1))
	buildOrder(t, db, "other@example.com", now, lineItem("Rug", "2500.00", 1))

	list, err := repo.ListByUserEmail(context.Background(), "asha@example.com")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)
	assert.Equal(t, older.ID, list[1].ID)
	require.Len(t, list[0].Items, 1)
}

func TestRepositoryListCreatedBetweenBounds(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	start := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(7 * 24 * time.Hour)

	inside := buildOrder(t, db, "a@example.com", start, lineItem("Candle", "150.00", 1))
	buildOrder(t, db, "b@example.com", start.Add(-time.Second), lineItem("Candle", "150.00", 1))
	buildOrder(t, db, "c@example.com", end, lineItem("Candle", "150.00", 1))

	list, err := repo.ListCreatedBetween(context.Background(), start, end)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, inside.ID, list[0].ID)
}

func TestRepositoryUpdateDeliveryColumns(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	order := buildOrder(t, db, "asha@example.com", time.Now().UTC(), lineItem("Vase", "900.00", 1))

	shipped := time.Date(2026, 2, 3, 10, 0, 0, 0, time.UTC)
	err := repo.Update(context.Background(), order.ID, map[string]interface{}{
		"delivery_status":     enums.DeliveryStatusOutForDel,
		"out_for_delivery_at": shipped,
	})
	require.NoError(t, err)

	found, err := repo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.DeliveryStatusOutForDel, found.DeliveryStatus)
	require.NotNil(t, found.OutForDeliveryAt)
	assert.True(t, found.OutForDeliveryAt.Equal(shipped))
}
