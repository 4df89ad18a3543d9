package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItem is a price-frozen line item snapshot. ProductID references the
// catalog row when it was known at order time; CatalogRef carries the external
// catalog identifier some clients submit instead. Catalog price changes never
// retroactively alter these rows.
type OrderItem struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID    uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID  *uuid.UUID      `gorm:"column:product_id;type:uuid"`
	CatalogRef string          `gorm:"column:catalog_ref"`
	Name       string          `gorm:"column:name;not null"`
	UnitPrice  decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Qty        int             `gorm:"column:qty;not null"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
}
