package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is the catalog row the core reads for display enrichment and
// identifier normalization. Catalog CRUD lives outside this service; soft
// deletes keep historical order items resolvable to "gone from catalog".
type Product struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CatalogRef string          `gorm:"column:catalog_ref;uniqueIndex;not null"`
	Name       string          `gorm:"column:name;not null"`
	Category   string          `gorm:"column:category;not null"`
	Price      decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time       `gorm:"column:updated_at;autoUpdateTime"`
	DeletedAt  gorm.DeletedAt  `gorm:"column:deleted_at;index"`
}
