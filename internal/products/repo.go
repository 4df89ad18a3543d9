package products

import (
	"context"

	"github.com/aurelle/storefront-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository is the narrow catalog surface the core consumes: lookups for
// display enrichment and identifier normalization. Catalog CRUD lives in
// another service. Soft-deleted products are invisible here, which is how
// historical order items referencing them fall out of aggregations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindByCatalogRef(ctx context.Context, ref string) (*models.Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
	FindByCatalogRefs(ctx context.Context, refs []string) ([]models.Product, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a products repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) FindByCatalogRef(ctx context.Context, ref string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Where("catalog_ref = ?", ref).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Where("id IN ?", ids).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) FindByCatalogRefs(ctx context.Context, refs []string) ([]models.Product, error) {
	if len(refs) == 0 {
		return nil, nil
	}
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Where("catalog_ref IN ?", refs).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
