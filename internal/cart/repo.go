package cart

import (
	"context"
	"errors"

	"github.com/aurelle/storefront-backend/pkg/db"
	"github.com/aurelle/storefront-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists per-user cart records keyed by email.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByUserEmail(ctx context.Context, email string) (*models.CartRecord, error)
	EnsureForUserEmail(ctx context.Context, email string) (*models.CartRecord, error)
	UpsertItem(ctx context.Context, cartID uuid.UUID, item *models.CartItem) error
	RemoveItem(ctx context.Context, cartID uuid.UUID, productID uuid.UUID) error
	Clear(ctx context.Context, email string) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByUserEmail(ctx context.Context, email string) (*models.CartRecord, error) {
	var record models.CartRecord
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("user_email = ?", email).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// EnsureForUserEmail returns the user's cart, creating an empty one on first
// touch.
func (r *repository) EnsureForUserEmail(ctx context.Context, email string) (*models.CartRecord, error) {
	record, err := r.FindByUserEmail(ctx, email)
	if err == nil {
		return record, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	fresh := &models.CartRecord{UserEmail: email}
	if err := r.db.WithContext(ctx).Create(fresh).Error; err != nil {
		// Concurrent first touch lost the create race; the other cart wins.
		if db.IsUniqueViolation(err, "cart_records_user_email_key") {
			return r.FindByUserEmail(ctx, email)
		}
		return nil, err
	}
	return fresh, nil
}

// UpsertItem replaces the line for the item's product, or inserts it when the
// product is not yet in the cart.
func (r *repository) UpsertItem(ctx context.Context, cartID uuid.UUID, item *models.CartItem) error {
	var existing models.CartItem
	err := r.db.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, item.ProductID).
		First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		item.CartID = cartID
		return r.db.WithContext(ctx).Create(item).Error
	}
	if err != nil {
		return err
	}

	return r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ?", existing.ID).
		Updates(map[string]interface{}{
			"name":       item.Name,
			"unit_price": item.UnitPrice,
			"qty":        item.Qty,
		}).Error
}

func (r *repository) RemoveItem(ctx context.Context, cartID uuid.UUID, productID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cartID, productID).
		Delete(&models.CartItem{}).Error
}

// Clear drops every line in the user's cart. Missing carts are a no-op.
func (r *repository) Clear(ctx context.Context, email string) error {
	record, err := r.FindByUserEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Where("cart_id = ?", record.ID).
		Delete(&models.CartItem{}).Error
}
