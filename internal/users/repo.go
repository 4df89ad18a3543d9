package users

import (
	"context"

	"github.com/aurelle/storefront-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository is the narrow account surface consumed by the order lifecycle:
// lookup by email plus the append-order-id convenience write.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	AppendOrderID(ctx context.Context, email string, orderID uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a users repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// AppendOrderID adds the order to the user's denormalized index. The index is
// rebuildable from the orders table, so the read-modify-write here is not
// required to be atomic with order persistence.
func (r *repository) AppendOrderID(ctx context.Context, email string, orderID uuid.UUID) error {
	user, err := r.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	for _, existing := range user.OrderIDs {
		if existing == orderID {
			return nil
		}
	}
	user.OrderIDs = append(user.OrderIDs, orderID)
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("email = ?", email).
		Update("order_ids", user.OrderIDs).Error
}
