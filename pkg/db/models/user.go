package models

import (
	"time"

	"github.com/google/uuid"

	dbtypes "github.com/aurelle/storefront-backend/pkg/db/types"
)

// User is the account record the core consults for order linkage. OrderIDs is
// an append-only denormalized index of placed orders; queries for a user's
// orders must filter the orders table by email instead of trusting this list.
type User struct {
	ID        uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email     string            `gorm:"column:email;uniqueIndex;not null"`
	FullName  string            `gorm:"column:full_name"`
	OrderIDs  dbtypes.UUIDArray `gorm:"column:order_ids;type:uuid[]"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
