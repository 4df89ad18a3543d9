package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/aurelle/storefront-backend/pkg/enums"
	"github.com/aurelle/storefront-backend/pkg/types"
)

// Order is the durable record of a placed order. Created once; mutated only by
// delivery-status and payment-status transitions, never deleted in normal
// operation. Address and line items are snapshots taken at order time.
type Order struct {
	ID               uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserEmail        string                `gorm:"column:user_email;not null;index"`
	ShippingAddress  types.ShippingAddress `gorm:"column:shipping_address;type:jsonb;serializer:json"`
	PaymentMethod    enums.PaymentMethod   `gorm:"column:payment_method;type:text;not null"`
	PaymentStatus    enums.PaymentStatus   `gorm:"column:payment_status;type:text;not null;default:'pending'"`
	GatewayIntentID  *string               `gorm:"column:gateway_intent_id"`
	GatewayPaymentID *string               `gorm:"column:gateway_payment_id"`
	Total            decimal.Decimal       `gorm:"column:total;type:numeric(12,2);not null"`
	DeliveryStatus   enums.DeliveryStatus  `gorm:"column:delivery_status;type:text;not null;default:'Order Placed'"`
	PlacedAt         *time.Time            `gorm:"column:placed_at"`
	OutForDeliveryAt *time.Time            `gorm:"column:out_for_delivery_at"`
	DeliveredAt      *time.Time            `gorm:"column:delivered_at"`
	Items            []OrderItem           `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt        time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
