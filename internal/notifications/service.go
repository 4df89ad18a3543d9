package notifications

import (
	"context"
	"fmt"
	"strings"

	"github.com/aurelle/storefront-backend/pkg/db/models"
	"github.com/aurelle/storefront-backend/pkg/logger"
)

// Sender is the confirmation hook the checkout flow calls after an order is
// durably persisted. Implementations must be safe to fail; the order stands
// regardless.
type Sender interface {
	SendOrderConfirmation(ctx context.Context, order *models.Order) error
}

type sender struct {
	mailer *Mailer
	logger *logger.Logger
}

// NewSender wires the confirmation sender.
func NewSender(mailer *Mailer, logg *logger.Logger) Sender {
	return &sender{mailer: mailer, logger: logg}
}

func (s *sender) SendOrderConfirmation(ctx context.Context, order *models.Order) error {
	if order == nil {
		return fmt.Errorf("order is required")
	}

	var lines []string
	for _, item := range order.Items {
		lines = append(lines, fmt.Sprintf("%d x %s @ %s", item.Qty, item.Name, item.UnitPrice.StringFixed(2)))
	}
	body := fmt.Sprintf(
		"Thanks for your order!\n\nOrder %s\n%s\nTotal: %s\nPayment: %s (%s)\n",
		order.ID,
		strings.Join(lines, "\n"),
		order.Total.StringFixed(2),
		order.PaymentMethod,
		order.PaymentStatus,
	)

	return s.mailer.Send(ctx, Message{
		To:      order.UserEmail,
		Subject: fmt.Sprintf("Order confirmation %s", order.ID),
		Body:    body,
	})
}
