package orders

import (
	"context"
	"errors"
	"time"

	"github.com/aurelle/storefront-backend/pkg/db/models"
	"github.com/aurelle/storefront-backend/pkg/enums"
	apperrors "github.com/aurelle/storefront-backend/pkg/errors"
	"github.com/aurelle/storefront-backend/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TxRunner executes a function inside a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service owns reads of the order record and the delivery-status state
// machine. Order creation goes through the checkout service.
type Service interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Order, error)
	ListForUser(ctx context.Context, email string) ([]models.Order, error)
	SetDeliveryStatus(ctx context.Context, orderID uuid.UUID, raw string) (*models.Order, error)
}

type service struct {
	repo   Repository
	tx     TxRunner
	logger *logger.Logger
	now    func() time.Time
}

// NewService wires the orders service. All collaborators are required.
func NewService(repo Repository, tx TxRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, apperrors.New(apperrors.CodeInternal, "orders repository is required")
	}
	if tx == nil {
		return nil, apperrors.New(apperrors.CodeInternal, "tx runner is required")
	}
	if logg == nil {
		return nil, apperrors.New(apperrors.CodeInternal, "logger is required")
	}
	return &service{repo: repo, tx: tx, logger: logg, now: time.Now}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "order not found")
		}
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) ListForUser(ctx context.Context, email string) ([]models.Order, error) {
	if email == "" {
		return nil, apperrors.New(apperrors.CodeValidation, "user email is required")
	}
	rows, err := s.repo.ListByUserEmail(ctx, email)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "list orders")
	}
	return rows, nil
}

// SetDeliveryStatus advances the order along the delivery state machine.
// Re-applying the current status is an idempotent no-op. Backward moves and
// unknown statuses are rejected. Each milestone timestamp is written once;
// replays never overwrite it.
func (s *service) SetDeliveryStatus(ctx context.Context, orderID uuid.UUID, raw string) (*models.Order, error) {
	next, err := enums.ParseDeliveryStatus(raw)
	if err != nil {
		return nil, apperrors.New(apperrors.CodeValidation, "unknown delivery status").
			WithDetails(map[string]interface{}{"status": raw})
	}

	var updated *models.Order
	txErr := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.New(apperrors.CodeNotFound, "order not found")
			}
			return apperrors.Wrap(apperrors.CodeDependency, err, "load order")
		}

		if order.DeliveryStatus == next {
			updated = order
			return nil
		}
		if !order.DeliveryStatus.CanTransitionTo(next) {
			return apperrors.New(apperrors.CodeStateConflict, "delivery status cannot move backward").
				WithDetails(map[string]interface{}{
					"current":   order.DeliveryStatus.String(),
					"requested": next.String(),
				})
		}

		updates := map[string]interface{}{"delivery_status": next}
		now := s.now().UTC()
		switch next {
		case enums.DeliveryStatusOutForDel:
			if order.OutForDeliveryAt == nil {
				updates["out_for_delivery_at"] = now
				order.OutForDeliveryAt = &now
			}
		case enums.DeliveryStatusDelivered:
			if order.DeliveredAt == nil {
				updates["delivered_at"] = now
				order.DeliveredAt = &now
			}
		}

		if err := repo.Update(ctx, orderID, updates); err != nil {
			return apperrors.Wrap(apperrors.CodeDependency, err, "update delivery status")
		}

		order.DeliveryStatus = next
		updated = order
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	logCtx := s.logger.WithFields(ctx, map[string]any{
		"order_id": orderID.String(),
		"status":   updated.DeliveryStatus.String(),
	})
	s.logger.Info(logCtx, "delivery status updated")
	return updated, nil
}
