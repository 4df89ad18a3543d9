package checkout

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/aurelle/storefront-backend/internal/notifications"
	"github.com/aurelle/storefront-backend/internal/orders"
	"github.com/aurelle/storefront-backend/pkg/db/models"
	"github.com/aurelle/storefront-backend/pkg/enums"
	apperrors "github.com/aurelle/storefront-backend/pkg/errors"
	"github.com/aurelle/storefront-backend/pkg/logger"
	"github.com/aurelle/storefront-backend/pkg/metrics"
	"github.com/aurelle/storefront-backend/pkg/razorpay"
	"github.com/aurelle/storefront-backend/pkg/types"
)

// Gateway is the payment gateway surface checkout depends on.
type Gateway interface {
	CreateIntent(ctx context.Context, amountPaise int64, currency string, notes map[string]string) (*razorpay.Intent, error)
	VerifySignature(intentID, paymentID, signature string) error
	DefaultCurrency() string
}

// UserLinker appends a placed order to the user's order index.
type UserLinker interface {
	AppendOrderID(ctx context.Context, email string, orderID uuid.UUID) error
}

// CartClearer empties the user's cart after a successful order.
type CartClearer interface {
	Clear(ctx context.Context, email string) error
}

// ItemInput is one order line as submitted by the client. Prices are the
// snapshot the client saw; the service recomputes and cross-checks the total.
type ItemInput struct {
	ProductID  *uuid.UUID
	CatalogRef string
	Name       string
	UnitPrice  decimal.Decimal
	Qty        int
}

// PaymentProof carries the gateway's evidence that an online payment
// completed.
type PaymentProof struct {
	IntentID  string
	PaymentID string
	Signature string
}

// PlaceOrderInput is everything needed to place one order.
type PlaceOrderInput struct {
	UserEmail   string
	Address     types.ShippingAddress
	Method      enums.PaymentMethod
	Items       []ItemInput
	ClientTotal decimal.Decimal
	Proof       *PaymentProof
}

// Service orchestrates order placement: validation, payment verification,
// atomic persistence, then best-effort secondary writes.
type Service interface {
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*models.Order, error)
	CreateIntent(ctx context.Context, amount decimal.Decimal, currency string, notes map[string]string) (*razorpay.Intent, error)
	VerifyPayment(ctx context.Context, intentID, paymentID, signature string) error
}

type service struct {
	gateway  Gateway
	orders   orders.Repository
	tx       orders.TxRunner
	users    UserLinker
	cart     CartClearer
	notifier notifications.Sender
	metrics  *metrics.CheckoutMetrics
	logger   *logger.Logger
	now      func() time.Time
}

// NewService wires the checkout orchestrator. The metrics sink may be nil;
// everything else is required.
func NewService(
	gateway Gateway,
	ordersRepo orders.Repository,
	tx orders.TxRunner,
	users UserLinker,
	cart CartClearer,
	notifier notifications.Sender,
	m *metrics.CheckoutMetrics,
	logg *logger.Logger,
) (Service, error) {
	if gateway == nil {
		return nil, apperrors.New(apperrors.CodeInternal, "gateway client is required")
	}
	if ordersRepo == nil {
		return nil, apperrors.New(apperrors.CodeInternal, "orders repository is required")
	}
	if tx == nil {
		return nil, apperrors.New(apperrors.CodeInternal, "tx runner is required")
	}
	if users == nil {
		return nil, apperrors.New(apperrors.CodeInternal, "user linker is required")
	}
	if cart == nil {
		return nil, apperrors.New(apperrors.CodeInternal, "cart clearer is required")
	}
	if notifier == nil {
		return nil, apperrors.New(apperrors.CodeInternal, "notification sender is required")
	}
	if logg == nil {
		return nil, apperrors.New(apperrors.CodeInternal, "logger is required")
	}
	return &service{
		gateway:  gateway,
		orders:   ordersRepo,
		tx:       tx,
		users:    users,
		cart:     cart,
		notifier: notifier,
		metrics:  m,
		logger:   logg,
		now:      time.Now,
	}, nil
}

// PaiseFromAmount converts a major-unit amount to gateway minor units.
func PaiseFromAmount(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// CreateIntent registers a gateway intent for the given major-unit amount.
// Nothing is persisted locally; an abandoned intent costs nothing.
func (s *service) CreateIntent(ctx context.Context, amount decimal.Decimal, currency string, notes map[string]string) (*razorpay.Intent, error) {
	intent, err := s.gateway.CreateIntent(ctx, PaiseFromAmount(amount), currency, notes)
	if err != nil {
		s.metrics.IncGatewayCall("create_intent", "error")
		return nil, err
	}
	s.metrics.IncGatewayCall("create_intent", "ok")
	return intent, nil
}

// VerifyPayment proxies the gateway signature check for clients that confirm
// a payment before submitting the order.
func (s *service) VerifyPayment(ctx context.Context, intentID, paymentID, signature string) error {
	if err := s.gateway.VerifySignature(intentID, paymentID, signature); err != nil {
		s.metrics.IncGatewayCall("verify_signature", "error")
		return err
	}
	s.metrics.IncGatewayCall("verify_signature", "ok")
	return nil
}

// PlaceOrder runs the full checkout flow. Validation and payment verification
// happen before any write; the order and its items are persisted atomically;
// the user index, cart cleanup and confirmation email run after commit and
// never fail the order.
func (s *service) PlaceOrder(ctx context.Context, input PlaceOrderInput) (*models.Order, error) {
	started := s.now()
	ctx = s.logger.WithUserEmail(ctx, input.UserEmail)

	if err := s.validate(input); err != nil {
		s.metrics.IncFailure(string(apperrors.As(err).Code()))
		return nil, err
	}

	total := decimal.Zero
	for _, item := range input.Items {
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Qty))))
	}
	if !input.ClientTotal.IsZero() && !input.ClientTotal.Equal(total) {
		err := apperrors.New(apperrors.CodeValidation, "order total mismatch").
			WithDetails(map[string]interface{}{
				"submitted": input.ClientTotal.StringFixed(2),
				"computed":  total.StringFixed(2),
			})
		s.metrics.IncFailure(string(apperrors.CodeValidation))
		return nil, err
	}

	order := &models.Order{
		UserEmail:       input.UserEmail,
		ShippingAddress: input.Address,
		PaymentMethod:   input.Method,
		PaymentStatus:   enums.PaymentStatusPending,
		Total:           total,
		DeliveryStatus:  enums.DeliveryStatusPlaced,
	}
	placedAt := started.UTC()
	order.PlacedAt = &placedAt

	if input.Method == enums.PaymentMethodCard {
		proof := input.Proof
		if err := s.gateway.VerifySignature(proof.IntentID, proof.PaymentID, proof.Signature); err != nil {
			s.metrics.IncGatewayCall("verify_signature", "error")
			s.metrics.IncFailure(string(apperrors.As(err).Code()))
			return nil, err
		}
		s.metrics.IncGatewayCall("verify_signature", "ok")
		order.PaymentStatus = enums.PaymentStatusPaid
		order.GatewayIntentID = &proof.IntentID
		order.GatewayPaymentID = &proof.PaymentID
	}

	for _, item := range input.Items {
		order.Items = append(order.Items, models.OrderItem{
			ProductID:  item.ProductID,
			CatalogRef: item.CatalogRef,
			Name:       item.Name,
			UnitPrice:  item.UnitPrice,
			Qty:        item.Qty,
		})
	}

	txErr := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		_, err := s.orders.WithTx(tx).Create(ctx, order)
		return err
	})
	if txErr != nil {
		s.metrics.IncFailure(string(apperrors.CodeDependency))
		return nil, apperrors.Wrap(apperrors.CodeDependency, txErr, "persist order")
	}

	s.metrics.IncOrderPlaced(string(input.Method))
	s.metrics.ObserveDuration(string(input.Method), s.now().Sub(started))

	s.runSecondaryWrites(ctx, order)

	logCtx := s.logger.WithOrderID(ctx, order.ID.String())
	s.logger.Info(logCtx, "order placed")
	return order, nil
}

// runSecondaryWrites performs the post-commit conveniences. Failures are
// logged and swallowed; the order already exists and must be reported as
// placed.
func (s *service) runSecondaryWrites(ctx context.Context, order *models.Order) {
	var errs error
	if err := s.users.AppendOrderID(ctx, order.UserEmail, order.ID); err != nil {
		errs = multierr.Append(errs, err)
	}
	if err := s.cart.Clear(ctx, order.UserEmail); err != nil {
		errs = multierr.Append(errs, err)
	}
	if err := s.notifier.SendOrderConfirmation(ctx, order); err != nil {
		errs = multierr.Append(errs, err)
	}
	if errs != nil {
		logCtx := s.logger.WithOrderID(ctx, order.ID.String())
		s.logger.Warn(logCtx, "secondary writes after order placement failed: "+errs.Error())
	}
}

func (s *service) validate(input PlaceOrderInput) error {
	fields := map[string]string{}

	if input.UserEmail == "" {
		fields["userEmail"] = "is required"
	}
	if missing := input.Address.MissingFields(); len(missing) > 0 {
		for _, field := range missing {
			fields["shippingAddress."+field] = "is required"
		}
	}
	if !input.Method.IsValid() {
		fields["paymentMethod"] = "must be one of: card, cod"
	}
	if len(input.Items) == 0 {
		fields["items"] = "at least one item is required"
	}
	for i, item := range input.Items {
		if item.Name == "" {
			fields[itemField(i, "name")] = "is required"
		}
		if item.Qty <= 0 {
			fields[itemField(i, "qty")] = "must be positive"
		}
		if item.UnitPrice.IsNegative() {
			fields[itemField(i, "unitPrice")] = "must not be negative"
		}
		if (item.ProductID == nil || *item.ProductID == uuid.Nil) && item.CatalogRef == "" {
			fields[itemField(i, "productId")] = "product id or catalog ref is required"
		}
	}
	if input.Method == enums.PaymentMethodCard {
		if input.Proof == nil {
			fields["payment"] = "payment proof is required for card orders"
		}
	}

	if len(fields) > 0 {
		return apperrors.New(apperrors.CodeValidation, "order validation failed").
			WithDetails(map[string]interface{}{"fields": fields})
	}
	return nil
}

func itemField(index int, name string) string {
	return "items[" + strconv.Itoa(index) + "]." + name
}
