package razorpay

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	rzpsdk "github.com/razorpay/razorpay-go"

	"github.com/aurelle/storefront-backend/pkg/config"
	pkgerrors "github.com/aurelle/storefront-backend/pkg/errors"
	"github.com/aurelle/storefront-backend/pkg/logger"
)

var (
	errKeyIDRequired  = errors.New("razorpay key id is required")
	errSecretRequired = errors.New("razorpay key secret is required")
)

// Client wraps the Razorpay SDK for intent creation and owns the HMAC check
// that proves a completed payment originated from the gateway.
type Client struct {
	sdk      *rzpsdk.Client
	keyID    string
	secret   string
	currency string
	logger   *logger.Logger
}

// Intent is the gateway-side reservation created before the user pays.
type Intent struct {
	IntentID    string `json:"intent_id"`
	AmountPaise int64  `json:"amount_paise"`
	Currency    string `json:"currency"`
}

// NewClient initializes the gateway wrapper and validates credentials once.
func NewClient(ctx context.Context, cfg config.RazorpayConfig, logg *logger.Logger) (*Client, error) {
	keyID := strings.TrimSpace(cfg.KeyID)
	if keyID == "" {
		return nil, errKeyIDRequired
	}
	secret := strings.TrimSpace(cfg.KeySecret)
	if secret == "" {
		return nil, errSecretRequired
	}

	currency := strings.ToUpper(strings.TrimSpace(cfg.Currency))
	if currency == "" {
		currency = "INR"
	}

	c := &Client{
		sdk:      rzpsdk.NewClient(keyID, secret),
		keyID:    keyID,
		secret:   secret,
		currency: currency,
		logger:   logg,
	}

	if logg != nil {
		logg.Info(ctx, "razorpay client initialized")
	}
	return c, nil
}

// KeyID returns the public gateway key handed to checkout clients.
func (c *Client) KeyID() string {
	if c == nil {
		return ""
	}
	return c.keyID
}

// DefaultCurrency reports the configured settlement currency.
func (c *Client) DefaultCurrency() string {
	if c == nil {
		return ""
	}
	return c.currency
}

// CreateIntent registers a payment intent with the gateway for the given
// amount in minor units. No local state is written; a gateway failure leaves
// nothing to clean up.
func (c *Client) CreateIntent(ctx context.Context, amountPaise int64, currency string, notes map[string]string) (*Intent, error) {
	if amountPaise <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be a positive integer in minor units")
	}
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		currency = c.currency
	}

	data := map[string]interface{}{
		"amount":   amountPaise,
		"currency": currency,
	}
	if len(notes) > 0 {
		noteData := make(map[string]interface{}, len(notes))
		for k, v := range notes {
			noteData[k] = v
		}
		data["notes"] = noteData
	}

	body, err := c.sdk.Order.Create(data, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeGateway, err, "create payment intent")
	}

	intentID, _ := body["id"].(string)
	if intentID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeGateway, "gateway response missing intent id")
	}

	if c.logger != nil {
		ctx = c.logger.WithField(ctx, "intent_id", intentID)
		c.logger.Info(ctx, "payment intent created")
	}

	return &Intent{
		IntentID:    intentID,
		AmountPaise: amountPaise,
		Currency:    currency,
	}, nil
}

// VerifySignature checks the gateway's proof of payment. All three inputs are
// required; the comparison is constant-time. A mismatch is terminal for the
// attempt and is never retried here.
func (c *Client) VerifySignature(intentID, paymentID, signature string) error {
	var missing []string
	if strings.TrimSpace(intentID) == "" {
		missing = append(missing, "intent_id")
	}
	if strings.TrimSpace(paymentID) == "" {
		missing = append(missing, "payment_id")
	}
	if strings.TrimSpace(signature) == "" {
		missing = append(missing, "signature")
	}
	if len(missing) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment verification fields missing").
			WithDetails(map[string]any{"missing": missing})
	}

	expected := Sign(c.secret, intentID, paymentID)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return pkgerrors.New(pkgerrors.CodeSignature, "payment signature mismatch")
	}
	return nil
}

// Sign computes the hex HMAC-SHA256 of "intentID|paymentID" with the secret.
// This is the exact payload the gateway signs when a payment completes.
func Sign(secret, intentID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(intentID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}
