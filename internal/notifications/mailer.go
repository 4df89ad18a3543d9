package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aurelle/storefront-backend/pkg/config"
	"github.com/aurelle/storefront-backend/pkg/logger"
)

// Message is one outbound email.
type Message struct {
	To      string `json:"to"`
	From    string `json:"from"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Mailer delivers messages over the transactional mail provider's HTTP API.
// When no base URL is configured the mailer is disabled and Send logs and
// returns nil, which keeps dev environments quiet.
type Mailer struct {
	baseURL string
	apiKey  string
	from    string
	http    *http.Client
	logger  *logger.Logger
}

// NewMailer builds the mail client from configuration.
func NewMailer(cfg config.MailerConfig, logg *logger.Logger) *Mailer {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Mailer{
		baseURL: strings.TrimRight(strings.TrimSpace(cfg.APIBaseURL), "/"),
		apiKey:  cfg.APIKey,
		from:    cfg.FromAddress,
		http:    &http.Client{Timeout: timeout},
		logger:  logg,
	}
}

// Enabled reports whether a mail provider is configured.
func (m *Mailer) Enabled() bool {
	return m != nil && m.baseURL != ""
}

// Send posts the message to the provider. The caller decides whether a
// failure matters; this client only reports it.
func (m *Mailer) Send(ctx context.Context, msg Message) error {
	if !m.Enabled() {
		if m.logger != nil {
			m.logger.Info(ctx, "mailer disabled, dropping message")
		}
		return nil
	}
	if msg.From == "" {
		msg.From = m.from
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal mail payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+"/send", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build mail request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if m.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+m.apiKey)
	}

	resp, err := m.http.Do(req)
	if err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("mail provider returned %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
