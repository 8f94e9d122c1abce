package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// sendRequest is the JSON body posted to the mail gateway.
type sendRequest struct {
	To       string `json:"to"`
	Locale   string `json:"locale"`
	Subject  string `json:"subject"`
	BodyHTML string `json:"body_html"`
}

// GatewayMailer delivers mail by POSTing to an HTTP mail gateway.
// Outbound sends are throttled by a token-bucket limiter so a large
// dispatch run cannot flood the gateway. Burst equals the rate: no
// "saved up" burst above the configured per-second maximum.
type GatewayMailer struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
}

func NewGatewayMailer(baseURL string, timeout time.Duration, ratePerSec int, logger *zap.Logger) *GatewayMailer {
	return &GatewayMailer{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(ratePerSec), ratePerSec),
		logger:  logger,
	}
}

// Send posts the message and expects a 202 Accepted. Every failure mode —
// limiter interrupted, request build, transport, non-202 status — maps to
// delivered=false with an error log.
func (m *GatewayMailer) Send(ctx context.Context, to, locale, subject, bodyHTML string) bool {
	if err := m.limiter.Wait(ctx); err != nil {
		m.logger.Error("mail rate limiter interrupted", zap.Error(err))
		return false
	}

	payload, err := json.Marshal(sendRequest{
		To:       to,
		Locale:   locale,
		Subject:  subject,
		BodyHTML: bodyHTML,
	})
	if err != nil {
		m.logger.Error("marshal mail request", zap.Error(err))
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL, bytes.NewReader(payload))
	if err != nil {
		m.logger.Error("create mail request", zap.Error(err))
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		m.logger.Error("mail gateway request failed", zap.String("to", to), zap.Error(err))
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		m.logger.Error("mail gateway rejected message",
			zap.String("to", to), zap.Int("status", resp.StatusCode))
		return false
	}
	return true
}

var _ Mailer = (*GatewayMailer)(nil)
