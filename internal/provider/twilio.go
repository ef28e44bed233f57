// Package provider implements the Provider Adapter: a narrow send/fetch
// interface over the outbound messaging carrier, plus a single Twilio-like
// HTTP implementation (spec §5, grounded on the Twilio REST contract this
// system was built against).
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Notifuse/notifuse/internal/domain"
	"github.com/Notifuse/notifuse/pkg/logger"
)

// SendResult is the outcome of a single dispatch attempt.
type SendResult struct {
	ProviderSID string
	Status      string
}

// StatusResult is the outcome of a status fetch against the provider.
type StatusResult struct {
	ProviderSID string
	Status      string
}

// Adapter is the narrow contract the Orchestrator and Reconciler need from
// an outbound messaging carrier. A single concrete implementation
// (TwilioAdapter) is enough to satisfy it; multi-carrier routing is out of
// scope.
type Adapter interface {
	Send(ctx context.Context, to string, body string, channel domain.Channel) (*SendResult, error)
	FetchStatus(ctx context.Context, providerSID string) (*StatusResult, error)
}

// TwilioConfig holds the credentials and bounded timeout for the adapter.
type TwilioConfig struct {
	AccountSID     string
	AuthToken      string
	FromNumber     string
	RequestTimeout time.Duration
	// BaseURL overrides the Twilio REST API base URL; empty means the
	// real API. Tests point it at an httptest server.
	BaseURL string
}

// TwilioAdapter implements Adapter against the Twilio Programmable
// Messaging REST API. It formats the from/to addresses for WhatsApp per
// Twilio's "whatsapp:+E164" convention and every other Channel as a bare
// E.164 number.
type TwilioAdapter struct {
	cfg        TwilioConfig
	httpClient *http.Client
	log        logger.Logger
}

// NewTwilioAdapter constructs a TwilioAdapter. A RequestTimeout of zero
// defaults to 10 seconds, matching the bounded send timeout required by
// spec §5: a hung provider call must never stall the dispatch pipeline
// indefinitely.
func NewTwilioAdapter(cfg TwilioConfig, log logger.Logger) *TwilioAdapter {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = twilioBaseURL
	}
	return &TwilioAdapter{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		log:        log.WithField("component", "twilio_adapter"),
	}
}

const twilioBaseURL = "https://api.twilio.com/2010-04-01"

func formatForChannel(phone string, channel domain.Channel) string {
	if channel == domain.ChannelWhatsApp {
		return "whatsapp:" + phone
	}
	return phone
}

// Send dispatches a single message. On a non-2xx response it returns a
// *ClassifiedError built from the response body so callers can tell
// recipient-specific failures from provider-wide ones.
func (a *TwilioAdapter) Send(ctx context.Context, to string, body string, channel domain.Channel) (*SendResult, error) {
	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", a.cfg.BaseURL, a.cfg.AccountSID)

	form := url.Values{}
	form.Set("To", formatForChannel(to, channel))
	form.Set("From", formatForChannel(a.cfg.FromNumber, channel))
	form.Set("Body", body)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("provider: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(a.cfg.AccountSID, a.cfg.AuthToken)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, Classify(fmt.Errorf("provider: request failed: %w", err))
	}
	defer resp.Body.Close()

	var body2 struct {
		SID        string `json:"sid"`
		Status     string `json:"status"`
		Code       int    `json:"code"`
		Message    string `json:"message"`
		MoreInfo   string `json:"more_info"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body2); err != nil {
		return nil, Classify(fmt.Errorf("provider: decode response (status %d): %w", resp.StatusCode, err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		classified := Classify(fmt.Errorf("provider: status code: %d: %s", resp.StatusCode, body2.Message))
		classified.Code = fmt.Sprintf("%d", body2.Code)
		a.log.WithField("phone", to).WithField("status_code", resp.StatusCode).Error("provider send failed")
		return nil, classified
	}

	return &SendResult{ProviderSID: body2.SID, Status: body2.Status}, nil
}

// FetchStatus retrieves the current delivery status for a previously sent
// message, used by the Reconciler's orphan sweep when a delivery-status
// webhook never arrived.
func (a *TwilioAdapter) FetchStatus(ctx context.Context, providerSID string) (*StatusResult, error) {
	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages/%s.json", a.cfg.BaseURL, a.cfg.AccountSID, providerSID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("provider: build request: %w", err)
	}
	req.SetBasicAuth(a.cfg.AccountSID, a.cfg.AuthToken)

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, Classify(fmt.Errorf("provider: request failed: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, Classify(fmt.Errorf("provider: status code: %d", resp.StatusCode))
	}

	var body struct {
		SID    string `json:"sid"`
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("provider: decode response: %w", err)
	}

	return &StatusResult{ProviderSID: body.SID, Status: body.Status}, nil
}

var _ Adapter = (*TwilioAdapter)(nil)
