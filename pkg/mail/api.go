package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultAPIBaseURL points at the hosted delivery provider's REST endpoint.
const DefaultAPIBaseURL = "https://api.resend.com"

// APISettings configure the HTTP delivery provider client.
type APISettings struct {
	Enabled bool
	BaseURL string
	APIKey  string
	From    string
	Timeout time.Duration
}

type apiMailer struct {
	cfg    APISettings
	client *http.Client
}

type apiPayload struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// NewAPIMailer builds a Mailer that posts messages to a hosted delivery API.
func NewAPIMailer(cfg APISettings) (Mailer, error) {
	if cfg.Enabled && strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("mail: api key is required when the http provider is enabled")
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = DefaultAPIBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &apiMailer{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}, nil
}

func (m *apiMailer) Send(ctx context.Context, msg Message) (Result, error) {
	if !m.cfg.Enabled {
		return Result{}, ErrDeliveryDisabled
	}

	recipients := uniqueAddresses(msg.To)
	if len(recipients) == 0 {
		return Result{}, errors.New("mail: at least one recipient is required")
	}

	from := strings.TrimSpace(msg.From)
	if from == "" {
		from = m.cfg.From
	}
	if from == "" {
		return Result{}, errors.New("mail: sender address is required")
	}

	body, err := json.Marshal(apiPayload{
		From:    from,
		To:      recipients,
		Subject: msg.Subject,
		HTML:    msg.HTML,
	})
	if err != nil {
		return Result{}, fmt.Errorf("mail: encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.cfg.BaseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("mail: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("mail: send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Result{}, fmt.Errorf("mail: read response: %w", err)
	}

	detail := map[string]any{}
	if len(raw) > 0 {
		// Provider responses are JSON; keep the raw text when they are not.
		if err := json.Unmarshal(raw, &detail); err != nil {
			detail = map[string]any{"raw": string(raw)}
		}
	}

	result := Result{Detail: detail}
	if id, ok := detail["id"].(string); ok {
		result.MessageID = id
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return result, fmt.Errorf("mail: provider returned status %d: %s", resp.StatusCode, string(raw))
	}

	return result, nil
}
