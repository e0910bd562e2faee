package idms

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kpitools/webapps/internal/core/ports"
)

const defaultHTTPTimeout = 10 * time.Second

// HTTPConfig points the client at the IDMS endpoints.
type HTTPConfig struct {
	// ExchangeURL redeems callback codes for token grants.
	ExchangeURL string
	// VerifyURL checks whether a previously issued token is still valid.
	VerifyURL string
	Timeout   time.Duration
}

// HTTPProvider talks to a real IDMS deployment over HTTP.
type HTTPProvider struct {
	cfg    HTTPConfig
	client *http.Client
}

func NewHTTPProvider(cfg HTTPConfig) *HTTPProvider {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	return &HTTPProvider{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

func (p *HTTPProvider) Exchange(ctx context.Context, code string) (*ports.TokenGrant, error) {
	form := url.Values{"code": {code}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.ExchangeURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build exchange request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("exchange code: idms returned %d", resp.StatusCode)
	}

	var body struct {
		Token    string `json:"token"`
		Username string `json:"username"`
		Role     string `json:"role"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode exchange response: %w", err)
	}
	if body.Token == "" || body.Username == "" {
		return nil, fmt.Errorf("exchange code: incomplete grant from idms")
	}

	return &ports.TokenGrant{Token: body.Token, Username: body.Username, Role: body.Role}, nil
}

func (p *HTTPProvider) Validate(ctx context.Context, token string) (bool, error) {
	form := url.Values{"token": {token}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.VerifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return false, fmt.Errorf("build verify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("verify token: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return false, nil
	default:
		return false, fmt.Errorf("verify token: idms returned %d", resp.StatusCode)
	}
}
