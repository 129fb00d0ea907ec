// internal/app/system/emailcheck/emailcheck.go

// Package emailcheck asks an external verification provider whether an
// address is deliverable before we send an invitation to it.
package emailcheck

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// Result is the provider's verdict on one address.
type Result struct {
	Deliverable bool   `json:"deliverable"`
	Reason      string `json:"reason,omitempty"`
}

// Verifier answers deliverability questions. Implementations must be safe
// for concurrent use.
type Verifier interface {
	Verify(ctx context.Context, email string) (Result, error)
}

// AlwaysDeliverable is the verifier for deployments without a provider
// configured. Every address passes.
type AlwaysDeliverable struct{}

func (AlwaysDeliverable) Verify(ctx context.Context, email string) (Result, error) {
	return Result{Deliverable: true}, nil
}

// HTTPVerifier calls a JSON verification endpoint:
// GET {endpoint}?email=... with a bearer key, expecting a Result body.
type HTTPVerifier struct {
	endpoint string
	apiKey   string
	client   *http.Client
	log      *zap.Logger
}

func NewHTTPVerifier(endpoint, apiKey string, logger *zap.Logger) *HTTPVerifier {
	return &HTTPVerifier{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: 10 * time.Second},
		log:      logger,
	}
}

func (v *HTTPVerifier) Verify(ctx context.Context, email string) (Result, error) {
	u, err := url.Parse(v.endpoint)
	if err != nil {
		return Result{}, fmt.Errorf("email verify endpoint: %w", err)
	}
	q := u.Query()
	q.Set("email", email)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Result{}, err
	}
	if v.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+v.apiKey)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("email verify request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		v.log.Warn("email verification provider returned non-200",
			zap.Int("status", resp.StatusCode))
		return Result{}, fmt.Errorf("email verify: unexpected status %d", resp.StatusCode)
	}

	var out Result
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Result{}, fmt.Errorf("email verify response: %w", err)
	}
	return out, nil
}
