// Package fingerprint implements the browser-profile factory port against
// the anti-detect profile API (Dolphin-style HTTP interface).
package fingerprint

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"leadops_backend/internal/leads/ports"
	"leadops_backend/platform/config"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const requestTimeout = 30 * time.Second

// Client talks to the external fingerprint factory API. The API enforces a
// per-token rate limit, so all calls go through a client-side limiter.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	limiter *rate.Limiter
}

func NewClient(cfg config.FingerprintConfig) *Client {
	rps := cfg.GetFingerprintRequestsPerSecond()
	if rps <= 0 {
		rps = 2
	}
	return &Client{
		baseURL: cfg.GetFingerprintAPIURL(),
		token:   cfg.GetFingerprintAPIToken(),
		http:    &http.Client{Timeout: requestTimeout},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

type createProfileRequest struct {
	LeadID     string `json:"leadId"`
	DeviceType string `json:"deviceType"`
}

type createProfileResponse struct {
	ID string `json:"id"`
}

// CreateProfile provisions a browser profile and returns its id.
func (c *Client) CreateProfile(ctx context.Context, leadID uuid.UUID, deviceType string) (uuid.UUID, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return uuid.Nil, err
	}

	body, err := json.Marshal(createProfileRequest{
		LeadID:     leadID.String(),
		DeviceType: deviceType,
	})
	if err != nil {
		return uuid.Nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/profiles", bytes.NewReader(body))
	if err != nil {
		return uuid.Nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return uuid.Nil, fmt.Errorf("fingerprint api: %w", err)
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return uuid.Nil, fmt.Errorf("fingerprint api: create profile returned %d", resp.StatusCode)
	}

	var payload createProfileResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return uuid.Nil, fmt.Errorf("fingerprint api: decode response: %w", err)
	}
	return uuid.Parse(payload.ID)
}

// DeleteProfile destroys a browser profile. A 404 means the profile is
// already gone, which callers treat as success.
func (c *Client) DeleteProfile(ctx context.Context, fingerprintID uuid.UUID) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/profiles/"+fingerprintID.String(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("fingerprint api: %w", err)
	}
	defer drainAndClose(resp.Body)

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent, http.StatusNotFound:
		return nil
	default:
		return fmt.Errorf("fingerprint api: delete profile returned %d", resp.StatusCode)
	}
}

func drainAndClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 4096))
	_ = body.Close()
}

// Compile-time check that Client implements the leads fingerprint port.
var _ ports.FingerprintFactory = (*Client)(nil)
