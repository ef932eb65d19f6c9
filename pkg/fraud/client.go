package fraud

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

type Verdict string

const (
	VerdictAllow Verdict = "allow"
	VerdictBlock Verdict = "block"
)

// Checker screens trial signups against the fraud detection service.
type Checker interface {
	CheckSignup(ctx context.Context, ownerId uuid.UUID, phone string) (Verdict, error)
}

type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	// FailOpen controls what happens when the service is unreachable:
	// allow the signup (true) or block it (false).
	FailOpen bool
}

type Client struct {
	cfg        Config
	httpClient *http.Client
}

type checkRequest struct {
	OwnerId string `json:"owner_id"`
	Phone   string `json:"phone"`
	Kind    string `json:"kind"`
}

type checkResponse struct {
	Verdict string `json:"verdict"`
	Reason  string `json:"reason,omitempty"`
}

func NewClient(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *Client) CheckSignup(ctx context.Context, ownerId uuid.UUID, phone string) (Verdict, error) {
	reqBody := checkRequest{
		OwnerId: ownerId.String(),
		Phone:   phone,
		Kind:    "trial_signup",
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return c.fallback(), fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.cfg.BaseURL+"/v1/check", bytes.NewBuffer(jsonData))
	if err != nil {
		return c.fallback(), fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.cfg.APIKey))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.fallback(), fmt.Errorf("fraud check request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return c.fallback(), fmt.Errorf("fraud service error (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var checkResp checkResponse
	if err := json.Unmarshal(bodyBytes, &checkResp); err != nil {
		return c.fallback(), fmt.Errorf("failed to decode response: %w", err)
	}

	if checkResp.Verdict == string(VerdictBlock) {
		return VerdictBlock, nil
	}
	return VerdictAllow, nil
}

func (c *Client) fallback() Verdict {
	if c.cfg.FailOpen {
		return VerdictAllow
	}
	return VerdictBlock
}
