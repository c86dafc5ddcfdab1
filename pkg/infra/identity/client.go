// Package identity wraps the external identity provider's management API
// (Auth0-shaped). Freeze and unfreeze report structured results and never
// panic past the call site; the pipeline treats failures as data.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/NeuralTrust/AuthShield/pkg/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

const (
	maxAttempts      = 3
	tokenSafetyGap   = 60 * time.Second
	defaultTokenLife = 24 * time.Hour
)

// ActionResult is the structured outcome of a freeze or unfreeze call.
// Status carries the domain outcome ("blocked", "unblocked",
// "already_frozen"); HTTPStatus is the provider's response code on failure.
type ActionResult struct {
	Success    bool   `json:"success"`
	UserID     string `json:"user_id"`
	Error      string `json:"error,omitempty"`
	Status     string `json:"status,omitempty"`
	HTTPStatus int    `json:"http_status,omitempty"`
}

// Provider is the identity collaborator consumed by the freeze pipeline.
type Provider interface {
	Freeze(ctx context.Context, userID, reason string) ActionResult
	Unfreeze(ctx context.Context, userID string) ActionResult
	GetUser(ctx context.Context, userID string) (map[string]interface{}, error)
	ListUsers(ctx context.Context) ([]map[string]interface{}, error)
}

type Client struct {
	cfg     config.IdentityConfig
	http    *http.Client
	logger  *logrus.Logger
	breaker *gobreaker.CircuitBreaker

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

func NewClient(cfg config.IdentityConfig, httpClient *http.Client, logger *logrus.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "identity-provider",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(logrus.Fields{"breaker": name, "from": from.String(), "to": to.String()}).
				Warn("identity provider circuit state changed")
		},
	})
	return &Client{cfg: cfg, http: httpClient, logger: logger, breaker: breaker}
}

// Freeze blocks the user at the identity provider and tags the account
// metadata with the freeze reason.
func (c *Client) Freeze(ctx context.Context, userID, reason string) ActionResult {
	payload := map[string]interface{}{
		"blocked": true,
		"app_metadata": map[string]interface{}{
			"risk_level":      "critical",
			"cluster_flagged": true,
			"freeze_reason":   reason,
		},
	}
	result := c.patchUser(ctx, userID, payload)
	if result.Success {
		result.Status = "blocked"
	}
	return result
}

// Unfreeze unblocks the user and resets the risk metadata.
func (c *Client) Unfreeze(ctx context.Context, userID string) ActionResult {
	payload := map[string]interface{}{
		"blocked": false,
		"app_metadata": map[string]interface{}{
			"risk_level":      "low",
			"cluster_flagged": false,
		},
	}
	result := c.patchUser(ctx, userID, payload)
	if result.Success {
		result.Status = "unblocked"
	}
	return result
}

// patchUser performs the management-API PATCH with capped retries:
// exponential backoff on transport errors, token-refresh-then-retry on 401.
func (c *Client) patchUser(ctx context.Context, userID string, payload map[string]interface{}) ActionResult {
	token, err := c.getToken(ctx)
	if err != nil {
		return ActionResult{Success: false, UserID: userID, Error: err.Error()}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return ActionResult{Success: false, UserID: userID, Error: err.Error()}
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		status, respBody, err := c.doPatch(ctx, userID, token, body)
		if err != nil {
			if attempt == maxAttempts-1 {
				return ActionResult{Success: false, UserID: userID, Error: err.Error()}
			}
			if sleepErr := sleepContext(ctx, time.Duration(1<<attempt)*time.Second); sleepErr != nil {
				return ActionResult{Success: false, UserID: userID, Error: sleepErr.Error()}
			}
			continue
		}

		switch {
		case status == http.StatusOK:
			return ActionResult{Success: true, UserID: userID}
		case status == http.StatusUnauthorized:
			c.invalidateToken()
			token, err = c.getToken(ctx)
			if err != nil {
				return ActionResult{Success: false, UserID: userID, Error: err.Error(), HTTPStatus: status}
			}
			continue
		default:
			return ActionResult{Success: false, UserID: userID, Error: string(respBody), HTTPStatus: status}
		}
	}

	return ActionResult{Success: false, UserID: userID, Error: "max retries exceeded"}
}

func (c *Client) doPatch(ctx context.Context, userID, token string, body []byte) (int, []byte, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		url := fmt.Sprintf("https://%s/api/v2/users/%s", c.cfg.Domain, userID)
		req, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return nil, err
		}
		return &patchResponse{status: resp.StatusCode, body: respBody}, nil
	})
	if err != nil {
		return 0, nil, err
	}
	pr, ok := result.(*patchResponse)
	if !ok {
		return 0, nil, fmt.Errorf("unexpected breaker result type %T", result)
	}
	return pr.status, pr.body, nil
}

type patchResponse struct {
	status int
	body   []byte
}

// GetUser fetches one user from the management API.
func (c *Client) GetUser(ctx context.Context, userID string) (map[string]interface{}, error) {
	var user map[string]interface{}
	url := fmt.Sprintf("https://%s/api/v2/users/%s", c.cfg.Domain, userID)
	if err := c.getJSON(ctx, url, &user); err != nil {
		return nil, err
	}
	return user, nil
}

// ListUsers fetches the first page of users from the management API.
func (c *Client) ListUsers(ctx context.Context) ([]map[string]interface{}, error) {
	url := fmt.Sprintf("https://%s/api/v2/users?per_page=100", c.cfg.Domain)

	var raw json.RawMessage
	if err := c.getJSON(ctx, url, &raw); err != nil {
		return nil, err
	}

	var users []map[string]interface{}
	if err := json.Unmarshal(raw, &users); err == nil {
		return users, nil
	}
	var wrapped struct {
		Users []map[string]interface{} `json:"users"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, fmt.Errorf("unexpected users payload: %w", err)
	}
	return wrapped.Users, nil
}

func (c *Client) getJSON(ctx context.Context, url string, out interface{}) error {
	token, err := c.getToken(ctx)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("identity provider returned %d: %s", resp.StatusCode, body)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// getToken returns a cached client-credentials token, refreshing it when
// within the safety gap of expiry.
func (c *Client) getToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Until(c.expiresAt) > tokenSafetyGap {
		return c.token, nil
	}

	payload, err := json.Marshal(map[string]string{
		"client_id":     c.cfg.ClientID,
		"client_secret": c.cfg.ClientSecret,
		"audience":      c.cfg.Audience,
		"grant_type":    "client_credentials",
	})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("https://%s/oauth/token", c.cfg.Domain)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("token endpoint returned %d: %s", resp.StatusCode, body)
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}

	c.token = tokenResp.AccessToken
	c.expiresAt = time.Now().Add(tokenLifetime(tokenResp.AccessToken, tokenResp.ExpiresIn))
	return c.token, nil
}

func (c *Client) invalidateToken() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}

// tokenLifetime prefers the expires_in field and falls back to the exp
// claim of the JWT itself when the provider omits it.
func tokenLifetime(token string, expiresIn int64) time.Duration {
	if expiresIn > 0 {
		return time.Duration(expiresIn) * time.Second
	}

	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err == nil {
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			if d := time.Until(exp.Time); d > 0 {
				return d
			}
		}
	}
	return defaultTokenLife
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
