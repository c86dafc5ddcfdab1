// Package ledger posts freeze decisions to the external immutable audit
// ledger. Strictly best effort: a ledger outage never blocks or reverses a
// freeze already taken at the identity provider.
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/NeuralTrust/AuthShield/pkg/config"
	"github.com/sirupsen/logrus"
)

// Receipt reports the ledger outcome without raising.
type Receipt struct {
	Logged bool   `json:"logged"`
	TxRef  string `json:"tx_ref,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Writer is the ledger collaborator consumed by the freeze pipeline.
type Writer interface {
	LogFreeze(ctx context.Context, userID string, riskScore float64, clusterID string) Receipt
}

type Client struct {
	cfg    config.LedgerConfig
	http   *http.Client
	logger *logrus.Logger
}

func NewClient(cfg config.LedgerConfig, httpClient *http.Client, logger *logrus.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{cfg: cfg, http: httpClient, logger: logger}
}

// Configured reports whether a ledger endpoint is set; an unconfigured
// ledger degrades every LogFreeze to a not-logged receipt.
func (c *Client) Configured() bool {
	return c.cfg.Endpoint != ""
}

// Status describes the ledger connection for the ops surface.
func (c *Client) Status() map[string]interface{} {
	return map[string]interface{}{
		"configured": c.Configured(),
		"network":    c.cfg.Network,
		"endpoint":   c.cfg.Endpoint,
	}
}

type notePayload struct {
	App       string  `json:"app"`
	Action    string  `json:"action"`
	UserID    string  `json:"user_id"`
	RiskScore float64 `json:"risk_score"`
	ClusterID string  `json:"cluster_id,omitempty"`
	Timestamp string  `json:"timestamp"`
}

// LogFreeze appends a freeze entry to the ledger.
func (c *Client) LogFreeze(ctx context.Context, userID string, riskScore float64, clusterID string) Receipt {
	if !c.Configured() {
		return Receipt{Logged: false, Error: "ledger not configured"}
	}

	note := notePayload{
		App:       "authshield",
		Action:    "freeze",
		UserID:    userID,
		RiskScore: riskScore,
		ClusterID: clusterID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	body, err := json.Marshal(note)
	if err != nil {
		return Receipt{Logged: false, Error: err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint+"/v1/entries", bytes.NewReader(body))
	if err != nil {
		return Receipt{Logged: false, Error: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.WithError(err).WithField("user_id", userID).Warn("ledger write failed")
		return Receipt{Logged: false, Error: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		errMsg := fmt.Sprintf("ledger returned %d: %s", resp.StatusCode, raw)
		c.logger.WithField("user_id", userID).Warn(errMsg)
		return Receipt{Logged: false, Error: errMsg}
	}

	var entry struct {
		TxRef string `json:"tx_ref"`
		TxID  string `json:"tx_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&entry); err != nil {
		// Entry accepted; the receipt reference is a nicety.
		return Receipt{Logged: true}
	}
	txRef := entry.TxRef
	if txRef == "" {
		txRef = entry.TxID
	}
	return Receipt{Logged: true, TxRef: txRef}
}
