package http

import (
	"encoding/json"

	"github.com/NeuralTrust/AuthShield/pkg/app/scoring"
	"github.com/NeuralTrust/AuthShield/pkg/domain/event"
	"github.com/gofiber/fiber/v2"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
)

// auth0LogEntry is the subset of an Auth0 log-stream entry the pipeline
// consumes. Field names follow the Auth0 log schema, not ours.
type auth0LogEntry struct {
	UserID    string `mapstructure:"user_id"`
	IP        string `mapstructure:"ip"`
	UserAgent string `mapstructure:"user_agent"`
	Type      string `mapstructure:"type"`
	Date      string `mapstructure:"date"`
}

type auth0WebhookHandler struct {
	logger  *logrus.Logger
	scoring scoring.Service
}

func NewAuth0WebhookHandler(logger *logrus.Logger, scoringService scoring.Service) Handler {
	return &auth0WebhookHandler{logger: logger, scoring: scoringService}
}

// Handle @Summary Auth0 log-stream webhook
// @Description Maps successful-login log entries to login events and scores them
// @Tags Scoring
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{} "Scored entries"
// @Failure 400 {object} map[string]interface{} "Invalid payload"
// @Router /webhook/auth0 [post]
func (h *auth0WebhookHandler) Handle(c *fiber.Ctx) error {
	var payload map[string]interface{}
	if err := json.Unmarshal(c.Body(), &payload); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid webhook payload"})
	}

	entries := h.extractEntries(payload)
	results := make([]scoring.Response, 0, len(entries))
	suspicious := 0
	for _, raw := range entries {
		var entry auth0LogEntry
		if err := mapstructure.Decode(raw, &entry); err != nil {
			h.logger.WithError(err).Debug("skipping undecodable webhook entry")
			continue
		}
		// Only successful logins feed the scoring pipeline.
		if entry.Type != "" && entry.Type != "s" {
			continue
		}
		if entry.UserID == "" {
			continue
		}

		resp, err := h.scoring.Simulate(c.Context(), event.LoginEvent{
			UserID:    entry.UserID,
			IPAddress: entry.IP,
			UserAgent: entry.UserAgent,
		})
		if err != nil {
			h.logger.WithError(err).WithField("user_id", entry.UserID).Warn("failed to score webhook login")
			continue
		}
		results = append(results, resp)
		if resp.Risk.IsSuspicious {
			suspicious++
		}
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"received":   len(entries),
		"scored":     len(results),
		"suspicious": suspicious,
		"results":    results,
	})
}

// extractEntries accepts both a single log object and the batched
// {"logs": [...]} shape Auth0 streams use.
func (h *auth0WebhookHandler) extractEntries(payload map[string]interface{}) []map[string]interface{} {
	if logs, ok := payload["logs"].([]interface{}); ok {
		entries := make([]map[string]interface{}, 0, len(logs))
		for _, l := range logs {
			if m, ok := l.(map[string]interface{}); ok {
				// Log-stream items nest the entry under "data".
				if data, ok := m["data"].(map[string]interface{}); ok {
					entries = append(entries, data)
				} else {
					entries = append(entries, m)
				}
			}
		}
		return entries
	}
	if data, ok := payload["data"].(map[string]interface{}); ok {
		return []map[string]interface{}{data}
	}
	return []map[string]interface{}{payload}
}
