package http

import (
	"time"

	"github.com/NeuralTrust/AuthShield/pkg/anomaly"
	"github.com/NeuralTrust/AuthShield/pkg/common"
	"github.com/NeuralTrust/AuthShield/pkg/graph"
	"github.com/NeuralTrust/AuthShield/pkg/infra/ledger"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type healthHandler struct {
	logger *logrus.Logger
	cache  common.Cache
	scorer *anomaly.Scorer
	g      *graph.Graph
	ledger *ledger.Client
}

func NewHealthHandler(
	logger *logrus.Logger,
	cache common.Cache,
	scorer *anomaly.Scorer,
	g *graph.Graph,
	ledgerClient *ledger.Client,
) Handler {
	return &healthHandler{
		logger: logger,
		cache:  cache,
		scorer: scorer,
		g:      g,
		ledger: ledgerClient,
	}
}

// Handle @Summary Service health
// @Description Reports component availability; degraded components do not fail the check
// @Tags Observability
// @Produce json
// @Success 200 {object} map[string]interface{} "Health report"
// @Router /api/health [get]
func (h *healthHandler) Handle(c *fiber.Ctx) error {
	components := fiber.Map{
		"model_trained": h.scorer.Trained(),
		"graph_users":   h.g.UserCount(),
	}
	if h.ledger != nil {
		components["ledger"] = h.ledger.Status()
	}
	if h.cache != nil {
		if err := h.cache.Client().Ping(c.Context()).Err(); err != nil {
			components["cache"] = "unavailable"
		} else {
			components["cache"] = "ok"
		}
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":     "healthy",
		"time":       time.Now().Format(time.RFC3339),
		"components": components,
	})
}
