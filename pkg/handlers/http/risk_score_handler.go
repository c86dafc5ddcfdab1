package http

import (
	"github.com/NeuralTrust/AuthShield/pkg/app/scoring"
	"github.com/NeuralTrust/AuthShield/pkg/domain/event"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type riskScoreHandler struct {
	logger  *logrus.Logger
	scoring scoring.Service
}

func NewRiskScoreHandler(logger *logrus.Logger, scoringService scoring.Service) Handler {
	return &riskScoreHandler{logger: logger, scoring: scoringService}
}

// Handle @Summary Preview a risk score
// @Description Scores an event against current graph state without recording it
// @Tags Scoring
// @Accept json
// @Produce json
// @Param event body event.LoginEvent true "Login event"
// @Success 200 {object} scoring.Response "Risk preview"
// @Failure 400 {object} map[string]interface{} "Invalid event"
// @Router /api/risk-score [post]
func (h *riskScoreHandler) Handle(c *fiber.Ctx) error {
	var ev event.LoginEvent
	if err := c.BodyParser(&ev); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	resp, err := h.scoring.RiskScore(c.Context(), ev)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}
