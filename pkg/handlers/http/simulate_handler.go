package http

import (
	"github.com/NeuralTrust/AuthShield/pkg/app/scoring"
	"github.com/NeuralTrust/AuthShield/pkg/domain/event"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type simulateHandler struct {
	logger  *logrus.Logger
	scoring scoring.Service
}

func NewSimulateHandler(logger *logrus.Logger, scoringService scoring.Service) Handler {
	return &simulateHandler{logger: logger, scoring: scoringService}
}

// Handle @Summary Score a login event
// @Description Runs the full scoring pipeline and records the observation
// @Tags Scoring
// @Accept json
// @Produce json
// @Param event body event.LoginEvent true "Login event"
// @Success 200 {object} scoring.Response "Scored event"
// @Failure 400 {object} map[string]interface{} "Invalid event"
// @Router /api/simulate [post]
func (h *simulateHandler) Handle(c *fiber.Ctx) error {
	var ev event.LoginEvent
	if err := c.BodyParser(&ev); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	resp, err := h.scoring.Simulate(c.Context(), ev)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusOK).JSON(resp)
}
