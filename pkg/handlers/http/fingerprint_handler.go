package http

import (
	"time"

	"github.com/NeuralTrust/AuthShield/pkg/domain/event"
	"github.com/NeuralTrust/AuthShield/pkg/fingerprint"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type fingerprintHandler struct {
	logger *logrus.Logger
}

func NewFingerprintHandler(logger *logrus.Logger) Handler {
	return &fingerprintHandler{logger: logger}
}

// Handle @Summary Normalize a login event
// @Description Returns the fingerprint for an event without scoring or recording it
// @Tags Scoring
// @Accept json
// @Produce json
// @Param event body event.LoginEvent true "Login event"
// @Success 200 {object} fingerprint.Fingerprint "Fingerprint"
// @Failure 400 {object} map[string]interface{} "Invalid event"
// @Router /api/fingerprint [post]
func (h *fingerprintHandler) Handle(c *fiber.Ctx) error {
	var ev event.LoginEvent
	if err := c.BodyParser(&ev); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if ev.UserID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "user_id is required"})
	}

	fp := fingerprint.Normalize(ev.WithDefaults(time.Now()))
	return c.Status(fiber.StatusOK).JSON(fp)
}
