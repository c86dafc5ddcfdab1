package http

import (
	"github.com/NeuralTrust/AuthShield/pkg/domain/event"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type flaggedUsersHandler struct {
	logger *logrus.Logger
	events event.Repository
}

func NewFlaggedUsersHandler(logger *logrus.Logger, events event.Repository) Handler {
	return &flaggedUsersHandler{logger: logger, events: events}
}

// Handle @Summary List flagged users
// @Description Returns the latest scored event of every user flagged by cluster detection
// @Tags Events
// @Produce json
// @Success 200 {object} map[string]interface{} "Flagged users"
// @Router /api/flagged [get]
func (h *flaggedUsersHandler) Handle(c *fiber.Ctx) error {
	records, err := h.events.FlaggedUsers(c.Context())
	if err != nil {
		h.logger.WithError(err).Error("failed to list flagged users")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list flagged users"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"count":   len(records),
		"flagged": records,
	})
}
