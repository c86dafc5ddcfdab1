package http

import (
	"github.com/NeuralTrust/AuthShield/pkg/domain/event"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type userEventsHandler struct {
	logger *logrus.Logger
	events event.Repository
}

func NewUserEventsHandler(logger *logrus.Logger, events event.Repository) Handler {
	return &userEventsHandler{logger: logger, events: events}
}

// Handle @Summary One user's scored events
// @Tags Events
// @Produce json
// @Param user_id path string true "User ID"
// @Success 200 {object} map[string]interface{} "Events"
// @Router /api/user/{user_id}/events [get]
func (h *userEventsHandler) Handle(c *fiber.Ctx) error {
	userID := c.Params("user_id")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "user_id is required"})
	}

	records, err := h.events.UserEvents(c.Context(), userID)
	if err != nil {
		h.logger.WithError(err).WithField("user_id", userID).Error("failed to list user events")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list user events"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"user_id": userID,
		"count":   len(records),
		"events":  records,
	})
}
