package http

import (
	"github.com/NeuralTrust/AuthShield/pkg/domain/event"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const defaultEventLimit = 100

type listEventsHandler struct {
	logger *logrus.Logger
	events event.Repository
}

func NewListEventsHandler(logger *logrus.Logger, events event.Repository) Handler {
	return &listEventsHandler{logger: logger, events: events}
}

// Handle @Summary List recent scored events
// @Tags Events
// @Produce json
// @Param limit query int false "Maximum events to return"
// @Success 200 {object} map[string]interface{} "Events"
// @Router /api/events [get]
func (h *listEventsHandler) Handle(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", defaultEventLimit)
	if limit < 1 {
		limit = defaultEventLimit
	}

	records, err := h.events.RecentEvents(c.Context(), limit)
	if err != nil {
		h.logger.WithError(err).Error("failed to list recent events")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list events"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"count":  len(records),
		"events": records,
	})
}
