package http

import (
	"github.com/NeuralTrust/AuthShield/pkg/domain/audit"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const defaultFreezeLogLimit = 100

type freezeLogHandler struct {
	logger *logrus.Logger
	audits audit.Repository
}

func NewFreezeLogHandler(logger *logrus.Logger, audits audit.Repository) Handler {
	return &freezeLogHandler{logger: logger, audits: audits}
}

// Handle @Summary Freeze/unfreeze audit trail
// @Tags Audit
// @Produce json
// @Param limit query int false "Maximum entries to return"
// @Success 200 {object} map[string]interface{} "Audit entries"
// @Router /api/freeze-log [get]
func (h *freezeLogHandler) Handle(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", defaultFreezeLogLimit)
	if limit < 1 {
		limit = defaultFreezeLogLimit
	}

	entries, err := h.audits.FreezeLog(c.Context(), limit)
	if err != nil {
		h.logger.WithError(err).Error("failed to read freeze log")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to read freeze log"})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"count":      len(entries),
		"freeze_log": entries,
	})
}
