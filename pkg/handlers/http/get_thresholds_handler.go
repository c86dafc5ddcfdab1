package http

import (
	"github.com/NeuralTrust/AuthShield/pkg/domain/threshold"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type getThresholdsHandler struct {
	logger     *logrus.Logger
	thresholds threshold.Store
}

func NewGetThresholdsHandler(logger *logrus.Logger, thresholds threshold.Store) Handler {
	return &getThresholdsHandler{logger: logger, thresholds: thresholds}
}

// Handle @Summary Current detection thresholds
// @Tags Thresholds
// @Produce json
// @Success 200 {object} threshold.Thresholds "Thresholds"
// @Router /api/thresholds [get]
func (h *getThresholdsHandler) Handle(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(h.thresholds.Get())
}
