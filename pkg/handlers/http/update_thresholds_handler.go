package http

import (
	"errors"

	"github.com/NeuralTrust/AuthShield/pkg/domain"
	"github.com/NeuralTrust/AuthShield/pkg/domain/threshold"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type updateThresholdsHandler struct {
	logger     *logrus.Logger
	thresholds threshold.Store
}

func NewUpdateThresholdsHandler(logger *logrus.Logger, thresholds threshold.Store) Handler {
	return &updateThresholdsHandler{logger: logger, thresholds: thresholds}
}

// Handle @Summary Update detection thresholds
// @Description Atomic across the three fields; out-of-range values are rejected, not clamped
// @Tags Thresholds
// @Accept json
// @Produce json
// @Param thresholds body threshold.Thresholds true "New thresholds"
// @Success 200 {object} threshold.Thresholds "Applied thresholds"
// @Failure 400 {object} map[string]interface{} "Invalid thresholds"
// @Router /api/thresholds [post]
func (h *updateThresholdsHandler) Handle(c *fiber.Ctx) error {
	var t threshold.Thresholds
	if err := c.BodyParser(&t); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	if err := h.thresholds.Set(c.Context(), t); err != nil {
		if errors.Is(err, domain.ErrInvalidThresholds) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		h.logger.WithError(err).Error("failed to update thresholds")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update thresholds"})
	}

	h.logger.WithFields(logrus.Fields{
		"cluster_size": t.ClusterSize,
		"similarity":   t.Similarity,
		"risk_score":   t.RiskScore,
	}).Info("detection thresholds updated")

	return c.Status(fiber.StatusOK).JSON(h.thresholds.Get())
}
