package http

import (
	"context"
	"errors"

	"github.com/NeuralTrust/AuthShield/pkg/app/cluster"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type checkClustersHandler struct {
	logger   *logrus.Logger
	detector cluster.Detector
}

func NewCheckClustersHandler(logger *logrus.Logger, detector cluster.Detector) Handler {
	return &checkClustersHandler{logger: logger, detector: detector}
}

// Handle @Summary Run a cluster-detection sweep
// @Description Evaluates the whole graph against current thresholds and freezes qualifying accounts
// @Tags Freeze
// @Produce json
// @Success 200 {object} cluster.SweepResult "Sweep result"
// @Failure 500 {object} map[string]interface{} "Sweep aborted"
// @Router /api/check-clusters [post]
func (h *checkClustersHandler) Handle(c *fiber.Ctx) error {
	result, err := h.detector.Sweep(c.Context())
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			h.logger.WithError(err).Warn("cluster sweep aborted by client")
		} else {
			h.logger.WithError(err).Error("cluster sweep failed")
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   err.Error(),
			"partial": result,
		})
	}

	return c.Status(fiber.StatusOK).JSON(result)
}
