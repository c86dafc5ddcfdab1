package http

import (
	"github.com/NeuralTrust/AuthShield/pkg/app/freeze"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type unfreezeUserHandler struct {
	logger  *logrus.Logger
	freezer freeze.Manager
}

func NewUnfreezeUserHandler(logger *logrus.Logger, freezer freeze.Manager) Handler {
	return &unfreezeUserHandler{logger: logger, freezer: freezer}
}

// Handle @Summary Unfreeze an account
// @Description Administrative unfreeze, regardless of prior risk score
// @Tags Freeze
// @Produce json
// @Param user_id path string true "User ID"
// @Success 200 {object} identity.ActionResult "Unfreeze outcome"
// @Failure 502 {object} identity.ActionResult "Identity provider failure"
// @Router /api/unfreeze/{user_id} [post]
func (h *unfreezeUserHandler) Handle(c *fiber.Ctx) error {
	userID := c.Params("user_id")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "user_id is required"})
	}

	result := h.freezer.Unfreeze(c.Context(), userID)
	if !result.Success {
		return c.Status(fiber.StatusBadGateway).JSON(result)
	}

	return c.Status(fiber.StatusOK).JSON(result)
}
