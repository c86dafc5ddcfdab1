package http

import (
	"github.com/NeuralTrust/AuthShield/pkg/app/freeze"
	"github.com/NeuralTrust/AuthShield/pkg/graph"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type freezeUserRequest struct {
	Reason string `json:"reason"`
}

type freezeUserHandler struct {
	logger  *logrus.Logger
	freezer freeze.Manager
	g       *graph.Graph
}

func NewFreezeUserHandler(logger *logrus.Logger, freezer freeze.Manager, g *graph.Graph) Handler {
	return &freezeUserHandler{logger: logger, freezer: freezer, g: g}
}

// Handle @Summary Freeze an account
// @Description Calls the identity provider; the account transitions to FROZEN only on success
// @Tags Freeze
// @Accept json
// @Produce json
// @Param user_id path string true "User ID"
// @Param request body freezeUserRequest false "Freeze reason"
// @Success 200 {object} identity.ActionResult "Freeze outcome"
// @Failure 502 {object} identity.ActionResult "Identity provider failure"
// @Router /api/freeze/{user_id} [post]
func (h *freezeUserHandler) Handle(c *fiber.Ctx) error {
	userID := c.Params("user_id")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "user_id is required"})
	}

	var req freezeUserRequest
	// Body is optional for manual freezes.
	_ = c.BodyParser(&req)
	if req.Reason == "" {
		req.Reason = "manual freeze"
	}

	result := h.freezer.Freeze(c.Context(), userID, req.Reason, h.g.RiskScore(userID), h.g.ClusterID(userID))
	if !result.Success {
		status := fiber.StatusBadGateway
		if result.Status == "already_frozen" {
			status = fiber.StatusConflict
		}
		return c.Status(status).JSON(result)
	}

	return c.Status(fiber.StatusOK).JSON(result)
}
