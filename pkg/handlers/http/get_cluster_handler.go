package http

import (
	"github.com/NeuralTrust/AuthShield/pkg/graph"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type getClusterHandler struct {
	logger *logrus.Logger
	g      *graph.Graph
}

func NewGetClusterHandler(logger *logrus.Logger, g *graph.Graph) Handler {
	return &getClusterHandler{logger: logger, g: g}
}

// Handle @Summary One user's cluster view
// @Tags Graph
// @Produce json
// @Param user_id path string true "User ID"
// @Success 200 {object} map[string]interface{} "Cluster view"
// @Failure 404 {object} map[string]interface{} "Unknown user"
// @Router /api/cluster/{user_id} [get]
func (h *getClusterHandler) Handle(c *fiber.Ctx) error {
	userID := c.Params("user_id")
	if userID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "user_id is required"})
	}
	if !h.g.HasUser(userID) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user not found in graph"})
	}

	cluster := h.g.UserCluster(userID)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"user_id":         userID,
		"cluster":         cluster,
		"cluster_density": h.g.ClusterDensity(userID),
		"risk_score":      h.g.RiskScore(userID),
		"flagged":         h.g.IsFlagged(userID),
	})
}
