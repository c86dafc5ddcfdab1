package http

import (
	"github.com/NeuralTrust/AuthShield/pkg/graph"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type listClustersHandler struct {
	logger *logrus.Logger
	g      *graph.Graph
}

func NewListClustersHandler(logger *logrus.Logger, g *graph.Graph) Handler {
	return &listClustersHandler{logger: logger, g: g}
}

// Handle @Summary List behavior clusters
// @Description Groups users by shared behavior hash, largest cluster first
// @Tags Graph
// @Produce json
// @Success 200 {object} map[string]interface{} "Clusters"
// @Router /api/clusters [get]
func (h *listClustersHandler) Handle(c *fiber.Ctx) error {
	clusters := h.g.AllClusters()
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"count":    len(clusters),
		"clusters": clusters,
	})
}
