package http

import (
	"github.com/NeuralTrust/AuthShield/pkg/infra/identity"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type identityUsersHandler struct {
	logger   *logrus.Logger
	provider identity.Provider
}

func NewIdentityUsersHandler(logger *logrus.Logger, provider identity.Provider) Handler {
	return &identityUsersHandler{logger: logger, provider: provider}
}

// Handle @Summary List identity-provider users
// @Description Proxies the management-API user list, including blocked state
// @Tags Identity
// @Produce json
// @Success 200 {object} map[string]interface{} "Users"
// @Failure 502 {object} map[string]interface{} "Identity provider failure"
// @Router /api/auth0/users [get]
func (h *identityUsersHandler) Handle(c *fiber.Ctx) error {
	users, err := h.provider.ListUsers(c.Context())
	if err != nil {
		h.logger.WithError(err).Error("failed to list identity provider users")
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"count": len(users),
		"users": users,
	})
}
