package http

import (
	"github.com/NeuralTrust/AuthShield/pkg/infra/ledger"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type ledgerStatusHandler struct {
	logger *logrus.Logger
	ledger *ledger.Client
}

func NewLedgerStatusHandler(logger *logrus.Logger, ledgerClient *ledger.Client) Handler {
	return &ledgerStatusHandler{logger: logger, ledger: ledgerClient}
}

// Handle @Summary Audit ledger status
// @Tags Audit
// @Produce json
// @Success 200 {object} map[string]interface{} "Ledger status"
// @Router /api/ledger/status [get]
func (h *ledgerStatusHandler) Handle(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(h.ledger.Status())
}
