package http

import "github.com/gofiber/fiber/v2"

type Handler interface {
	Handle(ctx *fiber.Ctx) error
}

// HandlerTransport groups every HTTP handler for route wiring.
type HandlerTransport struct {
	// Observability
	HealthHandler Handler

	// Scoring
	SimulateHandler     Handler
	RiskScoreHandler    Handler
	FingerprintHandler  Handler
	Auth0WebhookHandler Handler

	// Events and audit trail
	ListEventsHandler   Handler
	UserEventsHandler   Handler
	FlaggedUsersHandler Handler
	FreezeLogHandler    Handler

	// Thresholds
	GetThresholdsHandler    Handler
	UpdateThresholdsHandler Handler

	// Graph
	ListClustersHandler Handler
	GetClusterHandler   Handler

	// Freeze lifecycle
	FreezeUserHandler    Handler
	UnfreezeUserHandler  Handler
	CheckClustersHandler Handler

	// External collaborators
	IdentityUsersHandler Handler
	LedgerStatusHandler  Handler
}
