package server

import (
	"fmt"

	"github.com/NeuralTrust/AuthShield/pkg/config"
	handlers "github.com/NeuralTrust/AuthShield/pkg/handlers/http"
	"github.com/sirupsen/logrus"
)

type (
	APIServerDI struct {
		HandlerTransport handlers.HandlerTransport
		Config           *config.Config
		Logger           *logrus.Logger
	}
	APIServer struct {
		*BaseServer
		handlerTransport handlers.HandlerTransport
	}
)

func NewAPIServer(di APIServerDI) *APIServer {
	return &APIServer{
		BaseServer:       NewBaseServer(di.Config, di.Logger),
		handlerTransport: di.HandlerTransport,
	}
}

func (s *APIServer) Run() error {
	s.setupRoutes()
	s.setupMetricsEndpoint()

	addr := fmt.Sprintf("%s:%d", s.Config.Server.Host, s.Config.Server.Port)
	s.Logger.WithField("addr", addr).Info("starting api server")
	return s.Router.Listen(addr)
}

func (s *APIServer) setupRoutes() {
	t := s.handlerTransport

	api := s.Router.Group("/api")
	{
		api.Get("/health", t.HealthHandler.Handle)

		api.Get("/events", t.ListEventsHandler.Handle)
		api.Get("/user/:user_id/events", t.UserEventsHandler.Handle)
		api.Get("/flagged", t.FlaggedUsersHandler.Handle)
		api.Get("/freeze-log", t.FreezeLogHandler.Handle)

		api.Get("/thresholds", t.GetThresholdsHandler.Handle)
		api.Post("/thresholds", t.UpdateThresholdsHandler.Handle)

		api.Get("/clusters", t.ListClustersHandler.Handle)
		api.Get("/cluster/:user_id", t.GetClusterHandler.Handle)

		api.Post("/fingerprint", t.FingerprintHandler.Handle)
		api.Post("/risk-score", t.RiskScoreHandler.Handle)
		api.Post("/simulate", t.SimulateHandler.Handle)

		api.Post("/freeze/:user_id", t.FreezeUserHandler.Handle)
		api.Post("/unfreeze/:user_id", t.UnfreezeUserHandler.Handle)
		api.Post("/check-clusters", t.CheckClustersHandler.Handle)

		api.Get("/auth0/users", t.IdentityUsersHandler.Handle)
		api.Get("/ledger/status", t.LedgerStatusHandler.Handle)
	}

	webhook := s.Router.Group("/webhook")
	{
		webhook.Post("/auth0", t.Auth0WebhookHandler.Handle)
	}
}

func (s *APIServer) Shutdown() error {
	return s.Router.Shutdown()
}
