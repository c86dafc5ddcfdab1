package scoring

import (
	"context"
	"fmt"
	"time"

	"github.com/NeuralTrust/AuthShield/pkg/anomaly"
	"github.com/NeuralTrust/AuthShield/pkg/app/freeze"
	"github.com/NeuralTrust/AuthShield/pkg/domain/event"
	"github.com/NeuralTrust/AuthShield/pkg/domain/threshold"
	"github.com/NeuralTrust/AuthShield/pkg/fingerprint"
	"github.com/NeuralTrust/AuthShield/pkg/graph"
	metrics "github.com/NeuralTrust/AuthShield/pkg/infra/prometheus"
	"github.com/NeuralTrust/AuthShield/pkg/risk"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Response carries everything a scoring pass derived from one event.
type Response struct {
	EventID     string                  `json:"event_id"`
	UserID      string                  `json:"user_id"`
	Fingerprint fingerprint.Fingerprint `json:"fingerprint"`
	Risk        risk.Result             `json:"risk"`
}

// Service runs the live scoring pipeline: normalize, update the similarity
// graph, score anomaly, fuse. Simulate mutates graph and store state;
// RiskScore is the read-only variant.
type Service interface {
	Simulate(ctx context.Context, ev event.LoginEvent) (Response, error)
	RiskScore(ctx context.Context, ev event.LoginEvent) (Response, error)
}

type service struct {
	scorer     *anomaly.Scorer
	g          *graph.Graph
	thresholds threshold.Store
	events     event.Repository
	freezer    freeze.Manager
	logger     *logrus.Logger
	now        func() time.Time
}

func NewService(
	scorer *anomaly.Scorer,
	g *graph.Graph,
	thresholds threshold.Store,
	events event.Repository,
	freezer freeze.Manager,
	logger *logrus.Logger,
) Service {
	return &service{
		scorer:     scorer,
		g:          g,
		thresholds: thresholds,
		events:     events,
		freezer:    freezer,
		logger:     logger,
		now:        time.Now,
	}
}

// Simulate scores one event and records its side effects. A collaborator
// outage degrades the relevant signal instead of failing the request; only
// a missing user id is rejected.
func (s *service) Simulate(ctx context.Context, ev event.LoginEvent) (Response, error) {
	ev = ev.WithDefaults(s.now())
	resp, fp, err := s.score(ev)
	if err != nil {
		return Response{}, err
	}

	record := s.toRecord(resp, ev, fp)
	if err := s.events.SaveEvent(ctx, record); err != nil {
		s.logger.WithError(err).WithField("user_id", ev.UserID).Warn("failed to persist scored event")
	}
	resp.EventID = record.ID

	s.g.UpdateUserRisk(ev.UserID, resp.Risk.RiskScore)
	// A fresh login always re-enters ACTIVE; the freeze decision itself
	// belongs to the cluster sweep.
	s.freezer.MarkActive(ev.UserID)

	metrics.EventsScoredTotal.WithLabelValues(fmt.Sprintf("%t", resp.Risk.IsSuspicious)).Inc()
	s.logger.WithFields(logrus.Fields{
		"user_id":    ev.UserID,
		"risk_score": resp.Risk.RiskScore,
		"suspicious": resp.Risk.IsSuspicious,
	}).Info("scored login event")

	return resp, nil
}

// RiskScore evaluates an event against current graph state without
// recording an observation or persisting anything.
func (s *service) RiskScore(_ context.Context, ev event.LoginEvent) (Response, error) {
	if ev.UserID == "" {
		return Response{}, fmt.Errorf("user_id is required")
	}
	ev = ev.WithDefaults(s.now())
	fp := fingerprint.Normalize(ev)

	density := s.g.ClusterDensity(ev.UserID)
	anomalyScore := s.scorer.Score(fp.FeatureVector)
	similarity := risk.SimilarityScore(fp.FeatureVector, nil)

	result := risk.Fuse(anomalyScore, similarity, fp.IPEntropy, density, s.thresholds.Get().RiskScore)
	return Response{UserID: ev.UserID, Fingerprint: fp, Risk: result}, nil
}

func (s *service) score(ev event.LoginEvent) (Response, fingerprint.Fingerprint, error) {
	if ev.UserID == "" {
		return Response{}, fingerprint.Fingerprint{}, fmt.Errorf("user_id is required")
	}
	fp := fingerprint.Normalize(ev)

	s.g.AddObservation(ev.UserID, fp.BehaviorHash, ev.CanvasHash, fingerprint.IPPrefix(ev.IPAddress))
	density := s.g.ClusterDensity(ev.UserID)

	anomalyScore := s.scorer.Score(fp.FeatureVector)
	// Peer vectors are not collected at simulate time; the peer signal
	// arrives through cluster density instead.
	similarity := risk.SimilarityScore(fp.FeatureVector, nil)

	result := risk.Fuse(anomalyScore, similarity, fp.IPEntropy, density, s.thresholds.Get().RiskScore)
	return Response{UserID: ev.UserID, Fingerprint: fp, Risk: result}, fp, nil
}

func (s *service) toRecord(resp Response, ev event.LoginEvent, fp fingerprint.Fingerprint) *event.Record {
	return &event.Record{
		ID:               uuid.NewString(),
		UserID:           ev.UserID,
		IPAddress:        ev.IPAddress,
		UserAgent:        ev.UserAgent,
		WebGLHash:        ev.WebGLHash,
		CanvasHash:       ev.CanvasHash,
		ScreenResolution: ev.ScreenResolution,
		Timezone:         ev.Timezone,
		LoginTimestamp:   ev.LoginTimestamp,
		BehaviorHash:     fp.BehaviorHash,
		EntropyScore:     fp.EntropyScore,
		IPEntropy:        fp.IPEntropy,
		DeviceEntropy:    fp.DeviceEntropy,
		RiskScore:        resp.Risk.RiskScore,
		IsSuspicious:     resp.Risk.IsSuspicious,
		AnomalyScore:     resp.Risk.AnomalyScore,
		SimilarityScore:  resp.Risk.SimilarityScore,
		ClusterDensity:   resp.Risk.ClusterDensity,
		Flagged:          s.g.IsFlagged(ev.UserID),
	}
}
