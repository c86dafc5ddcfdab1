package cluster

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/NeuralTrust/AuthShield/pkg/app/freeze"
	"github.com/NeuralTrust/AuthShield/pkg/domain/threshold"
	"github.com/NeuralTrust/AuthShield/pkg/graph"
	metrics "github.com/NeuralTrust/AuthShield/pkg/infra/prometheus"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"
)

const defaultMaxConcurrentFreezes = 5

// SweepResult summarizes one cluster-detection pass.
type SweepResult struct {
	FlaggedCount int                  `json:"flagged_count"`
	FrozenCount  int                  `json:"frozen_count"`
	FrozenUsers  []string             `json:"frozen_users"`
	Flagged      []graph.FlaggedUser  `json:"flagged"`
	Thresholds   threshold.Thresholds `json:"thresholds"`
	Failures     map[string]string    `json:"failures,omitempty"`
}

// Detector runs cluster-detection sweeps over the similarity graph and
// drives freeze actions for qualifying accounts.
type Detector interface {
	Sweep(ctx context.Context) (SweepResult, error)
}

type detector struct {
	g           *graph.Graph
	thresholds  threshold.Store
	freezer     freeze.Manager
	maxInFlight int64
	logger      *logrus.Logger
}

func NewDetector(
	g *graph.Graph,
	thresholds threshold.Store,
	freezer freeze.Manager,
	maxConcurrentFreezes int,
	logger *logrus.Logger,
) Detector {
	if maxConcurrentFreezes < 1 {
		maxConcurrentFreezes = defaultMaxConcurrentFreezes
	}
	return &detector{
		g:           g,
		thresholds:  thresholds,
		freezer:     freezer,
		maxInFlight: int64(maxConcurrentFreezes),
		logger:      logger,
	}
}

// Sweep evaluates the whole graph against the current thresholds, then
// freezes each flagged account on its own goroutine with bounded fan-out.
// Cancelling the context aborts the sweep; accounts not yet processed keep
// their flag untouched, as if the sweep had never reached them.
func (d *detector) Sweep(ctx context.Context) (SweepResult, error) {
	start := time.Now()
	defer func() {
		metrics.ClusterSweepDuration.Observe(time.Since(start).Seconds())
	}()

	t := d.thresholds.Get()
	flagged := d.g.FlaggedUsers(t.ClusterSize, t.Similarity, t.RiskScore)
	metrics.FlaggedAccounts.Set(float64(len(flagged)))

	result := SweepResult{
		FlaggedCount: len(flagged),
		Flagged:      flagged,
		FrozenUsers:  []string{},
		Thresholds:   t,
	}

	d.logger.WithFields(logrus.Fields{
		"flagged":      len(flagged),
		"cluster_size": t.ClusterSize,
		"risk_score":   t.RiskScore,
	}).Info("cluster sweep evaluated graph")

	sem := semaphore.NewWeighted(d.maxInFlight)
	var wg sync.WaitGroup
	var mu sync.Mutex
	failures := make(map[string]string)

	for _, fu := range flagged {
		if err := sem.Acquire(ctx, 1); err != nil {
			// Aborted mid-sweep. Remaining users keep their flag so the
			// next sweep picks them up.
			wg.Wait()
			d.finish(&result, failures)
			return result, fmt.Errorf("sweep aborted: %w", err)
		}

		wg.Add(1)
		go func(fu graph.FlaggedUser) {
			defer wg.Done()
			defer sem.Release(1)

			reason := fmt.Sprintf("botnet cluster of %d accounts", fu.ClusterSize)
			clusterID := d.g.ClusterID(fu.UserID)
			res := d.freezer.Freeze(ctx, fu.UserID, reason, fu.RiskScore, clusterID)

			mu.Lock()
			defer mu.Unlock()
			if res.Success {
				result.FrozenUsers = append(result.FrozenUsers, fu.UserID)
			} else if res.Error != "" {
				failures[fu.UserID] = res.Error
			}
		}(fu)
	}

	wg.Wait()
	d.finish(&result, failures)
	return result, nil
}

func (d *detector) finish(result *SweepResult, failures map[string]string) {
	result.FrozenCount = len(result.FrozenUsers)
	if len(failures) > 0 {
		result.Failures = failures
	}
	d.logger.WithFields(logrus.Fields{
		"flagged": result.FlaggedCount,
		"frozen":  result.FrozenCount,
		"failed":  len(failures),
	}).Info("cluster sweep finished")
}
