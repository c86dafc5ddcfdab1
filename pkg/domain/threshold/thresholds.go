package threshold

import (
	"context"
	"fmt"
	"sync"

	"github.com/NeuralTrust/AuthShield/pkg/domain"
	"github.com/sirupsen/logrus"
)

// Thresholds is the process-wide detection configuration. The three fields
// are always read and written together; there are no partial updates.
type Thresholds struct {
	ClusterSize int     `json:"cluster_size"`
	Similarity  float64 `json:"similarity"`
	RiskScore   float64 `json:"risk_score"`
}

// Validate rejects out-of-range values outright rather than clamping, so a
// bad update can never silently weaken detection.
func (t Thresholds) Validate() error {
	if t.ClusterSize < 1 {
		return fmt.Errorf("%w: cluster_size must be >= 1, got %d", domain.ErrInvalidThresholds, t.ClusterSize)
	}
	if t.Similarity < 0 || t.Similarity > 1 {
		return fmt.Errorf("%w: similarity must be in [0,1], got %g", domain.ErrInvalidThresholds, t.Similarity)
	}
	if t.RiskScore < 0 || t.RiskScore > 1 {
		return fmt.Errorf("%w: risk_score must be in [0,1], got %g", domain.ErrInvalidThresholds, t.RiskScore)
	}
	return nil
}

// Defaults are the shipped detection thresholds, used whenever no valid
// configured value is available.
func Defaults() Thresholds {
	return Thresholds{ClusterSize: 5, Similarity: 0.85, RiskScore: 0.7}
}

// Repository is the optional durable backing for the store.
type Repository interface {
	Load(ctx context.Context) (Thresholds, error)
	Save(ctx context.Context, t Thresholds) error
}

// Store serves threshold snapshots to the policy layer.
type Store interface {
	Get() Thresholds
	Set(ctx context.Context, t Thresholds) error
}

type store struct {
	mu      sync.RWMutex
	current Thresholds
	repo    Repository
	logger  *logrus.Logger
}

// NewStore seeds the store with defaults, then prefers a durably saved value
// if the repository has one. Both the seed and the saved value go through the
// same validation as runtime updates; an invalid one falls back to the shipped
// defaults rather than letting a zero threshold flag every account. Repo may
// be nil for a purely in-memory store.
func NewStore(defaults Thresholds, repo Repository, logger *logrus.Logger) Store {
	if err := defaults.Validate(); err != nil {
		logger.WithError(err).Warn("invalid seed thresholds, using shipped defaults")
		defaults = Defaults()
	}
	s := &store{current: defaults, repo: repo, logger: logger}
	if repo != nil {
		if saved, err := repo.Load(context.Background()); err == nil {
			if vErr := saved.Validate(); vErr == nil {
				s.current = saved
			} else {
				logger.WithError(vErr).Warn("ignoring invalid persisted thresholds")
			}
		} else if !domain.IsNotFoundError(err) {
			logger.WithError(err).Warn("thresholds store unavailable, using defaults")
		}
	}
	return s
}

func (s *store) Get() Thresholds {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *store) Set(ctx context.Context, t Thresholds) error {
	if err := t.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.current = t
	s.mu.Unlock()

	if s.repo != nil {
		if err := s.repo.Save(ctx, t); err != nil {
			// In-memory value already updated; durable backing is best effort.
			s.logger.WithError(err).Warn("failed to persist thresholds")
		}
	}
	return nil
}
