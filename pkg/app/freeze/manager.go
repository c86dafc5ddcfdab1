package freeze

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/NeuralTrust/AuthShield/internal/syncutil"
	appCache "github.com/NeuralTrust/AuthShield/pkg/cache"
	"github.com/NeuralTrust/AuthShield/pkg/common"
	"github.com/NeuralTrust/AuthShield/pkg/domain/account"
	"github.com/NeuralTrust/AuthShield/pkg/domain/audit"
	"github.com/NeuralTrust/AuthShield/pkg/graph"
	"github.com/NeuralTrust/AuthShield/pkg/infra/identity"
	"github.com/NeuralTrust/AuthShield/pkg/infra/ledger"
	metrics "github.com/NeuralTrust/AuthShield/pkg/infra/prometheus"
	"github.com/sirupsen/logrus"
)

const stateCacheTTL = 24 * time.Hour

// Manager owns the per-account freeze lifecycle. Transitions for one user
// are serialized through a keyed lock so two concurrent freeze attempts can
// never both succeed and double-log.
type Manager interface {
	Freeze(ctx context.Context, userID, reason string, riskScore float64, clusterID string) identity.ActionResult
	Unfreeze(ctx context.Context, userID string) identity.ActionResult
	State(userID string) account.State
	MarkActive(userID string)
}

type manager struct {
	provider identity.Provider
	auditor  audit.Repository
	ledger   ledger.Writer
	g        *graph.Graph
	cache    common.Cache
	logger   *logrus.Logger

	locks *syncutil.ShardedMutex

	mu     sync.RWMutex
	states map[string]account.State
}

func NewManager(
	provider identity.Provider,
	auditor audit.Repository,
	ledgerWriter ledger.Writer,
	g *graph.Graph,
	c common.Cache,
	logger *logrus.Logger,
) Manager {
	return &manager{
		provider: provider,
		auditor:  auditor,
		ledger:   ledgerWriter,
		g:        g,
		cache:    c,
		logger:   logger,
		locks:    &syncutil.ShardedMutex{},
		states:   make(map[string]account.State),
	}
}

// State returns ACTIVE for users never seen before.
func (m *manager) State(userID string) account.State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.states[userID]; ok {
		return s
	}
	return account.StateActive
}

// MarkActive re-enters ACTIVE on a fresh login event. It never blocks a new
// login; any prior state yields to ACTIVE.
func (m *manager) MarkActive(userID string) {
	unlock := m.locks.Lock(userID)
	defer unlock()
	m.setState(context.Background(), userID, account.StateActive)
}

// Freeze flags the account if needed, calls the identity provider and only
// transitions to FROZEN on a successful acknowledgment. The graph's flagged
// marker is cleared once the attempt resolves, success or terminal failure.
func (m *manager) Freeze(ctx context.Context, userID, reason string, riskScore float64, clusterID string) identity.ActionResult {
	unlock := m.locks.Lock(userID)
	defer unlock()

	current := m.State(userID)
	if current == account.StateFrozen {
		return identity.ActionResult{Success: false, UserID: userID, Status: "already_frozen"}
	}
	if current != account.StateFlagged {
		if !current.CanTransition(account.StateFlagged) {
			return identity.ActionResult{
				Success: false,
				UserID:  userID,
				Error:   fmt.Sprintf("cannot flag account in state %s", current),
			}
		}
		m.setState(ctx, userID, account.StateFlagged)
	}

	result := m.provider.Freeze(ctx, userID, reason)
	m.g.ClearFlag(userID)

	if !result.Success {
		metrics.FreezeActionsTotal.WithLabelValues(audit.ActionFreeze, "failure").Inc()
		m.logger.WithFields(logrus.Fields{
			"user_id": userID,
			"error":   result.Error,
		}).Warn("identity freeze call failed, account remains flagged")
		return result
	}

	m.setState(ctx, userID, account.StateFrozen)
	metrics.FreezeActionsTotal.WithLabelValues(audit.ActionFreeze, "success").Inc()

	if err := m.auditor.LogFreezeAction(ctx, userID, reason, riskScore, clusterID); err != nil {
		m.logger.WithError(err).WithField("user_id", userID).Error("failed to audit freeze action")
	}

	receipt := m.ledger.LogFreeze(ctx, userID, riskScore, clusterID)
	if receipt.Logged {
		metrics.LedgerWritesTotal.WithLabelValues("success").Inc()
		m.logger.WithFields(logrus.Fields{
			"user_id": userID,
			"tx_ref":  receipt.TxRef,
		}).Info("freeze recorded on ledger")
	} else {
		metrics.LedgerWritesTotal.WithLabelValues("failure").Inc()
		if receipt.Error != "" {
			m.logger.WithField("user_id", userID).WithField("error", receipt.Error).
				Warn("ledger write failed, freeze stands")
		}
	}

	return result
}

// Unfreeze is safe for users never observed before; nothing is created for
// them beyond the UNFROZEN bookkeeping entry.
func (m *manager) Unfreeze(ctx context.Context, userID string) identity.ActionResult {
	unlock := m.locks.Lock(userID)
	defer unlock()

	result := m.provider.Unfreeze(ctx, userID)
	if !result.Success {
		metrics.FreezeActionsTotal.WithLabelValues(audit.ActionUnfreeze, "failure").Inc()
		return result
	}

	m.setState(ctx, userID, account.StateUnfrozen)
	metrics.FreezeActionsTotal.WithLabelValues(audit.ActionUnfreeze, "success").Inc()

	if err := m.auditor.LogUnfreezeAction(ctx, userID); err != nil {
		m.logger.WithError(err).WithField("user_id", userID).Error("failed to audit unfreeze action")
	}

	return result
}

// setState updates the in-memory map and mirrors the state to Redis so other
// replicas can observe it. The cache write is best effort.
func (m *manager) setState(ctx context.Context, userID string, next account.State) {
	m.mu.Lock()
	m.states[userID] = next
	m.mu.Unlock()

	if m.cache == nil {
		return
	}
	key := fmt.Sprintf(appCache.AccountStateKeyPattern, userID)
	if err := m.cache.Set(ctx, key, string(next), stateCacheTTL); err != nil {
		m.logger.WithError(err).WithField("user_id", userID).Debug("failed to mirror account state to cache")
	}
}
