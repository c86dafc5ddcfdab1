package repository

import (
	"context"
	"sync"
	"time"

	"github.com/NeuralTrust/AuthShield/pkg/domain/audit"
	"github.com/NeuralTrust/AuthShield/pkg/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AuditRepository records freeze/unfreeze actions with the same degradation
// contract as the event repository.
type AuditRepository struct {
	db     *gorm.DB
	logger *logrus.Logger

	mu     sync.RWMutex
	buffer []audit.FreezeAction
}

func NewAuditRepository(db *gorm.DB, logger *logrus.Logger) audit.Repository {
	return &AuditRepository{db: db, logger: logger}
}

func (r *AuditRepository) LogFreezeAction(ctx context.Context, userID, reason string, riskScore float64, clusterID string) error {
	return r.log(ctx, audit.FreezeAction{
		UserID:    userID,
		Action:    audit.ActionFreeze,
		Reason:    reason,
		RiskScore: riskScore,
		ClusterID: clusterID,
		Timestamp: time.Now().UTC(),
	})
}

func (r *AuditRepository) LogUnfreezeAction(ctx context.Context, userID string) error {
	return r.log(ctx, audit.FreezeAction{
		UserID:    userID,
		Action:    audit.ActionUnfreeze,
		Timestamp: time.Now().UTC(),
	})
}

func (r *AuditRepository) log(ctx context.Context, entry audit.FreezeAction) error {
	if r.db != nil {
		row := &models.FreezeActionRecord{
			UserID:    entry.UserID,
			Action:    entry.Action,
			Reason:    entry.Reason,
			RiskScore: entry.RiskScore,
			ClusterID: entry.ClusterID,
			TxRef:     entry.TxRef,
			Timestamp: entry.Timestamp,
		}
		if err := r.db.WithContext(ctx).Create(row).Error; err == nil {
			return nil
		} else {
			r.logger.WithError(err).Warn("freeze log persistence unavailable, buffering in memory")
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.buffer = append(r.buffer, entry)
	if len(r.buffer) > memoryBufferSize {
		r.buffer = r.buffer[len(r.buffer)-memoryBufferSize:]
	}
	return nil
}

func (r *AuditRepository) FreezeLog(ctx context.Context, limit int) ([]audit.FreezeAction, error) {
	if limit <= 0 {
		limit = 50
	}

	if r.db != nil {
		var rows []models.FreezeActionRecord
		err := r.db.WithContext(ctx).Order("timestamp DESC").Limit(limit).Find(&rows).Error
		if err == nil {
			out := make([]audit.FreezeAction, 0, len(rows))
			for _, row := range rows {
				out = append(out, audit.FreezeAction{
					UserID:    row.UserID,
					Action:    row.Action,
					Reason:    row.Reason,
					RiskScore: row.RiskScore,
					ClusterID: row.ClusterID,
					TxRef:     row.TxRef,
					Timestamp: row.Timestamp,
				})
			}
			return out, nil
		}
		r.logger.WithError(err).Warn("freeze log read failed, serving in-memory buffer")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	start := 0
	if len(r.buffer) > limit {
		start = len(r.buffer) - limit
	}
	out := make([]audit.FreezeAction, len(r.buffer)-start)
	copy(out, r.buffer[start:])
	return out, nil
}
