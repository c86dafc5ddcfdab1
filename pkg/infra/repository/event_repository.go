package repository

import (
	"context"
	"sync"
	"time"

	"github.com/NeuralTrust/AuthShield/pkg/domain/event"
	"github.com/NeuralTrust/AuthShield/pkg/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// memoryBufferSize bounds the fallback buffer used while the database is
// unreachable.
const memoryBufferSize = 1000

// EventRepository persists scored events to Postgres, degrading to a bounded
// in-memory buffer when the database is down so the scoring pipeline never
// blocks on persistence.
type EventRepository struct {
	db     *gorm.DB
	logger *logrus.Logger

	mu     sync.RWMutex
	buffer []event.Record
}

func NewEventRepository(db *gorm.DB, logger *logrus.Logger) event.Repository {
	return &EventRepository{db: db, logger: logger}
}

func (r *EventRepository) SaveEvent(ctx context.Context, record *event.Record) error {
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	if r.db != nil {
		if err := r.db.WithContext(ctx).Create(toModel(record)).Error; err == nil {
			return nil
		} else {
			r.logger.WithError(err).Warn("event persistence unavailable, buffering in memory")
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.buffer = append(r.buffer, *record)
	if len(r.buffer) > memoryBufferSize {
		r.buffer = r.buffer[len(r.buffer)-memoryBufferSize:]
	}
	return nil
}

func (r *EventRepository) RecentEvents(ctx context.Context, limit int) ([]event.Record, error) {
	if limit <= 0 {
		limit = 50
	}

	if r.db != nil {
		var rows []models.LoginEventRecord
		err := r.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&rows).Error
		if err == nil {
			return fromModels(rows), nil
		}
		r.logger.WithError(err).Warn("event store read failed, serving in-memory buffer")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	return tail(r.buffer, limit), nil
}

func (r *EventRepository) UserEvents(ctx context.Context, userID string) ([]event.Record, error) {
	if r.db != nil {
		var rows []models.LoginEventRecord
		err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at ASC").Find(&rows).Error
		if err == nil {
			return fromModels(rows), nil
		}
		r.logger.WithError(err).Warn("event store read failed, serving in-memory buffer")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []event.Record
	for _, rec := range r.buffer {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *EventRepository) FlaggedUsers(ctx context.Context) ([]event.Record, error) {
	if r.db != nil {
		var rows []models.LoginEventRecord
		err := r.db.WithContext(ctx).Where("flagged = ?", true).Order("created_at DESC").Find(&rows).Error
		if err == nil {
			return fromModels(rows), nil
		}
		r.logger.WithError(err).Warn("event store read failed, serving in-memory buffer")
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []event.Record
	for _, rec := range r.buffer {
		if rec.Flagged {
			out = append(out, rec)
		}
	}
	return out, nil
}

func tail(records []event.Record, limit int) []event.Record {
	if len(records) <= limit {
		out := make([]event.Record, len(records))
		copy(out, records)
		return out
	}
	out := make([]event.Record, limit)
	copy(out, records[len(records)-limit:])
	return out
}

func toModel(rec *event.Record) *models.LoginEventRecord {
	return &models.LoginEventRecord{
		ID:               rec.ID,
		UserID:           rec.UserID,
		IPAddress:        rec.IPAddress,
		UserAgent:        rec.UserAgent,
		WebGLHash:        rec.WebGLHash,
		CanvasHash:       rec.CanvasHash,
		ScreenResolution: rec.ScreenResolution,
		Timezone:         rec.Timezone,
		LoginTimestamp:   rec.LoginTimestamp,
		BehaviorHash:     rec.BehaviorHash,
		EntropyScore:     rec.EntropyScore,
		IPEntropy:        rec.IPEntropy,
		DeviceEntropy:    rec.DeviceEntropy,
		RiskScore:        rec.RiskScore,
		IsSuspicious:     rec.IsSuspicious,
		AnomalyScore:     rec.AnomalyScore,
		SimilarityScore:  rec.SimilarityScore,
		ClusterDensity:   rec.ClusterDensity,
		Flagged:          rec.Flagged,
		CreatedAt:        rec.CreatedAt,
	}
}

func fromModels(rows []models.LoginEventRecord) []event.Record {
	out := make([]event.Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, event.Record{
			ID:               row.ID,
			UserID:           row.UserID,
			IPAddress:        row.IPAddress,
			UserAgent:        row.UserAgent,
			WebGLHash:        row.WebGLHash,
			CanvasHash:       row.CanvasHash,
			ScreenResolution: row.ScreenResolution,
			Timezone:         row.Timezone,
			LoginTimestamp:   row.LoginTimestamp,
			BehaviorHash:     row.BehaviorHash,
			EntropyScore:     row.EntropyScore,
			IPEntropy:        row.IPEntropy,
			DeviceEntropy:    row.DeviceEntropy,
			RiskScore:        row.RiskScore,
			IsSuspicious:     row.IsSuspicious,
			AnomalyScore:     row.AnomalyScore,
			SimilarityScore:  row.SimilarityScore,
			ClusterDensity:   row.ClusterDensity,
			Flagged:          row.Flagged,
			CreatedAt:        row.CreatedAt,
		})
	}
	return out
}
