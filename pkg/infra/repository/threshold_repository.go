package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/NeuralTrust/AuthShield/pkg/cache"
	"github.com/NeuralTrust/AuthShield/pkg/common"
	"github.com/NeuralTrust/AuthShield/pkg/domain"
	"github.com/NeuralTrust/AuthShield/pkg/domain/threshold"
	"github.com/go-redis/redis/v8"
)

// ThresholdRepository durably backs the thresholds store in Redis so an
// operator-tuned configuration survives restarts.
type ThresholdRepository struct {
	cache common.Cache
}

func NewThresholdRepository(c common.Cache) threshold.Repository {
	return &ThresholdRepository{cache: c}
}

func (r *ThresholdRepository) Load(ctx context.Context) (threshold.Thresholds, error) {
	raw, err := r.cache.Get(ctx, cache.ThresholdsKey)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return threshold.Thresholds{}, domain.NewNotFoundError("thresholds", "active")
		}
		return threshold.Thresholds{}, fmt.Errorf("failed to load thresholds: %w", err)
	}

	var t threshold.Thresholds
	if err := json.Unmarshal([]byte(raw), &t); err != nil {
		return threshold.Thresholds{}, fmt.Errorf("corrupt thresholds entry: %w", err)
	}
	return t, nil
}

func (r *ThresholdRepository) Save(ctx context.Context, t threshold.Thresholds) error {
	raw, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to marshal thresholds: %w", err)
	}
	return r.cache.Set(ctx, cache.ThresholdsKey, string(raw), common.ThresholdsCacheTTL)
}
