package repository_test

import (
	"context"
	"testing"

	appcache "github.com/NeuralTrust/AuthShield/pkg/cache"
	"github.com/NeuralTrust/AuthShield/pkg/common"
	"github.com/NeuralTrust/AuthShield/pkg/domain"
	"github.com/NeuralTrust/AuthShield/pkg/domain/threshold"
	"github.com/NeuralTrust/AuthShield/pkg/infra/repository"
	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThresholdRepository_SaveAndLoad(t *testing.T) {
	db, mock := redismock.NewClientMock()
	repo := repository.NewThresholdRepository(appcache.NewCacheWithClient(db))

	want := threshold.Thresholds{ClusterSize: 5, Similarity: 0.85, RiskScore: 0.7}
	payload := `{"cluster_size":5,"similarity":0.85,"risk_score":0.7}`

	mock.ExpectSet(appcache.ThresholdsKey, payload, common.ThresholdsCacheTTL).SetVal("OK")
	require.NoError(t, repo.Save(context.Background(), want))

	mock.ExpectGet(appcache.ThresholdsKey).SetVal(payload)
	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, got)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestThresholdRepository_LoadMissingKey(t *testing.T) {
	db, mock := redismock.NewClientMock()
	repo := repository.NewThresholdRepository(appcache.NewCacheWithClient(db))

	mock.ExpectGet(appcache.ThresholdsKey).RedisNil()

	_, err := repo.Load(context.Background())
	assert.True(t, domain.IsNotFoundError(err))
}

func TestThresholdRepository_LoadCorruptEntry(t *testing.T) {
	db, mock := redismock.NewClientMock()
	repo := repository.NewThresholdRepository(appcache.NewCacheWithClient(db))

	mock.ExpectGet(appcache.ThresholdsKey).SetVal("{not json")

	_, err := repo.Load(context.Background())
	require.Error(t, err)
	assert.False(t, domain.IsNotFoundError(err))
}
