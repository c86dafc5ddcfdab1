package config_test

import (
	"testing"

	"github.com/NeuralTrust/AuthShield/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileStillAppliesDefaults(t *testing.T) {
	err := config.Load(t.TempDir())

	require.Error(t, err)
	assert.True(t, config.IsFileNotFound(err))

	cfg := config.GetConfig()
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 9090, cfg.Server.MetricsPort)
	assert.Equal(t, 5, cfg.Thresholds.ClusterSize)
	assert.Equal(t, 0.85, cfg.Thresholds.Similarity)
	assert.Equal(t, 0.7, cfg.Thresholds.RiskScore)
	assert.Equal(t, int64(8), cfg.Sweep.MaxConcurrentFreezes)
}
