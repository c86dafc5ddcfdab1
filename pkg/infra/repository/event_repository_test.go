package repository_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/NeuralTrust/AuthShield/pkg/domain/event"
	"github.com/NeuralTrust/AuthShield/pkg/infra/repository"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.ErrorLevel)
	return l
}

// With no database handle the repository runs purely on the in-memory
// buffer; the scoring pipeline must not notice the difference.
func TestEventRepository_MemoryFallback(t *testing.T) {
	repo := repository.NewEventRepository(nil, testLogger())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		rec := &event.Record{
			ID:        fmt.Sprintf("id-%d", i),
			UserID:    fmt.Sprintf("user-%d", i%2),
			RiskScore: 0.5,
			Flagged:   i == 4,
		}
		require.NoError(t, repo.SaveEvent(ctx, rec))
		assert.False(t, rec.CreatedAt.IsZero(), "SaveEvent stamps created_at")
	}

	recent, err := repo.RecentEvents(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, recent, 3)

	all, err := repo.RecentEvents(ctx, 100)
	require.NoError(t, err)
	assert.Len(t, all, 5)

	mine, err := repo.UserEvents(ctx, "user-0")
	require.NoError(t, err)
	assert.Len(t, mine, 3) // ids 0, 2, 4

	flagged, err := repo.FlaggedUsers(ctx)
	require.NoError(t, err)
	require.Len(t, flagged, 1)
	assert.Equal(t, "id-4", flagged[0].ID)
}

func TestEventRepository_BufferIsBounded(t *testing.T) {
	repo := repository.NewEventRepository(nil, testLogger())
	ctx := context.Background()

	for i := 0; i < 1200; i++ {
		require.NoError(t, repo.SaveEvent(ctx, &event.Record{ID: fmt.Sprintf("id-%d", i), UserID: "u"}))
	}

	all, err := repo.RecentEvents(ctx, 5000)
	require.NoError(t, err)
	assert.Len(t, all, 1000)
	// Oldest entries were evicted.
	assert.Equal(t, "id-200", all[0].ID)
}

func TestAuditRepository_MemoryFallback(t *testing.T) {
	repo := repository.NewAuditRepository(nil, testLogger())
	ctx := context.Background()

	require.NoError(t, repo.LogFreezeAction(ctx, "user-1", "auto_cluster_freeze", 0.9, "cluster-3"))
	require.NoError(t, repo.LogUnfreezeAction(ctx, "user-1"))

	log, err := repo.FreezeLog(ctx, 10)
	require.NoError(t, err)
	require.Len(t, log, 2)
	assert.Equal(t, "freeze", log[0].Action)
	assert.Equal(t, 0.9, log[0].RiskScore)
	assert.Equal(t, "unfreeze", log[1].Action)
}
