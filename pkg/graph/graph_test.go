package graph_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/NeuralTrust/AuthShield/pkg/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddObservation_Idempotent(t *testing.T) {
	g := graph.New()

	g.AddObservation("u1", "bh1", "dev1", "10.0.0")
	g.AddObservation("u2", "bh1", "dev2", "10.0.0")

	before := g.Peers("u1")
	beforeClusters := g.AllClusters()

	// Replaying the exact observation must not change peer sets or groups.
	g.AddObservation("u1", "bh1", "dev1", "10.0.0")

	assert.Equal(t, before, g.Peers("u1"))
	assert.Equal(t, beforeClusters, g.AllClusters())
}

func TestPeers_SharedBehaviorHashOnly(t *testing.T) {
	g := graph.New()
	g.AddObservation("u1", "bh1", "", "")
	g.AddObservation("u2", "bh1", "", "")
	g.AddObservation("u3", "bh2", "", "")

	assert.Equal(t, []string{"u2"}, g.Peers("u1"))
	assert.Empty(t, g.Peers("u3"))
	assert.Empty(t, g.Peers("unknown"))
}

func TestClusterDensity(t *testing.T) {
	t.Run("zero with fewer than two peers", func(t *testing.T) {
		g := graph.New()
		g.AddObservation("u1", "bh1", "", "")
		assert.Equal(t, 0.0, g.ClusterDensity("u1"))

		g.AddObservation("u2", "bh1", "", "")
		assert.Equal(t, 0.0, g.ClusterDensity("u1")) // one peer
	})

	t.Run("one when every peer pair shares a hash", func(t *testing.T) {
		g := graph.New()
		for _, id := range []string{"u1", "u2", "u3", "u4"} {
			g.AddObservation(id, "bh-common", "", "")
		}
		assert.Equal(t, 1.0, g.ClusterDensity("u1"))
	})

	t.Run("partial connectivity", func(t *testing.T) {
		g := graph.New()
		// u2 and u3 are peers of u1 via separate hashes and do not share one.
		g.AddObservation("u1", "bh-a", "", "")
		g.AddObservation("u1", "bh-b", "", "")
		g.AddObservation("u2", "bh-a", "", "")
		g.AddObservation("u3", "bh-b", "", "")
		assert.Equal(t, 0.0, g.ClusterDensity("u1"))

		// Connect the pair through a third hash.
		g.AddObservation("u2", "bh-c", "", "")
		g.AddObservation("u3", "bh-c", "", "")
		assert.Equal(t, 1.0, g.ClusterDensity("u1"))
	})
}

func TestFlaggedUsers(t *testing.T) {
	g := graph.New()
	for i := 0; i < 10; i++ {
		id := fmt.Sprintf("bot-%d", i)
		g.AddObservation(id, "bh-botnet", "shared-canvas", "203.0.113")
		g.UpdateUserRisk(id, 0.82)
	}
	g.AddObservation("civilian", "bh-solo", "", "198.51.100")
	g.UpdateUserRisk("civilian", 0.95)

	flagged := g.FlaggedUsers(5, 0.85, 0.7)

	require.Len(t, flagged, 10)
	for _, f := range flagged {
		assert.Equal(t, 9, f.ClusterSize)
		assert.InDelta(t, 0.82, f.RiskScore, 1e-9)
		assert.InDelta(t, 0.82, f.AvgPeerRisk, 1e-9)
		assert.True(t, g.IsFlagged(f.UserID))
	}
	assert.False(t, g.IsFlagged("civilian")) // high risk but no cluster
}

func TestFlaggedUsers_RiskThresholdIsInclusive(t *testing.T) {
	g := graph.New()
	for i := 0; i < 3; i++ {
		id := fmt.Sprintf("u%d", i)
		g.AddObservation(id, "bh", "", "")
		g.UpdateUserRisk(id, 0.7)
	}

	assert.Len(t, g.FlaggedUsers(2, 0.85, 0.7), 3)
	assert.Empty(t, g.FlaggedUsers(2, 0.85, 0.7001))
}

func TestClearFlag(t *testing.T) {
	g := graph.New()
	for i := 0; i < 3; i++ {
		id := fmt.Sprintf("u%d", i)
		g.AddObservation(id, "bh", "", "")
		g.UpdateUserRisk(id, 0.9)
	}
	g.FlaggedUsers(2, 0.85, 0.7)
	require.True(t, g.IsFlagged("u0"))

	g.ClearFlag("u0")
	assert.False(t, g.IsFlagged("u0"))

	// Unknown users are a no-op, not a crash or a spurious node.
	g.ClearFlag("ghost")
	assert.False(t, g.HasUser("ghost"))
}

func TestUpdateUserRisk_UnknownUserIgnored(t *testing.T) {
	g := graph.New()
	g.UpdateUserRisk("ghost", 0.9)
	assert.False(t, g.HasUser("ghost"))
	assert.Equal(t, 0.0, g.RiskScore("ghost"))
}

func TestUserCluster(t *testing.T) {
	g := graph.New()
	g.AddObservation("u1", "bh", "", "")
	g.AddObservation("u2", "bh", "", "")
	g.AddObservation("u3", "bh", "", "")
	g.UpdateUserRisk("u2", 0.4)

	cluster := g.UserCluster("u1")

	assert.Equal(t, "u1", cluster.UserID)
	assert.Equal(t, 2, cluster.ClusterSize)
	require.Len(t, cluster.Peers, 2)
	assert.Equal(t, graph.Peer{UserID: "u2", RiskScore: 0.4}, cluster.Peers[0])
	assert.Equal(t, graph.Peer{UserID: "u3", RiskScore: 0}, cluster.Peers[1])
}

func TestAllClusters(t *testing.T) {
	g := graph.New()
	g.AddObservation("a", "bh-big", "", "")
	g.AddObservation("b", "bh-big", "", "")
	g.AddObservation("c", "bh-big", "", "")
	g.AddObservation("d", "bh-small", "", "")
	g.AddObservation("e", "bh-small", "", "")
	g.AddObservation("f", "bh-solo", "", "")

	clusters := g.AllClusters()

	require.Len(t, clusters, 2) // singleton groups excluded
	assert.Equal(t, "bh-big", clusters[0].BehaviorHash)
	assert.Equal(t, []string{"a", "b", "c"}, clusters[0].Members)
	assert.Equal(t, "bh-small", clusters[1].BehaviorHash)
}

func TestConcurrentObservations(t *testing.T) {
	g := graph.New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("u%d", i%10)
			for j := 0; j < 20; j++ {
				g.AddObservation(id, "bh-shared", fmt.Sprintf("dev-%d", i), "192.0.2")
				g.UpdateUserRisk(id, 0.5)
				g.ClusterDensity(id)
			}
		}(i)
	}
	wg.Wait()

	// 10 users all sharing one hash: everyone has 9 peers.
	assert.Len(t, g.Peers("u0"), 9)
	assert.Equal(t, 1.0, g.ClusterDensity("u0"))
}

func TestClusterID_DominantBehaviorHash(t *testing.T) {
	g := graph.New()
	g.AddObservation("a", "bh-big", "d1", "10.0.0")
	g.AddObservation("b", "bh-big", "d2", "10.0.0")
	g.AddObservation("c", "bh-big", "d3", "10.0.0")
	g.AddObservation("a", "bh-small", "d1", "10.0.0")
	g.AddObservation("z", "bh-small", "d9", "10.0.1")

	assert.Equal(t, "bh-big", g.ClusterID("a"))
	assert.Equal(t, "bh-small", g.ClusterID("z"))
	assert.Equal(t, "", g.ClusterID("ghost"))
	assert.Equal(t, 4, g.UserCount())
}
