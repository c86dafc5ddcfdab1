// Package graph maintains the in-memory similarity graph linking users to
// behavior hashes, device hashes and IP prefixes, and derives the peer and
// cluster signals consumed by risk fusion and cluster detection.
package graph

import (
	"sort"
	"sync"
)

type userNode struct {
	behaviors  map[string]struct{}
	devices    map[string]struct{}
	ipPrefixes map[string]struct{}
	riskScore  float64
	flagged    bool
}

// Graph is an adjacency/index structure over users and their fingerprint
// groups. Node identity is keyed by user id and unique; users are never
// deleted. All methods are safe for concurrent use; edge upserts are
// idempotent and commutative, risk updates are last-writer-wins.
type Graph struct {
	mu              sync.RWMutex
	users           map[string]*userNode
	behaviorMembers map[string]map[string]struct{}
	deviceMembers   map[string]map[string]struct{}
	ipMembers       map[string]map[string]struct{}
}

func New() *Graph {
	return &Graph{
		users:           make(map[string]*userNode),
		behaviorMembers: make(map[string]map[string]struct{}),
		deviceMembers:   make(map[string]map[string]struct{}),
		ipMembers:       make(map[string]map[string]struct{}),
	}
}

// FlaggedUser is one qualifying row of a cluster-detection pass.
type FlaggedUser struct {
	UserID      string  `json:"user_id"`
	RiskScore   float64 `json:"risk_score"`
	ClusterSize int     `json:"cluster_size"`
	AvgPeerRisk float64 `json:"avg_cluster_risk"`
}

// Peer is a neighbor in a user's cluster view.
type Peer struct {
	UserID    string  `json:"user_id"`
	RiskScore float64 `json:"risk_score"`
}

// Cluster is one user's peer neighborhood.
type Cluster struct {
	UserID      string `json:"user_id"`
	Peers       []Peer `json:"peers"`
	ClusterSize int    `json:"cluster_size"`
}

// BehaviorCluster groups every user that produced the same behavior hash.
type BehaviorCluster struct {
	BehaviorHash string   `json:"behavior_hash"`
	Members      []string `json:"members"`
	Size         int      `json:"size"`
}

// AddObservation upserts the user node and its USED_BEHAVIOR, SHARED_DEVICE
// and LOGIN_FROM edges. Empty hash/prefix values are skipped. Calling it
// twice with identical arguments leaves the graph unchanged.
func (g *Graph) AddObservation(userID, behaviorHash, deviceHash, ipPrefix string) {
	if userID == "" {
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	node := g.users[userID]
	if node == nil {
		node = &userNode{
			behaviors:  make(map[string]struct{}),
			devices:    make(map[string]struct{}),
			ipPrefixes: make(map[string]struct{}),
		}
		g.users[userID] = node
	}

	if behaviorHash != "" {
		node.behaviors[behaviorHash] = struct{}{}
		addMember(g.behaviorMembers, behaviorHash, userID)
	}
	if deviceHash != "" {
		node.devices[deviceHash] = struct{}{}
		addMember(g.deviceMembers, deviceHash, userID)
	}
	if ipPrefix != "" {
		node.ipPrefixes[ipPrefix] = struct{}{}
		addMember(g.ipMembers, ipPrefix, userID)
	}
}

// UpdateUserRisk stores the latest fused risk score on an existing user
// node. Unknown users are ignored, matching the upsert-then-update order of
// the scoring pipeline.
func (g *Graph) UpdateUserRisk(userID string, riskScore float64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if node, ok := g.users[userID]; ok {
		node.riskScore = riskScore
	}
}

// Peers returns the users sharing at least one behavior hash with userID.
func (g *Graph) Peers(userID string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	peers := g.peerSet(userID)
	out := make([]string, 0, len(peers))
	for id := range peers {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// ClusterDensity measures coordination tightness: the fraction of the
// user's peer pairs that themselves share a behavior hash. 0 with fewer
// than 2 peers, 1.0 when every peer pair is connected.
func (g *Graph) ClusterDensity(userID string) float64 {
	g.mu.RLock()
	defer g.mu.RUnlock()

	peerSet := g.peerSet(userID)
	if len(peerSet) < 2 {
		return 0
	}

	peers := make([]string, 0, len(peerSet))
	for id := range peerSet {
		peers = append(peers, id)
	}

	connected := 0
	for i := 0; i < len(peers); i++ {
		for j := i + 1; j < len(peers); j++ {
			if g.shareBehavior(peers[i], peers[j]) {
				connected++
			}
		}
	}

	maxConnections := len(peers) * (len(peers) - 1) / 2
	return float64(connected) / float64(maxConnections)
}

// FlaggedUsers runs a cluster-detection pass: a user qualifies when their
// peer count reaches clusterSizeThreshold and their stored risk score
// reaches riskThreshold. Qualifying users are marked flagged as a side
// effect. similarityThreshold is accepted for a stricter variant comparing
// SIMILAR_TO edge weights but is not applied here.
func (g *Graph) FlaggedUsers(clusterSizeThreshold int, similarityThreshold, riskThreshold float64) []FlaggedUser {
	_ = similarityThreshold

	g.mu.Lock()
	defer g.mu.Unlock()

	var flagged []FlaggedUser
	for userID, node := range g.users {
		peers := g.peerSet(userID)
		if len(peers) < clusterSizeThreshold || node.riskScore < riskThreshold {
			continue
		}

		var peerRiskSum float64
		for peerID := range peers {
			peerRiskSum += g.users[peerID].riskScore
		}

		node.flagged = true
		flagged = append(flagged, FlaggedUser{
			UserID:      userID,
			RiskScore:   node.riskScore,
			ClusterSize: len(peers),
			AvgPeerRisk: peerRiskSum / float64(len(peers)),
		})
	}

	sort.Slice(flagged, func(i, j int) bool { return flagged[i].UserID < flagged[j].UserID })
	return flagged
}

// ClearFlag resets the flagged marker after a freeze attempt is resolved.
// Safe for unknown users.
func (g *Graph) ClearFlag(userID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if node, ok := g.users[userID]; ok {
		node.flagged = false
	}
}

// IsFlagged reports the current flagged marker for a user.
func (g *Graph) IsFlagged(userID string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	node, ok := g.users[userID]
	return ok && node.flagged
}

// RiskScore returns the stored risk score for a user, 0 if unknown.
func (g *Graph) RiskScore(userID string) float64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if node, ok := g.users[userID]; ok {
		return node.riskScore
	}
	return 0
}

// UserCount reports the number of user nodes in the graph.
func (g *Graph) UserCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.users)
}

// ClusterID identifies the user's dominant cluster: the behavior hash with
// the most members, ties broken lexicographically. Empty for unknown users.
func (g *Graph) ClusterID(userID string) string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	node, ok := g.users[userID]
	if !ok {
		return ""
	}
	best := ""
	bestSize := -1
	for hash := range node.behaviors {
		size := len(g.behaviorMembers[hash])
		if size > bestSize || (size == bestSize && hash < best) {
			best, bestSize = hash, size
		}
	}
	return best
}

// HasUser reports whether a user node exists.
func (g *Graph) HasUser(userID string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.users[userID]
	return ok
}

// UserCluster returns one user's peer neighborhood with peer risk scores.
func (g *Graph) UserCluster(userID string) Cluster {
	g.mu.RLock()
	defer g.mu.RUnlock()

	peerSet := g.peerSet(userID)
	peers := make([]Peer, 0, len(peerSet))
	for peerID := range peerSet {
		peers = append(peers, Peer{UserID: peerID, RiskScore: g.users[peerID].riskScore})
	}
	sort.Slice(peers, func(i, j int) bool { return peers[i].UserID < peers[j].UserID })

	return Cluster{UserID: userID, Peers: peers, ClusterSize: len(peers)}
}

// AllClusters lists behavior-hash groups with more than one member, largest
// first.
func (g *Graph) AllClusters() []BehaviorCluster {
	g.mu.RLock()
	defer g.mu.RUnlock()

	clusters := make([]BehaviorCluster, 0)
	for hash, members := range g.behaviorMembers {
		if len(members) < 2 {
			continue
		}
		ids := make([]string, 0, len(members))
		for id := range members {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		clusters = append(clusters, BehaviorCluster{BehaviorHash: hash, Members: ids, Size: len(ids)})
	}

	sort.Slice(clusters, func(i, j int) bool {
		if clusters[i].Size != clusters[j].Size {
			return clusters[i].Size > clusters[j].Size
		}
		return clusters[i].BehaviorHash < clusters[j].BehaviorHash
	})
	return clusters
}

// peerSet collects users sharing any behavior hash with userID. Caller
// holds at least a read lock.
func (g *Graph) peerSet(userID string) map[string]struct{} {
	node, ok := g.users[userID]
	if !ok {
		return nil
	}
	peers := make(map[string]struct{})
	for hash := range node.behaviors {
		for memberID := range g.behaviorMembers[hash] {
			if memberID != userID {
				peers[memberID] = struct{}{}
			}
		}
	}
	return peers
}

// shareBehavior reports whether two users have a behavior hash in common.
// Caller holds at least a read lock.
func (g *Graph) shareBehavior(a, b string) bool {
	na, nb := g.users[a], g.users[b]
	if na == nil || nb == nil {
		return false
	}
	// Iterate the smaller set.
	if len(nb.behaviors) < len(na.behaviors) {
		na, nb = nb, na
	}
	for hash := range na.behaviors {
		if _, ok := nb.behaviors[hash]; ok {
			return true
		}
	}
	return false
}

func addMember(index map[string]map[string]struct{}, key, userID string) {
	members := index[key]
	if members == nil {
		members = make(map[string]struct{})
		index[key] = members
	}
	members[userID] = struct{}{}
}
