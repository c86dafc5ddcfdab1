// Package risk fuses the independent fraud signals into a single score and
// the suspicion decision against the configured threshold.
package risk

import (
	"math"
)

// Fixed fusion weights. Calibrated offline together with the anomaly model
// remap; changing one without the other shifts the operating point.
const (
	anomalyWeight    = 0.40
	similarityWeight = 0.30
	ipEntropyWeight  = 0.15
	densityWeight    = 0.15
)

// Result is the fused risk outcome attached to an event record for audit.
// Never mutated after creation.
type Result struct {
	RiskScore       float64 `json:"risk_score"`
	IsSuspicious    bool    `json:"is_suspicious"`
	AnomalyScore    float64 `json:"anomaly_score"`
	SimilarityScore float64 `json:"similarity_score"`
	IPEntropy       float64 `json:"ip_entropy"`
	ClusterDensity  float64 `json:"cluster_density"`
}

// Fuse combines the four sub-scores with the fixed weights, clamps to [0,1]
// and rounds to 4 decimal places for reporting. The suspicion flag is
// boundary-exact: suspicious iff riskScore > riskThreshold, never >=.
func Fuse(anomalyScore, similarityScore, ipEntropy, clusterDensity, riskThreshold float64) Result {
	score := anomalyWeight*anomalyScore +
		similarityWeight*similarityScore +
		ipEntropyWeight*ipEntropy +
		densityWeight*clusterDensity

	score = round4(math.Max(0, math.Min(1, score)))

	return Result{
		RiskScore:       score,
		IsSuspicious:    score > riskThreshold,
		AnomalyScore:    round4(anomalyScore),
		SimilarityScore: round4(similarityScore),
		IPEntropy:       round4(ipEntropy),
		ClusterDensity:  round4(clusterDensity),
	}
}

// SimilarityScore is the cosine similarity between a feature vector and the
// centroid of its peer cluster's vectors, clamped to [0,1]. Returns 0 when
// no peer vectors are supplied.
//
// The live scoring path always supplies an empty peer set and relies on
// cluster density for the peer signal; only the batch path feeds vectors
// here. That asymmetry is intentional and pinned by tests.
func SimilarityScore(vector []float64, clusterVectors [][]float64) float64 {
	if len(vector) == 0 || len(clusterVectors) == 0 {
		return 0
	}

	centroid := make([]float64, len(vector))
	counted := 0
	for _, cv := range clusterVectors {
		if len(cv) != len(vector) {
			continue
		}
		for i, v := range cv {
			centroid[i] += v
		}
		counted++
	}
	if counted == 0 {
		return 0
	}
	for i := range centroid {
		centroid[i] /= float64(counted)
	}

	var dot, normA, normB float64
	for i := range vector {
		dot += vector[i] * centroid[i]
		normA += vector[i] * vector[i]
		normB += centroid[i] * centroid[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	cos := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	return math.Max(0, math.Min(1, cos))
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
