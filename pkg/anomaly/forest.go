package anomaly

import (
	"math"
	"math/rand"
)

const (
	defaultTreeCount     = 100
	defaultSubsampleSize = 256
	randomSeed           = 42
)

// treeNode is one node of an isolation tree. Leaves have no children and
// carry the size of the sample that terminated there.
type treeNode struct {
	SplitAttr int       `json:"attr,omitempty"`
	SplitVal  float64   `json:"val,omitempty"`
	Left      *treeNode `json:"l,omitempty"`
	Right     *treeNode `json:"r,omitempty"`
	Size      int       `json:"n,omitempty"`
}

func (n *treeNode) isLeaf() bool {
	return n.Left == nil && n.Right == nil
}

// isolationForest isolates anomalies by random axis-aligned splits: outliers
// separate from the sample in fewer splits than inliers.
type isolationForest struct {
	Trees         []*treeNode `json:"trees"`
	SubsampleSize int         `json:"subsample_size"`
	NumFeatures   int         `json:"num_features"`
}

func trainForest(vectors [][]float64) *isolationForest {
	if len(vectors) == 0 {
		return nil
	}

	subsample := defaultSubsampleSize
	if subsample > len(vectors) {
		subsample = len(vectors)
	}
	maxDepth := int(math.Ceil(math.Log2(float64(subsample))))

	rng := rand.New(rand.NewSource(randomSeed)) // #nosec G404 -- reproducible training, not crypto

	forest := &isolationForest{
		Trees:         make([]*treeNode, 0, defaultTreeCount),
		SubsampleSize: subsample,
		NumFeatures:   len(vectors[0]),
	}
	for i := 0; i < defaultTreeCount; i++ {
		sample := make([][]float64, subsample)
		for j := range sample {
			sample[j] = vectors[rng.Intn(len(vectors))]
		}
		forest.Trees = append(forest.Trees, buildTree(sample, 0, maxDepth, rng))
	}
	return forest
}

func buildTree(sample [][]float64, depth, maxDepth int, rng *rand.Rand) *treeNode {
	if depth >= maxDepth || len(sample) <= 1 {
		return &treeNode{Size: len(sample)}
	}

	attr := rng.Intn(len(sample[0]))
	minV, maxV := sample[0][attr], sample[0][attr]
	for _, v := range sample {
		if v[attr] < minV {
			minV = v[attr]
		}
		if v[attr] > maxV {
			maxV = v[attr]
		}
	}
	if minV == maxV {
		return &treeNode{Size: len(sample)}
	}

	split := minV + rng.Float64()*(maxV-minV)
	var left, right [][]float64
	for _, v := range sample {
		if v[attr] < split {
			left = append(left, v)
		} else {
			right = append(right, v)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return &treeNode{Size: len(sample)}
	}

	return &treeNode{
		SplitAttr: attr,
		SplitVal:  split,
		Left:      buildTree(left, depth+1, maxDepth, rng),
		Right:     buildTree(right, depth+1, maxDepth, rng),
	}
}

// pathLength walks the tree for a vector; terminated leaves are extended by
// the average unsuccessful-search depth of the remaining sample.
func pathLength(n *treeNode, vector []float64, depth float64) float64 {
	if n.isLeaf() {
		return depth + avgPathLength(n.Size)
	}
	if n.SplitAttr < len(vector) && vector[n.SplitAttr] < n.SplitVal {
		return pathLength(n.Left, vector, depth+1)
	}
	return pathLength(n.Right, vector, depth+1)
}

// avgPathLength is c(n), the average BST unsuccessful-search path length.
func avgPathLength(n int) float64 {
	if n <= 1 {
		return 0
	}
	f := float64(n)
	return 2*(math.Log(f-1)+0.5772156649) - 2*(f-1)/f
}

// isolationScore is the standard s(x) in (0,1]; higher isolates faster.
func (f *isolationForest) isolationScore(vector []float64) float64 {
	if len(f.Trees) == 0 {
		return 0.5
	}
	var total float64
	for _, tree := range f.Trees {
		total += pathLength(tree, vector, 0)
	}
	mean := total / float64(len(f.Trees))
	c := avgPathLength(f.SubsampleSize)
	if c == 0 {
		return 0.5
	}
	return math.Pow(2, -mean/c)
}
