package anomaly

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
)

// NeutralScore is served whenever no trained baseline exists, so the fused
// risk signal degrades instead of failing.
const NeutralScore = 0.5

// Scorer scores feature vectors against an offline-trained baseline of
// normal login behavior. Safe for concurrent use; Train swaps the model
// atomically.
type Scorer struct {
	mu     sync.RWMutex
	forest *isolationForest
	path   string
	logger *logrus.Logger
}

// NewScorer loads the serialized model artifact once at startup. A missing
// or unreadable artifact is not an error: the scorer serves NeutralScore
// until trained.
func NewScorer(modelPath string, logger *logrus.Logger) *Scorer {
	s := &Scorer{path: modelPath, logger: logger}

	data, err := os.ReadFile(modelPath)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.WithError(err).Warn("failed to read anomaly model artifact")
		}
		logger.WithField("path", modelPath).Info("no anomaly model artifact, serving neutral scores")
		return s
	}

	var forest isolationForest
	if err := json.Unmarshal(data, &forest); err != nil {
		logger.WithError(err).Warn("corrupt anomaly model artifact, serving neutral scores")
		return s
	}
	s.forest = &forest
	logger.WithFields(logrus.Fields{
		"trees":          len(forest.Trees),
		"subsample_size": forest.SubsampleSize,
	}).Info("anomaly model loaded")
	return s
}

// Trained reports whether a baseline model is in memory.
func (s *Scorer) Trained() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.forest != nil
}

// Score maps a feature vector to an anomaly score in [0,1]; higher = more
// anomalous. The raw isolation decision value is remapped by the fixed
// affine transform the rest of the pipeline was calibrated against.
func (s *Scorer) Score(vector []float64) float64 {
	s.mu.RLock()
	forest := s.forest
	s.mu.RUnlock()

	if forest == nil || len(vector) == 0 {
		return NeutralScore
	}

	// decision > 0 for inliers, < 0 for outliers, mirroring the usual
	// decision_function convention.
	decision := 0.5 - forest.isolationScore(vector)
	score := (decision + 0.5) / 1.5
	return math.Max(0, math.Min(1, 0.5-score))
}

// Train fits a new forest on a corpus of normal vectors and persists it with
// a write-then-rename swap so a crash mid-write never leaves a partial
// artifact being served.
func (s *Scorer) Train(vectors [][]float64) error {
	if len(vectors) == 0 {
		return fmt.Errorf("cannot train on an empty corpus")
	}

	forest := trainForest(vectors)

	data, err := json.Marshal(forest)
	if err != nil {
		return fmt.Errorf("failed to serialize model: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), "model-*.json.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp artifact: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write model artifact: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close model artifact: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to swap model artifact: %w", err)
	}

	s.mu.Lock()
	s.forest = forest
	s.mu.Unlock()

	s.logger.WithFields(logrus.Fields{
		"corpus_size": len(vectors),
		"trees":       len(forest.Trees),
	}).Info("anomaly model trained")
	return nil
}
