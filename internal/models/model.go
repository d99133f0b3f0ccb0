// Package models persists fitted clustering models per (task, purpose).
// A model is fit exactly once and reused for prediction on every later
// call; it is never refit or silently replaced.
package models

import (
	"fmt"
	"time"

	"github.com/annolab/curator/pkg/clustering"
)

// Purpose identifies which pipeline stage a model serves.
type Purpose string

const (
	// PurposeTopical clusters raw example texts during annotation.
	PurposeTopical Purpose = "topical"
	// PurposeSemantic clusters edge-case rule conditions during synthesis.
	PurposeSemantic Purpose = "semantic"
)

// Valid reports whether p is a known purpose.
func (p Purpose) Valid() bool {
	return p == PurposeTopical || p == PurposeSemantic
}

// Model is a fitted clustering model and its co-fit 2-D projector.
// Exactly one of KMeans and Constrained is set, depending on purpose.
type Model struct {
	TaskID      string                        `json:"task_id"`
	Purpose     Purpose                       `json:"purpose"`
	KMeans      *clustering.KMeans            `json:"kmeans,omitempty"`
	Constrained *clustering.ConstrainedKMeans `json:"constrained,omitempty"`
	PCA         *clustering.PCA               `json:"pca"`
	FittedAt    time.Time                     `json:"fitted_at"`
}

// Clusters returns the fitted estimator's cluster count.
func (m *Model) Clusters() int {
	switch {
	case m.KMeans != nil:
		return m.KMeans.K
	case m.Constrained != nil:
		return m.Constrained.K
	default:
		return 0
	}
}

// PredictOne assigns point to a cluster using whichever estimator is fitted.
func (m *Model) PredictOne(point []float64) (int, error) {
	switch {
	case m.KMeans != nil:
		return m.KMeans.PredictOne(point), nil
	case m.Constrained != nil:
		return m.Constrained.PredictOne(point), nil
	default:
		return 0, fmt.Errorf("%w: no estimator for %s/%s", ErrCorrupt, m.TaskID, m.Purpose)
	}
}

// Predict assigns every point to a cluster.
func (m *Model) Predict(points [][]float64) ([]int, error) {
	out := make([]int, len(points))
	for i, p := range points {
		c, err := m.PredictOne(p)
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}

// Project maps a point into the model's 2-D space.
func (m *Model) Project(point []float64) ([]float64, error) {
	if m.PCA == nil {
		return nil, fmt.Errorf("%w: no projector for %s/%s", ErrCorrupt, m.TaskID, m.Purpose)
	}
	return m.PCA.TransformOne(point), nil
}
