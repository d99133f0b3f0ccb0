// Package clustering implements the fitted models the annotation pipeline
// persists per task: plain k-means for coarse topical clusters,
// size-constrained k-means for edge-case rule grouping, and a 2-D PCA
// projector. All models serialize to JSON for storage.
package clustering

import (
	"fmt"
	"math"
	"math/rand"
)

const (
	maxIterations = 100
	fitSeed       = 42
)

// KMeans is a fitted k-means model. Centroids has K rows.
type KMeans struct {
	K         int         `json:"k"`
	Centroids [][]float64 `json:"centroids"`
}

// FitKMeans fits a k-means model on data and returns the model together
// with per-point cluster assignments. Fitting is deterministic: the
// k-means++ seeding uses a fixed seed.
func FitKMeans(data [][]float64, k int) (*KMeans, []int, error) {
	if err := validateData(data, k); err != nil {
		return nil, nil, err
	}

	rng := rand.New(rand.NewSource(fitSeed))
	centroids := seedCentroids(data, k, rng)
	labels := make([]int, len(data))

	for iter := 0; iter < maxIterations; iter++ {
		changed := false
		for i, point := range data {
			best := nearest(centroids, point)
			if best != labels[i] {
				labels[i] = best
				changed = true
			}
		}

		centroids = recompute(data, labels, k, centroids)

		if !changed && iter > 0 {
			break
		}
	}

	return &KMeans{K: k, Centroids: centroids}, labels, nil
}

// Predict returns the nearest-centroid cluster for each point.
func (m *KMeans) Predict(data [][]float64) []int {
	labels := make([]int, len(data))
	for i, point := range data {
		labels[i] = nearest(m.Centroids, point)
	}
	return labels
}

// PredictOne returns the nearest-centroid cluster for a single point.
func (m *KMeans) PredictOne(point []float64) int {
	return nearest(m.Centroids, point)
}

func validateData(data [][]float64, k int) error {
	if k < 1 {
		return fmt.Errorf("invalid cluster count: %d", k)
	}
	if len(data) < k {
		return fmt.Errorf("cannot fit %d clusters on %d points", k, len(data))
	}

	dim := len(data[0])
	for _, point := range data {
		if len(point) != dim {
			return fmt.Errorf("inconsistent point dimensions: %d vs %d", len(point), dim)
		}
	}
	return nil
}

// seedCentroids implements k-means++ seeding: each subsequent centroid is
// drawn with probability proportional to squared distance from the nearest
// already-chosen centroid.
func seedCentroids(data [][]float64, k int, rng *rand.Rand) [][]float64 {
	centroids := make([][]float64, 0, k)
	centroids = append(centroids, clone(data[rng.Intn(len(data))]))

	dists := make([]float64, len(data))
	for len(centroids) < k {
		var total float64
		for i, point := range data {
			d := sqDist(point, centroids[len(centroids)-1])
			if len(centroids) == 1 || d < dists[i] {
				dists[i] = d
			}
			total += dists[i]
		}

		if total == 0 {
			// All remaining points coincide with chosen centroids.
			centroids = append(centroids, clone(data[rng.Intn(len(data))]))
			continue
		}

		target := rng.Float64() * total
		var acc float64
		chosen := len(data) - 1
		for i, d := range dists {
			acc += d
			if acc >= target {
				chosen = i
				break
			}
		}
		centroids = append(centroids, clone(data[chosen]))
	}

	return centroids
}

func recompute(data [][]float64, labels []int, k int, prev [][]float64) [][]float64 {
	dim := len(data[0])
	sums := make([][]float64, k)
	counts := make([]int, k)
	for c := range sums {
		sums[c] = make([]float64, dim)
	}

	for i, point := range data {
		c := labels[i]
		counts[c]++
		for j, v := range point {
			sums[c][j] += v
		}
	}

	centroids := make([][]float64, k)
	for c := range centroids {
		if counts[c] == 0 {
			// Empty cluster keeps its previous centroid.
			centroids[c] = clone(prev[c])
			continue
		}
		centroids[c] = sums[c]
		for j := range centroids[c] {
			centroids[c][j] /= float64(counts[c])
		}
	}

	return centroids
}

func nearest(centroids [][]float64, point []float64) int {
	best := 0
	bestDist := math.Inf(1)
	for c, centroid := range centroids {
		if d := sqDist(point, centroid); d < bestDist {
			best = c
			bestDist = d
		}
	}
	return best
}

func sqDist(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

func clone(point []float64) []float64 {
	out := make([]float64, len(point))
	copy(out, point)
	return out
}
