package clustering

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// ConstrainedKMeans is a k-means variant whose fit assignment honors
// per-cluster size bounds. SizeMin/SizeMax of zero mean unconstrained.
// Prediction against a fitted model is plain nearest-centroid: bounds apply
// to the fitted partition, not to later single-point queries.
type ConstrainedKMeans struct {
	K         int         `json:"k"`
	SizeMin   int         `json:"size_min"`
	SizeMax   int         `json:"size_max"`
	Centroids [][]float64 `json:"centroids"`
}

// FitConstrained fits a size-constrained k-means model. The bounds prevent
// degenerate partitions (one giant cluster, many singletons) at
// small-to-medium N.
func FitConstrained(data [][]float64, k, sizeMin, sizeMax int) (*ConstrainedKMeans, []int, error) {
	if err := validateData(data, k); err != nil {
		return nil, nil, err
	}
	if err := validateBounds(len(data), k, sizeMin, sizeMax); err != nil {
		return nil, nil, err
	}

	rng := rand.New(rand.NewSource(fitSeed))
	centroids := seedCentroids(data, k, rng)

	var labels []int
	for iter := 0; iter < maxIterations; iter++ {
		next := assignBounded(data, centroids, k, sizeMin, sizeMax)
		centroids = recompute(data, next, k, centroids)

		if labels != nil && equalLabels(labels, next) {
			labels = next
			break
		}
		labels = next
	}

	model := &ConstrainedKMeans{
		K:         k,
		SizeMin:   sizeMin,
		SizeMax:   sizeMax,
		Centroids: centroids,
	}
	return model, labels, nil
}

// Predict returns the nearest-centroid cluster for each point.
func (m *ConstrainedKMeans) Predict(data [][]float64) []int {
	labels := make([]int, len(data))
	for i, point := range data {
		labels[i] = nearest(m.Centroids, point)
	}
	return labels
}

// PredictOne returns the nearest-centroid cluster for a single point.
func (m *ConstrainedKMeans) PredictOne(point []float64) int {
	return nearest(m.Centroids, point)
}

func validateBounds(n, k, sizeMin, sizeMax int) error {
	if sizeMin < 0 || sizeMax < 0 {
		return fmt.Errorf("negative size bound")
	}
	if sizeMin > 0 && sizeMax > 0 && sizeMin > sizeMax {
		return fmt.Errorf("size_min %d exceeds size_max %d", sizeMin, sizeMax)
	}
	if sizeMin > 0 && k*sizeMin > n {
		return fmt.Errorf("infeasible: %d clusters of at least %d need more than %d points", k, sizeMin, n)
	}
	if sizeMax > 0 && k*sizeMax < n {
		return fmt.Errorf("infeasible: %d clusters of at most %d cannot hold %d points", k, sizeMax, n)
	}
	return nil
}

// assignBounded performs one bounded assignment pass. Points with the
// strongest preference (largest margin between their best and second-best
// centroid) are placed first into their nearest non-full cluster; clusters
// still below the minimum then pull their cheapest donors from clusters
// with surplus.
func assignBounded(data [][]float64, centroids [][]float64, k, sizeMin, sizeMax int) []int {
	type pref struct {
		point  int
		margin float64
	}

	prefs := make([]pref, len(data))
	for i, point := range data {
		best, second := math.Inf(1), math.Inf(1)
		for _, centroid := range centroids {
			d := sqDist(point, centroid)
			if d < best {
				second = best
				best = d
			} else if d < second {
				second = d
			}
		}
		prefs[i] = pref{point: i, margin: second - best}
	}
	sort.Slice(prefs, func(a, b int) bool { return prefs[a].margin > prefs[b].margin })

	labels := make([]int, len(data))
	counts := make([]int, k)

	for _, p := range prefs {
		best := -1
		bestDist := math.Inf(1)
		for c, centroid := range centroids {
			if sizeMax > 0 && counts[c] >= sizeMax {
				continue
			}
			if d := sqDist(data[p.point], centroid); d < bestDist {
				best = c
				bestDist = d
			}
		}
		labels[p.point] = best
		counts[best]++
	}

	if sizeMin > 0 {
		fillMinimums(data, centroids, labels, counts, sizeMin)
	}

	return labels
}

// fillMinimums moves the cheapest donor points into clusters below the
// minimum size until every cluster meets it.
func fillMinimums(data [][]float64, centroids [][]float64, labels, counts []int, sizeMin int) {
	for c := range counts {
		for counts[c] < sizeMin {
			donor := -1
			cost := math.Inf(1)

			for i := range data {
				from := labels[i]
				if from == c || counts[from] <= sizeMin {
					continue
				}
				delta := sqDist(data[i], centroids[c]) - sqDist(data[i], centroids[from])
				if delta < cost {
					donor = i
					cost = delta
				}
			}

			if donor < 0 {
				return
			}
			counts[labels[donor]]--
			labels[donor] = c
			counts[c]++
		}
	}
}

func equalLabels(a, b []int) bool {
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
