package clustering

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// PCA is a fitted 2-component principal-component projector. Mean holds the
// per-dimension training mean; Components holds one row per component.
type PCA struct {
	Mean       []float64   `json:"mean"`
	Components [][]float64 `json:"components"`
}

// pcaComponents is fixed at 2: projections feed a 2-D scatter view.
const pcaComponents = 2

// FitPCA fits a 2-component PCA on data via SVD of the mean-centered matrix
// and returns the model together with the training projections.
func FitPCA(data [][]float64) (*PCA, [][]float64, error) {
	n := len(data)
	if n < 2 {
		return nil, nil, fmt.Errorf("cannot fit PCA on %d points", n)
	}
	dim := len(data[0])
	if dim < pcaComponents {
		return nil, nil, fmt.Errorf("cannot fit %d components on %d dimensions", pcaComponents, dim)
	}

	mean := make([]float64, dim)
	for _, point := range data {
		if len(point) != dim {
			return nil, nil, fmt.Errorf("inconsistent point dimensions: %d vs %d", len(point), dim)
		}
		for j, v := range point {
			mean[j] += v
		}
	}
	for j := range mean {
		mean[j] /= float64(n)
	}

	centered := mat.NewDense(n, dim, nil)
	for i, point := range data {
		for j, v := range point {
			centered.Set(i, j, v-mean[j])
		}
	}

	var svd mat.SVD
	if ok := svd.Factorize(centered, mat.SVDThin); !ok {
		return nil, nil, fmt.Errorf("svd factorization failed")
	}

	var v mat.Dense
	svd.VTo(&v)

	components := make([][]float64, pcaComponents)
	for c := range components {
		components[c] = make([]float64, dim)
		for j := 0; j < dim; j++ {
			components[c][j] = v.At(j, c)
		}
	}

	model := &PCA{Mean: mean, Components: components}
	return model, model.Transform(data), nil
}

// Transform projects points into the fitted 2-D space.
func (p *PCA) Transform(data [][]float64) [][]float64 {
	out := make([][]float64, len(data))
	for i, point := range data {
		out[i] = p.TransformOne(point)
	}
	return out
}

// TransformOne projects a single point into the fitted 2-D space.
func (p *PCA) TransformOne(point []float64) []float64 {
	projected := make([]float64, len(p.Components))
	for c, component := range p.Components {
		var sum float64
		for j, v := range point {
			sum += (v - p.Mean[j]) * component[j]
		}
		projected[c] = sum
	}
	return projected
}
