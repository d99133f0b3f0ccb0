package models_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/annolab/curator/internal/models"
	"github.com/annolab/curator/pkg/clustering"
)

func TestPurposeValid(t *testing.T) {
	tests := []struct {
		purpose models.Purpose
		want    bool
	}{
		{models.PurposeTopical, true},
		{models.PurposeSemantic, true},
		{models.Purpose("lexical"), false},
		{models.Purpose(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.purpose), func(t *testing.T) {
			if got := tt.purpose.Valid(); got != tt.want {
				t.Errorf("Valid(%q) = %v, want %v", tt.purpose, got, tt.want)
			}
		})
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", models.ErrNotFound, http.StatusNotFound},
		{"duplicate", models.ErrDuplicate, http.StatusConflict},
		{"invalid purpose", models.ErrInvalidPurpose, http.StatusBadRequest},
		{"corrupt", models.ErrCorrupt, http.StatusInternalServerError},
		{"unknown error", errors.New("something else"), http.StatusInternalServerError},
		{"wrapped not found", fmt.Errorf("find failed: %w", models.ErrNotFound), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := models.MapHTTPStatus(tt.err)
			if got != tt.want {
				t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestModelClusters(t *testing.T) {
	t.Run("kmeans estimator", func(t *testing.T) {
		m := models.Model{KMeans: &clustering.KMeans{K: 4}}
		if got := m.Clusters(); got != 4 {
			t.Errorf("Clusters = %d, want 4", got)
		}
	})

	t.Run("constrained estimator", func(t *testing.T) {
		m := models.Model{Constrained: &clustering.ConstrainedKMeans{K: 3}}
		if got := m.Clusters(); got != 3 {
			t.Errorf("Clusters = %d, want 3", got)
		}
	})

	t.Run("no estimator", func(t *testing.T) {
		m := models.Model{}
		if got := m.Clusters(); got != 0 {
			t.Errorf("Clusters = %d, want 0", got)
		}
	})
}

func TestModelPredict(t *testing.T) {
	centroids := [][]float64{{0, 0}, {10, 10}}

	t.Run("kmeans estimator", func(t *testing.T) {
		m := models.Model{KMeans: &clustering.KMeans{K: 2, Centroids: centroids}}

		got, err := m.Predict([][]float64{{1, 1}, {9, 9}})
		if err != nil {
			t.Fatalf("Predict: %v", err)
		}
		if got[0] != 0 || got[1] != 1 {
			t.Errorf("labels = %v, want [0 1]", got)
		}
	})

	t.Run("constrained estimator", func(t *testing.T) {
		m := models.Model{Constrained: &clustering.ConstrainedKMeans{K: 2, Centroids: centroids}}

		got, err := m.PredictOne([]float64{8, 8})
		if err != nil {
			t.Fatalf("PredictOne: %v", err)
		}
		if got != 1 {
			t.Errorf("cluster = %d, want 1", got)
		}
	})

	t.Run("no estimator reports corrupt", func(t *testing.T) {
		m := models.Model{TaskID: "sentiment-v2", Purpose: models.PurposeTopical}

		if _, err := m.PredictOne([]float64{1, 1}); !errors.Is(err, models.ErrCorrupt) {
			t.Errorf("err = %v, want ErrCorrupt", err)
		}
		if _, err := m.Predict([][]float64{{1, 1}}); !errors.Is(err, models.ErrCorrupt) {
			t.Errorf("err = %v, want ErrCorrupt", err)
		}
	})
}

func TestModelProject(t *testing.T) {
	t.Run("projects through fitted pca", func(t *testing.T) {
		m := models.Model{
			PCA: &clustering.PCA{
				Mean:       []float64{1, 1, 1},
				Components: [][]float64{{1, 0, 0}, {0, 1, 0}},
			},
		}

		got, err := m.Project([]float64{3, 2, 1})
		if err != nil {
			t.Fatalf("Project: %v", err)
		}
		if len(got) != 2 || got[0] != 2 || got[1] != 1 {
			t.Errorf("projection = %v, want [2 1]", got)
		}
	})

	t.Run("missing projector reports corrupt", func(t *testing.T) {
		m := models.Model{TaskID: "sentiment-v2", Purpose: models.PurposeSemantic}

		if _, err := m.Project([]float64{1, 1}); !errors.Is(err, models.ErrCorrupt) {
			t.Errorf("err = %v, want ErrCorrupt", err)
		}
	})
}
