package config

import (
	"fmt"
	"os"
	"strconv"
)

const EnvClusteringTopicalClusters = "CURATOR_CLUSTERING_TOPICAL_CLUSTERS"

// ClusteringConfig holds clustering parameters for the annotation pipeline.
type ClusteringConfig struct {
	TopicalClusters int `toml:"topical_clusters"`
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *ClusteringConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *ClusteringConfig) Merge(overlay *ClusteringConfig) {
	if overlay.TopicalClusters != 0 {
		c.TopicalClusters = overlay.TopicalClusters
	}
}

func (c *ClusteringConfig) loadDefaults() {
	if c.TopicalClusters == 0 {
		c.TopicalClusters = 4
	}
}

func (c *ClusteringConfig) loadEnv() {
	if v := os.Getenv(EnvClusteringTopicalClusters); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.TopicalClusters = n
		}
	}
}

func (c *ClusteringConfig) validate() error {
	if c.TopicalClusters < 1 {
		return fmt.Errorf("invalid topical_clusters: %d", c.TopicalClusters)
	}
	return nil
}
