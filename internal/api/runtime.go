package api

import (
	"github.com/annolab/curator/internal/config"
	"github.com/annolab/curator/internal/infrastructure"
	"github.com/annolab/curator/pkg/llm"
	"github.com/annolab/curator/pkg/pagination"
)

// Runtime extends Infrastructure with API-specific configuration.
type Runtime struct {
	*infrastructure.Infrastructure
	Provider   *llm.Config
	Clustering config.ClusteringConfig
	Pagination pagination.Config
}

// NewRuntime creates an API runtime with a module-scoped logger.
func NewRuntime(cfg *config.Config, infra *infrastructure.Infrastructure) *Runtime {
	return &Runtime{
		Infrastructure: &infrastructure.Infrastructure{
			Lifecycle: infra.Lifecycle,
			Logger:    infra.Logger.With("module", "api"),
			Database:  infra.Database,
			Cache:     infra.Cache,
			Storage:   infra.Storage,
			Client:    infra.Client,
			Runner:    infra.Runner,
		},
		Provider:   &cfg.Provider,
		Clustering: cfg.Clustering,
		Pagination: cfg.API.Pagination,
	}
}
