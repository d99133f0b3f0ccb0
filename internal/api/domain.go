package api

import (
	"github.com/annolab/curator/internal/annotations"
	"github.com/annolab/curator/internal/identity"
	"github.com/annolab/curator/internal/models"
	"github.com/annolab/curator/internal/prompts"
	"github.com/annolab/curator/internal/synthesis"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Identity    identity.System
	Models      models.System
	Prompts     prompts.System
	Annotations annotations.System
	Synthesis   synthesis.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	db := runtime.Database.Connection()

	identitySystem := identity.New(db, runtime.Logger)
	modelSystem := models.New(db, runtime.Logger)

	promptSystem := prompts.New(
		db,
		runtime.Logger,
		runtime.Pagination,
	)

	annotationSystem := annotations.New(
		db,
		identitySystem,
		modelSystem,
		promptSystem,
		runtime.Runner,
		runtime.Provider,
		runtime.Storage,
		runtime.Logger,
		runtime.Pagination,
		runtime.Clustering.TopicalClusters,
	)

	synthesisSystem := synthesis.New(
		db,
		modelSystem,
		promptSystem,
		runtime.Runner,
		runtime.Provider,
		runtime.Storage,
		runtime.Logger,
		runtime.Pagination,
	)

	return &Domain{
		Identity:    identitySystem,
		Models:      modelSystem,
		Prompts:     promptSystem,
		Annotations: annotationSystem,
		Synthesis:   synthesisSystem,
	}
}
