// Package api assembles the API module with all domain systems and route registration.
package api

import (
	"net/http"

	"github.com/annolab/curator/internal/config"
	"github.com/annolab/curator/internal/infrastructure"
	"github.com/annolab/curator/pkg/middleware"
	"github.com/annolab/curator/pkg/module"
	"github.com/annolab/curator/pkg/openapi"
)

// NewModule creates the API module with all domain handlers and middleware.
func NewModule(cfg *config.Config, infra *infrastructure.Infrastructure) (*module.Module, error) {
	runtime := NewRuntime(cfg, infra)
	domain := NewDomain(runtime)

	specBytes, err := openapi.MarshalJSON(buildSpec(cfg))
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	registerRoutes(mux, domain, runtime)
	mux.Handle("GET /openapi.json", openapi.ServeSpec(specBytes))

	m := module.New(cfg.API.BasePath, mux)
	m.Use(middleware.CORS(&cfg.API.CORS))
	m.Use(middleware.Logger(runtime.Logger))

	return m, nil
}
