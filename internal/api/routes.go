package api

import (
	"net/http"

	"github.com/annolab/curator/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	runtime *Runtime,
) {
	artifacts := newArtifactsHandler(runtime.Storage, runtime.Logger)

	routes.Register(
		mux,
		domain.Prompts.Handler().Routes(),
		domain.Annotations.Handler().Routes(),
		domain.Synthesis.Handler().Routes(),
		artifacts.routes(),
	)
}
