package api

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"

	"github.com/annolab/curator/pkg/handlers"
	"github.com/annolab/curator/pkg/routes"
	"github.com/annolab/curator/pkg/storage"
)

// artifactsHandler exposes run snapshots persisted to blob storage. Snapshots
// are written by the annotation and synthesis engines as JSON documents.
type artifactsHandler struct {
	store  storage.System
	logger *slog.Logger
}

func newArtifactsHandler(store storage.System, logger *slog.Logger) *artifactsHandler {
	return &artifactsHandler{
		store:  store,
		logger: logger.With("handler", "artifacts"),
	}
}

func (h *artifactsHandler) routes() routes.Group {
	return routes.Group{
		Prefix: "/artifacts",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/{key...}", Handler: h.download},
			{Method: "DELETE", Pattern: "/{key...}", Handler: h.remove},
		},
	}
}

func (h *artifactsHandler) download(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	body, err := h.store.Download(r.Context(), key)
	if err != nil {
		handlers.RespondError(
			w, h.logger,
			storage.MapHTTPStatus(err), err,
		)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set(
		"Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", path.Base(key)),
	)
	w.WriteHeader(http.StatusOK)
	io.Copy(w, body)
}

func (h *artifactsHandler) remove(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	if err := h.store.Delete(r.Context(), key); err != nil {
		handlers.RespondError(
			w, h.logger,
			storage.MapHTTPStatus(err), err,
		)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
