package synthesis

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/annolab/curator/pkg/handlers"
	"github.com/annolab/curator/pkg/pagination"
	"github.com/annolab/curator/pkg/routes"
)

// Handler provides HTTP endpoints for synthesis operations.
type Handler struct {
	sys        System
	logger     *slog.Logger
	pagination pagination.Config
}

// SearchRequest combines pagination and filter criteria for the search endpoint.
type SearchRequest struct {
	pagination.PageRequest
	Filters
}

// NewHandler creates a Handler with the given system, logger, and pagination config.
func NewHandler(
	sys System,
	logger *slog.Logger,
	pagination pagination.Config,
) *Handler {
	return &Handler{
		sys:        sys,
		logger:     logger.With("handler", "synthesis"),
		pagination: pagination,
	}
}

// Routes returns the route group definition for synthesis endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/synthesis",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "", Handler: h.Synthesize},
			{Method: "GET", Pattern: "/categories", Handler: h.Categories},
			{Method: "POST", Pattern: "/categories/search", Handler: h.Search},
		},
	}
}

// Synthesize processes a JSON synthesis request over annotation results.
func (h *Handler) Synthesize(w http.ResponseWriter, r *http.Request) {
	var cmd SynthesizeCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	if err := handlers.Validate(cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	result, err := h.sys.Synthesize(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Categories returns a paginated list of synthesized categories with
// optional query parameter filters.
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	page := pagination.PageRequestFromQuery(r.URL.Query(), h.pagination)
	filters := FiltersFromQuery(r.URL.Query())

	result, err := h.sys.ListCategories(r.Context(), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}

// Search accepts a JSON body with pagination and filter criteria and
// returns matching categories.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	req.PageRequest.Normalize(h.pagination)

	result, err := h.sys.ListCategories(r.Context(), req.PageRequest, req.Filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, result)
}
