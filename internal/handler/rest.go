package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/medcatalog/internal/model"
	"github.com/vyrodovalexey/medcatalog/internal/store"
)

// Suggestion limits.
const (
	DefaultSuggestLimit = 3
	MaxSuggestLimit     = 50
)

// maxBodyBytes caps request bodies; names are at most 255 characters.
const maxBodyBytes = 4 << 10

// RESTHandler serves the catalog's REST endpoints.
type RESTHandler struct {
	store  store.Store
	logger *zap.Logger
}

// NewRESTHandler creates a new RESTHandler instance.
func NewRESTHandler(s store.Store, logger *zap.Logger) *RESTHandler {
	return &RESTHandler{
		store:  s,
		logger: logger,
	}
}

// RegisterRoutes registers the REST API routes with the router. Fixed paths
// are registered before the {name} routes so that "ordered", "suggest" and
// "reorder" are never taken for medicine names.
func (h *RESTHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/catalog", h.GetCatalog).Methods(http.MethodGet)
	api.HandleFunc("/medicines", h.ListMedicines).Methods(http.MethodGet)
	api.HandleFunc("/medicines", h.AddMedicine).Methods(http.MethodPost)
	api.HandleFunc("/medicines/ordered", h.OrderedMedicines).Methods(http.MethodGet)
	api.HandleFunc("/medicines/suggest", h.SuggestMedicines).Methods(http.MethodGet)
	api.HandleFunc("/medicines/reorder", h.ReorderMedicines).Methods(http.MethodPost)
	api.HandleFunc("/medicines/{name}", h.DeleteMedicine).Methods(http.MethodDelete)
	api.HandleFunc("/medicines/{name}/favorite", h.GetFavorite).Methods(http.MethodGet)
	api.HandleFunc("/medicines/{name}/favorite/toggle", h.ToggleFavorite).Methods(http.MethodPost)
}

// HealthCheck handles GET /health requests.
func (h *RESTHandler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, h.logger, http.StatusOK, model.NewSuccessResponse(HealthResponse{
		Status:  "healthy",
		Version: Version,
	}))
}

// GetCatalog handles GET /api/v1/catalog requests.
func (h *RESTHandler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.store.Snapshot(r.Context())
	if err != nil {
		h.handleStoreError(w, err, "snapshot")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, model.NewSuccessResponse(snapshot))
}

// ListMedicines handles GET /api/v1/medicines?q= requests.
func (h *RESTHandler) ListMedicines(w http.ResponseWriter, r *http.Request) {
	names, err := h.store.Filtered(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.handleStoreError(w, err, "filter")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, model.NewSuccessResponse(names))
}

// OrderedMedicines handles GET /api/v1/medicines/ordered requests.
func (h *RESTHandler) OrderedMedicines(w http.ResponseWriter, r *http.Request) {
	names, err := h.store.Ordered(r.Context())
	if err != nil {
		h.handleStoreError(w, err, "ordered")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, model.NewSuccessResponse(names))
}

// SuggestMedicines handles GET /api/v1/medicines/suggest?q=&limit= requests.
func (h *RESTHandler) SuggestMedicines(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	limit, err := parseLimit(query.Get("limit"))
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}

	names, err := h.store.Suggest(r.Context(), query.Get("q"), limit)
	if err != nil {
		h.handleStoreError(w, err, "suggest")
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, h.logger, http.StatusOK, model.NewSuccessResponse(names))
}

// AddMedicine handles POST /api/v1/medicines requests. It answers 201 when
// the medicine was added and 200 when it was already present.
func (h *RESTHandler) AddMedicine(w http.ResponseWriter, r *http.Request) {
	var req model.AddMedicineRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		h.logger.Warn("validation failed", zap.Error(err))
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	added, err := h.store.Add(ctx, req.Name)
	if err != nil {
		h.handleStoreError(w, err, "add")
		return
	}

	ordered, err := h.store.Ordered(ctx)
	if err != nil {
		h.handleStoreError(w, err, "add")
		return
	}

	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	writeJSON(w, h.logger, status, model.NewSuccessResponse(model.MutationResult{
		Name:    req.Name,
		Changed: added,
		Ordered: ordered,
	}))
}

// DeleteMedicine handles DELETE /api/v1/medicines/{name} requests. Unknown
// names are not an error.
func (h *RESTHandler) DeleteMedicine(w http.ResponseWriter, r *http.Request) {
	name, ok := h.pathName(w, r)
	if !ok {
		return
	}

	if _, err := h.store.Delete(r.Context(), name); err != nil {
		h.handleStoreError(w, err, "delete")
		return
	}
	writeJSON(w, h.logger, http.StatusNoContent, nil)
}

// GetFavorite handles GET /api/v1/medicines/{name}/favorite requests.
func (h *RESTHandler) GetFavorite(w http.ResponseWriter, r *http.Request) {
	name, ok := h.pathName(w, r)
	if !ok {
		return
	}

	favorite, err := h.store.IsFavorite(r.Context(), name)
	if err != nil {
		h.handleStoreError(w, err, "is favorite")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, model.NewSuccessResponse(model.FavoriteStatus{
		Name:     name,
		Favorite: favorite,
	}))
}

// ToggleFavorite handles POST /api/v1/medicines/{name}/favorite/toggle requests.
func (h *RESTHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	name, ok := h.pathName(w, r)
	if !ok {
		return
	}

	favorite, err := h.store.ToggleFavorite(r.Context(), name)
	if err != nil {
		h.handleStoreError(w, err, "toggle favorite")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, model.NewSuccessResponse(model.FavoriteStatus{
		Name:     name,
		Favorite: favorite,
	}))
}

// ReorderMedicines handles POST /api/v1/medicines/reorder requests.
func (h *RESTHandler) ReorderMedicines(w http.ResponseWriter, r *http.Request) {
	var req model.ReorderRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		h.logger.Warn("validation failed", zap.Error(err))
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	changed, err := h.store.Reorder(ctx, req.Dragged, req.Target)
	if err != nil {
		h.handleStoreError(w, err, "reorder")
		return
	}

	ordered, err := h.store.Ordered(ctx)
	if err != nil {
		h.handleStoreError(w, err, "reorder")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, model.NewSuccessResponse(model.MutationResult{
		Name:    req.Dragged,
		Changed: changed,
		Ordered: ordered,
	}))
}

// decodeBody decodes a JSON body into dst, writing a 400 on failure.
func (h *RESTHandler) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		h.logger.Warn("invalid request body", zap.Error(err))
		writeError(w, h.logger, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// handleStoreError maps store errors to HTTP responses.
func (h *RESTHandler) handleStoreError(w http.ResponseWriter, err error, operation string) {
	switch {
	case errors.Is(err, store.ErrInvalidName):
		writeError(w, h.logger, http.StatusBadRequest, "invalid medicine name")
	default:
		h.logger.Error("store operation failed", zap.String("operation", operation), zap.Error(err))
		writeError(w, h.logger, http.StatusInternalServerError, "internal server error")
	}
}

// pathName reads the {name} route variable and validates it like a request
// body name, writing a 400 on failure.
func (h *RESTHandler) pathName(w http.ResponseWriter, r *http.Request) (string, bool) {
	name := strings.TrimSpace(mux.Vars(r)["name"])
	if err := model.ValidateName(name); err != nil {
		h.logger.Warn("invalid path name", zap.Error(err))
		writeError(w, h.logger, http.StatusBadRequest, err.Error())
		return "", false
	}
	return name, true
}

// parseLimit reads the suggest limit, defaulting to DefaultSuggestLimit and
// clamping to MaxSuggestLimit.
func parseLimit(raw string) (int, error) {
	if raw == "" {
		return DefaultSuggestLimit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return 0, fmt.Errorf("limit must be a positive integer, got %q", raw)
	}
	return min(limit, MaxSuggestLimit), nil
}
