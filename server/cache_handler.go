package server

import (
	"fmt"
	"net/http"
	"time"

	"ConcertHub/cache"
	"ConcertHub/core/aggregation"
	"ConcertHub/logger"
)

const (
	serviceName    = "aggregation-service"
	serviceVersion = "1.0.0"
)

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string    `json:"status"`
	Service   string    `json:"service"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
}

// AdminHandler serves cache administration, stats and health.
type AdminHandler struct {
	engine *aggregation.Engine
	// metadata is nil when no upstream response cache is configured.
	metadata cache.MetadataStore
}

// NewAdminHandler creates an AdminHandler. metadata may be nil.
func NewAdminHandler(engine *aggregation.Engine, metadata cache.MetadataStore) *AdminHandler {
	return &AdminHandler{engine: engine, metadata: metadata}
}

// CacheInfoHandler reports listing cache entry counts.
func (h *AdminHandler) CacheInfoHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.CacheInfo())
}

// ClearCacheHandler clears the listing cache, or the metadata cache of the
// type named by the cache_type query parameter.
func (h *AdminHandler) ClearCacheHandler(w http.ResponseWriter, r *http.Request) {
	raw, ok := r.URL.Query()["cache_type"]
	if !ok {
		n := h.engine.ClearCache()
		writeJSON(w, http.StatusOK, MessageResponse{Message: fmt.Sprintf("Cleared %d cache entries", n)})
		return
	}

	cacheType, err := cache.ParseMetadataType(raw[0])
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if h.metadata == nil {
		writeError(w, http.StatusBadRequest, "metadata cache is not enabled")
		return
	}

	n, err := h.metadata.Clear(r.Context(), cacheType)
	if err != nil {
		logger.Error("failed to clear metadata cache",
			logger.String("cache_type", string(cacheType)),
			logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "Failed to clear cache")
		return
	}

	label := string(cacheType)
	if label == "" {
		label = "all"
	}
	logger.Info("cleared metadata cache", logger.String("cache_type", label), logger.Int("removed", n))
	writeJSON(w, http.StatusOK, MessageResponse{Message: fmt.Sprintf("Cleared %d %s cache entries", n, label)})
}

// StatsHandler reports cache size and grouping counters.
func (h *AdminHandler) StatsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.Stats())
}

// HealthHandler always reports healthy once the process serves HTTP.
func (h *AdminHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Service:   serviceName,
		Timestamp: time.Now().UTC(),
		Version:   serviceVersion,
	})
}
