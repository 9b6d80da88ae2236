package server

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"ConcertHub/core/aggregation"
	"ConcertHub/model"

	"github.com/gorilla/mux"
)

// ConcertHandler serves the concert listing and detail endpoints.
type ConcertHandler struct {
	engine *aggregation.Engine
}

// NewConcertHandler creates a ConcertHandler.
func NewConcertHandler(engine *aggregation.Engine) *ConcertHandler {
	return &ConcertHandler{engine: engine}
}

func intParam(q url.Values, name string, fallback, min, max int) (int, error) {
	raw := q.Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	if v < min || (max > 0 && v > max) {
		if max > 0 {
			return 0, fmt.Errorf("%s must be between %d and %d", name, min, max)
		}
		return 0, fmt.Errorf("%s must be >= %d", name, min)
	}
	return v, nil
}

// parseBrowseRequest reads the listing query string.
func parseBrowseRequest(q url.Values) (model.BrowseRequest, error) {
	req := model.BrowseRequest{
		Query:     q.Get("query"),
		DateRange: q.Get("date_range"),
		Artist:    q.Get("artist"),
		Venue:     q.Get("venue"),
		SortBy:    q.Get("sort_by"),
		SortOrder: q.Get("sort_order"),
	}

	var err error
	if req.Page, err = intParam(q, "page", model.DefaultPage, 1, 0); err != nil {
		return req, err
	}
	if req.PerPage, err = intParam(q, "per_page", model.DefaultPerPage, 1, model.MaxPerPage); err != nil {
		return req, err
	}
	if raw := q.Get("filter_by_concert_date"); raw != "" {
		if req.FilterByConcertDate, err = strconv.ParseBool(raw); err != nil {
			return req, fmt.Errorf("filter_by_concert_date must be a boolean")
		}
	}
	return req.WithDefaults(), nil
}

// BrowseConcertsHandler lists concerts grouped from upstream recordings.
func (h *ConcertHandler) BrowseConcertsHandler(w http.ResponseWriter, r *http.Request) {
	req, err := parseBrowseRequest(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	page, err := h.engine.Browse(r.Context(), req)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// GetConcertHandler returns one concert with its recordings.
func (h *ConcertHandler) GetConcertHandler(w http.ResponseWriter, r *http.Request) {
	key, err := url.PathUnescape(mux.Vars(r)["concert_key"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid concert key encoding")
		return
	}

	concert, err := h.engine.Concert(r.Context(), key)
	if err != nil {
		writeEngineError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, concert)
}
