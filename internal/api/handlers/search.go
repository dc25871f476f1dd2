package handlers

import (
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"

	"mappy/internal/api/dto"
	"mappy/internal/domain"
	"mappy/internal/ports"
)

type SearchHandler struct {
	Geocoder ports.Geocoder
	Reverse  ports.ReverseGeocoder
	Logger   *zap.Logger
}

// Search resolves a free-text query to its best match.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req dto.SearchRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	dest, err := h.Geocoder.Search(r.Context(), req.Query)
	if err != nil {
		writeDomainError(w, r, loggerOr(h.Logger), "search", err)
		return
	}

	loc := dto.FromDestination(dest)
	writeJSON(w, r, http.StatusOK, dto.SearchResponse{Success: true, Location: &loc})
}

// ReverseLookup names the place at ?lat=&lon=.
func (h *SearchHandler) ReverseLookup(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	q := r.URL.Query()
	lat, errLat := strconv.ParseFloat(q.Get("lat"), 64)
	lon, errLon := strconv.ParseFloat(q.Get("lon"), 64)
	if errLat != nil || errLon != nil {
		writeError(w, r, http.StatusBadRequest, "lat and lon must be numbers")
		return
	}

	at := domain.Coordinate{Lat: lat, Lon: lon}
	if err := at.Validate(); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	name, err := h.Reverse.Reverse(r.Context(), at)
	if err != nil {
		writeDomainError(w, r, loggerOr(h.Logger), "reverse", err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.ReverseResponse{Success: true, Name: name})
}
