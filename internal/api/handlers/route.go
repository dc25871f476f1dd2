package handlers

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"

	"mappy/internal/api/dto"
	"mappy/internal/domain"
	"mappy/internal/ports"
)

type RouteHandler struct {
	Routes ports.RouteProvider
	Logger *zap.Logger
}

// Route estimates one travel mode between two points. An empty profile means
// driving.
func (h *RouteHandler) Route(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req dto.RouteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	mode := domain.DefaultMode
	if req.Profile != "" {
		m, err := domain.ParseTravelMode(req.Profile)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error())
			return
		}
		mode = m
	}

	est, err := h.Routes.Route(r.Context(), mode, req.Start.ToDomain(), req.End.ToDomain())
	if err != nil {
		writeDomainError(w, r, loggerOr(h.Logger), "route", err)
		return
	}

	body := dto.FromEstimate(est)
	writeJSON(w, r, http.StatusOK, dto.RouteResponse{Success: true, Route: &body})
}
