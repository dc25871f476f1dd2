package handlers

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"

	"mappy/internal/api/dto"
	"mappy/internal/domain"
	"mappy/internal/ports"
)

type PreferenceHandler struct {
	Prefs  ports.PreferenceStore
	Layers []domain.TileLayer
	// DefaultLayer is the id a new session starts on.
	DefaultLayer string
	Logger       *zap.Logger
}

func (h *PreferenceHandler) GetTheme(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	theme, ok, err := h.Prefs.Theme(r.Context(), ClientID(r))
	if err != nil {
		writeDomainError(w, r, loggerOr(h.Logger), "preferences.theme", err)
		return
	}
	if !ok {
		theme = domain.DefaultTheme
	}
	writeJSON(w, r, http.StatusOK, dto.ThemeResponse{Theme: string(theme)})
}

func (h *PreferenceHandler) PutTheme(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req dto.ThemeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	theme, err := domain.ParseTheme(req.Theme)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.Prefs.SetTheme(r.Context(), ClientID(r), theme); err != nil {
		writeDomainError(w, r, loggerOr(h.Logger), "preferences.set_theme", err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.ThemeResponse{Theme: string(theme)})
}

// ListLayers returns the tile layer catalogue.
func (h *PreferenceHandler) ListLayers(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	res := dto.ListLayersResponse{
		Default: h.DefaultLayer,
		Layers:  make([]dto.LayerResponse, 0, len(h.Layers)),
	}
	for _, l := range h.Layers {
		res.Layers = append(res.Layers, dto.FromTileLayer(l))
	}
	writeJSON(w, r, http.StatusOK, res)
}
