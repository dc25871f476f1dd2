package dto

import "mappy/internal/domain"

type ThemeRequest struct {
	Theme string `json:"theme"`
}

type ThemeResponse struct {
	Theme string `json:"theme"`
}

type LayerResponse struct {
	ID          string `json:"id"`
	URL         string `json:"url"`
	Attribution string `json:"attribution"`
	MaxZoom     int    `json:"max_zoom"`
}

type ListLayersResponse struct {
	Default string          `json:"default"`
	Layers  []LayerResponse `json:"layers"`
}

func FromTileLayer(l domain.TileLayer) LayerResponse {
	return LayerResponse{ID: l.ID, URL: l.URL, Attribution: l.Attribution, MaxZoom: l.MaxZoom}
}
