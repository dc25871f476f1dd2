package domain

// TileLayer describes a selectable base-map imagery source.
type TileLayer struct {
	ID          string
	URL         string
	Attribution string
	MaxZoom     int
}

const DefaultLayerID = "dark"

// DefaultTileLayers is the built-in catalogue used when no configuration overrides it.
func DefaultTileLayers() []TileLayer {
	return []TileLayer{
		{
			ID:          "dark",
			URL:         "https://{s}.basemaps.cartocdn.com/dark_all/{z}/{x}/{y}{r}.png",
			Attribution: `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors &copy; <a href="https://carto.com/attributions">CARTO</a>`,
			MaxZoom:     20,
		},
		{
			ID:          "street",
			URL:         "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png",
			Attribution: `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors`,
			MaxZoom:     20,
		},
		{
			ID:          "satellite",
			URL:         "https://server.arcgisonline.com/ArcGIS/rest/services/World_Imagery/MapServer/tile/{z}/{y}/{x}",
			Attribution: "Tiles &copy; Esri",
			MaxZoom:     20,
		},
	}
}
