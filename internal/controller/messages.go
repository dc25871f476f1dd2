package controller

const (
	msgLocationEnabled  = "Location enabled!"
	msgLocationMissing  = "Location not available"
	msgCentered         = "Centered on your location"
	msgEmptyQuery       = "Please enter a location to search."
	msgSearching        = "Searching..."
	msgFound            = "Location found!"
	msgNotFound         = "Location not found. Try being more specific."
	msgSearchFailed     = "Search failed. Please try again."
	msgTrackingOn       = "Live tracking enabled!"
	msgTrackingOff      = "Live tracking disabled"
	msgLayerChanged     = "Map style changed to %s"
	msgLayerUnknown     = "Unknown map style %q"
	msgRouteUnavailable = "%s route unavailable."
	msgSlotPending      = "..."
	msgSlotUnavailable  = "N/A"
	shareURLFormat      = "https://www.google.com/maps?q=%s,%s"
)
