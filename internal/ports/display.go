package ports

import "mappy/internal/domain"

type NotifyLevel string

const (
	NotifySuccess NotifyLevel = "success"
	NotifyError   NotifyLevel = "error"
)

type SlotState string

const (
	SlotEmpty       SlotState = "empty"
	SlotPending     SlotState = "pending"
	SlotReady       SlotState = "ready"
	SlotUnavailable SlotState = "unavailable"
)

// ModeSlot is what one travel-mode button shows.
type ModeSlot struct {
	State SlotState
	Text  string
}

// Display is everything outside the map itself: notifications, the mode
// buttons and the info panel.
type Display interface {
	Notify(level NotifyLevel, message string)
	SetModeSlot(mode domain.TravelMode, slot ModeSlot)
	ShowLocation(loc domain.UserLocation, placeName string)
	ShowDestination(dest domain.Destination)
	HideDestination()
	ShowRoute(est domain.RouteEstimate)
	HideRoute()
	SetTracking(enabled bool)
	SetTheme(theme domain.Theme)
	Share(url string)
}
