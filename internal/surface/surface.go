// Package surface defines the contract between the synchronization core and
// the physical button layer.
//
// The surface owns slots: it creates one when a button becomes visible and
// destroys it when the button is hidden. The core only maps slots to logical
// buttons and pushes titles and images back through Renderer.
package surface

// SlotID is the opaque per-appearance identity of a visible button
// (the Stream Deck action context).
type SlotID string

// Position is a slot's coordinates within the current page.
type Position struct {
	Row    int `json:"row"`
	Column int `json:"column"`
}

// NoImage clears a slot's image back to the action's default.
const NoImage = ""

// Renderer pushes display state to a visible slot.
// Implementations must not block the caller on device I/O.
type Renderer interface {
	// SetTitle replaces the slot's title text.
	SetTitle(slot SlotID, text string) error

	// SetImage replaces the slot's image. image is a data URI, or NoImage.
	SetImage(slot SlotID, image string) error
}

// Action is one button family. The orchestrator routes surface events to the
// action registered for the event's action UUID.
type Action interface {
	// UUID is the action identifier declared in the plugin manifest.
	UUID() string

	// OnVisible is called when a slot of this action appears.
	OnVisible(slot SlotID, pos Position)

	// OnHidden is called when a slot disappears. All derived state for the
	// slot must be released before it returns.
	OnHidden(slot SlotID)

	// OnPress is called on key down.
	OnPress(slot SlotID, pos Position)

	// OnRelease is called on key up.
	OnRelease(slot SlotID, pos Position)
}
