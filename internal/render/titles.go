package render

import "github.com/nerrad567/ulc-deck/internal/protocol"

// Fixed titles.
const (
	// Blank clears a key.
	Blank = ""

	// Placeholder marks a key with no corresponding controller entry.
	Placeholder = "--"

	// WaitingLVC is shown on tone keys before the first LVC snapshot.
	WaitingLVC = "Waiting\nLVC"

	activeMarker = "● "
	auxMarker    = "○ "
)

// ActiveTitle prefixes label with a filled dot when active.
func ActiveTitle(label string, active bool) string {
	if active {
		return activeMarker + label
	}
	return label
}

// ToneTitle renders a siren tone key.
func ToneTitle(tone protocol.SirenTone) string {
	switch {
	case tone.IsMain && tone.IsAux:
		return activeMarker + tone.Name + "\n(DUAL)"
	case tone.IsMain:
		return activeMarker + tone.Name
	case tone.IsAux:
		return auxMarker + tone.Name + "\n(AUX)"
	default:
		return tone.Name
	}
}
