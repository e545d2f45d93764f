// Package deck wires the two controller channels to the Stream Deck button
// families.
//
// A Deck owns one state mirror per controller, one registry per button
// family and the gesture machines for the LVC keys. Every method must run
// on the event loop: relay handlers, Stream Deck events and timer expiries
// all arrive there, so no locking is needed.
//
// Button families, keyed by the action UUID suffix:
//
//	ulcfolder   folder action; visibility is logged only
//	ulcbutton   ULC key indexed by grid position (column 0 reserved)
//	ulcdynamic  ULC key indexed by appearance order
//	lvcsiren    lights toggle: tap, hold to MANU
//	lvctone     siren tone: single sets the tone, double toggles aux
package deck
