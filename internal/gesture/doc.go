// Package gesture turns raw press and release events into semantic intents.
//
// Two independent machines run per slot:
//
//	Tap-vs-hold:   Idle -> Pressed -> (Tap | Held) -> Idle
//	Single/double: Idle -> Armed -> (Double now | Single after threshold) -> Idle
//
// All methods and timer callbacks must run on one goroutine (the event
// loop). The clock passed to New decides where callbacks run; pass the loop
// itself in production and a clock.Manual in tests.
package gesture
