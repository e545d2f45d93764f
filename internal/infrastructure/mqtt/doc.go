// Package mqtt publishes the deck's state, intents and connection health to
// an MQTT broker so dashboards and home-automation systems can follow the
// controllers without speaking the relay protocol.
//
// The plugin only publishes. Topics live under a configurable prefix
// (default "ulcdeck"):
//
//	ulcdeck/status              plugin online/offline (retained, LWT)
//	ulcdeck/state/{channel}     latest controller snapshot (retained)
//	ulcdeck/health/{channel}    controller connected flag (retained)
//	ulcdeck/event/{kind}        intents and profile transitions
//
// The client reconnects on its own with exponential backoff; publishes made
// while disconnected fail fast with ErrNotConnected and are not queued.
package mqtt
