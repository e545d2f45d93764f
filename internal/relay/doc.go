// Package relay implements the loopback WebSocket listener each external
// controller (ULC, LVC) connects to.
//
// A Channel owns every socket it accepts. Inbound frames are decoded with
// the channel's protocol.Decoder and posted to the event loop; malformed
// frames are logged and dropped without closing the connection. Outbound
// messages are serialised once and queued to every open connection.
//
// Connection edges are reported on the set, not per socket: OnConnectEdge
// fires when the first client arrives and OnDisconnectEdge when the last
// one leaves.
//
// # Lifecycle
//
//	ch := relay.New(relay.Options{Name: "ulc", Config: cfg.Relay.ULC, ...}, handlers)
//	if err := ch.Start(ctx); err != nil {
//	    // reported; the deck keeps running without this controller
//	}
//	defer ch.Close()
package relay
