// Package streamdeck is a client for the Stream Deck plugin WebSocket
// protocol.
//
// The Stream Deck application starts the plugin with a port, a plugin UUID
// and a registration event name. The plugin dials back, registers, then
// receives key and visibility events and sends title, image and profile
// commands:
//
//	-> {"event":"registerPlugin","uuid":"<pluginUUID>"}
//	<- {"action":"...","event":"willAppear","context":"...","device":"...","payload":{"coordinates":{"column":1,"row":0}}}
//	-> {"event":"setTitle","context":"...","payload":{"title":"STAGE 1","target":0}}
//	-> {"event":"switchToProfile","context":"<pluginUUID>","device":"...","payload":{"profile":"ULC"}}
//
// Client implements surface.Renderer and profile.Activator. Outbound calls
// only enqueue; a single writer goroutine owns the socket.
package streamdeck
