// Package protocol defines the JSON messages exchanged with the ULC and LVC
// controller processes.
//
// Every frame is a JSON object with a "type" tag. Decoding is a two-step
// tagged-variant parse: the tag is validated first, then the frame is
// decoded into exactly one member of a closed set of Message types. Anything
// else is rejected with ErrUnknownType or ErrMalformed; callers log and drop.
//
// # ULC channel
//
//	inbound:  {"type":"visible_buttons","buttons":[{"id":"b1","label":"STAGE 1",...}]}
//	outbound: {"type":"press","id":"b1"}
//
// # LVC channel
//
//	inbound:  {"type":"lvc_state","sirenOn":true,"mainSiren":2,"tones":[...]}
//	outbound: {"type":"action","action":"set_tone","value":2}
package protocol
