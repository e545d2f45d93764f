// Package influxdb records deck telemetry as time series: gestures per
// family, relay connection edges and a few numeric fields of each
// controller snapshot.
//
// Writes go through the client's non-blocking batching WriteAPI, so callers
// never wait on the network. Asynchronous write failures are reported
// through SetOnError.
package influxdb
