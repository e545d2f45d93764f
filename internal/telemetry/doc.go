// Package telemetry fans deck events out to optional observers: the MQTT
// mirror, the SQLite journal and InfluxDB.
//
// The event loop calls Recorder.Record, which never blocks; one worker
// goroutine drains the buffer and writes every event to every sink. When
// the buffer is full the event is dropped and counted. A failing sink is
// logged and does not stop delivery to the others.
package telemetry
