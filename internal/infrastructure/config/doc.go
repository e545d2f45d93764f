// Package config handles loading and validating the deck bridge configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with environment variables
//   - Validation of required fields
//   - Default value handling
//
// The Stream Deck application launches the plugin binary without a working
// configuration directory, so every setting has a default and a missing
// config file is not an error. Optional integrations (status API, SQLite
// journal, MQTT mirror, InfluxDB telemetry) are disabled by default.
//
// Security Considerations:
//   - Sensitive values (MQTT password, InfluxDB token) should be set via environment variables
//   - Relay listeners bind to loopback by default; the controllers run on the same host
//
// Usage:
//
//	cfg, err := config.Load("ulcdeck.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Relay.ULC.Address())
package config
