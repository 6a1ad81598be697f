// Package mqtt reports the outcome of a run to an MQTT broker. Each run
// connects, publishes one retained JSON summary to <prefix>/last_run and
// disconnects, so the broker always holds the latest result.
//
// When a discovery prefix is configured, a Home Assistant MQTT discovery
// config is published first so the summary shows up as a sensor, with
// the summary fields available as attributes.
package mqtt
