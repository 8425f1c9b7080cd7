package config

// -----------------------------------------------------------------------------
// Embedded configuration
//
// Key: device ID (platform.DeviceName, or the -ldflags override in main)
// Val: raw JSON bytes for that device; missing keys keep Default values.
// -----------------------------------------------------------------------------

const cfgPicoW = `{
  "mode": "peripheral",
  "i2c": {"sda": 4, "scl": 5, "hz": 100000}
}`

const cfgPicoWBeacon = `{
  "mode": "beacon",
  "low_power": true,
  "i2c": {"sda": 4, "scl": 5, "hz": 100000},
  "beacon_interval_ms": 1000,
  "beacon_period_ms": 15000
}`

const cfgHost = `{
  "mode": "peripheral",
  "log_level": "debug"
}`

var embeddedConfigs = map[string][]byte{
	"RP2040":        []byte(cfgPicoW),
	"RP2350":        []byte(cfgPicoW),
	"RP2040-beacon": []byte(cfgPicoWBeacon),
	"RP2350-beacon": []byte(cfgPicoWBeacon),
	"host":          []byte(cfgHost),
	"host-beacon":   []byte(`{"mode": "beacon", "log_level": "debug"}`),
}
