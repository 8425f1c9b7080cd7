package config

import (
	"encoding/json"
	"time"

	"envbeacon-go/errcode"
	"envbeacon-go/x/logx"
	"envbeacon-go/x/mathx"
)

// Operating modes. A device image runs exactly one.
const (
	ModePeripheral = "peripheral"
	ModeBeacon     = "beacon"
)

// EmbeddedConfigLookup allows overriding how configs are resolved.
var EmbeddedConfigLookup = func(device string) ([]byte, bool) {
	b, ok := embeddedConfigs[device]
	return b, ok
}

// I2C describes the sensor bus wiring.
type I2C struct {
	Bus int    `json:"bus"` // controller index: 0 => I2C0
	SDA int    `json:"sda"`
	SCL int    `json:"scl"`
	Hz  uint32 `json:"hz"`
}

// Config is the decoded device configuration. Durations are carried as
// milliseconds in JSON.
type Config struct {
	Mode     string `json:"mode"`
	Name     string `json:"name"` // empty: use the platform device name
	LogLevel string `json:"log_level"`
	LowPower bool   `json:"low_power"`
	I2C      I2C    `json:"i2c"`

	AdvIntervalMs    uint32 `json:"adv_interval_ms"`
	BeaconIntervalMs uint32 `json:"beacon_interval_ms"`
	BeaconPeriodMs   uint32 `json:"beacon_period_ms"`
	HumidityDelayMs  uint32 `json:"humidity_delay_ms"`
	CycleRestMs      uint32 `json:"cycle_rest_ms"`
	HeartbeatMs      uint32 `json:"heartbeat_ms"` // 0 disables
}

// Default mirrors the reference deployment.
func Default() Config {
	return Config{
		Mode:             ModePeripheral,
		LogLevel:         "info",
		I2C:              I2C{SDA: 4, SCL: 5, Hz: 100_000},
		AdvIntervalMs:    250,
		BeaconIntervalMs: 1000,
		BeaconPeriodMs:   15_000,
		HumidityDelayMs:  5_000,
		CycleRestMs:      10_000,
		HeartbeatMs:      60_000,
	}
}

// Load resolves the embedded config for device, applies it over Default
// and validates the result.
func Load(device string) (Config, error) {
	raw, ok := EmbeddedConfigLookup(device)
	if !ok || len(raw) == 0 {
		return Config{}, &errcode.E{C: errcode.UnknownDevice, Op: "config.Load", Msg: device}
	}
	return Parse(raw)
}

// Parse decodes raw JSON over Default and validates it.
func Parse(raw []byte) (Config, error) {
	c := Default()
	if err := json.Unmarshal(raw, &c); err != nil {
		return Config{}, errcode.Wrap(errcode.InvalidConfig, "config.Parse", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks modes and timing ranges.
func (c Config) Validate() error {
	bad := func(msg string) error {
		return &errcode.E{C: errcode.InvalidConfig, Op: "config.Validate", Msg: msg}
	}
	switch c.Mode {
	case ModePeripheral, ModeBeacon:
	default:
		return &errcode.E{C: errcode.UnknownMode, Op: "config.Validate", Msg: c.Mode}
	}
	if _, ok := logx.ParseLevel(c.LogLevel); !ok {
		return bad("log_level " + c.LogLevel)
	}
	// BLE allows 20ms..10.24s advertising intervals.
	if !mathx.Between(c.AdvIntervalMs, 20, 10_240) {
		return bad("adv_interval_ms out of range")
	}
	if !mathx.Between(c.BeaconIntervalMs, 20, 10_240) {
		return bad("beacon_interval_ms out of range")
	}
	if !mathx.Between(c.BeaconPeriodMs, 1_000, 3_600_000) {
		return bad("beacon_period_ms out of range")
	}
	if !mathx.Between(c.HumidityDelayMs, 1, 3_600_000) || !mathx.Between(c.CycleRestMs, 1, 3_600_000) {
		return bad("peripheral delays out of range")
	}
	if c.HeartbeatMs > 3_600_000 {
		return bad("heartbeat_ms out of range")
	}
	if c.I2C.Hz == 0 {
		return bad("i2c.hz must be set")
	}
	return nil
}

func ms(v uint32) time.Duration { return time.Duration(v) * time.Millisecond }

func (c Config) AdvInterval() time.Duration    { return ms(c.AdvIntervalMs) }
func (c Config) BeaconInterval() time.Duration { return ms(c.BeaconIntervalMs) }
func (c Config) BeaconPeriod() time.Duration   { return ms(c.BeaconPeriodMs) }
func (c Config) HumidityDelay() time.Duration  { return ms(c.HumidityDelayMs) }
func (c Config) CycleRest() time.Duration      { return ms(c.CycleRestMs) }
func (c Config) Heartbeat() time.Duration      { return ms(c.HeartbeatMs) }

// Level returns the parsed log level; Validate has already vetted it.
func (c Config) Level() logx.Level {
	lv, _ := logx.ParseLevel(c.LogLevel)
	return lv
}
