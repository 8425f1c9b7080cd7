package config

import (
	"errors"
	"testing"
	"time"

	"envbeacon-go/errcode"
	"envbeacon-go/x/logx"
)

func TestLoad_EmbeddedOverride(t *testing.T) {
	oldLookup := EmbeddedConfigLookup
	EmbeddedConfigLookup = func(device string) ([]byte, bool) {
		if device != "pico" {
			return nil, false
		}
		return []byte(`{
			"mode": "beacon",
			"name": "attic",
			"beacon_period_ms": 30000,
			"log_level": "warn"
		}`), true
	}
	t.Cleanup(func() { EmbeddedConfigLookup = oldLookup })

	c, err := Load("pico")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Mode != ModeBeacon || c.Name != "attic" {
		t.Fatalf("config = %+v", c)
	}
	if c.BeaconPeriod() != 30*time.Second {
		t.Fatalf("BeaconPeriod = %v, want 30s", c.BeaconPeriod())
	}
	// Untouched keys keep their defaults.
	if c.AdvInterval() != 250*time.Millisecond || c.HumidityDelay() != 5*time.Second || c.CycleRest() != 10*time.Second {
		t.Fatalf("defaults lost: %+v", c)
	}
	if c.Level() != logx.Warn {
		t.Fatalf("Level = %v, want Warn", c.Level())
	}

	if _, err := Load("other"); !errors.Is(err, errcode.UnknownDevice) {
		t.Fatalf("Load(other) err = %v, want UnknownDevice", err)
	}
}

func TestEmbeddedConfigsAreValid(t *testing.T) {
	for dev := range embeddedConfigs {
		if _, err := Load(dev); err != nil {
			t.Fatalf("embedded config %q: %v", dev, err)
		}
	}
}

func TestParseRejects(t *testing.T) {
	for _, c := range []struct {
		name string
		raw  string
		want errcode.Code
	}{
		{"syntax", `{"mode":`, errcode.InvalidConfig},
		{"mode", `{"mode": "mesh"}`, errcode.UnknownMode},
		{"level", `{"log_level": "loud"}`, errcode.InvalidConfig},
		{"adv interval", `{"adv_interval_ms": 5}`, errcode.InvalidConfig},
		{"beacon period", `{"beacon_period_ms": 10}`, errcode.InvalidConfig},
		{"heartbeat", `{"heartbeat_ms": 7200000}`, errcode.InvalidConfig},
		{"i2c", `{"i2c": {"sda": 4, "scl": 5, "hz": 0}}`, errcode.InvalidConfig},
		{"humidity delay", `{"humidity_delay_ms": 0}`, errcode.InvalidConfig},
		{"cycle rest", `{"cycle_rest_ms": 0}`, errcode.InvalidConfig},
	} {
		_, err := Parse([]byte(c.raw))
		if got := errcode.Of(err); got != c.want {
			t.Fatalf("%s: code = %q (err %v), want %q", c.name, got, err, c.want)
		}
	}
}
