//go:build !rp2040 && !rp2350

package platform

import (
	"context"
	"encoding/hex"
	"math"
	"time"

	"envbeacon-go/services/beacon"
	"envbeacon-go/services/peripheral"
	"envbeacon-go/x/logx"
)

var (
	_ peripheral.Advertiser     = (*LogRadio)(nil)
	_ peripheral.Characteristic = (*LogCharacteristic)(nil)
	_ beacon.Advertiser         = (*LogRadio)(nil)
)

// LogRadio stands in for a BLE stack by logging what would go on air.
type LogRadio struct {
	log *logx.Logger
}

// Advertise never yields a connection; it returns once ctx is cancelled.
func (r *LogRadio) Advertise(ctx context.Context, p peripheral.AdvertiseParams) (peripheral.Connection, error) {
	r.log.Debug("adv start",
		logx.Str("name", p.Name),
		logx.Int("interval_ms", p.Interval.Milliseconds()),
		logx.Uint("appearance", uint64(p.Appearance)))
	<-ctx.Done()
	return nil, ctx.Err()
}

// RawAdvertise logs the payload and its decoded telemetry.
func (r *LogRadio) RawAdvertise(interval time.Duration, payload []byte) error {
	fields := []logx.Field{
		logx.Int("interval_ms", interval.Milliseconds()),
		logx.Str("data", hex.EncodeToString(payload)),
	}
	if t, err := beacon.Decode(payload); err == nil {
		fields = append(fields, logx.Str("name", t.Name), logx.Uint("counter", uint64(t.Counter)))
		if t.TemperatureKnown {
			fields = append(fields, logx.Centi("t", int64(math.Round(t.Temperature*100))))
		}
	}
	r.log.Info("adv raw", fields...)
	return nil
}

// LogCharacteristic logs each value written to it.
type LogCharacteristic struct {
	name string
	log  *logx.Logger
}

func (c *LogCharacteristic) Write(value []byte, notify bool) error {
	c.log.Debug("char write", logx.Str("char", c.name), logx.Str("value", hex.EncodeToString(value)), logx.Bool("notify", notify))
	return nil
}
