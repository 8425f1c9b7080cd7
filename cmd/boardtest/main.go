// Command boardtest is a bring-up check for the sensor wiring. It reuses the
// firmware's device config, then repeatedly resets the SHTC3, verifies its
// ID and takes a burst of readings, reporting PASS or FAIL per cycle.
package main

import (
	"context"
	"time"

	"envbeacon-go/drivers/shtc3"
	"envbeacon-go/errcode"
	"envbeacon-go/platform"
	"envbeacon-go/services/config"
	"envbeacon-go/types"
	"envbeacon-go/x/logx"
)

const (
	samplesPerCycle = 5
	sampleGap       = 500 * time.Millisecond
	cycleDwell      = 2 * time.Second

	// Cycles: 0 = loop forever
	cyclesToRun = 0
)

// Datasheet operating range.
const (
	minC, maxC   = -40, 125
	minRH, maxRH = 0, 100
)

var errChipID error = &errcode.E{C: errcode.ChipMismatch, Op: "boardtest"}

type report struct {
	id      uint16
	valid   int
	invalid int
	outside int
	last    types.Sample
	err     error
}

func (r report) pass() bool {
	return r.err == nil && r.invalid == 0 && r.outside == 0 && r.valid > 0
}

// runCycle never returns early on checksum failures; they are counted.
func runCycle(ctx context.Context, dev *shtc3.Device, n int, gap time.Duration, sleep func(context.Context, time.Duration) error) report {
	var r report
	if r.err = dev.Reset(); r.err != nil {
		return r
	}
	if r.id, r.err = dev.ReadChipID(); r.err != nil {
		return r
	}
	if r.id != shtc3.ChipID {
		r.err = errChipID
		return r
	}
	for i := 0; i < n; i++ {
		s, err := dev.Measure(ctx)
		if err != nil {
			r.err = err
			return r
		}
		if !s.Valid {
			r.invalid++
		} else {
			r.valid++
			r.last = s
			if s.Temperature < minC || s.Temperature > maxC || s.Humidity < minRH || s.Humidity > maxRH {
				r.outside++
			}
		}
		if i+1 < n {
			if err := sleep(ctx, gap); err != nil {
				r.err = err
				return r
			}
		}
	}
	return r
}

func main() {
	platform.Boot()
	log := logx.New(platform.LogOutput(), logx.Debug).Named("boardtest")

	cfg, err := config.Load(platform.DeviceName())
	if err != nil {
		log.Warn("no device config, using defaults", logx.Err(err))
		cfg = config.Default()
	}
	bus, err := platform.OpenI2C(cfg.I2C)
	if err != nil {
		log.Error("i2c", logx.Err(err))
		platform.Halt()
		return
	}
	dev, err := shtc3.New(bus, shtc3.Config{})
	if err != nil {
		log.Error("shtc3", logx.Err(err))
		platform.Halt()
		return
	}

	ctx := context.Background()
	sleep := func(ctx context.Context, d time.Duration) error {
		time.Sleep(d)
		return ctx.Err()
	}
	for cycle := 1; ; cycle++ {
		log.Info("cycle", logx.Int("n", int64(cycle)))
		r := runCycle(ctx, dev, samplesPerCycle, sampleGap, sleep)
		fields := []logx.Field{
			logx.Hex16("id", r.id),
			logx.Int("valid", int64(r.valid)),
			logx.Int("crc_fail", int64(r.invalid)),
			logx.Int("out_of_range", int64(r.outside)),
		}
		if r.last.Valid {
			fields = append(fields,
				logx.Centi("c", int64(r.last.CentiC())),
				logx.Centi("rh", int64(r.last.CentiRH())))
		}
		if r.err != nil {
			fields = append(fields, logx.Err(r.err))
		}
		if r.pass() {
			log.Info("PASS", fields...)
		} else {
			log.Error("FAIL", fields...)
		}

		if cyclesToRun > 0 && cycle >= cyclesToRun {
			log.Info("completed, halting", logx.Int("cycles", int64(cycle)))
			platform.Halt()
			return
		}
		time.Sleep(cycleDwell)
	}
}
