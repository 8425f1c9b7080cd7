// Command envbeacon is the sensor firmware. The device image is chosen by
// platform.DeviceName, or by deviceOverride set at link time:
//
//	tinygo flash -target pico-w -ldflags "-X main.deviceOverride=RP2040-beacon" .
package main

import (
	"context"
	"errors"

	"envbeacon-go/drivers/shtc3"
	"envbeacon-go/errcode"
	"envbeacon-go/platform"
	"envbeacon-go/services/beacon"
	"envbeacon-go/services/config"
	"envbeacon-go/services/heartbeat"
	"envbeacon-go/services/peripheral"
	"envbeacon-go/x/logx"
	"envbeacon-go/x/strx"
)

var deviceOverride string

func main() {
	platform.Boot()
	out := platform.LogOutput()

	device := strx.Coalesce(deviceOverride, platform.DeviceName())
	cfg, err := config.Load(device)
	if err != nil {
		logx.New(out, logx.Info).Named("main").Error("config", logx.Str("device", device), logx.Err(err))
		platform.Halt()
		return
	}
	log := logx.New(out, cfg.Level())
	mlog := log.Named("main")
	mlog.Info("boot", logx.Str("device", device), logx.Str("mode", cfg.Mode))

	ctx, cancel := platform.Context()
	defer cancel()

	err = run(ctx, cfg, log)
	switch {
	case errors.Is(err, errcode.Restart):
		mlog.Warn("restarting", logx.Err(err))
		platform.Restart()
	case err == nil || ctx.Err() != nil:
		mlog.Info("stopped")
	default:
		mlog.Error("fatal", logx.Str("code", string(errcode.Of(err))), logx.Err(err))
		platform.Halt()
	}
}

// run opens the sensor and blocks in the configured broadcast mode.
func run(ctx context.Context, cfg config.Config, log *logx.Logger) error {
	bus, err := platform.OpenI2C(cfg.I2C)
	if err != nil {
		return err
	}
	sensor, err := shtc3.New(bus, shtc3.Config{LowPower: cfg.LowPower})
	if err != nil {
		return err
	}
	log.Named("shtc3").Info("ready", logx.Hex16("id", sensor.ChipID()))

	hb := &heartbeat.Service{Interval: cfg.Heartbeat(), Log: log.Named("heartbeat")}
	go hb.Run(ctx)

	name := strx.Coalesce(cfg.Name, platform.DeviceName())
	switch cfg.Mode {
	case config.ModeBeacon:
		radio, err := platform.NewBeaconRadio(log.Named("radio"))
		if err != nil {
			return errcode.Wrap(errcode.Error, "ble.enable", err)
		}
		svc := beacon.New(beacon.Config{
			Name:     name,
			Interval: cfg.BeaconInterval(),
			Period:   cfg.BeaconPeriod(),
		}, sensor, radio, log.Named("beacon"))
		return svc.Run(ctx)
	default:
		adv, temp, humid, err := platform.NewPeripheralRadio(log.Named("radio"))
		if err != nil {
			return errcode.Wrap(errcode.Error, "ble.enable", err)
		}
		svc := peripheral.New(peripheral.Config{
			Name:          name,
			AdvInterval:   cfg.AdvInterval(),
			HumidityDelay: cfg.HumidityDelay(),
			CycleRest:     cfg.CycleRest(),
		}, sensor, adv, temp, humid, log.Named("peripheral"))
		return svc.Run(ctx)
	}
}
