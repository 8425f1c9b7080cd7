// Package peripheral publishes samples as a connectable GATT peripheral
// exposing the Environmental Sensing service.
//
// Two activities run side by side: a sampling loop that pushes temperature
// and humidity notifications on a staggered 5s/10s cadence, and an
// advertising loop that accepts one connection at a time. Cancelling the
// advertising loop ends Run with errcode.Restart; the caller is expected
// to reset the device rather than tidy up in place.
package peripheral

import (
	"context"
	"math"
	"time"

	"envbeacon-go/errcode"
	"envbeacon-go/types"
	"envbeacon-go/x/logx"
	"envbeacon-go/x/timex"

	"golang.org/x/sync/errgroup"
)

// GATT assigned numbers.
const (
	ServiceUUID     = 0x181A // Environmental Sensing
	TemperatureUUID = 0x2A6E
	HumidityUUID    = 0x2A6F

	AppearanceThermometer = 768 // generic thermometer
)

type Sensor interface {
	Measure(ctx context.Context) (types.Sample, error)
}

// AdvertiseParams describes a connectable advertisement.
type AdvertiseParams struct {
	Interval   time.Duration
	Name       string
	Services   []uint16
	Appearance uint16
}

// Connection is a live link to a central.
type Connection interface {
	Peer() string
	// Disconnected blocks until the link drops or ctx is cancelled.
	Disconnected(ctx context.Context) error
}

// Advertiser advertises until a central connects.
type Advertiser interface {
	Advertise(ctx context.Context, p AdvertiseParams) (Connection, error)
}

// Characteristic is a GATT value slot. With notify set, subscribed
// centrals receive the new value; delivery is best effort.
type Characteristic interface {
	Write(value []byte, notify bool) error
}

type Config struct {
	Name string
	// AdvInterval defaults to 250ms.
	AdvInterval time.Duration
	// HumidityDelay separates the temperature and humidity updates. Default 5s.
	HumidityDelay time.Duration
	// CycleRest follows the humidity update. Default 10s.
	CycleRest time.Duration
	// Sleeper defaults to timex.Real.
	Sleeper timex.Sleeper
}

type Service struct {
	cfg    Config
	sensor Sensor
	adv    Advertiser
	temp   Characteristic
	humid  Characteristic
	log    *logx.Logger
}

func New(cfg Config, sensor Sensor, adv Advertiser, temp, humid Characteristic, log *logx.Logger) *Service {
	if cfg.AdvInterval <= 0 {
		cfg.AdvInterval = 250 * time.Millisecond
	}
	if cfg.HumidityDelay <= 0 {
		cfg.HumidityDelay = 5 * time.Second
	}
	if cfg.CycleRest <= 0 {
		cfg.CycleRest = 10 * time.Second
	}
	if cfg.Sleeper == nil {
		cfg.Sleeper = timex.Real{}
	}
	return &Service{cfg: cfg, sensor: sensor, adv: adv, temp: temp, humid: humid, log: log}
}

// Run starts both activities and waits for them. It returns the sampling
// error if the sensor fails, otherwise errcode.Restart once ctx is
// cancelled.
func (s *Service) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return s.sampleLoop(gctx) })
	g.Go(func() error { return s.advertiseLoop(gctx) })
	return g.Wait()
}

// sampleLoop is the only writer of both characteristic buffers.
func (s *Service) sampleLoop(ctx context.Context) error {
	var tb, hb [2]byte
	for {
		smp, err := s.sensor.Measure(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		if smp.Valid {
			s.log.Info("sample",
				logx.Centi("c", int64(smp.CentiC())),
				logx.Centi("f", int64(math.Round(smp.Fahrenheit()*100))),
				logx.Centi("rh", int64(smp.CentiRH())))
			smp.TemperatureValue().Put(tb[:])
			s.write(s.temp, "temperature", tb[:])
		} else {
			s.log.Warn("checksum mismatch, sample dropped")
		}
		if err := s.cfg.Sleeper.Sleep(ctx, s.cfg.HumidityDelay); err != nil {
			return nil
		}

		if smp.Valid {
			smp.HumidityValue().Put(hb[:])
			s.write(s.humid, "humidity", hb[:])
		}
		if err := s.cfg.Sleeper.Sleep(ctx, s.cfg.CycleRest); err != nil {
			return nil
		}
	}
}

func (s *Service) write(c Characteristic, name string, b []byte) {
	if err := c.Write(b, true); err != nil {
		s.log.Warn("characteristic write failed", logx.Str("char", name), logx.Err(err))
	}
}

func (s *Service) advertiseLoop(ctx context.Context) error {
	p := AdvertiseParams{
		Interval:   s.cfg.AdvInterval,
		Name:       s.cfg.Name,
		Services:   []uint16{ServiceUUID},
		Appearance: AppearanceThermometer,
	}
	for {
		s.log.Info("advertising", logx.Str("name", p.Name))
		conn, err := s.adv.Advertise(ctx, p)
		if err != nil {
			return s.restart(ctx, "advertise", err)
		}
		s.log.Info("connected", logx.Str("peer", conn.Peer()))
		if err := conn.Disconnected(ctx); err != nil {
			return s.restart(ctx, "disconnected", err)
		}
		s.log.Info("disconnected", logx.Str("peer", conn.Peer()))
	}
}

// restart turns any end of the advertising activity into errcode.Restart,
// keeping the stack error as the cause when there is one.
func (s *Service) restart(ctx context.Context, op string, err error) error {
	if ctx.Err() != nil {
		s.log.Warn("advertising cancelled, restart requested")
		return errcode.Wrap(errcode.Restart, "peripheral."+op, nil)
	}
	s.log.Error("radio failed, restart requested", logx.Str("op", op), logx.Err(err))
	return errcode.Wrap(errcode.Restart, "peripheral."+op, err)
}
