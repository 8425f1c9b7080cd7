package beacon

import (
	"context"
	"time"

	"envbeacon-go/types"
	"envbeacon-go/x/logx"
	"envbeacon-go/x/timex"
)

// Sensor produces one sample per call. Errors are fatal to the loop.
type Sensor interface {
	Measure(ctx context.Context) (types.Sample, error)
}

// Advertiser broadcasts a raw payload, replacing whatever was advertised
// before. It does not block waiting for scanners.
type Advertiser interface {
	RawAdvertise(interval time.Duration, payload []byte) error
}

type Config struct {
	// Name is the device identity; only the first NameLen characters are sent.
	Name string
	// Interval is the radio advertising interval. Default 1s.
	Interval time.Duration
	// Period is the time between frame updates. Default 15s.
	Period time.Duration
	// Sleeper defaults to timex.Real.
	Sleeper timex.Sleeper
	// Uptime defaults to timex.Uptime.
	Uptime func() time.Duration
}

// Service owns the frame buffer; nothing else writes to it.
type Service struct {
	cfg     Config
	sensor  Sensor
	radio   Advertiser
	log     *logx.Logger
	frame   *Frame
	counter uint32
}

// New builds the frame once.
func New(cfg Config, sensor Sensor, radio Advertiser, log *logx.Logger) *Service {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Second
	}
	if cfg.Period <= 0 {
		cfg.Period = 15 * time.Second
	}
	if cfg.Sleeper == nil {
		cfg.Sleeper = timex.Real{}
	}
	if cfg.Uptime == nil {
		cfg.Uptime = timex.Uptime
	}
	return &Service{
		cfg:    cfg,
		sensor: sensor,
		radio:  radio,
		log:    log,
		frame:  NewFrame(cfg.Name),
	}
}

// Run loops update → advertise → sleep until ctx is cancelled (ctx.Err())
// or the sensor fails (that error).
func (s *Service) Run(ctx context.Context) error {
	s.log.Info("broadcasting",
		logx.Str("name", string(s.frame[OffName+2:OffName+2+NameLen])),
		logx.Int("period_ms", s.cfg.Period.Milliseconds()))
	for {
		if err := s.Cycle(ctx); err != nil {
			return err
		}
		if err := s.cfg.Sleeper.Sleep(ctx, s.cfg.Period); err != nil {
			return err
		}
	}
}

// Cycle takes one sample, refreshes the telemetry fields and hands the
// whole frame to the radio. A sample without valid data is broadcast as
// TemperatureUnknown so receivers never see stale values.
func (s *Service) Cycle(ctx context.Context) error {
	sample, err := s.sensor.Measure(ctx)
	if err != nil {
		return err
	}

	if sample.Valid {
		s.frame.SetTemperature(sample.Temperature)
	} else {
		s.frame.SetTemperatureUnknown()
		s.log.Warn("checksum mismatch, temperature marked unknown")
	}
	s.counter++
	s.frame.SetCounter(s.counter)
	s.frame.SetUptime(timex.Centis(s.cfg.Uptime()))

	if err := s.radio.RawAdvertise(s.cfg.Interval, s.frame.Bytes()); err != nil {
		// Radio hiccups are retried next cycle.
		s.log.Warn("advertise failed", logx.Err(err))
		return nil
	}
	if s.log.Enabled(logx.Debug) {
		s.log.Debug("frame sent",
			logx.Uint("counter", uint64(s.counter)),
			logx.Centi("t", int64(sample.CentiC())),
			logx.Bool("valid", sample.Valid))
	}
	return nil
}

// Frame returns a copy of the current frame.
func (s *Service) Frame() Frame { return *s.frame }
