// Package shtc3 drives the Sensirion SHTC3 temperature/humidity sensor over I²C.
//
//	d, err := shtc3.New(bus, shtc3.Config{})   // reset + identity check
//	s, err := d.Measure(ctx)                   // suspends ≥15 ms
//
// Each 16-bit word read from the sensor is followed by a CRC8. A checksum
// failure on either word yields a Sample with Valid=false and a nil error;
// bus errors are returned unchanged.
//
// Conversion is fixed-point and must stay bit-exact:
//
//	centi°C  = (4375*raw)>>14 - 4500
//	centi%RH = (625*raw)>>12
package shtc3

import (
	"context"
	"time"

	"envbeacon-go/errcode"
	"envbeacon-go/types"
	"envbeacon-go/x/conv"
	"envbeacon-go/x/timex"

	"tinygo.org/x/drivers"
)

// I2C address.
const Address = 0x70

// ChipID is the product code left after masking the ID register with IDMask.
const (
	ChipID = 0x0807
	IDMask = 0x083F
)

// Commands (16-bit, sent MSB first).
const (
	cmdReset   = 0x805D
	cmdReadID  = 0xEFC8
	cmdMeasure = 0x7866 // normal mode, clock stretching off, T first
	cmdSleep   = 0xB098
	cmdWakeup  = 0x3517
)

// Timing.
const (
	SettleTime  = 1 * time.Millisecond
	MeasureTime = 15 * time.Millisecond
	WakeTime    = 1 * time.Millisecond // datasheet: 240µs max
)

// Config controls non-hardware behaviour. All fields are optional.
type Config struct {
	// Address defaults to 0x70 if zero.
	Address uint16
	// Sleeper defaults to timex.Real.
	Sleeper timex.Sleeper
	// LowPower puts the sensor to sleep between measurements.
	LowPower bool
}

// Device wraps an I2C connection to an SHTC3.
type Device struct {
	bus      drivers.I2C
	addr     uint16
	sleeper  timex.Sleeper
	lowPower bool
	id       uint16

	// Fixed buffers to avoid per-call heap allocations.
	w [2]byte
	r [6]byte
}

// New resets the sensor and verifies its identity. A mismatching ID is
// permanent: the returned error carries errcode.ChipMismatch and no Device
// is returned. Bus errors are returned as-is.
func New(bus drivers.I2C, cfg Config) (*Device, error) {
	d := &Device{
		bus:      bus,
		addr:     cfg.Address,
		sleeper:  cfg.Sleeper,
		lowPower: cfg.LowPower,
	}
	if d.addr == 0 {
		d.addr = Address
	}
	if d.sleeper == nil {
		d.sleeper = timex.Real{}
	}

	// A warm reset of the host leaves the sensor asleep if the previous
	// run used LowPower, and a sleeping SHTC3 NACKs everything but wakeup.
	// The wakeup result is ignored; a dead bus shows up in Reset.
	_ = d.command(cmdWakeup)
	if err := d.settle(WakeTime); err != nil {
		return nil, err
	}
	if err := d.Reset(); err != nil {
		return nil, err
	}
	id, err := d.ReadChipID()
	if err != nil {
		return nil, err
	}
	if id != ChipID {
		var buf [4]byte
		return nil, &errcode.E{
			C:   errcode.ChipMismatch,
			Op:  "shtc3.New",
			Msg: "id 0x" + string(conv.Hex(buf[:], uint32(id), 4)),
		}
	}
	d.id = id
	if d.lowPower {
		if err := d.command(cmdSleep); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// ChipID returns the masked identity read during New.
func (d *Device) ChipID() uint16 { return d.id }

// Reset issues a soft reset and waits for the sensor to settle.
// The wait is short and not cancellable.
func (d *Device) Reset() error {
	if err := d.command(cmdReset); err != nil {
		return err
	}
	return d.settle(SettleTime)
}

// ReadChipID reads the ID register and returns it masked with IDMask.
// The trailing CRC byte is not checked.
func (d *Device) ReadChipID() (uint16, error) {
	if err := d.command(cmdReadID); err != nil {
		return 0, err
	}
	if err := d.settle(SettleTime); err != nil {
		return 0, err
	}
	buf := d.r[:3]
	if err := d.bus.Tx(d.addr, nil, buf); err != nil {
		return 0, err
	}
	return (uint16(buf[0])<<8 | uint16(buf[1])) & IDMask, nil
}

// Measure runs one temperature+humidity conversion. It suspends for at
// least MeasureTime through the configured Sleeper; cancelling ctx aborts
// the wait and returns ctx.Err(). In LowPower mode a failure to put the
// sensor back to sleep is returned alongside the sample.
func (d *Device) Measure(ctx context.Context) (s types.Sample, err error) {
	if d.lowPower {
		if err := d.command(cmdWakeup); err != nil {
			return types.Sample{}, err
		}
		if err := d.sleeper.Sleep(ctx, WakeTime); err != nil {
			return types.Sample{}, err
		}
		defer func() {
			if serr := d.command(cmdSleep); serr != nil && err == nil {
				err = serr
			}
		}()
	}

	if err := d.command(cmdMeasure); err != nil {
		return types.Sample{}, err
	}
	if err := d.sleeper.Sleep(ctx, MeasureTime); err != nil {
		return types.Sample{}, err
	}
	buf := d.r[:6]
	if err := d.bus.Tx(d.addr, nil, buf); err != nil {
		return types.Sample{}, err
	}
	return Decode(buf)
}

// Decode converts a 6-byte measurement frame
// [T_hi T_lo T_crc RH_hi RH_lo RH_crc]. A checksum failure on either word
// returns an invalid Sample and nil error.
func Decode(buf []byte) (types.Sample, error) {
	if len(buf) < 6 {
		return types.Sample{}, &errcode.E{C: errcode.Error, Op: "shtc3.Decode", Msg: "short frame"}
	}
	if CRC8(buf[0:2]) != buf[2] || CRC8(buf[3:5]) != buf[5] {
		return types.Sample{}, nil
	}
	rt := uint16(buf[0])<<8 | uint16(buf[1])
	rh := uint16(buf[3])<<8 | uint16(buf[4])
	return types.SampleFromCenti(CentiCelsius(rt), CentiRelHumidity(rh)), nil
}

// CentiCelsius converts a raw temperature word to hundredths of °C.
func CentiCelsius(raw uint16) int32 {
	return int32((4375*uint32(raw))>>14) - 4500
}

// CentiRelHumidity converts a raw humidity word to hundredths of %RH.
func CentiRelHumidity(raw uint16) int32 {
	return int32((625 * uint32(raw)) >> 12)
}

func (d *Device) command(cmd uint16) error {
	d.w[0] = byte(cmd >> 8)
	d.w[1] = byte(cmd)
	return d.bus.Tx(d.addr, d.w[:2], nil)
}

// settle precedes any concurrent activity, so it is not cancellable.
func (d *Device) settle(dur time.Duration) error {
	return d.sleeper.Sleep(context.Background(), dur)
}
