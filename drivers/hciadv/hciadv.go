// Package hciadv drives legacy LE advertising straight over an HCI
// transport using H4 framing. The caller's payload goes on air byte for
// byte as the advertising data, so fixed-offset frames keep their layout.
package hciadv

import (
	"context"
	"errors"
	"io"
	"time"

	"envbeacon-go/errcode"
	"envbeacon-go/x/conv"
	"envbeacon-go/x/mathx"
	"envbeacon-go/x/timex"
)

// Transport is a byte stream to the controller, e.g. the CYW43439 HCI
// channel.
type Transport interface {
	io.ReadWriter
	// Buffered reports how many bytes Read can return without blocking.
	Buffered() int
}

// MaxPayload is the legacy advertising data limit.
const MaxPayload = 31

// H4 packet indicators.
const (
	pktCommand = 0x01
	pktACL     = 0x02
	pktEvent   = 0x04
)

const (
	evtCommandComplete = 0x0E
	evtCommandStatus   = 0x0F
)

// Command opcodes (OGF<<10 | OCF).
const (
	OpReset        = 0x0C03
	OpSetAdvParams = 0x2006
	OpSetAdvData   = 0x2008
	OpSetAdvEnable = 0x200A
)

const (
	advNonConnectable = 0x03 // ADV_NONCONN_IND
	allChannels       = 0x07
)

// Advertising interval bounds in 0.625ms units for non-connectable PDUs.
const (
	minIntervalUnits = 0x00A0 // 100ms
	maxIntervalUnits = 0x4000 // 10.24s
)

var ErrPayloadTooLong = errors.New("hciadv: payload exceeds 31 bytes")

type Config struct {
	// Timeout bounds the wait for each command's completion. Default 3s.
	Timeout time.Duration
	// Poll is the pause between transport checks. Default 1ms.
	Poll time.Duration
	// Sleeper defaults to timex.Real.
	Sleeper timex.Sleeper
}

// Advertiser owns the controller's advertising state.
type Advertiser struct {
	t        Transport
	cfg      Config
	ready    bool
	enabled  bool
	interval time.Duration

	cmd [4 + 32]byte
	hdr [4]byte
	evt [255]byte
}

func New(t Transport, cfg Config) *Advertiser {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Second
	}
	if cfg.Poll <= 0 {
		cfg.Poll = time.Millisecond
	}
	if cfg.Sleeper == nil {
		cfg.Sleeper = timex.Real{}
	}
	return &Advertiser{t: t, cfg: cfg}
}

// RawAdvertise sets payload as the advertising data, non-connectable, at
// the given interval. The first call resets the controller; later calls
// only replace the data unless the interval changes.
func (a *Advertiser) RawAdvertise(interval time.Duration, payload []byte) error {
	if len(payload) > MaxPayload {
		return ErrPayloadTooLong
	}
	if !a.ready {
		if err := a.command(OpReset, nil); err != nil {
			return err
		}
		a.ready = true
	}
	if !a.enabled || interval != a.interval {
		if a.enabled {
			if err := a.command(OpSetAdvEnable, []byte{0}); err != nil {
				return err
			}
			a.enabled = false
		}
		p := AdvParams(interval)
		if err := a.command(OpSetAdvParams, p[:]); err != nil {
			return err
		}
		a.interval = interval
	}
	d := AdvData(payload)
	if err := a.command(OpSetAdvData, d[:]); err != nil {
		return err
	}
	if !a.enabled {
		if err := a.command(OpSetAdvEnable, []byte{1}); err != nil {
			return err
		}
		a.enabled = true
	}
	return nil
}

// AdvParams encodes LE Set Advertising Parameters for a non-connectable
// advertisement from the public address on all three channels.
func AdvParams(interval time.Duration) [15]byte {
	units := int64(interval / (625 * time.Microsecond))
	if units < minIntervalUnits {
		units = minIntervalUnits
	}
	u := uint16(mathx.Min(units, maxIntervalUnits))

	var b [15]byte
	b[0], b[1] = byte(u), byte(u>>8) // min
	b[2], b[3] = byte(u), byte(u>>8) // max
	b[4] = advNonConnectable
	// own/direct address types and direct address stay zero.
	b[13] = allChannels
	return b
}

// AdvData encodes LE Set Advertising Data: a length byte followed by the
// payload, zero padded to 31 bytes.
func AdvData(payload []byte) [32]byte {
	var b [32]byte
	b[0] = byte(copy(b[1:], payload))
	return b
}

// command writes one H4 command packet and waits for its completion.
func (a *Advertiser) command(op uint16, params []byte) error {
	p := a.cmd[:4+len(params)]
	p[0] = pktCommand
	p[1], p[2] = byte(op), byte(op>>8)
	p[3] = byte(len(params))
	copy(p[4:], params)
	if _, err := a.t.Write(p); err != nil {
		return err
	}
	return a.await(op)
}

func (a *Advertiser) await(op uint16) error {
	ctx := context.Background()
	for waited := time.Duration(0); ; {
		if a.t.Buffered() == 0 {
			if waited >= a.cfg.Timeout {
				return opError(errcode.Timeout, op, 0)
			}
			if err := a.cfg.Sleeper.Sleep(ctx, a.cfg.Poll); err != nil {
				return err
			}
			waited += a.cfg.Poll
			continue
		}
		done, status, err := a.readPacket(op)
		if err != nil {
			return err
		}
		if done {
			if status != 0 {
				return opError(errcode.Error, op, status)
			}
			return nil
		}
	}
}

// readPacket consumes one inbound packet and reports whether it completes
// op. Unrelated events and ACL data are discarded.
func (a *Advertiser) readPacket(op uint16) (done bool, status byte, err error) {
	if _, err := io.ReadFull(a.t, a.hdr[:1]); err != nil {
		return false, 0, err
	}
	switch a.hdr[0] {
	case pktEvent:
		if _, err := io.ReadFull(a.t, a.hdr[1:3]); err != nil {
			return false, 0, err
		}
		code, n := a.hdr[1], int(a.hdr[2])
		e := a.evt[:n]
		if _, err := io.ReadFull(a.t, e); err != nil {
			return false, 0, err
		}
		switch {
		case code == evtCommandComplete && n >= 4 && opcodeAt(e[1:]) == op:
			return true, e[3], nil
		case code == evtCommandStatus && n >= 4 && opcodeAt(e[2:]) == op && e[0] != 0:
			return true, e[0], nil
		}
		return false, 0, nil
	case pktACL:
		if _, err := io.ReadFull(a.t, a.hdr[:4]); err != nil {
			return false, 0, err
		}
		n := int(a.hdr[2]) | int(a.hdr[3])<<8
		for n > 0 {
			k := mathx.Min(n, len(a.evt))
			if _, err := io.ReadFull(a.t, a.evt[:k]); err != nil {
				return false, 0, err
			}
			n -= k
		}
		return false, 0, nil
	default:
		var buf [2]byte
		return false, 0, &errcode.E{C: errcode.Error, Op: "hciadv.read", Msg: "packet type 0x" + string(conv.Hex(buf[:], uint32(a.hdr[0]), 2))}
	}
}

func opcodeAt(b []byte) uint16 { return uint16(b[0]) | uint16(b[1])<<8 }

func opError(c errcode.Code, op uint16, status byte) error {
	var buf [4]byte
	msg := "opcode 0x" + string(conv.Hex(buf[:], uint32(op), 4))
	if status != 0 {
		msg += " status 0x" + string(conv.Hex(buf[:], uint32(status), 2))
	}
	return &errcode.E{C: c, Op: "hciadv", Msg: msg}
}
