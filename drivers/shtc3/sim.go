package shtc3

import (
	"errors"
	"sync"

	"tinygo.org/x/drivers"
)

// Compile-time check.
var _ drivers.I2C = (*Sim)(nil)

// ErrNack is returned by Sim when the addressed device does not respond.
var ErrNack = errors.New("shtc3: nack")

// simHistory bounds Commands so a long-running host build stays flat.
const simHistory = 64

// Sim emulates an SHTC3 behind drivers.I2C for host builds and tests.
// Fields may be changed between transactions.
type Sim struct {
	mu sync.Mutex

	RawID       uint16 // ID register before masking
	RawT, RawRH uint16
	CorruptT    bool // flip the temperature CRC on the next reads
	CorruptRH   bool
	Err         error  // returned by every Tx when set
	FailCmd     uint16 // NACK this command word when non-zero

	asleep  bool
	pending uint16
	cmds    []uint16
}

// NewSim returns a sensor reading 25.00°C / 50.00%RH.
func NewSim() *Sim {
	s := &Sim{RawID: 0xEF07}
	s.SetCenti(2500, 5000)
	return s
}

// SetCenti programs raw words that decode to exactly the given hundredths.
func (s *Sim) SetCenti(centiC, centiRH int32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.RawT = uint16((uint32(centiC+4500)*16384 + 4374) / 4375)
	s.RawRH = uint16((uint32(centiRH)*4096 + 624) / 625)
}

// Commands returns the most recent command words, oldest first.
func (s *Sim) Commands() []uint16 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]uint16(nil), s.cmds...)
}

func (s *Sim) Tx(addr uint16, w, r []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return s.Err
	}
	if addr != Address {
		return ErrNack
	}

	if len(w) == 2 {
		cmd := uint16(w[0])<<8 | uint16(w[1])
		if (s.asleep && cmd != cmdWakeup) || (s.FailCmd != 0 && cmd == s.FailCmd) {
			return ErrNack
		}
		if len(s.cmds) == simHistory {
			s.cmds = append(s.cmds[:0], s.cmds[1:]...)
		}
		s.cmds = append(s.cmds, cmd)
		switch cmd {
		case cmdReset, cmdWakeup:
			s.asleep = false
		case cmdSleep:
			s.asleep = true
		}
		s.pending = cmd
	}

	if len(r) == 0 {
		return nil
	}
	if s.asleep {
		return ErrNack
	}
	switch {
	case s.pending == cmdReadID && len(r) == 3:
		putWord(r, s.RawID, false)
	case s.pending == cmdMeasure && len(r) == 6:
		putWord(r[0:3], s.RawT, s.CorruptT)
		putWord(r[3:6], s.RawRH, s.CorruptRH)
	default:
		return ErrNack
	}
	s.pending = 0
	return nil
}

func putWord(b []byte, v uint16, corrupt bool) {
	b[0] = byte(v >> 8)
	b[1] = byte(v)
	b[2] = CRC8(b[0:2])
	if corrupt {
		b[2] ^= 0x01
	}
}
