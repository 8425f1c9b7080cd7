package beacon

import (
	"encoding/binary"

	"envbeacon-go/x/mathx"
)

// FrameLen is the legacy advertising payload size.
const FrameLen = 31

// Byte offsets inside a Frame. Receivers decode by offset, so these are
// part of the wire contract.
const (
	OffFlags       = 0
	OffName        = 3
	OffUUIDs       = 8
	OffServiceData = 12
	OffFrameType   = 16
	OffVersion     = 17
	OffBattery     = 18
	OffTemperature = 20
	OffCounter     = 22
	OffUptime      = 26
)

// NameLen is the number of device-name characters carried in the frame.
const NameLen = 3

// Frame header values.
const (
	ServiceUUID        = 0xFEAA
	FrameTypeTelemetry = 0x20
	FrameVersion       = 0x00

	// TemperatureUnknown is written when a cycle has no valid sample.
	TemperatureUnknown = 0x8000
)

// AD structure types used in the frame.
const (
	ADFlags       = 0x01
	ADUUID16      = 0x03 // complete list of 16-bit service UUIDs
	ADShortName   = 0x08
	ADFullName    = 0x09
	ADServiceData = 0x16 // service data, 16-bit UUID

	flagsLEOnly = 0x06 // LE general discoverable, BR/EDR not supported
)

const padName = '_'

// Frame is the fixed beacon payload. It is built once and then mutated in
// place every cycle.
type Frame [FrameLen]byte

// NewFrame lays out the static blocks. The name is cut (or padded with
// '_') to NameLen characters so the telemetry offsets never move. The
// temperature starts out as TemperatureUnknown.
func NewFrame(name string) *Frame {
	f := &Frame{}

	copy(f[OffFlags:], []byte{2, ADFlags, flagsLEOnly})

	f[OffName] = 1 + NameLen
	f[OffName+1] = ADShortName
	n := copy(f[OffName+2:OffName+2+NameLen], name[:mathx.Min(len(name), NameLen)])
	for i := n; i < NameLen; i++ {
		f[OffName+2+i] = padName
	}

	f[OffUUIDs] = 3
	f[OffUUIDs+1] = ADUUID16
	binary.LittleEndian.PutUint16(f[OffUUIDs+2:], ServiceUUID)

	f[OffServiceData] = byte(OffUptime + 4 - OffServiceData - 1)
	f[OffServiceData+1] = ADServiceData
	binary.LittleEndian.PutUint16(f[OffServiceData+2:], ServiceUUID)
	f[OffFrameType] = FrameTypeTelemetry
	f[OffVersion] = FrameVersion
	// Battery voltage is not measured on this board; left at zero.

	f.SetTemperatureUnknown()
	return f
}

// SetTemperature stores c as signed 8.8 fixed point: the integer part in
// the first byte and the fraction ×256, truncated toward zero, in the
// second. Out-of-range values wrap; nothing is clamped.
func (f *Frame) SetTemperature(c float64) {
	v := int16(int32(c * 256))
	binary.BigEndian.PutUint16(f[OffTemperature:], uint16(v))
}

// SetTemperatureUnknown stores the 0x8000 sentinel.
func (f *Frame) SetTemperatureUnknown() {
	binary.BigEndian.PutUint16(f[OffTemperature:], TemperatureUnknown)
}

// SetCounter stores the advertising PDU count, big-endian.
func (f *Frame) SetCounter(n uint32) { binary.BigEndian.PutUint32(f[OffCounter:], n) }

// SetUptime stores uptime in centiseconds, big-endian.
func (f *Frame) SetUptime(centis uint32) { binary.BigEndian.PutUint32(f[OffUptime:], centis) }

// Bytes aliases the frame buffer; it does not copy.
func (f *Frame) Bytes() []byte { return f[:] }
