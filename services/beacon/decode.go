package beacon

import (
	"encoding/binary"
	"errors"
	"time"
)

var ErrNotTelemetry = errors.New("beacon: no telemetry service data")

// Telemetry is the receiver-side view of a frame.
type Telemetry struct {
	Name      string
	Version   byte
	BatteryMV uint16
	// Temperature is in °C with 1/256 resolution. TemperatureKnown is false
	// when the sender wrote the unknown sentinel.
	Temperature      float64
	TemperatureKnown bool
	Counter          uint32
	Uptime           time.Duration
}

// Decode parses an advertising payload carrying a telemetry frame. It does
// not depend on fixed offsets, so it also reads frames with other name
// lengths.
func Decode(payload []byte) (Telemetry, error) {
	var (
		t     Telemetry
		found bool
	)
	err := Walk(payload, func(f Field) bool {
		switch f.Type {
		case ADShortName, ADFullName:
			t.Name = string(f.Data)
		case ADServiceData:
			if len(f.Data) < 2 || binary.LittleEndian.Uint16(f.Data) != ServiceUUID {
				return true
			}
			if err := decodeServiceData(&t, f.Data[2:]); err == nil {
				found = true
			}
		}
		return true
	})
	if err != nil {
		return Telemetry{}, err
	}
	if !found {
		return Telemetry{}, ErrNotTelemetry
	}
	return t, nil
}

// DecodeServiceData parses the body of a 0xFEAA service data element, the
// bytes after the UUID. Scanners that hand out service data already split
// by UUID use this instead of Decode.
func DecodeServiceData(name string, data []byte) (Telemetry, error) {
	t := Telemetry{Name: name}
	if err := decodeServiceData(&t, data); err != nil {
		return Telemetry{}, err
	}
	return t, nil
}

// type(1) version(1) battery(2) temp(2) count(4) uptime(4)
func decodeServiceData(t *Telemetry, d []byte) error {
	if len(d) < 14 || d[0] != FrameTypeTelemetry {
		return ErrNotTelemetry
	}
	t.Version = d[1]
	t.BatteryMV = binary.BigEndian.Uint16(d[2:4])
	raw := binary.BigEndian.Uint16(d[4:6])
	if raw != TemperatureUnknown {
		t.Temperature = float64(int16(raw)) / 256
		t.TemperatureKnown = true
	}
	t.Counter = binary.BigEndian.Uint32(d[6:10])
	t.Uptime = time.Duration(binary.BigEndian.Uint32(d[10:14])) * 10 * time.Millisecond
	return nil
}
