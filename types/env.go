package types

import (
	"encoding/binary"
	"errors"
	"math"
)

// ------------------------
// Samples
// ------------------------

// Sample is one temperature/humidity measurement. When Valid is false both
// fields are absent: the sensor pair failed its checksum and was discarded
// as a unit.
type Sample struct {
	Temperature float64 // °C
	Humidity    float64 // %RH
	Valid       bool
}

// SampleFromCenti builds a valid Sample from hundredths of °C and %RH.
func SampleFromCenti(centiC, centiRH int32) Sample {
	return Sample{
		Temperature: float64(centiC) / 100.0,
		Humidity:    float64(centiRH) / 100.0,
		Valid:       true,
	}
}

// Fahrenheit converts Temperature for display.
func (s Sample) Fahrenheit() float64 { return s.Temperature*9/5 + 32 }

// CentiC returns Temperature in hundredths of °C.
func (s Sample) CentiC() int32 { return centi(s.Temperature) }

// CentiRH returns Humidity in hundredths of %RH.
func (s Sample) CentiRH() int32 { return centi(s.Humidity) }

// Driver values are exact multiples of 0.01; rounding the scaled value
// recovers that integer where truncation can land one below it.
func centi(v float64) int32 { return int32(math.Round(v * 100)) }

// ------------------------
// GATT values
// ------------------------

var ErrShortValue = errors.New("types: short characteristic value")

// TemperatureValue is the Temperature characteristic (0x2A6E) payload.
type TemperatureValue struct {
	// Hundredths of °C (e.g. 2373 => 23.73°C). Not clamped.
	CentiC int16 `json:"centi_c"`
}

// HumidityValue is the Humidity characteristic (0x2A6F) payload.
type HumidityValue struct {
	// Hundredths of %RH (0..10000 for 0..100.00%). Not clamped.
	RHx100 uint16 `json:"rh_x100"`
}

func (s Sample) TemperatureValue() TemperatureValue {
	return TemperatureValue{CentiC: int16(s.CentiC())}
}

func (s Sample) HumidityValue() HumidityValue {
	return HumidityValue{RHx100: uint16(s.CentiRH())}
}

// Put writes the little-endian int16 wire form into b[0:2].
func (v TemperatureValue) Put(b []byte) { binary.LittleEndian.PutUint16(b, uint16(v.CentiC)) }

// Put writes the little-endian uint16 wire form into b[0:2].
func (v HumidityValue) Put(b []byte) { binary.LittleEndian.PutUint16(b, v.RHx100) }

func ParseTemperatureValue(b []byte) (TemperatureValue, error) {
	if len(b) < 2 {
		return TemperatureValue{}, ErrShortValue
	}
	return TemperatureValue{CentiC: int16(binary.LittleEndian.Uint16(b))}, nil
}

func ParseHumidityValue(b []byte) (HumidityValue, error) {
	if len(b) < 2 {
		return HumidityValue{}, ErrShortValue
	}
	return HumidityValue{RHx100: binary.LittleEndian.Uint16(b)}, nil
}
