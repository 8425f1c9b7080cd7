package main

import (
	"encoding/hex"
	"errors"
	"testing"

	"envbeacon-go/services/beacon"
)

func TestDecodeHex(t *testing.T) {
	f := beacon.NewFrame("att")
	f.SetTemperature(-1.5)
	f.SetCounter(3)
	plain := hex.EncodeToString(f.Bytes())

	spaced := ""
	for i := 0; i < len(plain); i += 2 {
		if i > 0 {
			spaced += " "
		}
		spaced += plain[i : i+2]
	}

	for _, in := range []string{plain, "0x" + plain, spaced} {
		got, err := decodeHex(in)
		if err != nil {
			t.Fatalf("decodeHex(%q): %v", in, err)
		}
		if got.Name != "att" || got.Temperature != -1.5 || got.Counter != 3 {
			t.Fatalf("decodeHex(%q) = %+v", in, got)
		}
	}
}

func TestDecodeHexErrors(t *testing.T) {
	if _, err := decodeHex("zz"); err == nil {
		t.Fatal("bad hex accepted")
	}
	if _, err := decodeHex("020106"); !errors.Is(err, beacon.ErrNotTelemetry) {
		t.Fatalf("err = %v, want ErrNotTelemetry", err)
	}
}
