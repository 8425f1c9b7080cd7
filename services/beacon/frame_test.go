package beacon

import (
	"bytes"
	"testing"
)

func TestNewFrameLayout(t *testing.T) {
	f := NewFrame("RP2040")

	want := []byte{
		// flags
		0x02, 0x01, 0x06,
		// short name
		0x04, 0x08, 'R', 'P', '2',
		// 16-bit service UUIDs
		0x03, 0x03, 0xAA, 0xFE,
		// service data: header, frame type, version, battery
		0x11, 0x16, 0xAA, 0xFE, 0x20, 0x00, 0x00, 0x00,
		// temperature unknown
		0x80, 0x00,
		// counter, uptime
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		// padding
		0x00,
	}
	if len(want) != FrameLen {
		t.Fatalf("test vector length %d", len(want))
	}
	if !bytes.Equal(f.Bytes(), want) {
		t.Fatalf("frame =\n% X\nwant\n% X", f.Bytes(), want)
	}
}

func TestNewFrameShortName(t *testing.T) {
	f := NewFrame("X")
	if got := string(f[OffName+2 : OffName+2+NameLen]); got != "X__" {
		t.Fatalf("name = %q, want %q", got, "X__")
	}
	if f[OffTemperature] != 0x80 {
		t.Fatalf("offsets moved: temperature byte = %02X", f[OffTemperature])
	}
}

func TestSetTemperature(t *testing.T) {
	for _, c := range []struct {
		in     float64
		hi, lo byte
	}{
		{23.73, 23, 186}, // 0.73*256 = 186.88, truncated
		{25.0, 25, 0},
		{0.5, 0, 128},
		{-5.25, 0xFA, 0xC0}, // -1344 as int16
		{-0.5, 0xFF, 0x80},
	} {
		f := NewFrame("abc")
		f.SetTemperature(c.in)
		if f[OffTemperature] != c.hi || f[OffTemperature+1] != c.lo {
			t.Fatalf("SetTemperature(%v) = %02X %02X, want %02X %02X",
				c.in, f[OffTemperature], f[OffTemperature+1], c.hi, c.lo)
		}
	}
}

func TestSetCounterAndUptimeBigEndian(t *testing.T) {
	f := NewFrame("abc")
	f.SetCounter(0x01020304)
	f.SetUptime(0x0A0B0C0D)
	if got := f[OffCounter : OffCounter+4]; !bytes.Equal(got, []byte{1, 2, 3, 4}) {
		t.Fatalf("counter bytes = % X", got)
	}
	if got := f[OffUptime : OffUptime+4]; !bytes.Equal(got, []byte{0x0A, 0x0B, 0x0C, 0x0D}) {
		t.Fatalf("uptime bytes = % X", got)
	}
}

func TestBytesAliasesBuffer(t *testing.T) {
	f := NewFrame("abc")
	b := f.Bytes()
	f.SetCounter(7)
	if b[OffCounter+3] != 7 {
		t.Fatalf("Bytes() does not alias the frame")
	}
}

func TestWalkFields(t *testing.T) {
	fields, err := Fields(NewFrame("abc").Bytes())
	if err != nil {
		t.Fatalf("Fields: %v", err)
	}
	wantTypes := []byte{ADFlags, ADShortName, ADUUID16, ADServiceData}
	if len(fields) != len(wantTypes) {
		t.Fatalf("fields = %d, want %d", len(fields), len(wantTypes))
	}
	for i, f := range fields {
		if f.Type != wantTypes[i] {
			t.Fatalf("field %d type = %02X, want %02X", i, f.Type, wantTypes[i])
		}
	}
	if string(fields[1].Data) != "abc" {
		t.Fatalf("name data = %q", fields[1].Data)
	}
}

func TestWalkMalformed(t *testing.T) {
	if err := Walk([]byte{0x05, 0x09, 'a'}, func(Field) bool { return true }); err != ErrMalformed {
		t.Fatalf("err = %v, want ErrMalformed", err)
	}
}

func TestWalkStopsEarly(t *testing.T) {
	n := 0
	_ = Walk(NewFrame("abc").Bytes(), func(Field) bool { n++; return false })
	if n != 1 {
		t.Fatalf("visited %d fields, want 1", n)
	}
}
