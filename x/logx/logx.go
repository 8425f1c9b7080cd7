// Package logx is a small leveled line logger for firmware. Lines look like
//
//	I beacon: tx counter=12 t=23.73
//
// Numbers are formatted with x/conv into a per-logger scratch buffer so the
// hot path stays clear of fmt and reflection.
package logx

import (
	"io"
	"strings"
	"sync"

	"envbeacon-go/x/conv"
)

type Level uint8

const (
	Debug Level = iota
	Info
	Warn
	Error
)

func (l Level) tag() byte {
	switch l {
	case Debug:
		return 'D'
	case Info:
		return 'I'
	case Warn:
		return 'W'
	default:
		return 'E'
	}
}

// ParseLevel maps "debug", "info", "warn"/"warning" and "error" to a Level.
func ParseLevel(s string) (Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return Debug, true
	case "", "info":
		return Info, true
	case "warn", "warning":
		return Warn, true
	case "error":
		return Error, true
	}
	return Info, false
}

type fieldKind uint8

const (
	kStr fieldKind = iota
	kInt
	kUint
	kHex
	kCenti
	kErr
)

// Field is a key/value pair attached to a log line.
type Field struct {
	key  string
	kind fieldKind
	s    string
	i    int64
	u    uint64
	w    int
}

func Str(k, v string) Field          { return Field{key: k, kind: kStr, s: v} }
func Int(k string, v int64) Field    { return Field{key: k, kind: kInt, i: v} }
func Uint(k string, v uint64) Field  { return Field{key: k, kind: kUint, u: v} }
func Hex16(k string, v uint16) Field { return Field{key: k, kind: kHex, u: uint64(v), w: 4} }
func Hex32(k string, v uint32) Field { return Field{key: k, kind: kHex, u: uint64(v), w: 8} }
func Centi(k string, v int64) Field  { return Field{key: k, kind: kCenti, i: v} }

func Bool(k string, v bool) Field {
	if v {
		return Str(k, "true")
	}
	return Str(k, "false")
}

func Err(err error) Field {
	if err == nil {
		return Field{key: "err", kind: kStr, s: "<nil>"}
	}
	return Field{key: "err", kind: kErr, s: err.Error()}
}

// Logger writes one line per call. It is safe for concurrent use.
type Logger struct {
	mu   *sync.Mutex
	w    io.Writer
	min  Level
	name string
	line *[]byte
}

// New returns a root logger writing to w at level min and above.
func New(w io.Writer, min Level) *Logger {
	line := make([]byte, 0, 128)
	return &Logger{mu: &sync.Mutex{}, w: w, min: min, line: &line}
}

// Named returns a child logger sharing the writer and lock.
func (l *Logger) Named(name string) *Logger {
	c := *l
	c.name = name
	return &c
}

func (l *Logger) Enabled(lv Level) bool { return l != nil && lv >= l.min }

func (l *Logger) Debug(msg string, f ...Field) { l.log(Debug, msg, f) }
func (l *Logger) Info(msg string, f ...Field)  { l.log(Info, msg, f) }
func (l *Logger) Warn(msg string, f ...Field)  { l.log(Warn, msg, f) }
func (l *Logger) Error(msg string, f ...Field) { l.log(Error, msg, f) }

func (l *Logger) log(lv Level, msg string, fields []Field) {
	if !l.Enabled(lv) || l.w == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	var num [24]byte
	b := (*l.line)[:0]
	b = append(b, lv.tag(), ' ')
	if l.name != "" {
		b = append(b, l.name...)
		b = append(b, ": "...)
	}
	b = append(b, msg...)
	for _, f := range fields {
		b = append(b, ' ')
		b = append(b, f.key...)
		b = append(b, '=')
		switch f.kind {
		case kStr, kErr:
			b = append(b, f.s...)
		case kInt:
			b = append(b, conv.Itoa(num[:], f.i)...)
		case kUint:
			b = append(b, conv.Utoa(num[:], f.u)...)
		case kHex:
			b = append(b, '0', 'x')
			b = append(b, conv.Hex(num[:], uint32(f.u), f.w)...)
		case kCenti:
			b = append(b, conv.Centi(num[:], f.i)...)
		}
	}
	b = append(b, '\r', '\n')
	*l.line = b
	_, _ = l.w.Write(b)
}
