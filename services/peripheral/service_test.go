package peripheral

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"envbeacon-go/drivers/shtc3"
	"envbeacon-go/errcode"
	"envbeacon-go/types"
	"envbeacon-go/x/logx"
	"envbeacon-go/x/timex"
)

type scriptedSensor struct {
	mu      sync.Mutex
	samples []types.Sample
	err     error
	n       int
}

func (s *scriptedSensor) Measure(ctx context.Context) (types.Sample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return types.Sample{}, s.err
	}
	v := s.samples[s.n%len(s.samples)]
	s.n++
	return v, nil
}

type write struct {
	char   string
	value  []byte
	notify bool
}

type recorder struct {
	mu     sync.Mutex
	writes []write
}

func (r *recorder) char(name string) Characteristic { return &recChar{r: r, name: name} }

func (r *recorder) all() []write {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]write(nil), r.writes...)
}

type recChar struct {
	r    *recorder
	name string
}

func (c *recChar) Write(value []byte, notify bool) error {
	c.r.mu.Lock()
	defer c.r.mu.Unlock()
	c.r.writes = append(c.r.writes, write{c.name, append([]byte(nil), value...), notify})
	return nil
}

// idleAdvertiser never sees a central.
type idleAdvertiser struct{}

func (idleAdvertiser) Advertise(ctx context.Context, _ AdvertiseParams) (Connection, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

type fakeConn struct {
	peer string
	drop chan struct{}
}

func (c *fakeConn) Peer() string { return c.peer }
func (c *fakeConn) Disconnected(ctx context.Context) error {
	select {
	case <-c.drop:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// scriptedAdvertiser hands out conns in order, then idles.
type scriptedAdvertiser struct {
	mu     sync.Mutex
	conns  []*fakeConn
	params []AdvertiseParams
	calls  chan int
	err    error
}

func (a *scriptedAdvertiser) Advertise(ctx context.Context, p AdvertiseParams) (Connection, error) {
	a.mu.Lock()
	a.params = append(a.params, p)
	n := len(a.params)
	var c *fakeConn
	if len(a.conns) > 0 {
		c, a.conns = a.conns[0], a.conns[1:]
	}
	a.mu.Unlock()
	if a.calls != nil {
		a.calls <- n
	}
	if a.err != nil {
		return nil, a.err
	}
	if c != nil {
		return c, nil
	}
	<-ctx.Done()
	return nil, ctx.Err()
}

// blockingSleeper parks until cancelled.
type blockingSleeper struct{}

func (blockingSleeper) Sleep(ctx context.Context, _ time.Duration) error {
	<-ctx.Done()
	return ctx.Err()
}

type syncBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}

func TestSamplingOrderAndPacing(t *testing.T) {
	sensor := &scriptedSensor{samples: []types.Sample{
		types.SampleFromCenti(2345, 5567),
		types.SampleFromCenti(-500, 10000),
	}}
	rec := &recorder{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fake := &timex.Fake{Hook: func(n int, _ time.Duration) {
		if n == 4 {
			cancel()
		}
	}}
	var log syncBuffer
	s := New(Config{Name: "RP2040", Sleeper: fake}, sensor, idleAdvertiser{},
		rec.char("temperature"), rec.char("humidity"), logx.New(&log, logx.Info))

	err := s.Run(ctx)
	if !errors.Is(err, errcode.Restart) {
		t.Fatalf("Run err = %v, want Restart", err)
	}

	want := []write{
		{"temperature", []byte{0x29, 0x09}, true}, // 2345
		{"humidity", []byte{0xBF, 0x15}, true},    // 5567
		{"temperature", []byte{0x0C, 0xFE}, true}, // -500
		{"humidity", []byte{0x10, 0x27}, true},    // 10000
	}
	got := rec.all()
	if len(got) != len(want) {
		t.Fatalf("writes = %+v, want %d", got, len(want))
	}
	for i := range want {
		if got[i].char != want[i].char || !bytes.Equal(got[i].value, want[i].value) || !got[i].notify {
			t.Fatalf("write %d = %+v, want %+v", i, got[i], want[i])
		}
	}
	sleeps := fake.Sleeps()
	wantSleeps := []time.Duration{5 * time.Second, 10 * time.Second, 5 * time.Second, 10 * time.Second}
	for i := range wantSleeps {
		if sleeps[i] != wantSleeps[i] {
			t.Fatalf("sleeps = %v, want %v", sleeps, wantSleeps)
		}
	}
	if !strings.Contains(log.String(), "I sample c=23.45 f=74.21 rh=55.67") {
		t.Fatalf("missing sample line in log: %q", log.String())
	}
}

func TestInvalidSampleSkipsWrites(t *testing.T) {
	sensor := &scriptedSensor{samples: []types.Sample{{}}}
	rec := &recorder{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	fake := &timex.Fake{Hook: func(n int, _ time.Duration) {
		if n == 2 {
			cancel()
		}
	}}
	var log syncBuffer
	s := New(Config{Sleeper: fake}, sensor, idleAdvertiser{},
		rec.char("temperature"), rec.char("humidity"), logx.New(&log, logx.Info))

	_ = s.Run(ctx)
	if got := rec.all(); len(got) != 0 {
		t.Fatalf("writes on invalid sample: %+v", got)
	}
	if !strings.Contains(log.String(), "checksum mismatch") {
		t.Fatalf("missing warning: %q", log.String())
	}
	// Pacing is kept even when the sample is dropped.
	if got := fake.Sleeps(); len(got) != 2 || got[0] != 5*time.Second || got[1] != 10*time.Second {
		t.Fatalf("sleeps = %v", got)
	}
}

func TestConnectionLifecycle(t *testing.T) {
	conn := &fakeConn{peer: "AA:BB:CC:DD:EE:FF", drop: make(chan struct{})}
	adv := &scriptedAdvertiser{conns: []*fakeConn{conn}, calls: make(chan int, 4)}
	sensor := &scriptedSensor{samples: []types.Sample{types.SampleFromCenti(2000, 4000)}}
	rec := &recorder{}
	var log syncBuffer
	s := New(Config{Name: "RP2040", Sleeper: blockingSleeper{}}, sensor, adv,
		rec.char("temperature"), rec.char("humidity"), logx.New(&log, logx.Info))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	waitCall(t, adv.calls, 1)
	close(conn.drop)
	waitCall(t, adv.calls, 2) // back to advertising after disconnect
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, errcode.Restart) {
			t.Fatalf("Run err = %v, want Restart", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}

	out := log.String()
	for _, want := range []string{
		"I advertising name=RP2040",
		"I connected peer=AA:BB:CC:DD:EE:FF",
		"I disconnected peer=AA:BB:CC:DD:EE:FF",
		"W advertising cancelled, restart requested",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("log missing %q:\n%s", want, out)
		}
	}

	adv.mu.Lock()
	p := adv.params[0]
	adv.mu.Unlock()
	if p.Interval != 250*time.Millisecond || p.Name != "RP2040" || p.Appearance != 768 ||
		len(p.Services) != 1 || p.Services[0] != 0x181A {
		t.Fatalf("advertise params = %+v", p)
	}
}

func TestSensorErrorEndsRun(t *testing.T) {
	sensor := &scriptedSensor{err: shtc3.ErrNack}
	rec := &recorder{}
	var log syncBuffer
	s := New(Config{Sleeper: &timex.Fake{}}, sensor, idleAdvertiser{},
		rec.char("temperature"), rec.char("humidity"), logx.New(&log, logx.Info))

	done := make(chan error, 1)
	go func() { done <- s.Run(context.Background()) }()
	select {
	case err := <-done:
		if !errors.Is(err, shtc3.ErrNack) {
			t.Fatalf("Run err = %v, want ErrNack", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return after sensor error")
	}
}

func TestRadioFailureRequestsRestart(t *testing.T) {
	cause := errors.New("adapter gone")
	adv := &scriptedAdvertiser{err: cause}
	sensor := &scriptedSensor{samples: []types.Sample{types.SampleFromCenti(2000, 4000)}}
	rec := &recorder{}
	var log syncBuffer
	s := New(Config{Sleeper: blockingSleeper{}}, sensor, adv,
		rec.char("temperature"), rec.char("humidity"), logx.New(&log, logx.Info))

	err := s.Run(context.Background())
	if !errors.Is(err, errcode.Restart) || !errors.Is(err, cause) {
		t.Fatalf("Run err = %v, want Restart wrapping cause", err)
	}
}

func waitCall(t *testing.T, calls <-chan int, want int) {
	t.Helper()
	select {
	case n := <-calls:
		if n != want {
			t.Fatalf("advertise call %d, want %d", n, want)
		}
	case <-time.After(time.Second):
		t.Fatalf("timeout waiting for advertise call %d", want)
	}
}
