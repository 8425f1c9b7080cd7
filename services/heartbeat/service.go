// Package heartbeat periodically logs uptime and heap usage so a serial
// console shows the firmware is alive between sensor cycles.
package heartbeat

import (
	"context"
	"runtime"
	"time"

	"envbeacon-go/x/logx"
	"envbeacon-go/x/timex"
)

type Service struct {
	Interval time.Duration
	// Sleeper defaults to timex.Real.
	Sleeper timex.Sleeper
	// Uptime defaults to timex.Uptime.
	Uptime func() time.Duration
	Log    *logx.Logger
}

// Run logs one line per interval until ctx is cancelled. A zero interval
// disables the service.
func (s *Service) Run(ctx context.Context) {
	if s.Interval <= 0 {
		return
	}
	sleeper := s.Sleeper
	if sleeper == nil {
		sleeper = timex.Real{}
	}
	uptime := s.Uptime
	if uptime == nil {
		uptime = timex.Uptime
	}

	var ms runtime.MemStats
	for {
		if err := sleeper.Sleep(ctx, s.Interval); err != nil {
			s.Log.Debug("heartbeat stopping")
			return
		}
		runtime.ReadMemStats(&ms)
		s.Log.Info("alive",
			logx.Uint("uptime_cs", uint64(timex.Centis(uptime()))),
			logx.Uint("alloc", ms.Alloc),
			logx.Uint("heap_inuse", ms.HeapInuse),
			logx.Uint("mallocs", ms.Mallocs),
			logx.Uint("frees", ms.Frees))
	}
}
