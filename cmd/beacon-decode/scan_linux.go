package main

import (
	"context"
	"fmt"
	"log/slog"

	"envbeacon-go/services/beacon"

	"tinygo.org/x/bluetooth"
)

// scan reports every telemetry frame heard until ctx is cancelled.
func scan(ctx context.Context, adapterID string, onFrame func(addr string, t beacon.Telemetry)) error {
	a := bluetooth.NewAdapter(adapterID)
	if err := a.Enable(); err != nil {
		return fmt.Errorf("ble enable (%s): %w", adapterID, err)
	}

	go func() {
		<-ctx.Done()
		_ = a.StopScan()
	}()

	uuid := bluetooth.New16BitUUID(beacon.ServiceUUID)
	slog.Info("scanning", "adapter", adapterID)
	err := a.Scan(func(_ *bluetooth.Adapter, r bluetooth.ScanResult) {
		for _, sd := range r.ServiceData() {
			if sd.UUID != uuid {
				continue
			}
			t, err := beacon.DecodeServiceData(r.LocalName(), sd.Data)
			if err != nil {
				slog.Debug("not telemetry", "addr", r.Address.String(), "err", err)
				return
			}
			onFrame(r.Address.String(), t)
			return
		}
	})
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		return fmt.Errorf("ble scan: %w", err)
	}
	return nil
}
