//go:build !rp2040 && !rp2350

package platform

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"envbeacon-go/drivers/shtc3"
	"envbeacon-go/services/beacon"
	"envbeacon-go/services/config"
	"envbeacon-go/services/peripheral"
	"envbeacon-go/x/logx"

	"tinygo.org/x/drivers"
)

// DeviceName is the identity used for config lookup and advertising.
func DeviceName() string { return "host" }

// Boot has nothing to wait for on the host.
func Boot() {}

// Context is cancelled by SIGINT/SIGTERM.
func Context() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func LogOutput() io.Writer { return os.Stdout }

// OpenI2C returns a simulated SHTC3 whose readings drift slowly so the
// output changes between cycles.
func OpenI2C(_ config.I2C) (drivers.I2C, error) {
	return &driftingSim{Sim: shtc3.NewSim(), start: time.Now()}, nil
}

type driftingSim struct {
	*shtc3.Sim
	start time.Time
}

func (d *driftingSim) Tx(addr uint16, w, r []byte) error {
	if len(r) == 6 {
		// +0.01°C and -0.01%RH per second around 21.50°C / 45.00%RH.
		s := int32(time.Since(d.start)/time.Second) % 500
		d.SetCenti(2150+s, 4500-s)
	}
	return d.Sim.Tx(addr, w, r)
}

func Restart() { os.Exit(ExitRestart) }

func Halt() { os.Exit(1) }

// NewPeripheralRadio returns a radio without centrals: advertising lasts
// until ctx is cancelled and characteristic writes are logged.
func NewPeripheralRadio(log *logx.Logger) (peripheral.Advertiser, peripheral.Characteristic, peripheral.Characteristic, error) {
	r := &LogRadio{log: log}
	return r, &LogCharacteristic{name: "temperature", log: log}, &LogCharacteristic{name: "humidity", log: log}, nil
}

// NewBeaconRadio returns a radio that logs every raw payload.
func NewBeaconRadio(log *logx.Logger) (beacon.Advertiser, error) {
	return &LogRadio{log: log}, nil
}
