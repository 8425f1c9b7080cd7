//go:build rp2040 || rp2350

package platform

import (
	"context"
	"io"
	"machine"
	"time"

	"envbeacon-go/errcode"
	"envbeacon-go/services/config"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"
	"tinygo.org/x/drivers"
)

// Log UART wiring (GP0/GP1 on the Pico W header).
const (
	logBaud = 115200
	logTX   = machine.Pin(0)
	logRX   = machine.Pin(1)
)

// DeviceName is the chip family, matching the embedded config keys.
func DeviceName() string { return boardName }

// Boot gives a serial console time to attach before the first log line.
func Boot() { time.Sleep(2 * time.Second) }

// Context is never cancelled on the MCU.
func Context() (context.Context, context.CancelFunc) {
	return context.WithCancel(context.Background())
}

func LogOutput() io.Writer {
	_ = uartx.UART0.Configure(uartx.UARTConfig{
		BaudRate: logBaud,
		TX:       logTX,
		RX:       logRX,
	})
	return uartx.UART0
}

// OpenI2C configures the controller named by cfg.Bus.
func OpenI2C(cfg config.I2C) (drivers.I2C, error) {
	var hw *machine.I2C
	switch cfg.Bus {
	case 0:
		hw = machine.I2C0
	case 1:
		hw = machine.I2C1
	default:
		return nil, &errcode.E{C: errcode.InvalidConfig, Op: "platform.OpenI2C", Msg: "no such i2c controller"}
	}
	err := hw.Configure(machine.I2CConfig{
		SDA:       machine.Pin(cfg.SDA),
		SCL:       machine.Pin(cfg.SCL),
		Frequency: cfg.Hz,
	})
	if err != nil {
		return nil, errcode.Wrap(errcode.Error, "platform.OpenI2C", err)
	}
	return hw, nil
}

func Restart() { machine.CPUReset() }

// Halt parks the firmware; there is nothing to return to.
func Halt() {
	for {
		time.Sleep(time.Second)
	}
}
