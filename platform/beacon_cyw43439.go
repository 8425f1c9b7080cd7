//go:build (rp2040 || rp2350) && cyw43439

package platform

import (
	"envbeacon-go/drivers/hciadv"
	"envbeacon-go/services/beacon"
	"envbeacon-go/x/logx"

	"github.com/soypat/cyw43439"
)

// NewBeaconRadio brings up the CYW43439 Bluetooth core and advertises over
// its HCI channel directly. The BLE stack is left disabled in this mode:
// it rewrites the advertising data and would move the frame's fields.
func NewBeaconRadio(log *logx.Logger) (beacon.Advertiser, error) {
	dev := cyw43439.NewPicoWDevice()
	if err := dev.Init(cyw43439.DefaultBluetoothConfig()); err != nil {
		return nil, err
	}
	log.Info("hci ready", logx.Str("transport", "cyw43439"))
	return hciadv.New(&cywHCI{dev: dev}, hciadv.Config{}), nil
}

// cywHCI adapts the chip's HCI stream to hciadv.Transport.
type cywHCI struct {
	dev *cyw43439.Device
}

func (h *cywHCI) Buffered() int { return h.dev.BufferedHCI() }

func (h *cywHCI) Read(p []byte) (int, error) {
	rw, err := h.dev.HCIReadWriter()
	if err != nil {
		return 0, err
	}
	return rw.Read(p)
}

func (h *cywHCI) Write(p []byte) (int, error) {
	rw, err := h.dev.HCIReadWriter()
	if err != nil {
		return 0, err
	}
	return rw.Write(p)
}
