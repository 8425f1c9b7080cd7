//go:build (rp2040 || rp2350) && !cyw43439

package platform

import (
	"envbeacon-go/errcode"
	"envbeacon-go/services/beacon"
	"envbeacon-go/services/peripheral"
	"envbeacon-go/x/logx"
)

// Boards without the CYW43439 have no radio; build with -tags cyw43439
// for the Pico W and Pico 2 W.
var errNoRadio = &errcode.E{C: errcode.UnknownDevice, Op: "platform", Msg: "no radio on this board"}

func NewPeripheralRadio(*logx.Logger) (peripheral.Advertiser, peripheral.Characteristic, peripheral.Characteristic, error) {
	return nil, nil, nil, errNoRadio
}

func NewBeaconRadio(*logx.Logger) (beacon.Advertiser, error) {
	return nil, errNoRadio
}
