//go:build (rp2040 || rp2350) && cyw43439

package platform

import (
	"context"

	"envbeacon-go/services/peripheral"
	"envbeacon-go/x/logx"

	"tinygo.org/x/bluetooth"
)

var adapter = bluetooth.DefaultAdapter

var bleEnabled bool

func enableBLE() error {
	if bleEnabled {
		return nil
	}
	if err := adapter.Enable(); err != nil {
		return err
	}
	bleEnabled = true
	return nil
}

type linkEvent struct {
	peer      string
	connected bool
}

// bleRadio drives the default advertisement of the on-board controller.
type bleRadio struct {
	adv    *bluetooth.Advertisement
	events chan linkEvent
	log    *logx.Logger
}

var (
	_ peripheral.Advertiser     = (*bleRadio)(nil)
	_ peripheral.Characteristic = (*bleCharacteristic)(nil)
)

// NewPeripheralRadio enables the stack and registers the Environmental
// Sensing service with its two characteristics.
func NewPeripheralRadio(log *logx.Logger) (peripheral.Advertiser, peripheral.Characteristic, peripheral.Characteristic, error) {
	if err := enableBLE(); err != nil {
		return nil, nil, nil, err
	}
	r := &bleRadio{
		adv:    adapter.DefaultAdvertisement(),
		events: make(chan linkEvent, 4),
		log:    log,
	}
	adapter.SetConnectHandler(func(device bluetooth.Device, connected bool) {
		select {
		case r.events <- linkEvent{peer: device.Address.String(), connected: connected}:
		default:
			// Consumer is behind; the next Advertise or Disconnected call
			// resynchronises on the following event.
		}
	})

	var temp, humid bluetooth.Characteristic
	flags := bluetooth.CharacteristicReadPermission | bluetooth.CharacteristicNotifyPermission
	err := adapter.AddService(&bluetooth.Service{
		UUID: bluetooth.New16BitUUID(peripheral.ServiceUUID),
		Characteristics: []bluetooth.CharacteristicConfig{
			{Handle: &temp, UUID: bluetooth.New16BitUUID(peripheral.TemperatureUUID), Value: []byte{0, 0}, Flags: flags},
			{Handle: &humid, UUID: bluetooth.New16BitUUID(peripheral.HumidityUUID), Value: []byte{0, 0}, Flags: flags},
		},
	})
	if err != nil {
		return nil, nil, nil, err
	}
	return r, &bleCharacteristic{c: &temp}, &bleCharacteristic{c: &humid}, nil
}

// Advertise is connectable and returns on the first connection. The stack
// puts the flags and the first service UUID in the advertising data and
// the local name in the scan response. It has no appearance option: the
// GAP Appearance characteristic always reads 0x0540 (Generic Sensor), so
// p.Appearance is not sent.
func (r *bleRadio) Advertise(ctx context.Context, p peripheral.AdvertiseParams) (peripheral.Connection, error) {
	uuids := make([]bluetooth.UUID, len(p.Services))
	for i, u := range p.Services {
		uuids[i] = bluetooth.New16BitUUID(u)
	}
	err := r.adv.Configure(bluetooth.AdvertisementOptions{
		AdvertisementType: bluetooth.AdvertisingTypeInd,
		LocalName:         p.Name,
		ServiceUUIDs:      uuids,
		Interval:          bluetooth.NewDuration(p.Interval),
	})
	if err != nil {
		return nil, err
	}
	if err := r.adv.Start(); err != nil {
		return nil, err
	}
	for {
		select {
		case <-ctx.Done():
			_ = r.adv.Stop()
			return nil, ctx.Err()
		case ev := <-r.events:
			if ev.connected {
				return &bleConnection{peer: ev.peer, events: r.events}, nil
			}
		}
	}
}

type bleConnection struct {
	peer   string
	events <-chan linkEvent
}

func (c *bleConnection) Peer() string { return c.peer }

func (c *bleConnection) Disconnected(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-c.events:
			if !ev.connected {
				return nil
			}
		}
	}
}

type bleCharacteristic struct {
	c *bluetooth.Characteristic
}

// Write updates the stored value; the stack notifies subscribed centrals
// on every write, so notify only documents intent here.
func (b *bleCharacteristic) Write(value []byte, notify bool) error {
	_, err := b.c.Write(value)
	return err
}
