//go:build !linux

package main

import (
	"context"
	"errors"

	"envbeacon-go/services/beacon"
)

func scan(context.Context, string, func(string, beacon.Telemetry)) error {
	return errors.New("scan: only supported on Linux")
}
