//go:build rp2350

package platform

const boardName = "RP2350"
