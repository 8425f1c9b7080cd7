//go:build rp2040

package platform

const boardName = "RP2040"
