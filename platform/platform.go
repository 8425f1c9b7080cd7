// Package platform binds the firmware to a board: the sensor bus, the log
// sink, the BLE stack and the reset line. Files tagged rp2040/rp2350 target
// the Pico W family through TinyGo; the host build swaps in a simulated
// SHTC3 and a radio that only logs, so the firmware runs unmodified on a
// workstation.
//
// Restart is a platform dependency: on the MCU it resets the CPU, on the
// host it exits with ExitRestart and leaves relaunching to a supervisor.
package platform

// ExitRestart is the host process exit status that asks for a relaunch.
const ExitRestart = 75
