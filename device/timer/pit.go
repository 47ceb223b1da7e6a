// Package timer drives channel 0 of the 8253/8254 programmable interval
// timer as the kernel tick source.
package timer

import (
	"io"

	"burrowos/device"
	"burrowos/kernel"
	"burrowos/kernel/cpu"
	"burrowos/kernel/irq"
	"burrowos/kernel/kfmt"
	"burrowos/kernel/pic"
)

const (
	timerVector = 32
	timerLine   = 0

	channel0Port = 0x40
	commandPort  = 0x43

	// cmdSquareWave selects channel 0, lobyte/hibyte access, mode 3
	// (square wave), binary counting.
	cmdSquareWave = 0x36

	// inputFrequency is the fixed PIT input clock in Hz.
	inputFrequency = 1193180

	// tickFrequency is the programmed tick rate: 100 Hz, 10ms per tick.
	tickFrequency = 100
)

// pitDriver counts timer interrupts. ticks is written only from the
// timer interrupt handler.
type pitDriver struct {
	ticks uint64
}

var pit = &pitDriver{}

var (
	registerIRQFn = irq.Register
	unmaskLineFn  = pic.Unmask
	sendEOIFn     = pic.SendEOI
)

// DriverName returns the name of this driver.
func (*pitDriver) DriverName() string {
	return "pit"
}

// DriverVersion returns the version of this driver.
func (*pitDriver) DriverVersion() (uint16, uint16, uint16) {
	return 0, 0, 1
}

// DriverInit programs channel 0 for a periodic square wave at
// tickFrequency and hooks the timer interrupt.
func (drv *pitDriver) DriverInit(w io.Writer) *kernel.Error {
	divisor := uint16(inputFrequency / tickFrequency)

	cpu.Out8(commandPort, cmdSquareWave)
	cpu.Out8(channel0Port, uint8(divisor))
	cpu.Out8(channel0Port, uint8(divisor>>8))

	if err := registerIRQFn(timerVector, drv.handleIRQ); err != nil {
		return err
	}
	if err := unmaskLineFn(timerLine); err != nil {
		return err
	}

	kfmt.Fprintf(w, "%d Hz tick\n", tickFrequency)
	return nil
}

func (drv *pitDriver) handleIRQ(_ *irq.Context) {
	drv.ticks++
	sendEOIFn(timerLine)
}

// Ticks returns the number of timer interrupts since boot. At 100 Hz
// each tick is 10ms.
func Ticks() uint64 {
	return pit.ticks
}

func probeForPIT() device.Driver {
	return pit
}

func init() {
	device.RegisterDriver(&device.DriverInfo{
		Order: device.DetectOrderNormal,
		Probe: probeForPIT,
	})
}
