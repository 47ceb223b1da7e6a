// Package serial implements a polled-mode driver for the 16550 UART at
// COM1. The device doubles as the kernel log sink: it implements
// io.Writer and the hal package attaches it to kfmt once initialized.
package serial

import (
	"io"

	"burrowos/device"
	"burrowos/kernel"
	"burrowos/kernel/cpu"
	"burrowos/kernel/kfmt"
)

const (
	com1Base = 0x3f8

	dataReg       = com1Base
	intEnableReg  = com1Base + 1
	fifoCtrlReg   = com1Base + 2
	lineCtrlReg   = com1Base + 3
	modemCtrlReg  = com1Base + 4
	lineStatusReg = com1Base + 5

	// lineCtrlDLAB exposes the baud divisor latch through the data and
	// interrupt-enable registers.
	lineCtrlDLAB = 0x80

	// lineCtrl8N1 selects 8 data bits, no parity, one stop bit.
	lineCtrl8N1 = 0x03

	// baudDivisor divides the 115200 Hz UART clock down to 38400 baud.
	baudDivisor = 3

	// fifoEnableClear14 enables both FIFOs, clears them and sets a
	// 14-byte receive threshold.
	fifoEnableClear14 = 0xc7

	// modemReady raises DTR/RTS and the auxiliary output the PC wires
	// to the interrupt line.
	modemReady = 0x0b

	// lineStatusTxEmpty indicates the transmitter can accept a byte.
	lineStatusTxEmpty = 0x20

	// txWaitBudget bounds the transmitter-ready poll. The UART drains a
	// byte in well under this many status reads; exhausting the budget
	// means the port is absent and the write is dropped.
	txWaitBudget = 100000
)

var errTxTimeout = &kernel.Error{Module: "serial", Message: "timeout waiting for transmitter to drain", Kind: kernel.KindTimeout}

// serialDriver drives COM1 in polled mode.
type serialDriver struct{}

var com1 = &serialDriver{}

// DriverName returns the name of this driver.
func (*serialDriver) DriverName() string {
	return "uart_com1"
}

// DriverVersion returns the version of this driver.
func (*serialDriver) DriverVersion() (uint16, uint16, uint16) {
	return 0, 0, 1
}

// DriverInit programs the UART for 38400 baud 8N1 operation with FIFOs
// enabled and interrupts off; the driver transmits by polling the line
// status register.
func (drv *serialDriver) DriverInit(w io.Writer) *kernel.Error {
	cpu.Out8(intEnableReg, 0x00)

	cpu.Out8(lineCtrlReg, lineCtrlDLAB)
	cpu.Out8(dataReg, baudDivisor)
	cpu.Out8(intEnableReg, 0x00)
	cpu.Out8(lineCtrlReg, lineCtrl8N1)

	cpu.Out8(fifoCtrlReg, fifoEnableClear14)
	cpu.Out8(modemCtrlReg, modemReady)

	kfmt.Fprintf(w, "38400 8N1\n")
	return nil
}

// Write emits data on the UART, translating \n to \r\n for terminal
// consumers. It returns the number of bytes consumed from data, which
// excludes the injected carriage returns.
func (drv *serialDriver) Write(data []byte) (int, error) {
	for i, b := range data {
		if b == '\n' {
			if err := drv.writeByte('\r'); err != nil {
				return i, err
			}
		}
		if err := drv.writeByte(b); err != nil {
			return i, err
		}
	}
	return len(data), nil
}

func (drv *serialDriver) writeByte(b byte) *kernel.Error {
	for i := 0; i < txWaitBudget; i++ {
		if cpu.In8(lineStatusReg)&lineStatusTxEmpty != 0 {
			cpu.Out8(dataReg, b)
			return nil
		}
	}
	return errTxTimeout
}

func probeForCOM1() device.Driver {
	return com1
}

func init() {
	// The UART probes first so every later driver can log through it.
	device.RegisterDriver(&device.DriverInfo{
		Order: device.DetectOrderEarly,
		Probe: probeForCOM1,
	})
}
