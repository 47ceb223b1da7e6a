// Package ps2 provides drivers for the devices behind the i8042 keyboard
// controller: the PS/2 keyboard and the auxiliary PS/2 mouse. Both drivers
// share the controller access helpers defined here.
package ps2

import (
	"burrowos/kernel"
	"burrowos/kernel/cpu"
	"burrowos/kernel/irq"
	"burrowos/kernel/pic"
)

const (
	dataPort   = 0x60
	statusPort = 0x64
	cmdPort    = 0x64

	// Controller status register bits.
	statusOutputFull = 0x01
	statusInputFull  = 0x02
	statusAuxData    = 0x20

	// Controller commands.
	ctrlCmdReadConfig      = 0x20
	ctrlCmdWriteConfig     = 0x60
	ctrlCmdEnableAux       = 0xa8
	ctrlCmdDisableKeyboard = 0xad
	ctrlCmdEnableKeyboard  = 0xae
	ctrlCmdWriteAux        = 0xd4

	// Controller configuration byte bits.
	configAuxIRQ      = 0x02
	configAuxClockOff = 0x20

	// Device responses shared by the keyboard and the mouse.
	resAck        = 0xfa
	resSelfTestOK = 0xaa

	// waitBudget bounds every controller poll loop. The i8042 answers in
	// a handful of iterations when present; exhausting the budget means
	// the device is absent or wedged and the caller must fail fast
	// instead of hanging the boot.
	waitBudget = 1000
)

var (
	errWriteTimeout = &kernel.Error{Module: "ps2", Message: "timeout waiting for controller input buffer to drain", Kind: kernel.KindTimeout}
	errReadTimeout  = &kernel.Error{Module: "ps2", Message: "timeout waiting for controller output", Kind: kernel.KindTimeout}

	registerIRQFn = irq.Register
	unmaskLineFn  = pic.Unmask
	sendEOIFn     = pic.SendEOI
)

// waitInputClear polls until the controller is ready to accept a byte.
func waitInputClear() *kernel.Error {
	for i := 0; i < waitBudget; i++ {
		if cpu.In8(statusPort)&statusInputFull == 0 {
			return nil
		}
	}
	return errWriteTimeout
}

// waitOutputFull polls until the controller has a byte for us to read.
func waitOutputFull() *kernel.Error {
	for i := 0; i < waitBudget; i++ {
		if cpu.In8(statusPort)&statusOutputFull != 0 {
			return nil
		}
	}
	return errReadTimeout
}

// writeCommand sends a command byte to the controller itself.
func writeCommand(cmd uint8) *kernel.Error {
	if err := waitInputClear(); err != nil {
		return err
	}
	cpu.Out8(cmdPort, cmd)
	return nil
}

// writeData sends a byte to the device currently addressed via the data
// port (the keyboard, unless a passthrough command selected the mouse).
func writeData(val uint8) *kernel.Error {
	if err := waitInputClear(); err != nil {
		return err
	}
	cpu.Out8(dataPort, val)
	return nil
}

// readData performs a bounded wait for a device response byte.
func readData() (uint8, *kernel.Error) {
	if err := waitOutputFull(); err != nil {
		return 0, err
	}
	return cpu.In8(dataPort), nil
}

// flushOutput drains any stale bytes left in the controller output buffer,
// for example a scancode queued before the driver took over.
func flushOutput() {
	for i := 0; i < waitBudget; i++ {
		if cpu.In8(statusPort)&statusOutputFull == 0 {
			return
		}
		cpu.In8(dataPort)
	}
}
