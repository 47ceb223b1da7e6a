package ps2

import (
	"burrowos/kernel"
	"burrowos/kernel/cpu"
	"burrowos/kernel/irq"
	"burrowos/kernel/pic"
)

// fakeController emulates the i8042 behind the cpu port hooks. Bytes
// queued in pending are served at the data port and reflected in the
// output-full status bit; the write hooks let a test script device
// responses.
type fakeController struct {
	pending []uint8

	cmdWrites  []uint8
	dataWrites []uint8

	// statusBits is ORed into the status register on top of the
	// output-full bit derived from pending.
	statusBits uint8

	onCmdWrite  func(val uint8)
	onDataWrite func(val uint8)
}

func installController() *fakeController {
	ctl := &fakeController{}

	cpu.In8 = func(port uint16) uint8 {
		switch port {
		case statusPort:
			status := ctl.statusBits
			if len(ctl.pending) > 0 {
				status |= statusOutputFull
			}
			return status
		case dataPort:
			if len(ctl.pending) == 0 {
				return 0
			}
			val := ctl.pending[0]
			ctl.pending = ctl.pending[1:]
			return val
		}
		return 0
	}
	cpu.Out8 = func(port uint16, val uint8) {
		switch port {
		case cmdPort:
			ctl.cmdWrites = append(ctl.cmdWrites, val)
			if ctl.onCmdWrite != nil {
				ctl.onCmdWrite(val)
			}
		case dataPort:
			ctl.dataWrites = append(ctl.dataWrites, val)
			if ctl.onDataWrite != nil {
				ctl.onDataWrite(val)
			}
		}
	}

	return ctl
}

func (ctl *fakeController) respond(vals ...uint8) {
	ctl.pending = append(ctl.pending, vals...)
}

func restoreDeps() {
	cpu.In8 = cpu.PortReadByte
	cpu.Out8 = cpu.PortWriteByte
	registerIRQFn = irq.Register
	unmaskLineFn = pic.Unmask
	sendEOIFn = pic.SendEOI
	kbd = &keyboardDriver{}
	mouse = &mouseDriver{}
}

// interceptIRQ replaces the irq/pic hooks with recorders so driver init
// does not touch the real dispatch registry.
type irqRecorder struct {
	registeredVectors []int
	handlers          map[int]irq.HandlerFn
	unmaskedLines     []uint8
	eoiLines          []uint8
}

func interceptIRQ() *irqRecorder {
	rec := &irqRecorder{handlers: make(map[int]irq.HandlerFn)}
	registerIRQFn = func(vector int, handler irq.HandlerFn) *kernel.Error {
		rec.registeredVectors = append(rec.registeredVectors, vector)
		rec.handlers[vector] = handler
		return nil
	}
	unmaskLineFn = func(line uint8) *kernel.Error {
		rec.unmaskedLines = append(rec.unmaskedLines, line)
		return nil
	}
	sendEOIFn = func(line uint8) {
		rec.eoiLines = append(rec.eoiLines, line)
	}
	return rec
}
