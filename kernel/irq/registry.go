package irq

import (
	"burrowos/kernel"
	"burrowos/kernel/cpu"
	"burrowos/kernel/kfmt"
	"burrowos/kernel/pic"
)

// numVectors is the number of entries in the interrupt descriptor table.
const numVectors = 256

const (
	// irqBaseVector is the vector that hardware IRQ line 0 is remapped
	// to by the PIC.
	irqBaseVector = 32

	// irqLimitVector is one past the highest remapped hardware IRQ
	// vector.
	irqLimitVector = irqBaseVector + pic.NumLines
)

// HandlerFn is invoked with the saved interrupt context whenever the
// vector it was registered for fires. Handlers for hardware IRQ vectors
// must send their own EOI before returning.
type HandlerFn func(*Context)

var (
	errInvalidVector = &kernel.Error{Module: "irq", Message: "vector number out of range", Kind: kernel.KindInvalidParam}

	// handlers maps each vector to its registered handler; at most one
	// handler per vector.
	handlers [numVectors]HandlerFn

	// unhandledSeen is a bitmap of vectors whose missing handler has
	// already been reported; unhandled interrupts are logged only once.
	unhandledSeen [numVectors / 64]uint64

	saveDisableInterruptsFn = cpu.SaveDisableInterrupts
	restoreInterruptsFn     = cpu.RestoreInterrupts
	sendEOIFn               = pic.SendEOI
)

// Register installs handler for the given vector. Handler slot mutation
// happens with interrupts disabled so that an in-flight interrupt for the
// same vector can never observe a torn slot. Registering on an occupied
// vector silently overwrites the previous handler; callers own the
// responsibility of not double-registering a device.
func Register(vector int, handler HandlerFn) *kernel.Error {
	if vector < 0 || vector >= numVectors {
		return errInvalidVector
	}

	wasEnabled := saveDisableInterruptsFn()
	handlers[vector] = handler
	restoreInterruptsFn(wasEnabled)
	return nil
}

// Unregister clears the handler slot for the given vector. It uses the
// same critical-section discipline as Register so it is safe to call while
// the vector may still fire.
func Unregister(vector int) *kernel.Error {
	if vector < 0 || vector >= numVectors {
		return errInvalidVector
	}

	wasEnabled := saveDisableInterruptsFn()
	handlers[vector] = nil
	restoreInterruptsFn(wasEnabled)
	return nil
}

// Dispatch routes a fully-populated interrupt context to the handler
// registered for its vector. It is invoked by the low-level entry stubs
// for every interrupt that fires.
//
// An interrupt with no registered handler is logged once and otherwise
// ignored; a device the kernel does not know about must not halt the
// machine. For an unclaimed hardware IRQ vector the registry sends the EOI
// itself so the PIC line is not starved.
func Dispatch(ctx *Context) {
	vector := ctx.Vector
	if vector >= numVectors {
		return
	}

	if handler := handlers[vector]; handler != nil {
		handler(ctx)
		return
	}

	if unhandledSeen[vector/64]&(1<<(vector%64)) == 0 {
		unhandledSeen[vector/64] |= 1 << (vector % 64)
		kfmt.Printf("[irq] unhandled interrupt: vector %d\n", vector)
	}

	if vector >= irqBaseVector && vector < irqLimitVector {
		sendEOIFn(uint8(vector - irqBaseVector))
	}
}
