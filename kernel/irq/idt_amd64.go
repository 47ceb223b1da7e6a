package irq

import (
	"unsafe"

	"burrowos/kernel/cpu"
)

const (
	// kernelCS is the code segment selector installed by the boot code.
	kernelCS = 0x08

	// gateFlags marks a gate as present, DPL 0, 64-bit interrupt gate.
	gateFlags = 0x8e
)

// gateEntry describes a single 16-byte IDT gate descriptor. The layout is
// dictated by the CPU and must not be altered.
type gateEntry struct {
	offsetLow  uint16
	selector   uint16
	ist        uint8
	flags      uint8
	offsetMid  uint16
	offsetHigh uint32
	reserved   uint32
}

var (
	// idt is built once by Install and is read-only afterwards; the CPU
	// walks it directly via the address loaded with LIDT.
	idt [numVectors]gateEntry

	// idtDescriptor is the 10-byte limit/base operand for LIDT: a 16-bit
	// table limit followed by the 64-bit table base address.
	idtDescriptor [10]byte

	loadIDTFn = cpu.LoadIDT
)

// Install populates all 256 IDT entries and activates the table. Vectors
// 0-31 point at the CPU exception stubs, 32-47 at the hardware IRQ stubs
// and everything else at a shared default stub, so an unexpected vector
// traps into the logged unhandled-interrupt path instead of undefined
// behavior. The table is built once during early boot; there is no
// failure path because a malformed table is a build defect, not a runtime
// condition.
func Install() {
	defaultStub := funcPC(vectorEntryDefault)
	for vector := 0; vector < numVectors; vector++ {
		stub := defaultStub
		if vector < len(vectorEntries) {
			stub = funcPC(vectorEntries[vector])
		}
		setGate(vector, stub)
	}

	limit := uint16(numVectors*int(unsafe.Sizeof(gateEntry{})) - 1)
	base := uint64(uintptr(unsafe.Pointer(&idt[0])))

	idtDescriptor[0] = byte(limit)
	idtDescriptor[1] = byte(limit >> 8)
	for i := 0; i < 8; i++ {
		idtDescriptor[2+i] = byte(base >> (8 * i))
	}

	loadIDTFn(uintptr(unsafe.Pointer(&idtDescriptor[0])))
}

// setGate points the IDT entry for vector at the entry stub located at
// stubAddr.
func setGate(vector int, stubAddr uintptr) {
	idt[vector] = gateEntry{
		offsetLow:  uint16(stubAddr),
		selector:   kernelCS,
		flags:      gateFlags,
		offsetMid:  uint16(stubAddr >> 16),
		offsetHigh: uint32(stubAddr >> 32),
	}
}

// funcPC returns the entry address of the assembly stub wrapped by fn. A
// Go func value points at a funcval whose first word is the code address.
func funcPC(fn func()) uintptr {
	return **(**uintptr)(unsafe.Pointer(&fn))
}
