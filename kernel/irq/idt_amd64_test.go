package irq

import (
	"testing"
	"unsafe"
)

func TestSetGateEncoding(t *testing.T) {
	defer func() { idt = [numVectors]gateEntry{} }()

	stubAddr := uintptr(0x1122334455667788)
	setGate(33, stubAddr)

	entry := idt[33]
	if entry.offsetLow != 0x7788 || entry.offsetMid != 0x5566 || entry.offsetHigh != 0x11223344 {
		t.Fatalf("expected stub address to be split as low/mid/high; got %04x/%04x/%08x",
			entry.offsetLow, entry.offsetMid, entry.offsetHigh)
	}
	if entry.selector != kernelCS {
		t.Fatalf("expected kernel code selector 0x%02x; got 0x%02x", kernelCS, entry.selector)
	}
	if entry.flags != gateFlags {
		t.Fatalf("expected present 64-bit interrupt gate flags 0x%02x; got 0x%02x", gateFlags, entry.flags)
	}
	if entry.ist != 0 || entry.reserved != 0 {
		t.Fatal("expected IST and reserved fields to be zero")
	}
}

func TestGateEntrySize(t *testing.T) {
	// The CPU walks the table in fixed 16-byte strides.
	if size := unsafe.Sizeof(gateEntry{}); size != 16 {
		t.Fatalf("expected a 16-byte gate descriptor; got %d bytes", size)
	}
}

func TestContextLayout(t *testing.T) {
	// The entry stubs build a Context directly on the stack: 15 saved
	// general purpose registers, vector, error code and the 5-word
	// hardware return frame, each 8 bytes wide.
	if size := unsafe.Sizeof(Context{}); size != 22*8 {
		t.Fatalf("expected a 176-byte context; got %d bytes", size)
	}

	var ctx Context
	base := uintptr(unsafe.Pointer(&ctx))
	if off := uintptr(unsafe.Pointer(&ctx.Vector)) - base; off != 15*8 {
		t.Fatalf("expected Vector at offset 120; got %d", off)
	}
	if off := uintptr(unsafe.Pointer(&ctx.RIP)) - base; off != 17*8 {
		t.Fatalf("expected RIP at offset 136; got %d", off)
	}
}

func TestInstallPopulatesAllVectors(t *testing.T) {
	defer func() {
		idt = [numVectors]gateEntry{}
		loadIDTFn = loadIDTOrig
	}()

	var loadedAddr uintptr
	loadIDTFn = func(descriptorAddr uintptr) { loadedAddr = descriptorAddr }

	Install()

	if loadedAddr != uintptr(unsafe.Pointer(&idtDescriptor[0])) {
		t.Fatal("expected Install to load the IDT descriptor")
	}

	limit := uint16(idtDescriptor[0]) | uint16(idtDescriptor[1])<<8
	if exp := uint16(numVectors*16 - 1); limit != exp {
		t.Fatalf("expected descriptor limit %d; got %d", exp, limit)
	}

	for vector := 0; vector < numVectors; vector++ {
		entry := idt[vector]
		if entry.flags != gateFlags || entry.selector != kernelCS {
			t.Fatalf("vector %d: gate not populated", vector)
		}
		if entry.offsetLow == 0 && entry.offsetMid == 0 && entry.offsetHigh == 0 {
			t.Fatalf("vector %d: gate points at address 0", vector)
		}
	}

	// Dedicated stubs for 0-47, the shared default stub everywhere else.
	defaultPC := funcPC(vectorEntryDefault)
	if gatePC(48) != defaultPC || gatePC(255) != defaultPC {
		t.Fatal("expected vectors above 47 to share the default stub")
	}
	if gatePC(33) == defaultPC || gatePC(44) == defaultPC {
		t.Fatal("expected the keyboard and mouse vectors to have dedicated stubs")
	}
}

var loadIDTOrig = loadIDTFn

func gatePC(vector int) uintptr {
	entry := idt[vector]
	return uintptr(entry.offsetLow) | uintptr(entry.offsetMid)<<16 | uintptr(entry.offsetHigh)<<32
}
