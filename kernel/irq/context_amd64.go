package irq

import (
	"io"

	"burrowos/kernel/kfmt"
)

// Context contains a snapshot of the CPU state at the time an interrupt
// occurred.
//
// The field order and field sizes mirror exactly what the low-level entry
// stubs in entry_amd64.s push onto the stack before calling into the
// dispatch code. This is a hardware contract, not a stylistic choice: the
// stubs restore the saved registers by popping this structure back off the
// stack, so any reordering or resizing of the fields corrupts register
// restoration on interrupt return.
type Context struct {
	// General purpose registers, pushed by the entry stub.
	RAX uint64
	RBX uint64
	RCX uint64
	RDX uint64
	RSI uint64
	RDI uint64
	RBP uint64
	R8  uint64
	R9  uint64
	R10 uint64
	R11 uint64
	R12 uint64
	R13 uint64
	R14 uint64
	R15 uint64

	// Vector is the interrupt vector number, pushed by the per-vector
	// stub.
	Vector uint64

	// ErrCode is the hardware error code for the exceptions that push
	// one; the stubs push 0 for every other vector so the frame layout
	// stays uniform.
	ErrCode uint64

	// The return frame pushed by the CPU and consumed by IRETQ.
	RIP    uint64
	CS     uint64
	RFlags uint64
	RSP    uint64
	SS     uint64
}

// DumpTo outputs the contents of the saved CPU state to w.
func (ctx *Context) DumpTo(w io.Writer) {
	kfmt.Fprintf(w, "vector = %d error code = %x\n", ctx.Vector, ctx.ErrCode)
	kfmt.Fprintf(w, "RAX = %16x RBX = %16x\n", ctx.RAX, ctx.RBX)
	kfmt.Fprintf(w, "RCX = %16x RDX = %16x\n", ctx.RCX, ctx.RDX)
	kfmt.Fprintf(w, "RSI = %16x RDI = %16x\n", ctx.RSI, ctx.RDI)
	kfmt.Fprintf(w, "RBP = %16x\n", ctx.RBP)
	kfmt.Fprintf(w, "R8  = %16x R9  = %16x\n", ctx.R8, ctx.R9)
	kfmt.Fprintf(w, "R10 = %16x R11 = %16x\n", ctx.R10, ctx.R11)
	kfmt.Fprintf(w, "R12 = %16x R13 = %16x\n", ctx.R12, ctx.R13)
	kfmt.Fprintf(w, "R14 = %16x R15 = %16x\n", ctx.R14, ctx.R15)
	kfmt.Fprintf(w, "RIP = %16x CS  = %16x\n", ctx.RIP, ctx.CS)
	kfmt.Fprintf(w, "RSP = %16x SS  = %16x\n", ctx.RSP, ctx.SS)
	kfmt.Fprintf(w, "RFL = %16x\n", ctx.RFlags)
}
