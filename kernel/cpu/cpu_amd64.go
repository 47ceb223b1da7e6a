package cpu

// rflagsIF is the interrupt-enable bit in the RFLAGS register.
const rflagsIF = 1 << 9

// The following variables route privileged operations through replaceable
// implementations. Kernel builds use the raw instruction versions declared
// below; package tests and the host-side input simulator install their own
// implementations backed by an emulated machine.
var (
	// In8 reads a uint8 value from the requested I/O port.
	In8 = PortReadByte

	// Out8 writes a uint8 value to the requested I/O port.
	Out8 = PortWriteByte

	// IntsOn enables interrupt handling.
	IntsOn = EnableInterrupts

	// IntsOff disables interrupt handling.
	IntsOff = DisableInterrupts

	// ReadFlags returns the contents of the RFLAGS register.
	ReadFlags = Flags
)

// EnableInterrupts enables interrupt handling.
func EnableInterrupts()

// DisableInterrupts disables interrupt handling.
func DisableInterrupts()

// Halt stops instruction execution.
func Halt()

// Flags returns the contents of the RFLAGS register.
func Flags() uint64

// LoadIDT loads the 10-byte IDT descriptor at the supplied address into
// the CPU's interrupt descriptor table register.
func LoadIDT(descriptorAddr uintptr)

// PortReadByte reads a uint8 value from the requested port.
func PortReadByte(port uint16) uint8

// PortWriteByte writes a uint8 value to the requested port.
func PortWriteByte(port uint16, val uint8)

// SaveDisableInterrupts disables interrupt handling and returns true if
// interrupts were enabled before the call. The returned value must be
// passed to RestoreInterrupts when leaving the critical section so that
// nested sections restore the interrupt flag to its original state.
func SaveDisableInterrupts() bool {
	enabled := ReadFlags()&rflagsIF != 0
	IntsOff()
	return enabled
}

// RestoreInterrupts re-enables interrupt handling if wasEnabled indicates
// that interrupts were enabled when the matching SaveDisableInterrupts
// call was made.
func RestoreInterrupts(wasEnabled bool) {
	if wasEnabled {
		IntsOn()
	}
}
