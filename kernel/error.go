package kernel

// ErrorKind classifies a kernel error. The kind drives the caller's
// recovery policy: InvalidParam errors indicate a programming mistake and
// are never retried while DeviceError/Timeout cause the affected driver to
// be skipped during bring-up without halting the boot sequence.
type ErrorKind uint8

const (
	// KindInvalidParam indicates an out-of-range argument.
	KindInvalidParam ErrorKind = iota

	// KindDeviceError indicates an unexpected handshake response; the
	// device is absent or broken.
	KindDeviceError

	// KindTimeout indicates that a bounded poll exhausted its iteration
	// budget.
	KindTimeout

	// KindBusy indicates that a fixed-capacity resource is full.
	KindBusy
)

// Error describes a kernel error. All kernel errors must be defined as
// global variables that are pointers to the Error structure. This
// requirement stems from the fact that the Go allocator is not available
// to us so we cannot use errors.New.
type Error struct {
	// The module where the error occurred.
	Module string

	// The error message.
	Message string

	// The error classification.
	Kind ErrorKind
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}
