package ps2

import (
	"io"

	"burrowos/device"
	"burrowos/kernel"
	"burrowos/kernel/cpu"
	"burrowos/kernel/irq"
	"burrowos/kernel/kfmt"
)

const (
	keyboardVector = 33
	keyboardLine   = 1

	// Commands sent to the keyboard device via the data port.
	kbdCmdSetLEDs     = 0xed
	kbdCmdEnableScan  = 0xf4
	kbdCmdSetDefaults = 0xf6
	kbdCmdReset       = 0xff

	// breakBit is set on the scancode of a key release.
	breakBit = 0x80

	scanLeftShift  = 0x2a
	scanRightShift = 0x36
	scanCtrl       = 0x1d
	scanAlt        = 0x38
	scanCapsLock   = 0x3a
	scanNumLock    = 0x45
	scanScrollLock = 0x46

	ledScrollLock = 0x01
	ledNumLock    = 0x02
	ledCapsLock   = 0x04

	// maxKeyHandlers bounds the subscriber list; event fan-out runs in
	// interrupt context and must not allocate.
	maxKeyHandlers = 8
)

// KeyEvent describes a single key press or release together with the
// modifier and lock state at the time the key changed.
type KeyEvent struct {
	// Scancode is the raw byte read from the controller, break bit
	// included.
	Scancode uint8

	// Char is the ASCII mapping for the key, or 0 if the key has none.
	Char byte

	Pressed bool

	Shift bool
	Ctrl  bool
	Alt   bool

	CapsLock   bool
	NumLock    bool
	ScrollLock bool
}

// KeyHandler receives keyboard events. HandleKey runs in interrupt
// context and must return quickly without blocking.
type KeyHandler interface {
	HandleKey(*KeyEvent)
}

var (
	errKbdHandlerNil   = &kernel.Error{Module: "ps2", Message: "keyboard handler must not be nil", Kind: kernel.KindInvalidParam}
	errKbdHandlersFull = &kernel.Error{Module: "ps2", Message: "keyboard handler list is full", Kind: kernel.KindBusy}
	errKbdSelfTest     = &kernel.Error{Module: "ps2", Message: "keyboard self-test failed", Kind: kernel.KindDeviceError}
	errKbdCommand      = &kernel.Error{Module: "ps2", Message: "keyboard did not acknowledge command", Kind: kernel.KindDeviceError}
)

// keyboardDriver decodes the scancode stream from the PS/2 keyboard into
// key events and fans them out to the registered handlers. All mutable
// state is touched only from within the keyboard interrupt handler.
type keyboardDriver struct {
	shift bool
	ctrl  bool
	alt   bool

	capsLock   bool
	numLock    bool
	scrollLock bool

	handlers    [maxKeyHandlers]KeyHandler
	numHandlers int
}

var kbd = &keyboardDriver{}

// DriverName returns the name of this driver.
func (*keyboardDriver) DriverName() string {
	return "ps2_keyboard"
}

// DriverVersion returns the version of this driver.
func (*keyboardDriver) DriverVersion() (uint16, uint16, uint16) {
	return 0, 0, 1
}

// DriverInit runs the controller handshake and hooks the keyboard
// interrupt. Scanning is suspended while the reset sequence runs so a
// keypress cannot interleave with a command response. Any handshake
// failure leaves the keyboard unusable but does not stop the kernel.
func (drv *keyboardDriver) DriverInit(w io.Writer) *kernel.Error {
	if err := writeCommand(ctrlCmdDisableKeyboard); err != nil {
		return err
	}
	flushOutput()

	if err := drv.command(kbdCmdReset); err != nil {
		return err
	}
	res, err := readData()
	if err != nil {
		return err
	}
	if res != resSelfTestOK {
		return errKbdSelfTest
	}
	kfmt.Fprintf(w, "self-test ok\n")

	if err := drv.command(kbdCmdSetDefaults); err != nil {
		return err
	}
	if err := drv.command(kbdCmdEnableScan); err != nil {
		return err
	}
	if err := writeCommand(ctrlCmdEnableKeyboard); err != nil {
		return err
	}

	if err := registerIRQFn(keyboardVector, drv.handleIRQ); err != nil {
		return err
	}
	return unmaskLineFn(keyboardLine)
}

// command sends a byte to the keyboard and consumes the expected ACK.
func (drv *keyboardDriver) command(cmd uint8) *kernel.Error {
	if err := writeData(cmd); err != nil {
		return err
	}
	res, err := readData()
	if err != nil {
		return err
	}
	if res != resAck {
		return errKbdCommand
	}
	return nil
}

// registerHandler appends a subscriber to the handler list.
func (drv *keyboardDriver) registerHandler(h KeyHandler) *kernel.Error {
	if h == nil {
		return errKbdHandlerNil
	}
	if drv.numHandlers == maxKeyHandlers {
		return errKbdHandlersFull
	}

	drv.handlers[drv.numHandlers] = h
	drv.numHandlers++
	return nil
}

// unregisterHandler removes a subscriber by identity, shifting the
// remaining entries down to keep the list dense. Unknown handlers are
// ignored.
func (drv *keyboardDriver) unregisterHandler(h KeyHandler) {
	for i := 0; i < drv.numHandlers; i++ {
		if drv.handlers[i] != h {
			continue
		}

		copy(drv.handlers[i:drv.numHandlers-1], drv.handlers[i+1:drv.numHandlers])
		drv.numHandlers--
		drv.handlers[drv.numHandlers] = nil
		return
	}
}

func (drv *keyboardDriver) handleIRQ(_ *irq.Context) {
	drv.processScancode(cpu.In8(dataPort))
	sendEOIFn(keyboardLine)
}

func (drv *keyboardDriver) processScancode(scancode uint8) {
	event := KeyEvent{
		Scancode: scancode,
		Pressed:  scancode&breakBit == 0,
	}
	code := scancode &^ breakBit

	if event.Pressed {
		switch code {
		case scanLeftShift, scanRightShift:
			drv.shift = true
		case scanCtrl:
			drv.ctrl = true
		case scanAlt:
			drv.alt = true
		case scanCapsLock:
			drv.capsLock = !drv.capsLock
			drv.updateLEDs()
		case scanNumLock:
			drv.numLock = !drv.numLock
			drv.updateLEDs()
		case scanScrollLock:
			drv.scrollLock = !drv.scrollLock
			drv.updateLEDs()
		}
	} else {
		switch code {
		case scanLeftShift, scanRightShift:
			drv.shift = false
		case scanCtrl:
			drv.ctrl = false
		case scanAlt:
			drv.alt = false
		}
	}

	event.Shift = drv.shift
	event.Ctrl = drv.ctrl
	event.Alt = drv.alt
	event.CapsLock = drv.capsLock
	event.NumLock = drv.numLock
	event.ScrollLock = drv.scrollLock

	event.Char = keymap[code]
	if event.Shift && event.Char >= 'a' && event.Char <= 'z' {
		event.Char -= 'a' - 'A'
	}

	for i := 0; i < drv.numHandlers; i++ {
		drv.handlers[i].HandleKey(&event)
	}
}

// updateLEDs pushes the current lock state to the keyboard LEDs. The
// update is best effort: the waits are bounded and a failed handshake
// leaves the LEDs stale until the next toggle.
func (drv *keyboardDriver) updateLEDs() {
	var leds uint8
	if drv.scrollLock {
		leds |= ledScrollLock
	}
	if drv.numLock {
		leds |= ledNumLock
	}
	if drv.capsLock {
		leds |= ledCapsLock
	}

	if err := writeData(kbdCmdSetLEDs); err != nil {
		return
	}
	if res, err := readData(); err != nil || res != resAck {
		return
	}
	if err := writeData(leds); err != nil {
		return
	}
	readData()
}

// RegisterKeyHandler subscribes h to keyboard events. Events are
// delivered to subscribers in registration order. Registration fails
// with a Busy error once the bounded handler list is full.
func RegisterKeyHandler(h KeyHandler) *kernel.Error {
	return kbd.registerHandler(h)
}

// UnregisterKeyHandler removes a previously registered handler. Calling
// it with a handler that was never registered is a no-op.
func UnregisterKeyHandler(h KeyHandler) {
	kbd.unregisterHandler(h)
}

func probeForKeyboard() device.Driver {
	return kbd
}

func init() {
	device.RegisterDriver(&device.DriverInfo{
		Order: device.DetectOrderNormal,
		Probe: probeForKeyboard,
	})
}
