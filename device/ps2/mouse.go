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
	mouseVector = 44
	mouseLine   = 12

	// Commands sent to the mouse device via the 0xd4 passthrough.
	mouseCmdEnableStream = 0xf4
	mouseCmdDisable      = 0xf5
	mouseCmdSetDefaults  = 0xf6
	mouseCmdReset        = 0xff

	// Packet header bits.
	packetButtonMask = 0x07
	packetSyncBit    = 0x08
	packetXSignBit   = 0x10
	packetYSignBit   = 0x20

	// The integrated position is clamped to the 80x25 text grid the
	// cursor feeds.
	maxMouseX = 79
	maxMouseY = 24
)

// Packet describes one decoded mouse movement report: the button state
// from the packet header and the clamped position after the deltas were
// applied.
type Packet struct {
	Buttons uint8
	X       int
	Y       int
	Scroll  uint8
}

// PacketHandlerFn receives decoded mouse packets. It runs in interrupt
// context and must return quickly without blocking.
type PacketHandlerFn func(*Packet)

var (
	errMouseCommand  = &kernel.Error{Module: "ps2", Message: "mouse did not acknowledge command", Kind: kernel.KindDeviceError}
	errMouseSelfTest = &kernel.Error{Module: "ps2", Message: "mouse self-test failed", Kind: kernel.KindDeviceError}
)

// mouseDriver reassembles the 3-byte packet stream from the auxiliary
// PS/2 device and integrates the movement deltas into a clamped screen
// position. All mutable state is touched only from within the mouse
// interrupt handler; Position is a read-only foreground accessor.
type mouseDriver struct {
	x int
	y int

	phase  int
	packet [3]uint8

	handler PacketHandlerFn
}

var mouse = &mouseDriver{}

// DriverName returns the name of this driver.
func (*mouseDriver) DriverName() string {
	return "ps2_mouse"
}

// DriverVersion returns the version of this driver.
func (*mouseDriver) DriverVersion() (uint16, uint16, uint16) {
	return 0, 0, 1
}

// DriverInit enables the auxiliary device on the controller, routes its
// data to IRQ 12 and walks the mouse through reset into streaming mode.
// Any handshake failure leaves the mouse unusable but does not stop the
// kernel.
func (drv *mouseDriver) DriverInit(w io.Writer) *kernel.Error {
	if err := writeCommand(ctrlCmdEnableAux); err != nil {
		return err
	}

	// Rewrite the controller configuration byte so auxiliary output
	// raises IRQ 12 and the auxiliary clock runs.
	if err := writeCommand(ctrlCmdReadConfig); err != nil {
		return err
	}
	config, err := readData()
	if err != nil {
		return err
	}
	config |= configAuxIRQ
	config &^= configAuxClockOff
	if err := writeCommand(ctrlCmdWriteConfig); err != nil {
		return err
	}
	if err := writeData(config); err != nil {
		return err
	}

	if err := drv.command(mouseCmdDisable); err != nil {
		return err
	}
	if err := drv.command(mouseCmdReset); err != nil {
		return err
	}
	res, err := readData()
	if err != nil {
		return err
	}
	if res != resSelfTestOK {
		return errMouseSelfTest
	}
	kfmt.Fprintf(w, "self-test ok\n")

	if err := drv.command(mouseCmdSetDefaults); err != nil {
		return err
	}
	if err := drv.command(mouseCmdEnableStream); err != nil {
		return err
	}

	if err := registerIRQFn(mouseVector, drv.handleIRQ); err != nil {
		return err
	}
	return unmaskLineFn(mouseLine)
}

// command sends a byte to the mouse via the controller passthrough and
// consumes the expected ACK.
func (drv *mouseDriver) command(cmd uint8) *kernel.Error {
	if err := writeCommand(ctrlCmdWriteAux); err != nil {
		return err
	}
	if err := writeData(cmd); err != nil {
		return err
	}
	res, err := readData()
	if err != nil {
		return err
	}
	if res != resAck {
		return errMouseCommand
	}
	return nil
}

func (drv *mouseDriver) handleIRQ(_ *irq.Context) {
	// A byte without the aux status bit is a stray keyboard byte; drop
	// it without disturbing the packet phase.
	if cpu.In8(statusPort)&statusAuxData != 0 {
		drv.consume(cpu.In8(dataPort))
	}
	sendEOIFn(mouseLine)
}

func (drv *mouseDriver) consume(data uint8) {
	switch drv.phase {
	case 0:
		// The sync bit is always set in a packet header; a byte
		// without it means we are mid-packet after a glitch, so
		// discard bytes until the stream realigns.
		if data&packetSyncBit == 0 {
			return
		}
		drv.packet[0] = data
		drv.phase = 1
	case 1:
		drv.packet[1] = data
		drv.phase = 2
	case 2:
		drv.packet[2] = data
		drv.phase = 0
		drv.integrate()
	}
}

// integrate applies the completed packet to the position and notifies
// the subscriber.
func (drv *mouseDriver) integrate() {
	header := drv.packet[0]

	dx := int(drv.packet[1])
	if header&packetXSignBit != 0 {
		dx -= 256
	}
	dy := int(drv.packet[2])
	if header&packetYSignBit != 0 {
		dy -= 256
	}

	// The device reports Y growing away from the user; screen rows grow
	// toward the user, so the Y delta is subtracted.
	drv.x += dx
	drv.y -= dy

	if drv.x < 0 {
		drv.x = 0
	} else if drv.x > maxMouseX {
		drv.x = maxMouseX
	}
	if drv.y < 0 {
		drv.y = 0
	} else if drv.y > maxMouseY {
		drv.y = maxMouseY
	}

	if drv.handler != nil {
		drv.handler(&Packet{
			Buttons: header & packetButtonMask,
			X:       drv.x,
			Y:       drv.y,
			Scroll:  (header >> 3) & 0x0f,
		})
	}
}

// RegisterMouseHandler subscribes fn to decoded mouse packets. There is
// a single subscriber slot; passing nil unregisters the current handler.
func RegisterMouseHandler(fn PacketHandlerFn) {
	mouse.handler = fn
}

// MousePosition returns the current integrated cursor position.
func MousePosition() (x, y int) {
	return mouse.x, mouse.y
}

func probeForMouse() device.Driver {
	return mouse
}

func init() {
	// The mouse handshake reprograms the shared controller; let the
	// keyboard finish its own handshake first.
	device.RegisterDriver(&device.DriverInfo{
		Order: device.DetectOrderLast,
		Probe: probeForMouse,
	})
}
