package main

import (
	"io"

	"burrowos/kernel/cpu"
	"burrowos/kernel/irq"
)

const (
	timerVector    = 32
	keyboardVector = 33
	mouseVector    = 44
)

// queuedByte is one byte waiting in the emulated controller output
// buffer, tagged with the device it came from.
type queuedByte struct {
	val uint8
	aux bool
}

// machine emulates just enough of a PC behind the cpu port hooks to run
// the real driver stack on a host: an i8042 with a keyboard and an
// auxiliary mouse, the two 8259 mask registers and a UART whose output
// lands on serialOut.
type machine struct {
	serialOut io.Writer

	queue []queuedByte

	config     uint8
	auxEnabled bool
	leds       uint8

	nextDataIsConfig bool
	nextDataToMouse  bool
	kbdExpectLEDs    bool

	masterMask uint8
	slaveMask  uint8

	savedIn      func(uint16) uint8
	savedOut     func(uint16, uint8)
	savedIntsOn  func()
	savedIntsOff func()
	savedFlags   func() uint64
}

func newMachine(serialOut io.Writer) *machine {
	return &machine{serialOut: serialOut}
}

// install hooks the machine into the cpu package. The interrupt flag
// operations become no-ops; interrupt delivery is simulated by calling
// irq.Dispatch directly.
func (m *machine) install() {
	m.savedIn, m.savedOut = cpu.In8, cpu.Out8
	m.savedIntsOn, m.savedIntsOff, m.savedFlags = cpu.IntsOn, cpu.IntsOff, cpu.ReadFlags

	cpu.In8 = m.in8
	cpu.Out8 = m.out8
	cpu.IntsOn = func() {}
	cpu.IntsOff = func() {}
	cpu.ReadFlags = func() uint64 { return 0 }
}

func (m *machine) restore() {
	cpu.In8, cpu.Out8 = m.savedIn, m.savedOut
	cpu.IntsOn, cpu.IntsOff, cpu.ReadFlags = m.savedIntsOn, m.savedIntsOff, m.savedFlags
}

func (m *machine) in8(port uint16) uint8 {
	switch port {
	case 0x60:
		if len(m.queue) == 0 {
			return 0
		}
		head := m.queue[0]
		m.queue = m.queue[1:]
		return head.val
	case 0x64:
		var status uint8
		if len(m.queue) > 0 {
			status |= 0x01
			if m.queue[0].aux {
				status |= 0x20
			}
		}
		return status
	case 0x3fd:
		// UART line status: transmitter always ready.
		return 0x20
	case 0x21:
		return m.masterMask
	case 0xa1:
		return m.slaveMask
	}
	return 0
}

func (m *machine) out8(port uint16, val uint8) {
	switch port {
	case 0x64:
		m.controllerCommand(val)
	case 0x60:
		m.dataWrite(val)
	case 0x3f8:
		m.serialOut.Write([]byte{val})
	case 0x21:
		// ICW bytes and the mask register share the port; the mask is
		// whatever was written last, which is what the sim needs.
		m.masterMask = val
	case 0xa1:
		m.slaveMask = val
	}
}

func (m *machine) controllerCommand(cmd uint8) {
	switch cmd {
	case 0xad, 0xae:
		// Keyboard scanning gate; the sim never generates input during
		// a handshake, so there is nothing to gate.
	case 0x20:
		m.push(m.config, false)
	case 0x60:
		m.nextDataIsConfig = true
	case 0xa8:
		m.auxEnabled = true
	case 0xd4:
		m.nextDataToMouse = true
	}
}

func (m *machine) dataWrite(val uint8) {
	switch {
	case m.nextDataIsConfig:
		m.nextDataIsConfig = false
		m.config = val
	case m.nextDataToMouse:
		m.nextDataToMouse = false
		m.mouseCommand(val)
	case m.kbdExpectLEDs:
		m.kbdExpectLEDs = false
		m.leds = val
		m.push(0xfa, false)
	default:
		m.keyboardCommand(val)
	}
}

func (m *machine) keyboardCommand(cmd uint8) {
	switch cmd {
	case 0xff:
		m.push(0xfa, false)
		m.push(0xaa, false)
	case 0xed:
		m.kbdExpectLEDs = true
		m.push(0xfa, false)
	default:
		m.push(0xfa, false)
	}
}

func (m *machine) mouseCommand(cmd uint8) {
	switch cmd {
	case 0xff:
		m.push(0xfa, true)
		m.push(0xaa, true)
	default:
		m.push(0xfa, true)
	}
}

func (m *machine) push(val uint8, aux bool) {
	m.queue = append(m.queue, queuedByte{val, aux})
}

// typeKey converts an input character into a make/break scancode pair
// (with a surrounding shift pair for uppercase letters) and raises one
// keyboard interrupt per scancode.
func (m *machine) typeKey(ch byte) {
	code, shifted := scancodeFor(ch)
	if code == 0 {
		return
	}

	if shifted {
		m.injectKeyboard(0x2a)
	}
	m.injectKeyboard(code)
	m.injectKeyboard(code | 0x80)
	if shifted {
		m.injectKeyboard(0x2a | 0x80)
	}
}

func (m *machine) injectKeyboard(scancode uint8) {
	m.push(scancode, false)
	irq.Dispatch(&irq.Context{Vector: keyboardVector})
}

// moveMouse emits one movement packet for the given screen-space deltas
// and raises a mouse interrupt per packet byte. The device Y axis runs
// opposite to screen rows, so the reported Y delta is negated.
func (m *machine) moveMouse(dx, dy int) {
	rawY := -dy

	header := uint8(0x08)
	if dx < 0 {
		header |= 0x10
	}
	if rawY < 0 {
		header |= 0x20
	}

	for _, val := range []uint8{header, uint8(dx), uint8(rawY)} {
		m.push(val, true)
		irq.Dispatch(&irq.Context{Vector: mouseVector})
	}
}

// tick raises one timer interrupt.
func (m *machine) tick() {
	irq.Dispatch(&irq.Context{Vector: timerVector})
}
