// Package pic drives the two cascaded 8259 programmable interrupt
// controllers: remapping the 16 hardware IRQ lines onto vectors 32-47,
// managing the per-line mask bits and acknowledging serviced interrupts.
package pic

import (
	"burrowos/kernel"
	"burrowos/kernel/cpu"
	"burrowos/kernel/kfmt"
)

// NumLines is the number of hardware IRQ lines multiplexed by the
// master/slave pair.
const NumLines = 16

const (
	masterCmdPort  = 0x20
	masterDataPort = 0x21
	slaveCmdPort   = 0xa0
	slaveDataPort  = 0xa1

	// cmdEOI re-arms a controller for further interrupts on the serviced
	// line.
	cmdEOI = 0x20

	// icw1Init starts the 4-step initialization sequence; icw1NeedICW4
	// announces that an ICW4 byte will follow.
	icw1Init     = 0x10
	icw1NeedICW4 = 0x01

	// ICW2: vector offsets. IRQ 0-7 land on vectors 32-39, IRQ 8-15 on
	// vectors 40-47.
	icw2MasterOffset = 0x20
	icw2SlaveOffset  = 0x28

	// ICW3: the slave's output is wired to master input line 2; the
	// slave is told its cascade identity.
	icw3MasterCascade = 1 << cascadeLine
	icw3SlaveIdentity = cascadeLine

	// icw4Mode8086 selects 8086/88 operation.
	icw4Mode8086 = 0x01

	cascadeLine = 2
)

// The default mask policy: keep the timer, keyboard, cascade and mouse
// lines enabled and mask everything else. Drivers for other devices
// unmask their own line during init.
const (
	timerLine    = 0
	keyboardLine = 1
	mouseLine    = 12

	policyMasterMask = ^uint8(1<<timerLine | 1<<keyboardLine | 1<<cascadeLine)
	policySlaveMask  = ^uint8(1 << (mouseLine - 8))
)

// delayIterations is the number of throwaway status-port reads performed
// between initialization writes; the 8259 is slower than the bus and needs
// time to settle between command bytes.
const delayIterations = 32

var errInvalidLine = &kernel.Error{Module: "pic", Message: "IRQ line number out of range", Kind: kernel.KindInvalidParam}

// Init remaps the controller pair and installs the default mask policy.
// The previously programmed masks are read out first; they are only
// logged, as the initialization sequence resets both controllers anyway.
func Init() {
	savedMaster := cpu.In8(masterDataPort)
	savedSlave := cpu.In8(slaveDataPort)
	kfmt.Printf("[pic] remapping; previous masks %2x/%2x\n", savedMaster, savedSlave)

	cpu.Out8(masterCmdPort, icw1Init|icw1NeedICW4)
	ioDelay()
	cpu.Out8(slaveCmdPort, icw1Init|icw1NeedICW4)
	ioDelay()

	cpu.Out8(masterDataPort, icw2MasterOffset)
	ioDelay()
	cpu.Out8(slaveDataPort, icw2SlaveOffset)
	ioDelay()

	cpu.Out8(masterDataPort, icw3MasterCascade)
	ioDelay()
	cpu.Out8(slaveDataPort, icw3SlaveIdentity)
	ioDelay()

	cpu.Out8(masterDataPort, icw4Mode8086)
	ioDelay()
	cpu.Out8(slaveDataPort, icw4Mode8086)
	ioDelay()

	cpu.Out8(masterDataPort, policyMasterMask)
	cpu.Out8(slaveDataPort, policySlaveMask)
}

// Mask disables interrupt delivery for the given IRQ line.
func Mask(line uint8) *kernel.Error {
	if line >= NumLines {
		return errInvalidLine
	}

	port := dataPortFor(&line)
	cpu.Out8(port, cpu.In8(port)|uint8(1)<<line)
	return nil
}

// Unmask enables interrupt delivery for the given IRQ line.
func Unmask(line uint8) *kernel.Error {
	if line >= NumLines {
		return errInvalidLine
	}

	port := dataPortFor(&line)
	cpu.Out8(port, cpu.In8(port)&^(uint8(1)<<line))
	return nil
}

// SendEOI acknowledges a serviced interrupt on the given line. Lines 8-15
// are serviced by the slave, which must be acknowledged before the master;
// the master always receives an EOI because the cascade line was involved
// either way.
func SendEOI(line uint8) {
	if line >= 8 {
		cpu.Out8(slaveCmdPort, cmdEOI)
	}
	cpu.Out8(masterCmdPort, cmdEOI)
}

// Disable masks every line on both controllers. It is only used when
// handing interrupt routing over to a different controller.
func Disable() {
	cpu.Out8(masterDataPort, 0xff)
	cpu.Out8(slaveDataPort, 0xff)
}

// dataPortFor selects the controller owning the line and rebases the line
// number to that controller's 0-7 range.
func dataPortFor(line *uint8) uint16 {
	if *line < 8 {
		return masterDataPort
	}
	*line -= 8
	return slaveDataPort
}

// ioDelay gives the controller time to process the previous write by
// issuing reads on a port with no read side effects.
func ioDelay() {
	for i := 0; i < delayIterations; i++ {
		cpu.In8(0x80)
	}
}
