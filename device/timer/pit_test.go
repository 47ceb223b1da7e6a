package timer

import (
	"bytes"
	"testing"

	"burrowos/kernel"
	"burrowos/kernel/cpu"
	"burrowos/kernel/irq"
	"burrowos/kernel/pic"
)

type portWrite struct {
	port uint16
	val  uint8
}

func restoreDeps() {
	cpu.In8 = cpu.PortReadByte
	cpu.Out8 = cpu.PortWriteByte
	registerIRQFn = irq.Register
	unmaskLineFn = pic.Unmask
	sendEOIFn = pic.SendEOI
	pit = &pitDriver{}
}

func TestDriverInitProgramsChannel0(t *testing.T) {
	defer restoreDeps()

	var writes []portWrite
	cpu.Out8 = func(port uint16, val uint8) {
		writes = append(writes, portWrite{port, val})
	}

	var (
		registeredVector = -1
		unmaskedLine     = uint8(0xff)
	)
	registerIRQFn = func(vector int, handler irq.HandlerFn) *kernel.Error {
		registeredVector = vector
		return nil
	}
	unmaskLineFn = func(line uint8) *kernel.Error {
		unmaskedLine = line
		return nil
	}

	var buf bytes.Buffer
	if err := pit.DriverInit(&buf); err != nil {
		t.Fatalf("DriverInit returned error: %v", err)
	}

	// 1193180 / 100 = 11931 = 0x2e9b, written low byte first.
	exp := []portWrite{
		{commandPort, cmdSquareWave},
		{channel0Port, 0x9b},
		{channel0Port, 0x2e},
	}
	if len(writes) != len(exp) {
		t.Fatalf("expected %d port writes; got %d", len(exp), len(writes))
	}
	for i, expWrite := range exp {
		if writes[i] != expWrite {
			t.Fatalf("write %d: expected port 0x%02x <- 0x%02x; got port 0x%02x <- 0x%02x",
				i, expWrite.port, expWrite.val, writes[i].port, writes[i].val)
		}
	}

	if registeredVector != timerVector {
		t.Fatalf("expected a handler registration for vector %d; got %d", timerVector, registeredVector)
	}
	if unmaskedLine != timerLine {
		t.Fatalf("expected line %d to be unmasked; got %d", timerLine, unmaskedLine)
	}
}

func TestTickCounting(t *testing.T) {
	defer restoreDeps()

	var eoiLines []uint8
	sendEOIFn = func(line uint8) { eoiLines = append(eoiLines, line) }

	for i := 0; i < 3; i++ {
		pit.handleIRQ(nil)
	}

	if got := Ticks(); got != 3 {
		t.Fatalf("expected 3 ticks; got %d", got)
	}
	if len(eoiLines) != 3 || eoiLines[0] != timerLine {
		t.Fatalf("expected an EOI on line %d per tick; got %v", timerLine, eoiLines)
	}
}
