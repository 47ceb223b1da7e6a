package pic

import (
	"testing"

	"burrowos/kernel"
	"burrowos/kernel/cpu"
)

type portWrite struct {
	port uint16
	val  uint8
}

// fakeBus records every port write and serves reads from the last value
// written to the port. Reads of the delay port are not recorded.
type fakeBus struct {
	latches map[uint16]uint8
	writes  []portWrite
}

func installFakeBus() *fakeBus {
	bus := &fakeBus{latches: make(map[uint16]uint8)}
	cpu.In8 = func(port uint16) uint8 { return bus.latches[port] }
	cpu.Out8 = func(port uint16, val uint8) {
		bus.latches[port] = val
		bus.writes = append(bus.writes, portWrite{port, val})
	}
	return bus
}

func restoreBus() {
	cpu.In8 = cpu.PortReadByte
	cpu.Out8 = cpu.PortWriteByte
}

func TestInitCommandSequenceAndMaskPolicy(t *testing.T) {
	defer restoreBus()
	bus := installFakeBus()

	// Pretend the firmware left some lines masked.
	bus.latches[masterDataPort] = 0xb8
	bus.latches[slaveDataPort] = 0x8f

	Init()

	expWrites := []portWrite{
		{masterCmdPort, 0x11}, {slaveCmdPort, 0x11},
		{masterDataPort, 0x20}, {slaveDataPort, 0x28},
		{masterDataPort, 0x04}, {slaveDataPort, 0x02},
		{masterDataPort, 0x01}, {slaveDataPort, 0x01},
		{masterDataPort, 0xf8}, {slaveDataPort, 0xef},
	}

	if len(bus.writes) != len(expWrites) {
		t.Fatalf("expected %d port writes; got %d", len(expWrites), len(bus.writes))
	}
	for i, exp := range expWrites {
		if bus.writes[i] != exp {
			t.Fatalf("write %d: expected port 0x%02x <- 0x%02x; got port 0x%02x <- 0x%02x",
				i, exp.port, exp.val, bus.writes[i].port, bus.writes[i].val)
		}
	}

	// After init, the mask registers must reflect exactly the policy:
	// timer, keyboard, cascade and mouse unmasked, everything else
	// masked.
	if got := bus.latches[masterDataPort]; got != 0xf8 {
		t.Fatalf("expected master mask 0xf8; got 0x%02x", got)
	}
	if got := bus.latches[slaveDataPort]; got != 0xef {
		t.Fatalf("expected slave mask 0xef; got 0x%02x", got)
	}
}

func TestSendEOIOrdering(t *testing.T) {
	defer restoreBus()

	bus := installFakeBus()
	SendEOI(1)
	exp := []portWrite{{masterCmdPort, cmdEOI}}
	if len(bus.writes) != 1 || bus.writes[0] != exp[0] {
		t.Fatalf("expected a single master EOI for line 1; got %v", bus.writes)
	}

	bus = installFakeBus()
	SendEOI(12)
	if len(bus.writes) != 2 {
		t.Fatalf("expected 2 EOI writes for line 12; got %d", len(bus.writes))
	}
	if bus.writes[0] != (portWrite{slaveCmdPort, cmdEOI}) {
		t.Fatalf("expected the slave EOI to be sent first; got %v", bus.writes)
	}
	if bus.writes[1] != (portWrite{masterCmdPort, cmdEOI}) {
		t.Fatalf("expected the master EOI to follow the slave EOI; got %v", bus.writes)
	}
}

func TestMaskUnmask(t *testing.T) {
	defer restoreBus()
	bus := installFakeBus()

	specs := []struct {
		line    uint8
		port    uint16
		initial uint8
		masked  uint8
	}{
		{0, masterDataPort, 0x00, 0x01},
		{1, masterDataPort, 0xf8, 0xfa},
		{7, masterDataPort, 0x00, 0x80},
		{8, slaveDataPort, 0x00, 0x01},
		{12, slaveDataPort, 0xef, 0xff},
		{15, slaveDataPort, 0x00, 0x80},
	}

	for specIndex, spec := range specs {
		bus.latches[spec.port] = spec.initial

		if err := Mask(spec.line); err != nil {
			t.Fatalf("[spec %d] Mask returned error: %v", specIndex, err)
		}
		if got := bus.latches[spec.port]; got != spec.masked {
			t.Errorf("[spec %d] expected mask register 0x%02x after Mask; got 0x%02x", specIndex, spec.masked, got)
		}

		if err := Unmask(spec.line); err != nil {
			t.Fatalf("[spec %d] Unmask returned error: %v", specIndex, err)
		}
		if got := bus.latches[spec.port]; got != spec.initial&^(spec.masked&^spec.initial) {
			t.Errorf("[spec %d] expected Unmask to clear only the line bit; got 0x%02x", specIndex, got)
		}
	}
}

func TestLineRangeChecks(t *testing.T) {
	defer restoreBus()
	installFakeBus()

	if err := Mask(NumLines); err == nil || err.Kind != kernel.KindInvalidParam {
		t.Fatalf("expected InvalidParam for Mask(%d); got %v", NumLines, err)
	}
	if err := Unmask(200); err == nil || err.Kind != kernel.KindInvalidParam {
		t.Fatal("expected InvalidParam for Unmask(200)")
	}
}

func TestDisableMasksEverything(t *testing.T) {
	defer restoreBus()
	bus := installFakeBus()

	Disable()

	if bus.latches[masterDataPort] != 0xff || bus.latches[slaveDataPort] != 0xff {
		t.Fatalf("expected both mask registers to read 0xff; got 0x%02x/0x%02x",
			bus.latches[masterDataPort], bus.latches[slaveDataPort])
	}
}
