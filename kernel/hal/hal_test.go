package hal

import (
	"strings"
	"testing"

	"burrowos/kernel/cpu"
	"burrowos/kernel/kfmt"
)

func TestDetectHardwareBringUp(t *testing.T) {
	defer func() {
		cpu.In8 = cpu.PortReadByte
		cpu.Out8 = cpu.PortWriteByte
		cpu.ReadFlags = cpu.Flags
		cpu.IntsOn = cpu.EnableInterrupts
		cpu.IntsOff = cpu.DisableInterrupts
		devices = managedDevices{}
		kfmt.SetOutputSink(nil)
	}()

	// Status reads report the UART transmitter as ready and the i8042
	// output buffer as empty, so the UART and PIT come up while the
	// keyboard and mouse handshakes time out.
	var serialOut []byte
	cpu.In8 = func(port uint16) uint8 { return 0x20 }
	cpu.Out8 = func(port uint16, val uint8) {
		if port == 0x3f8 {
			serialOut = append(serialOut, val)
		}
	}
	cpu.ReadFlags = func() uint64 { return 0 }
	cpu.IntsOn = func() {}
	cpu.IntsOff = func() {}

	DetectHardware()

	if devices.logSink == nil {
		t.Fatal("expected the UART to be attached as the log sink")
	}
	if got := len(ActiveDrivers()); got != 2 {
		t.Fatalf("expected 2 active drivers; got %d", got)
	}

	// The UART's own init output was buffered early and must have been
	// replayed through the port once it became the sink.
	log := string(serialOut)
	for _, want := range []string{
		"[hal] uart_com1(0.0.1): 38400 8N1",
		"[hal] uart_com1(0.0.1): initialized",
		"[hal] pit(0.0.1): initialized",
		"[hal] ps2_keyboard(0.0.1): init failed",
		"[hal] ps2_mouse(0.0.1): init failed",
	} {
		if !strings.Contains(log, want) {
			t.Fatalf("expected driver log to contain %q; got:\n%s", want, log)
		}
	}
}
