// Package kmain contains the kernel bootstrap sequence that runs after
// the assembly entry code hands control to Go.
package kmain

import (
	"burrowos/device/ps2"
	"burrowos/kernel/cpu"
	"burrowos/kernel/hal"
	"burrowos/kernel/irq"
	"burrowos/kernel/kfmt"
	"burrowos/kernel/pic"
)

// keyEcho prints every decoded printable keypress to the kernel log.
type keyEcho struct{}

func (keyEcho) HandleKey(event *ps2.KeyEvent) {
	if event.Pressed && event.Char != 0 {
		kfmt.Printf("%c", event.Char)
	}
}

// Kmain is the kernel entry point. It installs the interrupt descriptor
// table, remaps the interrupt controllers, brings up the device drivers
// and then idles; all further work happens in interrupt handlers.
//
// Kmain must never return.
func Kmain() {
	kfmt.Printf("[kmain] interrupt tables\n")
	irq.Install()
	pic.Init()

	kfmt.Printf("[kmain] hardware detection\n")
	hal.DetectHardware()

	if err := ps2.RegisterKeyHandler(keyEcho{}); err != nil {
		kfmt.Printf("[kmain] key echo disabled: %s\n", err.Message)
	}

	kfmt.Printf("[kmain] enabling interrupts\n")
	cpu.IntsOn()

	for {
		cpu.Halt()
	}
}
