// Command inputsim runs the kernel's input drivers on a host terminal.
// It swaps the cpu port hooks for an emulated i8042/8259/UART machine,
// brings the drivers up through the normal hal probe path and then
// feeds real keystrokes through the keyboard and mouse state machines:
// typed characters become scancode interrupts, arrow keys become mouse
// movement packets and idle time becomes timer ticks.
package main

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
	"golang.org/x/term"

	"burrowos/device/ps2"
	"burrowos/device/timer"
	"burrowos/kernel/hal"
	"burrowos/kernel/pic"
)

// mouseStep is the simulated movement per arrow keypress.
const mouseStep = 4

type eventPrinter struct{}

func (eventPrinter) HandleKey(event *ps2.KeyEvent) {
	if !event.Pressed {
		return
	}
	if event.Char != 0 {
		fmt.Printf("key: %q scancode=0x%02x shift=%t ctrl=%t alt=%t caps=%t\r\n",
			event.Char, event.Scancode, event.Shift, event.Ctrl, event.Alt, event.CapsLock)
		return
	}
	fmt.Printf("key: scancode=0x%02x (no mapping)\r\n", event.Scancode)
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "inputsim:", err)
		os.Exit(1)
	}
}

func run() error {
	stdin := int(os.Stdin.Fd())
	if !term.IsTerminal(stdin) {
		return fmt.Errorf("stdin is not a terminal")
	}

	oldState, err := term.MakeRaw(stdin)
	if err != nil {
		return fmt.Errorf("raw mode: %w", err)
	}
	defer term.Restore(stdin, oldState)

	m := newMachine(os.Stdout)
	m.install()
	defer m.restore()

	pic.Init()
	hal.DetectHardware()

	if err := ps2.RegisterKeyHandler(eventPrinter{}); err != nil {
		return fmt.Errorf("register key handler: %s", err.Message)
	}
	ps2.RegisterMouseHandler(func(p *ps2.Packet) {
		fmt.Printf("mouse: buttons=%03b pos=(%d,%d)\r\n", p.Buttons, p.X, p.Y)
	})

	fmt.Printf("type to raise keyboard interrupts, arrows move the mouse, ctrl-c exits\r\n")

	buf := make([]byte, 64)
	for {
		fds := []unix.PollFd{{Fd: int32(stdin), Events: unix.POLLIN}}
		ready, err := unix.Poll(fds, 10)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return fmt.Errorf("poll: %w", err)
		}
		if ready == 0 {
			m.tick()
			if ticks := timer.Ticks(); ticks%500 == 0 {
				fmt.Printf("uptime: %d ticks\r\n", ticks)
			}
			continue
		}

		n, err := unix.Read(stdin, buf)
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}

		for i := 0; i < n; i++ {
			ch := buf[i]
			switch {
			case ch == 0x03:
				return nil
			case ch == 0x1b && i+2 < n && buf[i+1] == '[':
				dx, dy := arrowDelta(buf[i+2])
				if dx != 0 || dy != 0 {
					m.moveMouse(dx, dy)
				}
				i += 2
			default:
				m.typeKey(ch)
			}
		}
	}
}

// arrowDelta maps the final byte of a cursor escape sequence to a
// screen-space mouse delta.
func arrowDelta(final byte) (dx, dy int) {
	switch final {
	case 'A':
		return 0, -mouseStep
	case 'B':
		return 0, mouseStep
	case 'C':
		return mouseStep, 0
	case 'D':
		return -mouseStep, 0
	}
	return 0, 0
}
