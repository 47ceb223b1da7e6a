// Package hal discovers hardware and brings up the registered device
// drivers in detection order.
package hal

import (
	"bytes"
	"io"
	"sort"

	"burrowos/device"
	"burrowos/kernel/kfmt"

	// Pull in the driver packages so their init() registration runs.
	_ "burrowos/device/ps2"
	_ "burrowos/device/serial"
	_ "burrowos/device/timer"
)

// managedDevices contains the devices discovered by the HAL.
type managedDevices struct {
	// logSink is the first initialized driver that can act as the kfmt
	// output sink.
	logSink io.Writer

	// activeDrivers tracks all initialized device drivers.
	activeDrivers []device.Driver
}

var (
	devices managedDevices
	strBuf  bytes.Buffer
)

// ActiveDrivers returns the list of successfully initialized drivers.
func ActiveDrivers() []device.Driver {
	return devices.activeDrivers
}

// DetectHardware probes for hardware devices and initializes the
// appropriate drivers.
func DetectHardware() {
	drivers := device.DriverList()
	sort.Sort(drivers)

	probe(drivers)
}

// probe executes the probe function for each driver and invokes
// onDriverInit for each successfully initialized driver. A driver that
// fails to initialize is logged and skipped; hardware bring-up never
// stops the kernel.
func probe(driverInfoList device.DriverInfoList) {
	var w kfmt.PrefixWriter

	for _, info := range driverInfoList {
		drv := info.Probe()
		if drv == nil {
			continue
		}

		strBuf.Reset()
		major, minor, patch := drv.DriverVersion()
		kfmt.Fprintf(&strBuf, "[hal] %s(%d.%d.%d): ", drv.DriverName(), major, minor, patch)
		w.Sink = kfmt.GetOutputSink()
		w.Prefix = strBuf.Bytes()

		if err := drv.DriverInit(&w); err != nil {
			kfmt.Fprintf(&w, "init failed: %s\n", err.Message)
			continue
		}

		kfmt.Fprintf(&w, "initialized\n")
		onDriverInit(drv)
		devices.activeDrivers = append(devices.activeDrivers, drv)
	}
}

// onDriverInit is invoked by probe() whenever a piece of hardware is
// detected and successfully initialized. The first driver that doubles
// as an io.Writer becomes the kfmt output sink, which also replays any
// buffered early-boot output to it.
func onDriverInit(drv device.Driver) {
	if devices.logSink != nil {
		return
	}

	if sink, ok := drv.(io.Writer); ok {
		devices.logSink = sink
		kfmt.SetOutputSink(sink)
	}
}
