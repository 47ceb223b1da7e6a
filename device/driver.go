package device

import (
	"io"

	"burrowos/kernel"
)

// Driver is an interface implemented by all drivers.
type Driver interface {
	// DriverName returns the name of the driver.
	DriverName() string

	// DriverVersion returns the driver version.
	DriverVersion() (major uint16, minor uint16, patch uint16)

	// DriverInit initializes the device driver. If the driver init code
	// needs to log some output, it can use the supplied io.Writer in
	// conjunction with a call to kfmt.Fprintf.
	DriverInit(io.Writer) *kernel.Error
}

// ProbeFn is a function that scans for the presence of a particular
// piece of hardware and returns a driver for it.
type ProbeFn func() Driver

// DetectOrder controls when a driver's probe function runs relative to
// the other registered drivers. Lower values probe first.
type DetectOrder int8

const (
	// DetectOrderEarly is reserved for output devices; probing them
	// first lets later drivers log through them during their own init.
	DetectOrderEarly DetectOrder = -128

	// DetectOrderNormal is the default order for device drivers.
	DetectOrderNormal DetectOrder = 0

	// DetectOrderLast is reserved for drivers that depend on hardware
	// already set up by another driver.
	DetectOrderLast DetectOrder = 127
)

// DriverInfo associates a driver probe function with its detection order.
type DriverInfo struct {
	Order DetectOrder
	Probe ProbeFn
}

// DriverInfoList is a list of registered drivers that can be sorted by
// detection order.
type DriverInfoList []*DriverInfo

// Len returns the number of entries in the list.
func (l DriverInfoList) Len() int { return len(l) }

// Swap exchanges 2 list entries.
func (l DriverInfoList) Swap(i, j int) { l[i], l[j] = l[j], l[i] }

// Less reports whether entry i probes before entry j.
func (l DriverInfoList) Less(i, j int) bool { return l[i].Order < l[j].Order }

var registeredDrivers DriverInfoList

// RegisterDriver adds a driver to the list of drivers probed by the hal
// package. Drivers call it from an init() block in their own package.
func RegisterDriver(info *DriverInfo) {
	registeredDrivers = append(registeredDrivers, info)
}

// DriverList returns the list of registered drivers.
func DriverList() DriverInfoList {
	return registeredDrivers
}
