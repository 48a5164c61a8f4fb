// Package device holds the value types shared by every capture back-end:
// an immutable (name, identifier) pair and an ordered list of them,
// produced by back-end-specific enumeration.
package device

// Device is an immutable (name, identifier) pair describing one capture
// source. The identifier is back-end specific: a filesystem path for V4L2
// ("/dev/video0"), a stringified index for the DirectShow-style back-end,
// or a URI/pipeline description for the media-pipeline back-end. Device is
// a plain value type; copying it is always safe.
type Device struct {
	name       string
	identifier string
}

// New constructs a Device from its display name and back-end identifier.
func New(name, identifier string) Device {
	return Device{name: name, identifier: identifier}
}

// Name returns the device's human-readable name (e.g. a driver's card name).
func (d Device) Name() string {
	return d.name
}

// Identifier returns the back-end-specific handle used to reopen this device.
func (d Device) Identifier() string {
	return d.identifier
}

// DeviceList is an ordered, enumeration-order sequence of Devices. Its
// lifetime is independent of any session opened against one of its members.
type DeviceList struct {
	devices []Device
}

// NewDeviceList wraps devices (in the given order) as a DeviceList.
func NewDeviceList(devices []Device) DeviceList {
	out := make([]Device, len(devices))
	copy(out, devices)
	return DeviceList{devices: out}
}

// Size returns the number of devices in the list.
func (l DeviceList) Size() int {
	return len(l.devices)
}

// At returns the device at index i. It panics if i is out of range, the
// same as slice indexing, since DeviceList is a thin immutable wrapper
// over one.
func (l DeviceList) At(i int) Device {
	return l.devices[i]
}

// All returns a copy of the underlying device slice, safe for the caller to
// range over without holding a reference into the list's internals.
func (l DeviceList) All() []Device {
	out := make([]Device, len(l.devices))
	copy(out, l.devices)
	return out
}
