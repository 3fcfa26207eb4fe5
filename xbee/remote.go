//go:build !noremote

package xbee

// remoteSupported reports whether this build includes the remote-AT
// frame path (0x17/0x97). Built by default. With -tags noremote,
// Device.SetTarget rejects any non-nil target with KindNotImplemented;
// the request table's target field and the remote header and response
// code are compiled in either way.
func (d *Device) remoteSupported() bool { return true }
