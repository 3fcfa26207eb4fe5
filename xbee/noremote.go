//go:build noremote

package xbee

func (d *Device) remoteSupported() bool { return false }
