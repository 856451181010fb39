package wpa

import "github.com/godbus/dbus/v5"

// Network is a network block configured in the supplicant.
type Network struct {
	obj dbus.BusObject
}

func (n *Network) String() string {
	return string(n.obj.Path())
}
