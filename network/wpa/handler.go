package wpa

import "github.com/godbus/dbus/v5"

// wpaSignalHandler routes bus signals to the subscriptions of a Wpa client.
type wpaSignalHandler struct {
	wpa *Wpa
}

var _ dbus.SignalHandler = (*wpaSignalHandler)(nil)

func (h *wpaSignalHandler) DeliverSignal(iface, member string, signal *dbus.Signal) {
	h.wpa.deliverSignal(iface, member, signal)
}
