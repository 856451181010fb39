// Package wpa is a small client for the wpa_supplicant D-Bus API.
package wpa

import (
	"sync"

	"github.com/go-errors/errors"
	"github.com/godbus/dbus/v5"
)

const (
	// DefaultService is the bus name of a stock wpa_supplicant.
	DefaultService = "fi.w1.wpa_supplicant1"

	rootPath       = dbus.ObjectPath("/fi/w1/wpa_supplicant1")
	rootIface      = "fi.w1.wpa_supplicant1"
	interfaceIface = "fi.w1.wpa_supplicant1.Interface"
	bssIface       = "fi.w1.wpa_supplicant1.BSS"
)

type subscription struct {
	path    dbus.ObjectPath
	iface   string
	member  string
	signals chan *dbus.Signal
}

type Wpa struct {
	service        string
	conn           *dbus.Conn
	obj            dbus.BusObject
	subsMtx        sync.Mutex
	subs           map[uint32]*subscription
	nextSubscriber uint32
}

func New() *Wpa {
	return NewService(DefaultService)
}

// NewService returns a client for a supplicant registered under a
// non-default bus name, like the sub-GHz HaLow build of wpa_supplicant.
func NewService(service string) *Wpa {
	return &Wpa{
		service: service,
		subs:    make(map[uint32]*subscription),
	}
}

func (w *Wpa) Start() error {
	conn, err := dbus.ConnectSystemBus(dbus.WithSignalHandler(&wpaSignalHandler{wpa: w}))
	if err != nil {
		return errors.Errorf("could not connect to system bus: %v", err)
	}

	w.conn = conn
	w.obj = conn.Object(w.service, rootPath)

	return nil
}

func (w *Wpa) Stop() error {
	if w.conn == nil {
		return nil
	}

	err := w.conn.Close()
	if err != nil {
		return errors.Errorf("could not close system bus connection: %v", err)
	}

	w.conn = nil

	return nil
}

// GetInterface returns the supplicant interface for ifname, asking the
// supplicant to manage it if it does not yet.
func (w *Wpa) GetInterface(ifname string) (*Interface, error) {
	if w.conn == nil {
		return nil, errors.New("wpa is not started")
	}

	var path dbus.ObjectPath

	err := w.obj.Call(rootIface+".GetInterface", 0, ifname).Store(&path)
	if err != nil {
		createErr := w.obj.Call(rootIface+".CreateInterface", 0, map[string]interface{}{
			"Ifname": ifname,
		}).Store(&path)
		if createErr != nil {
			return nil, errors.Errorf("could not get or create interface %v: %v", ifname, createErr)
		}
	}

	return &Interface{
		wpa: w,
		obj: w.conn.Object(w.service, path),
	}, nil
}

func (w *Wpa) subscribe(path dbus.ObjectPath, iface string, member string) (uint32, <-chan *dbus.Signal, error) {
	call := w.conn.BusObject().AddMatchSignal(iface, member, dbus.WithMatchObjectPath(path))
	if call.Err != nil {
		return 0, nil, errors.Errorf("could not add signal match: %v", call.Err)
	}

	sub := &subscription{
		path:    path,
		iface:   iface,
		member:  member,
		signals: make(chan *dbus.Signal, 1),
	}

	w.subsMtx.Lock()
	id := w.nextSubscriber
	w.nextSubscriber++
	w.subs[id] = sub
	w.subsMtx.Unlock()

	return id, sub.signals, nil
}

func (w *Wpa) unsubscribe(id uint32) {
	w.subsMtx.Lock()
	sub, ok := w.subs[id]
	if ok {
		delete(w.subs, id)
		close(sub.signals)
	}
	w.subsMtx.Unlock()

	if ok && w.conn != nil {
		_ = w.conn.BusObject().RemoveMatchSignal(sub.iface, sub.member, dbus.WithMatchObjectPath(sub.path))
	}
}

// deliverSignal runs on the D-Bus reader goroutine and must not block.
func (w *Wpa) deliverSignal(iface, member string, signal *dbus.Signal) {
	w.subsMtx.Lock()
	defer w.subsMtx.Unlock()

	for _, sub := range w.subs {
		if sub.iface != iface || sub.member != member || sub.path != signal.Path {
			continue
		}

		select {
		case sub.signals <- signal:
		default:
		}
	}
}
