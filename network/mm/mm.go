// Package mm is a small client for the ModemManager D-Bus API.
package mm

import (
	"sort"

	"github.com/go-errors/errors"
	"github.com/godbus/dbus/v5"
)

const (
	service     = "org.freedesktop.ModemManager1"
	rootPath    = dbus.ObjectPath("/org/freedesktop/ModemManager1")
	modemIface  = "org.freedesktop.ModemManager1.Modem"
	simpleIface = "org.freedesktop.ModemManager1.Modem.Simple"
	simIface    = "org.freedesktop.ModemManager1.Sim"
	noObject    = dbus.ObjectPath("/")
)

// State mirrors MMModemState.
type State int32

const (
	StateFailed        State = -1
	StateUnknown       State = 0
	StateInitializing  State = 1
	StateLocked        State = 2
	StateDisabled      State = 3
	StateDisabling     State = 4
	StateEnabling      State = 5
	StateEnabled       State = 6
	StateSearching     State = 7
	StateRegistered    State = 8
	StateDisconnecting State = 9
	StateConnecting    State = 10
	StateConnected     State = 11
)

func (s State) String() string {
	switch s {
	case StateFailed:
		return "failed"
	case StateUnknown:
		return "unknown"
	case StateInitializing:
		return "initializing"
	case StateLocked:
		return "locked"
	case StateDisabled:
		return "disabled"
	case StateDisabling:
		return "disabling"
	case StateEnabling:
		return "enabling"
	case StateEnabled:
		return "enabled"
	case StateSearching:
		return "searching"
	case StateRegistered:
		return "registered"
	case StateDisconnecting:
		return "disconnecting"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "invalid"
	}
}

// Lock mirrors MMModemLock.
type Lock uint32

const (
	LockUnknown Lock = 0
	LockNone    Lock = 1
	LockSimPin  Lock = 2
	LockSimPin2 Lock = 3
	LockSimPuk  Lock = 4
)

type ModemManager struct {
	conn *dbus.Conn
}

func New() *ModemManager {
	return &ModemManager{}
}

func (m *ModemManager) Start() error {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return errors.Errorf("could not connect to system bus: %v", err)
	}

	m.conn = conn

	return nil
}

func (m *ModemManager) Stop() error {
	if m.conn == nil {
		return nil
	}

	err := m.conn.Close()
	if err != nil {
		return errors.Errorf("could not close system bus connection: %v", err)
	}

	m.conn = nil

	return nil
}

// Modems lists the modems ModemManager knows about, ordered by object path.
func (m *ModemManager) Modems() ([]*Modem, error) {
	if m.conn == nil {
		return nil, errors.New("modem manager is not started")
	}

	var objects map[dbus.ObjectPath]map[string]map[string]dbus.Variant

	err := m.conn.Object(service, rootPath).
		Call("org.freedesktop.DBus.ObjectManager.GetManagedObjects", 0).
		Store(&objects)
	if err != nil {
		return nil, errors.Errorf("could not list modems: %v", err)
	}

	var paths []string
	for path, ifaces := range objects {
		if _, ok := ifaces[modemIface]; ok {
			paths = append(paths, string(path))
		}
	}

	sort.Strings(paths)

	modems := make([]*Modem, 0, len(paths))
	for _, path := range paths {
		modems = append(modems, &Modem{
			conn: m.conn,
			obj:  m.conn.Object(service, dbus.ObjectPath(path)),
		})
	}

	return modems, nil
}

type Modem struct {
	conn *dbus.Conn
	obj  dbus.BusObject
}

func (m *Modem) String() string {
	return string(m.obj.Path())
}

// EquipmentIdentifier is the IMEI of a 3GPP modem.
func (m *Modem) EquipmentIdentifier() (string, error) {
	v, err := m.obj.GetProperty(modemIface + ".EquipmentIdentifier")
	if err != nil {
		return "", errors.Errorf("could not get equipment identifier: %v", err)
	}

	id, _ := v.Value().(string)

	return id, nil
}

func (m *Modem) State() (State, error) {
	v, err := m.obj.GetProperty(modemIface + ".State")
	if err != nil {
		return StateUnknown, errors.Errorf("could not get modem state: %v", err)
	}

	state, ok := v.Value().(int32)
	if !ok {
		return StateUnknown, errors.Errorf("could not convert modem state: %v", v)
	}

	return State(state), nil
}

func (m *Modem) UnlockRequired() (Lock, error) {
	v, err := m.obj.GetProperty(modemIface + ".UnlockRequired")
	if err != nil {
		return LockUnknown, errors.Errorf("could not get unlock state: %v", err)
	}

	lock, _ := v.Value().(uint32)

	return Lock(lock), nil
}

// Sim returns the inserted SIM card, or nil when there is none.
func (m *Modem) Sim() (*Sim, error) {
	v, err := m.obj.GetProperty(modemIface + ".Sim")
	if err != nil {
		return nil, errors.Errorf("could not get sim: %v", err)
	}

	path, ok := v.Value().(dbus.ObjectPath)
	if !ok || path == noObject || path == "" {
		return nil, nil
	}

	return &Sim{
		obj: m.conn.Object(service, path),
	}, nil
}

func (m *Modem) Enable(enable bool) error {
	call := m.obj.Call(modemIface+".Enable", 0, enable)
	if call.Err != nil {
		return errors.Errorf("could not enable modem: %v", call.Err)
	}

	return nil
}

// Connect enables the modem, registers and brings up a data bearer in one
// step. An empty apn lets ModemManager pick one.
func (m *Modem) Connect(apn string) error {
	props := map[string]dbus.Variant{}
	if apn != "" {
		props["apn"] = dbus.MakeVariant(apn)
	}

	var bearer dbus.ObjectPath

	err := m.obj.Call(simpleIface+".Connect", 0, props).Store(&bearer)
	if err != nil {
		return errors.Errorf("could not connect modem: %v", err)
	}

	return nil
}

// Disconnect tears down all data bearers of the modem.
func (m *Modem) Disconnect() error {
	call := m.obj.Call(simpleIface+".Disconnect", 0, noObject)
	if call.Err != nil {
		return errors.Errorf("could not disconnect modem: %v", call.Err)
	}

	return nil
}

type Sim struct {
	obj dbus.BusObject
}

func (s *Sim) Imsi() (string, error) {
	return s.stringProperty("Imsi")
}

// SimIdentifier is the ICCID of the card.
func (s *Sim) SimIdentifier() (string, error) {
	return s.stringProperty("SimIdentifier")
}

func (s *Sim) stringProperty(name string) (string, error) {
	v, err := s.obj.GetProperty(simIface + "." + name)
	if err != nil {
		return "", errors.Errorf("could not get sim %v: %v", name, err)
	}

	value, _ := v.Value().(string)

	return value, nil
}
