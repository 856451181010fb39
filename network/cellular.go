package network

import (
	"time"

	"github.com/go-errors/errors"
	"github.com/the-lightning-land/provisiond/network/mm"
)

var _ Connector = (*CellularTransport)(nil)

type SimStatus int

const (
	SimReady SimStatus = iota
	SimMissing
	SimLocked
)

func (s SimStatus) String() string {
	switch s {
	case SimReady:
		return "READY"
	case SimMissing:
		return "MISSING"
	case SimLocked:
		return "LOCKED"
	default:
		return "INVALID SIM STATUS"
	}
}

// modem is the part of ModemManager a cellular transport drives.
type modem interface {
	Start() error
	Stop() error
	Identity() (imei string, imsi string, iccid string, err error)
	Sim() (SimStatus, error)
	State() (mm.State, error)
	Enable(enable bool) error
	Connect(apn string) error
	Disconnect() error
}

type CellularConfig struct {
	// APN used when connecting. Empty lets the modem pick one.
	APN    string
	Logger Logger
}

type CellularTransport struct {
	log        Logger
	apn        string
	modem      modem
	hardware   bool
	enabled    bool
	state      ConnectionState
	configured bool
	sim        SimStatus
	imei       string
	imsi       string
	iccid      string
	lastPoll   time.Time
	now        func() time.Time
}

func NewCellularTransport(config *CellularConfig) *CellularTransport {
	return newCellularTransport(config, &mmModem{manager: mm.New()})
}

func newCellularTransport(config *CellularConfig, m modem) *CellularTransport {
	t := &CellularTransport{
		apn:   config.APN,
		modem: m,
		state: StateOff,
		now:   time.Now,
	}

	if config.Logger != nil {
		t.log = config.Logger
	} else {
		t.log = noopLogger{}
	}

	return t
}

func (t *CellularTransport) Kind() Kind {
	return KindCellular
}

func (t *CellularTransport) Begin() error {
	err := t.modem.Start()
	if err != nil {
		t.hardware = false
		return errors.Errorf("could not find modem: %v", err)
	}

	t.hardware = true
	t.enabled = true

	t.imei, t.imsi, t.iccid, err = t.modem.Identity()
	if err != nil {
		t.log.Warnf("Could not read modem identity: %v", err)
	}

	t.sim, err = t.modem.Sim()
	if err != nil {
		t.log.Warnf("Could not read SIM status: %v", err)
	}

	state, err := t.modem.State()
	if err != nil {
		t.log.Warnf("Could not read modem state: %v", err)
	}

	if state == mm.StateConnected {
		t.configured = true
		t.state = StateConnected
	}

	t.log.Infof("Started cellular modem %v with SIM %v", t.imei, t.sim)

	return nil
}

func (t *CellularTransport) Run() {
	if !t.enabled || t.state == StateOff {
		return
	}

	now := t.now()
	if now.Sub(t.lastPoll) < statePollInterval {
		return
	}
	t.lastPoll = now

	state, err := t.modem.State()
	if err != nil {
		t.log.Debugf("Could not read modem state: %v", err)
		return
	}

	switch {
	case state == mm.StateConnected && t.state != StateConnected:
		t.log.Infof("Cellular connected")
		t.state = StateConnected
	case state != mm.StateConnected && t.state == StateConnected:
		t.log.Warnf("Cellular lost connection (%v)", state)
		t.state = StateConnecting
	}
}

func (t *CellularTransport) On() error {
	if !t.hardware {
		return errors.New("no modem available")
	}

	err := t.modem.Enable(true)
	if err != nil {
		return err
	}

	t.enabled = true
	if t.configured {
		t.state = StateConnecting
	} else {
		t.state = StateConfiguring
	}

	return nil
}

func (t *CellularTransport) Off() error {
	if !t.hardware {
		return nil
	}

	err := t.modem.Enable(false)
	if err != nil {
		return err
	}

	t.enabled = false
	t.state = StateOff

	return nil
}

func (t *CellularTransport) StartConfig() {
	t.state = StateConfiguring
}

// SetHostname does nothing. The kernel hostname set by the machine is what
// the system DHCP client announces.
func (t *CellularTransport) SetHostname(hostname string) {}

func (t *CellularTransport) Connect(credentials *Credentials) error {
	if !t.hardware {
		return errors.New("no modem available")
	}

	sim, err := t.modem.Sim()
	if err != nil {
		return errors.Errorf("could not read SIM status: %v", err)
	}
	t.sim = sim

	if sim != SimReady {
		return errors.Errorf("SIM card is %v", sim)
	}

	err = t.modem.Connect(t.apn)
	if err != nil {
		return err
	}

	t.configured = true
	t.state = StateConnecting
	t.lastPoll = time.Time{}

	return nil
}

func (t *CellularTransport) ClearNetworks() error {
	if !t.hardware || !t.configured {
		t.configured = false
		return nil
	}

	err := t.modem.Disconnect()
	if err != nil {
		return err
	}

	t.configured = false
	if t.state != StateConfiguring && t.state != StateOff {
		t.state = StateConfiguring
	}

	return nil
}

func (t *CellularTransport) IsHardwareAvailable() bool {
	return t.hardware
}

func (t *CellularTransport) IsConnected() bool {
	return t.state == StateConnected
}

func (t *CellularTransport) IsConfigured() bool {
	return t.configured
}

// SimStatus is the SIM state seen on the last Begin or Connect.
func (t *CellularTransport) SimStatus() SimStatus {
	return t.sim
}

func (t *CellularTransport) State() ConnectionState {
	return t.state
}

func (t *CellularTransport) Capabilities() Capability {
	return CapSimPin | CapAPN
}

func (t *CellularTransport) Info() *Info {
	return &Info{
		IMEI:  t.imei,
		IMSI:  t.imsi,
		ICCID: t.iccid,
	}
}

// mmModem drives the first modem ModemManager reports.
type mmModem struct {
	manager *mm.ModemManager
	modem   *mm.Modem
}

func (m *mmModem) Start() error {
	err := m.manager.Start()
	if err != nil {
		return err
	}

	modems, err := m.manager.Modems()
	if err != nil {
		_ = m.manager.Stop()
		return err
	}

	if len(modems) == 0 {
		_ = m.manager.Stop()
		return errors.New("no modem found")
	}

	m.modem = modems[0]

	return nil
}

func (m *mmModem) Stop() error {
	return m.manager.Stop()
}

func (m *mmModem) Identity() (string, string, string, error) {
	imei, err := m.modem.EquipmentIdentifier()
	if err != nil {
		return "", "", "", err
	}

	sim, err := m.modem.Sim()
	if err != nil || sim == nil {
		return imei, "", "", err
	}

	imsi, err := sim.Imsi()
	if err != nil {
		return imei, "", "", err
	}

	iccid, err := sim.SimIdentifier()
	if err != nil {
		return imei, imsi, "", err
	}

	return imei, imsi, iccid, nil
}

func (m *mmModem) Sim() (SimStatus, error) {
	sim, err := m.modem.Sim()
	if err != nil {
		return SimMissing, err
	}

	if sim == nil {
		return SimMissing, nil
	}

	lock, err := m.modem.UnlockRequired()
	if err != nil {
		return SimReady, err
	}

	if lock != mm.LockNone && lock != mm.LockUnknown {
		return SimLocked, nil
	}

	return SimReady, nil
}

func (m *mmModem) State() (mm.State, error) {
	return m.modem.State()
}

func (m *mmModem) Enable(enable bool) error {
	return m.modem.Enable(enable)
}

func (m *mmModem) Connect(apn string) error {
	return m.modem.Connect(apn)
}

func (m *mmModem) Disconnect() error {
	return m.modem.Disconnect()
}
