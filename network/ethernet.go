package network

import (
	"time"

	"github.com/go-errors/errors"
)

var _ Connector = (*EthernetTransport)(nil)

const (
	EthernetStatusUp      = "up"
	EthernetStatusDown    = "down"
	EthernetStatusNoCable = "no_cable"
)

type EthernetConfig struct {
	Interface string
	Logger    Logger
}

// EthernetTransport watches a wired interface. Addressing is left to the
// system DHCP client; the transport reports carrier and address.
type EthernetTransport struct {
	log        Logger
	ifname     string
	link       linkReader
	hardware   bool
	enabled    bool
	state      ConnectionState
	configured bool
	carrier    bool
	ip         string
	mac        string
	lastPoll   time.Time
	now        func() time.Time
}

func NewEthernetTransport(config *EthernetConfig) *EthernetTransport {
	return newEthernetTransport(config, newSysfsLink())
}

func newEthernetTransport(config *EthernetConfig, link linkReader) *EthernetTransport {
	t := &EthernetTransport{
		ifname: config.Interface,
		link:   link,
		state:  StateOff,
		now:    time.Now,
	}

	if config.Logger != nil {
		t.log = config.Logger
	} else {
		t.log = noopLogger{}
	}

	return t
}

func (t *EthernetTransport) Kind() Kind {
	return KindEthernet
}

func (t *EthernetTransport) Begin() error {
	if !t.link.Exists(t.ifname) {
		t.hardware = false
		return errors.Errorf("interface %v not found", t.ifname)
	}

	t.hardware = true
	t.enabled = true

	mac, err := t.link.Mac(t.ifname)
	if err != nil {
		t.log.Warnf("Could not read MAC address of %v: %v", t.ifname, err)
	}
	t.mac = mac

	// a plugged cable is all the configuration ethernet needs
	t.state = StateConnecting
	t.poll()
	t.configured = t.carrier
	t.updateState()

	t.log.Infof("Started ethernet on %v", t.ifname)

	return nil
}

func (t *EthernetTransport) Run() {
	if !t.enabled || t.state == StateOff {
		return
	}

	now := t.now()
	if now.Sub(t.lastPoll) < statePollInterval {
		return
	}
	t.lastPoll = now

	t.poll()
	t.updateState()
}

func (t *EthernetTransport) poll() {
	carrier, err := t.link.Carrier(t.ifname)
	if err != nil {
		t.log.Debugf("Could not read carrier of %v: %v", t.ifname, err)
	}
	t.carrier = carrier

	t.ip = ""
	if carrier {
		ip, err := t.link.IPv4(t.ifname)
		if err != nil {
			t.log.Debugf("Could not read address of %v: %v", t.ifname, err)
		}
		t.ip = ip
	}
}

func (t *EthernetTransport) updateState() {
	online := t.carrier && t.ip != ""

	switch {
	case online && t.state == StateConnecting:
		t.log.Infof("Ethernet connected on %v with %v", t.ifname, t.ip)
		t.state = StateConnected
	case !online && t.state == StateConnected:
		t.log.Warnf("Ethernet lost connection on %v", t.ifname)
		t.state = StateConnecting
	}
}

func (t *EthernetTransport) On() error {
	if !t.hardware {
		return errors.Errorf("interface %v not found", t.ifname)
	}

	t.enabled = true
	t.state = StateConnecting

	return nil
}

func (t *EthernetTransport) Off() error {
	t.enabled = false
	t.state = StateOff

	return nil
}

func (t *EthernetTransport) StartConfig() {
	t.state = StateConfiguring
}

// SetHostname does nothing. The kernel hostname set by the machine is what
// the system DHCP client announces.
func (t *EthernetTransport) SetHostname(hostname string) {}

func (t *EthernetTransport) Connect(credentials *Credentials) error {
	if !t.hardware {
		return errors.Errorf("interface %v not found", t.ifname)
	}

	if credentials.StaticIP != "" {
		t.log.Warnf("Ethernet does not support static IP configuration, using DHCP")
	}

	t.configured = true
	t.state = StateConnecting
	t.lastPoll = time.Time{}

	return nil
}

func (t *EthernetTransport) ClearNetworks() error {
	t.configured = false

	return nil
}

func (t *EthernetTransport) IsHardwareAvailable() bool {
	return t.hardware
}

func (t *EthernetTransport) IsConnected() bool {
	return t.state == StateConnected
}

func (t *EthernetTransport) IsConfigured() bool {
	return t.configured
}

// HasCarrier reports whether a cable was detected on the last poll.
func (t *EthernetTransport) HasCarrier() bool {
	return t.carrier
}

func (t *EthernetTransport) State() ConnectionState {
	return t.state
}

func (t *EthernetTransport) Capabilities() Capability {
	return 0
}

func (t *EthernetTransport) Info() *Info {
	info := &Info{
		Mac:    t.mac,
		Status: t.status(),
	}

	if t.state == StateConnected {
		info.IP = t.ip
	}

	return info
}

func (t *EthernetTransport) status() string {
	switch {
	case !t.enabled:
		return EthernetStatusDown
	case !t.carrier:
		return EthernetStatusNoCable
	default:
		return EthernetStatusUp
	}
}
