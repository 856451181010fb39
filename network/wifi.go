package network

import (
	"strings"
	"time"

	"github.com/go-errors/errors"
	"github.com/the-lightning-land/provisiond/network/wpa"
)

// check WifiTransport compliance to its interfaces during compile time
var _ Scanner = (*WifiTransport)(nil)
var _ Connector = (*WifiTransport)(nil)
var _ ScanSource = (*WifiTransport)(nil)

const statePollInterval = 500 * time.Millisecond

// supplicant is the part of wpa_supplicant a Wi-Fi transport drives.
type supplicant interface {
	Start() error
	Stop() error
	Scan() error
	ScanComplete() (bool, error)
	Bsss() ([]*wpa.Bss, error)
	Connect(ssid string, psk string) error
	RemoveAllNetworks() error
	NetworkCount() (int, error)
	State() (string, error)
	Disconnect() error
	Reconnect() error
}

type WifiConfig struct {
	// Interface is the Linux network interface, e.g. wlan0.
	Interface string
	// Service is the supplicant bus name. Defaults to wpa.DefaultService.
	Service      string
	Supports5GHz bool
	Logger       Logger
}

// WifiTransport drives a Wi-Fi or Wi-Fi HaLow radio through wpa_supplicant.
type WifiTransport struct {
	kind       Kind
	log        Logger
	ifname     string
	caps       Capability
	sup        supplicant
	scans      ScanSlot
	hardware   bool
	started    bool
	state      ConnectionState
	configured bool
	mac        string
	lastPoll   time.Time
	now        func() time.Time
}

func NewWifiTransport(config *WifiConfig) *WifiTransport {
	caps := CapScan
	if config.Supports5GHz {
		caps |= Cap5GHz
	}

	return newWifiTransport(KindWifi, caps, config, newWpaSupplicant(config))
}

// NewHaLowTransport returns a transport for an 802.11ah radio. HaLow
// supplicants speak the same D-Bus API, usually under their own bus name.
func NewHaLowTransport(config *WifiConfig) *WifiTransport {
	return newWifiTransport(KindHaLow, CapScan, config, newWpaSupplicant(config))
}

func newWifiTransport(kind Kind, caps Capability, config *WifiConfig, sup supplicant) *WifiTransport {
	t := &WifiTransport{
		kind:   kind,
		ifname: config.Interface,
		caps:   caps,
		sup:    sup,
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

func (t *WifiTransport) Kind() Kind {
	return t.kind
}

func (t *WifiTransport) Begin() error {
	err := t.sup.Start()
	if err != nil {
		t.hardware = false
		return errors.Errorf("could not start supplicant on %v: %v", t.ifname, err)
	}

	t.hardware = true
	t.started = true

	t.mac, err = macAddress(t.ifname)
	if err != nil {
		t.log.Warnf("Could not read MAC address of %v: %v", t.ifname, err)
	}

	count, err := t.sup.NetworkCount()
	if err != nil {
		t.log.Warnf("Could not read configured networks of %v: %v", t.ifname, err)
	}

	t.configured = count > 0
	if t.configured {
		t.state = StateConnecting
	}

	t.log.Infof("Started %v on %v with %d configured networks", t.kind, t.ifname, count)

	return nil
}

func (t *WifiTransport) Run() {
	if !t.started || t.state == StateOff {
		return
	}

	now := t.now()
	if now.Sub(t.lastPoll) < statePollInterval {
		return
	}
	t.lastPoll = now

	st, err := t.sup.State()
	if err != nil {
		t.log.Debugf("Could not read supplicant state of %v: %v", t.ifname, err)
		return
	}

	completed := st == "completed"

	switch {
	case completed && t.state != StateConnected:
		t.log.Infof("%v connected on %v", t.kind, t.ifname)
		t.state = StateConnected
	case !completed && t.state == StateConnected:
		t.log.Warnf("%v lost connection on %v (%v)", t.kind, t.ifname, st)
		t.state = StateConnecting
	}
}

func (t *WifiTransport) On() error {
	if !t.started {
		return errors.Errorf("%v is not started", t.kind)
	}

	err := t.sup.Reconnect()
	if err != nil {
		return errors.Errorf("could not turn on %v: %v", t.ifname, err)
	}

	if t.configured {
		t.state = StateConnecting
	} else {
		t.state = StateConfiguring
	}

	return nil
}

func (t *WifiTransport) Off() error {
	if !t.started {
		return nil
	}

	t.scans.End()

	err := t.sup.Disconnect()
	if err != nil {
		return errors.Errorf("could not turn off %v: %v", t.ifname, err)
	}

	t.state = StateOff

	return nil
}

func (t *WifiTransport) StartConfig() {
	t.state = StateConfiguring
}

// SetHostname does nothing. The kernel hostname set by the machine is what
// the system DHCP client announces.
func (t *WifiTransport) SetHostname(hostname string) {}

func (t *WifiTransport) Connect(credentials *Credentials) error {
	if !t.started {
		return errors.Errorf("%v is not started", t.kind)
	}

	if credentials.Ssid == "" {
		return errors.New("ssid must not be empty")
	}

	if credentials.StaticIP != "" {
		t.log.Warnf("%v does not support static IP configuration, using DHCP", t.kind)
	}

	err := t.sup.RemoveAllNetworks()
	if err != nil {
		return errors.Errorf("could not replace networks: %v", err)
	}

	err = t.sup.Connect(credentials.Ssid, credentials.Passphrase)
	if err != nil {
		return errors.Errorf("could not connect to %v: %v", credentials.Ssid, err)
	}

	t.log.Infof("Connecting %v to %v with passphrase %v", t.kind, credentials.Ssid,
		strings.Repeat("*", len(credentials.Passphrase)))

	t.configured = true
	t.state = StateConnecting
	t.lastPoll = time.Time{}

	return nil
}

func (t *WifiTransport) ClearNetworks() error {
	if !t.started {
		return nil
	}

	err := t.sup.RemoveAllNetworks()
	if err != nil {
		return errors.Errorf("could not clear networks of %v: %v", t.ifname, err)
	}

	t.configured = false
	if t.state != StateConfiguring && t.state != StateOff {
		t.state = StateConfiguring
	}

	return nil
}

func (t *WifiTransport) IsHardwareAvailable() bool {
	return t.hardware
}

func (t *WifiTransport) IsConnected() bool {
	return t.state == StateConnected
}

func (t *WifiTransport) IsConfigured() bool {
	return t.configured
}

func (t *WifiTransport) State() ConnectionState {
	return t.state
}

func (t *WifiTransport) Capabilities() Capability {
	return t.caps
}

func (t *WifiTransport) Info() *Info {
	return &Info{
		Mac: t.mac,
	}
}

func (t *WifiTransport) StartScan() (*ScanSession, error) {
	if !t.started {
		return nil, errors.Errorf("%v is not started", t.kind)
	}

	return t.scans.Start(t)
}

func (t *WifiTransport) EndScan() {
	t.scans.End()
}

func (t *WifiTransport) TriggerScan() error {
	return t.sup.Scan()
}

func (t *WifiTransport) ScanComplete() (bool, error) {
	return t.sup.ScanComplete()
}

func (t *WifiTransport) ScanResults() ([]ScanResult, error) {
	bsss, err := t.sup.Bsss()
	if err != nil {
		return nil, err
	}

	results := make([]ScanResult, 0, len(bsss))
	for _, bss := range bsss {
		results = append(results, ScanResult{
			Ssid:     bss.Ssid,
			Bssid:    bss.Bssid,
			Rssi:     bss.Signal,
			Security: securityOf(bss),
			Channel:  frequencyToChannel(bss.Frequency),
		})
	}

	return results, nil
}

func securityOf(bss *wpa.Bss) Security {
	switch {
	case hasEap(bss.RsnKeyMgmt):
		return SecurityWPA2Enterprise
	case len(bss.RsnKeyMgmt) > 0:
		return SecurityWPA2
	case hasEap(bss.WpaKeyMgmt):
		return SecurityWPAEnterprise
	case len(bss.WpaKeyMgmt) > 0:
		return SecurityWPA
	case bss.Privacy:
		return SecurityWEP
	default:
		return SecurityOpen
	}
}

func hasEap(suites []string) bool {
	for _, suite := range suites {
		if strings.Contains(suite, "eap") {
			return true
		}
	}

	return false
}

// frequencyToChannel maps a center frequency in MHz to its channel number,
// or -1 when the band is not known. Sub-GHz HaLow channels are 500 kHz apart
// from the start of their band, 863 MHz in Europe and 902 MHz elsewhere.
func frequencyToChannel(freq int) int {
	switch {
	case freq >= 863 && freq <= 868:
		return (freq - 863) * 2
	case freq >= 902 && freq <= 928:
		return (freq - 902) * 2
	case freq == 2484:
		return 14
	case freq >= 2412 && freq <= 2472:
		return (freq - 2407) / 5
	case freq >= 5160 && freq <= 5885:
		return (freq - 5000) / 5
	case freq >= 5955 && freq <= 7115:
		return (freq - 5950) / 5
	default:
		return -1
	}
}
