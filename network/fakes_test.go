package network

import (
	"errors"
	"time"

	"github.com/the-lightning-land/provisiond/network/mm"
	"github.com/the-lightning-land/provisiond/network/wpa"
)

type fakeSupplicant struct {
	startErr     error
	scanErr      error
	scanned      int
	scanComplete bool
	bsss         []*wpa.Bss
	networks     int
	state        string
	connects     []string
	removed      int
}

func (s *fakeSupplicant) Start() error { return s.startErr }
func (s *fakeSupplicant) Stop() error  { return nil }

func (s *fakeSupplicant) Scan() error {
	if s.scanErr != nil {
		return s.scanErr
	}
	s.scanned++
	return nil
}

func (s *fakeSupplicant) ScanComplete() (bool, error) { return s.scanComplete, nil }
func (s *fakeSupplicant) Bsss() ([]*wpa.Bss, error)   { return s.bsss, nil }

func (s *fakeSupplicant) Connect(ssid string, psk string) error {
	s.connects = append(s.connects, ssid)
	s.networks = 1
	return nil
}

func (s *fakeSupplicant) RemoveAllNetworks() error {
	s.removed++
	s.networks = 0
	return nil
}

func (s *fakeSupplicant) NetworkCount() (int, error) { return s.networks, nil }
func (s *fakeSupplicant) State() (string, error)     { return s.state, nil }
func (s *fakeSupplicant) Disconnect() error          { return nil }
func (s *fakeSupplicant) Reconnect() error           { return nil }

type fakeLink struct {
	exists  bool
	carrier bool
	ip      string
}

func (l *fakeLink) Exists(ifname string) bool              { return l.exists }
func (l *fakeLink) Mac(ifname string) (string, error)      { return "AA:BB:CC:DD:EE:FF", nil }
func (l *fakeLink) Carrier(ifname string) (bool, error)    { return l.carrier, nil }
func (l *fakeLink) IPv4(ifname string) (string, error)     { return l.ip, nil }

type fakeModem struct {
	startErr   error
	sim        SimStatus
	state      mm.State
	connectErr error
	connected  []string
	enabled    bool
}

func (m *fakeModem) Start() error { return m.startErr }
func (m *fakeModem) Stop() error  { return nil }

func (m *fakeModem) Identity() (string, string, string, error) {
	return "356938035643809", "310150123456789", "8901260123456789012", nil
}

func (m *fakeModem) Sim() (SimStatus, error)  { return m.sim, nil }
func (m *fakeModem) State() (mm.State, error) { return m.state, nil }

func (m *fakeModem) Enable(enable bool) error {
	m.enabled = enable
	return nil
}

func (m *fakeModem) Connect(apn string) error {
	if m.connectErr != nil {
		return m.connectErr
	}
	m.connected = append(m.connected, apn)
	return nil
}

func (m *fakeModem) Disconnect() error { return nil }

// fakeTransport is a minimal transport for registry tests.
type fakeTransport struct {
	kind        Kind
	caps        Capability
	connected   bool
	configured  bool
	beginErr    error
	began       int
	ran         int
	configuring bool
	hostname    string
	cleared     int
}

func (t *fakeTransport) Kind() Kind { return t.kind }

func (t *fakeTransport) Begin() error {
	t.began++
	return t.beginErr
}

func (t *fakeTransport) Run()                        { t.ran++ }
func (t *fakeTransport) On() error                   { return nil }
func (t *fakeTransport) Off() error                  { return nil }
func (t *fakeTransport) StartConfig()                { t.configuring = true }
func (t *fakeTransport) SetHostname(hostname string) { t.hostname = hostname }

func (t *fakeTransport) ClearNetworks() error {
	t.cleared++
	return nil
}

func (t *fakeTransport) IsHardwareAvailable() bool   { return true }
func (t *fakeTransport) IsConnected() bool           { return t.connected }
func (t *fakeTransport) IsConfigured() bool          { return t.configured }
func (t *fakeTransport) State() ConnectionState      { return StateOff }
func (t *fakeTransport) Capabilities() Capability    { return t.caps }
func (t *fakeTransport) Info() *Info                 { return &Info{} }

type fakeScanner struct {
	fakeTransport
	slot   ScanSlot
	source ScanSource
}

func (s *fakeScanner) StartScan() (*ScanSession, error) { return s.slot.Start(s.source) }
func (s *fakeScanner) EndScan()                         { s.slot.End() }

type staticSource struct {
	triggerErr error
	complete   bool
	results    []ScanResult
	resultsErr error
}

func (s *staticSource) TriggerScan() error               { return s.triggerErr }
func (s *staticSource) ScanComplete() (bool, error)      { return s.complete, nil }
func (s *staticSource) ScanResults() ([]ScanResult, error) { return s.results, s.resultsErr }

var errFake = errors.New("fake failure")

// steppingClock advances by step on every call.
func steppingClock(step time.Duration) func() time.Time {
	now := time.Unix(0, 0)
	return func() time.Time {
		now = now.Add(step)
		return now
	}
}
