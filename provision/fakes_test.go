package provision

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/the-lightning-land/provisiond/network"
)

var errFake = errors.New("fake failure")

type fakeLink struct {
	name      string
	opened    int
	closed    int
	openErr   error
	connected bool
	inbound   [][]byte
	outbound  [][]byte
}

func (l *fakeLink) Open(name string) error {
	l.name = name
	l.opened++
	return l.openErr
}

func (l *fakeLink) Close() error {
	l.closed++
	return nil
}

func (l *fakeLink) IsConnected() bool { return l.connected }
func (l *fakeLink) Available() bool   { return len(l.inbound) > 0 }

func (l *fakeLink) Read() ([]byte, error) {
	if len(l.inbound) == 0 {
		return nil, errFake
	}

	data := l.inbound[0]
	l.inbound = l.inbound[1:]

	return data, nil
}

func (l *fakeLink) Write(data []byte) error {
	l.outbound = append(l.outbound, append([]byte(nil), data...))
	return nil
}

func (l *fakeLink) push(msg string) {
	l.inbound = append(l.inbound, []byte(msg))
}

// replies decodes and drains everything written so far.
func (l *fakeLink) replies(t *testing.T) []map[string]interface{} {
	var out []map[string]interface{}

	for _, data := range l.outbound {
		var msg map[string]interface{}
		require.NoError(t, json.Unmarshal(data, &msg), string(data))
		out = append(out, msg)
	}

	l.outbound = nil

	return out
}

func types(msgs []map[string]interface{}) []string {
	var out []string
	for _, m := range msgs {
		out = append(out, m["t"].(string))
	}
	return out
}

type fakeTransport struct {
	kind        network.Kind
	caps        network.Capability
	info        network.Info
	absent      bool
	configuring bool
	cleared     int
}

func (t *fakeTransport) Kind() network.Kind               { return t.kind }
func (t *fakeTransport) Begin() error                     { return nil }
func (t *fakeTransport) Run()                             {}
func (t *fakeTransport) On() error                        { return nil }
func (t *fakeTransport) Off() error                       { return nil }
func (t *fakeTransport) StartConfig()                     { t.configuring = true }
func (t *fakeTransport) SetHostname(string)               {}
func (t *fakeTransport) IsHardwareAvailable() bool        { return !t.absent }
func (t *fakeTransport) IsConnected() bool                { return false }
func (t *fakeTransport) IsConfigured() bool               { return false }
func (t *fakeTransport) State() network.ConnectionState   { return network.StateOff }
func (t *fakeTransport) Capabilities() network.Capability { return t.caps }

func (t *fakeTransport) Info() *network.Info {
	info := t.info
	return &info
}

func (t *fakeTransport) ClearNetworks() error {
	t.cleared++
	return nil
}

type fakeScanner struct {
	fakeTransport
	slot   network.ScanSlot
	source *fakeSource
}

func (s *fakeScanner) StartScan() (*network.ScanSession, error) { return s.slot.Start(s.source) }
func (s *fakeScanner) EndScan()                                 { s.slot.End() }

type fakeSource struct {
	triggerErr error
	complete   bool
	results    []network.ScanResult
}

func (s *fakeSource) TriggerScan() error                         { return s.triggerErr }
func (s *fakeSource) ScanComplete() (bool, error)                { return s.complete, nil }
func (s *fakeSource) ScanResults() ([]network.ScanResult, error) { return s.results, nil }

type fakeRebooter struct {
	reboots int
}

func (r *fakeRebooter) Reboot() error {
	r.reboots++
	return nil
}

type fakeStore struct {
	cleared int
}

func (s *fakeStore) ClearNetwork() error {
	s.cleared++
	return nil
}

type harness struct {
	session  *Session
	link     *fakeLink
	wifi     *fakeScanner
	eth      *fakeTransport
	rebooter *fakeRebooter
	store    *fakeStore
	sleeps   int
	clock    time.Time
}

func newHarness(t *testing.T, transports ...network.Transport) *harness {
	h := &harness{
		link:     &fakeLink{connected: true},
		rebooter: &fakeRebooter{},
		store:    &fakeStore{},
		clock:    time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	if transports == nil {
		h.wifi = &fakeScanner{
			fakeTransport: fakeTransport{
				kind: network.KindWifi,
				caps: network.CapScan | network.Cap5GHz,
				info: network.Info{Mac: "AA:BB:CC:00:11:22"},
			},
			source: &fakeSource{},
		}
		h.eth = &fakeTransport{
			kind: network.KindEthernet,
			info: network.Info{Mac: "AA:BB:CC:00:11:33", Status: "no_cable"},
		}
		transports = []network.Transport{h.wifi, h.eth}
	}

	registry, err := network.NewRegistry(&network.RegistryConfig{Transports: transports})
	require.NoError(t, err)

	h.session, err = NewSession(&Config{
		Link:     h.link,
		Registry: registry,
		Rebooter: h.rebooter,
		Store:    h.store,
	})
	require.NoError(t, err)

	h.session.sleep = func(time.Duration) { h.sleeps++ }
	h.session.now = func() time.Time { return h.clock }

	require.NoError(t, h.session.Start(Identity{
		DeviceName:      "Sensor-4NW8",
		Vendor:          "Acme",
		TemplateID:      "TMPL0001",
		FirmwareType:    "sensor",
		FirmwareVersion: "1.2.0",
	}))

	return h
}

// exchange sends one message and returns the replies produced by a single
// poll.
func (h *harness) exchange(t *testing.T, msg string) []map[string]interface{} {
	h.link.push(msg)
	h.session.Poll()
	return h.link.replies(t)
}
