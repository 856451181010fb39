package connectivity

import (
	"errors"
	"time"

	"github.com/the-lightning-land/provisiond/network"
	"github.com/the-lightning-land/provisiond/provision"
	"github.com/the-lightning-land/provisiond/store"
)

var errFake = errors.New("fake failure")

type fakeTransport struct {
	kind       network.Kind
	connected  bool
	carrier    bool
	sim        network.SimStatus
	connectErr error
	connects   []network.Credentials
}

func (t *fakeTransport) Kind() network.Kind               { return t.kind }
func (t *fakeTransport) Begin() error                     { return nil }
func (t *fakeTransport) Run()                             {}
func (t *fakeTransport) On() error                        { return nil }
func (t *fakeTransport) Off() error                       { return nil }
func (t *fakeTransport) StartConfig()                     {}
func (t *fakeTransport) SetHostname(string)               {}
func (t *fakeTransport) ClearNetworks() error             { return nil }
func (t *fakeTransport) IsHardwareAvailable() bool        { return true }
func (t *fakeTransport) IsConnected() bool                { return t.connected }
func (t *fakeTransport) IsConfigured() bool               { return len(t.connects) > 0 }
func (t *fakeTransport) State() network.ConnectionState   { return network.StateOff }
func (t *fakeTransport) Capabilities() network.Capability { return 0 }
func (t *fakeTransport) Info() *network.Info              { return &network.Info{} }

func (t *fakeTransport) Connect(credentials *network.Credentials) error {
	if t.connectErr != nil {
		return t.connectErr
	}

	t.connects = append(t.connects, *credentials)

	return nil
}

type fakeEthernet struct {
	fakeTransport
}

func (t *fakeEthernet) HasCarrier() bool { return t.carrier }

type fakeCellular struct {
	fakeTransport
}

func (t *fakeCellular) SimStatus() network.SimStatus { return t.sim }

type fakeSession struct {
	settings  provision.Settings
	lastError provision.ErrorCode
	stopped   int
}

func (s *fakeSession) Settings() provision.Settings          { return s.settings }
func (s *fakeSession) SetLastError(code provision.ErrorCode) { s.lastError = code }

func (s *fakeSession) Stop() error {
	s.stopped++
	return nil
}

type fakeStore struct {
	network   *store.Network
	lastError int
}

func (s *fakeStore) GetNetwork() (*store.Network, error) { return s.network, nil }

func (s *fakeStore) SetNetwork(network *store.Network) error {
	s.network = network
	return nil
}

func (s *fakeStore) SetLastError(code int) error {
	s.lastError = code
	return nil
}

type fakeOnline struct {
	online bool
}

func (f *fakeOnline) IsOnline() bool { return f.online }

func fixedClock(t *time.Time) func() time.Time {
	return func() time.Time { return *t }
}
