package connectivity

import (
	"time"

	"github.com/go-errors/errors"
	"github.com/the-lightning-land/provisiond/network"
	"github.com/the-lightning-land/provisiond/provision"
	"github.com/the-lightning-land/provisiond/store"
)

const DefaultConnectTimeout = 60 * time.Second

// Session is the part of a provisioning session the orchestrator drives.
type Session interface {
	Settings() provision.Settings
	SetLastError(code provision.ErrorCode)
	Stop() error
}

// Store persists networks that should be re-applied on boot.
type Store interface {
	SetNetwork(network *store.Network) error
	GetNetwork() (*store.Network, error)
	SetLastError(code int) error
}

type carrierSensor interface {
	HasCarrier() bool
}

type simReader interface {
	SimStatus() network.SimStatus
}

type OrchestratorConfig struct {
	Registry       *network.Registry
	Session        Session
	Store          Store
	Logger         Logger
	ConnectTimeout time.Duration
}

// Orchestrator applies the configuration collected by a provisioning session
// to the matching transport and watches the attempt until it succeeds or
// times out.
type Orchestrator struct {
	log      Logger
	registry *network.Registry
	session  Session
	store    Store
	timeout  time.Duration
	now      func() time.Time
	attempt  *attempt
}

type attempt struct {
	transport network.Transport
	settings  provision.Settings
	deadline  time.Time
}

func NewOrchestrator(config *OrchestratorConfig) (*Orchestrator, error) {
	if config.Registry == nil {
		return nil, errors.New("network registry is required")
	}

	if config.Session == nil {
		return nil, errors.New("provisioning session is required")
	}

	o := &Orchestrator{
		registry: config.Registry,
		session:  config.Session,
		store:    config.Store,
		timeout:  config.ConnectTimeout,
		now:      time.Now,
	}

	if config.Logger != nil {
		o.log = config.Logger
	} else {
		o.log = noopLogger{}
	}

	if o.timeout == 0 {
		o.timeout = DefaultConnectTimeout
	}

	return o, nil
}

// Provision starts connecting with the session's pending settings. It is
// meant to be installed as the session's provision callback.
func (o *Orchestrator) Provision() {
	settings := o.session.Settings()

	transport, err := o.connect(settings.Interface, credentialsOf(&settings))
	if err != nil {
		o.log.Errorf("Could not apply configuration: %v", err)
		code := errorCodeOf(transport)
		o.session.SetLastError(code)
		o.saveLastError(code)
		o.attempt = nil
		return
	}

	o.attempt = &attempt{
		transport: transport,
		settings:  settings,
		deadline:  o.now().Add(o.timeout),
	}
}

// Attempting reports whether a connection attempt is being watched.
func (o *Orchestrator) Attempting() bool {
	return o.attempt != nil
}

// Run checks the current attempt once.
func (o *Orchestrator) Run() {
	a := o.attempt
	if a == nil {
		return
	}

	if a.transport.IsConnected() {
		o.attempt = nil
		o.succeed(a)
		return
	}

	if o.now().Before(a.deadline) {
		return
	}

	o.attempt = nil

	code := provision.ErrorNetwork
	if sensor, ok := a.transport.(carrierSensor); ok && !sensor.HasCarrier() {
		code = provision.ErrorNetworkNoCable
	}

	o.log.Warnf("Could not connect over %v within %v: %v", a.transport.Kind(), o.timeout, code)
	o.session.SetLastError(code)
	o.saveLastError(code)
}

func (o *Orchestrator) succeed(a *attempt) {
	o.log.Infof("Connected over %v", a.transport.Kind())

	o.session.SetLastError(provision.ErrorNone)
	o.saveLastError(provision.ErrorNone)

	if a.settings.ForceSave && o.store != nil {
		err := o.store.SetNetwork(networkOf(&a.settings))
		if err != nil {
			o.log.Errorf("Could not save network: %v", err)
		}
	}

	err := o.session.Stop()
	if err != nil {
		o.log.Errorf("Could not stop provisioning session: %v", err)
	}
}

func (o *Orchestrator) saveLastError(code provision.ErrorCode) {
	if o.store == nil {
		return
	}

	err := o.store.SetLastError(int(code))
	if err != nil {
		o.log.Warnf("Could not save last error: %v", err)
	}
}

// ConnectSaved re-applies a persisted network and watches the attempt like
// one started by Provision. It reports whether a network was found.
func (o *Orchestrator) ConnectSaved() (bool, error) {
	if o.store == nil {
		return false, nil
	}

	saved, err := o.store.GetNetwork()
	if err != nil {
		return false, errors.Errorf("could not load saved network: %v", err)
	}

	if saved == nil {
		o.log.Debugf("No saved network was found")
		return false, nil
	}

	o.log.Infof("Connecting to saved %v network", saved.Interface)

	itf := provision.Interface(saved.Interface)

	transport, err := o.connect(itf, &network.Credentials{
		Ssid:       saved.Ssid,
		Passphrase: saved.Passphrase,
		StaticIP:   saved.StaticIP,
		Netmask:    saved.Netmask,
		Gateway:    saved.Gateway,
		Dns1:       saved.Dns1,
		Dns2:       saved.Dns2,
	})
	if err != nil {
		code := errorCodeOf(transport)
		o.session.SetLastError(code)
		o.saveLastError(code)
		return true, errors.Errorf("could not connect to saved network: %v", err)
	}

	o.attempt = &attempt{
		transport: transport,
		settings:  provision.Settings{Interface: itf},
		deadline:  o.now().Add(o.timeout),
	}

	return true, nil
}

func (o *Orchestrator) connect(itf provision.Interface, credentials *network.Credentials) (network.Transport, error) {
	transport, err := o.transportFor(itf)
	if err != nil {
		return nil, err
	}

	connector, ok := transport.(network.Connector)
	if !ok {
		return transport, errors.Errorf("%v transport cannot connect", transport.Kind())
	}

	err = connector.Connect(credentials)
	if err != nil {
		return transport, errors.Errorf("could not connect over %v: %v", transport.Kind(), err)
	}

	return transport, nil
}

func (o *Orchestrator) transportFor(itf provision.Interface) (network.Transport, error) {
	var kinds []network.Kind

	switch itf {
	case provision.InterfaceWifi:
		kinds = []network.Kind{network.KindWifi, network.KindHaLow}
	case provision.InterfaceCellular:
		kinds = []network.Kind{network.KindCellular}
	case provision.InterfaceEthernet:
		kinds = []network.Kind{network.KindEthernet}
	default:
		return nil, errors.Errorf("unknown interface %q", itf)
	}

	for _, kind := range kinds {
		if t, ok := o.registry.Get(kind); ok {
			return t, nil
		}
	}

	return nil, errors.Errorf("no transport for interface %q", itf)
}

func errorCodeOf(transport network.Transport) provision.ErrorCode {
	if transport == nil {
		return provision.ErrorConfig
	}

	if sim, ok := transport.(simReader); ok {
		switch sim.SimStatus() {
		case network.SimMissing:
			return provision.ErrorSimcardMissing
		case network.SimLocked:
			return provision.ErrorSimcardLocked
		}
	}

	return provision.ErrorNetwork
}

func credentialsOf(s *provision.Settings) *network.Credentials {
	return &network.Credentials{
		Ssid:       s.Ssid,
		Passphrase: s.Passphrase,
		StaticIP:   s.StaticIP,
		Netmask:    s.Netmask,
		Gateway:    s.Gateway,
		Dns1:       s.Dns1,
		Dns2:       s.Dns2,
	}
}

func networkOf(s *provision.Settings) *store.Network {
	return &store.Network{
		Interface:  string(s.Interface),
		Ssid:       s.Ssid,
		Passphrase: s.Passphrase,
		AuthToken:  s.AuthToken,
		Host:       s.Host,
		StaticIP:   s.StaticIP,
		Netmask:    s.Netmask,
		Gateway:    s.Gateway,
		Dns1:       s.Dns1,
		Dns2:       s.Dns2,
	}
}
