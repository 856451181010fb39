package agent

import (
	"sync"
	"time"

	"github.com/go-errors/errors"
	"github.com/the-lightning-land/provisiond/machine"
	"github.com/the-lightning-land/provisiond/network"
	"github.com/the-lightning-land/provisiond/provision"
)

const DefaultTick = 20 * time.Millisecond

type Session interface {
	Start(identity provision.Identity) error
	Stop() error
	Poll()
	Active() bool
	ID() string
	IsUserConfiguring() bool
	LastError() provision.ErrorCode
	SetLastError(code provision.ErrorCode)
}

type Orchestrator interface {
	Run()
	ConnectSaved() (bool, error)
	Attempting() bool
}

// LastErrorStore recalls the outcome of the connection attempt before the
// last restart.
type LastErrorStore interface {
	GetLastError() (int, error)
}

type Config struct {
	Registry     *network.Registry
	Session      Session
	Orchestrator Orchestrator
	Machine      machine.Machine
	Store        LastErrorStore
	Identity     provision.Identity
	Hostname     string
	Tick         time.Duration
	Logger       Logger
}

// Agent drives the provisioning session, the transports and the connection
// orchestrator from a single goroutine.
type Agent struct {
	log          Logger
	registry     *network.Registry
	session      Session
	orchestrator Orchestrator
	machine      machine.Machine
	store        LastErrorStore
	identity     provision.Identity
	hostname     string
	tick         time.Duration

	// awaitingSaved is set while the saved network is being tried at boot.
	awaitingSaved bool

	done         chan struct{}
	shutdownOnce sync.Once
	provisioning chan struct{}

	statusMtx sync.RWMutex
	status    Status
}

func NewAgent(config *Config) (*Agent, error) {
	if config.Registry == nil || config.Session == nil || config.Orchestrator == nil {
		return nil, errors.New("registry, session and orchestrator are required")
	}

	agent := &Agent{
		registry:     config.Registry,
		session:      config.Session,
		orchestrator: config.Orchestrator,
		machine:      config.Machine,
		store:        config.Store,
		identity:     config.Identity,
		hostname:     config.Hostname,
		tick:         config.Tick,
		done:         make(chan struct{}),
		provisioning: make(chan struct{}, 1),
	}

	if config.Logger != nil {
		agent.log = config.Logger
	} else {
		agent.log = noopLogger{}
	}

	if agent.tick == 0 {
		agent.tick = DefaultTick
	}

	agent.status.Name = config.Identity.DeviceName

	return agent, nil
}

// Run blocks until Shutdown is called.
func (a *Agent) Run() error {
	a.log.Infof("Starting agent as %v", a.identity.DeviceName)

	err := a.registry.Begin()
	if err != nil {
		a.log.Warnf("Not all transports are available: %v", err)
	}

	if a.hostname != "" {
		a.applyHostname()
	}

	a.restoreLastError()

	saved, err := a.orchestrator.ConnectSaved()
	switch {
	case err != nil:
		a.log.Errorf("Could not connect to saved network, starting provisioning: %v", err)
		a.startProvisioning()
	case saved:
		a.awaitingSaved = true
	case !a.registry.IsAnyConfigured():
		a.log.Infof("No network configured, starting provisioning")
		a.startProvisioning()
	}

	a.publish()

	ticker := time.NewTicker(a.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.step()

		case <-a.provisioning:
			a.startProvisioning()
			a.publish()

		case <-a.done:
			err := a.session.Stop()
			if err != nil {
				a.log.Errorf("Could not stop provisioning session: %v", err)
			}

			a.log.Infof("Agent stopped")

			return nil
		}
	}
}

func (a *Agent) step() {
	a.session.Poll()
	a.registry.Run()
	a.orchestrator.Run()
	a.checkSaved()
	a.publish()
}

// checkSaved falls back to provisioning once the attempt on the saved network
// is over without a connection.
func (a *Agent) checkSaved() {
	if !a.awaitingSaved || a.orchestrator.Attempting() {
		return
	}

	a.awaitingSaved = false

	if a.registry.IsAnyConnected() {
		return
	}

	a.log.Warnf("Saved network did not come up, starting provisioning")
	a.startProvisioning()
}

func (a *Agent) applyHostname() {
	a.registry.SetHostname(a.hostname)

	if a.machine == nil {
		return
	}

	err := a.machine.SetHostname(a.hostname)
	if err != nil {
		a.log.Warnf("Could not set hostname: %v", err)
	}
}

func (a *Agent) restoreLastError() {
	if a.store == nil {
		return
	}

	code, err := a.store.GetLastError()
	if err != nil {
		a.log.Warnf("Could not restore last error: %v", err)
		return
	}

	a.session.SetLastError(provision.ErrorCode(code))
}

func (a *Agent) startProvisioning() {
	if a.session.Active() {
		return
	}

	err := a.session.Start(a.identity)
	if err != nil {
		a.log.Errorf("Could not start provisioning: %v", err)
	}
}

// RequestProvisioning asks the agent to open a provisioning session. It is
// safe to call from any goroutine.
func (a *Agent) RequestProvisioning() {
	select {
	case a.provisioning <- struct{}{}:
	default:
	}
}

func (a *Agent) Reboot() error {
	if a.machine == nil {
		return errors.New("reboot is not supported")
	}

	return a.machine.Reboot()
}

// Shutdown makes Run return. Calling it more than once is harmless.
func (a *Agent) Shutdown() {
	a.shutdownOnce.Do(func() {
		close(a.done)
	})
}

func (a *Agent) publish() {
	status := Status{
		Name:            a.identity.DeviceName,
		Provisioning:    a.session.Active(),
		UserConfiguring: a.session.IsUserConfiguring(),
		Connecting:      a.orchestrator.Attempting(),
		Online:          a.registry.IsAnyConnected(),
		LastError:       int(a.session.LastError()),
	}

	if status.Provisioning {
		status.SessionID = a.session.ID()
	}

	for _, t := range a.registry.Transports() {
		status.Transports = append(status.Transports, transportStatus(t))
	}

	a.statusMtx.Lock()
	a.status = status
	a.statusMtx.Unlock()
}

// Status returns the latest snapshot.
func (a *Agent) Status() Status {
	a.statusMtx.RLock()
	defer a.statusMtx.RUnlock()

	status := a.status
	status.Transports = append([]TransportStatus(nil), a.status.Transports...)

	return status
}

func (a *Agent) IsOnline() bool {
	a.statusMtx.RLock()
	defer a.statusMtx.RUnlock()

	return a.status.Online
}
