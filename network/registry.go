package network

import (
	"strings"

	"github.com/go-errors/errors"
)

type RegistryConfig struct {
	Transports []Transport
	Logger     Logger
}

// Registry owns the transports present in this build and broadcasts
// lifecycle calls to all of them in registration order.
type Registry struct {
	log        Logger
	transports []Transport
}

func NewRegistry(config *RegistryConfig) (*Registry, error) {
	registry := &Registry{}

	if config.Logger != nil {
		registry.log = config.Logger
	} else {
		registry.log = noopLogger{}
	}

	seen := make(map[Kind]bool)

	for _, t := range config.Transports {
		if t == nil {
			return nil, errors.New("transport must not be nil")
		}

		if seen[t.Kind()] {
			return nil, errors.Errorf("more than one %v transport", t.Kind())
		}

		seen[t.Kind()] = true
		registry.transports = append(registry.transports, t)
	}

	if seen[KindWifi] && seen[KindHaLow] {
		return nil, errors.New("wifi and halow transports are mutually exclusive")
	}

	return registry, nil
}

func (r *Registry) Transports() []Transport {
	return r.transports
}

func (r *Registry) Get(kind Kind) (Transport, bool) {
	for _, t := range r.transports {
		if t.Kind() == kind {
			return t, true
		}
	}

	return nil, false
}

// Scanner returns the scan capable transport of this build.
func (r *Registry) Scanner() (Scanner, bool) {
	for _, t := range r.transports {
		scanner, ok := t.(Scanner)
		if ok && t.Capabilities().Has(CapScan) {
			return scanner, true
		}
	}

	return nil, false
}

func (r *Registry) Begin() error {
	return r.each("begin", Transport.Begin)
}

func (r *Registry) Run() {
	for _, t := range r.transports {
		t.Run()
	}
}

func (r *Registry) On() error {
	return r.each("turn on", Transport.On)
}

func (r *Registry) Off() error {
	return r.each("turn off", Transport.Off)
}

func (r *Registry) StartConfig() {
	for _, t := range r.transports {
		t.StartConfig()
	}
}

func (r *Registry) SetHostname(hostname string) {
	for _, t := range r.transports {
		t.SetHostname(hostname)
	}
}

func (r *Registry) ClearNetworks() error {
	return r.each("clear networks of", Transport.ClearNetworks)
}

func (r *Registry) IsAnyConnected() bool {
	for _, t := range r.transports {
		if t.IsConnected() {
			return true
		}
	}

	return false
}

func (r *Registry) IsAnyConfigured() bool {
	for _, t := range r.transports {
		if t.IsConfigured() {
			return true
		}
	}

	return false
}

// each calls fn on every transport, even after a failure, and reports all
// failures in one error.
func (r *Registry) each(action string, fn func(Transport) error) error {
	var failures []string

	for _, t := range r.transports {
		err := fn(t)
		if err != nil {
			r.log.Errorf("Could not %v %v: %v", action, t.Kind(), err)
			failures = append(failures, t.Kind().String()+": "+err.Error())
		}
	}

	if len(failures) > 0 {
		return errors.Errorf("could not %v transports: %v", action, strings.Join(failures, "; "))
	}

	return nil
}
