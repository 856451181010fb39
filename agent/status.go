package agent

import (
	"github.com/the-lightning-land/provisiond/network"
)

// Status is a point in time snapshot of the agent, safe to hand to other
// goroutines.
type Status struct {
	Name            string            `json:"name"`
	Provisioning    bool              `json:"provisioning"`
	SessionID       string            `json:"sessionId,omitempty"`
	UserConfiguring bool              `json:"userConfiguring"`
	Connecting      bool              `json:"connecting"`
	Online          bool              `json:"online"`
	LastError       int               `json:"lastError"`
	Transports      []TransportStatus `json:"transports"`
}

type TransportStatus struct {
	Kind         string `json:"kind"`
	State        string `json:"state"`
	Hardware     bool   `json:"hardware"`
	Configured   bool   `json:"configured"`
	Connected    bool   `json:"connected"`
	Capabilities string `json:"capabilities,omitempty"`
	Mac          string `json:"mac,omitempty"`
	IP           string `json:"ip,omitempty"`
}

func transportStatus(t network.Transport) TransportStatus {
	info := t.Info()

	return TransportStatus{
		Kind:         t.Kind().String(),
		State:        t.State().String(),
		Hardware:     t.IsHardwareAvailable(),
		Configured:   t.IsConfigured(),
		Connected:    t.IsConnected(),
		Capabilities: t.Capabilities().String(),
		Mac:          info.Mac,
		IP:           info.IP,
	}
}
