package provision

import (
	"encoding/json"
	"unicode/utf8"
)

// AuthTokenLength is the only valid length of a cloud auth token.
const AuthTokenLength = 32

// Interface selects the medium the device should connect with.
type Interface string

const (
	InterfaceUnset    Interface = ""
	InterfaceWifi     Interface = "wifi"
	InterfaceCellular Interface = "cell"
	InterfaceEthernet Interface = "eth"
)

// Settings is the pending network configuration collected from the app.
type Settings struct {
	Interface  Interface
	Ssid       string
	Passphrase string
	AuthToken  string
	Host       string
	StaticIP   string
	Netmask    string
	Gateway    string
	Dns1       string
	Dns2       string
	ForceSave  bool
}

// apply merges a single field of a set command. It reports false for keys it
// does not know.
func (s *Settings) apply(key string, raw json.RawMessage) bool {
	switch key {
	case fieldInterface:
		s.Interface = Interface(rawString(raw))
	case fieldSsid:
		s.Ssid = rawString(raw)
	case fieldPassphrase:
		s.Passphrase = rawString(raw)
	case fieldAuthToken:
		s.AuthToken = rawString(raw)
	case fieldHost:
		s.Host = rawString(raw)
	case fieldPort:
		// the cloud port is derived from host
	case fieldStaticIP:
		s.StaticIP = rawString(raw)
	case fieldNetmask:
		s.Netmask = rawString(raw)
	case fieldGateway:
		s.Gateway = rawString(raw)
	case fieldDns1:
		s.Dns1 = rawString(raw)
	case fieldDns2:
		s.Dns2 = rawString(raw)
	case fieldSave:
		s.ForceSave = rawTruthy(raw)
	default:
		return false
	}

	return true
}

// validate returns why a connection attempt with these settings cannot
// start, or an empty string when it can.
func (s *Settings) validate() string {
	if utf8.RuneCountInString(s.AuthToken) != AuthTokenLength {
		return reasonInvalidToken
	}

	switch s.Interface {
	case InterfaceWifi:
		if s.Ssid == "" {
			return reasonNoSsid
		}
	case InterfaceCellular, InterfaceEthernet:
	default:
		return reasonUnknownInterface
	}

	return ""
}
