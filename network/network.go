package network

import "strings"

// Kind identifies the medium a transport drives.
type Kind int

const (
	KindWifi Kind = iota
	KindEthernet
	KindCellular
	KindHaLow
)

func (k Kind) String() string {
	switch k {
	case KindWifi:
		return "WIFI"
	case KindEthernet:
		return "ETHERNET"
	case KindCellular:
		return "CELLULAR"
	case KindHaLow:
		return "HALOW"
	default:
		return "INVALID KIND"
	}
}

// WireName is the interface name reported to the companion app. HaLow
// reports itself as "wifi" since the app treats it as a Wi-Fi interface.
func (k Kind) WireName() string {
	switch k {
	case KindWifi, KindHaLow:
		return "wifi"
	case KindEthernet:
		return "eth"
	case KindCellular:
		return "cell"
	default:
		return ""
	}
}

// Capability is a set of optional features a transport supports.
type Capability uint8

const (
	CapScan Capability = 1 << iota
	Cap5GHz
	CapStaticIP
	CapSimPin
	CapAPN
)

func (c Capability) Has(other Capability) bool {
	return c&other == other
}

func (c Capability) String() string {
	var names []string

	if c.Has(CapScan) {
		names = append(names, "scan")
	}
	if c.Has(Cap5GHz) {
		names = append(names, "5ghz")
	}
	if c.Has(CapStaticIP) {
		names = append(names, "static_ip")
	}
	if c.Has(CapSimPin) {
		names = append(names, "sim_pin")
	}
	if c.Has(CapAPN) {
		names = append(names, "apn")
	}

	return strings.Join(names, ",")
}

type ConnectionState int

const (
	StateOff ConnectionState = iota
	StateConfiguring
	StateConnecting
	StateConnected
)

func (s ConnectionState) String() string {
	switch s {
	case StateOff:
		return "OFF"
	case StateConfiguring:
		return "CONFIGURING"
	case StateConnecting:
		return "CONNECTING"
	case StateConnected:
		return "CONNECTED"
	default:
		return "INVALID STATE"
	}
}

// Info holds the medium specific identity of a transport. Fields that do not
// apply to a medium are left empty.
type Info struct {
	Mac    string
	IMEI   string
	IMSI   string
	ICCID  string
	Status string
	IP     string
}

// Credentials describe a network a transport should join.
type Credentials struct {
	Ssid       string
	Passphrase string
	StaticIP   string
	Netmask    string
	Gateway    string
	Dns1       string
	Dns2       string
}

type Transport interface {
	Kind() Kind
	Begin() error
	Run()
	On() error
	Off() error
	StartConfig()
	SetHostname(hostname string)
	ClearNetworks() error
	IsHardwareAvailable() bool
	IsConnected() bool
	IsConfigured() bool
	State() ConnectionState
	Capabilities() Capability
	Info() *Info
}

// Connector is implemented by transports that can join a network with
// explicit credentials.
type Connector interface {
	Transport
	Connect(credentials *Credentials) error
}

// Scanner is implemented by transports that can look for nearby networks.
type Scanner interface {
	Transport
	StartScan() (*ScanSession, error)
	EndScan()
}
