package provision

// Link is the byte channel the companion app talks over. Each Read returns
// one complete inbound message and each Write delivers one complete
// outbound message.
type Link interface {
	// Open starts advertising under the given device name.
	Open(name string) error
	Close() error
	IsConnected() bool
	Available() bool
	Read() ([]byte, error)
	Write(data []byte) error
}

// Rebooter restarts the device.
type Rebooter interface {
	Reboot() error
}

// NetworkStore forgets networks saved for reconnecting after a restart.
type NetworkStore interface {
	ClearNetwork() error
}
