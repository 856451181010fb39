package machine

// Machine controls the host the daemon runs on.
type Machine interface {
	Start() error
	Stop() error
	Reboot() error
	SetHostname(hostname string) error
	Hostname() (string, error)
}
