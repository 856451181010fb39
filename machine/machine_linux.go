package machine

import (
	"os"

	"github.com/go-errors/errors"
	"golang.org/x/sys/unix"
)

type LinuxMachine struct {
	log Logger
}

var _ Machine = (*LinuxMachine)(nil)

type LinuxMachineConfig struct {
	Logger Logger
}

func NewLinuxMachine(config *LinuxMachineConfig) *LinuxMachine {
	machine := &LinuxMachine{}

	if config.Logger != nil {
		machine.log = config.Logger
	} else {
		machine.log = noopLogger{}
	}

	return machine
}

func (m *LinuxMachine) Start() error {
	return nil
}

func (m *LinuxMachine) Stop() error {
	return nil
}

// Reboot flushes file systems and restarts the host immediately.
func (m *LinuxMachine) Reboot() error {
	m.log.Infof("Rebooting")

	unix.Sync()

	err := unix.Reboot(unix.LINUX_REBOOT_CMD_RESTART)
	if err != nil {
		return errors.Errorf("could not reboot: %v", err)
	}

	return nil
}

func (m *LinuxMachine) SetHostname(hostname string) error {
	if hostname == "" {
		return errors.New("hostname must not be empty")
	}

	err := unix.Sethostname([]byte(hostname))
	if err != nil {
		return errors.Errorf("could not set hostname to %v: %v", hostname, err)
	}

	m.log.Infof("Set hostname to %v", hostname)

	return nil
}

func (m *LinuxMachine) Hostname() (string, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return "", errors.Errorf("could not read hostname: %v", err)
	}

	return hostname, nil
}
