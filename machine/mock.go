package machine

type MockMachine struct {
	log      Logger
	hostname string
	Reboots  int
}

var _ Machine = (*MockMachine)(nil)

type MockMachineConfig struct {
	Logger Logger
}

func NewMockMachine(config *MockMachineConfig) *MockMachine {
	machine := &MockMachine{hostname: "localhost"}

	if config.Logger != nil {
		machine.log = config.Logger
	} else {
		machine.log = noopLogger{}
	}

	return machine
}

func (m *MockMachine) Start() error {
	return nil
}

func (m *MockMachine) Stop() error {
	return nil
}

func (m *MockMachine) Reboot() error {
	m.Reboots++
	m.log.Infof("Pretending to reboot")
	return nil
}

func (m *MockMachine) SetHostname(hostname string) error {
	m.hostname = hostname
	m.log.Infof("Pretending to set hostname to %v", hostname)
	return nil
}

func (m *MockMachine) Hostname() (string, error) {
	return m.hostname, nil
}
