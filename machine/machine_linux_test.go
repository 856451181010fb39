package machine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLinuxMachine_RejectsEmptyHostname(t *testing.T) {
	m := NewLinuxMachine(&LinuxMachineConfig{})

	assert.Error(t, m.SetHostname(""))
}
