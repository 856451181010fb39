package machine

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeviceName_Stable(t *testing.T) {
	a := DeviceName("Sensor", "AA:BB:CC:DD:EE:FF")
	b := DeviceName("Sensor", "AA:BB:CC:DD:EE:FF")

	assert.Equal(t, a, b)
	assert.True(t, strings.HasPrefix(a, "Sensor-"))
	assert.Len(t, a, len("Sensor-")+nameSuffixLength)
}

func TestDeviceName_WithoutPrefix(t *testing.T) {
	assert.Len(t, DeviceName("", "seed"), nameSuffixLength)
}

func TestDeviceName_Alphabet(t *testing.T) {
	for i := 0; i < 500; i++ {
		name := DeviceName("", fmt.Sprintf("seed-%d", i))

		for j := 0; j < len(name); j++ {
			assert.Contains(t, nameAlphabet, string(name[j]))
			if j > 0 {
				assert.NotEqual(t, name[j-1], name[j], name)
			}
		}
	}
}

func TestMockMachine(t *testing.T) {
	m := NewMockMachine(&MockMachineConfig{})

	require.NoError(t, m.SetHostname("sensor-4nw8"))
	hostname, err := m.Hostname()
	require.NoError(t, err)
	assert.Equal(t, "sensor-4nw8", hostname)

	require.NoError(t, m.Reboot())
	assert.Equal(t, 1, m.Reboots)
}

func TestMachineID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "machine-id")
	require.NoError(t, os.WriteFile(path, []byte("4c4c4544004a4d10\n"), 0600))

	id, err := MachineID(path)
	require.NoError(t, err)
	assert.Equal(t, "4c4c4544004a4d10", id)

	require.NoError(t, os.WriteFile(path, []byte("\n"), 0600))
	_, err = MachineID(path)
	assert.Error(t, err)
}
