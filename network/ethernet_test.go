package network

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEthernet(link *fakeLink) *EthernetTransport {
	t := newEthernetTransport(&EthernetConfig{Interface: "eth0"}, link)
	t.now = steppingClock(time.Second)
	return t
}

func TestEthernetTransport_MissingInterface(t *testing.T) {
	eth := newTestEthernet(&fakeLink{})

	assert.Error(t, eth.Begin())
	assert.False(t, eth.IsHardwareAvailable())
}

func TestEthernetTransport_ConnectedAtBegin(t *testing.T) {
	eth := newTestEthernet(&fakeLink{exists: true, carrier: true, ip: "192.168.1.20"})

	require.NoError(t, eth.Begin())
	assert.True(t, eth.IsConfigured())
	assert.True(t, eth.IsConnected())

	info := eth.Info()
	assert.Equal(t, "AA:BB:CC:DD:EE:FF", info.Mac)
	assert.Equal(t, EthernetStatusUp, info.Status)
	assert.Equal(t, "192.168.1.20", info.IP)
}

func TestEthernetTransport_CablePluggedLater(t *testing.T) {
	link := &fakeLink{exists: true}
	eth := newTestEthernet(link)

	require.NoError(t, eth.Begin())
	assert.False(t, eth.IsConnected())
	assert.Equal(t, EthernetStatusNoCable, eth.Info().Status)
	assert.Empty(t, eth.Info().IP)

	link.carrier = true
	eth.Run()
	assert.False(t, eth.IsConnected(), "no address yet")

	link.ip = "10.0.0.2"
	eth.Run()
	assert.True(t, eth.IsConnected())

	link.carrier = false
	eth.Run()
	assert.Equal(t, StateConnecting, eth.State())
}

func TestEthernetTransport_Off(t *testing.T) {
	eth := newTestEthernet(&fakeLink{exists: true, carrier: true, ip: "10.0.0.2"})
	require.NoError(t, eth.Begin())

	require.NoError(t, eth.Off())
	assert.Equal(t, StateOff, eth.State())
	assert.Equal(t, EthernetStatusDown, eth.Info().Status)
	assert.Equal(t, Capability(0), eth.Capabilities())
}
