package network

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/the-lightning-land/provisiond/network/mm"
)

func newTestCellular(m *fakeModem) *CellularTransport {
	t := newCellularTransport(&CellularConfig{APN: "iot.example"}, m)
	t.now = steppingClock(time.Second)
	return t
}

func TestCellularTransport_Identity(t *testing.T) {
	cell := newTestCellular(&fakeModem{state: mm.StateRegistered})

	require.NoError(t, cell.Begin())

	info := cell.Info()
	assert.Equal(t, "356938035643809", info.IMEI)
	assert.Equal(t, "310150123456789", info.IMSI)
	assert.Equal(t, "8901260123456789012", info.ICCID)
	assert.Equal(t, CapSimPin|CapAPN, cell.Capabilities())
	assert.False(t, cell.Capabilities().Has(CapScan))
}

func TestCellularTransport_Connect(t *testing.T) {
	modem := &fakeModem{state: mm.StateRegistered}
	cell := newTestCellular(modem)
	require.NoError(t, cell.Begin())

	require.NoError(t, cell.Connect(&Credentials{}))
	assert.Equal(t, []string{"iot.example"}, modem.connected)
	assert.Equal(t, StateConnecting, cell.State())

	modem.state = mm.StateConnected
	cell.Run()
	assert.True(t, cell.IsConnected())
}

func TestCellularTransport_ConnectWithoutSim(t *testing.T) {
	modem := &fakeModem{sim: SimMissing}
	cell := newTestCellular(modem)
	require.NoError(t, cell.Begin())

	assert.Error(t, cell.Connect(&Credentials{}))
	assert.Equal(t, SimMissing, cell.SimStatus())
	assert.Empty(t, modem.connected)
}

func TestCellularTransport_NoModem(t *testing.T) {
	cell := newTestCellular(&fakeModem{startErr: errFake})

	assert.Error(t, cell.Begin())
	assert.False(t, cell.IsHardwareAvailable())
	assert.Error(t, cell.Connect(&Credentials{}))
}

func TestCellularTransport_AlreadyConnectedAtBegin(t *testing.T) {
	cell := newTestCellular(&fakeModem{state: mm.StateConnected})

	require.NoError(t, cell.Begin())
	assert.True(t, cell.IsConnected())
	assert.True(t, cell.IsConfigured())
}
