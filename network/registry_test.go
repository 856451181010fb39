package network

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry_RejectsDuplicateKinds(t *testing.T) {
	_, err := NewRegistry(&RegistryConfig{
		Transports: []Transport{
			&fakeTransport{kind: KindEthernet},
			&fakeTransport{kind: KindEthernet},
		},
	})
	assert.Error(t, err)
}

func TestNewRegistry_RejectsWifiWithHaLow(t *testing.T) {
	_, err := NewRegistry(&RegistryConfig{
		Transports: []Transport{
			&fakeTransport{kind: KindWifi},
			&fakeTransport{kind: KindHaLow},
		},
	})
	assert.Error(t, err)
}

func TestRegistry_Broadcasts(t *testing.T) {
	wifi := &fakeTransport{kind: KindWifi}
	eth := &fakeTransport{kind: KindEthernet, beginErr: errFake}
	cell := &fakeTransport{kind: KindCellular}

	r, err := NewRegistry(&RegistryConfig{Transports: []Transport{wifi, eth, cell}})
	require.NoError(t, err)

	// a failing transport does not stop the broadcast
	assert.Error(t, r.Begin())
	assert.Equal(t, 1, wifi.began)
	assert.Equal(t, 1, eth.began)
	assert.Equal(t, 1, cell.began)

	r.Run()
	r.StartConfig()
	r.SetHostname("device-1")
	require.NoError(t, r.ClearNetworks())

	for _, tr := range []*fakeTransport{wifi, eth, cell} {
		assert.Equal(t, 1, tr.ran)
		assert.True(t, tr.configuring)
		assert.Equal(t, "device-1", tr.hostname)
		assert.Equal(t, 1, tr.cleared)
	}
}

func TestRegistry_AnyConnectedAndConfigured(t *testing.T) {
	wifi := &fakeTransport{kind: KindWifi}
	cell := &fakeTransport{kind: KindCellular}

	r, err := NewRegistry(&RegistryConfig{Transports: []Transport{wifi, cell}})
	require.NoError(t, err)

	assert.False(t, r.IsAnyConnected())
	assert.False(t, r.IsAnyConfigured())

	cell.configured = true
	assert.True(t, r.IsAnyConfigured())

	cell.connected = true
	assert.True(t, r.IsAnyConnected())
}

func TestRegistry_Scanner(t *testing.T) {
	eth := &fakeTransport{kind: KindEthernet}
	halow := &fakeScanner{fakeTransport: fakeTransport{kind: KindHaLow, caps: CapScan}}

	r, err := NewRegistry(&RegistryConfig{Transports: []Transport{eth, halow}})
	require.NoError(t, err)

	scanner, ok := r.Scanner()
	require.True(t, ok)
	assert.Equal(t, KindHaLow, scanner.Kind())

	none, err := NewRegistry(&RegistryConfig{Transports: []Transport{eth}})
	require.NoError(t, err)

	_, ok = none.Scanner()
	assert.False(t, ok)
}

func TestRegistry_Get(t *testing.T) {
	cell := &fakeTransport{kind: KindCellular}

	r, err := NewRegistry(&RegistryConfig{Transports: []Transport{cell}})
	require.NoError(t, err)

	got, ok := r.Get(KindCellular)
	require.True(t, ok)
	assert.Same(t, cell, got)

	_, ok = r.Get(KindWifi)
	assert.False(t, ok)
}

func TestKindWireName(t *testing.T) {
	assert.Equal(t, "wifi", KindWifi.WireName())
	assert.Equal(t, "wifi", KindHaLow.WireName())
	assert.Equal(t, "eth", KindEthernet.WireName())
	assert.Equal(t, "cell", KindCellular.WireName())
}

func TestCapabilityString(t *testing.T) {
	assert.Equal(t, "scan,5ghz", (CapScan | Cap5GHz).String())
	assert.Equal(t, "sim_pin,apn", (CapSimPin | CapAPN).String())
	assert.True(t, (CapScan | Cap5GHz).Has(CapScan))
	assert.False(t, CapScan.Has(CapStaticIP))
}
