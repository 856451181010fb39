package wpa

import (
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBss(t *testing.T) {
	props := map[string]dbus.Variant{
		"SSID":      dbus.MakeVariant([]byte("Home")),
		"BSSID":     dbus.MakeVariant([]byte{0xde, 0xad, 0xbe, 0xef, 0x00, 0x01}),
		"Signal":    dbus.MakeVariant(int16(-47)),
		"Frequency": dbus.MakeVariant(uint16(2437)),
		"Privacy":   dbus.MakeVariant(true),
		"RSN": dbus.MakeVariant(map[string]dbus.Variant{
			"KeyMgmt": dbus.MakeVariant([]string{"wpa-psk"}),
		}),
	}

	bss, err := parseBss(props)
	require.NoError(t, err)

	assert.Equal(t, "Home", bss.Ssid)
	assert.Equal(t, "DE:AD:BE:EF:00:01", bss.Bssid)
	assert.Equal(t, -47, bss.Signal)
	assert.Equal(t, 2437, bss.Frequency)
	assert.True(t, bss.Privacy)
	assert.Equal(t, []string{"wpa-psk"}, bss.RsnKeyMgmt)
	assert.Nil(t, bss.WpaKeyMgmt)
}

func TestParseBss_MissingSsid(t *testing.T) {
	_, err := parseBss(map[string]dbus.Variant{
		"BSSID": dbus.MakeVariant([]byte{1, 2, 3, 4, 5, 6}),
	})
	assert.Error(t, err)
}

func TestParseBss_MissingBssid(t *testing.T) {
	_, err := parseBss(map[string]dbus.Variant{
		"SSID": dbus.MakeVariant([]byte("Home")),
	})
	assert.Error(t, err)
}

func TestParseBss_OptionalPropertiesAbsent(t *testing.T) {
	bss, err := parseBss(map[string]dbus.Variant{
		"SSID":  dbus.MakeVariant([]byte("")),
		"BSSID": dbus.MakeVariant([]byte{1, 2, 3, 4, 5, 6}),
	})
	require.NoError(t, err)

	assert.Equal(t, "", bss.Ssid)
	assert.Equal(t, 0, bss.Signal)
	assert.False(t, bss.Privacy)
}
