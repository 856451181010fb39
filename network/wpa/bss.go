package wpa

import (
	"fmt"
	"strings"

	"github.com/go-errors/errors"
	"github.com/godbus/dbus/v5"
)

type BSS struct {
	obj dbus.BusObject
}

func (b *BSS) String() string {
	return string(b.obj.Path())
}

type Bss struct {
	Ssid      string
	Bssid     string
	Signal    int
	Frequency int
	Privacy   bool
	// WpaKeyMgmt and RsnKeyMgmt list the key management suites advertised in
	// the WPA and RSN (WPA2) information elements, e.g. "wpa-psk".
	WpaKeyMgmt []string
	RsnKeyMgmt []string
}

func (b *BSS) GetAll() (*Bss, error) {
	call := b.obj.Call("org.freedesktop.DBus.Properties.GetAll", 0, bssIface)
	if call.Err != nil {
		return nil, errors.Errorf("could not get all properties: %v", call.Err)
	}

	props, ok := call.Body[0].(map[string]dbus.Variant)
	if !ok {
		return nil, errors.Errorf("could not convert properties of %v", b)
	}

	return parseBss(props)
}

func parseBss(props map[string]dbus.Variant) (*Bss, error) {
	bss := Bss{}

	if val, ok := props["SSID"]; ok {
		if ssid, ok := val.Value().([]byte); ok {
			bss.Ssid = string(ssid)
		} else {
			return nil, errors.Errorf("could not convert SSID to string: %v", val)
		}
	} else {
		return nil, errors.Errorf("mandatory property SSID was missing")
	}

	if val, ok := props["BSSID"]; ok {
		if bssid, ok := val.Value().([]byte); ok {
			bss.Bssid = formatMac(bssid)
		} else {
			return nil, errors.Errorf("could not convert BSSID to string: %v", val)
		}
	} else {
		return nil, errors.Errorf("mandatory property BSSID was missing")
	}

	if val, ok := props["Signal"]; ok {
		if signal, ok := val.Value().(int16); ok {
			bss.Signal = int(signal)
		}
	}

	if val, ok := props["Frequency"]; ok {
		if freq, ok := val.Value().(uint16); ok {
			bss.Frequency = int(freq)
		}
	}

	if val, ok := props["Privacy"]; ok {
		bss.Privacy, _ = val.Value().(bool)
	}

	bss.WpaKeyMgmt = keyMgmt(props["WPA"])
	bss.RsnKeyMgmt = keyMgmt(props["RSN"])

	return &bss, nil
}

func keyMgmt(val dbus.Variant) []string {
	ie, ok := val.Value().(map[string]dbus.Variant)
	if !ok {
		return nil
	}

	suites, ok := ie["KeyMgmt"].Value().([]string)
	if !ok {
		return nil
	}

	return suites
}

func formatMac(mac []byte) string {
	parts := make([]string, len(mac))
	for i, b := range mac {
		parts[i] = fmt.Sprintf("%02X", b)
	}

	return strings.Join(parts, ":")
}
