package store

import (
	"github.com/go-errors/errors"
)

// Network is a saved connection the device re-applies on boot.
type Network struct {
	Interface  string `json:"interface"`
	Ssid       string `json:"ssid,omitempty"`
	Passphrase string `json:"passphrase,omitempty"`
	AuthToken  string `json:"authToken"`
	Host       string `json:"host,omitempty"`
	StaticIP   string `json:"staticIp,omitempty"`
	Netmask    string `json:"netmask,omitempty"`
	Gateway    string `json:"gateway,omitempty"`
	Dns1       string `json:"dns1,omitempty"`
	Dns2       string `json:"dns2,omitempty"`
}

func (db *DB) SetNetwork(network *Network) error {
	if network == nil {
		return errors.New("network must not be nil")
	}

	err := db.setJSON(settingsBucket, networkKey, network)
	if err != nil {
		return errors.Errorf("could not save network: %v", err)
	}

	return nil
}

// GetNetwork returns the saved network or nil when there is none.
func (db *DB) GetNetwork() (*Network, error) {
	network := &Network{}

	found, err := db.getJSON(settingsBucket, networkKey, network)
	if err != nil {
		return nil, errors.Errorf("could not load network: %v", err)
	}

	if !found {
		return nil, nil
	}

	return network, nil
}

func (db *DB) ClearNetwork() error {
	return db.delete(settingsBucket, networkKey)
}

// SetLastError keeps the error code of the last connection attempt so it can
// be reported after a reboot.
func (db *DB) SetLastError(code int) error {
	return db.setJSON(settingsBucket, lastErrorKey, code)
}

func (db *DB) GetLastError() (int, error) {
	var code int

	_, err := db.getJSON(settingsBucket, lastErrorKey, &code)
	if err != nil {
		return 0, errors.Errorf("could not load last error: %v", err)
	}

	return code, nil
}
