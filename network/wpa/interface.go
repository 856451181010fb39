package wpa

import (
	"sync"

	"github.com/go-errors/errors"
	"github.com/godbus/dbus/v5"
)

type Interface struct {
	wpa *Wpa
	obj dbus.BusObject
}

func (i *Interface) Scan() error {
	call := i.obj.Call(interfaceIface+".Scan", 0, map[string]interface{}{
		"Type": "active",
	})
	if call.Err != nil {
		return errors.Errorf("could not scan: %v", call.Err)
	}

	return nil
}

type ScanDoneClient struct {
	// ScanDone receives the success flag of every completed scan.
	ScanDone <-chan bool
	Cancel   func()
}

func (i *Interface) ScanDone() (*ScanDoneClient, error) {
	id, signals, err := i.wpa.subscribe(i.obj.Path(), interfaceIface, "ScanDone")
	if err != nil {
		return nil, errors.Errorf("could not listen to scan completion: %v", err)
	}

	doneChan := make(chan bool, 1)
	cancelChan := make(chan struct{})
	var cancelOnce sync.Once

	go func() {
		defer close(doneChan)

		for {
			select {
			case signal, ok := <-signals:
				if !ok {
					return
				}

				success := false
				if len(signal.Body) > 0 {
					success, _ = signal.Body[0].(bool)
				}

				select {
				case doneChan <- success:
				case <-cancelChan:
					return
				}
			case <-cancelChan:
				return
			}
		}
	}()

	return &ScanDoneClient{
		ScanDone: doneChan,
		Cancel: func() {
			cancelOnce.Do(func() {
				close(cancelChan)
				i.wpa.unsubscribe(id)
			})
		},
	}, nil
}

// State returns the supplicant state of the interface, e.g. "completed"
// once associated and authenticated.
func (i *Interface) State() (string, error) {
	v, err := i.obj.GetProperty(interfaceIface + ".State")
	if err != nil {
		return "", errors.Errorf("could not get state: %v", err)
	}

	state, ok := v.Value().(string)
	if !ok {
		return "", errors.Errorf("could not convert state: %v", v)
	}

	return state, nil
}

func (i *Interface) BSSs() ([]*BSS, error) {
	v, err := i.obj.GetProperty(interfaceIface + ".BSSs")
	if err != nil {
		return nil, errors.Errorf("could not get bsss: %v", err)
	}

	objectPaths, ok := v.Value().([]dbus.ObjectPath)
	if !ok {
		return nil, errors.Errorf("could not convert bsss: %v", v)
	}

	var bsss []*BSS

	for _, objectPath := range objectPaths {
		bsss = append(bsss, &BSS{
			obj: i.wpa.conn.Object(i.wpa.service, objectPath),
		})
	}

	return bsss, nil
}

func (i *Interface) Networks() ([]*Network, error) {
	v, err := i.obj.GetProperty(interfaceIface + ".Networks")
	if err != nil {
		return nil, errors.Errorf("could not get networks: %v", err)
	}

	objectPaths, ok := v.Value().([]dbus.ObjectPath)
	if !ok {
		return nil, errors.Errorf("could not convert networks: %v", v)
	}

	var networks []*Network

	for _, objectPath := range objectPaths {
		networks = append(networks, &Network{
			obj: i.wpa.conn.Object(i.wpa.service, objectPath),
		})
	}

	return networks, nil
}

func (i *Interface) AddNetwork(ssid string, psk string) (*Network, error) {
	args := map[string]interface{}{
		"ssid": ssid,
	}

	if psk != "" {
		args["psk"] = psk
	} else {
		args["key_mgmt"] = "NONE"
	}

	var objPath dbus.ObjectPath

	err := i.obj.Call(interfaceIface+".AddNetwork", 0, args).Store(&objPath)
	if err != nil {
		return nil, errors.Errorf("could not add network: %v", err)
	}

	return &Network{
		obj: i.wpa.conn.Object(i.wpa.service, objPath),
	}, nil
}

func (i *Interface) SelectNetwork(net *Network) error {
	call := i.obj.Call(interfaceIface+".SelectNetwork", 0, net.obj.Path())
	if call.Err != nil {
		return errors.Errorf("could not select network %v: %v", net, call.Err)
	}

	return nil
}

func (i *Interface) RemoveAllNetworks() error {
	call := i.obj.Call(interfaceIface+".RemoveAllNetworks", 0)
	if call.Err != nil {
		return errors.Errorf("could not remove all networks: %v", call.Err)
	}

	return nil
}

func (i *Interface) Disconnect() error {
	call := i.obj.Call(interfaceIface+".Disconnect", 0)
	if call.Err != nil {
		return errors.Errorf("could not disconnect: %v", call.Err)
	}

	return nil
}

func (i *Interface) Reconnect() error {
	call := i.obj.Call(interfaceIface+".Reconnect", 0)
	if call.Err != nil {
		return errors.Errorf("could not reconnect: %v", call.Err)
	}

	return nil
}
