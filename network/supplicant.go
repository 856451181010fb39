package network

import (
	"github.com/go-errors/errors"
	"github.com/the-lightning-land/provisiond/network/wpa"
)

// wpaSupplicant adapts the wpa D-Bus client to the supplicant interface.
type wpaSupplicant struct {
	wpa      *wpa.Wpa
	ifname   string
	iface    *wpa.Interface
	scanDone *wpa.ScanDoneClient
}

func newWpaSupplicant(config *WifiConfig) *wpaSupplicant {
	service := config.Service
	if service == "" {
		service = wpa.DefaultService
	}

	return &wpaSupplicant{
		wpa:    wpa.NewService(service),
		ifname: config.Interface,
	}
}

func (s *wpaSupplicant) Start() error {
	err := s.wpa.Start()
	if err != nil {
		return errors.Errorf("could not start wpa: %v", err)
	}

	iface, err := s.wpa.GetInterface(s.ifname)
	if err != nil {
		_ = s.Stop()
		return errors.Errorf("could not find interface %v: %v", s.ifname, err)
	}

	s.iface = iface

	return nil
}

func (s *wpaSupplicant) Stop() error {
	s.cancelScan()

	err := s.wpa.Stop()
	if err != nil {
		return errors.Errorf("could not stop wpa: %v", err)
	}

	return nil
}

func (s *wpaSupplicant) Scan() error {
	s.cancelScan()

	client, err := s.iface.ScanDone()
	if err != nil {
		return err
	}

	err = s.iface.Scan()
	if err != nil {
		client.Cancel()
		return err
	}

	s.scanDone = client

	return nil
}

func (s *wpaSupplicant) ScanComplete() (bool, error) {
	if s.scanDone == nil {
		return false, errors.New("no scan was started")
	}

	select {
	case success, ok := <-s.scanDone.ScanDone:
		s.cancelScan()
		if ok && !success {
			return true, errors.New("supplicant reported a failed scan")
		}
		return true, nil
	default:
		return false, nil
	}
}

func (s *wpaSupplicant) cancelScan() {
	if s.scanDone != nil {
		s.scanDone.Cancel()
		s.scanDone = nil
	}
}

func (s *wpaSupplicant) Bsss() ([]*wpa.Bss, error) {
	bsss, err := s.iface.BSSs()
	if err != nil {
		return nil, errors.Errorf("unable to get BSSs: %v", err)
	}

	var result []*wpa.Bss

	for _, bss := range bsss {
		b, err := bss.GetAll()
		if err != nil {
			// BSS entries can expire between listing and reading them
			continue
		}

		result = append(result, b)
	}

	return result, nil
}

func (s *wpaSupplicant) Connect(ssid string, psk string) error {
	net, err := s.iface.AddNetwork(ssid, psk)
	if err != nil {
		return err
	}

	return s.iface.SelectNetwork(net)
}

func (s *wpaSupplicant) RemoveAllNetworks() error {
	return s.iface.RemoveAllNetworks()
}

func (s *wpaSupplicant) NetworkCount() (int, error) {
	networks, err := s.iface.Networks()
	if err != nil {
		return 0, err
	}

	return len(networks), nil
}

func (s *wpaSupplicant) State() (string, error) {
	return s.iface.State()
}

func (s *wpaSupplicant) Disconnect() error {
	return s.iface.Disconnect()
}

func (s *wpaSupplicant) Reconnect() error {
	return s.iface.Reconnect()
}
