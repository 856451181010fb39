package network

import (
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-errors/errors"
)

// linkReader reads the kernel view of a network interface.
type linkReader interface {
	Exists(ifname string) bool
	Mac(ifname string) (string, error)
	Carrier(ifname string) (bool, error)
	IPv4(ifname string) (string, error)
}

// sysfsLink reads interfaces through the net package and /sys/class/net.
type sysfsLink struct {
	root string
}

func newSysfsLink() *sysfsLink {
	return &sysfsLink{root: "/sys/class/net"}
}

func (l *sysfsLink) Exists(ifname string) bool {
	_, err := net.InterfaceByName(ifname)
	return err == nil
}

func (l *sysfsLink) Mac(ifname string) (string, error) {
	return macAddress(ifname)
}

func (l *sysfsLink) Carrier(ifname string) (bool, error) {
	data, err := os.ReadFile(filepath.Join(l.root, ifname, "carrier"))
	if err != nil {
		// reading carrier of an administratively down interface fails
		return false, nil
	}

	return strings.TrimSpace(string(data)) == "1", nil
}

func (l *sysfsLink) IPv4(ifname string) (string, error) {
	iface, err := net.InterfaceByName(ifname)
	if err != nil {
		return "", errors.Errorf("could not find interface %v: %v", ifname, err)
	}

	addrs, err := iface.Addrs()
	if err != nil {
		return "", errors.Errorf("could not list addresses of %v: %v", ifname, err)
	}

	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok {
			continue
		}

		if ip4 := ipNet.IP.To4(); ip4 != nil {
			return ip4.String(), nil
		}
	}

	return "", nil
}

func macAddress(ifname string) (string, error) {
	iface, err := net.InterfaceByName(ifname)
	if err != nil {
		return "", errors.Errorf("could not find interface %v: %v", ifname, err)
	}

	return strings.ToUpper(iface.HardwareAddr.String()), nil
}
